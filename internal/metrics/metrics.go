package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "profiler_builds_total",
		Help: "Profile builds by outcome",
	}, []string{"outcome"})

	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "profiler_build_duration_seconds",
		Help:    "End to end profile build latency",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	centroidsPerProfile = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "profiler_centroids_per_profile",
		Help:    "Number of centroids in built profiles",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	})

	snapshotsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "profiler_snapshots_consumed_total",
		Help: "Interaction snapshot messages consumed, by result",
	}, []string{"result"})
)

// ObserveBuild records one pipeline run.
func ObserveBuild(outcome string, centroids int, elapsed time.Duration) {
	buildsTotal.WithLabelValues(outcome).Inc()
	buildDuration.Observe(elapsed.Seconds())
	centroidsPerProfile.Observe(float64(centroids))
}

// ObserveSnapshot records one consumed snapshot message.
func ObserveSnapshot(result string) {
	snapshotsConsumed.WithLabelValues(result).Inc()
}
