package profile

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/solistra/profiler/internal/clustering"
	"github.com/solistra/profiler/internal/config"
	"github.com/solistra/profiler/internal/metrics"
	"github.com/solistra/profiler/pkg/models"
)

// Builder turns one user's interaction snapshot into a weighted
// multi-centroid interest profile. It is stateless across calls: given an
// identical snapshot and a deterministic clusterer, repeated builds
// produce identical output.
type Builder struct {
	cfg       config.ProfileConfig
	logger    *logrus.Logger
	clusterer clustering.Clusterer
}

// Result carries the built profile plus the count of records dropped by
// the schema filter.
type Result struct {
	Centroids []models.CentroidProfile
	Dropped   int
}

func NewBuilder(cfg config.ProfileConfig, logger *logrus.Logger, clusterer clustering.Clusterer) *Builder {
	return &Builder{
		cfg:       cfg,
		logger:    logger,
		clusterer: clusterer,
	}
}

// Build runs the full pipeline: preprocess, cluster, synthesize, finalize.
func (b *Builder) Build(records []models.InteractionRecord) (*Result, error) {
	start := time.Now()

	vectors, weights, dropped := preprocess(records, b.cfg)
	if len(vectors) == 0 {
		metrics.ObserveBuild("empty", 0, time.Since(start))
		return &Result{Centroids: []models.CentroidProfile{}, Dropped: dropped}, nil
	}

	centroids := b.cluster(vectors, weights)
	centroids = b.finalize(centroids)

	b.logger.WithFields(logrus.Fields{
		"interactions": len(vectors),
		"dropped":      dropped,
		"centroids":    len(centroids),
	}).Info("Built interest profile")
	for _, c := range centroids {
		b.logger.WithFields(logrus.Fields{
			"cluster_id": c.ClusterID,
			"post_count": c.PostCount,
			"weight":     c.Weight,
		}).Debug("Synthesized centroid")
	}

	metrics.ObserveBuild("ok", len(centroids), time.Since(start))
	return &Result{Centroids: centroids, Dropped: dropped}, nil
}

// cluster partitions the points and synthesizes one centroid per cluster.
// Sparse input, an all-noise partition, and a clusterer failure all take
// the single-global-centroid path.
func (b *Builder) cluster(vectors [][]float64, weights []float64) []models.CentroidProfile {
	if len(vectors) < b.cfg.MinPointsToCluster {
		b.logger.WithField("points", len(vectors)).Debug("Too few points for clustering, using weighted average")
		return b.globalCentroid(vectors, weights)
	}

	labels, err := b.clusterer.Fit(vectors)
	if err != nil {
		// A failing backend is treated as "no structure found".
		b.logger.WithError(err).WithField("clusterer", b.clusterer.Name()).
			Warn("Clustering backend failed, falling back to global centroid")
		return b.globalCentroid(vectors, weights)
	}

	maxLabel := clustering.Noise
	for _, l := range labels {
		if l > maxLabel {
			maxLabel = l
		}
	}
	if maxLabel < 0 {
		return b.globalCentroid(vectors, weights)
	}

	return b.synthesize(vectors, weights, labels, maxLabel)
}

// globalCentroid summarizes all points as a single full-weight centroid.
func (b *Builder) globalCentroid(vectors [][]float64, weights []float64) []models.CentroidProfile {
	return []models.CentroidProfile{{
		ClusterID: 0,
		Centroid:  WeightedCentroid(vectors, weights),
		Weight:    1.0,
		PostCount: len(vectors),
	}}
}

// synthesize builds one centroid per cluster in ascending id order, then
// promotes the noise set to a miscellaneous cluster when it holds at
// least MinNoisePoints points. Smaller noise sets are discarded.
func (b *Builder) synthesize(vectors [][]float64, weights []float64, labels []int, maxLabel int) []models.CentroidProfile {
	var centroids []models.CentroidProfile

	gather := func(label int) (vecs [][]float64, wts []float64) {
		for i, l := range labels {
			if l == label {
				vecs = append(vecs, vectors[i])
				wts = append(wts, weights[i])
			}
		}
		return vecs, wts
	}

	for label := 0; label <= maxLabel; label++ {
		vecs, wts := gather(label)
		if len(vecs) == 0 {
			continue
		}
		var weightSum float64
		for _, w := range wts {
			weightSum += w
		}
		centroids = append(centroids, models.CentroidProfile{
			ClusterID: label,
			Centroid:  WeightedCentroid(vecs, wts),
			Weight:    weightSum,
			PostCount: len(vecs),
		})
	}

	noiseVecs, noiseWts := gather(clustering.Noise)
	if len(noiseVecs) >= b.cfg.MinNoisePoints {
		var weightSum float64
		for _, w := range noiseWts {
			weightSum += w
		}
		centroids = append(centroids, models.CentroidProfile{
			ClusterID: centroids[len(centroids)-1].ClusterID + 1,
			Centroid:  WeightedCentroid(noiseVecs, noiseWts),
			Weight:    weightSum,
			PostCount: len(noiseVecs),
		})
	}

	return centroids
}

// finalize normalizes cluster weights to sum to 1, keeps the heaviest
// MaxCentroids entries, and renormalizes the retained set. Ties at the
// truncation boundary break toward the lower cluster id so repeated runs
// agree. A zero total weight yields a uniform distribution: emitting
// unnormalized weights would break the downstream contract that profile
// weights are comparable shares.
func (b *Builder) finalize(centroids []models.CentroidProfile) []models.CentroidProfile {
	if len(centroids) == 0 {
		return centroids
	}

	var total float64
	for _, c := range centroids {
		total += c.Weight
	}
	for i := range centroids {
		if total > 0 {
			centroids[i].Weight /= total
		} else {
			centroids[i].Weight = 1 / float64(len(centroids))
		}
	}

	sort.SliceStable(centroids, func(i, j int) bool {
		if centroids[i].Weight != centroids[j].Weight {
			return centroids[i].Weight > centroids[j].Weight
		}
		return centroids[i].ClusterID < centroids[j].ClusterID
	})

	maxCentroids := b.cfg.MaxCentroids
	if maxCentroids <= 0 {
		maxCentroids = models.MaxCentroids
	}
	if len(centroids) > maxCentroids {
		centroids = centroids[:maxCentroids]

		var retained float64
		for _, c := range centroids {
			retained += c.Weight
		}
		if retained > 0 {
			for i := range centroids {
				centroids[i].Weight /= retained
			}
		}
	}

	return centroids
}
