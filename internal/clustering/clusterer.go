package clustering

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Noise is the label assigned to points that belong to no cluster.
const Noise = -1

// Config holds the density-clustering parameters shared by all backends.
type Config struct {
	// MinClusterSize is the smallest group of points that may form a cluster.
	MinClusterSize int
	// MinSamples is the neighborhood size used for density estimation.
	MinSamples int
	// Metric names the distance function. Only "euclidean" is supported.
	Metric string
	// SelectionMethod picks the flat-clustering strategy for hierarchical
	// backends: "eom" (excess of mass) or "leaf".
	SelectionMethod string
	// Epsilon is the neighborhood radius used by the DBSCAN backend.
	Epsilon float64
}

// Clusterer partitions a set of vectors into dense clusters plus noise.
//
// Fit returns one label per input vector: consecutive cluster ids starting
// at 0, or Noise. Implementations must be deterministic for identical
// input so repeated profile builds produce identical output.
type Clusterer interface {
	Fit(vectors [][]float64) ([]int, error)
	Name() string
}

// New builds the configured clustering backend.
func New(algorithm string, cfg Config) (Clusterer, error) {
	if cfg.Metric != "" && cfg.Metric != "euclidean" {
		return nil, fmt.Errorf("unsupported metric %q", cfg.Metric)
	}
	switch cfg.SelectionMethod {
	case "", "eom", "leaf":
	default:
		return nil, fmt.Errorf("unsupported selection method %q", cfg.SelectionMethod)
	}

	switch algorithm {
	case "", "hdbscan":
		return &HDBSCAN{cfg: cfg}, nil
	case "dbscan":
		return &DBSCAN{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown clustering algorithm %q", algorithm)
	}
}

// Static returns pre-computed labels regardless of input. It exists for
// tests that need full control over the partition.
type Static struct {
	Labels []int
	Err    error
}

func (s *Static) Fit(vectors [][]float64) ([]int, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Labels) != len(vectors) {
		return nil, fmt.Errorf("static clusterer has %d labels for %d vectors", len(s.Labels), len(vectors))
	}
	return append([]int(nil), s.Labels...), nil
}

func (s *Static) Name() string { return "static" }

// distanceMatrix computes pairwise euclidean distances.
func distanceMatrix(vectors [][]float64) [][]float64 {
	n := len(vectors)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(vectors[i], vectors[j], 2)
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}
