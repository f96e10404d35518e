package profile

import (
	"gonum.org/v1/gonum/floats"

	"github.com/solistra/profiler/pkg/models"
)

// WeightedCentroid computes the weighted arithmetic mean of the given
// vectors and scales it to unit L2 norm. If every contribution cancels
// (zero norm), the exact zero vector is returned. It knows nothing about
// clustering; callers pass whatever subset of points they want summarized.
func WeightedCentroid(vectors [][]float64, weights []float64) []float64 {
	centroid := make([]float64, models.EmbeddingDim)
	if len(vectors) == 0 {
		return centroid
	}

	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}

	if totalWeight > 0 {
		for i, vec := range vectors {
			floats.AddScaled(centroid, weights[i]/totalWeight, vec)
		}
	} else {
		// All-zero weights degrade to an unweighted mean.
		for _, vec := range vectors {
			floats.AddScaled(centroid, 1/float64(len(vectors)), vec)
		}
	}

	if norm := floats.Norm(centroid, 2); norm > 0 {
		floats.Scale(1/norm, centroid)
	}
	return centroid
}
