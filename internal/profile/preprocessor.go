package profile

import (
	"strings"

	"github.com/solistra/profiler/internal/config"
	"github.com/solistra/profiler/pkg/models"
)

// preprocess converts raw interaction records into parallel vector and
// weight slices. Records without an exactly 512-dimensional vector are
// dropped silently; the returned dropped count is the only trace of them.
//
// Sign resolution: a negative combined weight (a requestLess base, or a
// negative custom multiplier) negates the vector so the centroid is
// pushed away from the disliked direction, and the weight keeps its
// magnitude. Downstream weights are therefore always non-negative.
func preprocess(records []models.InteractionRecord, cfg config.ProfileConfig) (vectors [][]float64, weights []float64, dropped int) {
	for _, rec := range records {
		if len(rec.Vector) != models.EmbeddingDim {
			dropped++
			continue
		}

		base, ok := cfg.InteractionWeights[rec.InteractionType]
		if !ok {
			// weight tables loaded from a config file have lowercased keys
			base, ok = cfg.InteractionWeights[strings.ToLower(rec.InteractionType)]
		}
		if !ok {
			base = cfg.DefaultWeight
		}

		weight := base * rec.CustomWeight()
		vec := rec.Vector
		if weight < 0 {
			negated := make([]float64, len(vec))
			for i, v := range vec {
				negated[i] = -v
			}
			vec = negated
			weight = -weight
		}

		vectors = append(vectors, vec)
		weights = append(weights, weight)
	}
	return vectors, weights, dropped
}
