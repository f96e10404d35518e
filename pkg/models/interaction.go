package models

import (
	"time"

	"github.com/google/uuid"
)

// EmbeddingDim is the dimensionality every interaction vector must have.
// Records with a missing or differently sized vector are dropped during
// preprocessing rather than treated as errors.
const EmbeddingDim = 512

// Interaction types recognized by the weighting preprocessor. Unknown
// types are accepted and fall back to the default base weight.
const (
	InteractionLike        = "like"
	InteractionRepost      = "repost"
	InteractionRequestMore = "requestMore"
	InteractionRequestLess = "requestLess"
)

// InteractionRecord is one row of a user's interaction snapshot: the
// embedding of the content that was interacted with, an optional custom
// weight multiplier, and the interaction type.
type InteractionRecord struct {
	Vector          []float64 `json:"vector"`
	Weight          *float64  `json:"weight,omitempty"`
	InteractionType string    `json:"interactionType,omitempty"`
}

// CustomWeight returns the record's weight multiplier, defaulting to 1.0.
func (r *InteractionRecord) CustomWeight() float64 {
	if r.Weight == nil {
		return 1.0
	}
	return *r.Weight
}

// SnapshotMessage is the Kafka payload carrying one user's full
// interaction snapshot for a profile build.
type SnapshotMessage struct {
	JobID        uuid.UUID           `json:"job_id"`
	UserID       uuid.UUID           `json:"user_id"`
	Interactions []InteractionRecord `json:"interactions"`
	Timestamp    time.Time           `json:"timestamp"`
	RetryCount   int                 `json:"retry_count"`
}
