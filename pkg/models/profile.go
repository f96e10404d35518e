package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxCentroids caps the number of centroids retained in a profile.
const MaxCentroids = 5

// CentroidProfile is one area of interest: a unit-length centroid over the
// embeddings that formed it, its normalized share of the user's total
// interaction weight, and how many interactions contributed.
type CentroidProfile struct {
	ClusterID int       `json:"clusterId"`
	Centroid  []float64 `json:"centroid"`
	Weight    float64   `json:"weight"`
	PostCount int       `json:"postCount"`
}

// InterestProfile is the stored form of a user's centroid set.
type InterestProfile struct {
	UserID    uuid.UUID         `json:"user_id"`
	Centroids []CentroidProfile `json:"centroids"`
	BuiltAt   time.Time         `json:"built_at"`
}

// ProfileBuildRequest is the synchronous build API payload.
type ProfileBuildRequest struct {
	UserID         *uuid.UUID          `json:"user_id,omitempty"`
	Interactions   []InteractionRecord `json:"interactions" validate:"required"`
	MinClusterSize *int                `json:"min_cluster_size,omitempty" validate:"omitempty,min=2"`
}

// ProfileBuildResponse wraps a build result for the API surface.
type ProfileBuildResponse struct {
	UserID    *uuid.UUID        `json:"user_id,omitempty"`
	Centroids []CentroidProfile `json:"centroids"`
	Dropped   int               `json:"dropped_records"`
	BuiltAt   time.Time         `json:"built_at"`
}
