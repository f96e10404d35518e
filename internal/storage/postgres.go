package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"

	"github.com/solistra/profiler/pkg/models"
)

// ErrNotFound is returned when a user has no stored profile.
var ErrNotFound = errors.New("profile not found")

// PgxPool is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ProfileStore persists centroid profiles in PostgreSQL. Centroids go
// into a pgvector column so the downstream recommender can score content
// against them in SQL.
type ProfileStore struct {
	pool   PgxPool
	logger *logrus.Logger
}

func NewProfileStore(pool PgxPool, logger *logrus.Logger) *ProfileStore {
	return &ProfileStore{
		pool:   pool,
		logger: logger,
	}
}

// SaveProfile replaces the user's centroid set in one transaction. The
// delete-then-insert shape keeps re-runs idempotent: rebuilding from the
// same snapshot leaves the same rows.
func (s *ProfileStore) SaveProfile(ctx context.Context, userID uuid.UUID, centroids []models.CentroidProfile, builtAt time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM user_interest_centroids WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear previous profile: %w", err)
	}

	for _, c := range centroids {
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_interest_centroids (user_id, cluster_id, centroid, weight, post_count, built_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			userID, c.ClusterID, pgvector.NewVector(toFloat32(c.Centroid)), c.Weight, c.PostCount, builtAt,
		); err != nil {
			return fmt.Errorf("failed to insert centroid %d: %w", c.ClusterID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit profile: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"centroids": len(centroids),
	}).Debug("Stored interest profile")

	return nil
}

// GetProfile loads the user's centroid set, heaviest first.
func (s *ProfileStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.InterestProfile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT cluster_id, centroid, weight, post_count, built_at
		FROM user_interest_centroids
		WHERE user_id = $1
		ORDER BY weight DESC, cluster_id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	defer rows.Close()

	profile := &models.InterestProfile{UserID: userID}
	for rows.Next() {
		var (
			c   models.CentroidProfile
			vec pgvector.Vector
		)
		if err := rows.Scan(&c.ClusterID, &vec, &c.Weight, &c.PostCount, &profile.BuiltAt); err != nil {
			return nil, fmt.Errorf("failed to scan centroid: %w", err)
		}
		c.Centroid = toFloat64(vec.Slice())
		profile.Centroids = append(profile.Centroids, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read profile rows: %w", err)
	}
	if len(profile.Centroids) == 0 {
		return nil, ErrNotFound
	}

	return profile, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
