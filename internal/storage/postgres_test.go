package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solistra/profiler/pkg/models"
)

func testCentroid(dim int) []float64 {
	v := make([]float64, models.EmbeddingDim)
	v[dim] = 1
	return v
}

func TestProfileStore_SaveProfile(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	store := NewProfileStore(mockDB, logger)

	userID := uuid.New()
	builtAt := time.Now()
	centroids := []models.CentroidProfile{
		{ClusterID: 0, Centroid: testCentroid(0), Weight: 0.75, PostCount: 9},
		{ClusterID: 1, Centroid: testCentroid(1), Weight: 0.25, PostCount: 3},
	}

	t.Run("replaces previous rows in one transaction", func(t *testing.T) {
		mockDB.ExpectBegin()
		mockDB.ExpectExec("DELETE FROM user_interest_centroids").
			WithArgs(userID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mockDB.ExpectExec("INSERT INTO user_interest_centroids").
			WithArgs(userID, 0, pgxmock.AnyArg(), 0.75, 9, builtAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDB.ExpectExec("INSERT INTO user_interest_centroids").
			WithArgs(userID, 1, pgxmock.AnyArg(), 0.25, 3, builtAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDB.ExpectCommit()

		err := store.SaveProfile(context.Background(), userID, centroids, builtAt)
		require.NoError(t, err)
		require.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		mockDB.ExpectBegin()
		mockDB.ExpectExec("DELETE FROM user_interest_centroids").
			WithArgs(userID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mockDB.ExpectExec("INSERT INTO user_interest_centroids").
			WithArgs(userID, 0, pgxmock.AnyArg(), 0.75, 9, builtAt).
			WillReturnError(assert.AnError)
		mockDB.ExpectRollback()

		err := store.SaveProfile(context.Background(), userID, centroids, builtAt)
		assert.ErrorIs(t, err, assert.AnError)
		require.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestProfileStore_GetProfile(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	store := NewProfileStore(mockDB, logger)

	userID := uuid.New()
	builtAt := time.Now()

	t.Run("returns centroids heaviest first", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"cluster_id", "centroid", "weight", "post_count", "built_at"}).
			AddRow(0, pgvector.NewVector(toFloat32(testCentroid(0))), 0.75, 9, builtAt).
			AddRow(1, pgvector.NewVector(toFloat32(testCentroid(1))), 0.25, 3, builtAt)

		mockDB.ExpectQuery("SELECT cluster_id, centroid, weight, post_count, built_at").
			WithArgs(userID).
			WillReturnRows(rows)

		profile, err := store.GetProfile(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, userID, profile.UserID)
		require.Len(t, profile.Centroids, 2)
		assert.Equal(t, 0, profile.Centroids[0].ClusterID)
		assert.InDelta(t, 0.75, profile.Centroids[0].Weight, 1e-9)
		assert.InDelta(t, 1.0, profile.Centroids[0].Centroid[0], 1e-6)
		assert.Equal(t, 9, profile.Centroids[0].PostCount)
		require.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("missing profile yields ErrNotFound", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"cluster_id", "centroid", "weight", "post_count", "built_at"})

		mockDB.ExpectQuery("SELECT cluster_id, centroid, weight, post_count, built_at").
			WithArgs(userID).
			WillReturnRows(rows)

		_, err := store.GetProfile(context.Background(), userID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
