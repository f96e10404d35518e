package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	t.Run("interaction weight table", func(t *testing.T) {
		assert.InDelta(t, 1.0, cfg.Profile.InteractionWeights["like"], 1e-9)
		assert.InDelta(t, 1.5, cfg.Profile.InteractionWeights["repost"], 1e-9)
		// typed map defaults keep their original case in viper
		assert.InDelta(t, 3.0, cfg.Profile.InteractionWeights["requestMore"], 1e-9)
		assert.InDelta(t, -2.0, cfg.Profile.InteractionWeights["requestLess"], 1e-9)
		assert.InDelta(t, 1.0, cfg.Profile.DefaultWeight, 1e-9)
	})

	t.Run("pipeline thresholds", func(t *testing.T) {
		assert.Equal(t, 10, cfg.Profile.MinPointsToCluster)
		assert.Equal(t, 3, cfg.Profile.MinNoisePoints)
		assert.Equal(t, 5, cfg.Profile.MaxCentroids)
	})

	t.Run("clustering parameters", func(t *testing.T) {
		assert.Equal(t, "hdbscan", cfg.Profile.Clustering.Algorithm)
		assert.Equal(t, 5, cfg.Profile.Clustering.MinClusterSize)
		assert.Equal(t, 2, cfg.Profile.Clustering.MinSamples)
		assert.Equal(t, "euclidean", cfg.Profile.Clustering.Metric)
		assert.Equal(t, "eom", cfg.Profile.Clustering.SelectionMethod)
	})

	t.Run("server and logging", func(t *testing.T) {
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "info", cfg.Logging.Level)
	})
}
