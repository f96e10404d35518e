package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solistra/profiler/internal/config"
	"github.com/solistra/profiler/pkg/models"
)

func setupProfileRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	h := NewProfileHandler(logger, config.Default(), nil, nil)

	router := gin.New()
	router.POST("/api/v1/profiles/build", h.Build)
	router.GET("/api/v1/profiles/:userId", h.Get)
	return router
}

func unitVector(dim int) []float64 {
	v := make([]float64, models.EmbeddingDim)
	v[dim] = 1
	return v
}

func TestProfileHandler_Build(t *testing.T) {
	router := setupProfileRouter(t)

	t.Run("builds a fallback profile from a small snapshot", func(t *testing.T) {
		req := models.ProfileBuildRequest{
			Interactions: []models.InteractionRecord{
				{Vector: unitVector(0), InteractionType: models.InteractionLike},
				{Vector: unitVector(0), InteractionType: models.InteractionLike},
				{Vector: unitVector(0), InteractionType: models.InteractionLike},
			},
		}
		body, err := json.Marshal(req)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/profiles/build", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data models.ProfileBuildResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data.Centroids, 1)
		assert.Equal(t, 0, resp.Data.Centroids[0].ClusterID)
		assert.Equal(t, 3, resp.Data.Centroids[0].PostCount)
		assert.InDelta(t, 1.0, resp.Data.Centroids[0].Weight, 1e-6)
		assert.Zero(t, resp.Data.Dropped)
	})

	t.Run("reports dropped records", func(t *testing.T) {
		req := models.ProfileBuildRequest{
			Interactions: []models.InteractionRecord{
				{Vector: unitVector(0), InteractionType: models.InteractionLike},
				{Vector: []float64{1, 2, 3}, InteractionType: models.InteractionLike},
			},
		}
		body, err := json.Marshal(req)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/profiles/build", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data models.ProfileBuildResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Data.Dropped)
	})

	t.Run("empty snapshot yields empty centroid list", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/profiles/build",
			bytes.NewReader([]byte(`{"interactions": []}`)))
		r.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data models.ProfileBuildResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Data.Centroids)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/profiles/build",
			bytes.NewReader([]byte(`{"interactions": `)))
		r.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("min cluster size below two is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/profiles/build",
			bytes.NewReader([]byte(`{"interactions": [], "min_cluster_size": 1}`)))
		r.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProfileHandler_Get(t *testing.T) {
	router := setupProfileRouter(t)

	t.Run("invalid user id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/not-a-uuid", nil)
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no store configured yields not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/5a9ff3a0-6b2a-4f47-a0af-ebc5ba0a9d9c", nil)
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
