package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/solistra/profiler/internal/clustering"
	"github.com/solistra/profiler/internal/config"
	"github.com/solistra/profiler/internal/profile"
	"github.com/solistra/profiler/internal/storage"
	"github.com/solistra/profiler/pkg/models"
)

type ProfileHandler struct {
	logger    *logrus.Logger
	cfg       *config.Config
	store     *storage.ProfileStore
	cache     *storage.ProfileCache
	validator *validator.Validate
}

func NewProfileHandler(logger *logrus.Logger, cfg *config.Config, store *storage.ProfileStore, cache *storage.ProfileCache) *ProfileHandler {
	return &ProfileHandler{
		logger:    logger,
		cfg:       cfg,
		store:     store,
		cache:     cache,
		validator: validator.New(),
	}
}

// Build runs the pipeline synchronously over the interactions in the
// request body. When a user id is present and a store is configured, the
// result is also persisted and cached.
func (h *ProfileHandler) Build(c *gin.Context) {
	var req models.ProfileBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request format",
				"details": err.Error(),
			},
		})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Request validation failed",
				"details": err.Error(),
			},
		})
		return
	}

	builder, err := h.builderFor(req.MinClusterSize)
	if err != nil {
		h.logger.WithError(err).Error("Failed to construct clusterer")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "CLUSTERER_UNAVAILABLE",
				"message": "Failed to construct clustering backend",
			},
		})
		return
	}

	result, err := builder.Build(req.Interactions)
	if err != nil {
		h.logger.WithError(err).Error("Profile build failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "BUILD_FAILED",
				"message": "Failed to build interest profile",
			},
		})
		return
	}

	builtAt := time.Now()
	if req.UserID != nil {
		h.persist(c.Request.Context(), *req.UserID, result.Centroids, builtAt)
	}

	c.JSON(http.StatusOK, gin.H{
		"data": models.ProfileBuildResponse{
			UserID:    req.UserID,
			Centroids: result.Centroids,
			Dropped:   result.Dropped,
			BuiltAt:   builtAt,
		},
	})
}

// Get returns a stored profile, reading through the cache.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user ID format",
			},
		})
		return
	}

	if h.cache != nil {
		cached, err := h.cache.Get(c.Request.Context(), userID)
		if err != nil {
			h.logger.WithError(err).Warn("Profile cache read failed")
		} else if cached != nil {
			c.JSON(http.StatusOK, gin.H{"data": cached})
			return
		}
	}

	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":    "PROFILE_NOT_FOUND",
				"message": "No profile stored for this user",
			},
		})
		return
	}

	stored, err := h.store.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "PROFILE_NOT_FOUND",
					"message": "No profile stored for this user",
				},
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load profile")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "PROFILE_LOAD_FAILED",
				"message": "Failed to load profile",
			},
		})
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), stored); err != nil {
			h.logger.WithError(err).Warn("Failed to cache profile")
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": stored})
}

// builderFor returns the default builder, or one with an overridden
// clustering sensitivity when the request asks for it.
func (h *ProfileHandler) builderFor(minClusterSize *int) (*profile.Builder, error) {
	clusterCfg := clustering.Config{
		MinClusterSize:  h.cfg.Profile.Clustering.MinClusterSize,
		MinSamples:      h.cfg.Profile.Clustering.MinSamples,
		Metric:          h.cfg.Profile.Clustering.Metric,
		SelectionMethod: h.cfg.Profile.Clustering.SelectionMethod,
		Epsilon:         h.cfg.Profile.Clustering.Epsilon,
	}
	if minClusterSize != nil {
		clusterCfg.MinClusterSize = *minClusterSize
	}

	clusterer, err := clustering.New(h.cfg.Profile.Clustering.Algorithm, clusterCfg)
	if err != nil {
		return nil, err
	}
	return profile.NewBuilder(h.cfg.Profile, h.logger, clusterer), nil
}

func (h *ProfileHandler) persist(ctx context.Context, userID uuid.UUID, centroids []models.CentroidProfile, builtAt time.Time) {
	if h.store != nil {
		if err := h.store.SaveProfile(ctx, userID, centroids, builtAt); err != nil {
			h.logger.WithError(err).WithField("user_id", userID).Error("Failed to store profile")
			return
		}
	}
	if h.cache != nil {
		p := &models.InterestProfile{UserID: userID, Centroids: centroids, BuiltAt: builtAt}
		if err := h.cache.Set(ctx, p); err != nil {
			h.logger.WithError(err).WithField("user_id", userID).Warn("Failed to cache profile")
		}
	}
}
