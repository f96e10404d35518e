package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/solistra/profiler/internal/database"
)

type HealthHandler struct {
	logger *logrus.Logger
	db     *database.Database
}

func NewHealthHandler(logger *logrus.Logger, db *database.Database) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		db:     db,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := "healthy"
	checks := gin.H{}

	ctx := c.Request.Context()
	if h.db != nil && h.db.PG != nil {
		if err := h.db.PG.Ping(ctx); err != nil {
			status = "degraded"
			checks["postgres"] = err.Error()
		} else {
			checks["postgres"] = "ok"
		}
	}
	if h.db != nil && h.db.Redis != nil {
		if err := h.db.Redis.Ping(ctx).Err(); err != nil {
			status = "degraded"
			checks["redis"] = err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
