package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/solistra/profiler/internal/config"
	"github.com/solistra/profiler/internal/database"
	"github.com/solistra/profiler/internal/storage"
)

type Handlers struct {
	Profile *ProfileHandler
	Health  *HealthHandler
}

func New(logger *logrus.Logger, cfg *config.Config, store *storage.ProfileStore, cache *storage.ProfileCache, db *database.Database) *Handlers {
	return &Handlers{
		Profile: NewProfileHandler(logger, cfg, store, cache),
		Health:  NewHealthHandler(logger, db),
	}
}
