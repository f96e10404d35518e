package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/solistra/profiler/internal/clustering"
	"github.com/solistra/profiler/internal/config"
	"github.com/solistra/profiler/internal/database"
	"github.com/solistra/profiler/internal/handlers"
	"github.com/solistra/profiler/internal/messaging"
	"github.com/solistra/profiler/internal/metrics"
	"github.com/solistra/profiler/internal/middleware"
	"github.com/solistra/profiler/internal/profile"
	"github.com/solistra/profiler/internal/storage"
	"github.com/solistra/profiler/pkg/models"
)

type App struct {
	config      *config.Config
	logger      *logrus.Logger
	db          *database.Database
	store       *storage.ProfileStore
	cache       *storage.ProfileCache
	builder     *profile.Builder
	bus         *messaging.MessageBus
	handlers    *handlers.Handlers
	router      *gin.Engine
	consumerCtx context.Context
	stopConsume context.CancelFunc
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if db.PG != nil {
		app.store = storage.NewProfileStore(db.PG, app.logger)
	}
	if db.Redis != nil {
		app.cache = storage.NewProfileCache(db.Redis, cfg.Redis.ProfileTTL, app.logger)
	}

	clusterer, err := clustering.New(cfg.Profile.Clustering.Algorithm, clustering.Config{
		MinClusterSize:  cfg.Profile.Clustering.MinClusterSize,
		MinSamples:      cfg.Profile.Clustering.MinSamples,
		Metric:          cfg.Profile.Clustering.Metric,
		SelectionMethod: cfg.Profile.Clustering.SelectionMethod,
		Epsilon:         cfg.Profile.Clustering.Epsilon,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize clusterer: %w", err)
	}
	app.builder = profile.NewBuilder(cfg.Profile, app.logger, clusterer)

	app.handlers = handlers.New(app.logger, cfg, app.store, app.cache, db)

	if len(cfg.Kafka.Brokers) > 0 {
		bus, err := messaging.NewMessageBus(cfg, app.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize message bus: %w", err)
		}
		app.bus = bus
		app.startConsumer()
	}

	app.setupRouter()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// startConsumer runs the snapshot consumer: each message is one user's
// full interaction snapshot, profiled and written to the store and cache.
func (a *App) startConsumer() {
	a.consumerCtx, a.stopConsume = context.WithCancel(context.Background())

	go func() {
		err := a.bus.Consume(a.consumerCtx, func(ctx context.Context, msg models.SnapshotMessage) error {
			result, err := a.builder.Build(msg.Interactions)
			if err != nil {
				metrics.ObserveSnapshot("build_failed")
				return err
			}

			builtAt := time.Now()
			if a.store != nil {
				if err := a.store.SaveProfile(ctx, msg.UserID, result.Centroids, builtAt); err != nil {
					metrics.ObserveSnapshot("store_failed")
					return err
				}
			}
			if a.cache != nil {
				p := &models.InterestProfile{UserID: msg.UserID, Centroids: result.Centroids, BuiltAt: builtAt}
				if err := a.cache.Set(ctx, p); err != nil {
					a.logger.WithError(err).Warn("Failed to cache profile from snapshot")
				}
			}

			metrics.ObserveSnapshot("ok")
			return nil
		})
		if err != nil && a.consumerCtx.Err() == nil {
			a.logger.WithError(err).Error("Snapshot consumer stopped")
		}
	}()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.stopConsume != nil {
		a.stopConsume()
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing message bus")
		}
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	router.GET("/health", a.handlers.Health.Check)

	if a.config.Monitoring.Enabled {
		router.GET(a.config.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	if a.config.Auth.JWTSecret != "" {
		api.Use(middleware.Auth(a.config.Auth.JWTSecret, a.logger))
	}
	{
		api.POST("/profiles/build", a.handlers.Profile.Build)
		api.GET("/profiles/:userId", a.handlers.Profile.Get)
	}

	a.router = router
}
