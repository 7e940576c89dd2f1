package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wildcare/compliance-engine/internal/audit"
	"github.com/wildcare/compliance-engine/internal/cache"
	"github.com/wildcare/compliance-engine/internal/config"
	"github.com/wildcare/compliance-engine/internal/database"
	"github.com/wildcare/compliance-engine/internal/events"
	"github.com/wildcare/compliance-engine/internal/handlers"
	"github.com/wildcare/compliance-engine/internal/jurisdiction"
	"github.com/wildcare/compliance-engine/internal/metrics"
	"github.com/wildcare/compliance-engine/internal/middleware"
	"github.com/wildcare/compliance-engine/internal/scheduler"
	"github.com/wildcare/compliance-engine/internal/service"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the readiness scheduler",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			app := newApp(cfg)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func newApp(cfg *config.Config) *fx.App {
	return fx.New(appOptions(cfg))
}

func appOptions(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			newRegistry,
			newDatabase,
			newRepository,
			newReportCache,
			newPublisher,
			newAuditLogger,
			newMetrics,
			newService,
			newScheduler,
			newRouter,
		),
		fx.Invoke(registerScheduler, registerHTTPServer),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
	)
}

func newLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	logger, err := cfg.InitLogger()
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("service", serviceName), zap.String("version", version))

	logger.Info("Starting compliance engine", zap.String("environment", cfg.Environment))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}

func newRegistry(cfg *config.Config, logger *zap.Logger) (jurisdiction.Registry, error) {
	registry, err := jurisdiction.LoadRegistry(cfg.Jurisdictions.OverridesPath)
	if err != nil {
		return nil, err
	}
	if cfg.Jurisdictions.OverridesPath != "" {
		logger.Info("Loaded jurisdiction overrides", zap.String("path", cfg.Jurisdictions.OverridesPath))
	}
	return registry, nil
}

func newDatabase(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.GetMigrationURL(), database.Up, logger); err != nil {
			return nil, err
		}
	}

	db, err := database.Connect(cfg, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return database.Close(db)
		},
	})
	return db, nil
}

func newRepository(db *gorm.DB, logger *zap.Logger) *database.Repository {
	return database.NewRepository(db, logger)
}

func newReportCache(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) cache.ReportCache {
	if !cfg.Redis.Enabled {
		logger.Info("Redis disabled, readiness reports are not cached")
		return cache.Noop{}
	}

	client := cache.NewRedisClient(cfg)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return cache.NewRedisCache(client, cfg.Redis.ReportTTL, logger)
}

func newPublisher(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) events.Publisher {
	if !cfg.Kafka.Enabled {
		logger.Info("Kafka disabled, compliance events are only logged")
		return events.NewLogPublisher(logger)
	}

	publisher := events.NewKafkaPublisher(cfg.Kafka, logger)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	return publisher
}

func newAuditLogger(lc fx.Lifecycle, cfg *config.Config, repo *database.Repository, logger *zap.Logger) *audit.AuditLogger {
	al := audit.NewAuditLogger(cfg.Audit, repo, logger)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return al.Start(context.Background())
		},
		OnStop: al.Stop,
	})
	return al
}

func newMetrics() *metrics.Collector {
	return metrics.NewCollector(prometheus.DefaultRegisterer)
}

func newService(
	repo *database.Repository,
	registry jurisdiction.Registry,
	reportCache cache.ReportCache,
	publisher events.Publisher,
	al *audit.AuditLogger,
	collector *metrics.Collector,
	logger *zap.Logger,
) *service.Service {
	return service.New(repo, registry, reportCache, publisher, al, collector, logger)
}

// newScheduler returns nil when the sweep is disabled
func newScheduler(cfg *config.Config, svc *service.Service, logger *zap.Logger) (*scheduler.Scheduler, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	return scheduler.NewScheduler(cfg.Scheduler, svc, logger)
}

func registerScheduler(lc fx.Lifecycle, s *scheduler.Scheduler, logger *zap.Logger) {
	if s == nil {
		logger.Info("Readiness scheduler disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}

func newRouter(
	cfg *config.Config,
	svc *service.Service,
	db *gorm.DB,
	reportCache cache.ReportCache,
	collector *metrics.Collector,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		collector.GinMiddleware(),
	)

	tenant := middleware.Tenant(cfg.Auth, logger)
	handlers.NewComplianceHandler(svc, tenant, logger).RegisterRoutes(router)

	checks := map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisCache, ok := reportCache.(*cache.RedisCache); ok {
		checks["redis"] = redisCache.Ping
	}
	handlers.NewHealthHandler(checks, logger).RegisterRoutes(router, cfg.Monitoring.HealthPath)

	if cfg.Monitoring.EnableMetrics {
		router.GET(cfg.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	return router
}

func registerHTTPServer(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine, logger *zap.Logger) {
	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
			}
			logger.Info("HTTP server listening", zap.String("addr", server.Addr))

			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			logger.Info("Shutting down HTTP server")
			return server.Shutdown(shutdownCtx)
		},
	})
}
