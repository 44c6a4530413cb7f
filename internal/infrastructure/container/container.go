// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alchemorsel/mealguard/internal/application/allergen"
	"github.com/alchemorsel/mealguard/internal/application/gateway"
	"github.com/alchemorsel/mealguard/internal/application/generation"
	"github.com/alchemorsel/mealguard/internal/application/locale"
	"github.com/alchemorsel/mealguard/internal/application/prompt"
	"github.com/alchemorsel/mealguard/internal/application/quota"
	"github.com/alchemorsel/mealguard/internal/application/session"
	"github.com/alchemorsel/mealguard/internal/application/validation"
	"github.com/alchemorsel/mealguard/internal/infrastructure/ai/gemini"
	"github.com/alchemorsel/mealguard/internal/infrastructure/ai/ollama"
	"github.com/alchemorsel/mealguard/internal/infrastructure/config"
	"github.com/alchemorsel/mealguard/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/mealguard/internal/infrastructure/monitoring"
	gormRepo "github.com/alchemorsel/mealguard/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/mealguard/internal/infrastructure/persistence/memory"
	redisRepo "github.com/alchemorsel/mealguard/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/mealguard/internal/ports/inbound"
	"github.com/alchemorsel/mealguard/internal/ports/outbound"
	"github.com/alchemorsel/mealguard/pkg/healthcheck"
	"github.com/alchemorsel/mealguard/pkg/logger"
)

// ConfigFileEnv names the environment variable holding an explicit config file path
const ConfigFileEnv = "MEALGUARD_CONFIG_FILE"

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	ObservabilityModule,
	CacheModule,
	DatabaseModule,
	GeneratorModule,
	PipelineModule,
	HealthModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load(os.Getenv(ConfigFileEnv))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// ObservabilityModule provides metrics and tracing
var ObservabilityModule = fx.Provide(
	// nil when metrics are disabled; the server then skips /metrics
	func(cfg *config.Config, log *zap.Logger) *monitoring.MetricsCollector {
		if !cfg.Monitoring.EnableMetrics {
			return nil
		}
		return monitoring.NewMetricsCollector(log)
	},
	func(m *monitoring.MetricsCollector) outbound.PipelineMetrics {
		if m == nil {
			return outbound.NopMetrics{}
		}
		return m
	},
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		tp, err := monitoring.NewTracingProvider(monitoring.TracingConfig{
			Enabled:        cfg.Monitoring.EnableTracing,
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			Insecure:       cfg.Monitoring.OTLPInsecure,
			SamplingRate:   cfg.Monitoring.SamplingRate,
		}, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: tp.Shutdown})
		return tp, nil
	},
)

// CacheModule provides the report cache. Redis is used when enabled,
// otherwise an in-process cache.
var CacheModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, error) {
		if !cfg.Redis.Enabled {
			log.Info("Using in-memory report cache")
			repo := memory.NewCacheRepository(time.Minute)
			lc.Append(fx.Hook{OnStop: func(context.Context) error { return repo.Close() }})
			return repo, nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout+cfg.Redis.ReadTimeout)
		defer cancel()
		client, err := redisRepo.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		repo := redisRepo.NewCacheRepository(client, cfg.Redis.KeyPrefix, log)
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return repo.Close() }})
		return repo, nil
	},
)

// DatabaseModule provides preference persistence. Both values are nil when
// the database is disabled and sessions then live in memory only.
var DatabaseModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		if !cfg.Database.Enabled {
			return nil, nil
		}
		db, err := gormRepo.Open(cfg, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}})
		return db, nil
	},
	func(db *gorm.DB) outbound.PreferenceRepository {
		if db == nil {
			return nil
		}
		return gormRepo.NewPreferenceRepository(db)
	},
)

// GeneratorModule provides the generative service client
var GeneratorModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (outbound.Generator, error) {
		switch cfg.AI.Provider {
		case config.ProviderGemini:
			client, err := gemini.NewClient(context.Background(), cfg.AI, log)
			if err != nil {
				return nil, err
			}
			lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
			return client, nil
		case config.ProviderOllama:
			return ollama.NewClient(cfg.AI, &http.Client{Timeout: cfg.AI.RequestTimeout}, log), nil
		default:
			return nil, fmt.Errorf("unsupported ai provider %q", cfg.AI.Provider)
		}
	},
)

// PipelineModule provides the generation pipeline and the session store
var PipelineModule = fx.Provide(
	allergen.NewGuard,
	quota.NewPolicy,
	locale.NewRouter,
	prompt.NewComposer,
	gateway.New,
	func(cfg *config.Config, log *zap.Logger) *validation.Validator {
		return validation.NewValidator(validation.Config{AllowTruncate: cfg.Pipeline.AllowTruncate}, log)
	},
	func(
		cfg *config.Config,
		guard *allergen.Guard,
		policy *quota.Policy,
		composer *prompt.Composer,
		gw *gateway.Gateway,
		validator *validation.Validator,
		cache outbound.CacheRepository,
		metrics outbound.PipelineMetrics,
		log *zap.Logger,
	) inbound.GenerationService {
		return generation.NewService(generation.Config{
			MaxAttempts:    cfg.AI.MaxAttempts,
			RequestTimeout: cfg.AI.RequestTimeout,
			ReportTTL:      cfg.Pipeline.ReportTTL,
		}, guard, policy, composer, gw, validator, cache, metrics, log)
	},
	func(cfg *config.Config, repo outbound.PreferenceRepository, log *zap.Logger) *session.Service {
		return session.NewService(session.Config{IdleTTL: cfg.Session.IdleTTL}, repo, log)
	},
	func(s *session.Service) inbound.SessionService { return s },
)

// HealthModule provides health checks over the generator and backing stores
var HealthModule = fx.Options(
	fx.Provide(func(cfg *config.Config, log *zap.Logger) *healthcheck.HealthCheck {
		return healthcheck.New(cfg.App.Version, log)
	}),
	fx.Invoke(RegisterHealthChecks),
)

// RegisterHealthChecks wires a probe for every dependency that exposes one.
// The generator is critical; cache and database failures only degrade.
func RegisterHealthChecks(
	health *healthcheck.HealthCheck,
	gen outbound.Generator,
	cache outbound.CacheRepository,
	db *gorm.DB,
	log *zap.Logger,
) error {
	if probe, ok := gen.(interface{ HealthCheck(context.Context) error }); ok {
		health.Register("generator", healthcheck.NewFuncChecker("generator", probe.HealthCheck))
	}
	if probe, ok := cache.(interface{ Ping(context.Context) error }); ok {
		health.RegisterOptional("cache", healthcheck.NewFuncChecker("cache", probe.Ping))
	}
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database handle: %w", err)
		}
		health.RegisterOptional("database", healthcheck.NewPingChecker(sqlDB))
	}
	log.Debug("Registered health checks", zap.String("generator", gen.Name()))
	return nil
}

// HTTPModule provides the API server
var HTTPModule = fx.Provide(
	apiserver.NewServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks starts the session sweeper and the HTTP server and
// stops them in reverse order
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	sessions *session.Service,
	server *apiserver.Server,
	_ *monitoring.TracingProvider,
) {
	sweepCtx, stopSweep := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Mealguard",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("ai_provider", cfg.AI.Provider),
			)

			if cfg.Session.IdleTTL > 0 && cfg.Session.SweepInterval > 0 {
				go sessions.Run(sweepCtx, cfg.Session.SweepInterval)
			}

			go func() {
				if err := server.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Mealguard")
			stopSweep()

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
