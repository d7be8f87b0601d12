package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/univdir/universities-api/internal/app"
	"github.com/univdir/universities-api/internal/config"
	"github.com/univdir/universities-api/internal/database"
	"github.com/univdir/universities-api/internal/directory"
	"github.com/univdir/universities-api/internal/health"
	"github.com/univdir/universities-api/internal/http/handler"
	"github.com/univdir/universities-api/internal/http/middleware"
	"github.com/univdir/universities-api/internal/http/router"
	"github.com/univdir/universities-api/internal/mail"
	"github.com/univdir/universities-api/internal/observability"
	"github.com/univdir/universities-api/internal/queue"
	"github.com/univdir/universities-api/internal/repository"
	"github.com/univdir/universities-api/internal/scheduler"
	"github.com/univdir/universities-api/internal/security"
	"github.com/univdir/universities-api/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideDirectoryClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewCredentialRepository,
	repository.NewResetTokenRepository,
	repository.NewUniversityRepository,
)

var ServiceSet = wire.NewSet(
	provideJWTManager,
	provideAuthService,
	service.NewUserService,
	provideListCache,
	service.NewUniversityService,
	provideIngestService,
	provideNotifier,
	provideQueue,
	provideScheduler,
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewUserHandler,
	handler.NewUniversityHandler,
	provideGlobalRateLimiter,
	provideAuthRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

type GlobalRateLimiter func(http.Handler) http.Handler
type AuthRateLimiter func(http.Handler) http.Handler

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if err := database.Seed(db, cfg.BootstrapUserEmail, cfg.BootstrapUserPassword); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	if !cfg.RedisEnabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// provideDirectoryClient blocks until the external directory answers;
// the service refuses to start against a dead directory.
func provideDirectoryClient(cfg *config.Config, logger *slog.Logger) (directory.Client, error) {
	client := directory.NewClient(cfg, logger)
	err := directory.WaitReady(context.Background(), client, cfg.StartupCheckAttempts, cfg.StartupCheckBackoff, logger)
	if err != nil {
		return nil, fmt.Errorf("directory startup check: %w", err)
	}
	return client, nil
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTSecret, cfg.JWTTTL)
}

func provideAuthService(
	users repository.UserRepository,
	credentials repository.CredentialRepository,
	resetTokens repository.ResetTokenRepository,
	jwtManager *security.JWTManager,
	cfg *config.Config,
	logger *slog.Logger,
) *service.AuthService {
	return service.NewAuthService(users, credentials, resetTokens, jwtManager,
		cfg.ResetTokenTTL, cfg.ResetResendCooldown, logger)
}

func provideListCache(cfg *config.Config, redisClient redis.UniversalClient, logger *slog.Logger) service.ListCache {
	client, ok := redisClient.(*redis.Client)
	if !cfg.RedisEnabled || !ok || client == nil {
		return service.NoopListCache{}
	}
	return service.NewRedisListCache(client, cfg.RedisPrefix, cfg.ListCacheTTL, logger)
}

func provideIngestService(
	client directory.Client,
	repo repository.UniversityRepository,
	cache service.ListCache,
	cfg *config.Config,
	logger *slog.Logger,
) *service.IngestService {
	return service.NewIngestService(client, repo, cache, cfg.DirectoryCountries, logger)
}

func provideNotifier(cfg *config.Config, logger *slog.Logger) (mail.Notifier, error) {
	return mail.NewNotifier(cfg, logger)
}

func provideQueue(cfg *config.Config, logger *slog.Logger) *queue.Queue {
	return queue.New(cfg.QueueCapacity, cfg.QueueWaitTimeout, logger)
}

func provideScheduler(cfg *config.Config, ingest *service.IngestService, logger *slog.Logger) (*scheduler.Scheduler, error) {
	if !cfg.IngestEnabled {
		return nil, nil
	}
	return scheduler.New(cfg.IngestCronSpec, cfg.IngestTimezone, ingest, logger)
}

func provideGlobalRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) GlobalRateLimiter {
	if cfg.RedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RedisPrefix+":rl:api")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.APIRateLimitPerMin,
			time.Minute,
			middleware.FailOpen,
			"api",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.APIRateLimitPerMin, time.Minute, "api").Middleware()
}

func provideAuthRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) AuthRateLimiter {
	if cfg.RedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RedisPrefix+":rl:auth")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.AuthRateLimitPerMin,
			time.Minute,
			middleware.FailClosed,
			"auth",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.AuthRateLimitPerMin, time.Minute, "auth").Middleware()
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient, dir directory.Client) *health.ProbeRunner {
	checkers := []health.Checker{
		health.NewDBChecker(db),
		health.NewDirectoryChecker(dir),
	}
	if cfg.RedisEnabled {
		checkers = append(checkers, health.NewRedisChecker(redisClient))
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	universityHandler *handler.UniversityHandler,
	jwtManager *security.JWTManager,
	globalRateLimiter GlobalRateLimiter,
	authRateLimiter AuthRateLimiter,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		UniversityHandler: universityHandler,
		JWTManager:        jwtManager,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		AuthRateLimitRPM:  cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:   cfg.APIRateLimitPerMin,
		GlobalRateLimiter: globalRateLimiter,
		AuthRateLimiter:   authRateLimiter,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	q *queue.Queue,
	sched *scheduler.Scheduler,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, q, sched)
}

// MigrationRunner backs the seed tool: open, migrate, seed.
type MigrationRunner struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewMigrationRunner(cfg *config.Config, db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, db: db}
}

func (m *MigrationRunner) Run() error {
	if err := database.Migrate(m.db); err != nil {
		return err
	}
	if err := database.Seed(m.db, m.cfg.BootstrapUserEmail, m.cfg.BootstrapUserPassword); err != nil {
		return err
	}
	fmt.Println("migration complete")
	return nil
}

func (m *MigrationRunner) Config() *config.Config { return m.cfg }
