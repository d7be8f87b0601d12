package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/univdir/universities-api/internal/config"
	"github.com/univdir/universities-api/internal/observability"
	"github.com/univdir/universities-api/internal/queue"
	"github.com/univdir/universities-api/internal/scheduler"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App bundles everything main needs to run and shut down the service.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	DB            *gorm.DB
	Redis         redis.UniversalClient
	Queue         *queue.Queue
	Scheduler     *scheduler.Scheduler

	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	q *queue.Queue,
	sched *scheduler.Scheduler,
) *App {
	return &App{
		Config:                   cfg,
		Logger:                   logger,
		Server:                   server,
		Observability:            runtime,
		DB:                       db,
		Redis:                    redisClient,
		Queue:                    q,
		Scheduler:                sched,
		ShutdownTimeout:              20 * time.Second,
		ShutdownHTTPDrainTimeout:     10 * time.Second,
		ShutdownObservabilityTimeout: 8 * time.Second,
	}
}
