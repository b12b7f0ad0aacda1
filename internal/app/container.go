// Package app wires configuration, storage, messaging and handlers into a
// runnable application.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/kairos/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
	"github.com/felixgeelhaar/kairos/internal/scheduling/infrastructure/cache"
	"github.com/felixgeelhaar/kairos/internal/scheduling/infrastructure/persistence"
	"github.com/felixgeelhaar/kairos/internal/session"
	"github.com/felixgeelhaar/kairos/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kairos/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/kairos/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/kairos/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/kairos/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/kairos/pkg/config"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	SQLiteDB     *sql.DB
	PostgresPool *pgxpool.Pool
	DBDriver     database.Driver

	// Redis
	RedisClient *redis.Client

	CalendarRepo   domain.CalendarRepository
	EventPublisher eventbus.Publisher
	ReportCache    *cache.ReportCache
	Sessions       *session.Registry

	// Commands
	AddEvent         *commands.AddEventHandler
	RemoveEvent      *commands.RemoveEventHandler
	ClearSchedule    *commands.ClearScheduleHandler
	OptimizeSchedule *commands.OptimizeScheduleHandler

	// Queries
	ListEvents   *queries.ListEventsHandler
	GetConflicts *queries.GetConflictsHandler
	FindSlots    *queries.FindSlotsHandler
	GetSummary   *queries.GetSummaryHandler
	GetReport    *queries.GetReportHandler
}

// NewContainer builds the full dependency graph.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger := newLogger(cfg)

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if err := c.connectDatabase(ctx); err != nil {
		return nil, err
	}

	c.connectRedis(ctx)
	c.connectPublisher()

	c.ReportCache = cache.NewReportCache(c.RedisClient, cfg.ReportTTL, logger)

	c.Sessions = session.NewRegistry(c.CalendarRepo, session.Config{
		WindowStartHour: cfg.WindowStartHour,
		WindowEndHour:   cfg.WindowEndHour,
		IdleTTL:         cfg.SessionIdleTTL,
		SweepSchedule:   cfg.SweepSchedule,
	}, logger)

	c.AddEvent = commands.NewAddEventHandler(c.Sessions, c.EventPublisher, c.ReportCache, logger)
	c.RemoveEvent = commands.NewRemoveEventHandler(c.Sessions, c.EventPublisher, c.ReportCache, logger)
	c.ClearSchedule = commands.NewClearScheduleHandler(c.Sessions, c.EventPublisher, c.ReportCache, logger)
	c.OptimizeSchedule = commands.NewOptimizeScheduleHandler(c.Sessions, c.EventPublisher, c.ReportCache, logger)

	c.ListEvents = queries.NewListEventsHandler(c.Sessions)
	c.GetConflicts = queries.NewGetConflictsHandler(c.Sessions)
	c.FindSlots = queries.NewFindSlotsHandler(c.Sessions)
	c.GetSummary = queries.NewGetSummaryHandler(c.Sessions)
	c.GetReport = queries.NewGetReportHandler(c.Sessions, c.ReportCache, logger)

	return c, nil
}

func (c *Container) connectDatabase(ctx context.Context) error {
	cfg := c.Config
	c.DBDriver = database.DetectDriver(cfg.DatabaseURL)

	switch c.DBDriver {
	case database.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL, int32(cfg.MaxConns))
		if err != nil {
			return err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return fmt.Errorf("postgres migrations failed: %w", err)
		}
		c.PostgresPool = pool
		c.CalendarRepo = persistence.NewPostgresCalendarRepository(pool)
		c.Logger.Info("database connected", "driver", c.DBDriver)

	case database.DriverSQLite:
		path := cfg.SQLitePath
		if path == "" && cfg.DatabaseURL != "" {
			path = cfg.DatabaseURL
		}
		db, err := sqlite.Open(ctx, path)
		if err != nil {
			return err
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return fmt.Errorf("sqlite migrations failed: %w", err)
		}
		c.SQLiteDB = db
		c.CalendarRepo = persistence.NewSQLiteCalendarRepository(db)
		c.Logger.Info("database connected", "driver", c.DBDriver)

	default:
		return fmt.Errorf("unsupported database driver: %s", c.DBDriver)
	}

	return nil
}

// connectRedis connects the optional report cache backend. Redis is never
// required; failures leave the client nil and the cache degrades to misses.
func (c *Container) connectRedis(ctx context.Context) {
	if c.Config.RedisURL == "" {
		return
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		c.Logger.Warn("invalid Redis URL, report cache disabled", "error", err)
		return
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		c.Logger.Warn("Redis not available, report cache disabled", "error", err)
		_ = client.Close()
		return
	}

	c.RedisClient = client
	c.Logger.Info("Redis connected")
}

// connectPublisher selects the event publisher: RabbitMQ when configured and
// reachable, otherwise the synchronous in-process bus.
func (c *Container) connectPublisher() {
	if c.Config.RabbitMQURL == "" {
		c.EventPublisher = eventbus.NewInProcessBus(c.Logger)
		return
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		c.Logger.Warn("RabbitMQ not available, falling back to in-process event bus", "error", err)
		c.EventPublisher = eventbus.NewInProcessBus(c.Logger)
		return
	}
	c.EventPublisher = publisher
}

// Start launches background workers.
func (c *Container) Start() error {
	return c.Sessions.Start()
}

// Close persists live sessions and releases all connections.
func (c *Container) Close(ctx context.Context) {
	c.Sessions.Stop(ctx)

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis client", "error", err)
		}
	}
	if c.PostgresPool != nil {
		c.PostgresPool.Close()
	}
	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("error closing SQLite database", "error", err)
		}
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
