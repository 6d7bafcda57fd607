// Package app assembles the progress service and its collaborators from
// configuration. Both the daemon and the MCP command build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/recall/internal/catalog"
	"github.com/felixgeelhaar/recall/internal/config"
	"github.com/felixgeelhaar/recall/internal/events"
	"github.com/felixgeelhaar/recall/internal/execution"
	"github.com/felixgeelhaar/recall/internal/persistence"
	"github.com/felixgeelhaar/recall/internal/progress"
	"github.com/felixgeelhaar/recall/internal/reminder"
	"github.com/felixgeelhaar/recall/internal/scheduler"
	"github.com/felixgeelhaar/recall/internal/storage/local"
	"github.com/felixgeelhaar/recall/internal/storage/postgres"
	"github.com/felixgeelhaar/recall/internal/storage/redis"
	"github.com/felixgeelhaar/recall/internal/storage/sqlite"
)

// App holds the wired services.
type App struct {
	Config   *config.LocalConfig
	Progress *progress.Service
	Catalog  *catalog.Registry
	// Runner is nil when no execution service is configured.
	Runner   *execution.Client
	Events   events.Sink
	Reminder *reminder.Job

	logger  *slog.Logger
	closers []func() error
}

// Options adjusts how New wires the application.
type Options struct {
	// Dir is the recall home. Local and sqlite data default to Dir/data
	// and the catalog to Dir/catalog.
	Dir string
	// SkipReminder leaves the reminder job unbuilt.
	SkipReminder bool
	Logger       *slog.Logger
}

// New builds every component the configuration enables. On error, anything
// already opened is closed.
func New(ctx context.Context, cfg *config.LocalConfig, opts Options) (_ *App, err error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	a := &App{Config: cfg, logger: opts.Logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if opts.Dir == "" {
		if opts.Dir, err = config.RecallDir(); err != nil {
			return nil, err
		}
	}

	slot, reviewLog, err := a.openStorage(ctx, cfg.Storage, filepath.Join(opts.Dir, "data"))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	catalogPath := cfg.Catalog.Path
	if catalogPath == "" {
		catalogPath = filepath.Join(opts.Dir, "catalog")
	}
	a.Catalog, err = loadCatalog(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	sched, err := scheduler.New(scheduler.Config{
		Ladder:          cfg.Scheduler.Ladder,
		MaxIntervalDays: cfg.Scheduler.MaxIntervalDays,
	})
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	a.Events, err = a.openEvents(cfg.Events)
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}

	if cfg.Execution.URL != "" {
		a.Runner, err = execution.NewClient(execution.Config{
			BaseURL:       cfg.Execution.URL,
			Timeout:       time.Duration(cfg.Execution.TimeoutSeconds) * time.Second,
			MaxAttempts:   cfg.Execution.Retry,
			MaxConcurrent: cfg.Execution.MaxConcurrent,
			RatePerSecond: cfg.Execution.RatePerSecond,
			Logger:        a.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("execution client: %w", err)
		}
		a.closers = append(a.closers, a.Runner.Close)
	}

	popts := []progress.Option{
		progress.WithCatalog(a.Catalog),
		progress.WithScheduler(sched),
		progress.WithPublisher(a.Events),
		progress.WithLogger(a.logger),
	}
	if reviewLog != nil {
		popts = append(popts, progress.WithReviewLog(reviewLog))
	}
	a.Progress = progress.NewService(ctx, persistence.NewAdapter(slot, a.logger), popts...)

	if cfg.Reminder.Enabled && !opts.SkipReminder {
		a.Reminder, err = reminder.New(reminder.Config{
			EveryMinutes: cfg.Reminder.EveryMinutes,
			StartHour:    cfg.Reminder.StartHour,
			EndHour:      cfg.Reminder.EndHour,
		}, a.Progress, a.Events, a.logger)
		if err != nil {
			return nil, err
		}
	}

	return a, nil
}

// openStorage returns the slot for the configured backend. Only sqlite keeps
// a review log.
func (a *App) openStorage(ctx context.Context, cfg config.StorageConfig, dataDir string) (persistence.Slot, progress.ReviewLog, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return persistence.NewMemorySlot(), nil, nil

	case config.BackendLocal, "":
		path := cfg.Path
		if path == "" {
			path = dataDir
		}
		store, err := local.NewStore(path)
		if err != nil {
			return nil, nil, err
		}
		return local.NewSlot(store, cfg.Key), nil, nil

	case config.BackendSQLite:
		path := cfg.Path
		if path == "" {
			path = filepath.Join(dataDir, "recall.db")
		}
		db, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		slot := sqlite.NewSlot(db, cfg.Key)
		return slot, slot, nil

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return nil, nil, err
		}
		return postgres.NewSlot(pool, cfg.Key), nil, nil

	case config.BackendRedis:
		client, err := redis.NewClient(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, client.Close)
		return redis.NewSlot(client, cfg.Key), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func loadCatalog(path string) (*catalog.Registry, error) {
	reg := catalog.NewRegistry(catalog.NewLoader(path))
	if err := reg.Load(); err != nil {
		return nil, err
	}
	return reg, nil
}

// openEvents always logs events and also publishes them to RabbitMQ when
// enabled.
func (a *App) openEvents(cfg config.EventsConfig) (events.Sink, error) {
	sinks := events.Fanout{events.NewLogPublisher(a.logger)}
	if !cfg.Enabled {
		return sinks, nil
	}

	conn, err := events.Dial(cfg.AMQPURL, cfg.Queue, a.logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, conn.Close)
	return append(sinks, events.NewPublisher(conn, a.logger)), nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	if a.Reminder != nil {
		a.Reminder.Stop()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
