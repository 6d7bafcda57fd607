// Package reminder periodically checks for due reviews and announces them.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/recall/internal/domain"
)

// DueSource reports units whose review is due.
type DueSource interface {
	DueUnits(now time.Time) []domain.DueUnit
	Now() time.Time
}

// Publisher receives review.due events.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Config controls when reminders are checked.
type Config struct {
	EveryMinutes int
	// StartHour and EndHour bound the local hours, inclusive, in which
	// reminders are sent. Equal values disable the window.
	StartHour int
	EndHour   int
}

// DefaultConfig checks every 60 minutes at any hour.
func DefaultConfig() Config {
	return Config{EveryMinutes: 60}
}

// Job runs the reminder check on a gocron schedule.
type Job struct {
	cfg       Config
	source    DueSource
	publisher Publisher
	logger    *slog.Logger
	scheduler *gocron.Scheduler
}

// New creates a reminder job. publisher may be nil, in which case due
// reviews are only logged.
func New(cfg Config, source DueSource, publisher Publisher, logger *slog.Logger) (*Job, error) {
	if cfg.EveryMinutes <= 0 {
		return nil, fmt.Errorf("reminder: every_minutes must be positive, got %d", cfg.EveryMinutes)
	}
	if cfg.StartHour < 0 || cfg.StartHour > 23 || cfg.EndHour < 0 || cfg.EndHour > 23 {
		return nil, fmt.Errorf("reminder: hours must be in [0, 23], got %d-%d", cfg.StartHour, cfg.EndHour)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{
		cfg:       cfg,
		source:    source,
		publisher: publisher,
		logger:    logger,
		scheduler: gocron.NewScheduler(time.Local),
	}, nil
}

// Start schedules the check and runs it in the background.
func (j *Job) Start(ctx context.Context) error {
	_, err := j.scheduler.Every(time.Duration(j.cfg.EveryMinutes) * time.Minute).
		SingletonMode().
		Do(func() { j.check(ctx) })
	if err != nil {
		return fmt.Errorf("reminder: schedule: %w", err)
	}
	j.scheduler.StartAsync()
	j.logger.Info("reminder job started", "every_minutes", j.cfg.EveryMinutes)
	return nil
}

// Stop terminates the schedule.
func (j *Job) Stop() {
	j.scheduler.Stop()
}

// check counts due units and announces them. It returns the count.
func (j *Job) check(ctx context.Context) int {
	now := j.source.Now()
	if !j.inWindow(now) {
		j.logger.Debug("outside reminder hours, skipping", "hour", now.Hour())
		return 0
	}

	count := len(j.source.DueUnits(now))
	if count == 0 {
		return 0
	}

	j.logger.Info("reviews due", "count", count)
	if j.publisher == nil {
		return count
	}

	event := domain.Event{
		ID:         uuid.NewString(),
		Type:       domain.EventReviewDue,
		DueCount:   count,
		OccurredAt: now,
	}
	if err := j.publisher.Publish(ctx, event); err != nil {
		j.logger.Warn("failed to publish review reminder", "error", err)
	}
	return count
}

func (j *Job) inWindow(now time.Time) bool {
	start, end := j.cfg.StartHour, j.cfg.EndHour
	if start == end {
		return true
	}
	h := now.Hour()
	if start < end {
		return h >= start && h <= end
	}
	// window wraps midnight
	return h >= start || h <= end
}
