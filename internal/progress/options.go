package progress

import (
	"log/slog"
	"time"

	"github.com/felixgeelhaar/recall/internal/achievement"
	"github.com/felixgeelhaar/recall/internal/scheduler"
)

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.clock = now }
}

// WithCatalog sets the content catalog.
func WithCatalog(c Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithPublisher sets the event publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithReviewLog sets where scheduled reviews are recorded.
func WithReviewLog(l ReviewLog) Option {
	return func(s *Service) { s.reviewLog = l }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScheduler replaces the default review scheduler.
func WithScheduler(sch *scheduler.Scheduler) Option {
	return func(s *Service) {
		if sch != nil {
			s.scheduler = sch
		}
	}
}

// WithAchievements replaces the default achievement engine.
func WithAchievements(e *achievement.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.achievements = e
		}
	}
}

// WithIOTimeout bounds each persistence and publish call.
func WithIOTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ioTimeout = d
		}
	}
}
