// Package progress is the authoritative owner of learner progress. Every
// mutation runs to completion under a single lock: the change itself and
// its stats, then the streak, then achievements, then persistence, then
// event publishing.
package progress

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/recall/internal/achievement"
	"github.com/felixgeelhaar/recall/internal/domain"
	"github.com/felixgeelhaar/recall/internal/persistence"
	"github.com/felixgeelhaar/recall/internal/scheduler"
	"github.com/felixgeelhaar/recall/internal/streak"
)

const defaultIOTimeout = 5 * time.Second

// Service owns a single UserProgress.
type Service struct {
	mu    sync.Mutex
	state *domain.UserProgress

	persister    Persister
	catalog      Catalog
	publisher    Publisher
	reviewLog    ReviewLog
	scheduler    *scheduler.Scheduler
	achievements *achievement.Engine
	clock        func() time.Time
	logger       *slog.Logger
	ioTimeout    time.Duration

	persist PersistStatus
}

// NewService loads stored progress through persister, or starts empty when
// nothing usable is stored. A nil persister keeps progress in memory only.
func NewService(ctx context.Context, persister Persister, opts ...Option) *Service {
	if persister == nil {
		persister = persistence.NewAdapter(persistence.NewMemorySlot(), nil)
	}
	s := &Service{
		persister:    persister,
		catalog:      noCatalog{},
		scheduler:    scheduler.Default(),
		achievements: achievement.Default(),
		clock:        time.Now,
		logger:       slog.Default(),
		ioTimeout:    defaultIOTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.state = s.load(ctx)
	return s
}

func (s *Service) load(ctx context.Context) *domain.UserProgress {
	loadCtx, cancel := context.WithTimeout(ctx, s.ioTimeout)
	defer cancel()

	p := s.persister.Load(loadCtx)
	if p == nil {
		s.logger.Info("starting with empty progress")
		return domain.NewUserProgress()
	}
	p.Normalize()

	// Older documents carry no achievement list.
	if unlocked := s.achievements.Evaluate(p, s.clock()); len(unlocked) > 0 {
		s.logger.Info("restored achievements", "count", len(unlocked))
		s.save(ctx, p)
	}

	s.logger.Info("loaded progress",
		"lessons", len(p.Lessons),
		"exercises", len(p.Exercises),
		"achievements", len(p.Achievements))
	return p
}

// mutation changes state in place and returns the events it produced. It
// must validate before touching state: an error leaves state unchanged.
type mutation func(now time.Time, p *domain.UserProgress) ([]domain.Event, error)

func (s *Service) apply(ctx context.Context, fn mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	events, err := fn(now, s.state)
	if err != nil {
		return err
	}

	streak.Update(s.state, now)

	for _, a := range s.achievements.Evaluate(s.state, now) {
		s.logger.Info("achievement unlocked", "id", a.ID, "title", a.Title)
		unlocked := a
		events = append(events, newEvent(domain.EventAchievementUnlocked, a.ID, now, &unlocked))
	}

	s.save(ctx, s.state)
	s.publish(ctx, events)
	return nil
}

// save writes p and records the outcome. Failures are logged, never returned.
func (s *Service) save(ctx context.Context, p *domain.UserProgress) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.ioTimeout)
	defer cancel()

	if err := s.persister.Save(saveCtx, p); err != nil {
		s.persist.LastError = err.Error()
		s.persist.Failures++
		s.logger.Warn("failed to persist progress", "error", err)
		return
	}
	s.persist.LastError = ""
	s.persist.LastSavedAt = s.clock()
}

func (s *Service) publish(ctx context.Context, events []domain.Event) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.ioTimeout)
	defer cancel()

	for _, e := range events {
		if err := s.publisher.Publish(pubCtx, e); err != nil {
			s.logger.Warn("failed to publish event", "type", e.Type, "unit_id", e.UnitID, "error", err)
		}
	}
}

// Reset discards all progress and purges stored state.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.state = domain.NewUserProgress()

	clearCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.ioTimeout)
	defer cancel()
	if err := s.persister.Clear(clearCtx); err != nil {
		s.persist.LastError = err.Error()
		s.persist.Failures++
		s.logger.Warn("failed to clear stored progress", "error", err)
	}

	s.logger.Info("progress reset")
	s.publish(ctx, []domain.Event{newEvent(domain.EventProgressReset, "", now, nil)})
	return nil
}

// PersistStatus reports the outcome of the most recent save.
func (s *Service) PersistStatus() PersistStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist
}

func newEvent(t domain.EventType, unitID string, at time.Time, a *domain.Achievement) domain.Event {
	return domain.Event{
		ID:          uuid.NewString(),
		Type:        t,
		UnitID:      unitID,
		Achievement: a,
		OccurredAt:  at,
	}
}
