package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/recall/internal/catalog"
	"github.com/felixgeelhaar/recall/internal/domain"
	"github.com/felixgeelhaar/recall/internal/persistence"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) AddDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type memoryReviewLog struct {
	mu      sync.Mutex
	entries []domain.ReviewLogEntry
}

func (l *memoryReviewLog) AppendReview(_ context.Context, e domain.ReviewLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

func (l *memoryReviewLog) ReviewHistory(_ context.Context, kind domain.UnitKind, id string, limit int) ([]domain.ReviewLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.ReviewLogEntry
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.Kind == kind && e.UnitID == id {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fixture struct {
	svc       *Service
	clock     *fakeClock
	slot      *persistence.MemorySlot
	adapter   *persistence.Adapter
	publisher *recordingPublisher
	reviews   *memoryReviewLog
	catalog   *catalog.Registry
}

func testCatalog(t *testing.T) *catalog.Registry {
	t.Helper()
	reg, err := catalog.NewStaticRegistry(
		&catalog.Module{
			ID: "basics",
			Lessons: []catalog.Lesson{
				{ID: "l1", Exercises: []catalog.Exercise{
					{ID: "ex1", Difficulty: domain.DifficultyBeginner},
					{ID: "ex2", Difficulty: domain.DifficultyAdvanced},
				}},
				{ID: "l2", Exercises: []catalog.Exercise{
					{ID: "ex3", Difficulty: domain.DifficultyIntermediate},
				}},
			},
		},
		&catalog.Module{
			ID:      "advanced",
			Lessons: []catalog.Lesson{{ID: "l3"}},
		},
		&catalog.Module{ID: "empty"},
	)
	if err != nil {
		t.Fatalf("NewStaticRegistry() error = %v", err)
	}
	return reg
}

func setupService(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:     &fakeClock{now: t0},
		slot:      persistence.NewMemorySlot(),
		publisher: &recordingPublisher{},
		reviews:   &memoryReviewLog{},
		catalog:   testCatalog(t),
	}
	f.adapter = persistence.NewAdapter(f.slot, nil)
	f.svc = f.open(t)
	return f
}

// open builds a service over the fixture's storage, as a restart would.
func (f *fixture) open(t *testing.T) *Service {
	t.Helper()
	return NewService(context.Background(), f.adapter,
		WithClock(f.clock.Now),
		WithCatalog(f.catalog),
		WithPublisher(f.publisher),
		WithReviewLog(f.reviews),
	)
}
