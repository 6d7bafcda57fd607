// Package scheduler implements the SM-2 derived review scheduler.
//
// The scheduler is pure: it holds configuration only, performs no I/O and
// never mutates the record it is given.
package scheduler

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/felixgeelhaar/recall/internal/domain"
)

const (
	// DefaultEasinessFactor is the easiness of a unit that has never been reviewed.
	DefaultEasinessFactor = 2.5
	// MinEasinessFactor is the floor easiness is clamped to.
	MinEasinessFactor = 1.3
	// FailureIntervalDays is the interval assigned after a failed review.
	FailureIntervalDays = 1
	// CeilingIntervalDays bounds every interval, whatever the configured cap.
	CeilingIntervalDays = 36500
)

// DefaultLadder is the interval, in days, for the first successful repetitions.
var DefaultLadder = []int{1, 3, 7, 14, 30, 60}

// ErrInvalidQuality is returned for a quality rating outside [0, 5].
var ErrInvalidQuality = fmt.Errorf("scheduler: %w: quality must be in [0, 5]", domain.ErrInvalidInput)

// Config configures a Scheduler. Zero values produce the defaults.
type Config struct {
	Ladder          []int // nil or empty uses DefaultLadder
	MaxIntervalDays int   // zero means CeilingIntervalDays
}

// Scheduler computes review intervals.
type Scheduler struct {
	ladder          []int
	maxIntervalDays int
}

// New creates a Scheduler from cfg.
func New(cfg Config) (*Scheduler, error) {
	ladder := cfg.Ladder
	if len(ladder) == 0 {
		ladder = DefaultLadder
	}
	prev := 0
	for i, d := range ladder {
		if d < 1 || d < prev {
			return nil, fmt.Errorf("scheduler: ladder step %d (%d days) must be positive and non-decreasing", i, d)
		}
		prev = d
	}
	if cfg.MaxIntervalDays < 0 {
		return nil, errors.New("scheduler: max interval must not be negative")
	}
	return &Scheduler{
		ladder:          append([]int(nil), ladder...),
		maxIntervalDays: cfg.MaxIntervalDays,
	}, nil
}

// Default returns a Scheduler with the default ladder, capped only by
// CeilingIntervalDays.
func Default() *Scheduler {
	s, _ := New(Config{})
	return s
}

// Schedule applies a review of the given quality at now and returns the
// updated record. A nil record is treated as a never-reviewed unit with
// the given id.
func (s *Scheduler) Schedule(unitID string, record *domain.ReviewRecord, quality domain.Quality, now time.Time) (domain.ReviewRecord, error) {
	if !quality.IsValid() {
		return domain.ReviewRecord{}, fmt.Errorf("%w: got %d", ErrInvalidQuality, int(quality))
	}

	next := domain.ReviewRecord{
		UnitID:         unitID,
		EasinessFactor: DefaultEasinessFactor,
	}
	if record != nil {
		next.EasinessFactor = record.EasinessFactor
		next.RepetitionCount = record.RepetitionCount
		next.IntervalDays = record.IntervalDays
		if next.EasinessFactor < MinEasinessFactor {
			next.EasinessFactor = MinEasinessFactor
		}
	}

	if quality.Passed() {
		next.RepetitionCount++
		next.IntervalDays = s.successInterval(next.RepetitionCount, next.IntervalDays, next.EasinessFactor)
	} else {
		next.RepetitionCount = 0
		next.IntervalDays = FailureIntervalDays
	}

	next.EasinessFactor = UpdateEasiness(next.EasinessFactor, quality)

	reviewed := now
	next.LastReviewedAt = &reviewed
	next.DueAt = now.AddDate(0, 0, next.IntervalDays)

	return next, nil
}

// successInterval returns the interval for the repetition-th consecutive
// success. Past the ladder the previous interval grows by the easiness
// the unit had before this review.
func (s *Scheduler) successInterval(repetition, previous int, ef float64) int {
	var days int
	if repetition <= len(s.ladder) {
		days = s.ladder[repetition-1]
	} else {
		if previous < s.ladder[len(s.ladder)-1] {
			previous = s.ladder[len(s.ladder)-1]
		}
		days = int(math.Min(math.Round(float64(previous)*ef), CeilingIntervalDays))
	}
	limit := CeilingIntervalDays
	if s.maxIntervalDays > 0 && s.maxIntervalDays < limit {
		limit = s.maxIntervalDays
	}
	return min(days, limit)
}

// UpdateEasiness applies the SM-2 easiness update and clamps to the floor.
func UpdateEasiness(ef float64, quality domain.Quality) float64 {
	q := float64(5 - quality)
	return math.Max(ef+(0.1-q*(0.08+q*0.02)), MinEasinessFactor)
}

// IsDue reports whether a unit with the given record is due at now.
// Units that were never reviewed are always due.
func IsDue(record *domain.ReviewRecord, now time.Time) bool {
	if record == nil || record.LastReviewedAt == nil {
		return true
	}
	return !record.DueAt.After(now)
}

// SortDue orders due units: never-reviewed first, then earliest due date,
// then kind and id so the order is stable.
func SortDue(units []domain.DueUnit) {
	sort.SliceStable(units, func(i, j int) bool {
		a, b := units[i], units[j]
		aNew := a.Record == nil || a.Record.LastReviewedAt == nil
		bNew := b.Record == nil || b.Record.LastReviewedAt == nil
		if aNew != bNew {
			return aNew
		}
		if !aNew && !a.Record.DueAt.Equal(b.Record.DueAt) {
			return a.Record.DueAt.Before(b.Record.DueAt)
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.UnitID < b.UnitID
	})
}
