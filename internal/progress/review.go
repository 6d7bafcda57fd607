package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/recall/internal/domain"
	"github.com/felixgeelhaar/recall/internal/scheduler"
)

// ReviewLesson schedules the next review of a lesson from a recall quality.
// The lesson must be known to the learner's progress or to the catalog.
func (s *Service) ReviewLesson(ctx context.Context, lessonID string, quality domain.Quality) (domain.ReviewRecord, error) {
	return s.review(ctx, domain.UnitLesson, lessonID, quality)
}

// ReviewExercise schedules the next review of an exercise.
func (s *Service) ReviewExercise(ctx context.Context, exerciseID string, quality domain.Quality) (domain.ReviewRecord, error) {
	return s.review(ctx, domain.UnitExercise, exerciseID, quality)
}

func (s *Service) review(ctx context.Context, kind domain.UnitKind, id string, quality domain.Quality) (domain.ReviewRecord, error) {
	if !quality.IsValid() {
		return domain.ReviewRecord{}, fmt.Errorf("%w: got %d", scheduler.ErrInvalidQuality, int(quality))
	}

	var next domain.ReviewRecord
	err := s.apply(ctx, func(now time.Time, p *domain.UserProgress) ([]domain.Event, error) {
		slot, err := s.reviewSlot(p, kind, id)
		if err != nil {
			return nil, err
		}
		rec, err := s.scheduler.Schedule(id, *slot, quality, now)
		if err != nil {
			return nil, err
		}
		*slot = &rec
		next = rec
		return nil, nil
	})
	if err != nil {
		return domain.ReviewRecord{}, err
	}

	s.logReview(ctx, domain.ReviewLogEntry{
		Kind:           kind,
		UnitID:         id,
		Quality:        quality,
		EasinessFactor: next.EasinessFactor,
		IntervalDays:   next.IntervalDays,
		ReviewedAt:     *next.LastReviewedAt,
	})
	return next, nil
}

// reviewSlot returns where the unit's review record lives. A unit known only
// to the catalog gets a not-started entry; unknown units are rejected
// without touching state.
func (s *Service) reviewSlot(p *domain.UserProgress, kind domain.UnitKind, id string) (**domain.ReviewRecord, error) {
	switch kind {
	case domain.UnitLesson:
		if l, ok := p.Lessons[id]; ok {
			return &l.Review, nil
		}
		if !s.catalog.HasLesson(id) {
			return nil, fmt.Errorf("%w: lesson %q", domain.ErrUnknownUnit, id)
		}
		return &lessonEntry(p, id).Review, nil
	case domain.UnitExercise:
		if e, ok := p.Exercises[id]; ok {
			return &e.Review, nil
		}
		if !s.catalog.HasExercise(id) {
			return nil, fmt.Errorf("%w: exercise %q", domain.ErrUnknownUnit, id)
		}
		return &exerciseEntry(p, id).Review, nil
	default:
		return nil, fmt.Errorf("%w: unit kind %q", domain.ErrInvalidInput, kind)
	}
}

func (s *Service) logReview(ctx context.Context, entry domain.ReviewLogEntry) {
	if s.reviewLog == nil {
		return
	}
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.ioTimeout)
	defer cancel()

	if err := s.reviewLog.AppendReview(logCtx, entry); err != nil {
		s.logger.Warn("failed to record review", "kind", entry.Kind, "unit_id", entry.UnitID, "error", err)
	}
}

// ReviewHistory returns recorded reviews of a unit, newest first. Without a
// review log the history is empty.
func (s *Service) ReviewHistory(ctx context.Context, kind domain.UnitKind, unitID string, limit int) ([]domain.ReviewLogEntry, error) {
	if s.reviewLog == nil {
		return []domain.ReviewLogEntry{}, nil
	}
	return s.reviewLog.ReviewHistory(ctx, kind, unitID, limit)
}
