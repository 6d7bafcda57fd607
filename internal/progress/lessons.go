package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/recall/internal/domain"
)

// StartLesson marks a lesson in progress. A lesson that is already in
// progress or completed is left as it is.
func (s *Service) StartLesson(ctx context.Context, lessonID string) error {
	if lessonID == "" {
		return fmt.Errorf("%w: empty lesson id", domain.ErrInvalidInput)
	}
	return s.apply(ctx, func(now time.Time, p *domain.UserProgress) ([]domain.Event, error) {
		l := lessonEntry(p, lessonID)
		if l.Status == domain.StatusNotStarted {
			l.Status = domain.StatusInProgress
		}
		return nil, nil
	})
}

// CompleteLesson marks a lesson completed and adds timeSpentSeconds to its
// time accumulator. Only the first completion counts toward the totals and
// sets CompletedAt.
func (s *Service) CompleteLesson(ctx context.Context, lessonID string, timeSpentSeconds int64) error {
	if lessonID == "" {
		return fmt.Errorf("%w: empty lesson id", domain.ErrInvalidInput)
	}
	if timeSpentSeconds < 0 {
		return fmt.Errorf("%w: negative time spent %d", domain.ErrInvalidInput, timeSpentSeconds)
	}
	return s.apply(ctx, func(now time.Time, p *domain.UserProgress) ([]domain.Event, error) {
		l := lessonEntry(p, lessonID)
		l.TimeSpentSeconds += timeSpentSeconds
		p.Stats.TotalTimeSpent += timeSpentSeconds

		if l.Status == domain.StatusCompleted {
			return nil, nil
		}
		l.Status = domain.StatusCompleted
		completed := now
		l.CompletedAt = &completed
		p.Stats.TotalLessonsCompleted++
		return []domain.Event{newEvent(domain.EventLessonCompleted, lessonID, now, nil)}, nil
	})
}

func lessonEntry(p *domain.UserProgress, id string) *domain.LessonProgress {
	l, ok := p.Lessons[id]
	if !ok {
		l = &domain.LessonProgress{LessonID: id, Status: domain.StatusNotStarted}
		p.Lessons[id] = l
	}
	return l
}
