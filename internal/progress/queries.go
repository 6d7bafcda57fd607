package progress

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/recall/internal/domain"
	"github.com/felixgeelhaar/recall/internal/scheduler"
)

// LessonStatus returns the lesson's status, not-started for unknown ids.
func (s *Service) LessonStatus(lessonID string) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.state.Lessons[lessonID]; ok {
		return l.Status
	}
	return domain.StatusNotStarted
}

// ExerciseStatus returns the exercise's status, not-started for unknown ids.
func (s *Service) ExerciseStatus(exerciseID string) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.state.Exercises[exerciseID]; ok {
		return e.Status
	}
	return domain.StatusNotStarted
}

// Lesson returns a copy of the lesson's progress.
func (s *Service) Lesson(lessonID string) (*domain.LessonProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.state.Lessons[lessonID]
	if !ok {
		return nil, false
	}
	c := *l
	if l.CompletedAt != nil {
		t := *l.CompletedAt
		c.CompletedAt = &t
	}
	c.Review = l.Review.Clone()
	return &c, true
}

// Exercise returns a copy of the exercise's progress.
func (s *Service) Exercise(exerciseID string) (*domain.ExerciseProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.state.Exercises[exerciseID]
	if !ok {
		return nil, false
	}
	c := *e
	c.Review = e.Review.Clone()
	return &c, true
}

// ModuleProgress summarizes a module made of lessonIDs. Exercises count
// when the catalog places them in one of those lessons.
func (s *Service) ModuleProgress(moduleID string, lessonIDs []string) domain.ModuleProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	inModule := make(map[string]bool, len(lessonIDs))
	for _, id := range lessonIDs {
		inModule[id] = true
	}

	mp := domain.ModuleProgress{ModuleID: moduleID, TotalLessons: len(inModule)}
	for id := range inModule {
		if l, ok := s.state.Lessons[id]; ok && l.Status == domain.StatusCompleted {
			mp.LessonsCompleted++
		}
	}
	for id, e := range s.state.Exercises {
		if e.Status != domain.StatusCompleted {
			continue
		}
		if lessonID, ok := s.catalog.LessonOf(id); ok && inModule[lessonID] {
			mp.ExercisesCompleted++
		}
	}
	if mp.TotalLessons > 0 {
		mp.PercentComplete = 100 * float64(mp.LessonsCompleted) / float64(mp.TotalLessons)
	}
	return mp
}

// ModuleProgressFor summarizes a catalog module.
func (s *Service) ModuleProgressFor(moduleID string) (domain.ModuleProgress, error) {
	lessonIDs, ok := s.catalog.ModuleLessons(moduleID)
	if !ok {
		return domain.ModuleProgress{}, fmt.Errorf("module %s: %w", moduleID, domain.ErrNotFound)
	}
	return s.ModuleProgress(moduleID, lessonIDs), nil
}

// TotalProgress is the percentage of completed units across every lesson and
// exercise known to the catalog or to progress, each unit weighted equally.
func (s *Service) TotalProgress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	lessons := make(map[string]bool)
	for _, id := range s.catalog.LessonIDs() {
		lessons[id] = false
	}
	for id, l := range s.state.Lessons {
		lessons[id] = l.Status == domain.StatusCompleted
	}

	exercises := make(map[string]bool)
	for _, id := range s.catalog.ExerciseIDs() {
		exercises[id] = false
	}
	for id, e := range s.state.Exercises {
		exercises[id] = e.Status == domain.StatusCompleted
	}

	total := len(lessons) + len(exercises)
	if total == 0 {
		return 0
	}
	done := 0
	for _, c := range lessons {
		if c {
			done++
		}
	}
	for _, c := range exercises {
		if c {
			done++
		}
	}
	return 100 * float64(done) / float64(total)
}

// DueUnits returns the lessons and exercises in the learner's progress that
// are due for review at now, never-reviewed units first, then by due date.
func (s *Service) DueUnits(now time.Time) []domain.DueUnit {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := []domain.DueUnit{}
	for id, l := range s.state.Lessons {
		if scheduler.IsDue(l.Review, now) {
			due = append(due, domain.DueUnit{Kind: domain.UnitLesson, UnitID: id, Record: l.Review.Clone()})
		}
	}
	for id, e := range s.state.Exercises {
		if scheduler.IsDue(e.Review, now) {
			due = append(due, domain.DueUnit{Kind: domain.UnitExercise, UnitID: id, Record: e.Review.Clone()})
		}
	}
	scheduler.SortDue(due)
	return due
}

// Achievements returns unlocked achievements in unlock order.
func (s *Service) Achievements() []domain.Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Achievement{}, s.state.Achievements...)
}

// Snapshot returns a deep copy of the current progress.
func (s *Service) Snapshot() *domain.UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clock()
}
