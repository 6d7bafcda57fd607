package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/recall/internal/domain"
)

// MaxScore is the score of a submission that passes every test case.
const MaxScore = 100

// StartExercise marks an exercise in progress. Opening an exercise counts as
// its first attempt.
func (s *Service) StartExercise(ctx context.Context, exerciseID string) error {
	if exerciseID == "" {
		return fmt.Errorf("%w: empty exercise id", domain.ErrInvalidInput)
	}
	return s.apply(ctx, func(now time.Time, p *domain.UserProgress) ([]domain.Event, error) {
		e := exerciseEntry(p, exerciseID)
		touchExercise(e)
		return nil, nil
	})
}

// CompleteExercise records a full-pass submission.
func (s *Service) CompleteExercise(ctx context.Context, exerciseID string, executionTimeMs int64) error {
	if err := validateExercise(exerciseID, executionTimeMs); err != nil {
		return err
	}
	return s.apply(ctx, func(now time.Time, p *domain.UserProgress) ([]domain.Event, error) {
		e := exerciseEntry(p, exerciseID)
		touchExercise(e)
		e.LastExecutionTimeMs = executionTimeMs
		return s.recordScore(p, e, MaxScore, now), nil
	})
}

// UpdateExercisePartial records a scored submission. attempts is the
// caller's running count; the stored count never goes backwards. The best
// score is the maximum seen, and reaching MaxScore completes the exercise.
func (s *Service) UpdateExercisePartial(ctx context.Context, exerciseID string, score int, executionTimeMs int64, attempts int) error {
	if err := validateExercise(exerciseID, executionTimeMs); err != nil {
		return err
	}
	if score < 0 || score > MaxScore {
		return fmt.Errorf("%w: score %d outside [0, %d]", domain.ErrInvalidInput, score, MaxScore)
	}
	if attempts < 0 {
		return fmt.Errorf("%w: negative attempts %d", domain.ErrInvalidInput, attempts)
	}
	return s.apply(ctx, func(now time.Time, p *domain.UserProgress) ([]domain.Event, error) {
		e := exerciseEntry(p, exerciseID)
		touchExercise(e)
		if attempts > e.Attempts {
			e.Attempts = attempts
		}
		e.LastExecutionTimeMs = executionTimeMs
		return s.recordScore(p, e, score, now), nil
	})
}

// UseHint counts a hint against an exercise the learner has opened.
func (s *Service) UseHint(ctx context.Context, exerciseID string) error {
	return s.apply(ctx, func(now time.Time, p *domain.UserProgress) ([]domain.Event, error) {
		e, ok := p.Exercises[exerciseID]
		if !ok {
			return nil, fmt.Errorf("%w: exercise %q has not been started", domain.ErrUnknownUnit, exerciseID)
		}
		e.HintsUsed++
		p.Stats.TotalHintsUsed++
		return nil, nil
	})
}

// RecordExerciseAttempt counts one submission, whatever its outcome.
func (s *Service) RecordExerciseAttempt(ctx context.Context, exerciseID string) error {
	if exerciseID == "" {
		return fmt.Errorf("%w: empty exercise id", domain.ErrInvalidInput)
	}
	return s.apply(ctx, func(now time.Time, p *domain.UserProgress) ([]domain.Event, error) {
		e := exerciseEntry(p, exerciseID)
		e.Attempts++
		if e.Status == domain.StatusNotStarted {
			e.Status = domain.StatusInProgress
		}
		return nil, nil
	})
}

// ApplyRun records a code-execution result as one attempt with its score.
func (s *Service) ApplyRun(ctx context.Context, exerciseID string, run RunOutcome) error {
	if err := validateExercise(exerciseID, run.ExecutionTimeMs); err != nil {
		return err
	}
	if run.Score < 0 || run.Score > MaxScore {
		return fmt.Errorf("%w: score %d outside [0, %d]", domain.ErrInvalidInput, run.Score, MaxScore)
	}
	return s.apply(ctx, func(now time.Time, p *domain.UserProgress) ([]domain.Event, error) {
		e := exerciseEntry(p, exerciseID)
		e.Attempts++
		touchExercise(e)
		e.LastExecutionTimeMs = run.ExecutionTimeMs
		return s.recordScore(p, e, run.Score, now), nil
	})
}

// recordScore raises the best score and handles the first transition into
// completed: totals, difficulty accounting and the completion event.
func (s *Service) recordScore(p *domain.UserProgress, e *domain.ExerciseProgress, score int, now time.Time) []domain.Event {
	if score > e.BestScore {
		e.BestScore = score
	}
	if e.BestScore < MaxScore || e.Status == domain.StatusCompleted {
		return nil
	}

	e.Status = domain.StatusCompleted
	p.Stats.TotalExercisesSolved++
	difficulty, ok := s.catalog.Difficulty(e.ExerciseID)
	if !ok {
		difficulty = domain.DifficultyBeginner
	}
	p.Stats.ExercisesByDifficulty[difficulty]++
	return []domain.Event{newEvent(domain.EventExerciseCompleted, e.ExerciseID, now, nil)}
}

func validateExercise(id string, executionTimeMs int64) error {
	if id == "" {
		return fmt.Errorf("%w: empty exercise id", domain.ErrInvalidInput)
	}
	if executionTimeMs < 0 {
		return fmt.Errorf("%w: negative execution time %d", domain.ErrInvalidInput, executionTimeMs)
	}
	return nil
}

func exerciseEntry(p *domain.UserProgress, id string) *domain.ExerciseProgress {
	e, ok := p.Exercises[id]
	if !ok {
		e = &domain.ExerciseProgress{ExerciseID: id, Status: domain.StatusNotStarted}
		p.Exercises[id] = e
	}
	return e
}

// touchExercise moves a not-started exercise into progress with at least
// one attempt.
func touchExercise(e *domain.ExerciseProgress) {
	if e.Status == domain.StatusNotStarted {
		e.Status = domain.StatusInProgress
	}
	if e.Attempts < 1 {
		e.Attempts = 1
	}
}
