package progress

import (
	"context"
	"time"

	"github.com/felixgeelhaar/recall/internal/domain"
)

// ProgressService defines the progress operations used by the daemon
// handlers, the MCP tools and the reminder job.
type ProgressService interface {
	// Lessons
	StartLesson(ctx context.Context, lessonID string) error
	CompleteLesson(ctx context.Context, lessonID string, timeSpentSeconds int64) error
	ReviewLesson(ctx context.Context, lessonID string, quality domain.Quality) (domain.ReviewRecord, error)

	// Exercises
	StartExercise(ctx context.Context, exerciseID string) error
	CompleteExercise(ctx context.Context, exerciseID string, executionTimeMs int64) error
	UpdateExercisePartial(ctx context.Context, exerciseID string, score int, executionTimeMs int64, attempts int) error
	UseHint(ctx context.Context, exerciseID string) error
	RecordExerciseAttempt(ctx context.Context, exerciseID string) error
	ApplyRun(ctx context.Context, exerciseID string, run RunOutcome) error
	ReviewExercise(ctx context.Context, exerciseID string, quality domain.Quality) (domain.ReviewRecord, error)

	// Reset clears all progress and purges storage.
	Reset(ctx context.Context) error

	// Queries never fail for unknown ids.
	LessonStatus(lessonID string) domain.Status
	ExerciseStatus(exerciseID string) domain.Status
	Lesson(lessonID string) (*domain.LessonProgress, bool)
	Exercise(exerciseID string) (*domain.ExerciseProgress, bool)
	ModuleProgress(moduleID string, lessonIDs []string) domain.ModuleProgress
	ModuleProgressFor(moduleID string) (domain.ModuleProgress, error)
	TotalProgress() float64
	DueUnits(now time.Time) []domain.DueUnit
	Achievements() []domain.Achievement
	Snapshot() *domain.UserProgress
	Now() time.Time
	ReviewHistory(ctx context.Context, kind domain.UnitKind, unitID string, limit int) ([]domain.ReviewLogEntry, error)
	PersistStatus() PersistStatus
}

// Ensure Service implements ProgressService
var _ ProgressService = (*Service)(nil)

// Persister loads and saves the whole UserProgress document.
// persistence.Adapter implements it.
type Persister interface {
	Load(ctx context.Context) *domain.UserProgress
	Save(ctx context.Context, p *domain.UserProgress) error
	Clear(ctx context.Context) error
}

// Catalog is the read-only content metadata the store consults for
// difficulty, module membership and unit counts.
type Catalog interface {
	HasLesson(id string) bool
	HasExercise(id string) bool
	Difficulty(exerciseID string) (domain.Difficulty, bool)
	LessonOf(exerciseID string) (string, bool)
	ModuleLessons(moduleID string) ([]string, bool)
	LessonIDs() []string
	ExerciseIDs() []string
}

// Publisher receives events after a mutation has been applied.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// ReviewLog keeps the history of scheduled reviews.
type ReviewLog interface {
	AppendReview(ctx context.Context, entry domain.ReviewLogEntry) error
	ReviewHistory(ctx context.Context, kind domain.UnitKind, unitID string, limit int) ([]domain.ReviewLogEntry, error)
}

// RunOutcome is the part of a code-execution result the store records.
type RunOutcome struct {
	Score           int
	ExecutionTimeMs int64
}

// PersistStatus reports the outcome of the most recent save.
type PersistStatus struct {
	LastSavedAt time.Time `json:"last_saved_at,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
	Failures    int       `json:"failures"`
}

type noCatalog struct{}

func (noCatalog) HasLesson(string) bool { return false }
func (noCatalog) HasExercise(string) bool { return false }
func (noCatalog) Difficulty(string) (domain.Difficulty, bool) { return "", false }
func (noCatalog) LessonOf(string) (string, bool) { return "", false }
func (noCatalog) ModuleLessons(string) ([]string, bool) { return nil, false }
func (noCatalog) LessonIDs() []string { return nil }
func (noCatalog) ExerciseIDs() []string { return nil }
