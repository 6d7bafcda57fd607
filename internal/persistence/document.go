package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/recall/internal/domain"
)

// CurrentVersion is the schema version written by Save.
const CurrentVersion = 2

type envelope struct {
	Version int `json:"version"`
}

type documentV2 struct {
	Version      int                  `json:"version"`
	UserProgress *domain.UserProgress `json:"userProgress"`
}

// documentV1 predates review records and the achievement list. Stats used
// snake_case keys.
type documentV1 struct {
	Version  int         `json:"version"`
	Progress *progressV1 `json:"progress"`
}

type progressV1 struct {
	Lessons      map[string]lessonV1   `json:"lessons"`
	Exercises    map[string]exerciseV1 `json:"exercises"`
	Stats        statsV1               `json:"stats"`
	LastActivity *time.Time            `json:"last_activity"`
}

type lessonV1 struct {
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
	TimeSpent   int64      `json:"time_spent"`
}

type exerciseV1 struct {
	Status        string `json:"status"`
	Attempts      int    `json:"attempts"`
	BestScore     int    `json:"best_score"`
	HintsUsed     int    `json:"hints_used"`
	ExecutionTime int64  `json:"execution_time"`
}

type statsV1 struct {
	TotalLessonsCompleted int            `json:"total_lessons_completed"`
	TotalExercisesSolved  int            `json:"total_exercises_solved"`
	TotalTimeSpent        int64          `json:"total_time_spent"`
	CurrentStreak         int            `json:"current_streak"`
	LongestStreak         int            `json:"longest_streak"`
	ExercisesByDifficulty map[string]int `json:"exercises_by_difficulty"`
}

// encode wraps p in the current document envelope.
func encode(p *domain.UserProgress) ([]byte, error) {
	return json.Marshal(documentV2{Version: CurrentVersion, UserProgress: p})
}

// decode parses any known document version into the current model.
// Errors wrap domain.ErrSchemaMigration.
func decode(data []byte) (*domain.UserProgress, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: read version: %v", domain.ErrSchemaMigration, err)
	}

	switch env.Version {
	case CurrentVersion:
		var doc documentV2
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: decode v2: %v", domain.ErrSchemaMigration, err)
		}
		if doc.UserProgress == nil {
			return nil, fmt.Errorf("%w: v2 document has no userProgress", domain.ErrSchemaMigration)
		}
		doc.UserProgress.Normalize()
		return doc.UserProgress, nil
	case 1:
		var doc documentV1
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: decode v1: %v", domain.ErrSchemaMigration, err)
		}
		if doc.Progress == nil {
			return nil, fmt.Errorf("%w: v1 document has no progress", domain.ErrSchemaMigration)
		}
		return migrateV1(doc.Progress), nil
	default:
		return nil, fmt.Errorf("%w: unknown version %d", domain.ErrSchemaMigration, env.Version)
	}
}

func migrateV1(old *progressV1) *domain.UserProgress {
	p := domain.NewUserProgress()

	for id, l := range old.Lessons {
		p.Lessons[id] = &domain.LessonProgress{
			LessonID:         id,
			Status:           migrateStatus(l.Status),
			CompletedAt:      l.CompletedAt,
			TimeSpentSeconds: l.TimeSpent,
		}
	}

	hints := 0
	for id, e := range old.Exercises {
		status := migrateStatus(e.Status)
		if e.BestScore >= 100 {
			status = domain.StatusCompleted
		}
		attempts := e.Attempts
		if status != domain.StatusNotStarted && attempts < 1 {
			attempts = 1
		}
		p.Exercises[id] = &domain.ExerciseProgress{
			ExerciseID:          id,
			Status:              status,
			Attempts:            attempts,
			BestScore:           e.BestScore,
			HintsUsed:           e.HintsUsed,
			LastExecutionTimeMs: e.ExecutionTime,
		}
		hints += e.HintsUsed
	}

	p.Stats.TotalLessonsCompleted = old.Stats.TotalLessonsCompleted
	p.Stats.TotalExercisesSolved = old.Stats.TotalExercisesSolved
	p.Stats.TotalTimeSpent = old.Stats.TotalTimeSpent
	p.Stats.TotalHintsUsed = hints
	p.Stats.CurrentStreak = old.Stats.CurrentStreak
	p.Stats.LongestStreak = old.Stats.LongestStreak
	for d, n := range old.Stats.ExercisesByDifficulty {
		p.Stats.ExercisesByDifficulty[domain.ParseDifficulty(d)] += n
	}
	p.LastActivity = old.LastActivity

	return p
}

func migrateStatus(s string) domain.Status {
	switch s {
	case "completed":
		return domain.StatusCompleted
	case "in-progress", "in_progress":
		return domain.StatusInProgress
	default:
		return domain.StatusNotStarted
	}
}
