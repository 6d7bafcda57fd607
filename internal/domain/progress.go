package domain

import "time"

// Status is the lifecycle state of a lesson or exercise.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// LessonProgress records what the learner has done with a single lesson.
type LessonProgress struct {
	LessonID         string        `json:"lessonId"`
	Status           Status        `json:"status"`
	CompletedAt      *time.Time    `json:"completedAt"`
	TimeSpentSeconds int64         `json:"timeSpentSeconds"`
	Review           *ReviewRecord `json:"review,omitempty"`
}

// ExerciseProgress records what the learner has done with a single exercise.
type ExerciseProgress struct {
	ExerciseID          string        `json:"exerciseId"`
	Status              Status        `json:"status"`
	Attempts            int           `json:"attempts"`
	BestScore           int           `json:"bestScore"`
	HintsUsed           int           `json:"hintsUsed"`
	LastExecutionTimeMs int64         `json:"lastExecutionTimeMs"`
	Review              *ReviewRecord `json:"review,omitempty"`
}

// Stats holds the aggregate counters derived from lesson and exercise progress.
type Stats struct {
	TotalLessonsCompleted int                `json:"totalLessonsCompleted"`
	TotalExercisesSolved  int                `json:"totalExercisesSolved"`
	TotalTimeSpent        int64              `json:"totalTimeSpent"`
	TotalHintsUsed        int                `json:"totalHintsUsed"`
	CurrentStreak         int                `json:"currentStreak"`
	LongestStreak         int                `json:"longestStreak"`
	ExercisesByDifficulty map[Difficulty]int `json:"exercisesByDifficulty"`
}

// UserProgress is the complete learner state.
type UserProgress struct {
	Lessons      map[string]*LessonProgress   `json:"lessons"`
	Exercises    map[string]*ExerciseProgress `json:"exercises"`
	Stats        Stats                        `json:"stats"`
	Achievements []Achievement                `json:"achievements"`
	LastActivity *time.Time                   `json:"lastActivity"`
}

// NewUserProgress returns the empty state: no units, all counters zero.
func NewUserProgress() *UserProgress {
	return &UserProgress{
		Lessons:   make(map[string]*LessonProgress),
		Exercises: make(map[string]*ExerciseProgress),
		Stats: Stats{
			ExercisesByDifficulty: make(map[Difficulty]int),
		},
		Achievements: []Achievement{},
	}
}

// Normalize fills nil maps and slices so a decoded document is safe to
// mutate. Null unit entries are dropped and missing unit ids are taken from
// their keys.
func (p *UserProgress) Normalize() {
	if p.Lessons == nil {
		p.Lessons = make(map[string]*LessonProgress)
	}
	for id, l := range p.Lessons {
		if l == nil {
			delete(p.Lessons, id)
			continue
		}
		if l.LessonID == "" {
			l.LessonID = id
		}
	}
	if p.Exercises == nil {
		p.Exercises = make(map[string]*ExerciseProgress)
	}
	for id, e := range p.Exercises {
		if e == nil {
			delete(p.Exercises, id)
			continue
		}
		if e.ExerciseID == "" {
			e.ExerciseID = id
		}
	}
	if p.Stats.ExercisesByDifficulty == nil {
		p.Stats.ExercisesByDifficulty = make(map[Difficulty]int)
	}
	if p.Achievements == nil {
		p.Achievements = []Achievement{}
	}
}

// HasAchievement reports whether the achievement id has been unlocked.
func (p *UserProgress) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of p.
func (p *UserProgress) Clone() *UserProgress {
	c := &UserProgress{
		Lessons:      make(map[string]*LessonProgress, len(p.Lessons)),
		Exercises:    make(map[string]*ExerciseProgress, len(p.Exercises)),
		Stats:        p.Stats,
		Achievements: append([]Achievement{}, p.Achievements...),
	}
	c.Stats.ExercisesByDifficulty = make(map[Difficulty]int, len(p.Stats.ExercisesByDifficulty))
	for d, n := range p.Stats.ExercisesByDifficulty {
		c.Stats.ExercisesByDifficulty[d] = n
	}
	for id, l := range p.Lessons {
		lc := *l
		lc.CompletedAt = cloneTime(l.CompletedAt)
		lc.Review = l.Review.Clone()
		c.Lessons[id] = &lc
	}
	for id, e := range p.Exercises {
		ec := *e
		ec.Review = e.Review.Clone()
		c.Exercises[id] = &ec
	}
	c.LastActivity = cloneTime(p.LastActivity)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// ModuleProgress is the derived completion summary for one module.
type ModuleProgress struct {
	ModuleID           string  `json:"moduleId"`
	TotalLessons       int     `json:"totalLessons"`
	LessonsCompleted   int     `json:"lessonsCompleted"`
	ExercisesCompleted int     `json:"exercisesCompleted"`
	PercentComplete    float64 `json:"percentComplete"`
}
