package achievement

import (
	"fmt"

	"github.com/felixgeelhaar/recall/internal/domain"
)

// Counter names an aggregate a condition can compare against.
type Counter string

const (
	LessonsCompleted Counter = "lessonsCompleted"
	ExercisesSolved  Counter = "exercisesSolved"
	TimeSpent        Counter = "timeSpent"
	HintsUsed        Counter = "hintsUsed"
	CurrentStreak    Counter = "currentStreak"
	LongestStreak    Counter = "longestStreak"
)

// Value reads the counter from p.
func (c Counter) Value(p *domain.UserProgress) (int64, error) {
	switch c {
	case LessonsCompleted:
		return int64(p.Stats.TotalLessonsCompleted), nil
	case ExercisesSolved:
		return int64(p.Stats.TotalExercisesSolved), nil
	case TimeSpent:
		return p.Stats.TotalTimeSpent, nil
	case HintsUsed:
		return int64(p.Stats.TotalHintsUsed), nil
	case CurrentStreak:
		return int64(p.Stats.CurrentStreak), nil
	case LongestStreak:
		return int64(p.Stats.LongestStreak), nil
	default:
		return 0, fmt.Errorf("achievement: unknown counter %q", string(c))
	}
}

// Kind tags the variant of a Condition.
type Kind string

const (
	KindCountAtLeast      Kind = "countAtLeast"
	KindCountAtMost       Kind = "countAtMost"
	KindStreakAtLeast     Kind = "streakAtLeast"
	KindDifficultyAtLeast Kind = "difficultyAtLeast"
	KindAllOf             Kind = "allOf"
)

// Condition is a predicate over UserProgress expressed as data.
// Which fields are meaningful depends on Kind.
type Condition struct {
	Kind       Kind
	Counter    Counter
	Difficulty domain.Difficulty
	N          int64
	All        []Condition
}

// CountAtLeast holds when counter >= n.
func CountAtLeast(counter Counter, n int64) Condition {
	return Condition{Kind: KindCountAtLeast, Counter: counter, N: n}
}

// CountAtMost holds when counter <= n.
func CountAtMost(counter Counter, n int64) Condition {
	return Condition{Kind: KindCountAtMost, Counter: counter, N: n}
}

// StreakAtLeast holds when the current streak is at least n days.
func StreakAtLeast(n int64) Condition {
	return Condition{Kind: KindStreakAtLeast, N: n}
}

// DifficultyAtLeast holds when at least n exercises of difficulty d are solved.
func DifficultyAtLeast(d domain.Difficulty, n int64) Condition {
	return Condition{Kind: KindDifficultyAtLeast, Difficulty: d, N: n}
}

// AllOf holds when every nested condition holds.
func AllOf(conds ...Condition) Condition {
	return Condition{Kind: KindAllOf, All: conds}
}

// Holds evaluates the condition against p.
func (c Condition) Holds(p *domain.UserProgress) (bool, error) {
	switch c.Kind {
	case KindCountAtLeast:
		v, err := c.Counter.Value(p)
		if err != nil {
			return false, err
		}
		return v >= c.N, nil
	case KindCountAtMost:
		v, err := c.Counter.Value(p)
		if err != nil {
			return false, err
		}
		return v <= c.N, nil
	case KindStreakAtLeast:
		return int64(p.Stats.CurrentStreak) >= c.N, nil
	case KindDifficultyAtLeast:
		return int64(p.Stats.ExercisesByDifficulty[c.Difficulty]) >= c.N, nil
	case KindAllOf:
		if len(c.All) == 0 {
			return false, fmt.Errorf("achievement: empty allOf condition")
		}
		for _, sub := range c.All {
			ok, err := sub.Holds(p)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	default:
		return false, fmt.Errorf("achievement: unknown condition kind %q", string(c.Kind))
	}
}

// Validate checks the condition is well formed without evaluating it.
func (c Condition) Validate() error {
	_, err := c.Holds(domain.NewUserProgress())
	return err
}
