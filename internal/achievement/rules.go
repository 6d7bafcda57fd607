package achievement

import "github.com/felixgeelhaar/recall/internal/domain"

// Rule is a fixed achievement definition.
type Rule struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Condition   Condition
}

// DefaultRules is the built-in achievement catalog.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:          "exercises-1",
			Title:       "First Steps",
			Description: "Solve your first exercise",
			Icon:        "🎯",
			Condition:   CountAtLeast(ExercisesSolved, 1),
		},
		{
			ID:          "exercises-10",
			Title:       "Getting Warmed Up",
			Description: "Solve 10 exercises",
			Icon:        "🔥",
			Condition:   CountAtLeast(ExercisesSolved, 10),
		},
		{
			ID:          "exercises-50",
			Title:       "Problem Solver",
			Description: "Solve 50 exercises",
			Icon:        "🏆",
			Condition:   CountAtLeast(ExercisesSolved, 50),
		},
		{
			ID:          "lessons-1",
			Title:       "Student",
			Description: "Complete your first lesson",
			Icon:        "📖",
			Condition:   CountAtLeast(LessonsCompleted, 1),
		},
		{
			ID:          "lessons-10",
			Title:       "Scholar",
			Description: "Complete 10 lessons",
			Icon:        "🎓",
			Condition:   CountAtLeast(LessonsCompleted, 10),
		},
		{
			ID:          "streak-3",
			Title:       "Consistent",
			Description: "Learn 3 days in a row",
			Icon:        "📅",
			Condition:   StreakAtLeast(3),
		},
		{
			ID:          "streak-7",
			Title:       "Week Warrior",
			Description: "Learn 7 days in a row",
			Icon:        "⚡",
			Condition:   StreakAtLeast(7),
		},
		{
			ID:          "streak-30",
			Title:       "Unstoppable",
			Description: "Learn 30 days in a row",
			Icon:        "🌟",
			Condition:   StreakAtLeast(30),
		},
		{
			ID:          "hard-1",
			Title:       "Challenge Accepted",
			Description: "Solve an advanced exercise",
			Icon:        "💪",
			Condition:   DifficultyAtLeast(domain.DifficultyAdvanced, 1),
		},
		{
			ID:          "no-hints-perfect",
			Title:       "Independent Thinker",
			Description: "Solve 5 exercises without using a hint",
			Icon:        "🧠",
			Condition: AllOf(
				CountAtLeast(ExercisesSolved, 5),
				CountAtMost(HintsUsed, 0),
			),
		},
		{
			ID:          "time-1h",
			Title:       "Dedicated",
			Description: "Spend an hour learning",
			Icon:        "⏱️",
			Condition:   CountAtLeast(TimeSpent, 3600),
		},
	}
}
