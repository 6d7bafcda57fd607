package domain

// Difficulty represents exercise difficulty level
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// IsValid reports whether d is one of the known difficulty levels.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// ParseDifficulty maps a catalog string onto a Difficulty, falling back to
// beginner for empty or unrecognized values.
func ParseDifficulty(s string) Difficulty {
	d := Difficulty(s)
	if d.IsValid() {
		return d
	}
	return DifficultyBeginner
}
