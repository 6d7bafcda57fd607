package domain

import "time"

// Achievement is an unlocked achievement as stored in UserProgress.
// Conditions live in the achievement rule set, not here.
type Achievement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}
