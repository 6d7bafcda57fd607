package domain

import "time"

// EventType identifies a progress event
type EventType string

const (
	EventLessonCompleted     EventType = "lesson.completed"
	EventExerciseCompleted   EventType = "exercise.completed"
	EventAchievementUnlocked EventType = "achievement.unlocked"
	EventProgressReset       EventType = "progress.reset"
	EventReviewDue           EventType = "review.due"
)

// Event is emitted after a progress mutation has been applied.
type Event struct {
	ID          string       `json:"id"`
	Type        EventType    `json:"type"`
	UnitID      string       `json:"unit_id,omitempty"`
	Achievement *Achievement `json:"achievement,omitempty"`
	DueCount    int          `json:"due_count,omitempty"`
	OccurredAt  time.Time    `json:"occurred_at"`
}
