package domain

import (
	"fmt"
	"time"
)

// Quality is a 0-5 self-assessment of recall supplied at review time.
// 5 is perfect recall; anything below 3 counts as a failed review.
type Quality int

const (
	QualityBlackout          Quality = 0
	QualityIncorrect         Quality = 1
	QualityIncorrectFamiliar Quality = 2
	QualityCorrectDifficult  Quality = 3
	QualityCorrectHesitation Quality = 4
	QualityPerfect           Quality = 5
)

// PassThreshold is the lowest quality that counts as a successful review.
const PassThreshold = QualityCorrectDifficult

// IsValid reports whether q lies in [0, 5].
func (q Quality) IsValid() bool {
	return q >= QualityBlackout && q <= QualityPerfect
}

// Passed reports whether q is a successful review.
func (q Quality) Passed() bool {
	return q >= PassThreshold
}

func (q Quality) String() string {
	return fmt.Sprintf("Quality(%d)", int(q))
}

// ReviewRecord holds the spaced-repetition state for one reviewable unit.
type ReviewRecord struct {
	UnitID          string     `json:"unitId"`
	EasinessFactor  float64    `json:"easinessFactor"`
	RepetitionCount int        `json:"repetitionCount"`
	IntervalDays    int        `json:"intervalDays"`
	DueAt           time.Time  `json:"dueAt"`
	LastReviewedAt  *time.Time `json:"lastReviewedAt"`
}

// Clone returns a copy that shares no pointers with r.
func (r *ReviewRecord) Clone() *ReviewRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.LastReviewedAt != nil {
		t := *r.LastReviewedAt
		c.LastReviewedAt = &t
	}
	return &c
}

// UnitKind distinguishes the two reviewable unit types.
type UnitKind string

const (
	UnitLesson   UnitKind = "lesson"
	UnitExercise UnitKind = "exercise"
)

// DueUnit is a unit whose review is due.
type DueUnit struct {
	Kind   UnitKind      `json:"kind"`
	UnitID string        `json:"unitId"`
	Record *ReviewRecord `json:"record,omitempty"`
}

// ReviewLogEntry is one scheduled review kept in the review history.
type ReviewLogEntry struct {
	Kind           UnitKind  `json:"kind"`
	UnitID         string    `json:"unitId"`
	Quality        Quality   `json:"quality"`
	EasinessFactor float64   `json:"easinessFactor"`
	IntervalDays   int       `json:"intervalDays"`
	ReviewedAt     time.Time `json:"reviewedAt"`
}
