package streak

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/recall/internal/domain"
)

var dayN = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestUpdate_FirstActivity(t *testing.T) {
	p := domain.NewUserProgress()

	Update(p, dayN)

	if p.Stats.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", p.Stats.CurrentStreak)
	}
	if p.Stats.LongestStreak != 1 {
		t.Errorf("LongestStreak = %d, want 1", p.Stats.LongestStreak)
	}
	if p.LastActivity == nil || !p.LastActivity.Equal(dayN) {
		t.Errorf("LastActivity = %v, want %v", p.LastActivity, dayN)
	}
}

func TestUpdate_ConsecutiveDays(t *testing.T) {
	p := domain.NewUserProgress()

	Update(p, dayN)
	Update(p, dayN.AddDate(0, 0, 1))
	if p.Stats.CurrentStreak != 2 {
		t.Fatalf("CurrentStreak after day N+1 = %d, want 2", p.Stats.CurrentStreak)
	}

	Update(p, dayN.AddDate(0, 0, 1).Add(5*time.Hour))
	if p.Stats.CurrentStreak != 2 {
		t.Errorf("CurrentStreak after second call on N+1 = %d, want 2", p.Stats.CurrentStreak)
	}
}

func TestUpdate_SameDayCountsUnsetStreak(t *testing.T) {
	p := domain.NewUserProgress()
	earlier := dayN.Add(-2 * time.Hour)
	p.LastActivity = &earlier

	Update(p, dayN)

	if p.Stats.CurrentStreak != 1 || p.Stats.LongestStreak != 1 {
		t.Errorf("streak = %d/%d, want 1/1", p.Stats.CurrentStreak, p.Stats.LongestStreak)
	}
}

func TestUpdate_AcrossMidnight(t *testing.T) {
	p := domain.NewUserProgress()

	Update(p, time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC))
	Update(p, time.Date(2025, 6, 16, 0, 1, 0, 0, time.UTC))

	if p.Stats.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", p.Stats.CurrentStreak)
	}
}

func TestUpdate_GapResets(t *testing.T) {
	p := domain.NewUserProgress()

	for i := 0; i < 4; i++ {
		Update(p, dayN.AddDate(0, 0, i))
	}
	if p.Stats.CurrentStreak != 4 {
		t.Fatalf("CurrentStreak = %d, want 4", p.Stats.CurrentStreak)
	}

	Update(p, dayN.AddDate(0, 0, 6))

	if p.Stats.CurrentStreak != 1 {
		t.Errorf("CurrentStreak after gap = %d, want 1", p.Stats.CurrentStreak)
	}
	if p.Stats.LongestStreak != 4 {
		t.Errorf("LongestStreak = %d, want 4", p.Stats.LongestStreak)
	}
}

func TestUpdate_ClockMovedBackwards(t *testing.T) {
	p := domain.NewUserProgress()

	Update(p, dayN)
	Update(p, dayN.AddDate(0, 0, 1))
	Update(p, dayN.AddDate(0, 0, -3))

	if p.Stats.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", p.Stats.CurrentStreak)
	}
	if p.Stats.LongestStreak != 2 {
		t.Errorf("LongestStreak = %d, want 2", p.Stats.LongestStreak)
	}
}

func TestCurrent(t *testing.T) {
	p := domain.NewUserProgress()
	if got := Current(p, dayN); got != 0 {
		t.Errorf("Current() on empty = %d, want 0", got)
	}

	Update(p, dayN)
	Update(p, dayN.AddDate(0, 0, 1))

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"same day", dayN.AddDate(0, 0, 1), 2},
		{"next day", dayN.AddDate(0, 0, 2), 2},
		{"lapsed", dayN.AddDate(0, 0, 3), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Current(p, tt.now); got != tt.want {
				t.Errorf("Current() = %d, want %d", got, tt.want)
			}
		})
	}
}
