// Package streak derives consecutive active days from activity timestamps.
package streak

import (
	"time"

	"github.com/felixgeelhaar/recall/internal/domain"
)

// Update records activity at now. It advances stats.CurrentStreak when the
// previous activity was the calendar day before, leaves it alone when it
// was the same day, and restarts it at 1 otherwise. The one same-day
// change is a streak of 0, which becomes 1: stored state whose lastActivity
// is today but whose counter was never set (a migrated document) still
// counts today. LongestStreak tracks the maximum and LastActivity is always
// set to now.
//
// Calendar days are taken in now's location.
func Update(p *domain.UserProgress, now time.Time) {
	today := civilDate(now)

	switch {
	case p.LastActivity == nil:
		p.Stats.CurrentStreak = 1
	default:
		last := civilDate(p.LastActivity.In(now.Location()))
		switch {
		case last.Equal(today):
			if p.Stats.CurrentStreak == 0 {
				p.Stats.CurrentStreak = 1
			}
		case last.Equal(today.AddDate(0, 0, -1)):
			p.Stats.CurrentStreak++
		default:
			p.Stats.CurrentStreak = 1
		}
	}

	if p.Stats.CurrentStreak > p.Stats.LongestStreak {
		p.Stats.LongestStreak = p.Stats.CurrentStreak
	}
	at := now
	p.LastActivity = &at
}

// Current returns the streak as it stands at now without recording
// activity: a streak whose last day is before yesterday has lapsed.
func Current(p *domain.UserProgress, now time.Time) int {
	if p.LastActivity == nil {
		return 0
	}
	last := civilDate(p.LastActivity.In(now.Location()))
	today := civilDate(now)
	if last.Equal(today) || last.Equal(today.AddDate(0, 0, -1)) {
		return p.Stats.CurrentStreak
	}
	return 0
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
