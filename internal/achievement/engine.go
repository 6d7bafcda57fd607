// Package achievement evaluates the fixed achievement rule set against
// learner progress and unlocks newly satisfied achievements.
package achievement

import (
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/recall/internal/domain"
)

// Engine evaluates rules in ascending id order.
type Engine struct {
	rules []Rule
}

// NewEngine builds an engine over rules. Rule ids must be unique and every
// condition must be well formed.
func NewEngine(rules []Rule) (*Engine, error) {
	sorted := append([]Rule(nil), rules...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for i, r := range sorted {
		if r.ID == "" {
			return nil, fmt.Errorf("achievement: rule %d has no id", i)
		}
		if i > 0 && sorted[i-1].ID == r.ID {
			return nil, fmt.Errorf("achievement: duplicate rule id %q", r.ID)
		}
		if err := r.Condition.Validate(); err != nil {
			return nil, fmt.Errorf("achievement: rule %q: %w", r.ID, err)
		}
	}
	return &Engine{rules: sorted}, nil
}

// Default returns an engine over DefaultRules.
func Default() *Engine {
	e, err := NewEngine(DefaultRules())
	if err != nil {
		panic(err)
	}
	return e
}

// Rules returns the rules in evaluation order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Evaluate appends every achievement whose condition holds and which is not
// yet unlocked to p.Achievements, stamped with now, and returns the newly
// unlocked ones. Unlocked achievements are never removed.
func (e *Engine) Evaluate(p *domain.UserProgress, now time.Time) []domain.Achievement {
	var unlocked []domain.Achievement
	for _, r := range e.rules {
		if p.HasAchievement(r.ID) {
			continue
		}
		// Conditions were validated in NewEngine.
		ok, _ := r.Condition.Holds(p)
		if !ok {
			continue
		}
		a := domain.Achievement{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Icon:        r.Icon,
			UnlockedAt:  now,
		}
		p.Achievements = append(p.Achievements, a)
		unlocked = append(unlocked, a)
	}
	return unlocked
}
