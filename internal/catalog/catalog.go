// Package catalog provides read-only module, lesson and exercise metadata.
package catalog

import "github.com/felixgeelhaar/recall/internal/domain"

// Module is an ordered group of lessons.
type Module struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Order       int      `json:"order"`
	Lessons     []Lesson `json:"lessons"`
}

// LessonIDs returns the module's lesson ids in order.
func (m *Module) LessonIDs() []string {
	ids := make([]string, len(m.Lessons))
	for i, l := range m.Lessons {
		ids[i] = l.ID
	}
	return ids
}

// Lesson belongs to exactly one module.
type Lesson struct {
	ID        string     `json:"id"`
	ModuleID  string     `json:"moduleId"`
	Title     string     `json:"title"`
	Exercises []Exercise `json:"exercises,omitempty"`
}

// Exercise belongs to exactly one lesson.
type Exercise struct {
	ID         string            `json:"id"`
	LessonID   string            `json:"lessonId"`
	Title      string            `json:"title"`
	Difficulty domain.Difficulty `json:"difficulty"`
}
