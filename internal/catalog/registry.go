package catalog

import (
	"fmt"
	"sync"

	"github.com/felixgeelhaar/recall/internal/domain"
)

// Registry indexes loaded modules for lookup by id.
type Registry struct {
	loader *Loader

	mu        sync.RWMutex
	modules   []*Module
	byModule  map[string]*Module
	lessons   map[string]*Lesson
	exercises map[string]*Exercise
}

// NewRegistry creates a registry backed by loader. Call Load before use.
func NewRegistry(loader *Loader) *Registry {
	r := &Registry{loader: loader}
	r.index(nil)
	return r
}

// NewStaticRegistry creates a registry over modules that are already in memory.
func NewStaticRegistry(modules ...*Module) (*Registry, error) {
	r := &Registry{}
	if err := r.set(modules); err != nil {
		return nil, err
	}
	return r, nil
}

// Load reads all modules from the loader, replacing the current contents.
func (r *Registry) Load() error {
	if r.loader == nil {
		return nil
	}
	modules, err := r.loader.LoadAll()
	if err != nil {
		return fmt.Errorf("load modules: %w", err)
	}
	return r.set(modules)
}

func (r *Registry) set(modules []*Module) error {
	seen := make(map[string]string)
	claim := func(kind, id string) error {
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("duplicate id %q (%s and %s)", id, prev, kind)
		}
		seen[id] = kind
		return nil
	}
	for _, m := range modules {
		if err := claim("module", m.ID); err != nil {
			return err
		}
		for _, l := range m.Lessons {
			if err := claim("lesson", l.ID); err != nil {
				return err
			}
			for _, e := range l.Exercises {
				if err := claim("exercise", e.ID); err != nil {
					return err
				}
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.index(modules)
	return nil
}

func (r *Registry) index(modules []*Module) {
	r.modules = modules
	r.byModule = make(map[string]*Module, len(modules))
	r.lessons = make(map[string]*Lesson)
	r.exercises = make(map[string]*Exercise)
	for _, m := range modules {
		r.byModule[m.ID] = m
		for i := range m.Lessons {
			l := &m.Lessons[i]
			l.ModuleID = m.ID
			r.lessons[l.ID] = l
			for j := range l.Exercises {
				e := &l.Exercises[j]
				e.LessonID = l.ID
				r.exercises[e.ID] = e
			}
		}
	}
}

// Modules returns all modules in catalog order
func (r *Registry) Modules() []*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Module(nil), r.modules...)
}

// Module returns a module by id
func (r *Registry) Module(id string) (*Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byModule[id]
	if !ok {
		return nil, fmt.Errorf("module %s: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

// ModuleLessons returns the ordered lesson ids of a module.
func (r *Registry) ModuleLessons(moduleID string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byModule[moduleID]
	if !ok {
		return nil, false
	}
	return m.LessonIDs(), true
}

// HasLesson reports whether the catalog defines the lesson.
func (r *Registry) HasLesson(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.lessons[id]
	return ok
}

// HasExercise reports whether the catalog defines the exercise.
func (r *Registry) HasExercise(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.exercises[id]
	return ok
}

// Difficulty returns an exercise's difficulty.
func (r *Registry) Difficulty(exerciseID string) (domain.Difficulty, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.exercises[exerciseID]
	if !ok {
		return "", false
	}
	return e.Difficulty, true
}

// LessonOf returns the lesson an exercise belongs to.
func (r *Registry) LessonOf(exerciseID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.exercises[exerciseID]
	if !ok {
		return "", false
	}
	return e.LessonID, true
}

// LessonIDs returns every lesson id in catalog order.
func (r *Registry) LessonIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for _, m := range r.modules {
		ids = append(ids, m.LessonIDs()...)
	}
	return ids
}

// ExerciseIDs returns every exercise id in catalog order.
func (r *Registry) ExerciseIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for _, m := range r.modules {
		for _, l := range m.Lessons {
			for _, e := range l.Exercises {
				ids = append(ids, e.ID)
			}
		}
	}
	return ids
}
