package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/felixgeelhaar/recall/internal/domain"
	"gopkg.in/yaml.v3"
)

// ModuleFile is the YAML structure of a module.yaml file
type ModuleFile struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Order       int    `yaml:"order"`
	Lessons     []struct {
		ID        string `yaml:"id"`
		Title     string `yaml:"title"`
		Exercises []struct {
			ID         string `yaml:"id"`
			Title      string `yaml:"title"`
			Difficulty string `yaml:"difficulty"`
		} `yaml:"exercises"`
	} `yaml:"lessons"`
}

// Loader reads modules from a directory tree of the form
// basePath/<module>/module.yaml.
type Loader struct {
	basePath string
}

// NewLoader creates a new catalog loader
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// LoadModule loads a single module directory
func (l *Loader) LoadModule(dir string) (*Module, error) {
	path := filepath.Join(l.basePath, dir, "module.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module file: %w", err)
	}

	var mf ModuleFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse module file %s: %w", path, err)
	}
	if mf.ID == "" {
		mf.ID = dir
	}

	m := &Module{
		ID:          mf.ID,
		Title:       mf.Title,
		Description: mf.Description,
		Order:       mf.Order,
		Lessons:     make([]Lesson, 0, len(mf.Lessons)),
	}
	for _, lf := range mf.Lessons {
		if lf.ID == "" {
			return nil, fmt.Errorf("module %s: lesson without id", mf.ID)
		}
		lesson := Lesson{
			ID:        lf.ID,
			ModuleID:  mf.ID,
			Title:     lf.Title,
			Exercises: make([]Exercise, 0, len(lf.Exercises)),
		}
		for _, ef := range lf.Exercises {
			if ef.ID == "" {
				return nil, fmt.Errorf("lesson %s: exercise without id", lf.ID)
			}
			lesson.Exercises = append(lesson.Exercises, Exercise{
				ID:         ef.ID,
				LessonID:   lf.ID,
				Title:      ef.Title,
				Difficulty: domain.ParseDifficulty(ef.Difficulty),
			})
		}
		m.Lessons = append(m.Lessons, lesson)
	}

	return m, nil
}

// LoadAll loads every module directory under the base path, ordered by
// Order then id. A missing base path yields an empty catalog.
func (l *Loader) LoadAll() ([]*Module, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read catalog directory: %w", err)
	}

	var modules []*Module
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(l.basePath, entry.Name(), "module.yaml")); os.IsNotExist(err) {
			continue
		}

		m, err := l.LoadModule(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("load module %s: %w", entry.Name(), err)
		}
		modules = append(modules, m)
	}

	sort.SliceStable(modules, func(i, j int) bool {
		if modules[i].Order != modules[j].Order {
			return modules[i].Order < modules[j].Order
		}
		return modules[i].ID < modules[j].ID
	})
	return modules, nil
}
