// Package mcp exposes the progress store as MCP tools for editor agents.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"

	"github.com/felixgeelhaar/recall/internal/domain"
	"github.com/felixgeelhaar/recall/internal/progress"
	"github.com/felixgeelhaar/recall/internal/streak"
)

// Server wraps the MCP server with recall functionality
type Server struct {
	mcpServer *server.Server
	progress  progress.ProgressService
}

// Config contains configuration for the MCP server
type Config struct {
	Progress progress.ProgressService
	Version  string
}

// NewServer creates a new MCP server for recall
func NewServer(cfg Config) (*Server, error) {
	if cfg.Progress == nil {
		return nil, errors.New("mcp: progress service is required")
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{progress: cfg.Progress}

	s.mcpServer = server.New(server.Info{
		Name:    "recall",
		Version: cfg.Version,
	}, server.WithInstructions(`
recall tracks a learner's lesson and exercise progress and schedules
spaced-repetition reviews (SM-2).

Available tools:
- recall_status: Overall progress, streak and achievements
- recall_due: Units whose review is due now
- recall_review: Grade recall of a lesson or exercise (quality 0-5)
- recall_complete_lesson: Mark a lesson completed
- recall_module_progress: Progress summary for one module

Quality scale: 0-2 failed recall, 3 hard, 4 good, 5 perfect.
`))

	s.registerTools()

	return s, nil
}

// registerTools registers all recall MCP tools
func (s *Server) registerTools() {
	s.mcpServer.Tool("recall_status").
		Description("Get overall learning progress, streak and unlocked achievements.").
		Handler(s.handleStatus)

	s.mcpServer.Tool("recall_due").
		Description("List lessons and exercises due for review, most overdue first.").
		Handler(s.handleDue)

	s.mcpServer.Tool("recall_review").
		Description("Record how well a lesson or exercise was recalled and schedule the next review.").
		Handler(s.handleReview)

	s.mcpServer.Tool("recall_complete_lesson").
		Description("Mark a lesson as completed.").
		Handler(s.handleCompleteLesson)

	s.mcpServer.Tool("recall_module_progress").
		Description("Get completion progress for a module.").
		Handler(s.handleModuleProgress)
}

// Input/Output types for tools

type StatusInput struct{}

type StatusOutput struct {
	TotalProgress      float64  `json:"total_progress"`
	LessonsCompleted   int      `json:"lessons_completed"`
	ExercisesSolved    int      `json:"exercises_solved"`
	TimeSpentSeconds   int64    `json:"time_spent_seconds"`
	CurrentStreak      int      `json:"current_streak"`
	LongestStreak      int      `json:"longest_streak"`
	DueReviews         int      `json:"due_reviews"`
	Achievements       []string `json:"achievements"`
	PersistenceHealthy bool     `json:"persistence_healthy"`
}

type DueInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Maximum number of units to return (default: all)"`
}

type DueUnit struct {
	Kind          string `json:"kind"`
	ID            string `json:"id"`
	NeverReviewed bool   `json:"never_reviewed"`
	DueAt         string `json:"due_at,omitempty"`
}

type DueOutput struct {
	Count int       `json:"count"`
	Units []DueUnit `json:"units"`
}

type ReviewInput struct {
	Kind    string `json:"kind" jsonschema:"description=Unit kind,enum=lesson,enum=exercise"`
	ID      string `json:"id" jsonschema:"description=Lesson or exercise ID"`
	Quality int    `json:"quality" jsonschema:"description=Recall quality from 0 (blackout) to 5 (perfect)"`
}

type ReviewOutput struct {
	IntervalDays   int     `json:"interval_days"`
	EasinessFactor float64 `json:"easiness_factor"`
	Repetitions    int     `json:"repetitions"`
	DueAt          string  `json:"due_at"`
	Message        string  `json:"message"`
}

type CompleteLessonInput struct {
	LessonID         string `json:"lesson_id" jsonschema:"description=Lesson ID"`
	TimeSpentSeconds int64  `json:"time_spent_seconds,omitempty" jsonschema:"description=Seconds spent on the lesson"`
}

type CompleteLessonOutput struct {
	Status          string   `json:"status"`
	NewAchievements []string `json:"new_achievements,omitempty"`
	Message         string   `json:"message"`
}

type ModuleProgressInput struct {
	ModuleID string `json:"module_id" jsonschema:"description=Module ID from the catalog"`
}

type ModuleProgressOutput struct {
	ModuleID           string  `json:"module_id"`
	TotalLessons       int     `json:"total_lessons"`
	LessonsCompleted   int     `json:"lessons_completed"`
	ExercisesCompleted int     `json:"exercises_completed"`
	PercentComplete    float64 `json:"percent_complete"`
}

// Tool handlers

func (s *Server) handleStatus(ctx context.Context, _ StatusInput) (StatusOutput, error) {
	snap := s.progress.Snapshot()
	now := s.progress.Now()

	names := make([]string, 0, len(snap.Achievements))
	for _, a := range snap.Achievements {
		names = append(names, a.Title)
	}

	return StatusOutput{
		TotalProgress:      s.progress.TotalProgress(),
		LessonsCompleted:   snap.Stats.TotalLessonsCompleted,
		ExercisesSolved:    snap.Stats.TotalExercisesSolved,
		TimeSpentSeconds:   snap.Stats.TotalTimeSpent,
		CurrentStreak:      streak.Current(snap, now),
		LongestStreak:      snap.Stats.LongestStreak,
		DueReviews:         len(s.progress.DueUnits(now)),
		Achievements:       names,
		PersistenceHealthy: s.progress.PersistStatus().LastError == "",
	}, nil
}

func (s *Server) handleDue(ctx context.Context, input DueInput) (DueOutput, error) {
	due := s.progress.DueUnits(s.progress.Now())

	out := DueOutput{Count: len(due), Units: []DueUnit{}}
	if input.Limit > 0 && len(due) > input.Limit {
		due = due[:input.Limit]
	}
	for _, u := range due {
		unit := DueUnit{Kind: string(u.Kind), ID: u.UnitID}
		if u.Record == nil || u.Record.LastReviewedAt == nil {
			unit.NeverReviewed = true
		} else {
			unit.DueAt = u.Record.DueAt.Format("2006-01-02")
		}
		out.Units = append(out.Units, unit)
	}
	return out, nil
}

func (s *Server) handleReview(ctx context.Context, input ReviewInput) (ReviewOutput, error) {
	q := domain.Quality(input.Quality)

	var (
		rec domain.ReviewRecord
		err error
	)
	switch domain.UnitKind(input.Kind) {
	case domain.UnitLesson:
		rec, err = s.progress.ReviewLesson(ctx, input.ID, q)
	case domain.UnitExercise:
		rec, err = s.progress.ReviewExercise(ctx, input.ID, q)
	default:
		return ReviewOutput{}, fmt.Errorf("kind must be lesson or exercise, got %q", input.Kind)
	}
	if err != nil {
		return ReviewOutput{}, fmt.Errorf("review failed: %w", err)
	}

	return ReviewOutput{
		IntervalDays:   rec.IntervalDays,
		EasinessFactor: rec.EasinessFactor,
		Repetitions:    rec.RepetitionCount,
		DueAt:          rec.DueAt.Format("2006-01-02"),
		Message:        reviewMessage(q, rec.IntervalDays),
	}, nil
}

func reviewMessage(q domain.Quality, interval int) string {
	day := "days"
	if interval == 1 {
		day = "day"
	}
	if !q.Passed() {
		return fmt.Sprintf("Not recalled. Review again in %d %s.", interval, day)
	}
	return fmt.Sprintf("Recalled with quality %d. Next review in %d %s.", int(q), interval, day)
}

func (s *Server) handleCompleteLesson(ctx context.Context, input CompleteLessonInput) (CompleteLessonOutput, error) {
	before := make(map[string]bool)
	for _, a := range s.progress.Achievements() {
		before[a.ID] = true
	}

	if err := s.progress.CompleteLesson(ctx, input.LessonID, input.TimeSpentSeconds); err != nil {
		return CompleteLessonOutput{}, fmt.Errorf("failed to complete lesson: %w", err)
	}

	var unlocked []string
	for _, a := range s.progress.Achievements() {
		if !before[a.ID] {
			unlocked = append(unlocked, a.Icon+" "+a.Title)
		}
	}

	msg := fmt.Sprintf("Lesson %s completed.", input.LessonID)
	if len(unlocked) > 0 {
		msg += " Unlocked: " + strings.Join(unlocked, ", ")
	}

	return CompleteLessonOutput{
		Status:          string(s.progress.LessonStatus(input.LessonID)),
		NewAchievements: unlocked,
		Message:         msg,
	}, nil
}

func (s *Server) handleModuleProgress(ctx context.Context, input ModuleProgressInput) (ModuleProgressOutput, error) {
	mp, err := s.progress.ModuleProgressFor(input.ModuleID)
	if err != nil {
		return ModuleProgressOutput{}, fmt.Errorf("module progress: %w", err)
	}
	return ModuleProgressOutput{
		ModuleID:           mp.ModuleID,
		TotalLessons:       mp.TotalLessons,
		LessonsCompleted:   mp.LessonsCompleted,
		ExercisesCompleted: mp.ExercisesCompleted,
		PercentComplete:    mp.PercentComplete,
	}, nil
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server on HTTP
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
