// Package daemon serves the local HTTP API over the progress store.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/recall/internal/achievement"
	"github.com/felixgeelhaar/recall/internal/catalog"
	"github.com/felixgeelhaar/recall/internal/config"
	"github.com/felixgeelhaar/recall/internal/domain"
	"github.com/felixgeelhaar/recall/internal/execution"
	"github.com/felixgeelhaar/recall/internal/progress"
)

// Runner executes submitted code. execution.Client implements it.
type Runner interface {
	Run(ctx context.Context, req execution.Request) (*execution.Result, error)
}

// Server represents the recall daemon HTTP server
type Server struct {
	cfg    *config.LocalConfig
	server *http.Server
	router *http.ServeMux
	logger *slog.Logger

	progress progress.ProgressService
	catalog  *catalog.Registry
	runner   Runner
	rules    []achievement.Rule
	version  string
}

// ServerConfig holds configuration for creating a new server
type ServerConfig struct {
	Config   *config.LocalConfig
	Progress progress.ProgressService
	// Catalog and Runner are optional.
	Catalog *catalog.Registry
	Runner  Runner
	Rules   []achievement.Rule
	Version string
	Logger  *slog.Logger
}

// NewServer creates a new daemon server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Progress == nil {
		return nil, errors.New("daemon: progress service is required")
	}
	if cfg.Config == nil {
		cfg.Config = config.DefaultLocalConfig()
	}
	if cfg.Rules == nil {
		cfg.Rules = achievement.DefaultRules()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{
		cfg:      cfg.Config,
		router:   http.NewServeMux(),
		logger:   cfg.Logger,
		progress: cfg.Progress,
		catalog:  cfg.Catalog,
		runner:   cfg.Runner,
		rules:    cfg.Rules,
		version:  cfg.Version,
	}

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Config.Daemon.Bind, cfg.Config.Daemon.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health & status
	s.router.HandleFunc("GET /v1/health", s.handleHealth)
	s.router.HandleFunc("GET /v1/status", s.handleStatus)

	// Progress
	s.router.HandleFunc("GET /v1/progress", s.handleGetProgress)
	s.router.HandleFunc("DELETE /v1/progress", s.handleResetProgress)
	s.router.HandleFunc("GET /v1/progress/total", s.handleTotalProgress)
	s.router.HandleFunc("GET /v1/stats", s.handleStats)

	// Catalog
	s.router.HandleFunc("GET /v1/modules", s.handleListModules)
	s.router.HandleFunc("GET /v1/modules/{id}/progress", s.handleModuleProgress)

	// Lessons
	s.router.HandleFunc("GET /v1/lessons/{id}", s.handleGetLesson)
	s.router.HandleFunc("POST /v1/lessons/{id}/start", s.handleStartLesson)
	s.router.HandleFunc("POST /v1/lessons/{id}/complete", s.handleCompleteLesson)
	s.router.HandleFunc("POST /v1/lessons/{id}/review", s.handleReviewLesson)

	// Exercises
	s.router.HandleFunc("GET /v1/exercises/{id}", s.handleGetExercise)
	s.router.HandleFunc("POST /v1/exercises/{id}/start", s.handleStartExercise)
	s.router.HandleFunc("POST /v1/exercises/{id}/complete", s.handleCompleteExercise)
	s.router.HandleFunc("POST /v1/exercises/{id}/partial", s.handlePartialExercise)
	s.router.HandleFunc("POST /v1/exercises/{id}/hint", s.handleHint)
	s.router.HandleFunc("POST /v1/exercises/{id}/attempt", s.handleAttempt)
	s.router.HandleFunc("POST /v1/exercises/{id}/review", s.handleReviewExercise)
	s.router.HandleFunc("POST /v1/exercises/{id}/run", s.handleRun)

	// Reviews & achievements
	s.router.HandleFunc("GET /v1/reviews/due", s.handleDueReviews)
	s.router.HandleFunc("GET /v1/reviews/history", s.handleReviewHistory)
	s.router.HandleFunc("GET /v1/achievements", s.handleAchievements)
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return correlationIDMiddleware(
		recoveryMiddleware(s.logger)(
			loggingMiddleware(s.logger)(s.router),
		),
	)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting recall daemon",
		"addr", s.server.Addr,
		"storage", s.cfg.Storage.Backend,
		"execution", s.runner != nil,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down daemon...")

	if closer, ok := s.runner.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn("failed to close execution client", "error", err)
		}
	}

	return s.server.Shutdown(ctx)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]any{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	s.jsonResponse(w, status, response)
}

// progressError maps store errors to HTTP statuses.
func (s *Server) progressError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownUnit), errors.Is(err, domain.ErrNotFound):
		s.jsonError(w, http.StatusNotFound, "not found", err)
	case errors.Is(err, domain.ErrInvalidInput):
		s.jsonError(w, http.StatusBadRequest, "invalid input", err)
	default:
		s.jsonError(w, http.StatusInternalServerError, "internal error", err)
	}
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}
