package daemon

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/recall/internal/domain"
	"github.com/felixgeelhaar/recall/internal/execution"
	"github.com/felixgeelhaar/recall/internal/progress"
	"github.com/felixgeelhaar/recall/internal/streak"
)

// Health & status

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	modules := 0
	if s.catalog != nil {
		modules = len(s.catalog.Modules())
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":      "running",
		"version":     s.version,
		"storage":     s.cfg.Storage.Backend,
		"persistence": s.progress.PersistStatus(),
		"execution":   s.runner != nil,
		"events":      s.cfg.Events.Enabled,
		"modules":     modules,
	})
}

// Progress

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.progress.Snapshot())
}

func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	if err := s.progress.Reset(r.Context()); err != nil {
		s.progressError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"reset": true})
}

func (s *Server) handleTotalProgress(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"total": s.progress.TotalProgress(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.progress.Snapshot()
	now := s.progress.Now()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"stats":          snap.Stats,
		"current_streak": streak.Current(snap, now),
		"total_progress": s.progress.TotalProgress(),
		"achievements":   len(snap.Achievements),
		"due_reviews":    len(s.progress.DueUnits(now)),
		"last_activity":  snap.LastActivity,
	})
}

// Catalog

func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		s.jsonResponse(w, http.StatusOK, map[string]any{"modules": []any{}})
		return
	}

	modules := s.catalog.Modules()
	result := make([]map[string]any, 0, len(modules))
	for _, m := range modules {
		result = append(result, map[string]any{
			"id":           m.ID,
			"title":        m.Title,
			"description":  m.Description,
			"lesson_count": len(m.Lessons),
			"progress":     s.progress.ModuleProgress(m.ID, m.LessonIDs()),
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"modules": result})
}

func (s *Server) handleModuleProgress(w http.ResponseWriter, r *http.Request) {
	mp, err := s.progress.ModuleProgressFor(r.PathValue("id"))
	if err != nil {
		s.progressError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, mp)
}

// Lessons

func (s *Server) lessonResponse(w http.ResponseWriter, status int, id string) {
	resp := map[string]any{
		"lesson_id": id,
		"status":    s.progress.LessonStatus(id),
	}
	if l, ok := s.progress.Lesson(id); ok {
		resp["progress"] = l
	}
	s.jsonResponse(w, status, resp)
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	s.lessonResponse(w, http.StatusOK, r.PathValue("id"))
}

func (s *Server) handleStartLesson(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.progress.StartLesson(r.Context(), id); err != nil {
		s.progressError(w, err)
		return
	}
	s.lessonResponse(w, http.StatusOK, id)
}

func (s *Server) handleCompleteLesson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TimeSpentSeconds int64 `json:"time_spent_seconds"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	id := r.PathValue("id")
	if err := s.progress.CompleteLesson(r.Context(), id, req.TimeSpentSeconds); err != nil {
		s.progressError(w, err)
		return
	}
	s.lessonResponse(w, http.StatusOK, id)
}

func (s *Server) handleReviewLesson(w http.ResponseWriter, r *http.Request) {
	s.handleReview(w, r, s.progress.ReviewLesson)
}

// Exercises

func (s *Server) exerciseResponse(w http.ResponseWriter, status int, id string) {
	resp := map[string]any{
		"exercise_id": id,
		"status":      s.progress.ExerciseStatus(id),
	}
	if e, ok := s.progress.Exercise(id); ok {
		resp["progress"] = e
	}
	s.jsonResponse(w, status, resp)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	s.exerciseResponse(w, http.StatusOK, r.PathValue("id"))
}

func (s *Server) handleStartExercise(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.progress.StartExercise(r.Context(), id); err != nil {
		s.progressError(w, err)
		return
	}
	s.exerciseResponse(w, http.StatusOK, id)
}

func (s *Server) handleCompleteExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExecutionTimeMs int64 `json:"execution_time_ms"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	id := r.PathValue("id")
	if err := s.progress.CompleteExercise(r.Context(), id, req.ExecutionTimeMs); err != nil {
		s.progressError(w, err)
		return
	}
	s.exerciseResponse(w, http.StatusOK, id)
}

func (s *Server) handlePartialExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Score           *int  `json:"score"`
		ExecutionTimeMs int64 `json:"execution_time_ms"`
		Attempts        int   `json:"attempts"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Score == nil {
		s.jsonError(w, http.StatusBadRequest, "score is required", nil)
		return
	}

	id := r.PathValue("id")
	if err := s.progress.UpdateExercisePartial(r.Context(), id, *req.Score, req.ExecutionTimeMs, req.Attempts); err != nil {
		s.progressError(w, err)
		return
	}
	s.exerciseResponse(w, http.StatusOK, id)
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.progress.UseHint(r.Context(), id); err != nil {
		s.progressError(w, err)
		return
	}
	s.exerciseResponse(w, http.StatusOK, id)
}

func (s *Server) handleAttempt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.progress.RecordExerciseAttempt(r.Context(), id); err != nil {
		s.progressError(w, err)
		return
	}
	s.exerciseResponse(w, http.StatusOK, id)
}

func (s *Server) handleReviewExercise(w http.ResponseWriter, r *http.Request) {
	s.handleReview(w, r, s.progress.ReviewExercise)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "code execution is not configured", nil)
		return
	}

	var req execution.Request
	if err := decodeBody(w, r, &req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Code == "" || req.FunctionName == "" {
		s.jsonError(w, http.StatusBadRequest, "code and functionName are required", nil)
		return
	}
	if req.TimeoutSeconds <= 0 {
		req.TimeoutSeconds = s.cfg.Execution.TimeoutSeconds
	}

	id := r.PathValue("id")
	result, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.jsonError(w, http.StatusBadGateway, "execution failed", err)
		return
	}

	outcome := progress.RunOutcome{Score: result.Score(), ExecutionTimeMs: result.ExecutionTimeMs}
	if err := s.progress.ApplyRun(r.Context(), id, outcome); err != nil {
		s.progressError(w, err)
		return
	}

	resp := map[string]any{
		"result": result,
		"score":  outcome.Score,
		"status": s.progress.ExerciseStatus(id),
	}
	if e, ok := s.progress.Exercise(id); ok {
		resp["progress"] = e
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// Reviews

type reviewFunc func(ctx context.Context, id string, q domain.Quality) (domain.ReviewRecord, error)

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request, review reviewFunc) {
	var req struct {
		Quality *int `json:"quality"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Quality == nil {
		s.jsonError(w, http.StatusBadRequest, "quality is required", nil)
		return
	}

	rec, err := review(r.Context(), r.PathValue("id"), domain.Quality(*req.Quality))
	if err != nil {
		s.progressError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleDueReviews(w http.ResponseWriter, r *http.Request) {
	due := s.progress.DueUnits(s.progress.Now())
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"count": len(due),
		"due":   due,
	})
}

func (s *Server) handleReviewHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := domain.UnitKind(q.Get("kind"))
	id := q.Get("id")
	if id == "" || (kind != domain.UnitLesson && kind != domain.UnitExercise) {
		s.jsonError(w, http.StatusBadRequest, "kind (lesson|exercise) and id are required", nil)
		return
	}

	limit := 20
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.jsonError(w, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = n
	}

	history, err := s.progress.ReviewHistory(r.Context(), kind, id, limit)
	if err != nil {
		s.progressError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"kind":    kind,
		"id":      id,
		"history": history,
	})
}

// Achievements

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	unlocked := s.progress.Achievements()
	byID := make(map[string]domain.Achievement, len(unlocked))
	for _, a := range unlocked {
		byID[a.ID] = a
	}

	all := make([]map[string]any, 0, len(s.rules))
	for _, rule := range s.rules {
		entry := map[string]any{
			"id":          rule.ID,
			"title":       rule.Title,
			"description": rule.Description,
			"icon":        rule.Icon,
			"unlocked":    false,
		}
		if a, ok := byID[rule.ID]; ok {
			entry["unlocked"] = true
			entry["unlocked_at"] = a.UnlockedAt
		}
		all = append(all, entry)
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"unlocked":     unlocked,
		"achievements": all,
	})
}
