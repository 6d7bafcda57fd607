package progress

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/recall/internal/domain"
	"github.com/felixgeelhaar/recall/internal/scheduler"
)

func TestNewService_StartsEmpty(t *testing.T) {
	f := setupService(t)

	snap := f.svc.Snapshot()
	if len(snap.Lessons) != 0 || len(snap.Exercises) != 0 || len(snap.Achievements) != 0 {
		t.Errorf("snapshot = %+v, want empty", snap)
	}
	if snap.LastActivity != nil {
		t.Errorf("LastActivity = %v, want nil", snap.LastActivity)
	}
}

func TestNewService_NilPersister(t *testing.T) {
	svc := NewService(context.Background(), nil)
	if err := svc.StartLesson(context.Background(), "l1"); err != nil {
		t.Fatalf("StartLesson() error = %v", err)
	}
	if svc.LessonStatus("l1") != domain.StatusInProgress {
		t.Error("in-memory service did not record the lesson")
	}
}

func TestCompleteExercise_FreshProgress(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	if err := f.svc.CompleteExercise(ctx, "ex1", 1200); err != nil {
		t.Fatalf("CompleteExercise() error = %v", err)
	}

	if got := f.svc.ExerciseStatus("ex1"); got != domain.StatusCompleted {
		t.Errorf("ExerciseStatus() = %q, want completed", got)
	}
	snap := f.svc.Snapshot()
	if snap.Stats.TotalExercisesSolved != 1 {
		t.Errorf("TotalExercisesSolved = %d, want 1", snap.Stats.TotalExercisesSolved)
	}
	e := snap.Exercises["ex1"]
	if e.BestScore != 100 || e.Attempts != 1 || e.LastExecutionTimeMs != 1200 {
		t.Errorf("exercise = %+v", e)
	}
	if snap.Stats.ExercisesByDifficulty[domain.DifficultyBeginner] != 1 {
		t.Errorf("ExercisesByDifficulty = %v", snap.Stats.ExercisesByDifficulty)
	}
	if !snap.HasAchievement("exercises-1") {
		t.Error("exercises-1 not unlocked")
	}
}

func TestCompleteExercise_Idempotent(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.svc.CompleteExercise(ctx, "ex2", 10)
	f.svc.CompleteExercise(ctx, "ex2", 20)

	snap := f.svc.Snapshot()
	if snap.Stats.TotalExercisesSolved != 1 {
		t.Errorf("TotalExercisesSolved = %d, want 1", snap.Stats.TotalExercisesSolved)
	}
	if snap.Stats.ExercisesByDifficulty[domain.DifficultyAdvanced] != 1 {
		t.Errorf("advanced count = %d, want 1", snap.Stats.ExercisesByDifficulty[domain.DifficultyAdvanced])
	}
	if !snap.HasAchievement("hard-1") {
		t.Error("hard-1 not unlocked")
	}
}

func TestCompleteExercise_UnknownDifficultyCountsAsBeginner(t *testing.T) {
	f := setupService(t)

	f.svc.CompleteExercise(context.Background(), "not-in-catalog", 5)

	if n := f.svc.Snapshot().Stats.ExercisesByDifficulty[domain.DifficultyBeginner]; n != 1 {
		t.Errorf("beginner count = %d, want 1", n)
	}
}

func TestStartLesson_Twice(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	if err := f.svc.StartLesson(ctx, "l1"); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.StartLesson(ctx, "l1"); err != nil {
		t.Fatal(err)
	}

	if got := f.svc.LessonStatus("l1"); got != domain.StatusInProgress {
		t.Errorf("LessonStatus() = %q, want in-progress", got)
	}
	snap := f.svc.Snapshot()
	if len(snap.Lessons) != 1 || snap.Stats.TotalLessonsCompleted != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
	if len(f.publisher.events) != 0 {
		t.Errorf("events = %v, want none", f.publisher.types())
	}
}

func TestStartLesson_DoesNotRegress(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.svc.CompleteLesson(ctx, "l1", 60)
	f.svc.StartLesson(ctx, "l1")

	if got := f.svc.LessonStatus("l1"); got != domain.StatusCompleted {
		t.Errorf("LessonStatus() = %q, want completed", got)
	}
}

func TestCompleteLesson_Idempotent(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	if err := f.svc.CompleteLesson(ctx, "l1", 100); err != nil {
		t.Fatal(err)
	}
	first, _ := f.svc.Lesson("l1")

	f.clock.Advance(time.Hour)
	if err := f.svc.CompleteLesson(ctx, "l1", 50); err != nil {
		t.Fatal(err)
	}

	snap := f.svc.Snapshot()
	if snap.Stats.TotalLessonsCompleted != 1 {
		t.Errorf("TotalLessonsCompleted = %d, want 1", snap.Stats.TotalLessonsCompleted)
	}
	l := snap.Lessons["l1"]
	if l.TimeSpentSeconds != 150 {
		t.Errorf("TimeSpentSeconds = %d, want 150", l.TimeSpentSeconds)
	}
	if snap.Stats.TotalTimeSpent != 150 {
		t.Errorf("TotalTimeSpent = %d, want 150", snap.Stats.TotalTimeSpent)
	}
	if !l.CompletedAt.Equal(*first.CompletedAt) {
		t.Errorf("CompletedAt moved from %v to %v", first.CompletedAt, l.CompletedAt)
	}
	if got := f.publisher.types(); len(got) != 2 || got[0] != domain.EventLessonCompleted {
		t.Errorf("events = %v, want lesson.completed then achievement.unlocked", got)
	}
}

func TestCompleteLesson_InvalidInput(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
		secs int64
	}{
		{"empty id", "", 10},
		{"negative time", "l1", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.CompleteLesson(ctx, tt.id, tt.secs)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("CompleteLesson() error = %v, want ErrInvalidInput", err)
			}
		})
	}
	if snap := f.svc.Snapshot(); len(snap.Lessons) != 0 || snap.LastActivity != nil {
		t.Errorf("state changed after invalid input: %+v", snap)
	}
}

func TestUpdateExercisePartial_BestScoreNeverDecreases(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	if err := f.svc.UpdateExercisePartial(ctx, "ex1", 80, 30, 1); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.UpdateExercisePartial(ctx, "ex1", 40, 25, 2); err != nil {
		t.Fatal(err)
	}

	e, _ := f.svc.Exercise("ex1")
	if e.BestScore != 80 {
		t.Errorf("BestScore = %d, want 80", e.BestScore)
	}
	if e.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", e.Attempts)
	}
	if e.Status != domain.StatusInProgress {
		t.Errorf("Status = %q, want in-progress", e.Status)
	}
	if e.LastExecutionTimeMs != 25 {
		t.Errorf("LastExecutionTimeMs = %d, want 25", e.LastExecutionTimeMs)
	}
}

func TestUpdateExercisePartial_AttemptsNeverDecrease(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.svc.UpdateExercisePartial(ctx, "ex1", 10, 0, 5)
	f.svc.UpdateExercisePartial(ctx, "ex1", 20, 0, 3)

	if e, _ := f.svc.Exercise("ex1"); e.Attempts != 5 {
		t.Errorf("Attempts = %d, want 5", e.Attempts)
	}
}

func TestUpdateExercisePartial_FullScoreCompletes(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.svc.UpdateExercisePartial(ctx, "ex3", 50, 10, 1)
	f.svc.UpdateExercisePartial(ctx, "ex3", 100, 10, 2)
	f.svc.UpdateExercisePartial(ctx, "ex3", 100, 10, 3)

	snap := f.svc.Snapshot()
	if snap.Exercises["ex3"].Status != domain.StatusCompleted {
		t.Errorf("Status = %q, want completed", snap.Exercises["ex3"].Status)
	}
	if snap.Stats.TotalExercisesSolved != 1 {
		t.Errorf("TotalExercisesSolved = %d, want 1", snap.Stats.TotalExercisesSolved)
	}
	if snap.Stats.ExercisesByDifficulty[domain.DifficultyIntermediate] != 1 {
		t.Errorf("ExercisesByDifficulty = %v", snap.Stats.ExercisesByDifficulty)
	}
}

func TestUpdateExercisePartial_InvalidScore(t *testing.T) {
	f := setupService(t)

	for _, score := range []int{-1, 101} {
		err := f.svc.UpdateExercisePartial(context.Background(), "ex1", score, 0, 1)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("score %d: error = %v, want ErrInvalidInput", score, err)
		}
	}
	if _, ok := f.svc.Exercise("ex1"); ok {
		t.Error("exercise created by invalid update")
	}
}

func TestUseHint(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	err := f.svc.UseHint(ctx, "ex1")
	if !errors.Is(err, domain.ErrUnknownUnit) || !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("UseHint() on unstarted exercise error = %v, want ErrUnknownUnit", err)
	}

	f.svc.StartExercise(ctx, "ex1")
	f.svc.UseHint(ctx, "ex1")
	f.svc.UseHint(ctx, "ex1")

	e, _ := f.svc.Exercise("ex1")
	if e.HintsUsed != 2 {
		t.Errorf("HintsUsed = %d, want 2", e.HintsUsed)
	}
	if e.Status != domain.StatusInProgress {
		t.Errorf("Status = %q, want in-progress", e.Status)
	}
	if n := f.svc.Snapshot().Stats.TotalHintsUsed; n != 2 {
		t.Errorf("TotalHintsUsed = %d, want 2", n)
	}
}

func TestStartExercise_CountsFirstAttempt(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.svc.StartExercise(ctx, "ex1")
	f.svc.StartExercise(ctx, "ex1")

	e, _ := f.svc.Exercise("ex1")
	if e.Status != domain.StatusInProgress || e.Attempts != 1 {
		t.Errorf("exercise = %+v, want in-progress with 1 attempt", e)
	}
}

func TestRecordExerciseAttempt(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := f.svc.RecordExerciseAttempt(ctx, "ex1"); err != nil {
			t.Fatal(err)
		}
	}

	e, _ := f.svc.Exercise("ex1")
	if e.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", e.Attempts)
	}
	if e.Status != domain.StatusInProgress {
		t.Errorf("Status = %q, want in-progress", e.Status)
	}
}

func TestApplyRun(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.svc.StartExercise(ctx, "ex2")
	if err := f.svc.ApplyRun(ctx, "ex2", RunOutcome{Score: 67, ExecutionTimeMs: 40}); err != nil {
		t.Fatal(err)
	}
	e, _ := f.svc.Exercise("ex2")
	if e.Attempts != 2 || e.BestScore != 67 || e.Status != domain.StatusInProgress {
		t.Errorf("after partial run: %+v", e)
	}

	if err := f.svc.ApplyRun(ctx, "ex2", RunOutcome{Score: 100, ExecutionTimeMs: 35}); err != nil {
		t.Fatal(err)
	}
	e, _ = f.svc.Exercise("ex2")
	if e.Attempts != 3 || e.BestScore != 100 || e.Status != domain.StatusCompleted {
		t.Errorf("after passing run: %+v", e)
	}
}

func TestModuleProgress(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.svc.CompleteLesson(ctx, "l1", 0)
	f.svc.StartLesson(ctx, "l2")
	f.svc.CompleteExercise(ctx, "ex1", 0)
	f.svc.CompleteExercise(ctx, "ex3", 0)

	mp := f.svc.ModuleProgress("basics", []string{"l1", "l2"})
	if mp.TotalLessons != 2 || mp.LessonsCompleted != 1 || mp.PercentComplete != 50 {
		t.Errorf("ModuleProgress() = %+v", mp)
	}
	if mp.ExercisesCompleted != 2 {
		t.Errorf("ExercisesCompleted = %d, want 2", mp.ExercisesCompleted)
	}

	only := f.svc.ModuleProgress("partial", []string{"l2"})
	if only.ExercisesCompleted != 1 {
		t.Errorf("ExercisesCompleted for l2 = %d, want 1", only.ExercisesCompleted)
	}
}

func TestModuleProgress_NoLessons(t *testing.T) {
	f := setupService(t)

	mp := f.svc.ModuleProgress("empty", nil)
	if mp.PercentComplete != 0 || mp.TotalLessons != 0 {
		t.Errorf("ModuleProgress() = %+v, want zero", mp)
	}
}

func TestModuleProgressFor(t *testing.T) {
	f := setupService(t)
	f.svc.CompleteLesson(context.Background(), "l3", 0)

	mp, err := f.svc.ModuleProgressFor("advanced")
	if err != nil {
		t.Fatalf("ModuleProgressFor() error = %v", err)
	}
	if mp.PercentComplete != 100 {
		t.Errorf("PercentComplete = %v, want 100", mp.PercentComplete)
	}

	if _, err := f.svc.ModuleProgressFor("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ModuleProgressFor(missing) error = %v, want ErrNotFound", err)
	}
}

func TestTotalProgress(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	if got := f.svc.TotalProgress(); got != 0 {
		t.Errorf("TotalProgress() = %v, want 0", got)
	}

	// catalog: 3 lessons + 3 exercises; one extra exercise outside it
	f.svc.CompleteLesson(ctx, "l1", 0)
	f.svc.CompleteExercise(ctx, "ex1", 0)
	f.svc.CompleteExercise(ctx, "extra", 0)
	f.svc.StartLesson(ctx, "l2")

	want := 100 * 3.0 / 7.0
	if got := f.svc.TotalProgress(); got < want-1e-9 || got > want+1e-9 {
		t.Errorf("TotalProgress() = %v, want %v", got, want)
	}
}

func TestTotalProgress_NoCatalog(t *testing.T) {
	svc := NewService(context.Background(), nil)
	if got := svc.TotalProgress(); got != 0 {
		t.Errorf("TotalProgress() = %v, want 0", got)
	}
	svc.CompleteLesson(context.Background(), "a", 0)
	svc.StartLesson(context.Background(), "b")
	if got := svc.TotalProgress(); got != 50 {
		t.Errorf("TotalProgress() = %v, want 50", got)
	}
}

func TestQueries_UnknownIDs(t *testing.T) {
	f := setupService(t)

	if got := f.svc.LessonStatus("nope"); got != domain.StatusNotStarted {
		t.Errorf("LessonStatus() = %q", got)
	}
	if got := f.svc.ExerciseStatus("nope"); got != domain.StatusNotStarted {
		t.Errorf("ExerciseStatus() = %q", got)
	}
	if _, ok := f.svc.Lesson("nope"); ok {
		t.Error("Lesson() ok = true")
	}
}

func TestStreak_ConsecutiveDays(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.svc.StartLesson(ctx, "l1")
	f.clock.AddDays(1)
	f.svc.StartLesson(ctx, "l2")
	f.clock.AddDays(1)
	f.svc.StartLesson(ctx, "l3")
	f.clock.Advance(2 * time.Hour)
	f.svc.StartExercise(ctx, "ex1")

	snap := f.svc.Snapshot()
	if snap.Stats.CurrentStreak != 3 || snap.Stats.LongestStreak != 3 {
		t.Errorf("streak = %d/%d, want 3/3", snap.Stats.CurrentStreak, snap.Stats.LongestStreak)
	}
	if !snap.HasAchievement("streak-3") {
		t.Error("streak-3 not unlocked")
	}
	if !snap.LastActivity.Equal(f.clock.Now()) {
		t.Errorf("LastActivity = %v, want %v", snap.LastActivity, f.clock.Now())
	}

	f.clock.AddDays(5)
	f.svc.StartLesson(ctx, "l1")

	snap = f.svc.Snapshot()
	if snap.Stats.CurrentStreak != 1 || snap.Stats.LongestStreak != 3 {
		t.Errorf("streak after gap = %d/%d, want 1/3", snap.Stats.CurrentStreak, snap.Stats.LongestStreak)
	}
	if !snap.HasAchievement("streak-3") {
		t.Error("streak-3 revoked after the streak reset")
	}
}

func TestAchievements_UnlockOrderAndEvents(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.svc.CompleteLesson(ctx, "l1", 3600)

	got := f.svc.Achievements()
	if len(got) != 2 || got[0].ID != "lessons-1" || got[1].ID != "time-1h" {
		t.Fatalf("Achievements() = %+v", got)
	}
	if !got[0].UnlockedAt.Equal(t0) {
		t.Errorf("UnlockedAt = %v, want %v", got[0].UnlockedAt, t0)
	}

	types := f.publisher.types()
	want := []domain.EventType{domain.EventLessonCompleted, domain.EventAchievementUnlocked, domain.EventAchievementUnlocked}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, types[i], want[i])
		}
	}
	if a := f.publisher.events[1].Achievement; a == nil || a.ID != "lessons-1" {
		t.Errorf("achievement event payload = %+v", a)
	}
	if f.publisher.events[0].ID == "" || f.publisher.events[0].ID == f.publisher.events[1].ID {
		t.Error("events need unique ids")
	}
}

func TestPersistence_SurvivesRestart(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.svc.CompleteLesson(ctx, "l1", 90)
	f.svc.UpdateExercisePartial(ctx, "ex1", 70, 12, 2)
	if _, err := f.svc.ReviewLesson(ctx, "l1", domain.QualityPerfect); err != nil {
		t.Fatal(err)
	}

	restarted := f.open(t)
	snap := restarted.Snapshot()
	if snap.Lessons["l1"].Status != domain.StatusCompleted || snap.Lessons["l1"].Review == nil {
		t.Errorf("lesson after restart = %+v", snap.Lessons["l1"])
	}
	if snap.Exercises["ex1"].BestScore != 70 {
		t.Errorf("exercise after restart = %+v", snap.Exercises["ex1"])
	}
	if !snap.HasAchievement("lessons-1") {
		t.Error("achievement lost across restart")
	}
	if st := restarted.PersistStatus(); st.Failures != 0 {
		t.Errorf("PersistStatus() = %+v", st)
	}
}

func TestPersistence_NullUnitsInStoredDocument(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	doc := `{"version":2,"userProgress":{"lessons":{"l1":null},"exercises":{"ex1":null}}}`
	if err := f.slot.Write(ctx, []byte(doc)); err != nil {
		t.Fatal(err)
	}

	svc := f.open(t)
	if got := svc.LessonStatus("l1"); got != domain.StatusNotStarted {
		t.Errorf("LessonStatus(l1) = %q, want not-started", got)
	}
	if got := svc.ExerciseStatus("ex1"); got != domain.StatusNotStarted {
		t.Errorf("ExerciseStatus(ex1) = %q, want not-started", got)
	}
	if due := svc.DueUnits(t0); len(due) != 0 {
		t.Errorf("DueUnits() = %+v, want none", due)
	}
	if mp := svc.ModuleProgress("m", []string{"l1"}); mp.LessonsCompleted != 0 {
		t.Errorf("ModuleProgress() = %+v", mp)
	}
	if err := svc.CompleteLesson(ctx, "l1", 10); err != nil {
		t.Fatalf("CompleteLesson() error = %v", err)
	}
}

func TestPersistence_FailureDoesNotBlockMutation(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	f.slot.FailWrites(errors.New("quota exceeded"))

	if err := f.svc.CompleteLesson(ctx, "l1", 10); err != nil {
		t.Fatalf("CompleteLesson() error = %v, want nil despite storage failure", err)
	}
	if got := f.svc.LessonStatus("l1"); got != domain.StatusCompleted {
		t.Errorf("LessonStatus() = %q, want completed", got)
	}

	st := f.svc.PersistStatus()
	if st.Failures != 1 || st.LastError == "" {
		t.Errorf("PersistStatus() = %+v", st)
	}

	f.slot.FailWrites(nil)
	f.svc.StartLesson(ctx, "l2")
	if st := f.svc.PersistStatus(); st.LastError != "" || st.LastSavedAt.IsZero() {
		t.Errorf("PersistStatus() after recovery = %+v", st)
	}
}

func TestPersistStatus_JSONOmitsUnsetSaveTime(t *testing.T) {
	data, err := json.Marshal(PersistStatus{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "last_saved_at") {
		t.Errorf("zero status = %s, want no last_saved_at", data)
	}

	data, err = json.Marshal(PersistStatus{LastSavedAt: t0})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"last_saved_at":"2025-06-15T10:00:00Z"`) {
		t.Errorf("status = %s, want last_saved_at", data)
	}
}

func TestReset(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.svc.CompleteLesson(ctx, "l1", 10)
	f.svc.CompleteExercise(ctx, "ex1", 10)

	if err := f.svc.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	snap := f.svc.Snapshot()
	if len(snap.Lessons) != 0 || len(snap.Exercises) != 0 || len(snap.Achievements) != 0 {
		t.Errorf("snapshot after Reset() = %+v", snap)
	}
	if snap.Stats.TotalLessonsCompleted != 0 || snap.Stats.CurrentStreak != 0 {
		t.Errorf("stats after Reset() = %+v", snap.Stats)
	}
	if _, err := f.slot.Read(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("slot after Reset() error = %v, want ErrNotFound", err)
	}
	types := f.publisher.types()
	if types[len(types)-1] != domain.EventProgressReset {
		t.Errorf("last event = %s, want progress.reset", types[len(types)-1])
	}
}

func TestLoad_ReevaluatesAchievements(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	legacy := `{"version":1,"progress":{"lessons":{"l1":{"status":"completed","time_spent":10}},
		"exercises":{},"stats":{"total_lessons_completed":1}}}`
	if err := f.slot.Write(ctx, []byte(legacy)); err != nil {
		t.Fatal(err)
	}

	svc := f.open(t)
	if !svc.Snapshot().HasAchievement("lessons-1") {
		t.Error("lessons-1 not unlocked from migrated progress")
	}

	reloaded := f.adapter.Load(ctx)
	if reloaded == nil || !reloaded.HasAchievement("lessons-1") {
		t.Error("migrated progress not written back")
	}
}

func TestConcurrentMutations(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.svc.RecordExerciseAttempt(ctx, "ex1")
			f.svc.TotalProgress()
		}()
	}
	wg.Wait()

	if e, _ := f.svc.Exercise("ex1"); e.Attempts != 50 {
		t.Errorf("Attempts = %d, want 50", e.Attempts)
	}
}

func TestSnapshot_IsIsolated(t *testing.T) {
	f := setupService(t)
	f.svc.StartLesson(context.Background(), "l1")

	snap := f.svc.Snapshot()
	snap.Lessons["l1"].Status = domain.StatusCompleted

	if got := f.svc.LessonStatus("l1"); got != domain.StatusInProgress {
		t.Errorf("LessonStatus() = %q, snapshot mutation leaked", got)
	}
}

func TestWithScheduler(t *testing.T) {
	sch, err := scheduler.New(scheduler.Config{Ladder: []int{2}})
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(context.Background(), nil, WithScheduler(sch), WithClock(func() time.Time { return t0 }))
	svc.StartLesson(context.Background(), "l1")

	rec, err := svc.ReviewLesson(context.Background(), "l1", domain.QualityPerfect)
	if err != nil {
		t.Fatal(err)
	}
	if rec.IntervalDays != 2 {
		t.Errorf("IntervalDays = %d, want 2", rec.IntervalDays)
	}
}
