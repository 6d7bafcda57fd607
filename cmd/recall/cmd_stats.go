package main

import (
	"fmt"
	"net/http"
	"sort"
	"time"
)

// cmdStats shows learning statistics
func cmdStats() error {
	var overview struct {
		Stats struct {
			TotalLessonsCompleted int            `json:"totalLessonsCompleted"`
			TotalExercisesSolved  int            `json:"totalExercisesSolved"`
			TotalTimeSpent        int64          `json:"totalTimeSpent"`
			TotalHintsUsed        int            `json:"totalHintsUsed"`
			LongestStreak         int            `json:"longestStreak"`
			ExercisesByDifficulty map[string]int `json:"exercisesByDifficulty"`
		} `json:"stats"`
		CurrentStreak int        `json:"current_streak"`
		TotalProgress float64    `json:"total_progress"`
		Achievements  int        `json:"achievements"`
		DueReviews    int        `json:"due_reviews"`
		LastActivity  *time.Time `json:"last_activity"`
	}
	if err := daemonRequest(http.MethodGet, "/v1/stats", nil, &overview); err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	s := overview.Stats
	fmt.Println("Learning Statistics")
	fmt.Println("==================")
	fmt.Printf("Overall:            %s %.0f%%\n", renderProgressBar(overview.TotalProgress/100, 20), overview.TotalProgress)
	fmt.Printf("Lessons Completed:  %d\n", s.TotalLessonsCompleted)
	fmt.Printf("Exercises Solved:   %d\n", s.TotalExercisesSolved)
	fmt.Printf("Time Spent:         %s\n", (time.Duration(s.TotalTimeSpent) * time.Second).String())
	fmt.Printf("Hints Used:         %d\n", s.TotalHintsUsed)
	fmt.Printf("Current Streak:     %d day(s)\n", overview.CurrentStreak)
	fmt.Printf("Longest Streak:     %d day(s)\n", s.LongestStreak)
	fmt.Printf("Achievements:       %d\n", overview.Achievements)
	fmt.Printf("Due Reviews:        %d\n", overview.DueReviews)
	if overview.LastActivity != nil {
		fmt.Printf("Last Activity:      %s\n", overview.LastActivity.Local().Format("2006-01-02 15:04"))
	}

	if len(s.ExercisesByDifficulty) > 0 {
		fmt.Println("\nExercises by Difficulty")
		fmt.Println("-----------------------")
		for _, d := range []string{"beginner", "intermediate", "advanced"} {
			fmt.Printf("  %-14s %d\n", d, s.ExercisesByDifficulty[d])
		}
	}

	return nil
}

// cmdModules shows completion per catalog module
func cmdModules() error {
	var result struct {
		Modules []struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Progress struct {
				TotalLessons     int     `json:"totalLessons"`
				LessonsCompleted int     `json:"lessonsCompleted"`
				PercentComplete  float64 `json:"percentComplete"`
			} `json:"progress"`
		} `json:"modules"`
	}
	if err := daemonRequest(http.MethodGet, "/v1/modules", nil, &result); err != nil {
		return fmt.Errorf("get modules: %w", err)
	}

	fmt.Println("Modules")
	fmt.Println("=======")
	if len(result.Modules) == 0 {
		fmt.Println("No modules in the catalog. Add module.yaml files under ~/.recall/catalog.")
		return nil
	}

	for _, m := range result.Modules {
		p := m.Progress
		fmt.Printf("%-24s %s %3.0f%% (%d/%d lessons)\n",
			m.Title, renderProgressBar(p.PercentComplete/100, 20), p.PercentComplete, p.LessonsCompleted, p.TotalLessons)
	}
	return nil
}

// cmdAchievements lists every achievement, unlocked ones first
func cmdAchievements() error {
	var result struct {
		Achievements []struct {
			ID          string     `json:"id"`
			Title       string     `json:"title"`
			Description string     `json:"description"`
			Icon        string     `json:"icon"`
			Unlocked    bool       `json:"unlocked"`
			UnlockedAt  *time.Time `json:"unlocked_at"`
		} `json:"achievements"`
	}
	if err := daemonRequest(http.MethodGet, "/v1/achievements", nil, &result); err != nil {
		return fmt.Errorf("get achievements: %w", err)
	}

	list := result.Achievements
	sort.SliceStable(list, func(i, j int) bool { return list[i].Unlocked && !list[j].Unlocked })

	unlocked := 0
	for _, a := range list {
		if a.Unlocked {
			unlocked++
		}
	}

	fmt.Printf("Achievements (%d/%d)\n", unlocked, len(list))
	fmt.Println("====================")
	for _, a := range list {
		if a.Unlocked && a.UnlockedAt != nil {
			fmt.Printf("  %s %-22s %s (%s)\n", a.Icon, a.Title, a.Description, a.UnlockedAt.Local().Format("2006-01-02"))
			continue
		}
		fmt.Printf("  🔒 %-22s %s\n", a.Title, a.Description)
	}
	return nil
}

// cmdReset erases all progress after explicit confirmation
func cmdReset(args []string) error {
	if len(args) == 0 || args[0] != "--yes" {
		return fmt.Errorf("this erases all progress; run 'recall reset --yes' to confirm")
	}
	if err := daemonRequest(http.MethodDelete, "/v1/progress", nil, nil); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	fmt.Println("✓ Progress reset")
	return nil
}
