package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type reviewRecord struct {
	EasinessFactor  float64    `json:"easinessFactor"`
	RepetitionCount int        `json:"repetitionCount"`
	IntervalDays    int        `json:"intervalDays"`
	DueAt           time.Time  `json:"dueAt"`
	LastReviewedAt  *time.Time `json:"lastReviewedAt"`
}

// cmdDue lists units whose review is due
func cmdDue() error {
	var result struct {
		Count int `json:"count"`
		Due   []struct {
			Kind   string        `json:"kind"`
			UnitID string        `json:"unitId"`
			Record *reviewRecord `json:"record"`
		} `json:"due"`
	}
	if err := daemonRequest(http.MethodGet, "/v1/reviews/due", nil, &result); err != nil {
		return fmt.Errorf("get due reviews: %w", err)
	}

	if result.Count == 0 {
		fmt.Println("Nothing due. Come back later!")
		return nil
	}

	fmt.Printf("Due for Review (%d)\n", result.Count)
	fmt.Println("==================")
	for _, u := range result.Due {
		if u.Record == nil {
			fmt.Printf("  %-8s %-24s never reviewed\n", u.Kind, u.UnitID)
			continue
		}
		fmt.Printf("  %-8s %-24s due %s (interval %dd)\n",
			u.Kind, u.UnitID, u.Record.DueAt.Local().Format("2006-01-02"), u.Record.IntervalDays)
	}

	fmt.Println("\nUse 'recall review <lesson|exercise> <id> <0-5>' after reviewing")
	return nil
}

// cmdReview records a recall quality for a lesson or exercise
func cmdReview(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: recall review <lesson|exercise> <id> <quality 0-5>")
	}

	path, err := unitPath(args[0], args[1])
	if err != nil {
		return err
	}
	quality, err := strconv.Atoi(args[2])
	if err != nil || quality < 0 || quality > 5 {
		return fmt.Errorf("quality must be a number from 0 to 5, got %q", args[2])
	}

	var rec reviewRecord
	body := map[string]int{"quality": quality}
	if err := daemonRequest(http.MethodPost, path+"/review", body, &rec); err != nil {
		return fmt.Errorf("record review: %w", err)
	}

	if quality >= 3 {
		fmt.Printf("✓ Recalled %s %s\n", args[0], args[1])
	} else {
		fmt.Printf("✗ Not recalled: %s %s starts over\n", args[0], args[1])
	}
	fmt.Printf("Next review:  %s (in %d day(s))\n", rec.DueAt.Local().Format("2006-01-02"), rec.IntervalDays)
	fmt.Printf("Repetitions:  %d\n", rec.RepetitionCount)
	fmt.Printf("Easiness:     %.2f\n", rec.EasinessFactor)
	return nil
}

// cmdHistory shows recorded reviews of a unit
func cmdHistory(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: recall history <lesson|exercise> <id>")
	}
	if _, err := unitPath(args[0], args[1]); err != nil {
		return err
	}

	q := url.Values{}
	q.Set("kind", args[0])
	q.Set("id", args[1])

	var result struct {
		History []struct {
			Quality        int       `json:"quality"`
			EasinessFactor float64   `json:"easinessFactor"`
			IntervalDays   int       `json:"intervalDays"`
			ReviewedAt     time.Time `json:"reviewedAt"`
		} `json:"history"`
	}
	if err := daemonRequest(http.MethodGet, "/v1/reviews/history?"+q.Encode(), nil, &result); err != nil {
		return fmt.Errorf("get history: %w", err)
	}

	fmt.Printf("Review History: %s %s\n", args[0], args[1])
	fmt.Println("======================")
	if len(result.History) == 0 {
		fmt.Println("No reviews recorded (history needs the sqlite storage backend).")
		return nil
	}
	for _, h := range result.History {
		fmt.Printf("  %s  quality %d  EF %.2f  next in %dd\n",
			h.ReviewedAt.Local().Format("2006-01-02 15:04"), h.Quality, h.EasinessFactor, h.IntervalDays)
	}
	return nil
}

func unitPath(kind, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("unit id required")
	}
	switch kind {
	case "lesson":
		return "/v1/lessons/" + url.PathEscape(id), nil
	case "exercise":
		return "/v1/exercises/" + url.PathEscape(id), nil
	default:
		return "", fmt.Errorf("unknown unit kind %q (valid: lesson, exercise)", kind)
	}
}
