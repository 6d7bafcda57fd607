package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/recall/internal/config"
	"github.com/felixgeelhaar/recall/internal/domain"
	"github.com/felixgeelhaar/recall/internal/events"
)

// cmdEvents tails progress events from the event queue until interrupted.
// Optional arguments restrict output to the named event types.
func cmdEvents(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Events.Enabled || cfg.Events.AMQPURL == "" {
		return fmt.Errorf("events are not enabled (set events.enabled and events.amqp_url, or RECALL_AMQP_URL)")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	conn, err := events.Dial(cfg.Events.AMQPURL, cfg.Events.Queue, logger)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := events.NewConsumer(conn, printEvents(os.Stdout, args), logger)
	if err := consumer.Start(ctx); err != nil {
		return err
	}
	defer consumer.Stop()

	fmt.Fprintf(os.Stderr, "Listening on %s (Ctrl+C to stop)\n", conn.Queue())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	return nil
}

// printEvents returns a handler writing one line per event whose type is in
// types, or every event when types is empty.
func printEvents(w io.Writer, types []string) events.Handler {
	wanted := make(map[domain.EventType]bool, len(types))
	for _, t := range types {
		wanted[domain.EventType(t)] = true
	}
	return func(_ context.Context, e domain.Event) error {
		if len(wanted) > 0 && !wanted[e.Type] {
			return nil
		}
		_, err := fmt.Fprintln(w, formatEvent(e))
		return err
	}
}

func formatEvent(e domain.Event) string {
	at := e.OccurredAt.Local().Format("2006-01-02 15:04:05")
	switch e.Type {
	case domain.EventReviewDue:
		return fmt.Sprintf("%s  %-20s %d unit(s) due for review", at, e.Type, e.DueCount)
	case domain.EventAchievementUnlocked:
		if e.Achievement != nil {
			return fmt.Sprintf("%s  %-20s %s %s", at, e.Type, e.Achievement.Icon, e.Achievement.Title)
		}
	case domain.EventLessonCompleted, domain.EventExerciseCompleted:
		return fmt.Sprintf("%s  %-20s %s", at, e.Type, e.UnitID)
	}
	return fmt.Sprintf("%s  %s", at, e.Type)
}
