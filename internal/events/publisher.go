package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/recall/internal/domain"
)

// Publisher publishes progress events to RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher creates a publisher on an open connection.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, logger: logger}
}

// Publish sends one event to the event queue.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	if err := p.conn.PublishJSON(ctx, event); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.logger.Debug("published event",
		"event_id", event.ID,
		"type", event.Type,
		"unit_id", event.UnitID,
	)
	return nil
}

// LogPublisher writes events to a structured logger. It is used when no
// broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the event at info level.
func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) error {
	attrs := []any{"event_id", event.ID, "type", event.Type}
	if event.UnitID != "" {
		attrs = append(attrs, "unit_id", event.UnitID)
	}
	if event.Achievement != nil {
		attrs = append(attrs, "achievement", event.Achievement.ID)
	}
	if event.DueCount > 0 {
		attrs = append(attrs, "due_count", event.DueCount)
	}
	p.logger.InfoContext(ctx, "progress event", attrs...)
	return nil
}

// PublisherFunc adapts a function to the publisher interface.
type PublisherFunc func(ctx context.Context, event domain.Event) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, event domain.Event) error {
	return f(ctx, event)
}

// Sink is anything that accepts progress events.
type Sink interface {
	Publish(ctx context.Context, event domain.Event) error
}

var (
	_ Sink = (*Publisher)(nil)
	_ Sink = (*LogPublisher)(nil)
	_ Sink = PublisherFunc(nil)
	_ Sink = Fanout(nil)
)

// Fanout delivers each event to every sink. All sinks are tried and their
// errors are joined.
type Fanout []Sink

// Publish sends the event to each publisher in order.
func (f Fanout) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
