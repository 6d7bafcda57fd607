package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/felixgeelhaar/recall/internal/domain"
)

// recordingAcker records how a delivery was settled.
type recordingAcker struct {
	acked, nacked, rejected bool
}

func (a *recordingAcker) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *recordingAcker) Nack(uint64, bool, bool) error {
	a.nacked = true
	return nil
}

func (a *recordingAcker) Reject(uint64, bool) error {
	a.rejected = true
	return nil
}

func TestConsumer_Process(t *testing.T) {
	handlerErr := errors.New("handler failed")
	tests := []struct {
		name       string
		body       string
		handlerErr error
		want       string
	}{
		{"valid event", `{"id":"e1","type":"review.due","due_count":2}`, nil, "ack"},
		{"handler error", `{"id":"e1","type":"review.due"}`, handlerErr, "nack"},
		{"malformed body", `not json`, nil, "reject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []domain.Event
			c := NewConsumer(nil, func(_ context.Context, e domain.Event) error {
				got = append(got, e)
				return tt.handlerErr
			}, slog.New(slog.NewTextHandler(io.Discard, nil)))

			acker := &recordingAcker{}
			c.process(context.Background(), amqp.Delivery{Acknowledger: acker, Body: []byte(tt.body)})

			settled := map[string]bool{"ack": acker.acked, "nack": acker.nacked, "reject": acker.rejected}
			for kind, done := range settled {
				if done != (kind == tt.want) {
					t.Errorf("%s = %v, want only %s", kind, done, tt.want)
				}
			}
			if tt.want == "ack" && (len(got) != 1 || got[0].DueCount != 2) {
				t.Errorf("handler got %+v", got)
			}
		})
	}
}

func TestConsumer_StopBeforeStart(t *testing.T) {
	c := NewConsumer(nil, func(context.Context, domain.Event) error { return nil }, nil)
	c.Stop()
}
