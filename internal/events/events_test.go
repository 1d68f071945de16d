package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/spotfinder/backend/internal/models"
)

type mockWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func TestPublishLocationCreated(t *testing.T) {
	w := &mockWriter{}
	p := NewPublisherWithWriter(w, zerolog.Nop())

	err := p.PublishLocationCreated(context.Background(), LocationCreated{
		RegistrationID: "reg-1",
		Location:       models.Location{ID: 42, Name: "Roda da Sé"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "42" {
		t.Fatalf("expected key 42, got %q", msg.Key)
	}
	var ev LocationCreated
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Type != TypeLocationCreated || ev.Location.Name != "Roda da Sé" || ev.OccurredAt.IsZero() {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestPublishPropagatesWriterError(t *testing.T) {
	w := &mockWriter{err: errors.New("broker down")}
	p := NewPublisherWithWriter(w, zerolog.Nop())
	if err := p.PublishLocationCreated(context.Background(), LocationCreated{}); err == nil {
		t.Fatalf("expected error")
	}
	_ = p.Close()
	if !w.closed {
		t.Fatalf("expected writer closed")
	}
}
