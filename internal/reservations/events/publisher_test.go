package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"campsite/pkg/kafka"
	"campsite/pkg/logger"
	"campsite/pkg/model"
)

type mockProducer struct {
	published  []kafka.Message
	publishErr error
	closed     bool
}

func (m *mockProducer) Publish(_ context.Context, msg kafka.Message) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, msg)
	return nil
}

func (m *mockProducer) Close() error {
	m.closed = true
	return nil
}

func testReservation() *model.Reservation {
	return &model.Reservation{
		TransactionID: "tx-42",
		Name:          "Grace Hopper",
		Email:         "grace@example.com",
		StartDate:     time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
	}
}

func newTestPublisher(producer *mockProducer) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		log:      logger.New(logger.Config{Output: io.Discard}),
	}
}

func TestReservationCreatedMessage(t *testing.T) {
	producer := &mockProducer{}
	publisher := newTestPublisher(producer)

	publisher.ReservationCreated(context.Background(), testReservation())

	if len(producer.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(producer.published))
	}

	msg := producer.published[0]
	if msg.Key != "tx-42" {
		t.Errorf("expected message key tx-42, got %q", msg.Key)
	}
	if got := msg.Headers[kafka.HeaderEventType]; got != EventReservationCreated {
		t.Errorf("expected event type %s, got %s", EventReservationCreated, got)
	}
	if got := msg.Headers[kafka.HeaderSource]; got != source {
		t.Errorf("expected source %s, got %s", source, got)
	}

	var event ReservationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		t.Fatalf("failed to decode event payload: %v", err)
	}
	if event.StartDate != "2026-10-10" || event.EndDate != "2026-10-12" {
		t.Errorf("expected wire-format dates, got %s / %s", event.StartDate, event.EndDate)
	}
	if event.PreviousTransactionID != "" {
		t.Errorf("expected no previous transaction id on created, got %q", event.PreviousTransactionID)
	}
}

func TestReservationModifiedCarriesPreviousID(t *testing.T) {
	producer := &mockProducer{}
	publisher := newTestPublisher(producer)

	publisher.ReservationModified(context.Background(), "tx-41", testReservation())

	if len(producer.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(producer.published))
	}

	var event ReservationEvent
	if err := json.Unmarshal(producer.published[0].Value, &event); err != nil {
		t.Fatalf("failed to decode event payload: %v", err)
	}
	if event.PreviousTransactionID != "tx-41" {
		t.Errorf("expected previous transaction id tx-41, got %q", event.PreviousTransactionID)
	}
}

func TestPublishFailureDoesNotPanic(t *testing.T) {
	producer := &mockProducer{publishErr: errors.New("broker unreachable")}
	publisher := newTestPublisher(producer)

	// Publishing is best effort; a broker failure only logs.
	publisher.ReservationCancelled(context.Background(), testReservation())

	if len(producer.published) != 0 {
		t.Errorf("expected no published messages, got %d", len(producer.published))
	}
}

func TestCloseReleasesProducer(t *testing.T) {
	producer := &mockProducer{}
	publisher := newTestPublisher(producer)

	if err := publisher.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !producer.closed {
		t.Error("expected Close to close the underlying producer")
	}
}

func TestNoopPublisherClose(t *testing.T) {
	publisher := NewNoopPublisher()

	if err := publisher.Close(); err != nil {
		t.Errorf("expected noop Close to succeed, got %v", err)
	}
}
