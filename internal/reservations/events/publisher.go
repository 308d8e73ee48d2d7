// Package events publishes reservation lifecycle events. Publishing is best
// effort: a failed publish is logged and never fails the operation that
// triggered it.
package events

import (
	"context"

	"campsite/pkg/daterange"
	"campsite/pkg/kafka"
	"campsite/pkg/logger"
	"campsite/pkg/model"
)

const source = "reservations"

const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationModified  = "reservation.modified"
)

type Publisher interface {
	ReservationCreated(ctx context.Context, res *model.Reservation)
	ReservationCancelled(ctx context.Context, res *model.Reservation)
	ReservationModified(ctx context.Context, oldTransactionID string, res *model.Reservation)
	// Close flushes and releases the underlying transport. Events published
	// after Close are dropped.
	Close() error
}

// ReservationEvent is the payload shared by all lifecycle events.
// PreviousTransactionID is set only on reservation.modified.
type ReservationEvent struct {
	TransactionID         string `json:"transaction_id"`
	PreviousTransactionID string `json:"previous_transaction_id,omitempty"`
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	StartDate             string `json:"start_date"`
	EndDate               string `json:"end_date"`
}

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *KafkaPublisher) ReservationCreated(ctx context.Context, res *model.Reservation) {
	p.publish(ctx, EventReservationCreated, eventFromReservation(res, ""))
}

func (p *KafkaPublisher) ReservationCancelled(ctx context.Context, res *model.Reservation) {
	p.publish(ctx, EventReservationCancelled, eventFromReservation(res, ""))
}

func (p *KafkaPublisher) ReservationModified(ctx context.Context, oldTransactionID string, res *model.Reservation) {
	p.publish(ctx, EventReservationModified, eventFromReservation(res, oldTransactionID))
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType string, event ReservationEvent) {
	msg := kafka.NewMessage().
		WithKey(event.TransactionID).
		WithValue(event).
		WithEventType(eventType).
		WithSource(source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("failed to publish reservation event",
			"event_type", eventType,
			"transaction_id", event.TransactionID,
			"error", err)
	}
}

func eventFromReservation(res *model.Reservation, previousTransactionID string) ReservationEvent {
	return ReservationEvent{
		TransactionID:         res.TransactionID,
		PreviousTransactionID: previousTransactionID,
		Name:                  res.Name,
		Email:                 res.Email,
		StartDate:             daterange.FormatDay(res.StartDate),
		EndDate:               daterange.FormatDay(res.EndDate),
	}
}

// NoopPublisher is used when no events topic is configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (*NoopPublisher) ReservationCreated(context.Context, *model.Reservation) {}

func (*NoopPublisher) ReservationCancelled(context.Context, *model.Reservation) {}

func (*NoopPublisher) ReservationModified(context.Context, string, *model.Reservation) {}

func (*NoopPublisher) Close() error { return nil }
