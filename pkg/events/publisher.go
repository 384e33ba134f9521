// Package events decouples domain services from the Kafka wiring. Services
// publish through the Publisher interface; delivery is best effort and must
// never fail a request.
package events

import (
	"context"

	"medbook/pkg/kafka"
	"medbook/pkg/logger"
)

const (
	AppointmentBooked        = "appointment.booked"
	AppointmentStatusChanged = "appointment.status_changed"
	AppointmentCancelled     = "appointment.cancelled"
	PrescriptionIssued       = "prescription.issued"
)

type Publisher interface {
	// Publish emits an event keyed by the record id. Failures are logged by
	// the implementation, not returned.
	Publish(ctx context.Context, eventType, key string, payload any)
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, source string, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) {
	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(p.source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish event",
			"event_type", eventType,
			"key", key,
			"error", err,
		)
		return
	}

	p.log.Debug("Event published",
		"event_type", eventType,
		"key", key,
		"event_id", msg.GetEventID(),
	)
}

type nopPublisher struct{}

// NewNopPublisher is used when Kafka is disabled and in tests.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, string, any) {}
