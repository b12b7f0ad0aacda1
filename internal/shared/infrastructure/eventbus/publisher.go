// Package eventbus publishes domain events to a message broker or, in local
// mode, to in-process subscribers.
package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/kairos/internal/shared/domain"
)

// Publisher defines the interface for publishing events to a message broker.
type Publisher interface {
	// Publish sends a message with the given routing key.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// eventEnvelope is the wire format for a published domain event. Event
// structs keep their metadata behind getters, so the envelope carries it
// explicitly alongside the event's own fields.
type eventEnvelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Data          json.RawMessage `json:"data"`
}

// PublishDomainEvents wraps each event in an envelope and publishes it.
// Publish failures are logged and skipped; event delivery is best effort and
// never fails the command that raised the events.
func PublishDomainEvents(ctx context.Context, pub Publisher, events []domain.DomainEvent, logger *slog.Logger) {
	if pub == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	for _, event := range events {
		payload, err := marshalEnvelope(event)
		if err != nil {
			logger.Error("failed to marshal domain event",
				"routing_key", event.RoutingKey(),
				"error", err,
			)
			continue
		}
		if err := pub.Publish(ctx, event.RoutingKey(), payload); err != nil {
			logger.Error("failed to publish domain event",
				"routing_key", event.RoutingKey(),
				"event_id", event.EventID(),
				"error", err,
			)
		}
	}
}

func marshalEnvelope(event domain.DomainEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventEnvelope{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		Data:          data,
	})
}
