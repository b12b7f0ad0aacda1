package eventbus_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scheduling "github.com/felixgeelhaar/kairos/internal/scheduling/domain"
	"github.com/felixgeelhaar/kairos/internal/shared/domain"
	"github.com/felixgeelhaar/kairos/internal/shared/infrastructure/eventbus"
)

func TestPublishDomainEvents_EnvelopeCarriesMetadata(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)

	var payload []byte
	bus.Subscribe("", func(_ context.Context, _ string, p []byte) { payload = p })

	event, err := scheduling.NewEvent(scheduling.EventParams{Title: "Standup", Duration: 30 * time.Minute})
	require.NoError(t, err)
	calendarID := uuid.New()
	added := scheduling.NewEventAdded(calendarID, event)

	eventbus.PublishDomainEvents(context.Background(), bus, []domain.DomainEvent{added}, nil)
	require.NotNil(t, payload)

	var envelope struct {
		EventID       uuid.UUID       `json:"event_id"`
		AggregateID   uuid.UUID       `json:"aggregate_id"`
		AggregateType string          `json:"aggregate_type"`
		RoutingKey    string          `json:"routing_key"`
		OccurredAt    time.Time       `json:"occurred_at"`
		Data          json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &envelope))

	assert.Equal(t, added.EventID(), envelope.EventID)
	assert.Equal(t, calendarID, envelope.AggregateID)
	assert.Equal(t, "Calendar", envelope.AggregateType)
	assert.Equal(t, "scheduling.event.added", envelope.RoutingKey)
	assert.False(t, envelope.OccurredAt.IsZero())

	var data map[string]any
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, "Standup", data["title"])
	assert.Equal(t, float64(30), data["duration_min"])
}

func TestPublishDomainEvents_NilPublisherIsNoop(t *testing.T) {
	event, err := scheduling.NewEvent(scheduling.EventParams{Title: "Standup", Duration: 30 * time.Minute})
	require.NoError(t, err)
	added := scheduling.NewEventAdded(uuid.New(), event)

	assert.NotPanics(t, func() {
		eventbus.PublishDomainEvents(context.Background(), nil, []domain.DomainEvent{added}, nil)
	})
}
