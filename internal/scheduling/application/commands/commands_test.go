package commands_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/kairos/internal/scheduling/application/services"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
	"github.com/felixgeelhaar/kairos/internal/session"
)

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type recordingCache struct {
	invalidated []string
}

func (c *recordingCache) Invalidate(_ context.Context, sessionID string) {
	c.invalidated = append(c.invalidated, sessionID)
}

func newRegistry() *session.Registry {
	return session.NewRegistry(nil, session.DefaultConfig(), nil)
}

func TestAddEventHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("adds an event and publishes the domain event", func(t *testing.T) {
		reg := newRegistry()
		pub := &recordingPublisher{}
		cache := &recordingCache{}
		handler := commands.NewAddEventHandler(reg, pub, cache, nil)

		result, err := handler.Handle(ctx, commands.AddEventCommand{
			SessionID:       "s1",
			Title:           "Write report",
			DurationMinutes: 60,
			Priority:        3,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, result.EventID)

		require.NoError(t, reg.View(ctx, "s1", func(cal *domain.Calendar, _ *services.Optimizer) error {
			event, ok := cal.FindEvent(result.EventID)
			require.True(t, ok)
			assert.Equal(t, domain.PriorityHigh, event.Priority())
			assert.Empty(t, cal.DomainEvents(), "raised events must be drained")
			return nil
		}))

		assert.Equal(t, []string{"scheduling.event.added"}, pub.keys)
		assert.Equal(t, []string{"s1"}, cache.invalidated)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		handler := commands.NewAddEventHandler(newRegistry(), nil, nil, nil)

		_, err := handler.Handle(ctx, commands.AddEventCommand{SessionID: "s1", DurationMinutes: 60})
		assert.ErrorIs(t, err, domain.ErrEmptyTitle)

		_, err = handler.Handle(ctx, commands.AddEventCommand{SessionID: "s1", Title: "X"})
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)

		_, err = handler.Handle(ctx, commands.AddEventCommand{
			SessionID: "s1", Title: "X", DurationMinutes: 60, Priority: 9,
		})
		assert.Error(t, err)

		_, err = handler.Handle(ctx, commands.AddEventCommand{
			SessionID: "s1", Title: "X", DurationMinutes: 60, Category: "weird",
		})
		assert.Error(t, err)
	})
}

func TestRemoveEventHandler(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry()
	add := commands.NewAddEventHandler(reg, nil, nil, nil)
	remove := commands.NewRemoveEventHandler(reg, nil, nil, nil)

	added, err := add.Handle(ctx, commands.AddEventCommand{
		SessionID: "s1", Title: "Task", DurationMinutes: 30,
	})
	require.NoError(t, err)

	require.NoError(t, remove.Handle(ctx, commands.RemoveEventCommand{
		SessionID: "s1", EventID: added.EventID,
	}))

	err = remove.Handle(ctx, commands.RemoveEventCommand{
		SessionID: "s1", EventID: added.EventID,
	})
	assert.ErrorIs(t, err, commands.ErrEventNotFound)
}

func TestOptimizeScheduleHandler(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry()
	add := commands.NewAddEventHandler(reg, nil, nil, nil)
	pub := &recordingPublisher{}
	optimize := commands.NewOptimizeScheduleHandler(reg, pub, nil, nil)

	for _, title := range []string{"A", "B", "C"} {
		_, err := add.Handle(ctx, commands.AddEventCommand{
			SessionID: "s1", Title: title, DurationMinutes: 60,
		})
		require.NoError(t, err)
	}

	result, err := optimize.Handle(ctx, commands.OptimizeScheduleCommand{SessionID: "s1"})
	require.NoError(t, err)

	assert.True(t, result.AllScheduled)
	assert.Equal(t, 3, result.ScheduledCount)
	assert.Equal(t, 3, result.TotalCount)
	assert.Empty(t, result.Resolutions)
	assert.Zero(t, result.ConflictsRemaining)
	assert.Contains(t, pub.keys, "scheduling.calendar.optimized")
}

func TestClearScheduleHandler(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry()
	add := commands.NewAddEventHandler(reg, nil, nil, nil)
	optimize := commands.NewOptimizeScheduleHandler(reg, nil, nil, nil)
	clear := commands.NewClearScheduleHandler(reg, nil, nil, nil)

	_, err := add.Handle(ctx, commands.AddEventCommand{
		SessionID: "s1", Title: "Task", DurationMinutes: 30,
	})
	require.NoError(t, err)
	_, err = optimize.Handle(ctx, commands.OptimizeScheduleCommand{SessionID: "s1"})
	require.NoError(t, err)

	require.NoError(t, clear.Handle(ctx, commands.ClearScheduleCommand{SessionID: "s1"}))

	require.NoError(t, reg.View(ctx, "s1", func(cal *domain.Calendar, _ *services.Optimizer) error {
		assert.Empty(t, cal.ScheduledEvents())
		assert.Len(t, cal.Events(), 1)
		return nil
	}))
}
