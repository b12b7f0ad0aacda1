package eventbus_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kairos/internal/shared/infrastructure/eventbus"
)

func TestInProcessBus_Publish(t *testing.T) {
	t.Run("delivers to matching prefixes", func(t *testing.T) {
		bus := eventbus.NewInProcessBus(nil)

		var gotKeys []string
		bus.Subscribe("scheduling.event.", func(_ context.Context, key string, _ []byte) {
			gotKeys = append(gotKeys, key)
		})

		var all int
		bus.Subscribe("", func(_ context.Context, _ string, _ []byte) { all++ })

		require.NoError(t, bus.Publish(context.Background(), "scheduling.event.added", []byte(`{}`)))
		require.NoError(t, bus.Publish(context.Background(), "scheduling.calendar.cleared", []byte(`{}`)))

		assert.Equal(t, []string{"scheduling.event.added"}, gotKeys)
		assert.Equal(t, 2, all)
	})

	t.Run("no subscribers is not an error", func(t *testing.T) {
		bus := eventbus.NewInProcessBus(nil)
		assert.NoError(t, bus.Publish(context.Background(), "anything", nil))
	})

	t.Run("payload is passed through", func(t *testing.T) {
		bus := eventbus.NewInProcessBus(nil)

		var got []byte
		bus.Subscribe("k", func(_ context.Context, _ string, payload []byte) { got = payload })

		require.NoError(t, bus.Publish(context.Background(), "k", []byte("payload")))
		assert.Equal(t, []byte("payload"), got)
	})
}
