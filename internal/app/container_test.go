package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kairos/internal/app"
	"github.com/felixgeelhaar/kairos/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/kairos/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/kairos/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kairos/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/kairos/pkg/config"
)

func TestNewContainer_SQLiteDefaults(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		AppEnv:          "development",
		LogLevel:        "error",
		SQLitePath:      filepath.Join(t.TempDir(), "kairos.db"),
		MaxConns:        1,
		WindowStartHour: 8,
		WindowEndHour:   18,
		SessionIdleTTL:  time.Minute,
		SweepSchedule:   "@every 1m",
	}

	c, err := app.NewContainer(ctx, cfg)
	require.NoError(t, err)
	defer c.Close(context.Background())

	assert.Equal(t, database.DriverSQLite, c.DBDriver)
	assert.NotNil(t, c.SQLiteDB)
	assert.Nil(t, c.PostgresPool)
	// Without RabbitMQ the synchronous in-process bus is the publisher.
	assert.IsType(t, &eventbus.InProcessBus{}, c.EventPublisher)

	// The wired command path works end to end against sqlite.
	result, err := c.AddEvent.Handle(ctx, commands.AddEventCommand{
		SessionID:       "wiring",
		Title:           "Focus block",
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	events, err := c.ListEvents.Handle(ctx, queries.ListEventsQuery{SessionID: "wiring"})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
