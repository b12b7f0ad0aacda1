package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
)

func newDayCalendar() *domain.Calendar {
	return domain.NewCalendar(at(9, 0), at(17, 0))
}

func TestCalendar_Membership(t *testing.T) {
	t.Run("add and find by id", func(t *testing.T) {
		cal := newDayCalendar()
		e := mustEvent(t, domain.EventParams{Title: "Standup", Duration: 30 * time.Minute})

		assert.True(t, cal.AddEvent(e))
		found, ok := cal.FindEvent(e.ID())
		require.True(t, ok)
		assert.Same(t, e, found)
	})

	t.Run("duplicate identity is rejected, equal values are not", func(t *testing.T) {
		cal := newDayCalendar()
		e := mustEvent(t, domain.EventParams{Title: "Standup", Duration: 30 * time.Minute})
		twin := mustEvent(t, domain.EventParams{Title: "Standup", Duration: 30 * time.Minute})

		assert.True(t, cal.AddEvent(e))
		assert.False(t, cal.AddEvent(e))
		assert.True(t, cal.AddEvent(twin))
		assert.Len(t, cal.Events(), 2)
	})

	t.Run("remove unschedules the event", func(t *testing.T) {
		cal := newDayCalendar()
		e := mustEvent(t, domain.EventParams{Title: "Standup", Duration: 30 * time.Minute})
		cal.AddEvent(e)
		require.True(t, e.ScheduleAt(at(9, 0)))

		assert.True(t, cal.RemoveEvent(e))
		assert.False(t, e.IsScheduled())
		assert.Empty(t, cal.Events())

		assert.False(t, cal.RemoveEvent(e))
	})

	t.Run("membership changes raise domain events", func(t *testing.T) {
		cal := newDayCalendar()
		e := mustEvent(t, domain.EventParams{Title: "Standup", Duration: 30 * time.Minute})
		cal.AddEvent(e)
		cal.RemoveEvent(e)

		events := cal.DomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, "scheduling.event.added", events[0].RoutingKey())
		assert.Equal(t, "scheduling.event.removed", events[1].RoutingKey())
	})
}

func TestCalendar_IsTimeAvailable(t *testing.T) {
	cal := newDayCalendar()
	busy := mustEvent(t, domain.EventParams{Title: "Busy", Duration: time.Hour})
	cal.AddEvent(busy)
	require.True(t, busy.ScheduleAt(at(10, 0)))

	tests := []struct {
		name     string
		start    time.Time
		duration time.Duration
		exclude  *domain.Event
		want     bool
	}{
		{"free morning slot", at(9, 0), time.Hour, nil, true},
		{"overlaps the busy hour", at(10, 30), time.Hour, nil, false},
		{"touching before is free", at(9, 0), time.Hour, nil, true},
		{"touching after is free", at(11, 0), time.Hour, nil, true},
		{"starts before the window", at(8, 30), time.Hour, nil, false},
		{"ends past the window", at(16, 30), time.Hour, nil, false},
		{"ends exactly at the window edge", at(16, 0), time.Hour, nil, true},
		{"excluded event does not block itself", at(10, 0), time.Hour, busy, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.IsTimeAvailable(tt.start, tt.duration, tt.exclude))
		})
	}
}

func TestCalendar_FindAvailableSlots(t *testing.T) {
	t.Run("defaults span the whole window on the grid", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(10, 0))
		slots := cal.FindAvailableSlots(30*time.Minute, nil, nil)

		assert.Equal(t, []time.Time{at(9, 0), at(9, 15), at(9, 30)}, slots)
	})

	t.Run("grid anchors at the queried earliest start", func(t *testing.T) {
		cal := newDayCalendar()
		slots := cal.FindAvailableSlots(time.Hour, timePtr(at(9, 7)), timePtr(at(9, 40)))

		assert.Equal(t, []time.Time{at(9, 7), at(9, 22), at(9, 37)}, slots)
	})

	t.Run("latest start is inclusive", func(t *testing.T) {
		cal := newDayCalendar()
		slots := cal.FindAvailableSlots(time.Hour, timePtr(at(15, 0)), timePtr(at(15, 30)))

		assert.Equal(t, []time.Time{at(15, 0), at(15, 15), at(15, 30)}, slots)
	})

	t.Run("occupied slots are skipped", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(11, 0))
		busy := mustEvent(t, domain.EventParams{Title: "Busy", Duration: time.Hour})
		cal.AddEvent(busy)
		require.True(t, busy.ScheduleAt(at(9, 0)))

		slots := cal.FindAvailableSlots(time.Hour, nil, nil)
		assert.Equal(t, []time.Time{at(10, 0)}, slots)
	})

	t.Run("inverted bounds yield no slots", func(t *testing.T) {
		cal := newDayCalendar()
		slots := cal.FindAvailableSlots(time.Hour, timePtr(at(14, 0)), timePtr(at(12, 0)))
		assert.Empty(t, slots)
	})

	t.Run("sequence restarts cleanly", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(10, 0))
		seq := cal.AvailableSlots(30*time.Minute, nil, nil)

		for first := range seq {
			assert.Equal(t, at(9, 0), first)
			break
		}
		for first := range seq {
			assert.Equal(t, at(9, 0), first)
			break
		}
	})
}

func TestCalendar_Conflicts(t *testing.T) {
	cal := newDayCalendar()
	a := mustEvent(t, domain.EventParams{Title: "A", Duration: time.Hour})
	b := mustEvent(t, domain.EventParams{Title: "B", Duration: time.Hour})
	c := mustEvent(t, domain.EventParams{Title: "C", Duration: time.Hour})
	for _, e := range []*domain.Event{a, b, c} {
		cal.AddEvent(e)
	}
	require.True(t, a.ScheduleAt(at(9, 0)))
	require.True(t, b.ScheduleAt(at(9, 30)))
	require.True(t, c.ScheduleAt(at(10, 0)))

	conflicts := cal.Conflicts()
	require.Len(t, conflicts, 2)
	assert.Equal(t, a, conflicts[0].First)
	assert.Equal(t, b, conflicts[0].Second)
	assert.Equal(t, b, conflicts[1].First)
	assert.Equal(t, c, conflicts[1].Second)
	assert.True(t, cal.HasConflicts())
}

func TestCalendar_ClearSchedule(t *testing.T) {
	cal := newDayCalendar()
	a := mustEvent(t, domain.EventParams{Title: "A", Duration: time.Hour})
	b := mustEvent(t, domain.EventParams{Title: "B", Duration: time.Hour})
	cal.AddEvent(a)
	cal.AddEvent(b)
	require.True(t, a.ScheduleAt(at(9, 0)))

	cal.ClearSchedule()

	assert.Empty(t, cal.ScheduledEvents())
	assert.Len(t, cal.Events(), 2)
}

func TestCalendar_Summary(t *testing.T) {
	cal := newDayCalendar()
	scheduled := mustEvent(t, domain.EventParams{Title: "Scheduled", Duration: time.Hour})
	idle := mustEvent(t, domain.EventParams{Title: "Idle", Duration: time.Hour})
	cal.AddEvent(scheduled)
	cal.AddEvent(idle)
	require.True(t, scheduled.ScheduleAt(at(9, 0)))

	summary := cal.Summary()
	assert.Contains(t, summary, "Scheduled Events:")
	assert.Contains(t, summary, "Scheduled (60min, medium) - at 2026-03-02 09:00")
	assert.Contains(t, summary, "Unscheduled Events (1):")
	assert.Contains(t, summary, "Idle (60min, medium) - unscheduled")
}
