package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/services"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func timePtr(t time.Time) *time.Time { return &t }

func mustEvent(t *testing.T, p domain.EventParams) *domain.Event {
	t.Helper()
	e, err := domain.NewEvent(p)
	require.NoError(t, err)
	return e
}

func TestOptimizer_OptimizeSchedule(t *testing.T) {
	t.Run("packs flexible events back to back from the window start", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(17, 0))
		first := mustEvent(t, domain.EventParams{Title: "Write report", Duration: time.Hour})
		second := mustEvent(t, domain.EventParams{Title: "Review PRs", Duration: time.Hour})
		cal.AddEvent(first)
		cal.AddEvent(second)

		opt := services.NewOptimizer(cal, nil)
		ok := opt.OptimizeSchedule()

		require.True(t, ok)
		starts := []time.Time{*first.ScheduledTime(), *second.ScheduledTime()}
		assert.ElementsMatch(t, []time.Time{at(9, 0), at(10, 0)}, starts)
		assert.False(t, cal.HasConflicts())
	})

	t.Run("higher priority claims the earlier slot", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(17, 0))
		low := mustEvent(t, domain.EventParams{Title: "Inbox", Duration: time.Hour, Priority: domain.PriorityLow})
		high := mustEvent(t, domain.EventParams{Title: "Design doc", Duration: time.Hour, Priority: domain.PriorityHigh})
		cal.AddEvent(low)
		cal.AddEvent(high)

		opt := services.NewOptimizer(cal, nil)
		require.True(t, opt.OptimizeSchedule())

		assert.Equal(t, at(9, 0), *high.ScheduledTime())
		assert.Equal(t, at(10, 0), *low.ScheduledTime())
	})

	t.Run("fixed event is placed at its pinned instant", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(17, 0))
		fixed := mustEvent(t, domain.EventParams{
			Title:     "Standup",
			Duration:  30 * time.Minute,
			FixedTime: timePtr(at(10, 0)),
		})
		flexible := mustEvent(t, domain.EventParams{Title: "Deep work", Duration: 2 * time.Hour})
		cal.AddEvent(fixed)
		cal.AddEvent(flexible)

		opt := services.NewOptimizer(cal, nil)
		require.True(t, opt.OptimizeSchedule())

		assert.Equal(t, at(10, 0), *fixed.ScheduledTime())
		// The two-hour block cannot start before the standup ends.
		assert.Equal(t, at(10, 30), *flexible.ScheduledTime())
		assert.False(t, cal.HasConflicts())
	})

	t.Run("fixed sorts before flexible at equal priority", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(17, 0))
		flexible := mustEvent(t, domain.EventParams{Title: "Flexible", Duration: time.Hour})
		fixed := mustEvent(t, domain.EventParams{
			Title:     "Fixed",
			Duration:  time.Hour,
			FixedTime: timePtr(at(9, 0)),
		})
		cal.AddEvent(flexible)
		cal.AddEvent(fixed)

		opt := services.NewOptimizer(cal, nil)
		require.True(t, opt.OptimizeSchedule())

		// If the flexible event were placed first it would occupy 09:00 and
		// the fixed event could never be scheduled.
		assert.Equal(t, at(9, 0), *fixed.ScheduledTime())
		assert.Equal(t, at(10, 0), *flexible.ScheduledTime())
	})

	t.Run("event longer than the window stays unscheduled", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(11, 0))
		long := mustEvent(t, domain.EventParams{Title: "Offsite", Duration: 3 * time.Hour})
		short := mustEvent(t, domain.EventParams{Title: "Call", Duration: 30 * time.Minute})
		cal.AddEvent(long)
		cal.AddEvent(short)

		opt := services.NewOptimizer(cal, nil)
		ok := opt.OptimizeSchedule()

		assert.False(t, ok)
		assert.False(t, long.IsScheduled())
		assert.True(t, short.IsScheduled())
	})

	t.Run("fixed event outside the window stays unscheduled", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(17, 0))
		outside := mustEvent(t, domain.EventParams{
			Title:     "Early gym",
			Duration:  time.Hour,
			FixedTime: timePtr(at(7, 0)),
		})
		cal.AddEvent(outside)

		opt := services.NewOptimizer(cal, nil)
		assert.False(t, opt.OptimizeSchedule())
		assert.False(t, outside.IsScheduled())
	})

	t.Run("two fixed events at the same instant leave one unscheduled", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(17, 0))
		first := mustEvent(t, domain.EventParams{
			Title: "Meeting A", Duration: time.Hour, FixedTime: timePtr(at(9, 0)),
		})
		second := mustEvent(t, domain.EventParams{
			Title: "Meeting B", Duration: time.Hour, FixedTime: timePtr(at(9, 0)),
		})
		cal.AddEvent(first)
		cal.AddEvent(second)

		opt := services.NewOptimizer(cal, nil)
		assert.False(t, opt.OptimizeSchedule())
		assert.Len(t, cal.ScheduledEvents(), 1)
		assert.Len(t, cal.UnscheduledEvents(), 1)
		assert.False(t, cal.HasConflicts())
	})

	t.Run("respects the earliest start grid anchor", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(17, 0))
		event := mustEvent(t, domain.EventParams{
			Title:         "Odd start",
			Duration:      time.Hour,
			EarliestStart: timePtr(at(9, 7)),
		})
		cal.AddEvent(event)

		opt := services.NewOptimizer(cal, nil)
		require.True(t, opt.OptimizeSchedule())

		// Candidate slots run 09:07, 09:22, ... from the queried earliest
		// start, not from clock-aligned quarter hours.
		assert.Equal(t, at(9, 7), *event.ScheduledTime())
	})

	t.Run("is idempotent across repeated passes", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(17, 0))
		events := []*domain.Event{
			mustEvent(t, domain.EventParams{Title: "A", Duration: time.Hour, Priority: domain.PriorityHigh}),
			mustEvent(t, domain.EventParams{Title: "B", Duration: 30 * time.Minute}),
			mustEvent(t, domain.EventParams{Title: "C", Duration: 45 * time.Minute, Priority: domain.PriorityLow}),
			mustEvent(t, domain.EventParams{Title: "D", Duration: time.Hour, FixedTime: timePtr(at(13, 0))}),
		}
		for _, e := range events {
			cal.AddEvent(e)
		}

		opt := services.NewOptimizer(cal, nil)
		require.True(t, opt.OptimizeSchedule())
		first := make([]time.Time, len(events))
		for i, e := range events {
			first[i] = *e.ScheduledTime()
		}

		require.True(t, opt.OptimizeSchedule())
		for i, e := range events {
			assert.True(t, first[i].Equal(*e.ScheduledTime()), "event %s drifted", e.Title())
		}
	})

	t.Run("succeeds trivially on an empty calendar", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(17, 0))
		opt := services.NewOptimizer(cal, nil)
		assert.True(t, opt.OptimizeSchedule())
	})
}

func TestOptimizer_ResolveConflicts(t *testing.T) {
	t.Run("moves the lower priority event away from a fixed winner", func(t *testing.T) {
		cal := domain.NewCalendar(at(8, 0), at(18, 0))
		high := mustEvent(t, domain.EventParams{
			Title:     "Client call",
			Duration:  time.Hour,
			Priority:  domain.PriorityHigh,
			FixedTime: timePtr(at(9, 0)),
		})
		low := mustEvent(t, domain.EventParams{
			Title:    "Email triage",
			Duration: time.Hour,
			Priority: domain.PriorityLow,
		})
		cal.AddEvent(high)
		cal.AddEvent(low)
		require.True(t, high.ScheduleAt(at(9, 0)))
		// Manual assignment bypasses availability, creating the overlap.
		require.True(t, low.ScheduleAt(at(9, 0)))
		require.True(t, cal.HasConflicts())

		opt := services.NewOptimizer(cal, nil)
		resolutions := opt.ResolveConflicts()

		require.Len(t, resolutions, 1)
		assert.Equal(t, low, resolutions[0].Moved)
		assert.Equal(t, high, resolutions[0].Kept)
		assert.Equal(t, at(8, 0), *low.ScheduledTime())
		assert.Equal(t, at(9, 0), *high.ScheduledTime())
		assert.False(t, cal.HasConflicts())
	})

	t.Run("at equal priority the later event moves", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(17, 0))
		earlier := mustEvent(t, domain.EventParams{Title: "Earlier", Duration: time.Hour})
		later := mustEvent(t, domain.EventParams{Title: "Later", Duration: time.Hour})
		cal.AddEvent(earlier)
		cal.AddEvent(later)
		require.True(t, earlier.ScheduleAt(at(9, 0)))
		require.True(t, later.ScheduleAt(at(9, 30)))

		opt := services.NewOptimizer(cal, nil)
		resolutions := opt.ResolveConflicts()

		require.Len(t, resolutions, 1)
		assert.Equal(t, later, resolutions[0].Moved)
		assert.Equal(t, at(9, 0), *earlier.ScheduledTime())
		assert.Equal(t, at(10, 0), *later.ScheduledTime())
	})

	t.Run("rolls back when the loser has nowhere to go", func(t *testing.T) {
		// Window fits exactly one hour, so the losing event cannot move.
		cal := domain.NewCalendar(at(9, 0), at(10, 0))
		high := mustEvent(t, domain.EventParams{
			Title: "Keynote", Duration: time.Hour, Priority: domain.PriorityHigh,
		})
		low := mustEvent(t, domain.EventParams{
			Title: "Notes", Duration: time.Hour, Priority: domain.PriorityLow,
		})
		cal.AddEvent(high)
		cal.AddEvent(low)
		require.True(t, high.ScheduleAt(at(9, 0)))
		require.True(t, low.ScheduleAt(at(9, 0)))

		opt := services.NewOptimizer(cal, nil)
		resolutions := opt.ResolveConflicts()

		assert.Empty(t, resolutions)
		assert.Equal(t, at(9, 0), *low.ScheduledTime())
		assert.True(t, cal.HasConflicts())
	})

	t.Run("a fixed loser cannot be rescheduled", func(t *testing.T) {
		cal := domain.NewCalendar(at(8, 0), at(18, 0))
		high := mustEvent(t, domain.EventParams{
			Title: "Review", Duration: time.Hour, Priority: domain.PriorityHigh,
		})
		lowFixed := mustEvent(t, domain.EventParams{
			Title:     "Dentist",
			Duration:  time.Hour,
			Priority:  domain.PriorityLow,
			FixedTime: timePtr(at(9, 0)),
		})
		cal.AddEvent(high)
		cal.AddEvent(lowFixed)
		require.True(t, high.ScheduleAt(at(9, 0)))
		require.True(t, lowFixed.ScheduleAt(at(9, 0)))

		opt := services.NewOptimizer(cal, nil)
		resolutions := opt.ResolveConflicts()

		// The only slot the fixed event accepts is still occupied, so the
		// conflict survives and the original time is restored.
		assert.Empty(t, resolutions)
		assert.Equal(t, at(9, 0), *lowFixed.ScheduledTime())
		assert.True(t, cal.HasConflicts())
	})

	t.Run("returns no resolutions for a clean schedule", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(17, 0))
		a := mustEvent(t, domain.EventParams{Title: "A", Duration: time.Hour})
		b := mustEvent(t, domain.EventParams{Title: "B", Duration: time.Hour})
		cal.AddEvent(a)
		cal.AddEvent(b)
		require.True(t, a.ScheduleAt(at(9, 0)))
		require.True(t, b.ScheduleAt(at(10, 0)))

		opt := services.NewOptimizer(cal, nil)
		assert.Empty(t, opt.ResolveConflicts())
	})
}

func TestOptimizer_SuggestImprovements(t *testing.T) {
	t.Run("flags gaps over an hour and unscheduled high priority work", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(17, 0))
		morning := mustEvent(t, domain.EventParams{Title: "Morning block", Duration: time.Hour})
		afternoon := mustEvent(t, domain.EventParams{Title: "Afternoon block", Duration: time.Hour})
		stranded := mustEvent(t, domain.EventParams{
			Title: "Urgent fix", Duration: time.Hour, Priority: domain.PriorityHigh,
		})
		cal.AddEvent(morning)
		cal.AddEvent(afternoon)
		cal.AddEvent(stranded)
		require.True(t, morning.ScheduleAt(at(9, 0)))
		require.True(t, afternoon.ScheduleAt(at(14, 0)))

		opt := services.NewOptimizer(cal, nil)
		suggestions := opt.SuggestImprovements()

		require.Len(t, suggestions, 2)
		assert.Contains(t, suggestions[0], "Large gap (240 min)")
		assert.Contains(t, suggestions[0], "Morning block")
		assert.Contains(t, suggestions[1], "1 high-priority events remain unscheduled")
	})

	t.Run("a gap of exactly one hour is not flagged", func(t *testing.T) {
		cal := domain.NewCalendar(at(9, 0), at(17, 0))
		a := mustEvent(t, domain.EventParams{Title: "A", Duration: time.Hour})
		b := mustEvent(t, domain.EventParams{Title: "B", Duration: time.Hour})
		cal.AddEvent(a)
		cal.AddEvent(b)
		require.True(t, a.ScheduleAt(at(9, 0)))
		require.True(t, b.ScheduleAt(at(11, 0)))

		opt := services.NewOptimizer(cal, nil)
		assert.Empty(t, opt.SuggestImprovements())
	})
}

func TestOptimizer_OptimizationReport(t *testing.T) {
	cal := domain.NewCalendar(at(9, 0), at(11, 0))
	done := mustEvent(t, domain.EventParams{Title: "Done", Duration: time.Hour})
	stuck := mustEvent(t, domain.EventParams{Title: "Stuck", Duration: 4 * time.Hour})
	cal.AddEvent(done)
	cal.AddEvent(stuck)

	opt := services.NewOptimizer(cal, nil)
	opt.OptimizeSchedule()

	report := opt.OptimizationReport()
	assert.Contains(t, report, "Scheduled: 1/2 events")
	assert.Contains(t, report, "Conflicts: 0")
	assert.Contains(t, report, "Success Rate: 50.0%")
}
