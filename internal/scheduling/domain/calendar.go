package domain

import (
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/kairos/internal/shared/domain"
	"github.com/google/uuid"
)

// SlotInterval is the granularity of the candidate start-time grid. The grid
// is anchored at the queried earliest start, not normalized to clock
// boundaries.
const SlotInterval = 15 * time.Minute

// Calendar is an insertion-ordered collection of events bounded by a working
// window. It owns event membership; event scheduled times are mutated by the
// optimizer while borrowed from the calendar.
//
// A calendar is not safe for concurrent use. Callers must serialize access,
// for example through a per-session lock.
type Calendar struct {
	sharedDomain.BaseAggregateRoot
	windowStart time.Time
	windowEnd   time.Time
	events      []*Event
}

// NewCalendar creates a calendar for the given working window.
func NewCalendar(windowStart, windowEnd time.Time) *Calendar {
	return &Calendar{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		windowStart:       windowStart,
		windowEnd:         windowEnd,
		events:            make([]*Event, 0),
	}
}

// RehydrateCalendar recreates a calendar from persisted state.
func RehydrateCalendar(id uuid.UUID, windowStart, windowEnd time.Time, events []*Event, createdAt, updatedAt time.Time) *Calendar {
	return &Calendar{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		),
		windowStart: windowStart,
		windowEnd:   windowEnd,
		events:      events,
	}
}

// Getters
func (c *Calendar) WindowStart() time.Time { return c.windowStart }
func (c *Calendar) WindowEnd() time.Time   { return c.windowEnd }

// Events returns the events in insertion order.
func (c *Calendar) Events() []*Event { return c.events }

// FindEvent returns the event with the given ID, if present.
func (c *Calendar) FindEvent(id uuid.UUID) (*Event, bool) {
	for _, e := range c.events {
		if e.ID() == id {
			return e, true
		}
	}
	return nil, false
}

// AddEvent appends the event unless the same event (by identity, not value)
// is already present. Two events with identical fields but distinct IDs are
// both admitted.
func (c *Calendar) AddEvent(event *Event) bool {
	if event == nil {
		return false
	}
	if _, ok := c.FindEvent(event.ID()); ok {
		return false
	}
	c.events = append(c.events, event)
	c.Touch()
	c.AddDomainEvent(NewEventAdded(c.ID(), event))
	return true
}

// RemoveEvent unschedules and removes the event. Returns false if the event
// is not a member.
func (c *Calendar) RemoveEvent(event *Event) bool {
	if event == nil {
		return false
	}
	for i, e := range c.events {
		if e.ID() == event.ID() {
			e.Unschedule()
			c.events = append(c.events[:i], c.events[i+1:]...)
			c.Touch()
			c.AddDomainEvent(NewEventRemoved(c.ID(), e))
			return true
		}
	}
	return false
}

// ScheduledEvents returns the currently scheduled events in insertion order.
func (c *Calendar) ScheduledEvents() []*Event {
	scheduled := make([]*Event, 0, len(c.events))
	for _, e := range c.events {
		if e.IsScheduled() {
			scheduled = append(scheduled, e)
		}
	}
	return scheduled
}

// UnscheduledEvents returns the currently unscheduled events in insertion order.
func (c *Calendar) UnscheduledEvents() []*Event {
	unscheduled := make([]*Event, 0, len(c.events))
	for _, e := range c.events {
		if !e.IsScheduled() {
			unscheduled = append(unscheduled, e)
		}
	}
	return unscheduled
}

// IsTimeAvailable reports whether [start, start+duration) lies inside the
// working window and does not overlap any scheduled event other than exclude.
func (c *Calendar) IsTimeAvailable(start time.Time, duration time.Duration, exclude *Event) bool {
	end := start.Add(duration)
	if start.Before(c.windowStart) || end.After(c.windowEnd) {
		return false
	}
	for _, e := range c.events {
		if !e.IsScheduled() {
			continue
		}
		if exclude != nil && e.ID() == exclude.ID() {
			continue
		}
		eEnd, _ := e.EndTime()
		if start.Before(eEnd) && e.scheduledTime.Before(end) {
			return false
		}
	}
	return true
}

// AvailableSlots returns a restartable sequence of candidate start instants
// for the given duration on the slot grid anchored at earliestStart.
// earliestStart defaults to the window start and latestStart (inclusive) to
// windowEnd - duration. The sequence is empty when earliestStart is after
// latestStart.
func (c *Calendar) AvailableSlots(duration time.Duration, earliestStart, latestStart *time.Time) iter.Seq[time.Time] {
	start := c.windowStart
	if earliestStart != nil {
		start = *earliestStart
	}
	last := c.windowEnd.Add(-duration)
	if latestStart != nil {
		last = *latestStart
	}
	return func(yield func(time.Time) bool) {
		for t := start; !t.After(last); t = t.Add(SlotInterval) {
			if !c.IsTimeAvailable(t, duration, nil) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// FindAvailableSlots materializes AvailableSlots into a slice.
func (c *Calendar) FindAvailableSlots(duration time.Duration, earliestStart, latestStart *time.Time) []time.Time {
	slots := make([]time.Time, 0)
	for t := range c.AvailableSlots(duration, earliestStart, latestStart) {
		slots = append(slots, t)
	}
	return slots
}

// Conflicts returns all distinct pairs of scheduled events whose intervals
// overlap, in insertion-order pair enumeration.
func (c *Calendar) Conflicts() []ConflictPair {
	conflicts := make([]ConflictPair, 0)
	scheduled := c.ScheduledEvents()
	for i, first := range scheduled {
		for _, second := range scheduled[i+1:] {
			if first.ConflictsWith(second) {
				conflicts = append(conflicts, ConflictPair{First: first, Second: second})
			}
		}
	}
	return conflicts
}

// HasConflicts reports whether any pair of scheduled events overlaps.
func (c *Calendar) HasConflicts() bool {
	scheduled := c.ScheduledEvents()
	for i, first := range scheduled {
		for _, second := range scheduled[i+1:] {
			if first.ConflictsWith(second) {
				return true
			}
		}
	}
	return false
}

// ClearSchedule unschedules every event, preserving membership and order.
func (c *Calendar) ClearSchedule() {
	for _, e := range c.events {
		e.Unschedule()
	}
	c.Touch()
	c.AddDomainEvent(NewScheduleCleared(c.ID(), len(c.events)))
}

// Summary renders a human-readable view of the schedule.
func (c *Calendar) Summary() string {
	scheduled := c.ScheduledEvents()
	sort.SliceStable(scheduled, func(i, j int) bool {
		return scheduled[i].scheduledTime.Before(*scheduled[j].scheduledTime)
	})
	unscheduled := c.UnscheduledEvents()

	var b strings.Builder
	fmt.Fprintf(&b, "Calendar Schedule (%s to %s):\n\n",
		c.windowStart.Format("2006-01-02"), c.windowEnd.Format("2006-01-02"))

	if len(scheduled) > 0 {
		b.WriteString("Scheduled Events:\n")
		for _, e := range scheduled {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	if len(unscheduled) > 0 {
		fmt.Fprintf(&b, "\nUnscheduled Events (%d):\n", len(unscheduled))
		for _, e := range unscheduled {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	if conflicts := c.Conflicts(); len(conflicts) > 0 {
		fmt.Fprintf(&b, "\nConflicts (%d):\n", len(conflicts))
		for _, pair := range conflicts {
			fmt.Fprintf(&b, "  %s conflicts with %s\n", pair.First.Title(), pair.Second.Title())
		}
	}
	return b.String()
}
