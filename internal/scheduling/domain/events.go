package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/kairos/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Calendar"

	RoutingKeyEventAdded        = "scheduling.event.added"
	RoutingKeyEventRemoved      = "scheduling.event.removed"
	RoutingKeyScheduleCleared   = "scheduling.calendar.cleared"
	RoutingKeyScheduleOptimized = "scheduling.calendar.optimized"
)

// EventAdded is emitted when an event joins the calendar.
type EventAdded struct {
	sharedDomain.BaseEvent
	EventRef    uuid.UUID `json:"event_id"`
	Title       string    `json:"title"`
	DurationMin int       `json:"duration_min"`
	Priority    int       `json:"priority"`
	Category    string    `json:"category"`
}

// NewEventAdded creates an EventAdded event.
func NewEventAdded(calendarID uuid.UUID, event *Event) EventAdded {
	return EventAdded{
		BaseEvent:   sharedDomain.NewBaseEvent(calendarID, AggregateType, RoutingKeyEventAdded),
		EventRef:    event.ID(),
		Title:       event.Title(),
		DurationMin: int(event.Duration().Minutes()),
		Priority:    event.Priority().Rank(),
		Category:    string(event.Category()),
	}
}

// EventRemoved is emitted when an event leaves the calendar.
type EventRemoved struct {
	sharedDomain.BaseEvent
	EventRef uuid.UUID `json:"event_id"`
	Title    string    `json:"title"`
}

// NewEventRemoved creates an EventRemoved event.
func NewEventRemoved(calendarID uuid.UUID, event *Event) EventRemoved {
	return EventRemoved{
		BaseEvent: sharedDomain.NewBaseEvent(calendarID, AggregateType, RoutingKeyEventRemoved),
		EventRef:  event.ID(),
		Title:     event.Title(),
	}
}

// ScheduleCleared is emitted when all assignments are reset.
type ScheduleCleared struct {
	sharedDomain.BaseEvent
	EventCount int `json:"event_count"`
}

// NewScheduleCleared creates a ScheduleCleared event.
func NewScheduleCleared(calendarID uuid.UUID, eventCount int) ScheduleCleared {
	return ScheduleCleared{
		BaseEvent:  sharedDomain.NewBaseEvent(calendarID, AggregateType, RoutingKeyScheduleCleared),
		EventCount: eventCount,
	}
}

// ScheduleOptimized is emitted after an optimization pass.
type ScheduleOptimized struct {
	sharedDomain.BaseEvent
	ScheduledCount int       `json:"scheduled_count"`
	TotalCount     int       `json:"total_count"`
	ConflictCount  int       `json:"conflict_count"`
	ResolvedCount  int       `json:"resolved_count"`
	CompletedAt    time.Time `json:"completed_at"`
}

// NewScheduleOptimized creates a ScheduleOptimized event.
func NewScheduleOptimized(calendarID uuid.UUID, scheduled, total, conflicts, resolved int) ScheduleOptimized {
	return ScheduleOptimized{
		BaseEvent:      sharedDomain.NewBaseEvent(calendarID, AggregateType, RoutingKeyScheduleOptimized),
		ScheduledCount: scheduled,
		TotalCount:     total,
		ConflictCount:  conflicts,
		ResolvedCount:  resolved,
		CompletedAt:    time.Now().UTC(),
	}
}
