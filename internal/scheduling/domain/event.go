package domain

import (
	"errors"
	"fmt"
	"time"

	sharedDomain "github.com/felixgeelhaar/kairos/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrInvalidDuration = errors.New("event duration must be positive")
	ErrEmptyTitle      = errors.New("event title must not be empty")
	ErrInvalidCategory = errors.New("unknown event category")
)

// EventCategory tags how an event is anchored in time. The scheduler only
// distinguishes fixed from non-fixed; "mandatory" is carried through for the
// service layer.
type EventCategory string

const (
	CategoryFlexible  EventCategory = "flexible"
	CategoryFixed     EventCategory = "fixed"
	CategoryMandatory EventCategory = "mandatory"
)

// EventParams holds the construction parameters for an Event.
type EventParams struct {
	Title    string
	Duration time.Duration
	Priority Priority
	Category EventCategory

	// FixedTime pins the event to an exact start instant. When set it
	// overrides EarliestStart/LatestStart and forces the fixed category.
	FixedTime *time.Time

	// EarliestStart and LatestStart bound the candidate start instants of a
	// flexible event (inclusive). Nil means unbounded on that side.
	EarliestStart *time.Time
	LatestStart   *time.Time

	// Opaque passthrough fields, not interpreted by the scheduler.
	Description string
	Location    string
}

// Event is a schedulable unit of work with timing constraints and a priority.
// Title, duration, priority and the start window are immutable after
// construction; scheduledTime is the only mutable field.
type Event struct {
	sharedDomain.BaseEntity
	title         string
	duration      time.Duration
	priority      Priority
	category      EventCategory
	fixedTime     *time.Time
	earliestStart *time.Time
	latestStart   *time.Time
	scheduledTime *time.Time
	description   string
	location      string
}

// NewEvent creates a new event from the given parameters.
func NewEvent(p EventParams) (*Event, error) {
	if p.Title == "" {
		return nil, ErrEmptyTitle
	}
	if p.Duration <= 0 {
		return nil, ErrInvalidDuration
	}

	priority := p.Priority
	if priority == 0 {
		priority = PriorityMedium
	}
	category := p.Category
	if category == "" {
		category = CategoryFlexible
	}

	e := &Event{
		BaseEntity:  sharedDomain.NewBaseEntity(),
		title:       p.Title,
		duration:    p.Duration,
		priority:    priority,
		category:    category,
		description: p.Description,
		location:    p.Location,
	}

	if p.FixedTime != nil {
		// A fixed instant collapses the start window to a point.
		fixed := *p.FixedTime
		e.fixedTime = &fixed
		e.earliestStart = &fixed
		e.latestStart = &fixed
		e.category = CategoryFixed
	} else {
		e.earliestStart = copyTime(p.EarliestStart)
		e.latestStart = copyTime(p.LatestStart)
	}

	return e, nil
}

// RehydrateEvent recreates an event from persisted state.
func RehydrateEvent(
	id uuid.UUID,
	p EventParams,
	scheduledTime *time.Time,
	createdAt, updatedAt time.Time,
) *Event {
	e := &Event{
		BaseEntity:    sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		title:         p.Title,
		duration:      p.Duration,
		priority:      p.Priority,
		category:      p.Category,
		fixedTime:     copyTime(p.FixedTime),
		earliestStart: copyTime(p.EarliestStart),
		latestStart:   copyTime(p.LatestStart),
		scheduledTime: copyTime(scheduledTime),
		description:   p.Description,
		location:      p.Location,
	}
	if e.fixedTime != nil {
		e.earliestStart = copyTime(e.fixedTime)
		e.latestStart = copyTime(e.fixedTime)
		e.category = CategoryFixed
	}
	return e
}

// Getters
func (e *Event) Title() string             { return e.title }
func (e *Event) Duration() time.Duration   { return e.duration }
func (e *Event) Priority() Priority        { return e.priority }
func (e *Event) Category() EventCategory   { return e.category }
func (e *Event) FixedTime() *time.Time     { return copyTime(e.fixedTime) }
func (e *Event) EarliestStart() *time.Time { return copyTime(e.earliestStart) }
func (e *Event) LatestStart() *time.Time   { return copyTime(e.latestStart) }
func (e *Event) ScheduledTime() *time.Time { return copyTime(e.scheduledTime) }
func (e *Event) Description() string       { return e.description }
func (e *Event) Location() string          { return e.location }

// IsScheduled reports whether the event has an assigned start instant.
func (e *Event) IsScheduled() bool {
	return e.scheduledTime != nil
}

// IsFixed reports whether the event is pinned to an exact start instant.
func (e *Event) IsFixed() bool {
	return e.fixedTime != nil
}

// EndTime returns the scheduled end instant. The second return value is false
// when the event is unscheduled.
func (e *Event) EndTime() (time.Time, bool) {
	if e.scheduledTime == nil {
		return time.Time{}, false
	}
	return e.scheduledTime.Add(e.duration), true
}

// CanBeScheduledAt reports whether the instant satisfies the event's own
// timing constraints. It does not consider other events; overlap checking is
// the calendar's responsibility.
func (e *Event) CanBeScheduledAt(start time.Time) bool {
	if e.fixedTime != nil {
		return start.Equal(*e.fixedTime)
	}
	if e.earliestStart != nil && start.Before(*e.earliestStart) {
		return false
	}
	if e.latestStart != nil && start.After(*e.latestStart) {
		return false
	}
	return true
}

// ScheduleAt assigns the start instant if it satisfies the event's
// constraints. Returns false and leaves the event untouched otherwise.
func (e *Event) ScheduleAt(start time.Time) bool {
	if !e.CanBeScheduledAt(start) {
		return false
	}
	t := start
	e.scheduledTime = &t
	e.Touch()
	return true
}

// Unschedule clears the assigned start instant. Idempotent.
func (e *Event) Unschedule() {
	if e.scheduledTime == nil {
		return
	}
	e.scheduledTime = nil
	e.Touch()
}

// ConflictsWith reports whether both events are scheduled and their half-open
// [start, end) intervals overlap. Touching intervals do not conflict.
func (e *Event) ConflictsWith(other *Event) bool {
	if other == nil || !e.IsScheduled() || !other.IsScheduled() {
		return false
	}
	eEnd, _ := e.EndTime()
	oEnd, _ := other.EndTime()
	return e.scheduledTime.Before(oEnd) && other.scheduledTime.Before(eEnd)
}

func (e *Event) String() string {
	status := "unscheduled"
	if e.scheduledTime != nil {
		status = "at " + e.scheduledTime.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%s (%dmin, %s) - %s", e.title, int(e.duration.Minutes()), e.priority, status)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
