package persistence

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
)

// MemoryCalendarRepository is an in-memory CalendarRepository for tests and
// ephemeral mode. Snapshots are deep copies, so later mutation of a saved
// calendar does not leak into the store.
type MemoryCalendarRepository struct {
	mu        sync.RWMutex
	calendars map[string]*domain.Calendar
}

// NewMemoryCalendarRepository creates an empty in-memory repository.
func NewMemoryCalendarRepository() *MemoryCalendarRepository {
	return &MemoryCalendarRepository{
		calendars: make(map[string]*domain.Calendar),
	}
}

// Save stores a deep copy of the calendar for the session.
func (r *MemoryCalendarRepository) Save(_ context.Context, sessionID string, calendar *domain.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calendars[sessionID] = cloneCalendar(calendar)
	return nil
}

// FindBySession returns a deep copy of the stored calendar, or (nil, nil)
// when no snapshot exists.
func (r *MemoryCalendarRepository) FindBySession(_ context.Context, sessionID string) (*domain.Calendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	calendar, ok := r.calendars[sessionID]
	if !ok {
		return nil, nil
	}
	return cloneCalendar(calendar), nil
}

// Delete removes the stored snapshot for a session.
func (r *MemoryCalendarRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.calendars, sessionID)
	return nil
}

func cloneCalendar(calendar *domain.Calendar) *domain.Calendar {
	events := make([]*domain.Event, 0, len(calendar.Events()))
	for _, e := range calendar.Events() {
		events = append(events, domain.RehydrateEvent(e.ID(), domain.EventParams{
			Title:         e.Title(),
			Duration:      e.Duration(),
			Priority:      e.Priority(),
			Category:      e.Category(),
			FixedTime:     e.FixedTime(),
			EarliestStart: e.EarliestStart(),
			LatestStart:   e.LatestStart(),
			Description:   e.Description(),
			Location:      e.Location(),
		}, e.ScheduledTime(), e.CreatedAt(), e.UpdatedAt()))
	}
	return domain.RehydrateCalendar(
		calendar.ID(),
		calendar.WindowStart(),
		calendar.WindowEnd(),
		events,
		calendar.CreatedAt(),
		calendar.UpdatedAt(),
	)
}
