// Package queries contains the read-side handlers for calendar sessions.
package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/services"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
	"github.com/felixgeelhaar/kairos/internal/session"
)

// EventDTO is the read model for a single event.
type EventDTO struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	DurationMinutes int        `json:"duration_min"`
	Priority        int        `json:"priority"`
	PriorityLabel   string     `json:"priority_label"`
	Category        string     `json:"category"`
	Scheduled       bool       `json:"scheduled"`
	FixedTime       *time.Time `json:"fixed_time,omitempty"`
	EarliestStart   *time.Time `json:"earliest_start,omitempty"`
	LatestStart     *time.Time `json:"latest_start,omitempty"`
	ScheduledTime   *time.Time `json:"scheduled_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	Description     string     `json:"description,omitempty"`
	Location        string     `json:"location,omitempty"`
}

// ListEventsQuery lists all events of a session in insertion order.
type ListEventsQuery struct {
	SessionID string
}

// ListEventsHandler handles the ListEventsQuery.
type ListEventsHandler struct {
	registry *session.Registry
}

// NewListEventsHandler creates a new ListEventsHandler.
func NewListEventsHandler(registry *session.Registry) *ListEventsHandler {
	return &ListEventsHandler{registry: registry}
}

// Handle executes the ListEventsQuery.
func (h *ListEventsHandler) Handle(ctx context.Context, q ListEventsQuery) ([]EventDTO, error) {
	var dtos []EventDTO
	err := h.registry.View(ctx, q.SessionID, func(cal *domain.Calendar, _ *services.Optimizer) error {
		dtos = make([]EventDTO, 0, len(cal.Events()))
		for _, event := range cal.Events() {
			dtos = append(dtos, toEventDTO(event))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

func toEventDTO(event *domain.Event) EventDTO {
	dto := EventDTO{
		ID:              event.ID(),
		Title:           event.Title(),
		DurationMinutes: int(event.Duration().Minutes()),
		Priority:        int(event.Priority()),
		PriorityLabel:   event.Priority().String(),
		Category:        string(event.Category()),
		Scheduled:       event.IsScheduled(),
		FixedTime:       event.FixedTime(),
		EarliestStart:   event.EarliestStart(),
		LatestStart:     event.LatestStart(),
		ScheduledTime:   event.ScheduledTime(),
		Description:     event.Description(),
		Location:        event.Location(),
	}
	if end, ok := event.EndTime(); ok {
		dto.EndTime = &end
	}
	return dto
}
