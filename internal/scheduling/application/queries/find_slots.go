package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/services"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
	"github.com/felixgeelhaar/kairos/internal/session"
)

// FindSlotsQuery lists the free start instants for a hypothetical event.
type FindSlotsQuery struct {
	SessionID       string
	DurationMinutes int
	EarliestStart   *time.Time
	LatestStart     *time.Time
}

// FindSlotsHandler handles the FindSlotsQuery.
type FindSlotsHandler struct {
	registry *session.Registry
}

// NewFindSlotsHandler creates a new FindSlotsHandler.
func NewFindSlotsHandler(registry *session.Registry) *FindSlotsHandler {
	return &FindSlotsHandler{registry: registry}
}

// Handle executes the FindSlotsQuery.
func (h *FindSlotsHandler) Handle(ctx context.Context, q FindSlotsQuery) ([]time.Time, error) {
	if q.DurationMinutes <= 0 {
		return nil, domain.ErrInvalidDuration
	}
	duration := time.Duration(q.DurationMinutes) * time.Minute

	var slots []time.Time
	err := h.registry.View(ctx, q.SessionID, func(cal *domain.Calendar, _ *services.Optimizer) error {
		slots = cal.FindAvailableSlots(duration, q.EarliestStart, q.LatestStart)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}
