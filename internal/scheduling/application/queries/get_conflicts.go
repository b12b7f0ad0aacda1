package queries

import (
	"context"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/services"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
	"github.com/felixgeelhaar/kairos/internal/session"
)

// ConflictDTO is the read model for one overlapping pair.
type ConflictDTO struct {
	First  EventDTO `json:"first"`
	Second EventDTO `json:"second"`
}

// GetConflictsQuery lists all overlapping scheduled pairs of a session.
type GetConflictsQuery struct {
	SessionID string
}

// GetConflictsHandler handles the GetConflictsQuery.
type GetConflictsHandler struct {
	registry *session.Registry
}

// NewGetConflictsHandler creates a new GetConflictsHandler.
func NewGetConflictsHandler(registry *session.Registry) *GetConflictsHandler {
	return &GetConflictsHandler{registry: registry}
}

// Handle executes the GetConflictsQuery.
func (h *GetConflictsHandler) Handle(ctx context.Context, q GetConflictsQuery) ([]ConflictDTO, error) {
	var dtos []ConflictDTO
	err := h.registry.View(ctx, q.SessionID, func(cal *domain.Calendar, _ *services.Optimizer) error {
		conflicts := cal.Conflicts()
		dtos = make([]ConflictDTO, 0, len(conflicts))
		for _, pair := range conflicts {
			dtos = append(dtos, ConflictDTO{
				First:  toEventDTO(pair.First),
				Second: toEventDTO(pair.Second),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}
