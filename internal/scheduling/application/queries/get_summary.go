package queries

import (
	"context"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/services"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
	"github.com/felixgeelhaar/kairos/internal/session"
)

// GetSummaryQuery renders the human-readable schedule for a session.
type GetSummaryQuery struct {
	SessionID string
}

// GetSummaryHandler handles the GetSummaryQuery.
type GetSummaryHandler struct {
	registry *session.Registry
}

// NewGetSummaryHandler creates a new GetSummaryHandler.
func NewGetSummaryHandler(registry *session.Registry) *GetSummaryHandler {
	return &GetSummaryHandler{registry: registry}
}

// Handle executes the GetSummaryQuery.
func (h *GetSummaryHandler) Handle(ctx context.Context, q GetSummaryQuery) (string, error) {
	var summary string
	err := h.registry.View(ctx, q.SessionID, func(cal *domain.Calendar, _ *services.Optimizer) error {
		summary = cal.Summary()
		return nil
	})
	if err != nil {
		return "", err
	}
	return summary, nil
}
