package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/services"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
	"github.com/felixgeelhaar/kairos/internal/session"
	"github.com/felixgeelhaar/kairos/internal/shared/infrastructure/eventbus"
)

// ClearScheduleCommand resets every event assignment in the session.
type ClearScheduleCommand struct {
	SessionID string
}

// ClearScheduleHandler handles the ClearScheduleCommand.
type ClearScheduleHandler struct {
	registry  *session.Registry
	publisher eventbus.Publisher
	cache     ReportCache
	logger    *slog.Logger
}

// NewClearScheduleHandler creates a new ClearScheduleHandler.
func NewClearScheduleHandler(registry *session.Registry, publisher eventbus.Publisher, cache ReportCache, logger *slog.Logger) *ClearScheduleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClearScheduleHandler{
		registry:  registry,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the ClearScheduleCommand. Events keep their membership and
// constraints; only the assignments are dropped.
func (h *ClearScheduleHandler) Handle(ctx context.Context, cmd ClearScheduleCommand) error {
	err := h.registry.Update(ctx, cmd.SessionID, func(cal *domain.Calendar, _ *services.Optimizer) error {
		cal.ClearSchedule()

		eventbus.PublishDomainEvents(ctx, h.publisher, cal.DomainEvents(), h.logger)
		cal.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return err
	}

	invalidate(ctx, h.cache, cmd.SessionID)
	h.logger.Info("schedule cleared", "session_id", cmd.SessionID)
	return nil
}
