package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/services"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
	"github.com/felixgeelhaar/kairos/internal/session"
	"github.com/felixgeelhaar/kairos/internal/shared/infrastructure/eventbus"
)

// RemoveEventCommand contains the data needed to remove an event.
type RemoveEventCommand struct {
	SessionID string
	EventID   uuid.UUID
}

// RemoveEventHandler handles the RemoveEventCommand.
type RemoveEventHandler struct {
	registry  *session.Registry
	publisher eventbus.Publisher
	cache     ReportCache
	logger    *slog.Logger
}

// NewRemoveEventHandler creates a new RemoveEventHandler.
func NewRemoveEventHandler(registry *session.Registry, publisher eventbus.Publisher, cache ReportCache, logger *slog.Logger) *RemoveEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoveEventHandler{
		registry:  registry,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the RemoveEventCommand. Returns ErrEventNotFound when the
// event is not a member of the session's calendar.
func (h *RemoveEventHandler) Handle(ctx context.Context, cmd RemoveEventCommand) error {
	err := h.registry.Update(ctx, cmd.SessionID, func(cal *domain.Calendar, _ *services.Optimizer) error {
		event, ok := cal.FindEvent(cmd.EventID)
		if !ok {
			return ErrEventNotFound
		}
		cal.RemoveEvent(event)

		eventbus.PublishDomainEvents(ctx, h.publisher, cal.DomainEvents(), h.logger)
		cal.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return err
	}

	invalidate(ctx, h.cache, cmd.SessionID)
	h.logger.Info("event removed",
		"session_id", cmd.SessionID,
		"event_id", cmd.EventID,
	)
	return nil
}
