package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/services"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
	"github.com/felixgeelhaar/kairos/internal/session"
	"github.com/felixgeelhaar/kairos/internal/shared/infrastructure/eventbus"
)

// OptimizeScheduleCommand runs an optimization pass followed by conflict
// resolution for the session.
type OptimizeScheduleCommand struct {
	SessionID string
}

// OptimizeScheduleResult describes the outcome of an optimization pass.
type OptimizeScheduleResult struct {
	AllScheduled       bool
	ScheduledCount     int
	TotalCount         int
	Resolutions        []string
	ConflictsRemaining int
}

// OptimizeScheduleHandler handles the OptimizeScheduleCommand.
type OptimizeScheduleHandler struct {
	registry  *session.Registry
	publisher eventbus.Publisher
	cache     ReportCache
	logger    *slog.Logger
}

// NewOptimizeScheduleHandler creates a new OptimizeScheduleHandler.
func NewOptimizeScheduleHandler(registry *session.Registry, publisher eventbus.Publisher, cache ReportCache, logger *slog.Logger) *OptimizeScheduleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OptimizeScheduleHandler{
		registry:  registry,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the OptimizeScheduleCommand. A partially scheduled result
// is reported, not treated as an error.
func (h *OptimizeScheduleHandler) Handle(ctx context.Context, cmd OptimizeScheduleCommand) (*OptimizeScheduleResult, error) {
	var result *OptimizeScheduleResult
	err := h.registry.Update(ctx, cmd.SessionID, func(cal *domain.Calendar, opt *services.Optimizer) error {
		allScheduled := opt.OptimizeSchedule()
		resolutions := opt.ResolveConflicts()

		descriptions := make([]string, 0, len(resolutions))
		for _, r := range resolutions {
			descriptions = append(descriptions, r.Description)
		}

		result = &OptimizeScheduleResult{
			AllScheduled:       allScheduled,
			ScheduledCount:     len(cal.ScheduledEvents()),
			TotalCount:         len(cal.Events()),
			Resolutions:        descriptions,
			ConflictsRemaining: len(cal.Conflicts()),
		}

		cal.AddDomainEvent(domain.NewScheduleOptimized(
			cal.ID(),
			result.ScheduledCount,
			result.TotalCount,
			result.ConflictsRemaining,
			len(resolutions),
		))
		eventbus.PublishDomainEvents(ctx, h.publisher, cal.DomainEvents(), h.logger)
		cal.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, h.cache, cmd.SessionID)
	h.logger.Info("schedule optimized",
		"session_id", cmd.SessionID,
		"scheduled", result.ScheduledCount,
		"total", result.TotalCount,
		"resolutions", len(result.Resolutions),
		"conflicts_remaining", result.ConflictsRemaining,
	)
	return result, nil
}
