package queries

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/services"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
	"github.com/felixgeelhaar/kairos/internal/session"
)

// ReportCache serves rendered reports. Implementations must degrade to a
// miss when the backend is unavailable.
type ReportCache interface {
	Get(ctx context.Context, sessionID string) (string, bool)
	Set(ctx context.Context, sessionID, report string)
}

// GetReportQuery renders the optimization report for a session.
type GetReportQuery struct {
	SessionID string
}

// GetReportHandler handles the GetReportQuery with read-through caching.
type GetReportHandler struct {
	registry *session.Registry
	cache    ReportCache
	logger   *slog.Logger
}

// NewGetReportHandler creates a new GetReportHandler. cache may be nil.
func NewGetReportHandler(registry *session.Registry, cache ReportCache, logger *slog.Logger) *GetReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetReportHandler{
		registry: registry,
		cache:    cache,
		logger:   logger,
	}
}

// Handle executes the GetReportQuery.
func (h *GetReportHandler) Handle(ctx context.Context, q GetReportQuery) (string, error) {
	sessionID := q.SessionID
	if sessionID == "" {
		sessionID = session.DefaultSessionID
	}

	if h.cache != nil {
		if report, ok := h.cache.Get(ctx, sessionID); ok {
			h.logger.Debug("report served from cache", "session_id", sessionID)
			return report, nil
		}
	}

	var report string
	err := h.registry.View(ctx, sessionID, func(_ *domain.Calendar, opt *services.Optimizer) error {
		report = opt.OptimizationReport()
		return nil
	})
	if err != nil {
		return "", err
	}

	if h.cache != nil {
		h.cache.Set(ctx, sessionID, report)
	}
	return report, nil
}
