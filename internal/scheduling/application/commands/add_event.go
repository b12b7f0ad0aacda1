// Package commands contains the write-side handlers for calendar sessions.
// Each handler mutates the session's calendar under the registry lock,
// persists the snapshot, publishes the raised domain events, and invalidates
// the cached report.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/services"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
	"github.com/felixgeelhaar/kairos/internal/session"
	"github.com/felixgeelhaar/kairos/internal/shared/infrastructure/eventbus"
)

// ErrEventNotFound is returned when the referenced event is not in the
// session's calendar.
var ErrEventNotFound = errors.New("event not found")

// ReportCache invalidates cached reports when the schedule changes.
type ReportCache interface {
	Invalidate(ctx context.Context, sessionID string)
}

// AddEventCommand contains the data needed to add an event.
type AddEventCommand struct {
	SessionID       string
	Title           string
	DurationMinutes int
	Priority        int
	Category        string
	FixedTime       *time.Time
	EarliestStart   *time.Time
	LatestStart     *time.Time
	Description     string
	Location        string
}

// AddEventResult contains the result of adding an event.
type AddEventResult struct {
	EventID uuid.UUID
}

// AddEventHandler handles the AddEventCommand.
type AddEventHandler struct {
	registry  *session.Registry
	publisher eventbus.Publisher
	cache     ReportCache
	logger    *slog.Logger
}

// NewAddEventHandler creates a new AddEventHandler. publisher and cache may
// be nil.
func NewAddEventHandler(registry *session.Registry, publisher eventbus.Publisher, cache ReportCache, logger *slog.Logger) *AddEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AddEventHandler{
		registry:  registry,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the AddEventCommand.
func (h *AddEventHandler) Handle(ctx context.Context, cmd AddEventCommand) (*AddEventResult, error) {
	params, err := eventParams(cmd)
	if err != nil {
		return nil, err
	}

	var result *AddEventResult
	err = h.registry.Update(ctx, cmd.SessionID, func(cal *domain.Calendar, _ *services.Optimizer) error {
		event, err := domain.NewEvent(params)
		if err != nil {
			return err
		}
		cal.AddEvent(event)

		eventbus.PublishDomainEvents(ctx, h.publisher, cal.DomainEvents(), h.logger)
		cal.ClearDomainEvents()

		result = &AddEventResult{EventID: event.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, h.cache, cmd.SessionID)
	h.logger.Info("event added",
		"session_id", cmd.SessionID,
		"event_id", result.EventID,
		"title", cmd.Title,
	)
	return result, nil
}

func eventParams(cmd AddEventCommand) (domain.EventParams, error) {
	params := domain.EventParams{
		Title:         cmd.Title,
		Duration:      time.Duration(cmd.DurationMinutes) * time.Minute,
		FixedTime:     cmd.FixedTime,
		EarliestStart: cmd.EarliestStart,
		LatestStart:   cmd.LatestStart,
		Description:   cmd.Description,
		Location:      cmd.Location,
	}

	if cmd.Priority != 0 {
		priority, err := domain.ParsePriority(cmd.Priority)
		if err != nil {
			return domain.EventParams{}, err
		}
		params.Priority = priority
	}

	if cmd.Category != "" {
		category := domain.EventCategory(cmd.Category)
		switch category {
		case domain.CategoryFlexible, domain.CategoryFixed, domain.CategoryMandatory:
			params.Category = category
		default:
			return domain.EventParams{}, fmt.Errorf("%w: %s", domain.ErrInvalidCategory, cmd.Category)
		}
	}

	return params, nil
}

func invalidate(ctx context.Context, cache ReportCache, sessionID string) {
	if cache != nil {
		if sessionID == "" {
			sessionID = session.DefaultSessionID
		}
		cache.Invalidate(ctx, sessionID)
	}
}
