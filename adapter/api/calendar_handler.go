package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/kairos/internal/assistant"
	"github.com/felixgeelhaar/kairos/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/kairos/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/kairos/internal/scheduling/application/services"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
	"github.com/felixgeelhaar/kairos/internal/scheduling/infrastructure/ics"
	"github.com/felixgeelhaar/kairos/internal/session"
)

// SessionHeader carries the client's session ID. The "session" query
// parameter works as a fallback; without either the default session is used.
const SessionHeader = "X-Session-ID"

// CalendarHandler handles calendar API requests.
type CalendarHandler struct {
	addEvent      *commands.AddEventHandler
	removeEvent   *commands.RemoveEventHandler
	clearSchedule *commands.ClearScheduleHandler
	optimize      *commands.OptimizeScheduleHandler

	listEvents   *queries.ListEventsHandler
	getConflicts *queries.GetConflictsHandler
	findSlots    *queries.FindSlotsHandler
	getSummary   *queries.GetSummaryHandler
	getReport    *queries.GetReportHandler

	sessions *session.Registry
	logger   *slog.Logger
}

// CalendarHandlerConfig holds dependencies for the calendar handler.
type CalendarHandlerConfig struct {
	AddEvent      *commands.AddEventHandler
	RemoveEvent   *commands.RemoveEventHandler
	ClearSchedule *commands.ClearScheduleHandler
	Optimize      *commands.OptimizeScheduleHandler

	ListEvents   *queries.ListEventsHandler
	GetConflicts *queries.GetConflictsHandler
	FindSlots    *queries.FindSlotsHandler
	GetSummary   *queries.GetSummaryHandler
	GetReport    *queries.GetReportHandler

	Sessions *session.Registry
	Logger   *slog.Logger
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(cfg CalendarHandlerConfig) *CalendarHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &CalendarHandler{
		addEvent:      cfg.AddEvent,
		removeEvent:   cfg.RemoveEvent,
		clearSchedule: cfg.ClearSchedule,
		optimize:      cfg.Optimize,
		listEvents:    cfg.ListEvents,
		getConflicts:  cfg.GetConflicts,
		findSlots:     cfg.FindSlots,
		getSummary:    cfg.GetSummary,
		getReport:     cfg.GetReport,
		sessions:      cfg.Sessions,
		logger:        cfg.Logger,
	}
}

func sessionID(r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	return r.URL.Query().Get("session")
}

// Health handles GET /health.
func (h *CalendarHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type addEventRequest struct {
	Title           string     `json:"title"`
	DurationMinutes int        `json:"duration_min"`
	Priority        int        `json:"priority"`
	Category        string     `json:"category"`
	FixedTime       *time.Time `json:"fixed_time"`
	EarliestStart   *time.Time `json:"earliest_start"`
	LatestStart     *time.Time `json:"latest_start"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
}

// AddEvent handles POST /api/v1/events.
func (h *CalendarHandler) AddEvent(w http.ResponseWriter, r *http.Request) {
	var req addEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.addEvent.Handle(r.Context(), commands.AddEventCommand{
		SessionID:       sessionID(r),
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
		Priority:        req.Priority,
		Category:        req.Category,
		FixedTime:       req.FixedTime,
		EarliestStart:   req.EarliestStart,
		LatestStart:     req.LatestStart,
		Description:     req.Description,
		Location:        req.Location,
	})
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to add event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add event")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": result.EventID.String()})
}

// ListEvents handles GET /api/v1/events.
func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.listEvents.Handle(r.Context(), queries.ListEventsQuery{SessionID: sessionID(r)})
	if err != nil {
		h.logger.Error("failed to list events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// RemoveEvent handles DELETE /api/v1/events/{eventID}.
func (h *CalendarHandler) RemoveEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(r.PathValue("eventID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	err = h.removeEvent.Handle(r.Context(), commands.RemoveEventCommand{
		SessionID: sessionID(r),
		EventID:   eventID,
	})
	if errors.Is(err, commands.ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to remove event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Optimize handles POST /api/v1/optimize.
func (h *CalendarHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	result, err := h.optimize.Handle(r.Context(), commands.OptimizeScheduleCommand{SessionID: sessionID(r)})
	if err != nil {
		h.logger.Error("optimization failed", "error", err)
		writeError(w, http.StatusInternalServerError, "optimization failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"all_scheduled":       result.AllScheduled,
		"scheduled":           result.ScheduledCount,
		"total":               result.TotalCount,
		"resolutions":         result.Resolutions,
		"conflicts_remaining": result.ConflictsRemaining,
	})
}

// Clear handles POST /api/v1/clear.
func (h *CalendarHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.clearSchedule.Handle(r.Context(), commands.ClearScheduleCommand{SessionID: sessionID(r)}); err != nil {
		h.logger.Error("failed to clear schedule", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear schedule")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

// Conflicts handles GET /api/v1/conflicts.
func (h *CalendarHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	conflicts, err := h.getConflicts.Handle(r.Context(), queries.GetConflictsQuery{SessionID: sessionID(r)})
	if err != nil {
		h.logger.Error("failed to list conflicts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list conflicts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conflicts": conflicts})
}

// Slots handles GET /api/v1/slots.
func (h *CalendarHandler) Slots(w http.ResponseWriter, r *http.Request) {
	duration, err := strconv.Atoi(r.URL.Query().Get("duration"))
	if err != nil || duration <= 0 {
		writeError(w, http.StatusBadRequest, "duration must be a positive number of minutes")
		return
	}

	query := queries.FindSlotsQuery{
		SessionID:       sessionID(r),
		DurationMinutes: duration,
	}
	if query.EarliestStart, err = parseTimeParam(r, "earliest"); err != nil {
		writeError(w, http.StatusBadRequest, "earliest must be RFC 3339")
		return
	}
	if query.LatestStart, err = parseTimeParam(r, "latest"); err != nil {
		writeError(w, http.StatusBadRequest, "latest must be RFC 3339")
		return
	}

	slots, err := h.findSlots.Handle(r.Context(), query)
	if err != nil {
		h.logger.Error("failed to find slots", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to find slots")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

// Summary handles GET /api/v1/summary.
func (h *CalendarHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.getSummary.Handle(r.Context(), queries.GetSummaryQuery{SessionID: sessionID(r)})
	if err != nil {
		h.logger.Error("failed to render summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render summary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// Report handles GET /api/v1/report.
func (h *CalendarHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.getReport.Handle(r.Context(), queries.GetReportQuery{SessionID: sessionID(r)})
	if err != nil {
		h.logger.Error("failed to render report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"report": report})
}

type chatRequest struct {
	Message string `json:"message"`
}

type suggestedEvent struct {
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_min"`
	Priority        int    `json:"priority"`
	Category        string `json:"category"`
}

// Chat handles POST /api/v1/chat.
func (h *CalendarHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reply := assistant.Respond(req.Message)
	resp := map[string]any{
		"reply":  reply.Message,
		"action": reply.Action,
	}
	if reply.Suggested != nil {
		resp["suggested_event"] = suggestedEvent{
			Title:           reply.Suggested.Title,
			DurationMinutes: int(reply.Suggested.Duration.Minutes()),
			Priority:        int(reply.Suggested.Priority),
			Category:        string(reply.Suggested.Category),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ExportICS handles GET /api/v1/calendar.ics.
func (h *CalendarHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)

	err := h.sessions.View(r.Context(), sessionID(r), func(cal *domain.Calendar, _ *services.Optimizer) error {
		return ics.Export(w, cal)
	})
	if err != nil {
		h.logger.Error("failed to export calendar", "error", err)
		// Headers are already written; nothing sensible left to send.
	}
}

// isValidationError distinguishes rejected input from infrastructure
// failures, so persistence errors do not surface as 400s.
func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrEmptyTitle) ||
		errors.Is(err, domain.ErrInvalidDuration) ||
		errors.Is(err, domain.ErrInvalidPriority) ||
		errors.Is(err, domain.ErrInvalidCategory)
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
