// Package persistence stores calendar snapshots keyed by session.
//
// Both backends use the same snapshot model: Save replaces the stored
// calendar and all of its events in one transaction. Calendars are small
// (one working day), so rewriting the snapshot is cheaper than diffing.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
)

// SQLiteCalendarRepository persists calendars using SQLite.
type SQLiteCalendarRepository struct {
	dbConn *sql.DB
}

// NewSQLiteCalendarRepository creates a new SQLiteCalendarRepository.
func NewSQLiteCalendarRepository(dbConn *sql.DB) *SQLiteCalendarRepository {
	return &SQLiteCalendarRepository{dbConn: dbConn}
}

// Save replaces the stored snapshot for the session.
func (r *SQLiteCalendarRepository) Save(ctx context.Context, sessionID string, calendar *domain.Calendar) error {
	tx, err := r.dbConn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM calendars WHERE session_id = ?`, sessionID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO calendars (session_id, id, window_start, window_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID,
		calendar.ID().String(),
		calendar.WindowStart().Format(time.RFC3339),
		calendar.WindowEnd().Format(time.RFC3339),
		calendar.CreatedAt().Format(time.RFC3339),
		calendar.UpdatedAt().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	for position, event := range calendar.Events() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO events (
				id, session_id, position, title, duration_min, priority, category,
				fixed_time, earliest_start, latest_start, scheduled_time,
				description, location, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			event.ID().String(),
			sessionID,
			position,
			event.Title(),
			int(event.Duration().Minutes()),
			int(event.Priority()),
			string(event.Category()),
			nullTimeString(event.FixedTime()),
			nullTimeString(event.EarliestStart()),
			nullTimeString(event.LatestStart()),
			nullTimeString(event.ScheduledTime()),
			event.Description(),
			event.Location(),
			event.CreatedAt().Format(time.RFC3339),
			event.UpdatedAt().Format(time.RFC3339),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindBySession loads the calendar stored for a session. Returns (nil, nil)
// when no snapshot exists.
func (r *SQLiteCalendarRepository) FindBySession(ctx context.Context, sessionID string) (*domain.Calendar, error) {
	var (
		idStr       string
		windowStart string
		windowEnd   string
		createdAt   string
		updatedAt   string
	)
	err := r.dbConn.QueryRowContext(ctx, `
		SELECT id, window_start, window_end, created_at, updated_at
		FROM calendars WHERE session_id = ?`, sessionID,
	).Scan(&idStr, &windowStart, &windowEnd, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	calRow := calendarRow{
		ID:          idStr,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}

	rows, err := r.dbConn.QueryContext(ctx, `
		SELECT id, title, duration_min, priority, category,
		       fixed_time, earliest_start, latest_start, scheduled_time,
		       description, location, created_at, updated_at
		FROM events WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var eventRows []eventRow
	for rows.Next() {
		var er eventRow
		if err := rows.Scan(
			&er.ID, &er.Title, &er.DurationMin, &er.Priority, &er.Category,
			&er.FixedTime, &er.EarliestStart, &er.LatestStart, &er.ScheduledTime,
			&er.Description, &er.Location, &er.CreatedAt, &er.UpdatedAt,
		); err != nil {
			return nil, err
		}
		eventRows = append(eventRows, er)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return calRow.toDomain(eventRows)
}

// Delete removes the stored snapshot for a session.
func (r *SQLiteCalendarRepository) Delete(ctx context.Context, sessionID string) error {
	tx, err := r.dbConn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM calendars WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

// calendarRow and eventRow carry the text-encoded SQLite columns.
type calendarRow struct {
	ID          string
	WindowStart string
	WindowEnd   string
	CreatedAt   string
	UpdatedAt   string
}

type eventRow struct {
	ID            string
	Title         string
	DurationMin   int
	Priority      int
	Category      string
	FixedTime     sql.NullString
	EarliestStart sql.NullString
	LatestStart   sql.NullString
	ScheduledTime sql.NullString
	Description   string
	Location      string
	CreatedAt     string
	UpdatedAt     string
}

func (cr calendarRow) toDomain(eventRows []eventRow) (*domain.Calendar, error) {
	id, err := uuid.Parse(cr.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar id: %w", err)
	}
	windowStart, err := time.Parse(time.RFC3339, cr.WindowStart)
	if err != nil {
		return nil, fmt.Errorf("invalid window start: %w", err)
	}
	windowEnd, err := time.Parse(time.RFC3339, cr.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid window end: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, cr.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339, cr.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updated at: %w", err)
	}

	events := make([]*domain.Event, 0, len(eventRows))
	for _, er := range eventRows {
		event, err := er.toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return domain.RehydrateCalendar(id, windowStart, windowEnd, events, createdAt, updatedAt), nil
}

func (er eventRow) toDomain() (*domain.Event, error) {
	id, err := uuid.Parse(er.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid event id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, er.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid event created at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339, er.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid event updated at: %w", err)
	}

	fixedTime, err := parseNullTime(er.FixedTime)
	if err != nil {
		return nil, fmt.Errorf("invalid fixed time: %w", err)
	}
	earliestStart, err := parseNullTime(er.EarliestStart)
	if err != nil {
		return nil, fmt.Errorf("invalid earliest start: %w", err)
	}
	latestStart, err := parseNullTime(er.LatestStart)
	if err != nil {
		return nil, fmt.Errorf("invalid latest start: %w", err)
	}
	scheduledTime, err := parseNullTime(er.ScheduledTime)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduled time: %w", err)
	}

	params := domain.EventParams{
		Title:         er.Title,
		Duration:      time.Duration(er.DurationMin) * time.Minute,
		Priority:      domain.Priority(er.Priority),
		Category:      domain.EventCategory(er.Category),
		FixedTime:     fixedTime,
		EarliestStart: earliestStart,
		LatestStart:   latestStart,
		Description:   er.Description,
		Location:      er.Location,
	}

	return domain.RehydrateEvent(id, params, scheduledTime, createdAt, updatedAt), nil
}

func nullTimeString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
