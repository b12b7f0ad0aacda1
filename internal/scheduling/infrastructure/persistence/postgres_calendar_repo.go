package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
)

// PostgresCalendarRepository persists calendars using PostgreSQL.
type PostgresCalendarRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCalendarRepository creates a new PostgresCalendarRepository.
func NewPostgresCalendarRepository(pool *pgxpool.Pool) *PostgresCalendarRepository {
	return &PostgresCalendarRepository{pool: pool}
}

// Save replaces the stored snapshot for the session.
func (r *PostgresCalendarRepository) Save(ctx context.Context, sessionID string, calendar *domain.Calendar) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM events WHERE session_id = $1`, sessionID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM calendars WHERE session_id = $1`, sessionID); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO calendars (session_id, id, window_start, window_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sessionID,
		calendar.ID(),
		calendar.WindowStart(),
		calendar.WindowEnd(),
		calendar.CreatedAt(),
		calendar.UpdatedAt(),
	)
	if err != nil {
		return err
	}

	for position, event := range calendar.Events() {
		_, err = tx.Exec(ctx, `
			INSERT INTO events (
				id, session_id, position, title, duration_min, priority, category,
				fixed_time, earliest_start, latest_start, scheduled_time,
				description, location, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			event.ID(),
			sessionID,
			position,
			event.Title(),
			int(event.Duration().Minutes()),
			int(event.Priority()),
			string(event.Category()),
			event.FixedTime(),
			event.EarliestStart(),
			event.LatestStart(),
			event.ScheduledTime(),
			event.Description(),
			event.Location(),
			event.CreatedAt(),
			event.UpdatedAt(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// FindBySession loads the calendar stored for a session. Returns (nil, nil)
// when no snapshot exists.
func (r *PostgresCalendarRepository) FindBySession(ctx context.Context, sessionID string) (*domain.Calendar, error) {
	var (
		id          uuid.UUID
		windowStart time.Time
		windowEnd   time.Time
		createdAt   time.Time
		updatedAt   time.Time
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, window_start, window_end, created_at, updated_at
		FROM calendars WHERE session_id = $1`, sessionID,
	).Scan(&id, &windowStart, &windowEnd, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, title, duration_min, priority, category,
		       fixed_time, earliest_start, latest_start, scheduled_time,
		       description, location, created_at, updated_at
		FROM events WHERE session_id = $1 ORDER BY position`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		var (
			eventID        uuid.UUID
			title          string
			durationMin    int
			priority       int
			category       string
			fixedTime      *time.Time
			earliestStart  *time.Time
			latestStart    *time.Time
			scheduledTime  *time.Time
			description    string
			location       string
			eventCreatedAt time.Time
			eventUpdatedAt time.Time
		)
		if err := rows.Scan(
			&eventID, &title, &durationMin, &priority, &category,
			&fixedTime, &earliestStart, &latestStart, &scheduledTime,
			&description, &location, &eventCreatedAt, &eventUpdatedAt,
		); err != nil {
			return nil, err
		}

		events = append(events, domain.RehydrateEvent(eventID, domain.EventParams{
			Title:         title,
			Duration:      time.Duration(durationMin) * time.Minute,
			Priority:      domain.Priority(priority),
			Category:      domain.EventCategory(category),
			FixedTime:     fixedTime,
			EarliestStart: earliestStart,
			LatestStart:   latestStart,
			Description:   description,
			Location:      location,
		}, scheduledTime, eventCreatedAt, eventUpdatedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return domain.RehydrateCalendar(id, windowStart, windowEnd, events, createdAt, updatedAt), nil
}

// Delete removes the stored snapshot for a session.
func (r *PostgresCalendarRepository) Delete(ctx context.Context, sessionID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM events WHERE session_id = $1`, sessionID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM calendars WHERE session_id = $1`, sessionID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
