package domain

import "context"

// CalendarRepository persists calendar snapshots keyed by session.
type CalendarRepository interface {
	// Save persists the calendar and its events for a session.
	Save(ctx context.Context, sessionID string, calendar *Calendar) error

	// FindBySession loads the calendar stored for a session.
	// Returns (nil, nil) when no snapshot exists.
	FindBySession(ctx context.Context, sessionID string) (*Calendar, error)

	// Delete removes the stored snapshot for a session.
	Delete(ctx context.Context, sessionID string) error
}
