package cli

import (
	"github.com/felixgeelhaar/kairos/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/kairos/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/kairos/internal/session"
)

// App holds the CLI application dependencies.
type App struct {
	// Command handlers
	AddEventHandler         *commands.AddEventHandler
	RemoveEventHandler      *commands.RemoveEventHandler
	ClearScheduleHandler    *commands.ClearScheduleHandler
	OptimizeScheduleHandler *commands.OptimizeScheduleHandler

	// Query handlers
	ListEventsHandler   *queries.ListEventsHandler
	GetConflictsHandler *queries.GetConflictsHandler
	FindSlotsHandler    *queries.FindSlotsHandler
	GetSummaryHandler   *queries.GetSummaryHandler
	GetReportHandler    *queries.GetReportHandler

	// Session registry, used directly for calendar export.
	Sessions *session.Registry
}

var app *App

// SetApp sets the CLI application dependencies.
func SetApp(a *App) {
	app = a
}

// GetApp returns the CLI application dependencies.
func GetApp() *App {
	return app
}

// sessionID returns the session targeted by the --session flag.
func sessionID() string {
	if sessionFlag != "" {
		return sessionFlag
	}
	return session.DefaultSessionID
}
