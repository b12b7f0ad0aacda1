package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/kairos/internal/scheduling/application/queries"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Manage calendar events",
}

var (
	eventDuration    int
	eventPriority    int
	eventCategory    string
	eventFixedAt     string
	eventEarliest    string
	eventLatest      string
	eventDescription string
	eventLocation    string
)

var eventAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add an event with explicit attributes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		input := commands.AddEventCommand{
			SessionID:       sessionID(),
			Title:           args[0],
			DurationMinutes: eventDuration,
			Priority:        eventPriority,
			Category:        eventCategory,
			Description:     eventDescription,
			Location:        eventLocation,
		}

		var err error
		if input.FixedTime, err = parseTimeFlag(eventFixedAt); err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		if input.EarliestStart, err = parseTimeFlag(eventEarliest); err != nil {
			return fmt.Errorf("invalid --earliest: %w", err)
		}
		if input.LatestStart, err = parseTimeFlag(eventLatest); err != nil {
			return fmt.Errorf("invalid --latest: %w", err)
		}

		result, err := app.AddEventHandler.Handle(cmd.Context(), input)
		if err != nil {
			return fmt.Errorf("failed to add event: %w", err)
		}

		fmt.Printf("Event added: %s (%s)\n", args[0], result.EventID.String()[:8])
		return nil
	},
}

var eventListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events in the session calendar",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		events, err := app.ListEventsHandler.Handle(cmd.Context(), queries.ListEventsQuery{SessionID: sessionID()})
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No events yet. Add one with: kairos add \"study math 2 hours\"")
			return nil
		}

		for _, e := range events {
			when := "unscheduled"
			if e.ScheduledTime != nil {
				when = e.ScheduledTime.Format("15:04")
			}
			fmt.Printf("  %s  %-30s %4dmin  %-6s %-9s %s\n",
				e.ID.String()[:8], e.Title, e.DurationMinutes, e.PriorityLabel, e.Category, when)
		}
		return nil
	},
}

var eventRemoveCmd = &cobra.Command{
	Use:   "remove <event-id>",
	Short: "Remove an event from the calendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		eventID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid event ID: %w", err)
		}

		if err := app.RemoveEventHandler.Handle(cmd.Context(), commands.RemoveEventCommand{
			SessionID: sessionID(),
			EventID:   eventID,
		}); err != nil {
			return fmt.Errorf("failed to remove event: %w", err)
		}

		fmt.Println("Event removed.")
		return nil
	},
}

func parseTimeFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	// Accept a full timestamp or a clock time on today's date.
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	clock, err := time.Parse("15:04", value)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	t := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
	return &t, nil
}

func init() {
	eventAddCmd.Flags().IntVarP(&eventDuration, "duration", "d", 60, "duration in minutes")
	eventAddCmd.Flags().IntVarP(&eventPriority, "priority", "p", 0, "priority 1 (low) to 3 (high)")
	eventAddCmd.Flags().StringVar(&eventCategory, "category", "", "category: flexible, mandatory or fixed")
	eventAddCmd.Flags().StringVar(&eventFixedAt, "at", "", "fixed start time (15:04 or RFC 3339)")
	eventAddCmd.Flags().StringVar(&eventEarliest, "earliest", "", "earliest start time (15:04 or RFC 3339)")
	eventAddCmd.Flags().StringVar(&eventLatest, "latest", "", "latest start time (15:04 or RFC 3339)")
	eventAddCmd.Flags().StringVar(&eventDescription, "description", "", "event description")
	eventAddCmd.Flags().StringVar(&eventLocation, "location", "", "event location")

	eventCmd.AddCommand(eventAddCmd)
	eventCmd.AddCommand(eventListCmd)
	eventCmd.AddCommand(eventRemoveCmd)
	rootCmd.AddCommand(eventCmd)
}
