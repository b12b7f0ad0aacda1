package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/kairos/internal/scheduling/application/queries"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the day's schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		summary, err := app.GetSummaryHandler.Handle(cmd.Context(), queries.GetSummaryQuery{SessionID: sessionID()})
		if err != nil {
			return fmt.Errorf("failed to render summary: %w", err)
		}
		fmt.Println(summary)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the optimization report with suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		report, err := app.GetReportHandler.Handle(cmd.Context(), queries.GetReportQuery{SessionID: sessionID()})
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		fmt.Println(report)
		return nil
	},
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "List conflicting event pairs",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		conflicts, err := app.GetConflictsHandler.Handle(cmd.Context(), queries.GetConflictsQuery{SessionID: sessionID()})
		if err != nil {
			return fmt.Errorf("failed to list conflicts: %w", err)
		}
		if len(conflicts) == 0 {
			fmt.Println("No conflicts.")
			return nil
		}
		for _, c := range conflicts {
			fmt.Printf("  %s overlaps %s\n", c.First.Title, c.Second.Title)
		}
		return nil
	},
}

var slotsDuration int

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List free slots for a given duration",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		slots, err := app.FindSlotsHandler.Handle(cmd.Context(), queries.FindSlotsQuery{
			SessionID:       sessionID(),
			DurationMinutes: slotsDuration,
		})
		if err != nil {
			return fmt.Errorf("failed to find slots: %w", err)
		}
		if len(slots) == 0 {
			fmt.Printf("No free %d-minute slots today.\n", slotsDuration)
			return nil
		}
		for _, slot := range slots {
			fmt.Printf("  %s - %s\n",
				slot.Format("15:04"),
				slot.Add(time.Duration(slotsDuration)*time.Minute).Format("15:04"))
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Unschedule all events, keeping them in the calendar",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		if err := app.ClearScheduleHandler.Handle(cmd.Context(), commands.ClearScheduleCommand{
			SessionID: sessionID(),
		}); err != nil {
			return fmt.Errorf("failed to clear schedule: %w", err)
		}
		fmt.Println("Schedule cleared.")
		return nil
	},
}

func init() {
	slotsCmd.Flags().IntVarP(&slotsDuration, "duration", "d", 60, "slot duration in minutes")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(conflictsCmd)
	rootCmd.AddCommand(slotsCmd)
	rootCmd.AddCommand(clearCmd)
}
