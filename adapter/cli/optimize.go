package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/commands"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Schedule all events and resolve conflicts",
	Long: `Run the schedule optimizer.

Events are placed on the 15-minute grid of the working day in priority
order, fixed events at their pinned times. Remaining conflicts are then
resolved by moving the lower-priority event to the next free slot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		result, err := app.OptimizeScheduleHandler.Handle(cmd.Context(), commands.OptimizeScheduleCommand{
			SessionID: sessionID(),
		})
		if err != nil {
			return fmt.Errorf("optimization failed: %w", err)
		}

		fmt.Printf("Scheduled %d of %d events.\n", result.ScheduledCount, result.TotalCount)
		for _, resolution := range result.Resolutions {
			fmt.Printf("  %s\n", resolution)
		}
		if result.ConflictsRemaining > 0 {
			fmt.Printf("%d conflicts could not be resolved.\n", result.ConflictsRemaining)
		}
		if !result.AllScheduled {
			fmt.Println("Some events did not fit. Run 'kairos report' for suggestions.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}
