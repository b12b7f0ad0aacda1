package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/services"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
	"github.com/felixgeelhaar/kairos/internal/scheduling/infrastructure/ics"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the scheduled calendar as iCalendar",
	Long: `Export all scheduled events as an iCalendar (.ics) file.

Writes to stdout unless --output is given. Unscheduled events are
omitted; run 'kairos optimize' first to place them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		out := os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		err := app.Sessions.View(cmd.Context(), sessionID(), func(cal *domain.Calendar, _ *services.Optimizer) error {
			return ics.Export(out, cal)
		})
		if err != nil {
			return fmt.Errorf("failed to export calendar: %w", err)
		}

		if exportOutput != "" {
			fmt.Printf("Calendar exported to %s\n", exportOutput)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
