package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kairos/internal/assistant"
	"github.com/felixgeelhaar/kairos/internal/scheduling/application/commands"
)

var addCmd = &cobra.Command{
	Use:   "add <description>",
	Short: "Quick add an event with natural language",
	Long: `Quickly add an event using natural language.

The command parses your input to extract:
- A title from known subjects and activities
- Duration: 30 min, 2 hours, 1h, etc. (default 1 hour)
- Priority: urgent, important, asap, critical raise it; low, optional, maybe lower it
- Category: class, lecture, mandatory, must mark an event mandatory;
  a clock time like "at 3 pm" marks it fixed

Examples:
  kairos add "study math for 2 hours"
  kairos add "urgent project review 45 mins"
  kairos add "chemistry class"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.AddEventHandler == nil {
			fmt.Println("Quick add requires an initialized application.")
			return nil
		}

		input := strings.Join(args, " ")
		suggestion, ok := assistant.Parse(input)
		if !ok {
			fmt.Println("Could not understand that. Try something like: study math for 2 hours")
			return nil
		}

		result, err := app.AddEventHandler.Handle(cmd.Context(), commands.AddEventCommand{
			SessionID:       sessionID(),
			Title:           suggestion.Title,
			DurationMinutes: int(suggestion.Duration.Minutes()),
			Priority:        int(suggestion.Priority),
			Category:        string(suggestion.Category),
		})
		if err != nil {
			return fmt.Errorf("failed to add event: %w", err)
		}

		fmt.Println("Event added!")
		fmt.Printf("  Title: %s\n", suggestion.Title)
		fmt.Printf("  ID: %s\n", result.EventID.String()[:8])
		fmt.Printf("  Duration: %d min\n", int(suggestion.Duration.Minutes()))
		fmt.Printf("  Priority: %s\n", suggestion.Priority)
		fmt.Printf("  Category: %s\n", suggestion.Category)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
