package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kairos/internal/assistant"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask the scheduling assistant",
	Long: `Talk to the scheduling assistant without changing the calendar.

The assistant suggests an event from your message; use 'kairos add' to
actually add it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reply := assistant.Respond(strings.Join(args, " "))
		fmt.Println(reply.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
