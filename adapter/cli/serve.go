package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	serveAddr string
	serveFunc func(ctx context.Context, addr string) error
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveFunc == nil {
			return fmt.Errorf("server not available; application not initialized")
		}
		return serveFunc(cmd.Context(), serveAddr)
	},
}

// SetServeFunc installs the function run by the serve command.
func SetServeFunc(fn func(ctx context.Context, addr string) error) {
	serveFunc = fn
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
