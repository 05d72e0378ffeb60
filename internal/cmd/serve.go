package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rhishavhere/codeblink/internal/bridge"
	"github.com/Rhishavhere/codeblink/internal/errors"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bridge operations over stdin/stdout",
	Long: `Serve the bridge as newline-delimited JSON on stdin and stdout so a
separate front end can drive it.

Each request is {"id": "...", "op": "...", "params": {...}} and gets one
response with the same id. Terminal closures arrive as
{"event": "terminal_closed", "payload": {...}} at any time.

Operations: ` + strings.Join(bridge.Ops(), ", "),
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Info("serving bridge on stdio")
	err = bridge.NewDispatcher(a.surface).Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
