package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rhishavhere/codeblink/internal/bridge"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Translate a file and run the result in a new terminal",
	Long: `Translate a natural-language file, write the script to the output
directory and launch it in a new terminal window.

By default the command waits until the terminal window is closed and
fails if the terminal could not be started.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var translateCmd = &cobra.Command{
	Use:   "translate <file>",
	Short: "Print the script generated for a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranslate,
}

var (
	runNoWait    bool
	translateOut string
)

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(translateCmd)

	runCmd.Flags().BoolVar(&runNoWait, "no-wait", false, "Return as soon as the terminal is launched")
	translateCmd.Flags().StringVarP(&translateOut, "output", "o", "", "Write the script to this path instead of stdout")
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	path := a.store.Resolve(args[0])
	source, err := a.store.Read(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stop := a.echoLog(out)
	defer stop()

	// One launch per invocation, so any closure is ours.
	closed := make(chan bridge.TerminalClosed, 1)
	cancel := a.surface.OnTerminalClosed(func(tc bridge.TerminalClosed) {
		select {
		case closed <- tc:
		default:
		}
	})
	defer cancel()

	sh := a.newShell(path)
	res, err := sh.Run(cmd.Context(), source)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Script: %s\n", res.ScriptPath)

	if runNoWait {
		return nil
	}

	select {
	case tc := <-closed:
		sh.HandleTerminalClosed(tc)
		return nil
	case <-cmd.Context().Done():
		return cmd.Context().Err()
	}
}

func runTranslate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	source, err := a.store.Read(args[0])
	if err != nil {
		return err
	}
	cred, err := a.creds.Credential()
	if err != nil {
		return fmt.Errorf("%w: set %s in the environment or %s", err, a.cfg.Model.APIKeyEnv, a.cfg.Secrets.EnvFile)
	}

	code, err := a.translator.Translate(cmd.Context(), cred, source)
	if err != nil {
		return err
	}

	if translateOut == "" {
		fmt.Fprintln(cmd.OutOrStdout(), code)
		return nil
	}
	res := a.store.Write(translateOut, code)
	if res.Err != nil {
		return res.Err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Script written to %s\n", res.Path)
	return nil
}
