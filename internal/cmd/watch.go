package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/logging"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Run a file again every time it is saved",
	Long: `Watch a natural-language file and translate and launch it each time it
changes on disk. Every run opens its own terminal window.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var (
	watchDebounce time.Duration
	watchInitial  bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "Quiet period before a change triggers a run")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "Run once at startup before waiting for changes")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	path := a.store.Resolve(args[0])
	if !a.store.Exists(path) {
		return fmt.Errorf("%s does not exist", path)
	}

	out := cmd.OutOrStdout()
	stop := a.echoLog(out)
	defer stop()

	sh := a.newShell(path)
	cancel := a.surface.OnTerminalClosed(sh.HandleTerminalClosed)
	defer cancel()

	ctx := cmd.Context()
	runOnce := func() {
		source, err := a.store.Read(path)
		if err != nil {
			fmt.Fprintf(out, "read failed: %v\n", err)
			return
		}
		// Failures are already in the activity log.
		_, _ = sh.Run(ctx, source)
	}

	if watchInitial {
		runOnce()
	}
	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", path)

	err = watchFile(ctx, path, watchDebounce, a.logger, runOnce)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchFile calls onChange after path is written and then left alone for
// debounce. The parent directory is watched so editors that save by
// renaming a temp file over path are seen too.
func watchFile(ctx context.Context, path string, debounce time.Duration, logger *logging.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	// Debounce events - many editors create multiple events for a single save
	debounceTimer := time.NewTimer(debounce)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	defer debounceTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			debounceTimer.Reset(debounce)

		case <-debounceTimer.C:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
