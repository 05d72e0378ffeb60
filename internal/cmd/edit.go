package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/tui"
)

// Smallest terminal the editor layout renders in.
const (
	minEditWidth  = 60
	minEditHeight = 15
)

var editCmd = &cobra.Command{
	Use:   "edit [file]",
	Short: "Open the editor",
	Long: `Open the terminal editor on file, or on a new buffer.

A file that does not exist yet is created on the first save.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("the editor needs an interactive terminal; use 'codeblink run' instead")
	}
	if w, h, err := term.GetSize(fd); err == nil && (w < minEditWidth || h < minEditHeight) {
		return fmt.Errorf("terminal is %dx%d, the editor needs at least %dx%d", w, h, minEditWidth, minEditHeight)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var path, content string
	if len(args) == 1 {
		path = a.store.Resolve(args[0])
		content, err = a.store.Read(path)
		if err != nil && errors.KindOf(err) != errors.KindNotFound {
			return err
		}
	}

	sh := a.newShell(path)
	editor := tui.New(cmd.Context(), sh, a.surface.Bus(), a.surface,
		tui.WithContent(content),
		tui.WithLineNumbers(a.cfg.TUI.ShowLineNumbers),
		tui.WithLogger(a.logger),
	)
	return editor.Run()
}
