package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rhishavhere/codeblink/internal/bridge"
)

// Messages

type runDoneMsg struct{ err error }

type openDoneMsg struct {
	content string
	ok      bool
	err     error
}

type saveDoneMsg struct {
	path string
	ok   bool
	err  error
}

type logEntryMsg struct{}

type terminalClosedMsg struct{ closed bridge.TerminalClosed }

// Session failures are already in the activity log, so the done messages
// only carry them for tests.

func runCmd(ctx context.Context, s Session, source string) tea.Cmd {
	return func() tea.Msg {
		_, err := s.Run(ctx, source)
		return runDoneMsg{err: err}
	}
}

func openCmd(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		content, ok, err := s.Open(ctx)
		return openDoneMsg{content: content, ok: ok, err: err}
	}
}

func saveCmd(ctx context.Context, s Session, content string, saveAs bool) tea.Cmd {
	return func() tea.Msg {
		path, ok, err := s.Save(ctx, content, saveAs)
		return saveDoneMsg{path: path, ok: ok, err: err}
	}
}
