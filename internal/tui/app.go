// Package tui is the terminal editor: a text area for the natural-language
// program, an activity log, and a status bar with the cursor position.
package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rhishavhere/codeblink/internal/bridge"
	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/event"
	"github.com/Rhishavhere/codeblink/internal/logging"
)

// TerminalNotifier reports launch completions.
type TerminalNotifier interface {
	OnTerminalClosed(fn func(bridge.TerminalClosed)) (cancel func())
}

// App wraps the Bubbletea program
type App struct {
	program  *tea.Program
	model    Model
	bus      *event.Bus
	notifier TerminalNotifier
	logger   *logging.Logger
}

// Option configures an App.
type Option func(*appOptions)

type appOptions struct {
	content     string
	lineNumbers bool
	logger      *logging.Logger
	programOpts []tea.ProgramOption
}

// WithContent preloads the editor.
func WithContent(content string) Option {
	return func(o *appOptions) { o.content = content }
}

// WithLineNumbers toggles the editor gutter.
func WithLineNumbers(on bool) Option {
	return func(o *appOptions) { o.lineNumbers = on }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *appOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProgramOptions passes extra options to tea.NewProgram.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(o *appOptions) { o.programOpts = append(o.programOpts, opts...) }
}

// New creates a new TUI application. bus carries the session's log entries;
// notifier delivers terminal closures. Either may be nil.
func New(ctx context.Context, session Session, bus *event.Bus, notifier TerminalNotifier, opts ...Option) *App {
	if session == nil {
		panic("tui: Session must not be nil")
	}
	o := appOptions{lineNumbers: true, logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{
		model:    newModel(ctx, session, o.content, o.lineNumbers),
		bus:      bus,
		notifier: notifier,
		logger:   o.logger.WithComponent("tui"),
	}
	a.program = tea.NewProgram(a.model, append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, o.programOpts...)...)
	return a
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer close(sigChan)
	defer signal.Stop(sigChan)

	go func() {
		if _, ok := <-sigChan; ok {
			a.program.Send(tea.Quit())
		}
	}()

	// Handlers may run on the event loop itself (Update calls into the
	// session), and Send blocks until the loop reads.
	if a.bus != nil {
		id := a.bus.Subscribe(event.TypeLogEntry, func(event.Event) {
			go a.program.Send(logEntryMsg{})
		})
		defer a.bus.Unsubscribe(id)
	}
	if a.notifier != nil {
		cancel := a.notifier.OnTerminalClosed(func(tc bridge.TerminalClosed) {
			go a.program.Send(terminalClosedMsg{closed: tc})
		})
		defer cancel()
	}

	a.logger.Debug("editor started")
	_, err := a.program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
