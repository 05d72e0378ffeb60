package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Rhishavhere/codeblink/internal/bridge"
	"github.com/Rhishavhere/codeblink/internal/config"
	"github.com/Rhishavhere/codeblink/internal/dialog"
	"github.com/Rhishavhere/codeblink/internal/event"
	"github.com/Rhishavhere/codeblink/internal/filestore"
	"github.com/Rhishavhere/codeblink/internal/launcher"
	"github.com/Rhishavhere/codeblink/internal/llm"
	"github.com/Rhishavhere/codeblink/internal/logging"
	"github.com/Rhishavhere/codeblink/internal/secret"
	"github.com/Rhishavhere/codeblink/internal/shell"
)

// app is the component graph shared by the commands.
type app struct {
	cfg        *config.Config
	logger     *logging.Logger
	creds      *secret.Provider
	store      *filestore.Store
	launcher   *launcher.Launcher
	surface    *bridge.Surface
	translator shell.Translator
}

// newTranslator builds the model client. Tests replace it.
var newTranslator = func(cfg *config.Config, logger *logging.Logger) shell.Translator {
	return llm.New(
		llm.WithLogger(logger),
		llm.WithModel(cfg.Model.Name),
		llm.WithTimeout(cfg.Model.Timeout()),
		llm.WithBaseURL(cfg.Model.BaseURL),
	)
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg)

	creds, err := secret.NewProvider(secret.Options{Key: cfg.Model.APIKeyEnv, EnvFile: cfg.Secrets.EnvFile})
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	if creds.Source() == secret.SourceNone {
		logger.Warn("model credential not configured", "env", cfg.Model.APIKeyEnv)
	}

	store := filestore.NewOS(cfg.Output.ResolveBaseDir(), filestore.WithLogger(logger))

	backend, err := dialog.DetectDefault(cfg.Dialog.Backend)
	if err != nil {
		logger.Warn("file dialogs unavailable", "error", err)
	}
	dialogs := dialog.New(backend, store,
		dialog.WithLogger(logger),
		dialog.WithFilters(dialogFilters(cfg.Editor.Filters)),
	)

	strategy := launcher.Default(launcher.Settings{
		Interpreter:  cfg.Launcher.ResolveInterpreter(),
		Terminal:     cfg.Launcher.Terminal,
		WindowsShell: cfg.Launcher.WindowsShell,
	})
	l := launcher.New(strategy, launcher.WithLogger(logger))

	surface := bridge.New(creds, dialogs, store, l, bridge.WithLogger(logger))

	logger.Debug("components wired",
		"dialog_backend", dialogs.Backend(),
		"launch_strategy", strategy.Name(),
		"base_dir", cfg.Output.ResolveBaseDir(),
	)

	return &app{
		cfg:        cfg,
		logger:     logger,
		creds:      creds,
		store:      store,
		launcher:   l,
		surface:    surface,
		translator: newTranslator(cfg, logger),
	}, nil
}

// newLogger creates the file logger. Failure to create it never stops a command.
func newLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}

	rotationConfig := logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	}

	logger, err := logging.NewLogger(cfg.Logging.ResolveDir(), cfg.Logging.Level, rotationConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create logger: %v\n", err)
		return logging.NopLogger()
	}
	return logger
}

func dialogFilters(filters []config.FilterConfig) []dialog.Filter {
	out := make([]dialog.Filter, 0, len(filters))
	for _, f := range filters {
		out = append(out, dialog.Filter{Name: f.Name, Extensions: f.Extensions})
	}
	return out
}

// newShell starts a session on path, which may be empty for a new buffer.
func (a *app) newShell(path string) *shell.Shell {
	return shell.New(a.surface, a.translator,
		shell.WithLogger(a.logger),
		shell.WithBus(a.surface.Bus()),
		shell.WithOutputLayout(shell.OutputLayout{
			Dir:    a.cfg.Output.Dir,
			Suffix: a.cfg.Output.Suffix,
			Ext:    a.cfg.Output.Ext,
		}),
		shell.WithMaxLogEntries(a.cfg.TUI.MaxLogLines),
		shell.WithFilename(a.cfg.Editor.DefaultFilename),
		shell.WithPath(path),
	)
}

// echoLog prints activity log entries to w until the returned func is called.
func (a *app) echoLog(w io.Writer) (stop func()) {
	id := a.surface.Bus().Subscribe(event.TypeLogEntry, func(e event.Event) {
		if entry, ok := e.(event.LogEntryEvent); ok {
			fmt.Fprintf(w, "[%s] %s\n", entry.Timestamp().Format(time.TimeOnly), entry.Message)
		}
	})
	return func() { a.surface.Bus().Unsubscribe(id) }
}

func (a *app) close() {
	_ = a.logger.Close()
}
