// Package dialog shows native open/save file pickers by shelling out to the
// platform's dialog tool and reads the chosen file through the file store.
//
// Dismissing a picker, or confirming it without a selection, is reported as
// errors.ErrCancelled and never as a failure.
package dialog

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/filestore"
	"github.com/Rhishavhere/codeblink/internal/logging"
)

const (
	openTitle = "Open Natural Language File"
	saveTitle = "Save Natural Language File"
)

// RunResult is what a picker process produced.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a picker command. It returns an error only when the
// command could not be run at all.
type Runner func(ctx context.Context, c Command) (RunResult, error)

// ExecRunner runs c with os/exec.
func ExecRunner(ctx context.Context, c Command) (RunResult, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := RunResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, err
	}
	return res, nil
}

// OpenResult is a successfully opened text file.
type OpenResult struct {
	Path    string
	Content string
}

// Gateway shows pickers and reads the selected file.
type Gateway struct {
	backend Backend
	store   *filestore.Store
	run     Runner
	filters []Filter
	logger  *logging.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithRunner replaces the process runner.
func WithRunner(run Runner) Option {
	return func(g *Gateway) {
		if run != nil {
			g.run = run
		}
	}
}

// WithFilters sets the extension groups offered by both pickers.
func WithFilters(filters []Filter) Option {
	return func(g *Gateway) {
		g.filters = filters
	}
}

// New creates a Gateway. A nil backend is allowed; every call then fails
// with ErrDialogUnavailable. It panics if store is nil.
func New(backend Backend, store *filestore.Store, opts ...Option) *Gateway {
	if store == nil {
		panic("dialog.New: store is required")
	}
	g := &Gateway{
		backend: backend,
		store:   store,
		run:     ExecRunner,
		logger:  logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.WithComponent("dialog")
	return g
}

// Available reports whether a picker backend is configured.
func (g *Gateway) Available() bool { return g.backend != nil }

// Backend returns the backend name, or "" when none is configured.
func (g *Gateway) Backend() string {
	if g.backend == nil {
		return ""
	}
	return g.backend.Name()
}

// OpenTextFile asks the user for a file and returns its path and content.
func (g *Gateway) OpenTextFile(ctx context.Context) (OpenResult, error) {
	const op = "open_text_file"
	if g.backend == nil {
		return OpenResult{}, errors.NewBridgeError(op, errors.KindIOFailure, errors.ErrDialogUnavailable)
	}

	path, err := g.pick(ctx, op, g.backend.OpenCommand(openTitle, g.filters))
	if err != nil {
		return OpenResult{}, err
	}

	content, err := g.store.Read(path)
	if err != nil {
		return OpenResult{}, errors.NewBridgeError(op, errors.KindOf(err), err).WithPath(path)
	}
	g.logger.Info("opened file", "path", path, "bytes", len(content))
	return OpenResult{Path: path, Content: content}, nil
}

// ChooseSavePath asks the user where to save, pre-filling defaultName.
func (g *Gateway) ChooseSavePath(ctx context.Context, defaultName string) (string, error) {
	const op = "choose_save_path"
	if g.backend == nil {
		return "", errors.NewBridgeError(op, errors.KindIOFailure, errors.ErrDialogUnavailable)
	}

	path, err := g.pick(ctx, op, g.backend.SaveCommand(saveTitle, defaultName, g.filters))
	if err != nil {
		return "", err
	}
	return g.store.Resolve(path), nil
}

func (g *Gateway) pick(ctx context.Context, op string, c Command) (string, error) {
	g.logger.Debug("showing picker", "backend", g.backend.Name(), "op", op)

	res, err := g.run(ctx, c)
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.NewBridgeError(op, errors.KindCancelled, fmt.Errorf("%w: %v", errors.ErrCancelled, ctx.Err()))
		}
		cause := fmt.Errorf("%w: %s: %v", errors.ErrDialogUnavailable, c.Name, err)
		return "", errors.NewBridgeError(op, errors.KindIOFailure, cause)
	}

	path := strings.TrimRight(res.Stdout, "\r\n")
	switch {
	case res.ExitCode != 0 && g.backend.IsCancel(res):
		return "", errors.NewBridgeError(op, errors.KindCancelled, errors.ErrCancelled)
	case res.ExitCode != 0:
		cause := fmt.Errorf("%w: %s exited %d: %s", errors.ErrIOFailure, c.Name, res.ExitCode, strings.TrimSpace(res.Stderr))
		return "", errors.NewBridgeError(op, errors.KindIOFailure, cause)
	case path == "":
		return "", errors.NewBridgeError(op, errors.KindCancelled, errors.ErrCancelled)
	}
	return path, nil
}
