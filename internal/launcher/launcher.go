// Package launcher opens generated scripts in a new, visible terminal window
// and reports when that window's process ends.
//
// Every call to [Launcher.Launch] returns its own [Handle]. A handle yields
// exactly one [Outcome] and then closes, so concurrent launches never share
// completion state.
package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/logging"
)

// State is the lifecycle position of a single launch.
type State int32

const (
	StateIdle State = iota
	StateSpawning
	StateRunning
	StateExited
	StateSpawnFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpawning:
		return "spawning"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateSpawnFailed:
		return "spawn_failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateExited || s == StateSpawnFailed
}

// Request asks for one script to be run. An empty ID is filled with a UUID.
type Request struct {
	ID         string
	ScriptPath string
}

// Outcome is the single completion report of a launch.
// Err is non-nil only when the process never started.
type Outcome struct {
	RequestID  string
	ScriptPath string
	ExitCode   int
	Signal     string
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed reports whether the terminal could not be started.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Message is the human-readable summary shown in the activity log.
func (o Outcome) Message() string {
	switch {
	case o.Err != nil:
		return fmt.Sprintf("Failed to start terminal: %v", o.Err)
	case o.Signal != "":
		return fmt.Sprintf("Terminal closed (signal %s)", o.Signal)
	default:
		return fmt.Sprintf("Terminal closed (exit code %d)", o.ExitCode)
	}
}

// Handle tracks one launch.
type Handle struct {
	id         string
	scriptPath string
	state      atomic.Int32
	pid        atomic.Int64
	done       chan Outcome

	// started is closed once the spawn attempt resolves; spawnErr is set first.
	started  chan struct{}
	spawnErr error
}

func newHandle(id, scriptPath string) *Handle {
	return &Handle{
		id:         id,
		scriptPath: scriptPath,
		done:       make(chan Outcome, 1),
		started:    make(chan struct{}),
	}
}

// ID returns the request identifier.
func (h *Handle) ID() string { return h.id }

// ScriptPath returns the launched script.
func (h *Handle) ScriptPath() string { return h.scriptPath }

// State returns the current lifecycle state.
func (h *Handle) State() State { return State(h.state.Load()) }

// PID returns the terminal process ID, or 0 before it has started.
func (h *Handle) PID() int { return int(h.pid.Load()) }

// Done yields the outcome once and is then closed.
func (h *Handle) Done() <-chan Outcome { return h.done }

// Wait blocks until the launch completes or ctx is done. Cancelling ctx
// stops the wait only; the terminal keeps running.
func (h *Handle) Wait(ctx context.Context) (Outcome, error) {
	select {
	case o, ok := <-h.done:
		if !ok {
			return Outcome{}, fmt.Errorf("launch %s: outcome already consumed", h.id)
		}
		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Started blocks until the spawn attempt resolves or ctx is done. It returns
// the start failure, or nil once the terminal is running. The failure is
// also delivered as the handle's Outcome.
func (h *Handle) Started(ctx context.Context) error {
	select {
	case <-h.started:
		return h.spawnErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handle) setState(s State) { h.state.Store(int32(s)) }

func (h *Handle) resolveSpawn(err error) {
	h.spawnErr = err
	close(h.started)
}

// Launcher spawns terminals using a platform Strategy.
type Launcher struct {
	strategy Strategy
	logger   *logging.Logger
	wg       conc.WaitGroup
	active   atomic.Int64
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Launcher) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Launcher. It panics if strategy is nil.
func New(strategy Strategy, opts ...Option) *Launcher {
	if strategy == nil {
		panic("launcher.New: strategy is required")
	}
	l := &Launcher{
		strategy: strategy,
		logger:   logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.WithComponent("launcher")
	return l
}

// Strategy returns the platform strategy in use.
func (l *Launcher) Strategy() Strategy { return l.strategy }

// Active returns the number of launches that have not completed.
func (l *Launcher) Active() int { return int(l.active.Load()) }

// Launch starts the terminal for req in the background and returns
// immediately. Start failures are reported through the handle, never
// returned here; use [Handle.Started] to wait for the spawn attempt.
func (l *Launcher) Launch(req Request) *Handle {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	h := newHandle(req.ID, req.ScriptPath)
	l.active.Add(1)
	l.wg.Go(func() {
		defer l.active.Add(-1)
		defer func() {
			select {
			case <-h.started:
			default:
				h.resolveSpawn(errors.NewBridgeError("launch_script", errors.KindInternal, fmt.Errorf("launch %s aborted", h.id)))
			}
		}()
		l.run(h)
	})
	return h
}

// Wait blocks until every launch started so far has completed.
func (l *Launcher) Wait() {
	if r := l.wg.WaitAndRecover(); r != nil {
		l.logger.Error("launch goroutine panicked", "error", r.AsError())
	}
}

func (l *Launcher) run(h *Handle) {
	log := l.logger.WithLaunch(h.id)
	h.setState(StateSpawning)
	started := time.Now()

	c, err := l.strategy.Command(h.scriptPath)
	if err != nil {
		cause := fmt.Errorf("%w: %v", errors.ErrSpawnFailed, err)
		l.finish(h, Outcome{
			Err:       errors.NewBridgeError("launch_script", errors.KindSpawnFailure, cause).WithPath(h.scriptPath),
			StartedAt: started,
		}, log)
		return
	}

	cmd := exec.Command(c.Name, c.Args...)
	applyProcAttr(cmd, c)
	log.Debug("spawning terminal", "strategy", l.strategy.Name(), "command", c.String())

	if err := cmd.Start(); err != nil {
		cause := fmt.Errorf("%w: %s: %v", errors.ErrSpawnFailed, c.Name, err)
		l.finish(h, Outcome{
			Err:       errors.NewBridgeError("launch_script", errors.KindSpawnFailure, cause).WithPath(h.scriptPath),
			StartedAt: started,
		}, log)
		return
	}

	h.pid.Store(int64(cmd.Process.Pid))
	h.setState(StateRunning)
	h.resolveSpawn(nil)
	log.Info("terminal started", "pid", cmd.Process.Pid, "script", h.scriptPath)

	// A non-zero exit surfaces as *exec.ExitError; ProcessState holds the detail.
	_ = cmd.Wait()
	o := Outcome{StartedAt: started}
	if ps := cmd.ProcessState; ps != nil {
		o.ExitCode = ps.ExitCode()
		o.Signal = exitSignal(ps)
	}
	l.finish(h, o, log)
}

func (l *Launcher) finish(h *Handle, o Outcome, log *logging.Logger) {
	o.RequestID = h.id
	o.ScriptPath = h.scriptPath
	o.FinishedAt = time.Now()

	if o.Err != nil {
		h.setState(StateSpawnFailed)
		h.resolveSpawn(o.Err)
		log.Warn("terminal failed to start", "error", o.Err)
	} else {
		h.setState(StateExited)
		log.Info("terminal closed", "exit_code", o.ExitCode, "signal", o.Signal,
			"duration", o.FinishedAt.Sub(o.StartedAt).String())
	}

	h.done <- o
	close(h.done)
}
