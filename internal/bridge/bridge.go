package bridge

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/event"
	"github.com/Rhishavhere/codeblink/internal/launcher"
	"github.com/Rhishavhere/codeblink/internal/logging"
)

// Operation names. They double as the wire names used by the Dispatcher.
const (
	OpGetCredential  = "get_credential"
	OpOpenTextFile   = "open_text_file"
	OpChooseSavePath = "choose_save_path"
	OpWriteFile      = "write_file"
	OpLaunchScript   = "launch_script"
)

// EventTerminalClosed is the wire name of the completion event.
const EventTerminalClosed = "terminal_closed"

// Surface hosts the privileged components behind the five operations.
type Surface struct {
	creds    CredentialSource
	dialogs  Dialogs
	files    FileWriter
	launcher Launcher
	bus      *event.Bus
	logger   *logging.Logger

	relays conc.WaitGroup
}

// New creates a Surface.
//
// All component arguments must be non-nil. Passing nil will panic early to
// surface wiring bugs immediately. Without WithBus a private bus is created.
func New(creds CredentialSource, dialogs Dialogs, files FileWriter, l Launcher, opts ...Option) *Surface {
	if creds == nil {
		panic("bridge: CredentialSource must not be nil")
	}
	if dialogs == nil {
		panic("bridge: Dialogs must not be nil")
	}
	if files == nil {
		panic("bridge: FileWriter must not be nil")
	}
	if l == nil {
		panic("bridge: Launcher must not be nil")
	}

	cfg := &config{logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NopLogger()
	}
	if cfg.bus == nil {
		cfg.bus = event.NewBus(event.WithLogger(cfg.logger))
	}

	s := &Surface{
		creds:    creds,
		dialogs:  dialogs,
		files:    files,
		launcher: l,
		bus:      cfg.bus,
		logger:   cfg.logger.WithComponent("bridge"),
	}
	if cfg.notify != nil {
		s.OnTerminalClosed(cfg.notify)
	}
	return s
}

// Bus returns the bus completions are published on.
func (s *Surface) Bus() *event.Bus { return s.bus }

// GetCredential returns the configured credential or a CredentialMissing fault.
func (s *Surface) GetCredential() (resp GetCredentialResponse) {
	defer s.recoverOp(OpGetCredential, func(f *Fault) { resp = GetCredentialResponse{Error: f} })

	cred, err := s.creds.Credential()
	if err != nil {
		return GetCredentialResponse{Error: s.fault(OpGetCredential, err)}
	}
	return GetCredentialResponse{Credential: cred.Reveal()}
}

// OpenTextFile shows the open picker and returns the chosen file.
func (s *Surface) OpenTextFile(ctx context.Context) (resp OpenTextFileResponse) {
	defer s.recoverOp(OpOpenTextFile, func(f *Fault) { resp = OpenTextFileResponse{Error: f} })

	res, err := s.dialogs.OpenTextFile(ctx)
	switch {
	case errors.IsCancelled(err):
		return OpenTextFileResponse{Cancelled: true}
	case err != nil:
		return OpenTextFileResponse{Error: s.fault(OpOpenTextFile, err)}
	}
	return OpenTextFileResponse{Path: res.Path, Content: res.Content}
}

// ChooseSavePath shows the save picker. Nothing is written.
func (s *Surface) ChooseSavePath(ctx context.Context, req ChooseSavePathRequest) (resp ChooseSavePathResponse) {
	defer s.recoverOp(OpChooseSavePath, func(f *Fault) { resp = ChooseSavePathResponse{Error: f} })

	path, err := s.dialogs.ChooseSavePath(ctx, req.DefaultName)
	switch {
	case errors.IsCancelled(err):
		return ChooseSavePathResponse{Cancelled: true}
	case err != nil:
		return ChooseSavePathResponse{Error: s.fault(OpChooseSavePath, err)}
	}
	return ChooseSavePathResponse{Path: path}
}

// WriteFile replaces the file at req.Path, creating parent directories.
func (s *Surface) WriteFile(req WriteFileRequest) (resp WriteFileResponse) {
	defer s.recoverOp(OpWriteFile, func(f *Fault) { resp = WriteFileResponse{Error: f} })

	res := s.files.Write(req.Path, req.Content)
	if res.Err != nil {
		return WriteFileResponse{Error: s.fault(OpWriteFile, res.Err)}
	}
	return WriteFileResponse{Success: true, Path: res.Path}
}

// LaunchScript runs req.Path in a new terminal. It returns once the spawn
// attempt has resolved: a terminal that could not start is reported here as
// a SpawnFailure fault, and only a started launch is followed by exactly one
// TerminalClosed for its LaunchID.
func (s *Surface) LaunchScript(req LaunchScriptRequest) LaunchScriptResponse {
	resp, relay := s.launchScript(req)
	if relay != nil {
		relay()
	}
	return resp
}

// launchScript starts the launch without relaying its completion. relay is
// nil unless the terminal started; calling it begins the relay.
func (s *Surface) launchScript(req LaunchScriptRequest) (resp LaunchScriptResponse, relay func()) {
	defer s.recoverOp(OpLaunchScript, func(f *Fault) {
		resp, relay = LaunchScriptResponse{Error: f}, nil
	})

	h := s.launcher.Launch(launcher.Request{ID: uuid.NewString(), ScriptPath: req.Path})
	log := s.logger.WithLaunch(h.ID())
	if err := h.Started(context.Background()); err != nil {
		f := s.fault(OpLaunchScript, err)
		log.Warn("terminal failed to start", "path", req.Path, "kind", f.Kind)
		s.bus.Publish(event.NewTerminalSpawnFailedEvent(h.ID(), req.Path, string(f.Kind), f.Message))
		return LaunchScriptResponse{LaunchID: h.ID(), Error: f}, nil
	}

	log.Info("terminal started", "path", req.Path, "pid", h.PID())
	return LaunchScriptResponse{LaunchID: h.ID()}, func() {
		s.relays.Go(func() { s.relay(h) })
	}
}

// Wait blocks until every scheduled launch has reported its completion.
func (s *Surface) Wait() {
	if r := s.relays.WaitAndRecover(); r != nil {
		s.logger.Error("relay panicked", "error", r.AsError())
	}
}

// OnTerminalClosed registers fn for every completion of a started launch
// and returns a function that removes it.
func (s *Surface) OnTerminalClosed(fn func(TerminalClosed)) (cancel func()) {
	id := s.bus.Subscribe(event.TypeTerminalClosed, func(e event.Event) {
		if ev, ok := e.(event.TerminalClosedEvent); ok {
			fn(TerminalClosed{LaunchID: ev.LaunchID, Message: ev.Message, ExitCode: ev.ExitCode, Signal: ev.Signal})
		}
	})
	return func() { s.bus.Unsubscribe(id) }
}

func (s *Surface) relay(h *launcher.Handle) {
	for o := range h.Done() {
		if o.Failed() {
			// Start failures were already answered by LaunchScript.
			continue
		}
		s.bus.Publish(event.NewTerminalClosedEvent(o.RequestID, o.ScriptPath, o.ExitCode, o.Signal, o.Message()))
	}
}

// fault classifies err. Internal errors get a generic message.
func (s *Surface) fault(op string, err error) *Fault {
	be := errors.Classify(op, err)
	if be.Kind == errors.KindInternal || !be.IsUserFacing() {
		s.logger.WithOperation(op).Error("internal failure", "error", err)
		return &Fault{Kind: errors.KindInternal, Message: "internal error"}
	}
	s.logger.WithOperation(op).Debug("operation failed", "kind", be.Kind, "error", err)
	return &Fault{Kind: be.Kind, Message: err.Error()}
}

// recoverOp turns a panic in op into an Internal fault passed to set.
func (s *Surface) recoverOp(op string, set func(*Fault)) {
	if r := recover(); r != nil {
		s.logger.WithOperation(op).Error("operation panicked", "panic", fmt.Sprint(r))
		set(&Fault{Kind: errors.KindInternal, Message: "internal error"})
	}
}
