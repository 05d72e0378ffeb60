// Package shell owns the editor session: the current file, the last
// generated script and the activity log. It drives the bridge the way the
// UI does and never touches the host directly.
package shell

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Rhishavhere/codeblink/internal/bridge"
	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/event"
	"github.com/Rhishavhere/codeblink/internal/logging"
	"github.com/Rhishavhere/codeblink/internal/secret"
)

// Bridge is the privileged surface the shell calls.
type Bridge interface {
	GetCredential() bridge.GetCredentialResponse
	OpenTextFile(ctx context.Context) bridge.OpenTextFileResponse
	ChooseSavePath(ctx context.Context, req bridge.ChooseSavePathRequest) bridge.ChooseSavePathResponse
	WriteFile(req bridge.WriteFileRequest) bridge.WriteFileResponse
	LaunchScript(req bridge.LaunchScriptRequest) bridge.LaunchScriptResponse
}

// Translator converts editor text to a script.
type Translator interface {
	Translate(ctx context.Context, cred secret.Credential, source string) (string, error)
}

// RunResult describes a successful run.
type RunResult struct {
	Code       string
	ScriptPath string
	LaunchID   string
}

// Shell is safe for concurrent use.
type Shell struct {
	bridge     Bridge
	translator Translator
	bus        *event.Bus
	layout     OutputLayout
	maxLog     int
	logger     *logging.Logger
	now        func() time.Time

	mu    sync.Mutex
	state State
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Shell) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBus mirrors log entries and file activity onto bus.
func WithBus(bus *event.Bus) Option {
	return func(s *Shell) {
		s.bus = bus
	}
}

// WithOutputLayout overrides DefaultOutputLayout.
func WithOutputLayout(layout OutputLayout) Option {
	return func(s *Shell) {
		s.layout = layout
	}
}

// WithMaxLogEntries caps the activity log. Zero keeps everything.
func WithMaxLogEntries(n int) Option {
	return func(s *Shell) {
		s.maxLog = n
	}
}

// WithFilename sets the name of the initial buffer.
func WithFilename(name string) Option {
	return func(s *Shell) {
		if name != "" {
			s.state.Filename = name
		}
	}
}

// WithPath starts the session on an existing file.
func WithPath(path string) Option {
	return func(s *Shell) {
		if path != "" {
			s.state.Path = path
			s.state.Filename = filepath.Base(path)
		}
	}
}

// WithClock replaces time.Now for log timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Shell) {
		if now != nil {
			s.now = now
		}
	}
}

// DefaultFilename names a new buffer.
const DefaultFilename = "untitled.nl"

// New creates a Shell. It panics if b or tr is nil.
func New(b Bridge, tr Translator, opts ...Option) *Shell {
	if b == nil {
		panic("shell: Bridge must not be nil")
	}
	if tr == nil {
		panic("shell: Translator must not be nil")
	}
	s := &Shell{
		bridge:     b,
		translator: tr,
		layout:     DefaultOutputLayout(),
		logger:     logging.NopLogger(),
		now:        time.Now,
		state:      State{Filename: DefaultFilename, Status: Status{Message: "Ready"}},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("shell")
	return s
}

// Snapshot returns a copy of the current state.
func (s *Shell) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Log = append([]Entry(nil), s.state.Log...)
	return st
}

// Filename returns the current tab name.
func (s *Shell) Filename() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Filename
}

// LastGenerated returns the most recent script, or ErrNotFound before the
// first successful run.
func (s *Shell) LastGenerated() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.LastGenerated == "" {
		return "", fmt.Errorf("%w: no generated code yet, run the program first", errors.ErrNotFound)
	}
	return s.state.LastGenerated, nil
}

// GeneratedScriptPath returns where the current buffer's script is written.
func (s *Shell) GeneratedScriptPath() string {
	return s.layout.GeneratedScriptPath(s.Filename())
}

// ClearLog empties the activity log.
func (s *Shell) ClearLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Log = nil
}

// Run translates source, writes the script next to the output layout and
// launches it. Closure of the terminal is reported later through
// HandleTerminalClosed.
func (s *Shell) Run(ctx context.Context, source string) (RunResult, error) {
	cred := s.bridge.GetCredential()
	if cred.Error != nil {
		s.fail("API key not found", "Error: %s", cred.Error.Message)
		return RunResult{}, faultError("run", cred.Error)
	}
	if strings.TrimSpace(source) == "" {
		s.fail("Editor is empty", "Error: No code to execute")
		return RunResult{}, errors.NewBridgeError("run", errors.KindInvalidInput, errors.ErrEmptyEditor)
	}

	s.setStatus("Processing natural language...", LevelInfo)
	s.appendLog(LevelAI, "Starting AI interpretation...")

	code, err := s.translator.Translate(ctx, secret.Credential(cred.Credential), strings.TrimSpace(source))
	if err != nil {
		s.fail("Processing failed", "Error: %v", err)
		return RunResult{}, err
	}
	s.mu.Lock()
	s.state.LastGenerated = code
	s.mu.Unlock()
	s.appendLog(LevelSuccess, "AI interpretation complete!")

	target := s.GeneratedScriptPath()
	written := s.bridge.WriteFile(bridge.WriteFileRequest{Path: target, Content: code})
	if written.Error != nil {
		s.fail("Processing failed", "Error: %s", written.Error.Message)
		return RunResult{}, faultError("run", written.Error)
	}
	s.mu.Lock()
	s.state.LastScriptPath = written.Path
	s.mu.Unlock()
	s.publish(event.NewScriptGeneratedEvent(s.Filename(), written.Path, len(code)))

	s.appendLog(LevelAI, "Launching script in a new terminal window...")
	// Counted before the call: the terminal may close before LaunchScript returns.
	s.mu.Lock()
	s.state.Running++
	s.mu.Unlock()
	launched := s.bridge.LaunchScript(bridge.LaunchScriptRequest{Path: written.Path})
	if launched.Error != nil {
		s.mu.Lock()
		s.state.Running--
		s.mu.Unlock()
		s.fail("Launch failed", "Error: %s", launched.Error.Message)
		return RunResult{}, faultError("run", launched.Error)
	}
	s.setStatus("Execution command sent to external terminal", LevelSuccess)
	s.logger.WithLaunch(launched.LaunchID).Info("run launched", "script", written.Path)

	return RunResult{Code: code, ScriptPath: written.Path, LaunchID: launched.LaunchID}, nil
}

// HandleTerminalClosed records the completion of a started launch.
func (s *Shell) HandleTerminalClosed(tc bridge.TerminalClosed) {
	s.mu.Lock()
	if s.state.Running > 0 {
		s.state.Running--
	}
	s.mu.Unlock()

	s.appendLog(LevelInfo, tc.Message)
}

// Open asks for a file and makes it the current buffer. ok is false when
// the user cancelled.
func (s *Shell) Open(ctx context.Context) (content string, ok bool, err error) {
	s.setStatus("Opening file...", LevelInfo)

	resp := s.bridge.OpenTextFile(ctx)
	switch {
	case resp.Error != nil:
		s.fail("Failed to open file.", "Error opening file: %s", resp.Error.Message)
		return "", false, faultError("open", resp.Error)
	case resp.Cancelled:
		s.setStatus("Open canceled.", LevelInfo)
		return "", false, nil
	}

	s.mu.Lock()
	s.state.Path = resp.Path
	s.state.Filename = filepath.Base(resp.Path)
	s.mu.Unlock()

	s.setStatus("File opened successfully!", LevelSuccess)
	s.appendLog(LevelSuccess, "File opened: "+resp.Path)
	s.publish(event.NewFileOpenedEvent(resp.Path))
	return resp.Content, true, nil
}

// Save writes content to the current path. With saveAs, or when the buffer
// has never been saved, the save picker chooses the path first and the
// current filename follows it. ok is false when the user cancelled.
func (s *Shell) Save(ctx context.Context, content string, saveAs bool) (path string, ok bool, err error) {
	s.setStatus("Saving file...", LevelInfo)

	s.mu.Lock()
	path, name := s.state.Path, s.state.Filename
	s.mu.Unlock()

	if saveAs || path == "" {
		chosen := s.bridge.ChooseSavePath(ctx, bridge.ChooseSavePathRequest{DefaultName: name})
		switch {
		case chosen.Error != nil:
			s.fail("Failed to save file.", "Error saving file: %s", chosen.Error.Message)
			return "", false, faultError("save", chosen.Error)
		case chosen.Cancelled:
			s.setStatus("Save canceled.", LevelInfo)
			return "", false, nil
		}
		path = chosen.Path
	}

	written := s.bridge.WriteFile(bridge.WriteFileRequest{Path: path, Content: content})
	if written.Error != nil {
		s.fail("Failed to save file.", "Error saving file: %s", written.Error.Message)
		return "", false, faultError("save", written.Error)
	}

	s.mu.Lock()
	s.state.Path = written.Path
	s.state.Filename = filepath.Base(written.Path)
	s.mu.Unlock()

	s.setStatus("File saved successfully!", LevelSuccess)
	s.appendLog(LevelSuccess, "File saved to: "+written.Path)
	s.publish(event.NewFileSavedEvent(written.Path))
	return written.Path, true, nil
}

// Log appends a message to the activity log.
func (s *Shell) Log(level Level, format string, args ...any) {
	s.appendLog(level, fmt.Sprintf(format, args...))
}

func (s *Shell) fail(status, format string, args ...any) {
	s.setStatus(status, LevelError)
	s.appendLog(LevelError, fmt.Sprintf(format, args...))
}

func (s *Shell) setStatus(msg string, level Level) {
	s.mu.Lock()
	s.state.Status = Status{Message: msg, Level: level}
	s.mu.Unlock()
}

func (s *Shell) appendLog(level Level, msg string) {
	s.mu.Lock()
	s.state.Log = append(s.state.Log, Entry{Time: s.now(), Level: level, Message: msg})
	if s.maxLog > 0 && len(s.state.Log) > s.maxLog {
		s.state.Log = append([]Entry(nil), s.state.Log[len(s.state.Log)-s.maxLog:]...)
	}
	s.mu.Unlock()

	s.logger.Debug("activity", "level", string(level), "message", msg)
	s.publish(event.NewLogEntryEvent(string(level), msg))
}

// faultError keeps the fault's kind visible to errors.KindOf.
func faultError(op string, f *bridge.Fault) error {
	return errors.NewBridgeError(op, f.Kind, f)
}

func (s *Shell) publish(e event.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
