package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns an identifier of the form "category.action".
	EventType() string
	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type names.
const (
	TypeTerminalClosed      = "terminal.closed"
	TypeTerminalSpawnFailed = "terminal.spawn_failed"
	TypeScriptGenerated     = "script.generated"
	TypeFileOpened          = "file.opened"
	TypeFileSaved           = "file.saved"
	TypeLogEntry            = "log.entry"
)

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// -----------------------------------------------------------------------------
// Terminal Events
// -----------------------------------------------------------------------------

// TerminalClosedEvent is emitted once when a launched terminal exits.
type TerminalClosedEvent struct {
	baseEvent
	LaunchID   string
	ScriptPath string
	ExitCode   int
	Signal     string // empty unless the process was killed by a signal
	Message    string
}

// NewTerminalClosedEvent creates a TerminalClosedEvent.
func NewTerminalClosedEvent(launchID, scriptPath string, exitCode int, signal, message string) TerminalClosedEvent {
	return TerminalClosedEvent{
		baseEvent:  newBaseEvent(TypeTerminalClosed),
		LaunchID:   launchID,
		ScriptPath: scriptPath,
		ExitCode:   exitCode,
		Signal:     signal,
		Message:    message,
	}
}

// TerminalSpawnFailedEvent is emitted instead of TerminalClosedEvent when
// the terminal never started.
type TerminalSpawnFailedEvent struct {
	baseEvent
	LaunchID   string
	ScriptPath string
	Kind       string
	Message    string
}

// NewTerminalSpawnFailedEvent creates a TerminalSpawnFailedEvent.
func NewTerminalSpawnFailedEvent(launchID, scriptPath, kind, message string) TerminalSpawnFailedEvent {
	return TerminalSpawnFailedEvent{
		baseEvent:  newBaseEvent(TypeTerminalSpawnFailed),
		LaunchID:   launchID,
		ScriptPath: scriptPath,
		Kind:       kind,
		Message:    message,
	}
}

// -----------------------------------------------------------------------------
// File Events
// -----------------------------------------------------------------------------

// ScriptGeneratedEvent is emitted after translated code is written to disk.
type ScriptGeneratedEvent struct {
	baseEvent
	SourceName string
	ScriptPath string
	Bytes      int
}

// NewScriptGeneratedEvent creates a ScriptGeneratedEvent.
func NewScriptGeneratedEvent(sourceName, scriptPath string, bytes int) ScriptGeneratedEvent {
	return ScriptGeneratedEvent{
		baseEvent:  newBaseEvent(TypeScriptGenerated),
		SourceName: sourceName,
		ScriptPath: scriptPath,
		Bytes:      bytes,
	}
}

// FileOpenedEvent is emitted when a file is loaded into the editor.
type FileOpenedEvent struct {
	baseEvent
	Path string
}

// NewFileOpenedEvent creates a FileOpenedEvent.
func NewFileOpenedEvent(path string) FileOpenedEvent {
	return FileOpenedEvent{baseEvent: newBaseEvent(TypeFileOpened), Path: path}
}

// FileSavedEvent is emitted when the editor buffer is saved.
type FileSavedEvent struct {
	baseEvent
	Path string
}

// NewFileSavedEvent creates a FileSavedEvent.
func NewFileSavedEvent(path string) FileSavedEvent {
	return FileSavedEvent{baseEvent: newBaseEvent(TypeFileSaved), Path: path}
}

// -----------------------------------------------------------------------------
// Activity Log
// -----------------------------------------------------------------------------

// LogEntryEvent mirrors a line appended to the activity log.
type LogEntryEvent struct {
	baseEvent
	Level   string
	Message string
}

// NewLogEntryEvent creates a LogEntryEvent.
func NewLogEntryEvent(level, message string) LogEntryEvent {
	return LogEntryEvent{baseEvent: newBaseEvent(TypeLogEntry), Level: level, Message: message}
}
