// Package errors provides the error taxonomy shared by every codeblink component.
//
// Everything that crosses the bridge boundary is classified into exactly one
// [Kind]. Privileged components return either a sentinel error (wrapped with
// context) or a [BridgeError]; [KindOf] recovers the kind from any error chain
// so callers never have to string-match.
//
// # Kinds
//
//   - KindCancelled: the user dismissed a dialog. Not a failure.
//   - KindNotFound: a file that was asked for does not exist.
//   - KindIOFailure: any other filesystem or picker fault.
//   - KindCredentialMissing: no API credential is configured.
//   - KindSpawnFailure: a terminal process could not be started.
//   - KindExternalService: the model service failed or answered malformed data.
//   - KindInvalidInput: the caller sent something unusable.
//   - KindInternal: anything unclassified (including recovered panics).
//
// # Usage
//
//	err := errors.NewBridgeError("write_file", errors.KindIOFailure, cause).WithPath(p)
//
//	if errors.IsCancelled(err) { ... }
//	switch errors.KindOf(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Kind classifies an error for presentation across the bridge.
type Kind string

const (
	KindCancelled         Kind = "cancelled"
	KindNotFound          Kind = "not_found"
	KindIOFailure         Kind = "io_failure"
	KindCredentialMissing Kind = "credential_missing"
	KindSpawnFailure      Kind = "spawn_failure"
	KindExternalService   Kind = "external_service_failure"
	KindInvalidInput      Kind = "invalid_input"
	KindInternal          Kind = "internal"
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	return string(k)
}

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityInfo is for outcomes that are reported but are not problems (cancellation).
	SeverityInfo Severity = iota
	// SeverityWarning is for recoverable problems caused by the environment.
	SeverityWarning
	// SeverityError is for failures of the requested operation.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrCancelled indicates the user dismissed a dialog.
	ErrCancelled = New("cancelled by user")
	// ErrNotFound indicates that a file does not exist.
	ErrNotFound = New("not found")
	// ErrIOFailure indicates a generic filesystem failure.
	ErrIOFailure = New("i/o failure")
	// ErrCredentialMissing indicates no API credential is configured.
	ErrCredentialMissing = New("api credential is not configured")
	// ErrSpawnFailed indicates a process could not be started.
	ErrSpawnFailed = New("process failed to start")
	// ErrExternalService indicates the model service call failed.
	ErrExternalService = New("model service failure")
	// ErrDialogUnavailable indicates no native file picker could be found.
	ErrDialogUnavailable = New("no file dialog backend available")
	// ErrEmptyEditor indicates there is no text to translate.
	ErrEmptyEditor = New("editor is empty")
	// ErrUnknownOperation indicates a bridge request named an operation outside the allowlist.
	ErrUnknownOperation = New("unknown bridge operation")
	// ErrInvalidInput indicates that request validation failed.
	ErrInvalidInput = New("invalid input")
)

// sentinelKinds maps sentinels to their kind. Order matters only for
// errors.Join chains that wrap several sentinels; the first match wins.
var sentinelKinds = []struct {
	err  error
	kind Kind
}{
	{ErrCancelled, KindCancelled},
	{ErrCredentialMissing, KindCredentialMissing},
	{ErrSpawnFailed, KindSpawnFailure},
	{ErrExternalService, KindExternalService},
	{ErrNotFound, KindNotFound},
	{fs.ErrNotExist, KindNotFound},
	{ErrDialogUnavailable, KindIOFailure},
	{ErrIOFailure, KindIOFailure},
	{ErrEmptyEditor, KindInvalidInput},
	{ErrUnknownOperation, KindInvalidInput},
	{ErrInvalidInput, KindInvalidInput},
}

// -----------------------------------------------------------------------------
// BridgeError
// -----------------------------------------------------------------------------

// BridgeError is the typed error produced at the privileged boundary.
//
// Example:
//
//	err := errors.NewBridgeError("write_file", errors.KindIOFailure, cause).WithPath("/tmp/x.py")
//	fmt.Println(err) // "write_file failed [path=/tmp/x.py] (io_failure): <cause>"
type BridgeError struct {
	Op   string
	Kind Kind
	Path string

	cause      error
	severity   Severity
	userFacing bool
}

// NewBridgeError creates a BridgeError for the named operation.
// Cancellation is created with info severity; everything else is an error.
func NewBridgeError(op string, kind Kind, cause error) *BridgeError {
	severity := SeverityError
	if kind == KindCancelled {
		severity = SeverityInfo
	}
	return &BridgeError{
		Op:         op,
		Kind:       kind,
		cause:      cause,
		severity:   severity,
		userFacing: kind != KindInternal,
	}
}

// WithPath adds a filesystem path to the error context.
func (e *BridgeError) WithPath(path string) *BridgeError {
	e.Path = path
	return e
}

// WithSeverity sets the error severity.
func (e *BridgeError) WithSeverity(s Severity) *BridgeError {
	e.severity = s
	return e
}

// Severity returns the error severity.
func (e *BridgeError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the message is safe to show in the UI.
func (e *BridgeError) IsUserFacing() bool {
	return e.userFacing
}

// Unwrap returns the underlying error.
func (e *BridgeError) Unwrap() error {
	return e.cause
}

// Error returns the formatted error message.
func (e *BridgeError) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(" failed")
	} else {
		sb.WriteString("operation failed")
	}
	if e.Path != "" {
		fmt.Fprintf(&sb, " [path=%s]", e.Path)
	}
	fmt.Fprintf(&sb, " (%s)", e.Kind)
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

// Is matches any *BridgeError target, then defers to the cause chain.
func (e *BridgeError) Is(target error) bool {
	if _, ok := target.(*BridgeError); ok {
		return true
	}
	return false
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// KindOf classifies err. A nil error has no kind and returns "".
// The outermost *BridgeError wins; otherwise sentinels are consulted and
// anything unrecognised is KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var be *BridgeError
	if As(err, &be) && be.Kind != "" {
		return be.Kind
	}
	for _, sk := range sentinelKinds {
		if Is(err, sk.err) {
			return sk.kind
		}
	}
	var pathErr *fs.PathError
	if As(err, &pathErr) {
		return KindIOFailure
	}
	return KindInternal
}

// IsCancelled reports whether err represents a user cancellation.
func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled
}

// IsUserFacing returns true if the error's message may be shown to the user.
// Internal errors are replaced with a generic message by the bridge.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var be *BridgeError
	if As(err, &be) {
		return be.IsUserFacing()
	}
	return KindOf(err) != KindInternal
}

// Classify wraps err in a BridgeError for op unless it already is one.
// A nil err returns nil.
func Classify(op string, err error) *BridgeError {
	if err == nil {
		return nil
	}
	var be *BridgeError
	if As(err, &be) {
		return be
	}
	return NewBridgeError(op, KindOf(err), err)
}
