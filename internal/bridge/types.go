package bridge

import (
	"context"

	"github.com/Rhishavhere/codeblink/internal/dialog"
	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/filestore"
	"github.com/Rhishavhere/codeblink/internal/launcher"
	"github.com/Rhishavhere/codeblink/internal/secret"
)

// CredentialSource supplies the model API credential.
type CredentialSource interface {
	Credential() (secret.Credential, error)
}

// Dialogs shows native file pickers.
type Dialogs interface {
	OpenTextFile(ctx context.Context) (dialog.OpenResult, error)
	ChooseSavePath(ctx context.Context, defaultName string) (string, error)
}

// FileWriter persists text files.
type FileWriter interface {
	Write(path, content string) filestore.Result
}

// Launcher starts scripts in a terminal window.
type Launcher interface {
	Launch(req launcher.Request) *launcher.Handle
}

// Fault is a classified failure safe to show in the UI.
type Fault struct {
	Kind    errors.Kind `json:"kind"`
	Message string      `json:"message"`
}

func (f *Fault) Error() string {
	return string(f.Kind) + ": " + f.Message
}

// GetCredentialResponse carries the credential or CredentialMissing.
type GetCredentialResponse struct {
	Credential string `json:"credential,omitempty"`
	Error      *Fault `json:"error,omitempty"`
}

// OpenTextFileResponse carries the opened file. Cancelled is set, with no
// Error, when the user dismissed the picker.
type OpenTextFileResponse struct {
	Path      string `json:"path,omitempty"`
	Content   string `json:"content,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
	Error     *Fault `json:"error,omitempty"`
}

// ChooseSavePathRequest pre-fills the save picker.
type ChooseSavePathRequest struct {
	DefaultName string `json:"default_name,omitempty"`
}

// ChooseSavePathResponse carries the chosen path or Cancelled.
type ChooseSavePathResponse struct {
	Path      string `json:"path,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
	Error     *Fault `json:"error,omitempty"`
}

// WriteFileRequest replaces the file at Path with Content.
type WriteFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// WriteFileResponse reports the resolved path on success.
type WriteFileResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
	Error   *Fault `json:"error,omitempty"`
}

// LaunchScriptRequest names the script to run.
type LaunchScriptRequest struct {
	Path string `json:"path"`
}

// LaunchScriptResponse returns once the terminal has started or failed to.
// A started launch completes later as a TerminalClosed for LaunchID.
type LaunchScriptResponse struct {
	LaunchID string `json:"launch_id"`
	Error    *Fault `json:"error,omitempty"`
}

// TerminalClosed is the single completion event of a launch that started.
type TerminalClosed struct {
	LaunchID string `json:"launch_id"`
	Message  string `json:"message"`
	ExitCode int    `json:"exit_code"`
	Signal   string `json:"signal,omitempty"`
}
