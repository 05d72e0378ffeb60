package launcher

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/util"
)

// Command is a fully-escaped process description. Args are passed to the OS
// verbatim; no shell re-parses them unless Name is itself a shell.
type Command struct {
	Name string
	Args []string
	// NewConsole asks Windows to give the child its own console window.
	NewConsole bool
}

// String renders the command for logs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Strategy turns a script path into the command that opens a terminal
// running it. Implementations must not touch the filesystem or spawn anything.
type Strategy interface {
	Name() string
	Command(scriptPath string) (Command, error)
}

// Settings feeds ForPlatform.
type Settings struct {
	Interpreter  string
	Terminal     string
	WindowsShell string
}

// ForPlatform selects the strategy for goos.
func ForPlatform(goos string, s Settings) Strategy {
	if goos == "windows" {
		return &WindowsStrategy{Shell: s.WindowsShell, Interpreter: s.Interpreter}
	}
	return &TerminalStrategy{Terminal: s.Terminal, Interpreter: s.Interpreter}
}

// Default selects the strategy for the running platform.
func Default(s Settings) Strategy {
	return ForPlatform(runtime.GOOS, s)
}

func checkScriptPath(scriptPath string) error {
	if strings.TrimSpace(scriptPath) == "" {
		return fmt.Errorf("%w: script path is empty", errors.ErrInvalidInput)
	}
	if strings.ContainsAny(scriptPath, "\x00\r\n") {
		return fmt.Errorf("%w: script path contains control characters", errors.ErrInvalidInput)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Windows
// -----------------------------------------------------------------------------

// WindowsStrategy opens a new PowerShell console that stays open after the
// script exits:
//
//	powershell.exe -NoExit -Command "& 'python' 'C:\a b\s.py'"
//
// Both the interpreter and the path are PowerShell single-quoted literals, so
// spaces, $ and backticks are inert.
type WindowsStrategy struct {
	Shell       string
	Interpreter string
}

func (s *WindowsStrategy) Name() string { return "windows" }

func (s *WindowsStrategy) Command(scriptPath string) (Command, error) {
	if err := checkScriptPath(scriptPath); err != nil {
		return Command{}, err
	}
	shell := s.Shell
	if shell == "" {
		shell = "powershell.exe"
	}
	interp := s.Interpreter
	if interp == "" {
		interp = "python"
	}

	script := fmt.Sprintf("& %s %s", util.QuotePowerShell(interp), util.QuotePowerShell(scriptPath))
	return Command{
		Name:       shell,
		Args:       []string{"-NoExit", "-Command", script},
		NewConsole: true,
	}, nil
}

// -----------------------------------------------------------------------------
// Terminal emulator (everything else)
// -----------------------------------------------------------------------------

// keepOpenScript runs "$1" "$2", reports the status and waits for Enter.
// The interpreter and script path arrive as positional parameters and are
// never spliced into the script text.
const keepOpenScript = `"$1" "$2"; status=$?; printf '\n[exited with status %s, press Enter to close]' "$status"; read _`

// TerminalStrategy invokes a terminal emulator directly:
//
//	xterm -e sh -c '<keepOpenScript>' codeblink python3 /path/to/script.py
type TerminalStrategy struct {
	Terminal    string
	Interpreter string
}

func (s *TerminalStrategy) Name() string { return "terminal" }

func (s *TerminalStrategy) Command(scriptPath string) (Command, error) {
	if err := checkScriptPath(scriptPath); err != nil {
		return Command{}, err
	}
	term := s.Terminal
	if term == "" {
		term = "xterm"
	}
	interp := s.Interpreter
	if interp == "" {
		interp = "python3"
	}

	args := append([]string{}, execFlags(term)...)
	args = append(args, "sh", "-c", keepOpenScript, "codeblink", interp, scriptPath)
	return Command{Name: term, Args: args}, nil
}

// execFlags returns the arguments that make term run a program.
func execFlags(term string) []string {
	switch filepath.Base(term) {
	case "gnome-terminal", "kgx", "tilix":
		return []string{"--"}
	case "xfce4-terminal", "mate-terminal":
		return []string{"-x"}
	case "wezterm":
		return []string{"start", "--"}
	case "kitty", "foot":
		return nil
	default:
		// xterm, urxvt, konsole, alacritty, terminator, st ...
		return []string{"-e"}
	}
}
