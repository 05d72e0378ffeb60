package dialog

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/util"
)

// Filter is a named group of extensions. "*" matches every file.
type Filter struct {
	Name       string
	Extensions []string
}

func (f Filter) matchesAll() bool {
	for _, ext := range f.Extensions {
		if ext == "*" {
			return true
		}
	}
	return false
}

// Command is a picker invocation.
type Command struct {
	Name string
	Args []string
}

// Backend builds picker commands for one native dialog tool. A backend
// prints the chosen path on stdout. IsCancel reports whether a non-zero exit
// means the user dismissed the picker rather than the tool failing.
type Backend interface {
	Name() string
	Executable() string
	OpenCommand(title string, filters []Filter) Command
	SaveCommand(title, defaultName string, filters []Filter) Command
	IsCancel(res RunResult) bool
}

// Backends returns every known backend keyed by name.
func Backends() map[string]Backend {
	return map[string]Backend{
		"zenity":     Zenity{},
		"kdialog":    KDialog{},
		"osascript":  AppleScript{},
		"powershell": PowerShell{},
	}
}

// Detect picks a backend for goos. A non-empty preferred name must be
// installed; otherwise the platform's candidates are tried in order.
func Detect(goos, preferred string, lookPath func(string) (string, error)) (Backend, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	all := Backends()

	if preferred != "" {
		b, ok := all[preferred]
		if !ok {
			return nil, fmt.Errorf("%w: unknown backend %q", errors.ErrDialogUnavailable, preferred)
		}
		if _, err := lookPath(b.Executable()); err != nil {
			return nil, fmt.Errorf("%w: %s not found", errors.ErrDialogUnavailable, b.Executable())
		}
		return b, nil
	}

	var candidates []string
	switch goos {
	case "windows":
		candidates = []string{"powershell"}
	case "darwin":
		candidates = []string{"osascript", "zenity"}
	default:
		candidates = []string{"zenity", "kdialog"}
	}
	for _, name := range candidates {
		b := all[name]
		if _, err := lookPath(b.Executable()); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: tried %s", errors.ErrDialogUnavailable, strings.Join(candidates, ", "))
}

// DetectDefault runs Detect for the current platform.
func DetectDefault(preferred string) (Backend, error) {
	return Detect(runtime.GOOS, preferred, nil)
}

// -----------------------------------------------------------------------------
// zenity (GTK)
// -----------------------------------------------------------------------------

// Zenity drives the GTK file chooser.
type Zenity struct{}

func (Zenity) Name() string                { return "zenity" }
func (Zenity) Executable() string          { return "zenity" }
func (Zenity) IsCancel(res RunResult) bool { return res.ExitCode == 1 }

func (z Zenity) OpenCommand(title string, filters []Filter) Command {
	args := []string{"--file-selection", "--title=" + title}
	return Command{Name: z.Executable(), Args: append(args, zenityFilters(filters)...)}
}

func (z Zenity) SaveCommand(title, defaultName string, filters []Filter) Command {
	args := []string{"--file-selection", "--save", "--confirm-overwrite", "--title=" + title}
	if defaultName != "" {
		args = append(args, "--filename="+defaultName)
	}
	return Command{Name: z.Executable(), Args: append(args, zenityFilters(filters)...)}
}

func zenityFilters(filters []Filter) []string {
	args := make([]string, 0, len(filters))
	for _, f := range filters {
		args = append(args, fmt.Sprintf("--file-filter=%s | %s", f.Name, strings.Join(globs(f), " ")))
	}
	return args
}

// -----------------------------------------------------------------------------
// kdialog (KDE)
// -----------------------------------------------------------------------------

// KDialog drives the KDE file chooser.
type KDialog struct{}

func (KDialog) Name() string                { return "kdialog" }
func (KDialog) Executable() string          { return "kdialog" }
func (KDialog) IsCancel(res RunResult) bool { return res.ExitCode == 1 }

func (k KDialog) OpenCommand(title string, filters []Filter) Command {
	return Command{Name: k.Executable(), Args: []string{"--title", title, "--getopenfilename", ".", kdialogFilter(filters)}}
}

func (k KDialog) SaveCommand(title, defaultName string, filters []Filter) Command {
	start := defaultName
	if start == "" {
		start = "."
	}
	return Command{Name: k.Executable(), Args: []string{"--title", title, "--getsavefilename", start, kdialogFilter(filters)}}
}

func kdialogFilter(filters []Filter) string {
	lines := make([]string, 0, len(filters))
	for _, f := range filters {
		lines = append(lines, fmt.Sprintf("%s (%s)", f.Name, strings.Join(globs(f), " ")))
	}
	return strings.Join(lines, "\n")
}

// -----------------------------------------------------------------------------
// osascript (macOS)
// -----------------------------------------------------------------------------

// AppleScript drives the macOS chooser through osascript. osascript exits 1
// for every script error; a dismissed dialog is error -128.
type AppleScript struct{}

func (AppleScript) Name() string       { return "osascript" }
func (AppleScript) Executable() string { return "osascript" }

func (AppleScript) IsCancel(res RunResult) bool {
	return res.ExitCode == 1 && strings.Contains(res.Stderr, "(-128)")
}

func (a AppleScript) OpenCommand(title string, filters []Filter) Command {
	script := fmt.Sprintf("POSIX path of (choose file with prompt %s%s)", appleString(title), appleTypes(filters))
	return Command{Name: a.Executable(), Args: []string{"-e", script}}
}

func (a AppleScript) SaveCommand(title, defaultName string, _ []Filter) Command {
	script := fmt.Sprintf("POSIX path of (choose file name with prompt %s", appleString(title))
	if defaultName != "" {
		script += " default name " + appleString(defaultName)
	}
	script += ")"
	return Command{Name: a.Executable(), Args: []string{"-e", script}}
}

// appleTypes restricts the chooser unless some filter accepts everything.
func appleTypes(filters []Filter) string {
	var exts []string
	for _, f := range filters {
		if f.matchesAll() {
			return ""
		}
		for _, ext := range f.Extensions {
			exts = append(exts, appleString(ext))
		}
	}
	if len(exts) == 0 {
		return ""
	}
	return " of type {" + strings.Join(exts, ", ") + "}"
}

func appleString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// -----------------------------------------------------------------------------
// PowerShell (Windows Forms)
// -----------------------------------------------------------------------------

// PowerShell shows a Windows Forms dialog. Cancelling prints nothing and
// exits 0, so every non-zero exit is a failure.
type PowerShell struct{}

func (PowerShell) Name() string            { return "powershell" }
func (PowerShell) Executable() string      { return "powershell.exe" }
func (PowerShell) IsCancel(RunResult) bool { return false }

const psDialogScript = `Add-Type -AssemblyName System.Windows.Forms; ` +
	`$d = New-Object System.Windows.Forms.%s; $d.Title = %s; $d.Filter = %s; %s` +
	`if ($d.ShowDialog() -eq [System.Windows.Forms.DialogResult]::OK) { [Console]::Out.Write($d.FileName) }`

func (p PowerShell) OpenCommand(title string, filters []Filter) Command {
	return p.command("OpenFileDialog", title, "", filters)
}

func (p PowerShell) SaveCommand(title, defaultName string, filters []Filter) Command {
	return p.command("SaveFileDialog", title, defaultName, filters)
}

func (p PowerShell) command(kind, title, defaultName string, filters []Filter) Command {
	extra := ""
	if defaultName != "" {
		extra = "$d.FileName = " + util.QuotePowerShell(defaultName) + "; "
	}
	script := fmt.Sprintf(psDialogScript, kind,
		util.QuotePowerShell(title), util.QuotePowerShell(winFilter(filters)), extra)
	return Command{Name: p.Executable(), Args: []string{"-NoProfile", "-STA", "-Command", script}}
}

func winFilter(filters []Filter) string {
	parts := make([]string, 0, len(filters)*2)
	for _, f := range filters {
		g := globs(f)
		if f.matchesAll() {
			g = []string{"*.*"}
		}
		pattern := strings.Join(g, ";")
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Name, pattern), pattern)
	}
	return strings.Join(parts, "|")
}

// globs turns extensions into shell-style patterns.
func globs(f Filter) []string {
	out := make([]string, 0, len(f.Extensions))
	for _, ext := range f.Extensions {
		if ext == "*" {
			out = append(out, "*")
			continue
		}
		out = append(out, "*."+ext)
	}
	return out
}
