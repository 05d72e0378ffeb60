package shell

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Level tags an activity log entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelAI      Level = "ai"
)

// Entry is one timestamped line of the activity log.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

// String renders the entry as "[15:04:05] message".
func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format(time.TimeOnly), e.Message)
}

// Status is the one-line status bar message.
type Status struct {
	Message string
	Level   Level
}

// State is everything the UI remembers between operations.
type State struct {
	// Path is where the buffer was last opened from or saved to. Empty for
	// a new buffer.
	Path string
	// Filename is the tab name and the stem source for generated scripts.
	Filename string
	// LastGenerated is the most recent translated script.
	LastGenerated string
	// LastScriptPath is where LastGenerated was written.
	LastScriptPath string
	// Running counts launches that have not reported closure.
	Running int
	Status  Status
	Log     []Entry
}

// OutputLayout describes where generated scripts go:
// <Dir>/<stem><Suffix><Ext>.
type OutputLayout struct {
	Dir    string
	Suffix string
	Ext    string
}

// DefaultOutputLayout is interpreted_files/<stem>Processed.py.
func DefaultOutputLayout() OutputLayout {
	return OutputLayout{Dir: "interpreted_files", Suffix: "Processed", Ext: ".py"}
}

// GeneratedScriptPath maps an editor filename to its generated script path.
// The stem is the base name with its last extension removed, so "demo.nl"
// and "demo" both map to interpreted_files/demoProcessed.py.
func (o OutputLayout) GeneratedScriptPath(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(o.Dir, stem+o.Suffix+o.Ext)
}
