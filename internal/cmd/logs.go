package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Rhishavhere/codeblink/internal/config"
	"github.com/Rhishavhere/codeblink/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the codeblink debug log",
	Long: `View and filter the structured debug log.

Examples:
  # Show the last 50 entries
  codeblink logs

  # Follow the log while the editor runs in another terminal
  codeblink logs -f

  # Only launcher warnings and errors from the last hour
  codeblink logs --component launcher --level warn --since 1h

  # Everything about one launch
  codeblink logs --grep 5f0c2a`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsTail      int
	logsFollow    bool
	logsLevel     string
	logsSince     string
	logsGrep      string
	logsComponent string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of lines to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter logs matching pattern (regex)")
	logsCmd.Flags().StringVar(&logsComponent, "component", "", "Only show entries from this component (bridge, launcher, shell, ...)")
}

// logEntry represents a parsed JSON log line
type logEntry struct {
	Time      time.Time      `json:"time"`
	Level     string         `json:"level"`
	Msg       string         `json:"msg"`
	Component string         `json:"component,omitempty"`
	Op        string         `json:"op,omitempty"`
	LaunchID  string         `json:"launch_id,omitempty"`
	Extra     map[string]any `json:"-"`
}

// UnmarshalJSON keeps unknown attributes in Extra.
func (e *logEntry) UnmarshalJSON(data []byte) error {
	type alias logEntry
	if err := json.Unmarshal(data, (*alias)(e)); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, known := range []string{"time", "level", "msg", "component", "op", "launch_id"} {
		delete(all, known)
	}
	if len(all) > 0 {
		e.Extra = all
	}
	return nil
}

// logFilter selects entries for display.
type logFilter struct {
	minLevel  int
	since     time.Time
	grep      *regexp.Regexp
	component string
}

var (
	logTimeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	logFieldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22D3EE"))
)

func levelStyle(level string) lipgloss.Style {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	case logging.LevelInfo:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))
	case logging.LevelWarn:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	case logging.LevelError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	default:
		return lipgloss.NewStyle()
	}
}

// levelPriority returns the priority of a log level for filtering
func levelPriority(level string) int {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return 0
	case logging.LevelInfo:
		return 1
	case logging.LevelWarn:
		return 2
	case logging.LevelError:
		return 3
	default:
		return -1
	}
}

// formatLogEntry formats a log entry for terminal output
func formatLogEntry(entry *logEntry) string {
	var sb strings.Builder

	sb.WriteString(logTimeStyle.Render("[" + entry.Time.Format("15:04:05.000") + "]"))
	sb.WriteString(" ")
	sb.WriteString(levelStyle(entry.Level).Render("[" + strings.ToUpper(entry.Level) + "]"))
	sb.WriteString(" ")
	sb.WriteString(entry.Msg)

	field := func(key, value string) {
		sb.WriteString(" ")
		sb.WriteString(logFieldStyle.Render(key + "="))
		sb.WriteString(value)
	}
	if entry.Component != "" {
		field("component", entry.Component)
	}
	if entry.Op != "" {
		field("op", entry.Op)
	}
	if entry.LaunchID != "" {
		field("launch_id", entry.LaunchID)
	}

	keys := make([]string, 0, len(entry.Extra))
	for k := range entry.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		field(k, fmt.Sprintf("%v", entry.Extra[k]))
	}

	return sb.String()
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logPath := filepath.Join(cfg.Logging.ResolveDir(), logging.FileName)
	out := cmd.OutOrStdout()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Fprintf(out, "No logs found at %s\n", logPath)
		return nil
	}

	f := logFilter{minLevel: -1, component: logsComponent}
	if logsLevel != "" {
		f.minLevel = levelPriority(logging.ParseLevel(logsLevel))
	}
	if logsSince != "" {
		duration, err := time.ParseDuration(logsSince)
		if err != nil {
			return fmt.Errorf("invalid duration format: %w", err)
		}
		f.since = time.Now().Add(-duration)
	}
	if logsGrep != "" {
		re, err := regexp.Compile(logsGrep)
		if err != nil {
			return fmt.Errorf("invalid grep pattern: %w", err)
		}
		f.grep = re
	}

	if logsFollow {
		return followLogs(cmd, logPath, f)
	}
	return displayLogs(out, logPath, logsTail, f)
}

// displayLogs reads the log file and prints the filtered entries
func displayLogs(out io.Writer, logPath string, tail int, f logFilter) error {
	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if line, ok := renderLine(scanner.Text(), f); ok {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}

	if tail > 0 && len(lines) > tail {
		lines = lines[len(lines)-tail:]
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	if len(lines) == 0 {
		fmt.Fprintln(out, "No matching log entries found.")
	}
	return nil
}

// followLogs prints entries appended after it starts, until the command's
// context is cancelled. A rotation (the file being replaced) reopens it.
func followLogs(cmd *cobra.Command, logPath string, f logFilter) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(logPath)); err != nil {
		return fmt.Errorf("failed to watch log directory: %w", err)
	}

	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { file.Close() }()
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}
	reader := bufio.NewReader(file)

	fmt.Fprintf(out, "Following %s... (Ctrl+C to stop)\n\n", logPath)

	drain := func() error {
		for {
			line, err := reader.ReadString('\n')
			if err == io.EOF {
				// Keep a partial line for the next write.
				if line != "" {
					reader = bufio.NewReader(io.MultiReader(strings.NewReader(line), file))
				}
				return nil
			}
			if err != nil {
				return fmt.Errorf("error reading log file: %w", err)
			}
			if rendered, ok := renderLine(line, f); ok {
				fmt.Fprintln(out, rendered)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(logPath) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				file.Close()
				if file, err = os.Open(logPath); err != nil {
					return fmt.Errorf("failed to reopen log file: %w", err)
				}
				reader = bufio.NewReader(file)
			}
			if err := drain(); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

// renderLine parses and filters one raw line. Lines that are not JSON are
// shown as they are.
func renderLine(raw string, f logFilter) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	var entry logEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return raw, true
	}
	if !passesFilters(&entry, f) {
		return "", false
	}
	return formatLogEntry(&entry), true
}

// passesFilters checks if a log entry passes all filter criteria
func passesFilters(entry *logEntry, f logFilter) bool {
	if f.minLevel >= 0 && levelPriority(entry.Level) < f.minLevel {
		return false
	}
	if !f.since.IsZero() && entry.Time.Before(f.since) {
		return false
	}
	if f.component != "" && entry.Component != f.component {
		return false
	}
	if f.grep != nil {
		searchText := strings.Join([]string{entry.Msg, entry.Op, entry.LaunchID}, " ")
		for _, v := range entry.Extra {
			searchText += " " + fmt.Sprintf("%v", v)
		}
		if !f.grep.MatchString(searchText) {
			return false
		}
	}
	return true
}
