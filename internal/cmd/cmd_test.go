package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rhishavhere/codeblink/internal/config"
	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/logging"
	"github.com/Rhishavhere/codeblink/internal/secret"
	"github.com/Rhishavhere/codeblink/internal/shell"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

type fakeTranslator struct {
	code   string
	source string
}

func (f *fakeTranslator) Translate(_ context.Context, _ secret.Credential, source string) (string, error) {
	f.source = source
	return f.code, nil
}

// setupTestEnvironment isolates viper, the config directory and the
// package-level flags, and swaps in tr for the model client.
func setupTestEnvironment(t *testing.T, tr shell.Translator) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("CODEBLINK_LOGGING_ENABLED", "false")
	t.Setenv("CODEBLINK_OUTPUT_BASE_DIR", dir)
	t.Setenv("CODEBLINK_SECRETS_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("GEMINI_API_KEY", "test-key")

	viper.Reset()
	t.Cleanup(viper.Reset)

	runNoWait, translateOut = false, ""
	logsTail, logsFollow, logsLevel, logsSince, logsGrep, logsComponent = 50, false, "", "", "", ""
	watchDebounce, watchInitial = 200*time.Millisecond, false

	if tr != nil {
		orig := newTranslator
		newTranslator = func(*config.Config, *logging.Logger) shell.Translator { return tr }
		t.Cleanup(func() { newTranslator = orig })
	}
	return dir
}

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as the terminal")
	}
}

func writeFakeTerminal(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "fake-term")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	return path
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Name() != "codeblink" {
		t.Errorf("rootCmd.Name() = %q, want %q", rootCmd.Name(), "codeblink")
	}

	cmdMap := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		cmdMap[c.Name()] = true
	}
	for _, name := range []string{"edit", "run", "translate", "serve", "watch", "logs", "config"} {
		if !cmdMap[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestConfigInitShowPath(t *testing.T) {
	setupTestEnvironment(t, nil)

	out, err := executeCommand(rootCmd, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "not created")

	out, err = executeCommand(rootCmd, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, config.ConfigFile())
	assert.FileExists(t, config.ConfigFile())

	_, err = executeCommand(rootCmd, "config", "init")
	assert.Error(t, err, "init must not overwrite an existing file")

	out, err = executeCommand(rootCmd, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Config file: "+config.ConfigFile())
	assert.Contains(t, out, "dir: interpreted_files")
	assert.Contains(t, out, "api_key_env: GEMINI_API_KEY")
}

func TestConfigSet(t *testing.T) {
	setupTestEnvironment(t, nil)

	out, err := executeCommand(rootCmd, "config", "set", "model.name", "gemini-2.5-flash")
	require.NoError(t, err)
	assert.Contains(t, out, "Set model.name = gemini-2.5-flash")

	data, err := os.ReadFile(config.ConfigFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "gemini-2.5-flash")

	_, err = executeCommand(rootCmd, "config", "set", "output.ext", "py")
	assert.Error(t, err)

	_, err = executeCommand(rootCmd, "config", "set", "no.such.key", "x")
	assert.ErrorContains(t, err, "unknown configuration key")

	_, err = executeCommand(rootCmd, "config", "set", "editor.filters", "x")
	assert.ErrorContains(t, err, "is a list")
}

func TestTranslate(t *testing.T) {
	tr := &fakeTranslator{code: "print('hi')"}
	dir := setupTestEnvironment(t, tr)
	src := filepath.Join(dir, "hello.nl")
	require.NoError(t, os.WriteFile(src, []byte("print hi"), 0o644))

	out, err := executeCommand(rootCmd, "translate", src)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", out)
	assert.Equal(t, "print hi", tr.source)

	target := filepath.Join(dir, "out", "hello.py")
	out, err = executeCommand(rootCmd, "translate", src, "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, target)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", string(data))
}

func TestTranslate_MissingCredential(t *testing.T) {
	dir := setupTestEnvironment(t, &fakeTranslator{code: "x"})
	t.Setenv("GEMINI_API_KEY", "")
	src := filepath.Join(dir, "hello.nl")
	require.NoError(t, os.WriteFile(src, []byte("print hi"), 0o644))

	_, err := executeCommand(rootCmd, "translate", src)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrCredentialMissing)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestRun_WaitsForTerminal(t *testing.T) {
	requireUnix(t)
	tr := &fakeTranslator{code: "print('hi')"}
	dir := setupTestEnvironment(t, tr)
	t.Setenv("CODEBLINK_LAUNCHER_TERMINAL", writeFakeTerminal(t, dir))

	src := filepath.Join(dir, "demo.nl")
	require.NoError(t, os.WriteFile(src, []byte("print hi"), 0o644))

	out, err := executeCommand(rootCmd, "run", src)
	require.NoError(t, err)

	script := filepath.Join(dir, "interpreted_files", "demoProcessed.py")
	assert.Contains(t, out, "Starting AI interpretation...")
	assert.Contains(t, out, "Script: "+script)
	assert.Contains(t, out, "Terminal closed (exit code 0)")

	data, err := os.ReadFile(script)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", string(data))
}

func TestRun_SpawnFailure(t *testing.T) {
	requireUnix(t)
	dir := setupTestEnvironment(t, &fakeTranslator{code: "print(1)"})
	t.Setenv("CODEBLINK_LAUNCHER_TERMINAL", filepath.Join(dir, "no-such-terminal"))

	src := filepath.Join(dir, "demo.nl")
	require.NoError(t, os.WriteFile(src, []byte("print 1"), 0o644))

	out, err := executeCommand(rootCmd, "run", src)
	require.Error(t, err)
	assert.Equal(t, errors.KindSpawnFailure, errors.KindOf(err))
	assert.NotContains(t, out, "Terminal closed")
	assert.NotContains(t, out, "Script:")
}

func TestRun_EmptyFile(t *testing.T) {
	dir := setupTestEnvironment(t, &fakeTranslator{code: "x"})
	src := filepath.Join(dir, "empty.nl")
	require.NoError(t, os.WriteFile(src, []byte("  \n"), 0o644))

	out, err := executeCommand(rootCmd, "run", src)
	assert.ErrorIs(t, err, errors.ErrEmptyEditor)
	assert.Contains(t, out, "No code to execute")
}

func TestServe(t *testing.T) {
	setupTestEnvironment(t, nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader(`{"id":"1","op":"get_credential"}` + "\n"))
	rootCmd.SetArgs([]string{"serve"})
	t.Cleanup(func() { rootCmd.SetIn(nil) })
	require.NoError(t, rootCmd.Execute())

	var resp struct {
		ID     string `json:"id"`
		Result struct {
			Credential string `json:"credential"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &resp))
	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, "test-key", resp.Result.Credential)
}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.nl")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 10*time.Millisecond, logging.NopLogger(), func() { calls.Add(1) })
	}()

	// Other files in the directory are ignored.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644)
		_ = os.WriteFile(path, []byte("v2"), 0o644)
		return calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestLogs(t *testing.T) {
	dir := setupTestEnvironment(t, nil)
	logDir := filepath.Join(dir, "logs")
	t.Setenv("CODEBLINK_LOGGING_DIR", logDir)
	require.NoError(t, os.MkdirAll(logDir, 0o755))

	lines := []string{
		`{"time":"2025-01-02T15:04:05Z","level":"INFO","msg":"run launched","component":"shell","launch_id":"abc"}`,
		`{"time":"2025-01-02T15:04:06Z","level":"WARN","msg":"terminal exited","component":"launcher","exit_code":2}`,
		`not json`,
	}
	require.NoError(t, os.WriteFile(filepath.Join(logDir, logging.FileName), []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	out, err := executeCommand(rootCmd, "logs", "--level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "terminal exited")
	assert.Contains(t, out, "exit_code=")
	assert.NotContains(t, out, "run launched")
	assert.Contains(t, out, "not json")

	logsLevel = ""
	out, err = executeCommand(rootCmd, "logs", "--component", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "run launched")
	assert.NotContains(t, out, "terminal exited")
}

func TestLogs_NoFile(t *testing.T) {
	dir := setupTestEnvironment(t, nil)
	t.Setenv("CODEBLINK_LOGGING_DIR", filepath.Join(dir, "nowhere"))

	out, err := executeCommand(rootCmd, "logs")
	require.NoError(t, err)
	assert.Contains(t, out, "No logs found")
}

func TestPassesFilters(t *testing.T) {
	entry := &logEntry{
		Time:      time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC),
		Level:     "WARN",
		Msg:       "spawn failed",
		Component: "launcher",
		LaunchID:  "5f0c2a",
	}
	tests := []struct {
		name string
		f    logFilter
		want bool
	}{
		{"no filters", logFilter{minLevel: -1}, true},
		{"level below", logFilter{minLevel: levelPriority("ERROR")}, false},
		{"level at", logFilter{minLevel: levelPriority("WARN")}, true},
		{"since after", logFilter{minLevel: -1, since: entry.Time.Add(time.Minute)}, false},
		{"component match", logFilter{minLevel: -1, component: "launcher"}, true},
		{"component mismatch", logFilter{minLevel: -1, component: "bridge"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, passesFilters(entry, tt.f))
		})
	}
}
