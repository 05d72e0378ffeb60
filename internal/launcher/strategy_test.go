package launcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rhishavhere/codeblink/internal/errors"
)

func TestWindowsStrategy_Command(t *testing.T) {
	s := &WindowsStrategy{}
	c, err := s.Command(`C:\Users\me\My Projects\interpreted_files\demoProcessed.py`)
	require.NoError(t, err)

	assert.Equal(t, "powershell.exe", c.Name)
	assert.True(t, c.NewConsole)
	require.Len(t, c.Args, 3)
	assert.Equal(t, "-NoExit", c.Args[0])
	assert.Equal(t, "-Command", c.Args[1])
	assert.Equal(t, `& 'python' 'C:\Users\me\My Projects\interpreted_files\demoProcessed.py'`, c.Args[2])
}

func TestWindowsStrategy_CustomShellAndInterpreter(t *testing.T) {
	s := &WindowsStrategy{Shell: "pwsh.exe", Interpreter: `C:\Program Files\Python\python.exe`}
	c, err := s.Command(`C:\a.py`)
	require.NoError(t, err)
	assert.Equal(t, "pwsh.exe", c.Name)
	assert.Equal(t, `& 'C:\Program Files\Python\python.exe' 'C:\a.py'`, c.Args[2])
}

func TestTerminalStrategy_PathIsSingleArgument(t *testing.T) {
	path := "/home/me/my projects/it's $HOME/interpreted_files/demoProcessed.py"
	s := &TerminalStrategy{Terminal: "xterm", Interpreter: "python3"}
	c, err := s.Command(path)
	require.NoError(t, err)

	assert.Equal(t, "xterm", c.Name)
	assert.False(t, c.NewConsole)
	want := []string{"-e", "sh", "-c", keepOpenScript, "codeblink", "python3", path}
	assert.Equal(t, want, c.Args)
	assert.NotContains(t, keepOpenScript, path)
}

func TestTerminalStrategy_ExecFlags(t *testing.T) {
	tests := []struct {
		term string
		want []string
	}{
		{"xterm", []string{"-e"}},
		{"/usr/bin/konsole", []string{"-e"}},
		{"gnome-terminal", []string{"--"}},
		{"xfce4-terminal", []string{"-x"}},
		{"wezterm", []string{"start", "--"}},
		{"kitty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			c, err := (&TerminalStrategy{Terminal: tt.term}).Command("/tmp/a.py")
			require.NoError(t, err)
			assert.Equal(t, tt.term, c.Name)
			assert.Equal(t, tt.want, c.Args[:len(tt.want)])
			assert.Equal(t, "sh", c.Args[len(tt.want)])
		})
	}
}

func TestTerminalStrategy_Defaults(t *testing.T) {
	c, err := (&TerminalStrategy{}).Command("/tmp/a.py")
	require.NoError(t, err)
	assert.Equal(t, "xterm", c.Name)
	assert.Equal(t, "python3", c.Args[len(c.Args)-2])
}

func TestStrategies_RejectBadPaths(t *testing.T) {
	for _, s := range []Strategy{&WindowsStrategy{}, &TerminalStrategy{}} {
		for _, p := range []string{"", "   ", "/tmp/a\nb.py", "/tmp/a\x00.py"} {
			_, err := s.Command(p)
			assert.ErrorIs(t, err, errors.ErrInvalidInput, "%s %q", s.Name(), p)
		}
	}
}

func TestForPlatform(t *testing.T) {
	settings := Settings{Interpreter: "py", Terminal: "konsole", WindowsShell: "pwsh.exe"}

	w, ok := ForPlatform("windows", settings).(*WindowsStrategy)
	require.True(t, ok)
	assert.Equal(t, "pwsh.exe", w.Shell)
	assert.Equal(t, "py", w.Interpreter)

	for _, goos := range []string{"linux", "darwin", "freebsd"} {
		ts, ok := ForPlatform(goos, settings).(*TerminalStrategy)
		require.True(t, ok, goos)
		assert.Equal(t, "konsole", ts.Terminal)
	}
}

func TestCommand_String(t *testing.T) {
	c := Command{Name: "xterm", Args: []string{"-e", "a b", ""}}
	assert.Equal(t, `xterm -e "a b" ""`, c.String())
}
