package shell

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rhishavhere/codeblink/internal/bridge"
	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/event"
	"github.com/Rhishavhere/codeblink/internal/secret"
)

type fakeBridge struct {
	mu sync.Mutex

	cred    bridge.GetCredentialResponse
	open    bridge.OpenTextFileResponse
	save    bridge.ChooseSavePathResponse
	writeFn func(bridge.WriteFileRequest) bridge.WriteFileResponse
	launch  bridge.LaunchScriptResponse

	// onLaunch runs before LaunchScript returns.
	onLaunch func()

	writes      []bridge.WriteFileRequest
	launches    []bridge.LaunchScriptRequest
	saveDefault string
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		cred:   bridge.GetCredentialResponse{Credential: "key"},
		launch: bridge.LaunchScriptResponse{LaunchID: "launch-1"},
		writeFn: func(req bridge.WriteFileRequest) bridge.WriteFileResponse {
			path := req.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join("/work", path)
			}
			return bridge.WriteFileResponse{Success: true, Path: path}
		},
	}
}

func (f *fakeBridge) GetCredential() bridge.GetCredentialResponse { return f.cred }

func (f *fakeBridge) OpenTextFile(context.Context) bridge.OpenTextFileResponse { return f.open }

func (f *fakeBridge) ChooseSavePath(_ context.Context, req bridge.ChooseSavePathRequest) bridge.ChooseSavePathResponse {
	f.mu.Lock()
	f.saveDefault = req.DefaultName
	f.mu.Unlock()
	return f.save
}

func (f *fakeBridge) WriteFile(req bridge.WriteFileRequest) bridge.WriteFileResponse {
	f.mu.Lock()
	f.writes = append(f.writes, req)
	f.mu.Unlock()
	return f.writeFn(req)
}

func (f *fakeBridge) LaunchScript(req bridge.LaunchScriptRequest) bridge.LaunchScriptResponse {
	f.mu.Lock()
	f.launches = append(f.launches, req)
	f.mu.Unlock()
	if f.onLaunch != nil {
		f.onLaunch()
	}
	return f.launch
}

type fakeTranslator struct {
	code   string
	err    error
	source string
	cred   secret.Credential
}

func (f *fakeTranslator) Translate(_ context.Context, cred secret.Credential, source string) (string, error) {
	f.cred, f.source = cred, source
	return f.code, f.err
}

var fixedTime = time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)

func newShell(b *fakeBridge, tr *fakeTranslator, opts ...Option) *Shell {
	return New(b, tr, append([]Option{WithClock(func() time.Time { return fixedTime })}, opts...)...)
}

func TestGeneratedScriptPath(t *testing.T) {
	layout := DefaultOutputLayout()
	tests := []struct {
		filename string
		want     string
	}{
		{"demo.nl", filepath.Join("interpreted_files", "demoProcessed.py")},
		{"demo", filepath.Join("interpreted_files", "demoProcessed.py")},
		{"archive.tar.nl", filepath.Join("interpreted_files", "archive.tarProcessed.py")},
		{"/home/me/notes/demo.txt", filepath.Join("interpreted_files", "demoProcessed.py")},
		{`C:\Users\me\demo.nl`, filepath.Join("interpreted_files", "demoProcessed.py")},
		{"my file.nl", filepath.Join("interpreted_files", "my fileProcessed.py")},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, layout.GeneratedScriptPath(tt.filename))
		})
	}

	custom := OutputLayout{Dir: "gen", Suffix: "Out", Ext: ".py3"}
	assert.Equal(t, filepath.Join("gen", "demoOut.py3"), custom.GeneratedScriptPath("demo.nl"))
}

func TestRun(t *testing.T) {
	b := newFakeBridge()
	tr := &fakeTranslator{code: "print('hi')"}
	bus := event.NewBus()
	var generated []event.ScriptGeneratedEvent
	bus.Subscribe(event.TypeScriptGenerated, func(e event.Event) {
		generated = append(generated, e.(event.ScriptGeneratedEvent))
	})

	s := newShell(b, tr, WithFilename("demo.nl"), WithBus(bus))
	res, err := s.Run(context.Background(), "  print hi \n")
	require.NoError(t, err)

	assert.Equal(t, "print hi", tr.source)
	assert.Equal(t, secret.Credential("key"), tr.cred)
	assert.Equal(t, "print('hi')", res.Code)
	assert.Equal(t, "launch-1", res.LaunchID)

	wantPath := filepath.Join("interpreted_files", "demoProcessed.py")
	require.Len(t, b.writes, 1)
	assert.Equal(t, wantPath, b.writes[0].Path)
	assert.Equal(t, "print('hi')", b.writes[0].Content)
	require.Len(t, b.launches, 1)
	assert.Equal(t, filepath.Join("/work", wantPath), b.launches[0].Path)

	st := s.Snapshot()
	assert.Equal(t, "print('hi')", st.LastGenerated)
	assert.Equal(t, 1, st.Running)
	assert.Equal(t, LevelSuccess, st.Status.Level)
	require.Len(t, generated, 1)
	assert.Equal(t, res.ScriptPath, generated[0].ScriptPath)

	code, err := s.LastGenerated()
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", code)
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*fakeBridge, *fakeTranslator)
		source   string
		wantKind errors.Kind
		status   string
	}{
		{
			name: "missing credential",
			setup: func(b *fakeBridge, _ *fakeTranslator) {
				b.cred = bridge.GetCredentialResponse{Error: &bridge.Fault{Kind: errors.KindCredentialMissing, Message: "api credential is not configured"}}
			},
			source:   "print 1",
			wantKind: errors.KindCredentialMissing,
			status:   "API key not found",
		},
		{
			name:     "empty editor",
			setup:    func(*fakeBridge, *fakeTranslator) {},
			source:   " \n\t",
			wantKind: errors.KindInvalidInput,
			status:   "Editor is empty",
		},
		{
			name: "model failure",
			setup: func(_ *fakeBridge, tr *fakeTranslator) {
				tr.err = errors.NewBridgeError("translate", errors.KindExternalService, errors.ErrExternalService)
			},
			source:   "print 1",
			wantKind: errors.KindExternalService,
			status:   "Processing failed",
		},
		{
			name: "write failure",
			setup: func(b *fakeBridge, _ *fakeTranslator) {
				b.writeFn = func(bridge.WriteFileRequest) bridge.WriteFileResponse {
					return bridge.WriteFileResponse{Error: &bridge.Fault{Kind: errors.KindIOFailure, Message: "read-only"}}
				}
			},
			source:   "print 1",
			wantKind: errors.KindIOFailure,
			status:   "Processing failed",
		},
		{
			name: "launch refused",
			setup: func(b *fakeBridge, _ *fakeTranslator) {
				b.launch = bridge.LaunchScriptResponse{Error: &bridge.Fault{Kind: errors.KindInternal, Message: "internal error"}}
			},
			source:   "print 1",
			wantKind: errors.KindInternal,
			status:   "Launch failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, tr := newFakeBridge(), &fakeTranslator{code: "print(1)"}
			tt.setup(b, tr)
			s := newShell(b, tr)

			_, err := s.Run(context.Background(), tt.source)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errors.KindOf(err))

			st := s.Snapshot()
			assert.Equal(t, tt.status, st.Status.Message)
			assert.Equal(t, LevelError, st.Status.Level)
			require.NotEmpty(t, st.Log)
			assert.Equal(t, LevelError, st.Log[len(st.Log)-1].Level)
			assert.Zero(t, st.Running)
		})
	}
}

func TestRun_EmptyEditorDoesNotCallModel(t *testing.T) {
	b, tr := newFakeBridge(), &fakeTranslator{}
	s := newShell(b, tr)
	_, err := s.Run(context.Background(), "")
	assert.ErrorIs(t, err, errors.ErrEmptyEditor)
	assert.Empty(t, tr.source)
	assert.Empty(t, b.writes)
}

func TestHandleTerminalClosed(t *testing.T) {
	b := newFakeBridge()
	s := newShell(b, &fakeTranslator{code: "x"})
	_, err := s.Run(context.Background(), "print 1")
	require.NoError(t, err)

	s.HandleTerminalClosed(bridge.TerminalClosed{LaunchID: "launch-1", Message: "Terminal closed (exit code 0)"})
	st := s.Snapshot()
	assert.Zero(t, st.Running)
	assert.Equal(t, "Terminal closed (exit code 0)", st.Log[len(st.Log)-1].Message)

	s.HandleTerminalClosed(bridge.TerminalClosed{LaunchID: "x", Message: "Terminal closed (exit code 0)"})
	assert.Zero(t, s.Snapshot().Running, "running count never goes negative")
}

func TestRun_ClosureBeforeLaunchReturns(t *testing.T) {
	b := newFakeBridge()
	s := newShell(b, &fakeTranslator{code: "x"})
	b.onLaunch = func() {
		s.HandleTerminalClosed(bridge.TerminalClosed{LaunchID: "launch-1", Message: "Terminal closed (exit code 0)"})
	}

	_, err := s.Run(context.Background(), "print 1")
	require.NoError(t, err)
	assert.Zero(t, s.Snapshot().Running)
}

func TestOpen(t *testing.T) {
	b := newFakeBridge()
	b.open = bridge.OpenTextFileResponse{Path: "/home/me/demo.nl", Content: "print 1"}
	s := newShell(b, &fakeTranslator{})

	content, ok, err := s.Open(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "print 1", content)
	assert.Equal(t, "demo.nl", s.Filename())
	assert.Equal(t, filepath.Join("interpreted_files", "demoProcessed.py"), s.GeneratedScriptPath())
}

func TestOpen_CancelledAndFailed(t *testing.T) {
	b := newFakeBridge()
	b.open = bridge.OpenTextFileResponse{Cancelled: true}
	s := newShell(b, &fakeTranslator{})

	_, ok, err := s.Open(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Open canceled.", s.Snapshot().Status.Message)
	assert.Equal(t, DefaultFilename, s.Filename())

	b.open = bridge.OpenTextFileResponse{Error: &bridge.Fault{Kind: errors.KindNotFound, Message: "gone"}}
	_, ok, err = s.Open(context.Background())
	assert.False(t, ok)
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
}

func TestSave(t *testing.T) {
	b := newFakeBridge()
	b.save = bridge.ChooseSavePathResponse{Path: "notes/lesson.nl"}
	s := newShell(b, &fakeTranslator{})

	path, ok, err := s.Save(context.Background(), "print 1", false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("/work", "notes/lesson.nl"), path)
	assert.Equal(t, DefaultFilename, b.saveDefault)
	assert.Equal(t, "lesson.nl", s.Filename())

	// A second save reuses the path without a dialog.
	b.saveDefault = ""
	_, ok, err = s.Save(context.Background(), "print 2", false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, b.saveDefault)
	require.Len(t, b.writes, 2)
	assert.Equal(t, path, b.writes[1].Path)

	// Save As always asks.
	b.save = bridge.ChooseSavePathResponse{Cancelled: true}
	_, ok, err = s.Save(context.Background(), "print 3", true)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "lesson.nl", b.saveDefault)
	assert.Len(t, b.writes, 2)
}

func TestLogCapAndClear(t *testing.T) {
	s := newShell(newFakeBridge(), &fakeTranslator{}, WithMaxLogEntries(3))
	for i := range 5 {
		s.Log(LevelInfo, "line %d", i)
	}
	st := s.Snapshot()
	require.Len(t, st.Log, 3)
	assert.Equal(t, "line 2", st.Log[0].Message)
	assert.Equal(t, "[15:04:05] line 4", st.Log[2].String())

	s.ClearLog()
	assert.Empty(t, s.Snapshot().Log)
}

func TestLastGenerated_BeforeRun(t *testing.T) {
	s := newShell(newFakeBridge(), &fakeTranslator{})
	_, err := s.LastGenerated()
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestWithPath(t *testing.T) {
	s := newShell(newFakeBridge(), &fakeTranslator{}, WithPath("/home/me/demo.nl"))
	assert.Equal(t, "demo.nl", s.Filename())
	assert.Equal(t, "/home/me/demo.nl", s.Snapshot().Path)
}

func TestNew_Panics(t *testing.T) {
	assert.Panics(t, func() { New(nil, &fakeTranslator{}) })
	assert.Panics(t, func() { New(newFakeBridge(), nil) })
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newShell(newFakeBridge(), &fakeTranslator{})
	s.Log(LevelInfo, "one")
	st := s.Snapshot()
	st.Log[0].Message = "mutated"
	assert.Equal(t, "one", s.Snapshot().Log[0].Message)
}

func TestLogEntriesReachBus(t *testing.T) {
	bus := event.NewBus()
	var got []event.LogEntryEvent
	bus.Subscribe(event.TypeLogEntry, func(e event.Event) {
		got = append(got, e.(event.LogEntryEvent))
	})

	s := newShell(newFakeBridge(), &fakeTranslator{}, WithBus(bus))
	s.Log(LevelAI, "thinking")

	require.Len(t, got, 1)
	assert.Equal(t, "ai", got[0].Level)
	assert.Equal(t, "thinking", got[0].Message)
}
