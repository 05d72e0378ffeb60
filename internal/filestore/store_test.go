package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/Rhishavhere/codeblink/internal/errors"
)

func newMemStore() *Store {
	return New(afero.NewMemMapFs(), WithBaseDir("/work"))
}

func TestWriteRead_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
	}{
		{"simple", "/work/a.py", "print('hi')\n"},
		{"empty", "/work/empty.py", ""},
		{"unicode", "/work/u.py", "print('héllo wörld ✓')"},
		{"spaces in path", "/work/dir with space/s.py", "x = 1"},
		{"relative", "rel/out.py", "y = 2"},
	}

	s := newMemStore()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Write(tt.path, tt.content)
			if !res.Success {
				t.Fatalf("Write() failed: %v", res.Err)
			}
			got, err := s.Read(tt.path)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if got != tt.content {
				t.Errorf("Read() = %q, want %q", got, tt.content)
			}
		})
	}
}

func TestWrite_ResolvesRelativePath(t *testing.T) {
	s := newMemStore()
	res := s.Write("interpreted_files/demoProcessed.py", "pass")
	if !res.Success {
		t.Fatalf("Write() failed: %v", res.Err)
	}
	want := filepath.Join("/work", "interpreted_files", "demoProcessed.py")
	if res.Path != want {
		t.Errorf("Path = %q, want %q", res.Path, want)
	}
}

func TestWrite_CreatesAncestors(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := New(fsys)

	res := s.Write("/deep/nested/tree/file.py", "pass")
	if !res.Success {
		t.Fatalf("Write() failed: %v", res.Err)
	}
	for _, dir := range []string{"/deep", "/deep/nested", "/deep/nested/tree"} {
		info, err := fsys.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", dir)
		}
	}
}

func TestWrite_FullyOverwrites(t *testing.T) {
	s := newMemStore()
	s.Write("/work/x.py", strings.Repeat("long content ", 50))
	res := s.Write("/work/x.py", "short")
	if !res.Success {
		t.Fatalf("Write() failed: %v", res.Err)
	}
	got, _ := s.Read("/work/x.py")
	if got != "short" {
		t.Errorf("Read() = %q, want %q (no append, no merge)", got, "short")
	}
}

func TestWrite_InvalidInput(t *testing.T) {
	s := newMemStore()

	res := s.Write("", "x")
	if res.Success || errors.KindOf(res.Err) != errors.KindInvalidInput {
		t.Errorf("empty path: got %+v", res)
	}

	res = s.Write("/work/bad.py", string([]byte{0xff, 0xfe}))
	if res.Success || errors.KindOf(res.Err) != errors.KindInvalidInput {
		t.Errorf("invalid utf-8: got %+v", res)
	}
}

func TestWrite_ReadOnlyFilesystem(t *testing.T) {
	s := New(afero.NewReadOnlyFs(afero.NewMemMapFs()))
	res := s.Write("/x/y.py", "pass")
	if res.Success {
		t.Fatal("Write() on read-only fs should fail")
	}
	if errors.KindOf(res.Err) != errors.KindIOFailure {
		t.Errorf("kind = %q, want %q", errors.KindOf(res.Err), errors.KindIOFailure)
	}
	if res.Path != "" {
		t.Errorf("Path should be empty on failure, got %q", res.Path)
	}
}

type panicFs struct{ afero.Fs }

func (panicFs) MkdirAll(string, os.FileMode) error { panic("boom") }

func TestWrite_RecoversPanic(t *testing.T) {
	s := New(panicFs{afero.NewMemMapFs()})
	res := s.Write("/x/y.py", "pass")
	if res.Success {
		t.Fatal("Write() should fail when the filesystem panics")
	}
	if errors.KindOf(res.Err) != errors.KindIOFailure {
		t.Errorf("kind = %q, want %q", errors.KindOf(res.Err), errors.KindIOFailure)
	}
}

func TestRead_NotFound(t *testing.T) {
	s := newMemStore()
	_, err := s.Read("/work/missing.nl")
	if errors.KindOf(err) != errors.KindNotFound {
		t.Errorf("kind = %q, want %q", errors.KindOf(err), errors.KindNotFound)
	}
}

func TestRead_DirectoryIsIOFailure(t *testing.T) {
	fsys := afero.NewOsFs()
	s := New(fsys)
	_, err := s.Read(t.TempDir())
	if errors.KindOf(err) != errors.KindIOFailure {
		t.Errorf("kind = %q, want %q", errors.KindOf(err), errors.KindIOFailure)
	}
}

func TestRead_InvalidUTF8(t *testing.T) {
	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/bin.dat", []byte{0xc3, 0x28}, 0o644)
	s := New(fsys)

	_, err := s.Read("/bin.dat")
	if errors.KindOf(err) != errors.KindIOFailure {
		t.Errorf("kind = %q, want %q", errors.KindOf(err), errors.KindIOFailure)
	}
}

func TestWrite_ConcurrentDistinctPaths(t *testing.T) {
	s := newMemStore()
	const n = 32

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("/work/out/%d.py", i)
			if res := s.Write(path, fmt.Sprintf("value = %d", i)); !res.Success {
				t.Errorf("Write(%s) failed: %v", path, res.Err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		got, err := s.Read(fmt.Sprintf("/work/out/%d.py", i))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if want := fmt.Sprintf("value = %d", i); got != want {
			t.Errorf("file %d = %q, want %q", i, got, want)
		}
	}
}

func TestExists(t *testing.T) {
	s := newMemStore()
	if s.Exists("/work/a.py") {
		t.Error("Exists() before write = true")
	}
	s.Write("/work/a.py", "")
	if !s.Exists("/work/a.py") {
		t.Error("Exists() after write = false")
	}
}

func TestNew_NilFsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) should panic")
		}
	}()
	New(nil)
}
