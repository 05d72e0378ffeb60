// Package filestore reads and writes UTF-8 text files for the bridge.
//
// Writes always replace the whole file and create missing parent
// directories. The store keeps no per-file state, so concurrent writes to
// different paths are independent and concurrent writes to the same path
// are last-write-wins.
package filestore

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/afero"

	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/logging"
)

const (
	dirPerm  fs.FileMode = 0o755
	filePerm fs.FileMode = 0o644
)

// Result is the structured outcome of Write. Exactly one of Path or Err is set.
type Result struct {
	Success bool
	Path    string
	Err     error
}

// Store is a UTF-8 text file store rooted at a base directory.
type Store struct {
	fs      afero.Fs
	baseDir string
	logger  *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBaseDir anchors relative paths at dir.
func WithBaseDir(dir string) Option {
	return func(s *Store) {
		s.baseDir = dir
	}
}

// New creates a Store over fsys.
func New(fsys afero.Fs, opts ...Option) *Store {
	if fsys == nil {
		panic("filestore: afero.Fs must not be nil")
	}
	s := &Store{fs: fsys, logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewOS creates a Store on the host filesystem with relative paths resolved against baseDir.
func NewOS(baseDir string, opts ...Option) *Store {
	return New(afero.NewOsFs(), append([]Option{WithBaseDir(baseDir)}, opts...)...)
}

// Resolve returns the cleaned absolute form of path.
func (s *Store) Resolve(path string) string {
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) && s.baseDir != "" {
		path = filepath.Join(s.baseDir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Write replaces the file at path with content, creating parent directories.
// It never panics; every failure is reported through Result.Err.
func (s *Store) Write(path, content string) (res Result) {
	resolved := s.Resolve(path)
	log := s.logger.WithOperation("write").With("path", resolved)

	defer func() {
		if r := recover(); r != nil {
			log.Error("write panicked", "panic", fmt.Sprint(r))
			res = Result{Err: errors.NewBridgeError("write", errors.KindIOFailure, fmt.Errorf("panic: %v", r)).WithPath(resolved)}
		}
	}()

	if resolved == "" {
		return Result{Err: errors.NewBridgeError("write", errors.KindInvalidInput, fmt.Errorf("%w: empty path", errors.ErrInvalidInput))}
	}
	if !utf8.ValidString(content) {
		return Result{Err: errors.NewBridgeError("write", errors.KindInvalidInput, fmt.Errorf("%w: content is not valid UTF-8", errors.ErrInvalidInput)).WithPath(resolved)}
	}

	if err := s.fs.MkdirAll(filepath.Dir(resolved), dirPerm); err != nil {
		log.Warn("failed to create parent directories", "error", err)
		return Result{Err: errors.NewBridgeError("write", errors.KindIOFailure, fmt.Errorf("failed to create directory: %w", err)).WithPath(resolved)}
	}
	if err := afero.WriteFile(s.fs, resolved, []byte(content), filePerm); err != nil {
		log.Warn("failed to write file", "error", err)
		return Result{Err: errors.NewBridgeError("write", errors.KindIOFailure, err).WithPath(resolved)}
	}

	log.Debug("file written", "bytes", len(content))
	return Result{Success: true, Path: resolved}
}

// Read returns the full UTF-8 content of path. A missing file is KindNotFound;
// every other failure, including invalid UTF-8, is KindIOFailure.
func (s *Store) Read(path string) (string, error) {
	resolved := s.Resolve(path)
	if resolved == "" {
		return "", errors.NewBridgeError("read", errors.KindInvalidInput, fmt.Errorf("%w: empty path", errors.ErrInvalidInput))
	}

	data, err := afero.ReadFile(s.fs, resolved)
	if err != nil {
		kind := errors.KindIOFailure
		if errors.Is(err, fs.ErrNotExist) {
			kind = errors.KindNotFound
		}
		return "", errors.NewBridgeError("read", kind, err).WithPath(resolved)
	}
	if !utf8.Valid(data) {
		return "", errors.NewBridgeError("read", errors.KindIOFailure, fmt.Errorf("%w: file is not valid UTF-8", errors.ErrIOFailure)).WithPath(resolved)
	}
	return string(data), nil
}

// Exists reports whether path names an existing file or directory.
func (s *Store) Exists(path string) bool {
	ok, err := afero.Exists(s.fs, s.Resolve(path))
	return err == nil && ok
}
