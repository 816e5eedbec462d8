package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/starford/quire/internal/models"
)

// DefaultExtension is the document extension used when none is configured.
const DefaultExtension = ".md"

// FS implements Provider backed by the local file system.
type FS struct {
	root    string // absolute path to content directory
	ext     string
	exclude []string
	logger  *slog.Logger
}

// Option configures an FS.
type Option func(*FS)

// WithExtension sets the document extension (".md" by default).
func WithExtension(ext string) Option {
	return func(f *FS) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if ext != "" {
			f.ext = ext
		}
	}
}

// WithExclude skips files whose relative path matches any doublestar pattern.
func WithExclude(patterns ...string) Option {
	return func(f *FS) {
		f.exclude = append(f.exclude, patterns...)
	}
}

// WithLogger sets the logger used for skipped entries.
func WithLogger(l *slog.Logger) Option {
	return func(f *FS) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string, opts ...Option) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	f := &FS{root: abs, ext: DefaultExtension, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	for _, p := range f.exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("storage: invalid exclude pattern: %q", p)
		}
	}
	return f, nil
}

// Root returns the absolute content root.
func (f *FS) Root() string { return f.root }

// Extension returns the document extension.
func (f *FS) Extension() string { return f.ext }

// safePath resolves a relative path against the content root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes content root: %s", rel)
	}
	return abs, nil
}

// List walks dir and returns every non-empty file carrying the document
// extension. Hidden (".") and partial ("_") directories are skipped, as are
// excluded paths. Unreadable subdirectories are logged and skipped.
func (f *FS) List(ctx context.Context, dir string) ([]models.FileInfo, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []models.FileInfo
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if walkErr != nil {
			if p == base {
				return walkErr
			}
			f.logger.Warn("storage: skip unreadable entry", slog.String("path", p), slog.String("error", walkErr.Error()))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != base && SkipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), f.ext) {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if f.excluded(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			f.logger.Warn("storage: stat failed", slog.String("path", rel), slog.String("error", err.Error()))
			return nil
		}
		if info.Size() == 0 {
			return nil
		}
		out = append(out, models.FileInfo{
			Path:    rel,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a content file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Stat returns metadata for a content file. Directories, symlinks and other
// non-regular entries report fs.ErrNotExist since List never yields them.
func (f *FS) Stat(path string) (models.FileInfo, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return models.FileInfo{}, err
	}
	info, err := os.Lstat(abs)
	if err != nil {
		return models.FileInfo{}, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() || !f.realDirs(abs) {
		return models.FileInfo{}, fmt.Errorf("storage: stat %s: %w", path, fs.ErrNotExist)
	}
	return models.FileInfo{Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// realDirs reports whether every directory between the root and abs is a
// real directory rather than a symlink, as WalkDir requires to descend.
func (f *FS) realDirs(abs string) bool {
	for dir := filepath.Dir(abs); dir != f.root; dir = filepath.Dir(dir) {
		info, err := os.Lstat(dir)
		if err != nil || !info.IsDir() {
			return false
		}
		if len(dir) <= len(f.root) {
			return false
		}
	}
	return true
}

// Hidden reports whether List would never yield the file at rel: it sits
// below a hidden or partial directory, or matches an exclude pattern.
func (f *FS) Hidden(rel string) bool {
	dirs := strings.Split(rel, "/")
	for _, name := range dirs[:len(dirs)-1] {
		if SkipDir(name) {
			return true
		}
	}
	return f.excluded(rel)
}

func (f *FS) excluded(rel string) bool {
	for _, p := range f.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// SkipDir reports whether a directory is hidden (".") or partial ("_") and
// never holds documents.
func SkipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// IsNotExist reports whether err means the file is absent.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
