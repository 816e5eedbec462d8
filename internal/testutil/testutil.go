// Package testutil provides shared test helpers for setting up content roots
// and repositories.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/quire/internal/render"
	"github.com/starford/quire/internal/repository"
	"github.com/starford/quire/internal/storage"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WriteFiles writes files (relative slash paths to contents) below root.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// TestContent creates a temporary content root holding files.
func TestContent(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, files)
	store, err := storage.NewFS(root, storage.WithLogger(Logger()))
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// TestRepository creates a repository over a temporary content root.
func TestRepository(t *testing.T, files map[string]string) (string, *repository.Repository) {
	t.Helper()
	root, store := TestContent(t, files)
	return root, repository.New(store, render.New(), Logger())
}

// RemoveFile deletes a file below root.
func RemoveFile(t *testing.T, root, rel string) {
	t.Helper()
	if err := os.Remove(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
		t.Fatal(err)
	}
}
