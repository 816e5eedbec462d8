// Package storage defines the read-only content-root abstraction.
package storage

import (
	"context"

	"github.com/starford/quire/internal/models"
)

// Provider is the interface for content file operations. All paths are
// slash-separated and relative to the content root.
type Provider interface {
	// List returns every non-empty document file under dir.
	List(ctx context.Context, dir string) ([]models.FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Stat returns size and modification time of the file at path.
	Stat(path string) (models.FileInfo, error)
	// Hidden reports whether List skips path, so lookups must too.
	Hidden(path string) bool
	// Extension is the document file extension, including the dot.
	Extension() string
}
