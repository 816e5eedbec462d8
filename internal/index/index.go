package index

import (
	"context"

	"github.com/starford/quire/internal/search"
)

// Catalog defines the search catalog operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Catalog interface {
	search.Searcher
	Upsert(ctx context.Context, r Row) error
	Delete(ctx context.Context, path string) error
	GetChecksum(ctx context.Context, path string) (string, error)
	AllChecksums(ctx context.Context) (map[string]string, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
