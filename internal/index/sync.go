package index

import (
	"context"
	"log/slog"

	"github.com/starford/quire/internal/models"
)

// Source yields every current document.
type Source interface {
	All(ctx context.Context) ([]*models.Document, error)
}

// Sync brings the catalog up to date with src:
//   - new/changed documents (by checksum) are upserted
//   - rows whose document is gone are deleted
func Sync(ctx context.Context, db Catalog, src Source, logger *slog.Logger) error {
	docs, err := src.All(ctx)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums(ctx)
	if err != nil {
		return err
	}

	current := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		current[d.Path] = struct{}{}

		if checksums[d.Path] == d.Checksum {
			continue
		}
		if err := db.Upsert(ctx, RowFor(d)); err != nil {
			logger.Warn("sync: index failed", slog.String("path", d.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", d.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := current[p]; !ok {
			if err := db.Delete(ctx, p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}
