// Package apperr holds the sentinel errors shared by every boundary.
package apperr

import "errors"

var (
	// ErrNotFound covers unknown, unsafe and unreadable document paths.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery is returned for empty or over-long search queries.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrTooLarge is returned for preview sources over the size limit.
	ErrTooLarge = errors.New("too large")
)
