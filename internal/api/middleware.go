// Package api implements the quire JSON API using chi.
package api

import (
	"net/http"
)

// Invalidator drops cached content.
type Invalidator interface {
	Invalidate()
}

// DevInvalidate returns middleware that drops every cache before each
// request, so edits show up without a watcher. If enabled is false, all
// requests pass through untouched.
func DevInvalidate(enabled bool, inv Invalidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inv.Invalidate()
			next.ServeHTTP(w, r)
		})
	}
}
