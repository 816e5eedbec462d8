// Package pathsafe validates logical document paths before they reach the
// filesystem.
package pathsafe

import (
	"regexp"
	"strings"
)

var safeRe = regexp.MustCompile(`^[a-zA-Z0-9_\-/]+$`)

// IsSafe reports whether path is a valid logical document path: only
// [a-zA-Z0-9_-/], no empty segments.
func IsSafe(path string) bool {
	if !safeRe.MatchString(path) {
		return false
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			return false
		}
	}
	return true
}

// Segments splits a logical path into its segments.
func Segments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Last returns the final segment of path.
func Last(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// FromFile derives the logical path for a slash-separated file path relative
// to the content root. ok is false when the file does not carry ext or the
// result would not be safe.
func FromFile(rel, ext string) (logical string, ok bool) {
	if !strings.HasSuffix(rel, ext) {
		return "", false
	}
	logical = strings.TrimSuffix(rel, ext)
	if !IsSafe(logical) {
		return "", false
	}
	return logical, true
}

// Compare orders logical paths case-insensitively, then by exact bytes, so
// distinct paths never compare equal.
func Compare(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
