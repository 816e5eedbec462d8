package pathsafe

import (
	"regexp"
	"slices"
	"strings"
	"testing"
)

func TestIsSafe(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"hello", true},
		{"tech/rust-lang", true},
		{"a/b_c/D-9", true},
		{"", false},
		{"../etc/passwd", false},
		{"a/../b", false},
		{"a/./b", false},
		{"notes.md", false},
		{"/leading", false},
		{"trailing/", false},
		{"double//slash", false},
		{"space here", false},
		{`back\slash`, false},
		{"naïve", false},
		{"line\nbreak", false},
	}
	for _, tc := range cases {
		if got := IsSafe(tc.path); got != tc.want {
			t.Errorf("IsSafe(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestIsSafe_AcceptedPathsMatchClass(t *testing.T) {
	re := regexp.MustCompile(`^[a-zA-Z0-9_\-/]+$`)
	for _, p := range []string{"a", "a/b", "x-y/z_w/1", "A/B/C"} {
		if !IsSafe(p) {
			t.Fatalf("expected %q to be safe", p)
		}
		if !re.MatchString(p) {
			t.Errorf("%q accepted but outside character class", p)
		}
		for _, seg := range strings.Split(p, "/") {
			if seg == ".." {
				t.Errorf("%q accepted with .. segment", p)
			}
		}
	}
}

func TestFromFile(t *testing.T) {
	cases := []struct {
		rel    string
		want   string
		wantOK bool
	}{
		{"hello.md", "hello", true},
		{"tech/rust-lang.md", "tech/rust-lang", true},
		{"notes.txt", "", false},
		{"v1.2/notes.md", "", false},
		{"my notes.md", "", false},
		{".md", "", false},
	}
	for _, tc := range cases {
		got, ok := FromFile(tc.rel, ".md")
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("FromFile(%q) = (%q, %v), want (%q, %v)", tc.rel, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestLastAndSegments(t *testing.T) {
	if got := Last("a/b/c"); got != "c" {
		t.Errorf("Last = %q", got)
	}
	if got := Last("solo"); got != "solo" {
		t.Errorf("Last = %q", got)
	}
	if got := Segments("a/b"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Segments = %v", got)
	}
	if got := Segments(""); got != nil {
		t.Errorf("Segments(\"\") = %v, want nil", got)
	}
}

func TestCompare(t *testing.T) {
	paths := []string{"b", "a/c", "A", "a", "B/x"}
	slices.SortFunc(paths, Compare)
	want := []string{"A", "a", "a/c", "b", "B/x"}
	if !slices.Equal(paths, want) {
		t.Errorf("sorted = %v, want %v", paths, want)
	}
}
