package internal

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func testConfig(t *testing.T, backend string) *Config {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "first.md"), []byte("# First\n\nalpha"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	cfg.Content.Path = root
	cfg.Search.Backend = backend
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestBuild_SQLiteRefresh(t *testing.T) {
	cfg := testConfig(t, SearchBackendSQLite)
	app, err := newApplication(WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	deps, err := app.build(ctx, app.logger())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer deps.Close()
	if deps.catalog == nil {
		t.Fatal("sqlite backend should open a catalog")
	}

	res, err := deps.svc.Search(ctx, "alpha")
	if err != nil || len(res) != 1 {
		t.Fatalf("initial search = %+v, %v", res, err)
	}

	if err := os.WriteFile(filepath.Join(cfg.Content.Path, "second.md"), []byte("alpha again"), 0o644); err != nil {
		t.Fatal(err)
	}
	deps.Refresh(ctx)

	res, err = deps.svc.Search(ctx, "alpha")
	if err != nil || len(res) != 2 {
		t.Errorf("search after refresh = %+v, %v", res, err)
	}
}

func TestBuild_SQLiteMatchesScanAfterEdit(t *testing.T) {
	ctx := context.Background()
	counts := func(t *testing.T, deps *components) (int, int) {
		t.Helper()
		bravo, err := deps.svc.Search(ctx, "bravo")
		if err != nil {
			t.Fatal(err)
		}
		alpha, err := deps.svc.Search(ctx, "alpha")
		if err != nil {
			t.Fatal(err)
		}
		return len(bravo), len(alpha)
	}

	for _, backend := range []string{SearchBackendScan, SearchBackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)
			app, err := newApplication(WithConfig(cfg), WithLogOutput(io.Discard))
			if err != nil {
				t.Fatal(err)
			}
			deps, err := app.build(ctx, app.logger())
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			defer deps.Close()

			if err := os.WriteFile(filepath.Join(cfg.Content.Path, "first.md"), []byte("# First\n\nbravo changed text"), 0o644); err != nil {
				t.Fatal(err)
			}
			// What the watcher runs on a change.
			deps.Refresh(ctx)

			if bravo, alpha := counts(t, deps); bravo != 1 || alpha != 0 {
				t.Errorf("search(bravo)=%d search(alpha)=%d, want 1 and 0", bravo, alpha)
			}
		})
	}
}

func TestBuild_DevModeUsesScan(t *testing.T) {
	cfg := testConfig(t, SearchBackendSQLite)
	cfg.App.Dev = true
	app, err := newApplication(WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	deps, err := app.build(context.Background(), app.logger())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer deps.Close()
	if deps.catalog != nil {
		t.Error("dev mode should not open a catalog")
	}
}

func TestBuild_MissingContentRoot(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.Path = filepath.Join(t.TempDir(), "missing")
	app, err := newApplication(WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := app.build(context.Background(), app.logger()); err == nil {
		t.Fatal("expected error for missing content root")
	}
}

func TestNewApplication_RequiresConfig(t *testing.T) {
	if _, err := newApplication(); err == nil {
		t.Fatal("expected error without config")
	}
}
