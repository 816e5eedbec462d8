package index

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/quire/internal/testutil"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

var testWatchOpts = WatchOptions{Extension: ".md", Debounce: 50 * time.Millisecond}

// startWatch runs Watch on root and returns the callback counter.
func startWatch(t *testing.T, root string) *atomic.Int32 {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var calls atomic.Int32
	go Watch(ctx, root, testWatchOpts, testutil.Logger(), func() { calls.Add(1) })
	time.Sleep(100 * time.Millisecond)
	return &calls
}

func TestWatcher_NewFileTriggers(t *testing.T) {
	root := t.TempDir()
	calls := startWatch(t, root)

	_ = os.WriteFile(filepath.Join(root, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return calls.Load() > 0
	}, "new file did not trigger callback")
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	root := t.TempDir()
	calls := startWatch(t, root)

	_ = os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644)
	time.Sleep(300 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("callback fired %d times for non-document file", n)
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	root := t.TempDir()
	calls := startWatch(t, root)

	subDir := filepath.Join(root, "subdir")
	_ = os.MkdirAll(subDir, 0o755)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "new dir did not trigger callback")

	before := calls.Load()
	_ = os.WriteFile(filepath.Join(subDir, "deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return calls.Load() > before
	}, "file in new subdir did not trigger callback")
}

func TestWatcher_ResyncsCatalog(t *testing.T) {
	root, repo := testutil.TestRepository(t, map[string]string{"old.md": "# Rename me"})
	db := testDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := testutil.Logger()

	if err := Sync(ctx, db, repo, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	go Watch(ctx, root, testWatchOpts, logger, func() {
		repo.InvalidateAll()
		_ = Sync(ctx, db, repo, logger)
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(root, "old.md"), filepath.Join(root, "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldCS, _ := db.GetChecksum(ctx, "old")
		newCS, _ := db.GetChecksum(ctx, "renamed")
		return oldCS == "" && newCS != ""
	}, "rename not reflected: old path should be removed and new path indexed")
}
