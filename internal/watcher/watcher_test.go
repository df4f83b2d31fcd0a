package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"archmap/internal/config"
)

func watchConfig() *config.Config {
	cfg := config.Default()
	cfg.Watch.Debounce = 100 * time.Millisecond
	cfg.Watch.RescanRate = 100
	cfg.Watch.RescanBurst = 10
	return cfg
}

func startWatcher(t *testing.T, root string, cfg *config.Config) chan []string {
	t.Helper()
	batches := make(chan []string, 4)
	w, err := New(root, cfg, func(paths []string) {
		batches <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Close() })

	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}
	return batches
}

func containsPath(paths []string, want string) bool {
	for _, p := range paths {
		if p == want {
			return true
		}
	}
	return false
}

func TestWatcherReportsSourceChanges(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root, watchConfig())

	target := filepath.Join(root, "lib.rs")
	if err := os.WriteFile(target, []byte("pub fn a() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-batches:
		if !containsPath(paths, target) {
			t.Errorf("expected %s in batch %v", target, paths)
		}
	case <-time.After(2 * time.Second):
		t.Error("timed out waiting for change batch")
	}
}

func TestWatcherIgnoresNonSourceFiles(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root, watchConfig())

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-batches:
		t.Errorf("unexpected batch for non-source file: %v", paths)
	case <-time.After(500 * time.Millisecond):
		// Expected
	}
}

func TestWatcherIgnoresExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root, watchConfig())

	buildDir := filepath.Join(root, "target", "debug")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(buildDir, "gen.rs"), []byte("fn g() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-batches:
		t.Errorf("unexpected batch for excluded directory: %v", paths)
	case <-time.After(500 * time.Millisecond):
		// Expected
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root, watchConfig())

	subdir := filepath.Join(root, "src")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(subdir, "nested.rs")
	if err := os.WriteFile(nested, []byte("pub fn n() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found := false
	timeout := time.After(2 * time.Second)
	for !found {
		select {
		case paths := <-batches:
			if containsPath(paths, nested) {
				found = true
			}
		case <-timeout:
			t.Fatal("timed out waiting for event from new directory")
		}
	}
}

func TestWatcherRateLimitsRescans(t *testing.T) {
	cfg := watchConfig()
	cfg.Watch.RescanRate = 0.001
	cfg.Watch.RescanBurst = 1

	root := t.TempDir()
	batches := startWatcher(t, root, cfg)

	if err := os.WriteFile(filepath.Join(root, "one.rs"), []byte("fn a() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-batches:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first batch")
	}

	if err := os.WriteFile(filepath.Join(root, "two.rs"), []byte("fn b() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// The burst is spent, so the second batch is held back.
	select {
	case paths := <-batches:
		t.Errorf("expected rate limiter to hold the batch, got %v", paths)
	case <-time.After(700 * time.Millisecond):
		// Expected
	}
}
