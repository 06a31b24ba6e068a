package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	w.Start()

	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Changes:
		if got != path {
			t.Fatalf("change path = %q, want %q", got, path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change delivered")
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	w.Start()

	path := filepath.Join(dir, "f.txt")
	for i := 0; i < 10; i++ {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-w.Changes:
	case <-time.After(3 * time.Second):
		t.Fatal("no change delivered")
	}
	// the burst must collapse; no second signal arrives right away
	select {
	case <-w.Changes:
		t.Fatal("burst was not debounced")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresGitDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	w.Start()

	if err := os.WriteFile(filepath.Join(dir, ".git", "index"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Changes:
		t.Fatalf("unexpected change for %q", got)
	case <-time.After(500 * time.Millisecond):
	}
}
