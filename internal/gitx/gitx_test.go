package gitx

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fieldstone/redline/internal/theme"
)

func TestChangedFiles_AndDiff(t *testing.T) {
	dir := t.TempDir()

	mustRun(t, dir, "git", "init", "-q")
	mustRun(t, dir, "git", "config", "user.email", "test@example.com")
	mustRun(t, dir, "git", "config", "user.name", "Test User")

	// initial commit
	write(t, filepath.Join(dir, "f1.txt"), "one\nline\n")
	write(t, filepath.Join(dir, "del.txt"), "to delete\n")
	mustRun(t, dir, "git", "add", ".")
	mustRun(t, dir, "git", "commit", "-q", "-m", "init")

	// modify f1 (unstaged), create new (untracked), delete del.txt (unstaged)
	write(t, filepath.Join(dir, "f1.txt"), "one\nline changed\n")
	write(t, filepath.Join(dir, "new.txt"), "brand new\n")
	if err := os.Remove(filepath.Join(dir, "del.txt")); err != nil {
		t.Fatal(err)
	}

	files, err := ChangedFiles(dir)
	if err != nil {
		t.Fatalf("ChangedFiles error: %v", err)
	}
	m := map[string]FileChange{}
	for _, f := range files {
		m[f.Path] = f
	}
	if !m["f1.txt"].Unstaged {
		t.Fatalf("expected f1.txt to be unstaged modified, got %+v", m["f1.txt"])
	}
	if !m["new.txt"].Untracked {
		t.Fatalf("expected new.txt to be untracked, got %+v", m["new.txt"])
	}
	if !(m["del.txt"].Deleted && m["del.txt"].Unstaged) {
		t.Fatalf("expected del.txt to be deleted unstaged, got %+v", m["del.txt"])
	}

	if got := m["f1.txt"].Severity(); got != theme.SeverityModified {
		t.Fatalf("f1.txt severity = %v, want modified", got)
	}
	if got := m["new.txt"].Severity(); got != theme.SeverityUntracked {
		t.Fatalf("new.txt severity = %v, want untracked", got)
	}
	if got := m["del.txt"].Severity(); got != theme.SeverityDeleted {
		t.Fatalf("del.txt severity = %v, want deleted", got)
	}

	// worktree diff for modified file should carry both sides of the change
	d, err := Diff(dir, "f1.txt", ModeHead)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if !strings.Contains(d, "-line") || !strings.Contains(d, "+line changed") {
		t.Fatalf("unexpected diff: %s", d)
	}

	// untracked files diff against /dev/null
	d, err = Diff(dir, "new.txt", ModeHead)
	if err != nil {
		t.Fatalf("Diff untracked error: %v", err)
	}
	if !strings.Contains(d, "+brand new") {
		t.Fatalf("unexpected untracked diff: %s", d)
	}
}

func TestDiff_StagedMode(t *testing.T) {
	dir := t.TempDir()

	mustRun(t, dir, "git", "init", "-q")
	mustRun(t, dir, "git", "config", "user.email", "test@example.com")
	mustRun(t, dir, "git", "config", "user.name", "Test User")

	write(t, filepath.Join(dir, "f.txt"), "original\n")
	mustRun(t, dir, "git", "add", ".")
	mustRun(t, dir, "git", "commit", "-q", "-m", "init")

	write(t, filepath.Join(dir, "f.txt"), "staged version\n")
	mustRun(t, dir, "git", "add", "f.txt")
	write(t, filepath.Join(dir, "f.txt"), "worktree version\n")

	d, err := Diff(dir, "f.txt", ModeStaged)
	if err != nil {
		t.Fatalf("Diff staged error: %v", err)
	}
	if !strings.Contains(d, "+staged version") || strings.Contains(d, "worktree version") {
		t.Fatalf("staged diff should show index, not worktree: %s", d)
	}

	// a file with no staged changes yields an empty staged diff
	write(t, filepath.Join(dir, "other.txt"), "x\n")
	mustRun(t, dir, "git", "add", "other.txt")
	mustRun(t, dir, "git", "commit", "-q", "-m", "other")
	d, err = Diff(dir, "other.txt", ModeStaged)
	if err != nil {
		t.Fatalf("Diff staged error: %v", err)
	}
	if strings.TrimSpace(d) != "" {
		t.Fatalf("expected empty staged diff, got: %s", d)
	}
}

func TestClient_ReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "f.txt"), "before\n")

	c := &Client{Root: dir, Mode: ModeHead}
	ctx := context.Background()

	got, err := c.ReadFile(ctx, "f.txt")
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if got != "before\n" {
		t.Fatalf("ReadFile = %q", got)
	}

	if err := c.WriteFile(ctx, "f.txt", "after\n"); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	got, err = c.ReadFile(ctx, "f.txt")
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if got != "after\n" {
		t.Fatalf("content after write = %q", got)
	}

	// write must not leave temp files behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".redline-") {
			t.Fatalf("leftover temp file %s", e.Name())
		}
	}
}

func TestClient_WritePreservesPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.sh")
	write(t, path, "#!/bin/sh\n")
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatal(err)
	}

	c := &Client{Root: dir}
	if err := c.WriteFile(context.Background(), "run.sh", "#!/bin/sh\necho hi\n"); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("perm = %v, want 0755", info.Mode().Perm())
	}
}

func mustRun(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("command %s %v failed: %v\n%s", name, args, err, out)
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
