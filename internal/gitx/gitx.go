// Package gitx shells out to git and exposes the provider surfaces the rest
// of the program consumes: changed-file listings, per-file unified diffs, and
// whole-file read/write for line editing.
package gitx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fieldstone/redline/internal/theme"
)

// FileChange represents a changed file in the repo.
type FileChange struct {
	Path      string
	Staged    bool
	Unstaged  bool
	Untracked bool
	Added     bool
	Conflict  bool
	Binary    bool
	Deleted   bool
}

// Severity maps the status flags onto the display severity used to color the
// file tree. Deletion outranks conflict, which outranks addition.
func (f FileChange) Severity() theme.Severity {
	switch {
	case f.Deleted:
		return theme.SeverityDeleted
	case f.Conflict:
		return theme.SeverityConflict
	case f.Added:
		return theme.SeverityAdded
	case f.Untracked:
		return theme.SeverityUntracked
	default:
		return theme.SeverityModified
	}
}

// RepoRoot resolves the git repository root from a given path (or current dir).
func RepoRoot(path string) (string, error) {
	if path == "" {
		path = "."
	}
	cmd := exec.Command("git", "-C", path, "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("rev-parse: %w", err)
	}
	root := strings.TrimSpace(string(out))
	if root == "" {
		return "", errors.New("empty git root")
	}
	return root, nil
}

// CurrentBranch returns the checked-out branch name.
func CurrentBranch(repoRoot string) (string, error) {
	cmd := exec.Command("git", "-C", repoRoot, "rev-parse", "--abbrev-ref", "HEAD")
	b, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("rev-parse: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// ChangedFiles lists files changed relative to HEAD, combining staged,
// unstaged, untracked, added, conflicted, and deleted states per path.
func ChangedFiles(repoRoot string) ([]FileChange, error) {
	// Unstaged vs index (include deletions)
	unstaged, err := listNames(repoRoot, []string{"diff", "--name-only", "--diff-filter=ACDMRTXB"})
	if err != nil {
		return nil, err
	}
	// Staged vs HEAD
	staged, err := listNames(repoRoot, []string{"diff", "--name-only", "--cached", "--diff-filter=ACDMRTXB"})
	if err != nil {
		return nil, err
	}
	// Untracked files
	untracked, err := listNames(repoRoot, []string{"ls-files", "--others", "--exclude-standard"})
	if err != nil {
		return nil, err
	}
	// Detail passes
	deletedUnstaged, _ := listNames(repoRoot, []string{"ls-files", "-d"}) // deleted in WT, not staged
	deletedStaged, _ := listNames(repoRoot, []string{"diff", "--cached", "--name-only", "--diff-filter=D"})
	addedStaged, _ := listNames(repoRoot, []string{"diff", "--cached", "--name-only", "--diff-filter=A"})
	conflicted, _ := listNames(repoRoot, []string{"diff", "--name-only", "--diff-filter=U"})

	m := map[string]*FileChange{}
	mark := func(paths []string, fn func(fc *FileChange)) {
		for _, p := range paths {
			if p == "" { // skip any empties
				continue
			}
			fc := m[p]
			if fc == nil {
				fc = &FileChange{Path: p}
				m[p] = fc
			}
			fn(fc)
		}
	}
	mark(unstaged, func(fc *FileChange) { fc.Unstaged = true })
	mark(staged, func(fc *FileChange) { fc.Staged = true })
	mark(untracked, func(fc *FileChange) { fc.Untracked = true })
	mark(deletedUnstaged, func(fc *FileChange) { fc.Deleted = true; fc.Unstaged = true })
	mark(deletedStaged, func(fc *FileChange) { fc.Deleted = true; fc.Staged = true })
	mark(addedStaged, func(fc *FileChange) { fc.Added = true })
	mark(conflicted, func(fc *FileChange) { fc.Conflict = true })

	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]FileChange, 0, len(paths))
	for _, p := range paths {
		fc := m[p]
		// Lightweight binary check: numstat reports "-" counts for binaries
		if isBinary(repoRoot, p) {
			fc.Binary = true
		}
		out = append(out, *fc)
	}
	return out, nil
}

func listNames(repoRoot string, args []string) ([]string, error) {
	a := append([]string{"-C", repoRoot}, args...)
	cmd := exec.Command("git", a...)
	b, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %v: %w", strings.Join(args, " "), err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out, nil
}

// Diff mode selectors.
const (
	ModeHead   = "head"   // working tree vs HEAD
	ModeStaged = "staged" // index vs HEAD
)

// Diff returns the unified diff for a single file. ModeStaged compares the
// index against HEAD; anything else compares the working tree against HEAD.
// Untracked files diff against /dev/null. No differences yields an empty
// string, not an error.
func Diff(repoRoot, path, mode string) (string, error) {
	return diffCtx(context.Background(), repoRoot, path, mode)
}

func diffCtx(ctx context.Context, repoRoot, path, mode string) (string, error) {
	var args []string
	switch {
	case mode == ModeStaged:
		args = []string{"-C", repoRoot, "diff", "--no-color", "--text", "--cached", "HEAD", "--", path}
	case isTracked(repoRoot, path):
		args = []string{"-C", repoRoot, "diff", "--no-color", "--text", "HEAD", "--", path}
	default:
		// For untracked files, show diff vs /dev/null
		args = []string{"-C", repoRoot, "diff", "--no-color", "--no-index", "--text", "/dev/null", path}
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		// --no-index exits 1 whenever the files differ; only empty output
		// signals a real failure
		if len(b) == 0 {
			return "", fmt.Errorf("git diff: %w", err)
		}
	}
	return string(b), nil
}

func isBinary(repoRoot, path string) bool {
	var args []string
	if isTracked(repoRoot, path) {
		args = []string{"-C", repoRoot, "diff", "--numstat", "HEAD", "--", path}
	} else {
		args = []string{"-C", repoRoot, "diff", "--numstat", "--no-index", "/dev/null", path}
	}
	cmd := exec.Command("git", args...)
	b, _ := cmd.Output()
	line := strings.TrimSpace(string(b))
	if line == "" {
		return false
	}
	// numstat returns "-\t-\tpath" for binary files
	parts := strings.Split(line, "\t")
	if len(parts) >= 2 && (parts[0] == "-" || parts[1] == "-") {
		return true
	}
	return bytes.Contains(b, []byte("-\t-\t"))
}

func isTracked(repoRoot, path string) bool {
	cmd := exec.Command("git", "-C", repoRoot, "ls-files", "--error-unmatch", "--", path)
	return cmd.Run() == nil
}

// LastCommitSummary returns short hash and subject of last commit.
func LastCommitSummary(repoRoot string) (string, error) {
	cmd := exec.Command("git", "-C", repoRoot, "log", "-1", "--pretty=format:%h %s")
	b, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git log: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// Client binds a repository root and diff mode into the diff and file
// providers the edit session consumes.
type Client struct {
	Root string
	Mode string
}

// Diff returns the unified diff for path under the client's mode.
func (c *Client) Diff(ctx context.Context, path string) (string, error) {
	return diffCtx(ctx, c.Root, path, c.Mode)
}

// ReadFile returns the full working-tree content of path.
func (c *Client) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := os.ReadFile(filepath.Join(c.Root, path))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

// WriteFile atomically replaces path's content: the new bytes land in a temp
// file in the same directory and are renamed over the original, so readers
// never observe a partial write.
func (c *Client) WriteFile(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs := filepath.Join(c.Root, path)
	perm := os.FileMode(0o644)
	if info, err := os.Stat(abs); err == nil {
		perm = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(abs), ".redline-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
