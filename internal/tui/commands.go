package tui

import (
	"context"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldstone/redline/internal/gitx"
	"github.com/fieldstone/redline/internal/prefs"
	"github.com/fieldstone/redline/internal/watcher"
)

// loadFiles loads the changed files list for the current diff mode.
func loadFiles(repoRoot, diffMode string) tea.Cmd {
	return func() tea.Msg {
		allFiles, err := gitx.ChangedFiles(repoRoot)
		if err != nil {
			return filesMsg{files: nil, err: err}
		}

		var filtered []gitx.FileChange
		for _, file := range allFiles {
			if diffMode == gitx.ModeStaged {
				if file.Staged {
					filtered = append(filtered, file)
				}
			} else {
				if file.Unstaged || file.Untracked || file.Conflict {
					filtered = append(filtered, file)
				}
			}
		}

		// Stable sort for deterministic UI
		sort.Slice(filtered, func(i, j int) bool {
			return filtered[i].Path < filtered[j].Path
		})

		return filesMsg{files: filtered, err: nil}
	}
}

// loadDiff loads the raw diff for a file, tagged with the request generation.
func loadDiff(repoRoot, path, diffMode string, gen int) tea.Cmd {
	return func() tea.Msg {
		d, err := gitx.Diff(repoRoot, path, diffMode)
		return diffMsg{path: path, mode: diffMode, gen: gen, raw: d, err: err}
	}
}

// loadLastCommit loads the last commit summary.
func loadLastCommit(repoRoot string) tea.Cmd {
	return func() tea.Msg {
		s, err := gitx.LastCommitSummary(repoRoot)
		return lastCommitMsg{summary: s, err: err}
	}
}

// loadCurrentBranch loads the current branch name.
func loadCurrentBranch(repoRoot string) tea.Cmd {
	return func() tea.Msg {
		name, err := gitx.CurrentBranch(repoRoot)
		return currentBranchMsg{name: name, err: err}
	}
}

// loadPrefs loads user preferences.
func loadPrefs(repoRoot string) tea.Cmd {
	return func() tea.Msg {
		return prefsMsg{p: prefs.Load(repoRoot)}
	}
}

// tickOnce schedules a single refresh tick.
func tickOnce() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// waitForChange blocks on the watcher and re-arms after each event.
func waitForChange(w *watcher.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-w.Changes
		if !ok {
			return nil
		}
		return watchMsg{path: path}
	}
}

// saveSession runs the edit-session save off the UI goroutine.
func saveSession(s *State) tea.Cmd {
	sess := s.Session
	path := sess.Path()
	return func() tea.Msg {
		applied, err := sess.Save(context.Background())
		return saveResultMsg{path: path, applied: applied, err: err}
	}
}
