package tui

import (
	"github.com/fieldstone/redline/internal/gitx"
	"github.com/fieldstone/redline/internal/prefs"
)

// tickMsg triggers periodic refresh.
type tickMsg struct{}

// watchMsg reports a debounced filesystem change.
type watchMsg struct {
	path string
}

// filesMsg contains loaded file changes.
type filesMsg struct {
	files []gitx.FileChange
	err   error
}

// diffMsg contains a loaded raw diff. gen ties the response to the request
// that issued it; stale generations are dropped by Update.
type diffMsg struct {
	path string
	mode string
	gen  int
	raw  string
	err  error
}

// lastCommitMsg contains the last commit summary.
type lastCommitMsg struct {
	summary string
	err     error
}

// currentBranchMsg contains the current branch name.
type currentBranchMsg struct {
	name string
	err  error
}

// prefsMsg contains loaded preferences.
type prefsMsg struct {
	p prefs.Prefs
}

// saveResultMsg reports the outcome of an edit-session save.
type saveResultMsg struct {
	path    string
	applied int
	err     error
}
