package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/fieldstone/redline/internal/editsess"
	"github.com/fieldstone/redline/internal/gitx"
	"github.com/fieldstone/redline/internal/theme"
	"github.com/fieldstone/redline/internal/tui/components"
	"github.com/fieldstone/redline/internal/tui/search"
)

// State holds all application state.
type State struct {
	// Repository
	RepoRoot      string
	Files         []gitx.FileChange
	CurrentBranch string
	DiffMode      string // gitx.ModeHead or gitx.ModeStaged
	LastCommit    string

	// UI state
	Width       int
	Height      int
	ShowHelp    bool
	LastRefresh time.Time

	// Diff loading: every request carries DiffGen; responses for older
	// generations are dropped. DiffKey is the (path, mode) of the diff
	// currently held by the DiffView, so unchanged selections skip a reparse.
	DiffGen int
	DiffKey string

	// Components
	TreeView     *components.TreeView
	DiffView     *components.DiffView
	StatusBar    *components.StatusBar
	SearchEngine *search.Engine

	// Edit mode
	Session   *editsess.Session
	EditInput textinput.Model
	Editing   bool

	// Theme
	Theme theme.Theme
}

// NewState creates initial application state.
func NewState(repoRoot string) *State {
	curTheme := theme.LoadFromRepo(repoRoot)

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0

	sb := components.NewStatusBar()
	sb.SetDiffMode(gitx.ModeHead)

	return &State{
		RepoRoot:     repoRoot,
		DiffMode:     gitx.ModeHead,
		Theme:        curTheme,
		TreeView:     components.NewTreeView(curTheme),
		DiffView:     components.NewDiffView(curTheme),
		StatusBar:    sb,
		SearchEngine: search.New(),
		EditInput:    ti,
	}
}
