package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fieldstone/redline/internal/diffview"
	"github.com/fieldstone/redline/internal/editsess"
	"github.com/fieldstone/redline/internal/gitx"
	"github.com/fieldstone/redline/internal/prefs"
	"github.com/fieldstone/redline/internal/tui/components"
	"github.com/fieldstone/redline/internal/watcher"
)

// Program is the Bubble Tea model: state, layout, and key handling split the
// way the rest of the package expects them.
type Program struct {
	state      *State
	layout     *Layout
	keyHandler *KeyHandler
	watch      *watcher.Watcher
}

// Run instantiates and runs the Bubble Tea program.
func Run(repoRoot string) error {
	p := Program{
		state:      NewState(repoRoot),
		layout:     NewLayout(),
		keyHandler: NewKeyHandler(),
	}
	// Watcher is best-effort; the periodic tick still refreshes without it.
	if w, err := watcher.New(repoRoot); err == nil {
		w.Start()
		p.watch = w
		defer w.Close()
	}
	prog := tea.NewProgram(p, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return err
	}
	return nil
}

func (p Program) Init() tea.Cmd {
	return tea.Batch(
		loadFiles(p.state.RepoRoot, p.state.DiffMode),
		loadLastCommit(p.state.RepoRoot),
		loadCurrentBranch(p.state.RepoRoot),
		loadPrefs(p.state.RepoRoot),
		tickOnce(),
		waitForChange(p.watch),
	)
}

func (p Program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return p.handleKey(msg)

	case tea.WindowSizeMsg:
		p.state.Width = msg.Width
		p.state.Height = msg.Height
		p.layout.SetSize(msg.Width, msg.Height)
		if p.layout.leftWidth == 0 {
			w := msg.Width / 3
			if w < 24 {
				w = 24
			}
			p.layout.SetLeftWidth(w)
		}
		p.recalcViewport()
		return p, nil

	case tickMsg:
		return p, tea.Batch(loadFiles(p.state.RepoRoot, p.state.DiffMode), tickOnce())

	case watchMsg:
		return p, tea.Batch(
			loadFiles(p.state.RepoRoot, p.state.DiffMode),
			loadLastCommit(p.state.RepoRoot),
			waitForChange(p.watch),
		)

	case filesMsg:
		if msg.err != nil {
			p.state.StatusBar.SetMessage(fmt.Sprintf("status error: %v", msg.err))
			return p, nil
		}
		p.state.Files = msg.files
		p.state.LastRefresh = time.Now()
		p.state.StatusBar.SetLastRefresh(p.state.LastRefresh)
		p.state.TreeView.SetFiles(msg.files)
		cmd := p.requestDiff()
		p.recalcViewport()
		return p, cmd

	case diffMsg:
		// Last request wins: older generations are dropped unseen.
		if msg.gen != p.state.DiffGen {
			return p, nil
		}
		if msg.err != nil {
			p.state.StatusBar.SetMessage(fmt.Sprintf("diff error: %v", msg.err))
			p.state.DiffView.ClearDiff()
			p.state.DiffKey = ""
			p.recalcViewport()
			return p, nil
		}
		lines := diffview.ParseUnified(msg.raw)
		rows := diffview.BuildRows(msg.raw)
		p.state.DiffView.SetDiff(msg.path, lines, rows)
		p.state.DiffKey = diffKey(msg.path, msg.mode)
		p.recalcViewport()
		return p, nil

	case lastCommitMsg:
		if msg.err == nil {
			p.state.LastCommit = msg.summary
			p.state.StatusBar.SetLastCommit(msg.summary)
		}
		return p, nil

	case currentBranchMsg:
		if msg.err == nil {
			p.state.CurrentBranch = msg.name
			p.state.StatusBar.SetBranch(msg.name)
		}
		return p, nil

	case prefsMsg:
		if msg.p.SideSet {
			p.state.DiffView.SetSideBySide(msg.p.SideBySide)
		}
		if msg.p.WrapSet {
			p.state.DiffView.SetWrap(msg.p.Wrap)
		}
		if msg.p.LeftSet {
			p.layout.SetLeftWidth(msg.p.LeftWidth)
		}
		p.recalcViewport()
		return p, nil

	case saveResultMsg:
		return p.handleSaveResult(msg)
	}
	return p, nil
}

func (p Program) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if p.state.ShowHelp {
		switch msg.String() {
		case "q", "ctrl+c":
			return p, tea.Quit
		case "h", "esc":
			p.state.ShowHelp = false
			p.recalcViewport()
		}
		return p, nil
	}

	if p.state.Editing {
		return p.handleEditKey(msg)
	}

	if p.state.SearchEngine.IsActive() {
		handled, cmd := p.state.SearchEngine.HandleKey(msg)
		if handled {
			p.recalcViewport()
			p.scrollToMatch()
			return p, cmd
		}
	}

	action, count := p.keyHandler.Handle(msg)
	p.state.StatusBar.SetKeyBuffer(p.keyHandler.KeyBuffer())
	return p.dispatch(action, count)
}

func (p Program) dispatch(action KeyAction, count int) (tea.Model, tea.Cmd) {
	s := p.state
	switch action {
	case ActionQuit:
		return p, tea.Quit
	case ActionToggleHelp:
		s.ShowHelp = !s.ShowHelp
		p.recalcViewport()
	case ActionOpenSearch:
		s.SearchEngine.Activate()
		p.recalcViewport()
	case ActionRefresh:
		return p, tea.Batch(
			loadFiles(s.RepoRoot, s.DiffMode),
			loadLastCommit(s.RepoRoot),
			loadCurrentBranch(s.RepoRoot),
		)
	case ActionToggleSideBySide:
		s.DiffView.SetSideBySide(!s.DiffView.GetSideBySide())
		_ = prefs.SaveSideBySide(s.RepoRoot, s.DiffView.GetSideBySide())
		p.recalcViewport()
	case ActionToggleDiffMode:
		if s.DiffMode == gitx.ModeStaged {
			s.DiffMode = gitx.ModeHead
		} else {
			s.DiffMode = gitx.ModeStaged
		}
		s.StatusBar.SetDiffMode(s.DiffMode)
		return p, loadFiles(s.RepoRoot, s.DiffMode)
	case ActionToggleWrap:
		s.DiffView.SetWrap(!s.DiffView.GetWrap())
		_ = prefs.SaveWrap(s.RepoRoot, s.DiffView.GetWrap())
		p.recalcViewport()
	case ActionToggleFolder:
		if s.TreeView.ToggleSelected() {
			p.recalcViewport()
		}
	case ActionEnterEdit:
		return p.enterEdit()
	case ActionYankPath:
		if n := s.TreeView.SelectedNode(); n != nil {
			if err := clipboard.WriteAll(n.Path); err != nil {
				s.StatusBar.SetMessage(fmt.Sprintf("yank failed: %v", err))
			} else {
				s.StatusBar.SetMessage("yanked " + n.Path)
			}
		}
	case ActionMoveDown:
		if s.TreeView.MoveSelection(count) {
			s.DiffView.Viewport().GotoTop()
			cmd := p.requestDiff()
			p.recalcViewport()
			return p, cmd
		}
	case ActionMoveUp:
		if s.TreeView.MoveSelection(-count) {
			s.DiffView.Viewport().GotoTop()
			cmd := p.requestDiff()
			p.recalcViewport()
			return p, cmd
		}
	case ActionGoToTop:
		if s.TreeView.GoToTop() {
			s.DiffView.Viewport().GotoTop()
			cmd := p.requestDiff()
			p.recalcViewport()
			return p, cmd
		}
	case ActionGoToBottom:
		if s.TreeView.GoToBottom() {
			s.DiffView.Viewport().GotoTop()
			cmd := p.requestDiff()
			p.recalcViewport()
			return p, cmd
		}
	case ActionScrollLeft:
		s.DiffView.ScrollLeft(4 * count)
		p.recalcViewport()
	case ActionScrollRight:
		s.DiffView.ScrollRight(4 * count)
		p.recalcViewport()
	case ActionScrollHome:
		s.DiffView.ScrollHome()
		p.recalcViewport()
	case ActionPageDown:
		s.DiffView.Viewport().PageDown()
	case ActionPageUp:
		s.DiffView.Viewport().PageUp()
	case ActionHalfPageDown:
		s.DiffView.Viewport().HalfPageDown()
	case ActionHalfPageUp:
		s.DiffView.Viewport().HalfPageUp()
	case ActionLineDown:
		s.DiffView.Viewport().LineDown(count)
	case ActionLineUp:
		s.DiffView.Viewport().LineUp(count)
	case ActionAdjustLeftWider:
		p.layout.AdjustLeftWidth(2 * count)
		_ = prefs.SaveLeftWidth(s.RepoRoot, p.layout.LeftWidth())
		p.recalcViewport()
	case ActionAdjustLeftNarrower:
		p.layout.AdjustLeftWidth(-2 * count)
		_ = prefs.SaveLeftWidth(s.RepoRoot, p.layout.LeftWidth())
		p.recalcViewport()
	case ActionSearchNext:
		s.SearchEngine.Next()
		p.recalcViewport()
		p.scrollToMatch()
	case ActionSearchPrevious:
		s.SearchEngine.Previous()
		p.recalcViewport()
		p.scrollToMatch()
	}
	return p, nil
}

// --- edit mode ---

// enterEdit opens an edit session on the selected file, placing the cursor on
// the first row with a new-side line. Refusals surface in the status line.
func (p Program) enterEdit() (tea.Model, tea.Cmd) {
	s := p.state
	fc := s.TreeView.SelectedFile()
	if fc == nil {
		s.StatusBar.SetMessage("select a file to edit")
		return p, nil
	}
	if fc.Binary {
		s.StatusBar.SetMessage("cannot edit a binary file")
		return p, nil
	}
	rows := s.DiffView.Rows()
	if len(rows) == 0 {
		s.StatusBar.SetMessage("no diff loaded yet")
		return p, nil
	}

	client := &gitx.Client{Root: s.RepoRoot, Mode: s.DiffMode}
	sess := editsess.New(client, client)
	resolver := diffview.RowResolver{Rows: rows}

	opened := false
	for row := 0; row < len(rows); row++ {
		err := sess.Open(context.Background(), fc.Path, resolver, row)
		if err == nil {
			opened = true
			break
		}
		if !errors.Is(err, editsess.ErrRowNotEditable) {
			s.StatusBar.SetMessage(fmt.Sprintf("edit refused: %v", err))
			return p, nil
		}
	}
	if !opened {
		s.StatusBar.SetMessage("no editable lines in this diff")
		return p, nil
	}

	s.Session = sess
	s.Editing = true
	s.EditInput.SetValue(sess.Buffer())
	s.EditInput.CursorEnd()
	s.EditInput.Focus()
	s.StatusBar.SetMessage("editing " + fc.Path + " (ctrl+s: save, esc: cancel)")
	p.recalcViewport()
	return p, nil
}

func (p Program) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := p.state
	sess := s.Session
	if sess.State() == editsess.StateSaving {
		// a save is in flight; keys resume once its result lands
		return p, nil
	}
	switch msg.String() {
	case "esc":
		discarded := sess.Cancel()
		p.exitEdit()
		s.StatusBar.SetMessage(fmt.Sprintf("edit canceled, %d change(s) discarded", discarded))
		p.recalcViewport()
		return p, nil
	case "ctrl+s":
		sess.SetBuffer(s.EditInput.Value())
		s.StatusBar.SetMessage("saving…")
		return p, saveSession(s)
	case "up", "down":
		sess.SetBuffer(s.EditInput.Value())
		delta := 1
		if msg.String() == "up" {
			delta = -1
		}
		if err := sess.MoveCursor(delta); err != nil {
			s.StatusBar.SetMessage(fmt.Sprintf("move failed: %v", err))
			return p, nil
		}
		s.EditInput.SetValue(sess.Buffer())
		s.EditInput.CursorEnd()
		p.recalcViewport()
		return p, nil
	}
	var cmd tea.Cmd
	s.EditInput, cmd = s.EditInput.Update(msg)
	p.recalcViewport()
	return p, cmd
}

func (p Program) handleSaveResult(msg saveResultMsg) (tea.Model, tea.Cmd) {
	s := p.state
	if msg.err != nil {
		var conflict *editsess.ConflictError
		if errors.As(msg.err, &conflict) {
			s.StatusBar.SetMessage(fmt.Sprintf("save aborted: %v", conflict))
		} else {
			s.StatusBar.SetMessage(fmt.Sprintf("save failed: %v", msg.err))
		}
		// session stays open with edits intact
		p.recalcViewport()
		return p, nil
	}
	p.exitEdit()
	if msg.applied == 0 {
		s.StatusBar.SetMessage("no changes to save")
	} else {
		s.StatusBar.SetMessage(fmt.Sprintf("saved %d line(s) to %s", msg.applied, msg.path))
	}
	// the held parse predates the write; drop the key so requestDiff reloads
	s.DiffKey = ""
	return p, tea.Batch(
		loadFiles(s.RepoRoot, s.DiffMode),
		p.requestDiff(),
	)
}

func (p Program) exitEdit() {
	s := p.state
	s.Editing = false
	s.Session = nil
	s.EditInput.Blur()
	s.EditInput.SetValue("")
	s.DiffView.SetEdit(false, 0, "", nil)
	p.recalcViewport()
}

// --- diff loading ---

func diffKey(path, mode string) string {
	return path + "\x00" + mode
}

// requestDiff issues a diff load for the selected file unless the view
// already holds that (path, mode) parse.
func (p Program) requestDiff() tea.Cmd {
	s := p.state
	fc := s.TreeView.SelectedFile()
	if fc == nil {
		s.DiffView.ClearDiff()
		s.DiffKey = ""
		return nil
	}
	key := diffKey(fc.Path, s.DiffMode)
	if key == s.DiffKey {
		return nil
	}
	s.DiffView.ClearDiff()
	s.DiffGen++
	return loadDiff(s.RepoRoot, fc.Path, s.DiffMode, s.DiffGen)
}

// --- rendering ---

func (p Program) View() string {
	s := p.state
	if s.Width == 0 || s.Height == 0 {
		return "Loading..."
	}

	overlay := p.overlayLines()
	contentHeight := p.layout.ContentHeight(len(overlay))

	leftLines := s.TreeView.Render(contentHeight)
	s.DiffView.SetSize(p.layout.RightWidth(), contentHeight)
	rightLines := strings.Split(s.DiffView.View(), "\n")

	return p.layout.RenderFrame(
		"Changes | "+p.topRightTitle(),
		"",
		leftLines,
		rightLines,
		overlay,
		s.StatusBar.Render(s.Width),
		s.Theme,
	)
}

func (p Program) topRightTitle() string {
	fc := p.state.TreeView.SelectedFile()
	if fc == nil {
		if n := p.state.TreeView.SelectedNode(); n != nil {
			return n.Path + "/"
		}
		return ""
	}
	return fmt.Sprintf("%s (%s)", fc.Path, components.FileStatusLabel(*fc))
}

func (p Program) overlayLines() []string {
	var overlay []string
	if p.state.ShowHelp {
		overlay = append(overlay, p.helpOverlayLines(p.state.Width)...)
	}
	overlay = append(overlay, p.state.SearchEngine.RenderOverlay(p.state.Width, p.state.Theme.DividerColor)...)
	return overlay
}

func (p Program) helpOverlayLines(width int) []string {
	title := lipgloss.NewStyle().Bold(true).Render("Help — press 'h' or Esc to close")
	keys := []string{
		"j/k or arrows   Move selection",
		"enter/space     Fold / unfold folder",
		"J/K             Scroll diff half page",
		"PgDn/PgUp       Scroll diff page",
		"</> or H/L      Adjust left pane width",
		"e               Edit lines (ctrl+s: save, esc: cancel)",
		"y               Copy selected path",
		"s               Toggle side-by-side / inline",
		"t               Toggle worktree / staged diff",
		"w               Toggle wrap",
		"/               Search diff (n/N: next/prev)",
		"r               Refresh now",
		"g / G           Top / Bottom",
		"q               Quit",
	}
	lines := make([]string, 0, 2+len(keys))
	lines = append(lines, strings.Repeat("─", width))
	lines = append(lines, title)
	lines = append(lines, keys...)
	return lines
}

// recalcViewport re-renders the diff pane content for the current state.
func (p Program) recalcViewport() {
	s := p.state
	if s.Width == 0 || s.Height == 0 {
		return
	}

	overlayH := len(p.overlayLines())
	contentHeight := p.layout.ContentHeight(overlayH)
	rightW := p.layout.RightWidth()
	s.DiffView.SetSize(rightW, contentHeight)

	binary := false
	if fc := s.TreeView.SelectedFile(); fc != nil {
		binary = fc.Binary
	}

	if s.Editing && s.Session != nil {
		edited := make(map[int]bool, len(s.Session.PendingEdits()))
		pend := s.Session.PendingEdits()
		for i, r := range s.DiffView.Rows() {
			if _, ok := pend[r.RightLine]; ok && r.RightLine > 0 {
				edited[i] = true
			}
		}
		s.DiffView.SetEdit(true, s.Session.CursorRow(), s.EditInput.View(), edited)
	}

	content := s.DiffView.RenderContent(rightW, binary)
	s.SearchEngine.SetContent(content)
	if s.SearchEngine.Query() != "" {
		content = s.SearchEngine.HighlightedContent()
	}
	s.DiffView.SetContent(content)

	if s.Editing && s.Session != nil {
		s.DiffView.ScrollToRow(s.Session.CursorRow())
	}
}

func (p Program) scrollToMatch() {
	if line := p.state.SearchEngine.CurrentMatchLine(); line >= 0 {
		p.state.DiffView.ScrollToRow(line)
	}
}
