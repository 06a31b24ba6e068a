package components

import (
	"fmt"
	"strings"

	"github.com/fieldstone/redline/internal/changetree"
	"github.com/fieldstone/redline/internal/gitx"
	"github.com/fieldstone/redline/internal/theme"
	"github.com/fieldstone/redline/internal/window"
)

// TreeView manages the left pane change tree: a folder/file hierarchy built
// from the changed-file list, with fold state carried across refreshes.
type TreeView struct {
	roots    []*changetree.Node
	flat     []*changetree.Node
	selected int
	byPath   map[string]gitx.FileChange
	curTheme theme.Theme
}

// NewTreeView creates a new tree view.
func NewTreeView(defaultTheme theme.Theme) *TreeView {
	return &TreeView{curTheme: defaultTheme, byPath: map[string]gitx.FileChange{}}
}

// SetFiles rebuilds the tree from a changed-file list, preserving folder fold
// state and the selection path where possible.
func (t *TreeView) SetFiles(files []gitx.FileChange) {
	var selPath string
	if n := t.SelectedNode(); n != nil {
		selPath = n.Path
	}

	records := make([]changetree.FileRecord, 0, len(files))
	t.byPath = make(map[string]gitx.FileChange, len(files))
	for _, f := range files {
		records = append(records, changetree.FileRecord{
			Path:     f.Path,
			Severity: f.Severity(),
			Staged:   f.Staged,
		})
		t.byPath[f.Path] = f
	}

	next := changetree.Build(records)
	changetree.CarryExpansion(t.roots, next)
	t.roots = next
	t.flat = changetree.Flatten(t.roots)

	t.selected = 0
	if selPath != "" {
		for i, n := range t.flat {
			if n.Path == selPath {
				t.selected = i
				break
			}
		}
	}
	t.clamp()
}

// Len returns the number of visible rows.
func (t *TreeView) Len() int {
	return len(t.flat)
}

// Selected returns the selected row index.
func (t *TreeView) Selected() int {
	return t.selected
}

// SelectedNode returns the selected node, nil when the tree is empty.
func (t *TreeView) SelectedNode() *changetree.Node {
	if t.selected < 0 || t.selected >= len(t.flat) {
		return nil
	}
	return t.flat[t.selected]
}

// SelectedFile returns the selected file's change record. Folder selections
// return nil.
func (t *TreeView) SelectedFile() *gitx.FileChange {
	n := t.SelectedNode()
	if n == nil || n.Kind != changetree.KindFile {
		return nil
	}
	fc, ok := t.byPath[n.Path]
	if !ok {
		return nil
	}
	return &fc
}

// MoveSelection moves the selection by delta, reporting whether it changed.
func (t *TreeView) MoveSelection(delta int) bool {
	if len(t.flat) == 0 {
		return false
	}
	next := t.selected + delta
	if next < 0 {
		next = 0
	}
	if next >= len(t.flat) {
		next = len(t.flat) - 1
	}
	changed := next != t.selected
	t.selected = next
	return changed
}

// GoToTop moves selection to the first row.
func (t *TreeView) GoToTop() bool {
	if len(t.flat) == 0 || t.selected == 0 {
		return false
	}
	t.selected = 0
	return true
}

// GoToBottom moves selection to the last row.
func (t *TreeView) GoToBottom() bool {
	if len(t.flat) == 0 {
		return false
	}
	last := len(t.flat) - 1
	if t.selected == last {
		return false
	}
	t.selected = last
	return true
}

// ToggleSelected folds or unfolds the selected folder. Selection is clamped
// to the new flattened length; toggling a file is a no-op.
func (t *TreeView) ToggleSelected() bool {
	n := t.SelectedNode()
	if n == nil || n.Kind != changetree.KindFolder {
		return false
	}
	path := n.Path
	t.roots = changetree.Toggle(t.roots, path)
	t.flat = changetree.Flatten(t.roots)
	// keep the toggled folder selected
	for i, fn := range t.flat {
		if fn.Path == path {
			t.selected = i
			break
		}
	}
	t.clamp()
	return true
}

func (t *TreeView) clamp() {
	if t.selected >= len(t.flat) {
		t.selected = len(t.flat) - 1
	}
	if t.selected < 0 {
		t.selected = 0
	}
}

// Render renders the visible window of the tree to lines.
func (t *TreeView) Render(height int) []string {
	if len(t.flat) == 0 {
		return []string{"No changes detected"}
	}

	start, end := window.Visible(len(t.flat), t.selected, height)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, t.renderNode(t.flat[i], i == t.selected))
	}
	return lines
}

func (t *TreeView) renderNode(n *changetree.Node, selected bool) string {
	marker := "  "
	if selected {
		marker = "> "
	}
	indent := strings.Repeat("  ", n.Depth)

	if n.Kind == changetree.KindFolder {
		fold := "▸"
		if n.Expanded {
			fold = "▾"
		}
		name := t.curTheme.SeverityText(n.Color, n.Name+"/")
		return fmt.Sprintf("%s%s%s %s", marker, indent, fold, name)
	}

	status := "-"
	if fc, ok := t.byPath[n.Path]; ok {
		status = FileStatusLabel(fc)
	}
	name := t.curTheme.SeverityText(n.Color, n.Name)
	return fmt.Sprintf("%s%s%s %s", marker, indent, status, name)
}

// FileStatusLabel returns a short status label for a file.
func FileStatusLabel(f gitx.FileChange) string {
	var tags []string
	if f.Deleted {
		tags = append(tags, "D")
	}
	if f.Conflict {
		tags = append(tags, "C")
	}
	if f.Untracked {
		tags = append(tags, "U")
	}
	if f.Added {
		tags = append(tags, "A")
	}
	if f.Staged {
		tags = append(tags, "S")
	}
	if f.Unstaged {
		tags = append(tags, "M")
	}
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, "")
}
