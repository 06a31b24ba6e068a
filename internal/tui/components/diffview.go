package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/fieldstone/redline/internal/diffview"
	"github.com/fieldstone/redline/internal/highlight"
	"github.com/fieldstone/redline/internal/theme"
	tuiansi "github.com/fieldstone/redline/internal/tui/ansi"
)

// DiffView manages the right pane diff viewer. Side-by-side mode renders the
// paired rows; inline mode renders the parsed unified lines. Both carry
// line-number gutters resolved from the diff itself.
type DiffView struct {
	lines      []diffview.UnifiedLine
	rows       []diffview.DiffRow
	filename   string
	viewport   viewport.Model
	xOffset    int
	sideBySide bool
	wrapLines  bool
	curTheme   theme.Theme
	hl         *highlight.Highlighter
	content    []string // cached rendered content

	editing    bool
	editRow    int
	editInput  string
	editedRows map[int]bool
}

// NewDiffView creates a new diff viewer.
func NewDiffView(defaultTheme theme.Theme) *DiffView {
	return &DiffView{
		curTheme:   defaultTheme,
		sideBySide: true,
		hl:         highlight.New(nil),
	}
}

// SetDiff updates the parsed diff for a file.
func (d *DiffView) SetDiff(filename string, lines []diffview.UnifiedLine, rows []diffview.DiffRow) {
	d.filename = filename
	d.lines = lines
	d.rows = rows
}

// Rows returns the current paired rows.
func (d *DiffView) Rows() []diffview.DiffRow {
	return d.rows
}

// ClearDiff drops the current diff (shown as loading).
func (d *DiffView) ClearDiff() {
	d.lines = nil
	d.rows = nil
}

// SetSize updates the viewport dimensions.
func (d *DiffView) SetSize(width, height int) {
	d.viewport.Width = width
	d.viewport.Height = height
}

// GetSideBySide reports the display mode.
func (d *DiffView) GetSideBySide() bool {
	return d.sideBySide
}

// SetSideBySide sets the display mode.
func (d *DiffView) SetSideBySide(sideBySide bool) {
	d.sideBySide = sideBySide
}

// GetWrap reports line wrapping.
func (d *DiffView) GetWrap() bool {
	return d.wrapLines
}

// SetWrap sets line wrapping.
func (d *DiffView) SetWrap(wrap bool) {
	d.wrapLines = wrap
	if wrap {
		d.xOffset = 0
	}
}

// XOffset returns the current horizontal offset.
func (d *DiffView) XOffset() int {
	return d.xOffset
}

// ScrollLeft scrolls left by delta.
func (d *DiffView) ScrollLeft(delta int) {
	if d.wrapLines {
		return
	}
	d.xOffset -= delta
	if d.xOffset < 0 {
		d.xOffset = 0
	}
}

// ScrollRight scrolls right by delta.
func (d *DiffView) ScrollRight(delta int) {
	if d.wrapLines {
		return
	}
	d.xOffset += delta
}

// ScrollHome resets horizontal scroll.
func (d *DiffView) ScrollHome() {
	d.xOffset = 0
}

// SetEdit places the edit cursor on a paired row. The input view replaces the
// row's new-side text while editing; edited marks rows with pending changes.
func (d *DiffView) SetEdit(active bool, cursorRow int, inputView string, edited map[int]bool) {
	d.editing = active
	d.editRow = cursorRow
	d.editInput = inputView
	d.editedRows = edited
}

// Editing reports whether the edit cursor is shown.
func (d *DiffView) Editing() bool {
	return d.editing
}

// RenderContent generates the full content and caches it.
func (d *DiffView) RenderContent(width int, binary bool) []string {
	if binary {
		d.content = []string{lipgloss.NewStyle().Faint(true).Render("(Binary file; no text diff)")}
		return d.content
	}

	if d.lines == nil && d.rows == nil {
		d.content = []string{"Loading diff…"}
		return d.content
	}

	if d.sideBySide || d.editing {
		d.content = d.renderSideBySide(width)
	} else {
		d.content = d.renderInline(width)
	}

	return d.content
}

// Content returns the cached content.
func (d *DiffView) Content() []string {
	return d.content
}

// SetContent updates the viewport content from rendered lines.
func (d *DiffView) SetContent(lines []string) {
	d.content = lines
	d.viewport.SetContent(strings.Join(lines, "\n"))
}

// View returns the viewport view.
func (d *DiffView) View() string {
	return d.viewport.View()
}

// Viewport returns the underlying viewport for direct manipulation.
func (d *DiffView) Viewport() *viewport.Model {
	return &d.viewport
}

// ScrollToRow scrolls the viewport so the given content row is visible.
func (d *DiffView) ScrollToRow(row int) {
	if row < 0 {
		return
	}
	top := d.viewport.YOffset
	bottom := top + d.viewport.Height - 1
	if row < top {
		d.viewport.SetYOffset(row)
	} else if row > bottom {
		d.viewport.SetYOffset(row - d.viewport.Height + 1)
	}
}

func (d *DiffView) gutterWidth() int {
	max := 0
	for _, r := range d.rows {
		if r.LeftLine > max {
			max = r.LeftLine
		}
		if r.RightLine > max {
			max = r.RightLine
		}
	}
	w := len(fmt.Sprintf("%d", max))
	if w < 3 {
		w = 3
	}
	return w
}

func (d *DiffView) gutter(line, width int) string {
	if line <= 0 {
		return strings.Repeat(" ", width)
	}
	return fmt.Sprintf("%*d", width, line)
}

func (d *DiffView) renderSideBySide(width int) []string {
	lines := make([]string, 0, len(d.rows))
	gw := d.gutterWidth()
	colsW := (width - 1) / 2
	if colsW < gw+4 {
		colsW = gw + 4
	}
	mid := d.curTheme.DividerText("│")

	for i, r := range d.rows {
		if d.editing && i == d.editRow {
			lines = append(lines, d.renderEditRow(r, gw, colsW, mid))
			continue
		}
		l := d.renderSideCell(r, "left", gw, colsW)
		rr := d.renderSideCell(r, "right", gw, colsW)
		if d.editing && d.editedRows[i] {
			rr = d.curTheme.EditText("*") + tuiansi.ClipToWidth(rr, colsW-1)
		}
		l = tuiansi.PadExact(l, colsW)
		rr = tuiansi.PadExact(rr, colsW)
		lines = append(lines, l+mid+rr)
	}

	if len(lines) == 0 {
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render("(No differences)"))
	}
	return lines
}

// renderEditRow renders the active edit row: left cell as usual, right cell
// replaced by the live input.
func (d *DiffView) renderEditRow(r diffview.DiffRow, gw, colsW int, mid string) string {
	l := tuiansi.PadExact(d.renderSideCell(r, "left", gw, colsW), colsW)
	g := d.curTheme.EditText(d.gutter(r.RightLine, gw))
	rr := g + " " + d.editInput
	rr = tuiansi.ClipToWidth(rr, colsW)
	return l + mid + tuiansi.PadExact(rr, colsW)
}

func (d *DiffView) renderSideCell(r diffview.DiffRow, side string, gw, width int) string {
	marker := " "
	content := ""
	gutter := ""

	switch side {
	case "left":
		gutter = d.gutter(r.LeftLine, gw)
		content = r.Left
		switch r.Kind {
		case diffview.RowUnchanged:
			content = d.hl.Line(d.filename, content)
		case diffview.RowRemoved, diffview.RowModified:
			marker = d.curTheme.DelText("-")
			content = d.curTheme.DelText(content)
		case diffview.RowAdded:
			gutter = strings.Repeat(" ", gw)
		}
	case "right":
		gutter = d.gutter(r.RightLine, gw)
		content = r.Right
		switch r.Kind {
		case diffview.RowUnchanged:
			content = d.hl.Line(d.filename, content)
		case diffview.RowAdded, diffview.RowModified:
			marker = d.curTheme.AddText("+")
			content = d.curTheme.AddText(content)
		case diffview.RowRemoved:
			gutter = strings.Repeat(" ", gw)
		}
	}

	prefix := lipgloss.NewStyle().Faint(true).Render(gutter) + " " + marker + " "
	bodyW := width - gw - 3
	if bodyW <= 0 {
		return ansi.Truncate(prefix, width, "")
	}
	clipped := tuiansi.SliceHorizontal(content, d.xOffset, bodyW)
	return prefix + clipped
}

func (d *DiffView) renderInline(width int) []string {
	lines := make([]string, 0, len(d.lines))
	gw := d.inlineGutterWidth()

	for _, ul := range d.lines {
		switch ul.Kind {
		case diffview.LineHeader:
			lines = append(lines, lipgloss.NewStyle().Faint(true).Render(strings.Repeat("·", width)))
		case diffview.LineContext:
			base := d.inlineGutters(ul, gw) + "  " + d.hl.Line(d.filename, ul.Content)
			lines = append(lines, d.fitInline(base, width)...)
		case diffview.LineAdd:
			base := d.inlineGutters(ul, gw) + d.curTheme.AddText("+ "+ul.Content)
			lines = append(lines, d.fitInline(base, width)...)
		case diffview.LineRemove:
			base := d.inlineGutters(ul, gw) + d.curTheme.DelText("- "+ul.Content)
			lines = append(lines, d.fitInline(base, width)...)
		}
	}

	if len(lines) == 0 {
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render("(No differences)"))
	}
	return lines
}

func (d *DiffView) inlineGutterWidth() int {
	max := 0
	for _, ul := range d.lines {
		if ul.OldLine > max {
			max = ul.OldLine
		}
		if ul.NewLine > max {
			max = ul.NewLine
		}
	}
	w := len(fmt.Sprintf("%d", max))
	if w < 3 {
		w = 3
	}
	return w
}

func (d *DiffView) inlineGutters(ul diffview.UnifiedLine, gw int) string {
	oldG := d.gutter(ul.OldLine, gw)
	newG := d.gutter(ul.NewLine, gw)
	return lipgloss.NewStyle().Faint(true).Render(oldG+" "+newG) + " "
}

func (d *DiffView) fitInline(base string, width int) []string {
	if d.wrapLines {
		return tuiansi.WrapLine(base, width)
	}
	line := base
	if d.xOffset > 0 {
		line = tuiansi.SliceHorizontal(line, d.xOffset, width)
		line = tuiansi.PadExact(line, width)
	}
	return []string{line}
}
