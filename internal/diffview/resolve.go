package diffview

// UnifiedResolver maps diff-relative row indices of a unified view to
// new-file line numbers. Rows without a new-side number (removals, headers)
// do not resolve.
type UnifiedResolver struct {
	Lines []UnifiedLine
}

func (r UnifiedResolver) Len() int {
	return len(r.Lines)
}

// Resolve returns the absolute new-file line number and the diff-recorded
// content for the given row, or ok=false when the row has no new-side line.
func (r UnifiedResolver) Resolve(row int) (line int, content string, ok bool) {
	if row < 0 || row >= len(r.Lines) {
		return 0, "", false
	}
	l := r.Lines[row]
	if l.Kind == LineHeader || l.NewLine == 0 {
		return 0, "", false
	}
	return l.NewLine, l.Content, true
}

// RowResolver maps diff-relative row indices of a side-by-side view to
// new-file line numbers. Removed rows do not resolve.
type RowResolver struct {
	Rows []DiffRow
}

func (r RowResolver) Len() int {
	return len(r.Rows)
}

// Resolve returns the absolute new-file line number and the diff-recorded
// right-side content for the given row, or ok=false for removed rows.
func (r RowResolver) Resolve(row int) (line int, content string, ok bool) {
	if row < 0 || row >= len(r.Rows) {
		return 0, "", false
	}
	dr := r.Rows[row]
	if dr.RightLine == 0 {
		return 0, "", false
	}
	return dr.RightLine, dr.Right, true
}

// NewSideContent returns the authoritative line-number→content mapping for the
// new side of a diff: every line the diff records as present in the current
// file (additions and context).
func NewSideContent(lines []UnifiedLine) map[int]string {
	m := make(map[int]string, len(lines))
	for _, l := range lines {
		if l.Kind == LineHeader || l.NewLine == 0 {
			continue
		}
		m[l.NewLine] = l.Content
	}
	return m
}
