package diffview

import (
	"bufio"
	"strings"
)

// RowKind represents the semantic type of a side-by-side row.
type RowKind int

const (
	RowUnchanged RowKind = iota
	RowAdded
	RowRemoved
	RowModified
)

// DiffRow represents a single paired row for side-by-side rendering.
// LeftLine and RightLine are 1-based old/new file line numbers; zero means
// the side is absent for this row.
type DiffRow struct {
	Left      string
	Right     string
	LeftLine  int
	RightLine int
	Kind      RowKind
}

type pendingLine struct {
	text string
	line int
}

// BuildRows parses a unified diff string into side-by-side rows.
//
// Each hunk is self-contained: its line counters are seeded from its own
// header, never carried over from a prior hunk. Within a hunk, a maximal run
// of removals is paired positionally with the maximal run of additions that
// immediately follows it; index k of each run pairs into one Modified row,
// leftovers become Removed or Added rows. The pairing is positional on
// purpose — it makes no attempt at content similarity between the runs.
func BuildRows(raw string) []DiffRow {
	s := bufio.NewScanner(strings.NewReader(raw))
	s.Buffer(make([]byte, 0, 64*1024), 10*1024*1024) // allow large lines

	rows := make([]DiffRow, 0, 256)
	var removals, additions []pendingLine

	flush := func() {
		n := len(removals)
		if len(additions) > n {
			n = len(additions)
		}
		for k := 0; k < n; k++ {
			switch {
			case k < len(removals) && k < len(additions):
				rows = append(rows, DiffRow{
					Left:      removals[k].text,
					Right:     additions[k].text,
					LeftLine:  removals[k].line,
					RightLine: additions[k].line,
					Kind:      RowModified,
				})
			case k < len(removals):
				rows = append(rows, DiffRow{
					Left:     removals[k].text,
					LeftLine: removals[k].line,
					Kind:     RowRemoved,
				})
			default:
				rows = append(rows, DiffRow{
					Right:     additions[k].text,
					RightLine: additions[k].line,
					Kind:      RowAdded,
				})
			}
		}
		removals = removals[:0]
		additions = additions[:0]
	}

	inHunk := false
	oldN, newN := 0, 0

	for s.Scan() {
		line := s.Text()
		switch {
		case strings.HasPrefix(line, "diff --git "),
			strings.HasPrefix(line, "index "),
			strings.HasPrefix(line, "+++"),
			strings.HasPrefix(line, "---"):
			flush()
			inHunk = false
			continue
		case strings.HasPrefix(line, "@@"):
			flush()
			if o, n, ok := parseHunkHeader(line); ok {
				oldN, newN = o, n
				inHunk = true
			} else {
				// Without a seeded counter the hunk's numbers are untrustworthy.
				inHunk = false
			}
			continue
		}
		if !inHunk {
			continue
		}
		if strings.HasPrefix(line, `\`) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "-"):
			if len(additions) > 0 {
				// A removal after additions starts a new pair group.
				flush()
			}
			removals = append(removals, pendingLine{text: line[1:], line: oldN})
			oldN++
		case strings.HasPrefix(line, "+"):
			additions = append(additions, pendingLine{text: line[1:], line: newN})
			newN++
		default:
			flush()
			t := trimContextPrefix(line)
			rows = append(rows, DiffRow{
				Left:      t,
				Right:     t,
				LeftLine:  oldN,
				RightLine: newN,
				Kind:      RowUnchanged,
			})
			oldN++
			newN++
		}
	}
	flush()
	return rows
}
