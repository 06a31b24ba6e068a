// Package diffview turns raw unified-diff text into structured, navigable
// line and row sequences for rendering and editing.
package diffview

import (
	"bufio"
	"strconv"
	"strings"
)

// LineKind classifies a single line of a unified diff.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdd
	LineRemove
	LineHeader
)

// UnifiedLine is one line of a diff rendered in single-column form.
// OldLine and NewLine are 1-based file line numbers; zero means the side has
// no number for this line. Context lines carry both, headers neither.
type UnifiedLine struct {
	Content string
	Kind    LineKind
	OldLine int
	NewLine int
}

// ParseUnified parses raw unified-diff text into an ordered line sequence.
// Hunk headers reseed the running old/new counters; metadata before the first
// hunk (index, mode, rename notices) is dropped. Malformed input degrades to
// numberless context lines; parsing never aborts.
func ParseUnified(raw string) []UnifiedLine {
	s := bufio.NewScanner(strings.NewReader(raw))
	s.Buffer(make([]byte, 0, 64*1024), 10*1024*1024) // allow large lines

	out := make([]UnifiedLine, 0, 256)
	inHunk := false
	oldN, newN := 0, 0

	for s.Scan() {
		line := s.Text()
		switch {
		case strings.HasPrefix(line, "diff --git "):
			// New file-patch; skip metadata until its first hunk.
			inHunk = false
			continue
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			out = append(out, UnifiedLine{Content: line, Kind: LineHeader})
			continue
		case strings.HasPrefix(line, "@@"):
			o, n, ok := parseHunkHeader(line)
			if !ok {
				out = append(out, UnifiedLine{Content: line, Kind: LineContext})
				continue
			}
			oldN, newN = o, n
			inHunk = true
			out = append(out, UnifiedLine{Content: line, Kind: LineHeader})
			continue
		}
		if !inHunk {
			continue
		}
		if strings.HasPrefix(line, `\`) {
			// "\ No newline at end of file" carries no file line.
			continue
		}
		switch {
		case strings.HasPrefix(line, "+"):
			out = append(out, UnifiedLine{Content: line[1:], Kind: LineAdd, NewLine: newN})
			newN++
		case strings.HasPrefix(line, "-"):
			out = append(out, UnifiedLine{Content: line[1:], Kind: LineRemove, OldLine: oldN})
			oldN++
		default:
			out = append(out, UnifiedLine{Content: trimContextPrefix(line), Kind: LineContext, OldLine: oldN, NewLine: newN})
			oldN++
			newN++
		}
	}
	return out
}

// parseHunkHeader extracts the old and new start lines from "@@ -a,b +c,d @@".
// The count suffixes are advisory and ignored.
func parseHunkHeader(line string) (oldStart, newStart int, ok bool) {
	rest := strings.TrimPrefix(line, "@@")
	end := strings.Index(rest, "@@")
	if end >= 0 {
		rest = rest[:end]
	}
	var haveOld, haveNew bool
	for _, f := range strings.Fields(rest) {
		switch {
		case strings.HasPrefix(f, "-"):
			if n, err := strconv.Atoi(numberPart(f[1:])); err == nil {
				oldStart = n
				haveOld = true
			}
		case strings.HasPrefix(f, "+"):
			if n, err := strconv.Atoi(numberPart(f[1:])); err == nil {
				newStart = n
				haveNew = true
			}
		}
	}
	if !haveOld || !haveNew {
		return 0, 0, false
	}
	return oldStart, newStart, true
}

func numberPart(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[:i]
	}
	return s
}

func trimContextPrefix(s string) string {
	if strings.HasPrefix(s, " ") {
		return s[1:]
	}
	return s
}
