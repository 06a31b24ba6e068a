// Package editsess implements the interactive line-edit session: an editable
// overlay keyed by absolute file line number, accumulated while the user
// navigates diff-relative rows, and applied back to the file under an
// optimistic-concurrency check at save time.
package editsess

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fieldstone/redline/internal/diffview"
)

// DiffProvider returns the current unified diff for a file. An empty string
// means there are no differences; it is not an error.
type DiffProvider interface {
	Diff(ctx context.Context, path string) (string, error)
}

// FileProvider reads and writes whole files. WriteFile must replace the file
// content in a single atomic operation.
type FileProvider interface {
	ReadFile(ctx context.Context, path string) (string, error)
	WriteFile(ctx context.Context, path, content string) error
}

// LineResolver maps a diff-relative row index to the absolute new-file line
// number and the diff-recorded content at that line. Rows with no new-side
// line (removals, headers) do not resolve. Both diff views provide one.
type LineResolver interface {
	Len() int
	Resolve(row int) (line int, content string, ok bool)
}

// State is the session lifecycle: Closed → Open → (Closed | Saving → Closed).
type State int

const (
	StateClosed State = iota
	StateOpen
	StateSaving
)

var (
	// ErrBusy means a session is already open; it must close before another opens.
	ErrBusy = errors.New("edit session already open")
	// ErrClosed means the operation requires an open session.
	ErrClosed = errors.New("no open edit session")
	// ErrRowNotEditable means the cursor row has no new-file line to edit.
	ErrRowNotEditable = errors.New("row has no editable line")
	// ErrStaleDiff means the file no longer matches the diff at the entry line.
	ErrStaleDiff = errors.New("diff is stale; refresh before editing")
)

// ConflictError aborts a save when edited lines changed underneath the
// session. No partial write occurs; pending edits stay in memory.
type ConflictError struct {
	Lines []int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%d edited line(s) changed since the session began; exit and re-enter edit mode", len(e.Lines))
}

// Session is a single-file, single-session edit overlay.
type Session struct {
	diffs DiffProvider
	files FileProvider

	state           State
	path            string
	resolver        LineResolver
	baseline        []string
	trailingNewline bool
	edits           map[int]string
	cursorRow       int
	activeLine      int
	activeBuffer    string
}

// New creates a closed session bound to its I/O collaborators.
func New(diffs DiffProvider, files FileProvider) *Session {
	return &Session{diffs: diffs, files: files}
}

func (s *Session) State() State        { return s.state }
func (s *Session) Path() string        { return s.path }
func (s *Session) CursorRow() int      { return s.cursorRow }
func (s *Session) ActiveLine() int     { return s.activeLine }
func (s *Session) Buffer() string      { return s.activeBuffer }
func (s *Session) SetBuffer(text string) { s.activeBuffer = text }

// PendingEdits returns the committed edits plus the active buffer when it
// diverges from baseline, keyed by absolute line number.
func (s *Session) PendingEdits() map[int]string {
	out := make(map[int]string, len(s.edits)+1)
	for k, v := range s.edits {
		out[k] = v
	}
	if s.state == StateOpen && s.activeLine >= 1 && s.activeLine <= len(s.baseline) &&
		s.activeBuffer != s.baseline[s.activeLine-1] {
		out[s.activeLine] = s.activeBuffer
	}
	return out
}

// Open enters edit mode at the given diff-relative row. Entry is refused when
// the row has no new-side line, or when the file's line no longer matches the
// diff-recorded content (the diff is stale relative to the file).
func (s *Session) Open(ctx context.Context, path string, resolver LineResolver, cursorRow int) error {
	if s.state != StateClosed {
		return ErrBusy
	}
	line, content, ok := resolver.Resolve(cursorRow)
	if !ok {
		return ErrRowNotEditable
	}
	text, err := s.files.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	lines, trailing := splitLines(text)
	if line < 1 || line > len(lines) || lines[line-1] != content {
		return ErrStaleDiff
	}
	s.state = StateOpen
	s.path = path
	s.resolver = resolver
	s.baseline = lines
	s.trailingNewline = trailing
	s.edits = map[int]string{}
	s.cursorRow = cursorRow
	s.activeLine = line
	s.activeBuffer = lines[line-1]
	return nil
}

// MoveCursor commits the active buffer, then moves the cursor by delta to the
// nearest enterable row in that direction, repopulating the buffer from the
// recorded edit for that line if one exists, else from baseline. Moving past
// the last enterable row is a no-op.
func (s *Session) MoveCursor(delta int) error {
	if s.state != StateOpen {
		return ErrClosed
	}
	if delta == 0 {
		return nil
	}
	step := 1
	if delta < 0 {
		step = -1
		delta = -delta
	}
	row, line, content := s.cursorRow, 0, ""
	moved := 0
	for moved < delta {
		next, l, c, ok := s.nextEditableRow(row, step)
		if !ok {
			break
		}
		row, line, content = next, l, c
		moved++
	}
	if moved == 0 {
		return nil
	}
	s.commitActive()
	s.cursorRow = row
	s.activeLine = line
	if edit, ok := s.edits[line]; ok {
		s.activeBuffer = edit
	} else if line >= 1 && line <= len(s.baseline) {
		s.activeBuffer = s.baseline[line-1]
	} else {
		s.activeBuffer = content
	}
	return nil
}

func (s *Session) nextEditableRow(from, step int) (row, line int, content string, ok bool) {
	for r := from + step; r >= 0 && r < s.resolver.Len(); r += step {
		if l, c, resolvable := s.resolver.Resolve(r); resolvable {
			return r, l, c, true
		}
	}
	return 0, 0, "", false
}

// commitActive records the active buffer into edits when it diverges from
// baseline, and clears a stale edit when the user reverted the line by hand.
func (s *Session) commitActive() {
	if s.activeLine < 1 || s.activeLine > len(s.baseline) {
		return
	}
	if s.activeBuffer != s.baseline[s.activeLine-1] {
		s.edits[s.activeLine] = s.activeBuffer
	} else {
		delete(s.edits, s.activeLine)
	}
}

// Save applies every pending edit or none. With no pending edits it simply
// closes the session without touching the file. Otherwise it re-fetches the
// diff and the file, verifies every edited line still matches what the diff
// expects, writes the joined result in one operation, and closes. A conflict
// or I/O failure leaves the session open with its edits intact.
func (s *Session) Save(ctx context.Context) (applied int, err error) {
	if s.state != StateOpen {
		return 0, ErrClosed
	}
	s.commitActive()
	if len(s.edits) == 0 {
		s.reset()
		return 0, nil
	}
	s.state = StateSaving
	defer func() {
		if err != nil {
			s.state = StateOpen
		}
	}()

	raw, err := s.diffs.Diff(ctx, s.path)
	if err != nil {
		return 0, fmt.Errorf("diff %s: %w", s.path, err)
	}
	expected := diffview.NewSideContent(diffview.ParseUnified(raw))

	text, err := s.files.ReadFile(ctx, s.path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", s.path, err)
	}
	current, _ := splitLines(text)

	var conflicts []int
	for line := range s.edits {
		if line > len(current) {
			conflicts = append(conflicts, line)
			continue
		}
		want, known := expected[line]
		if !known {
			// Line not covered by the fresh diff: it must still match the
			// session baseline.
			want = s.baseline[line-1]
		}
		if current[line-1] != want {
			conflicts = append(conflicts, line)
		}
	}
	if len(conflicts) > 0 {
		sort.Ints(conflicts)
		return 0, &ConflictError{Lines: conflicts}
	}

	out := append([]string(nil), s.baseline...)
	for line, text := range s.edits {
		out[line-1] = text
	}
	joined := strings.Join(out, "\n")
	if s.trailingNewline {
		joined += "\n"
	}
	if err := s.files.WriteFile(ctx, s.path, joined); err != nil {
		return 0, fmt.Errorf("write %s: %w", s.path, err)
	}
	applied = len(s.edits)
	s.reset()
	return applied, nil
}

// Cancel discards an open session. No file I/O occurs. The returned count of
// discarded edits is advisory, for user feedback. A save in flight cannot be
// canceled: Cancel during StateSaving is a no-op, since resetting under the
// save would hand it a torn session.
func (s *Session) Cancel() int {
	if s.state != StateOpen {
		return 0
	}
	s.commitActive()
	n := len(s.edits)
	s.reset()
	return n
}

func (s *Session) reset() {
	s.state = StateClosed
	s.path = ""
	s.resolver = nil
	s.baseline = nil
	s.trailingNewline = false
	s.edits = nil
	s.cursorRow = 0
	s.activeLine = 0
	s.activeBuffer = ""
}

// splitLines splits file content by newline, remembering whether the file
// ended with one so a save can reproduce it byte-for-byte.
func splitLines(text string) (lines []string, trailingNewline bool) {
	if text == "" {
		return nil, false
	}
	if strings.HasSuffix(text, "\n") {
		trailingNewline = true
		text = strings.TrimSuffix(text, "\n")
	}
	return strings.Split(text, "\n"), trailingNewline
}
