package editsess

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstone/redline/internal/diffview"
)

type fakeDiffs struct {
	raw string
	err error
}

func (f *fakeDiffs) Diff(ctx context.Context, path string) (string, error) {
	return f.raw, f.err
}

type fakeFiles struct {
	content  string
	readErr  error
	writeErr error
	writes   int
}

func (f *fakeFiles) ReadFile(ctx context.Context, path string) (string, error) {
	if f.readErr != nil {
		return "", f.readErr
	}
	return f.content, nil
}

func (f *fakeFiles) WriteFile(ctx context.Context, path, content string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes++
	f.content = content
	return nil
}

const twoEditDiff = `@@ -1,4 +1,4 @@
 one
-TWO
+two
-THREE
+three
 four`

func newFixture() (*Session, *fakeDiffs, *fakeFiles, LineResolver) {
	diffs := &fakeDiffs{raw: twoEditDiff}
	files := &fakeFiles{content: "one\ntwo\nthree\nfour\n"}
	resolver := diffview.RowResolver{Rows: diffview.BuildRows(twoEditDiff)}
	return New(diffs, files), diffs, files, resolver
}

func TestOpen_RefusesRowWithoutLine(t *testing.T) {
	raw := `@@ -1,2 +1,1 @@
 keep
-gone`
	sess := New(&fakeDiffs{raw: raw}, &fakeFiles{content: "keep\n"})
	resolver := diffview.RowResolver{Rows: diffview.BuildRows(raw)}

	err := sess.Open(context.Background(), "f.txt", resolver, 1)
	assert.ErrorIs(t, err, ErrRowNotEditable)
	assert.Equal(t, StateClosed, sess.State())
}

func TestOpen_RefusesStaleDiff(t *testing.T) {
	sess, _, files, resolver := newFixture()
	files.content = "one\nsomething else\nthree\nfour\n"

	err := sess.Open(context.Background(), "f.txt", resolver, 1)
	assert.ErrorIs(t, err, ErrStaleDiff)
	assert.Equal(t, StateClosed, sess.State())
}

func TestSave_NoOpIsByteIdentical(t *testing.T) {
	sess, _, files, resolver := newFixture()
	before := files.content

	require.NoError(t, sess.Open(context.Background(), "f.txt", resolver, 1))
	applied, err := sess.Save(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, applied)
	assert.Equal(t, 0, files.writes, "no-op save must not write")
	assert.Equal(t, before, files.content)
	assert.Equal(t, StateClosed, sess.State())
}

func TestSave_AppliesAllEdits(t *testing.T) {
	sess, _, files, resolver := newFixture()
	ctx := context.Background()

	require.NoError(t, sess.Open(ctx, "f.txt", resolver, 1))
	assert.Equal(t, 2, sess.ActiveLine())
	assert.Equal(t, "two", sess.Buffer())

	sess.SetBuffer("two edited")
	require.NoError(t, sess.MoveCursor(1))
	assert.Equal(t, 3, sess.ActiveLine())
	sess.SetBuffer("three edited")

	applied, err := sess.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.Equal(t, "one\ntwo edited\nthree edited\nfour\n", files.content)
	assert.Equal(t, StateClosed, sess.State())
}

func TestMoveCursor_RepopulatesFromEdits(t *testing.T) {
	sess, _, _, resolver := newFixture()
	ctx := context.Background()

	require.NoError(t, sess.Open(ctx, "f.txt", resolver, 1))
	sess.SetBuffer("two edited")
	require.NoError(t, sess.MoveCursor(1))
	assert.Equal(t, "three", sess.Buffer(), "unedited line comes from baseline")

	require.NoError(t, sess.MoveCursor(-1))
	assert.Equal(t, "two edited", sess.Buffer(), "revisited line comes from recorded edit")
}

func TestMoveCursor_StopsAtEnds(t *testing.T) {
	sess, _, _, resolver := newFixture()
	ctx := context.Background()

	require.NoError(t, sess.Open(ctx, "f.txt", resolver, 0))
	require.NoError(t, sess.MoveCursor(-5))
	assert.Equal(t, 0, sess.CursorRow())

	require.NoError(t, sess.MoveCursor(100))
	assert.Equal(t, resolver.Len()-1, sess.CursorRow())
}

func TestSave_ConflictAbortsEntirely(t *testing.T) {
	sess, _, files, resolver := newFixture()
	ctx := context.Background()

	require.NoError(t, sess.Open(ctx, "f.txt", resolver, 1))
	sess.SetBuffer("two edited")

	// out-of-band write changes the edited line underneath the session
	files.content = "one\nTWO CHANGED\nthree\nfour\n"

	applied, err := sess.Save(ctx)
	assert.Equal(t, 0, applied)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []int{2}, conflict.Lines)
	assert.Equal(t, 0, files.writes, "conflicting save must not write")
	assert.Equal(t, StateOpen, sess.State(), "session stays open with edits intact")
	assert.Equal(t, "two edited", sess.PendingEdits()[2])
}

func TestSave_WriteErrorKeepsSessionOpen(t *testing.T) {
	sess, _, files, resolver := newFixture()
	ctx := context.Background()

	require.NoError(t, sess.Open(ctx, "f.txt", resolver, 1))
	sess.SetBuffer("two edited")
	files.writeErr = errors.New("disk full")

	_, err := sess.Save(ctx)
	require.Error(t, err)
	assert.Equal(t, StateOpen, sess.State())
	assert.Equal(t, "two edited", sess.PendingEdits()[2])
}

func TestCancel_ReportsDiscardedEdits(t *testing.T) {
	sess, _, files, resolver := newFixture()
	ctx := context.Background()

	require.NoError(t, sess.Open(ctx, "f.txt", resolver, 1))
	sess.SetBuffer("two edited")
	require.NoError(t, sess.MoveCursor(1))
	sess.SetBuffer("three edited")

	n := sess.Cancel()
	assert.Equal(t, 2, n)
	assert.Equal(t, StateClosed, sess.State())
	assert.Equal(t, 0, files.writes)
}

type hookDiffs struct {
	raw  string
	hook func()
}

func (h *hookDiffs) Diff(ctx context.Context, path string) (string, error) {
	if h.hook != nil {
		h.hook()
	}
	return h.raw, nil
}

func TestCancel_RefusedWhileSaving(t *testing.T) {
	diffs := &hookDiffs{raw: twoEditDiff}
	files := &fakeFiles{content: "one\ntwo\nthree\nfour\n"}
	sess := New(diffs, files)
	resolver := diffview.RowResolver{Rows: diffview.BuildRows(twoEditDiff)}
	ctx := context.Background()

	require.NoError(t, sess.Open(ctx, "f.txt", resolver, 1))
	sess.SetBuffer("two edited")

	// a cancel arriving while the save fetches its diff must not reset the
	// session underneath it
	diffs.hook = func() {
		assert.Equal(t, StateSaving, sess.State())
		assert.Equal(t, 0, sess.Cancel())
		assert.Equal(t, StateSaving, sess.State())
	}

	applied, err := sess.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, files.writes)
	assert.Equal(t, "one\ntwo edited\nthree\nfour\n", files.content)
	assert.Equal(t, StateClosed, sess.State())
}

func TestOpen_SecondSessionRefused(t *testing.T) {
	sess, _, _, resolver := newFixture()
	ctx := context.Background()

	require.NoError(t, sess.Open(ctx, "f.txt", resolver, 1))
	err := sess.Open(ctx, "other.txt", resolver, 1)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestRevertedBufferDropsEdit(t *testing.T) {
	sess, _, files, resolver := newFixture()
	ctx := context.Background()

	require.NoError(t, sess.Open(ctx, "f.txt", resolver, 1))
	sess.SetBuffer("two edited")
	require.NoError(t, sess.MoveCursor(1))

	// go back and revert by hand
	require.NoError(t, sess.MoveCursor(-1))
	sess.SetBuffer("two")

	applied, err := sess.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)
	assert.Equal(t, 0, files.writes)
}
