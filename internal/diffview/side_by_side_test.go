package diffview

import "testing"

func TestBuildRows_ReplaceThenAdd(t *testing.T) {
	unified := `diff --git a/a.txt b/a.txt
--- a/a.txt
+++ b/a.txt
@@ -1,2 +1,3 @@
 ctx
-old
+new1
+new2`

	rows := BuildRows(unified)
	want := []DiffRow{
		{Left: "ctx", Right: "ctx", LeftLine: 1, RightLine: 1, Kind: RowUnchanged},
		{Left: "old", Right: "new1", LeftLine: 2, RightLine: 2, Kind: RowModified},
		{Right: "new2", RightLine: 3, Kind: RowAdded},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d: %+v", len(want), len(rows), rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d: got %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestBuildRows_PairingCompleteness(t *testing.T) {
	// 3 removals against 2 additions: max(3,2) rows, min(3,2) modified.
	unified := `@@ -1,3 +1,2 @@
-a
-b
-c
+A
+B`

	rows := BuildRows(unified)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	var modified, removed int
	for _, r := range rows {
		switch r.Kind {
		case RowModified:
			modified++
		case RowRemoved:
			removed++
		}
	}
	if modified != 2 || removed != 1 {
		t.Fatalf("expected 2 modified and 1 removed, got %d/%d", modified, removed)
	}
	if rows[2].Left != "c" || rows[2].RightLine != 0 {
		t.Fatalf("leftover removal wrong: %+v", rows[2])
	}
}

func TestBuildRows_StandaloneAdditions(t *testing.T) {
	unified := `@@ -0,0 +1,2 @@
+one
+two`

	rows := BuildRows(unified)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for i, r := range rows {
		if r.Kind != RowAdded || r.LeftLine != 0 {
			t.Fatalf("row %d should be a pure addition: %+v", i, r)
		}
		if r.RightLine != i+1 {
			t.Fatalf("row %d has wrong new line number: %+v", i, r)
		}
	}
}

func TestBuildRows_DeletionOnly(t *testing.T) {
	unified := `@@ -1,2 +0,0 @@
-old1
-old2`

	rows := BuildRows(unified)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for i, r := range rows {
		if r.Kind != RowRemoved || r.RightLine != 0 {
			t.Fatalf("row %d should be a pure removal: %+v", i, r)
		}
		if r.LeftLine != i+1 {
			t.Fatalf("row %d has wrong old line number: %+v", i, r)
		}
	}
}

func TestBuildRows_HunksAreSelfContained(t *testing.T) {
	// The gap between hunks must not leak into the second hunk's numbering.
	unified := `@@ -1,2 +1,2 @@
 a
-b
+B
@@ -20,2 +20,2 @@
 t
-u
+U`

	rows := BuildRows(unified)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[2].LeftLine != 20 || rows[2].RightLine != 20 {
		t.Fatalf("second hunk not reseeded: %+v", rows[2])
	}
	if rows[3].LeftLine != 21 || rows[3].RightLine != 21 {
		t.Fatalf("second hunk numbering wrong: %+v", rows[3])
	}
}

func TestBuildRows_RemovalAfterAdditionStartsNewGroup(t *testing.T) {
	unified := `@@ -1,2 +1,2 @@
-a
+A
-b
+B`

	rows := BuildRows(unified)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(rows), rows)
	}
	for i, r := range rows {
		if r.Kind != RowModified {
			t.Fatalf("row %d should be modified: %+v", i, r)
		}
	}
}

func TestResolvers(t *testing.T) {
	unified := `@@ -1,2 +1,2 @@
 ctx
-old
+new`

	rows := BuildRows(unified)
	rr := RowResolver{Rows: rows}
	if rr.Len() != 2 {
		t.Fatalf("expected 2 resolvable rows, got %d", rr.Len())
	}
	line, content, ok := rr.Resolve(1)
	if !ok || line != 2 || content != "new" {
		t.Fatalf("row 1 resolved to (%d, %q, %v)", line, content, ok)
	}

	ur := UnifiedResolver{Lines: ParseUnified(unified)}
	// row 0 is the hunk header, not enterable
	if _, _, ok := ur.Resolve(0); ok {
		t.Fatalf("header row should not resolve")
	}
	// the removal has no new-side line
	if _, _, ok := ur.Resolve(2); ok {
		t.Fatalf("removal row should not resolve")
	}
	line, content, ok = ur.Resolve(3)
	if !ok || line != 2 || content != "new" {
		t.Fatalf("add row resolved to (%d, %q, %v)", line, content, ok)
	}
}
