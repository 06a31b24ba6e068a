package changetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstone/redline/internal/theme"
)

func sampleRecords() []FileRecord {
	return []FileRecord{
		{Path: "cmd/app/main.go", Severity: theme.SeverityModified},
		{Path: "internal/a/x.go", Severity: theme.SeverityModified},
		{Path: "internal/a/y.go", Severity: theme.SeverityDeleted},
		{Path: "internal/b/z.go", Severity: theme.SeverityAdded},
		{Path: "README.md", Severity: theme.SeverityUntracked},
	}
}

func findNode(roots []*Node, path string) *Node {
	for _, n := range Flatten(expandAll(roots)) {
		if n.Path == path {
			return n
		}
	}
	return nil
}

func expandAll(roots []*Node) []*Node {
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Kind == KindFolder {
			n.Expanded = true
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	for _, n := range roots {
		walk(n)
	}
	return roots
}

func TestBuild_Hierarchy(t *testing.T) {
	roots := Build(sampleRecords())

	// README.md, cmd, internal at the top
	require.Len(t, roots, 3)

	a := findNode(roots, "internal/a")
	require.NotNil(t, a)
	assert.Equal(t, KindFolder, a.Kind)
	assert.Equal(t, 1, a.Depth)
	assert.Len(t, a.Children, 2)

	x := findNode(roots, "internal/a/x.go")
	require.NotNil(t, x)
	assert.Equal(t, KindFile, x.Kind)
	assert.Equal(t, 2, x.Depth)
	require.NotNil(t, x.Record)
	assert.Equal(t, "internal/a/x.go", x.Record.Path)
}

func TestBuild_FolderColorAggregation(t *testing.T) {
	roots := Build(sampleRecords())

	// internal/a holds a deleted file, which outranks everything else under internal/
	a := findNode(roots, "internal/a")
	require.NotNil(t, a)
	assert.Equal(t, theme.SeverityDeleted, a.Color)

	internal := findNode(roots, "internal")
	require.NotNil(t, internal)
	assert.Equal(t, theme.SeverityDeleted, internal.Color)

	b := findNode(roots, "internal/b")
	require.NotNil(t, b)
	assert.Equal(t, theme.SeverityAdded, b.Color)
}

func TestFlatten_SkipsCollapsedFolders(t *testing.T) {
	roots := Build(sampleRecords())

	all := Flatten(roots)
	toggled := Toggle(roots, "internal/a")
	after := Flatten(toggled)

	// internal/a has two children that disappear when collapsed
	assert.Equal(t, len(all)-2, len(after))
	for _, n := range after {
		assert.NotEqual(t, "internal/a/x.go", n.Path)
		assert.NotEqual(t, "internal/a/y.go", n.Path)
	}
}

func TestToggle_IsPure(t *testing.T) {
	roots := Build(sampleRecords())
	before := len(Flatten(roots))

	toggled := Toggle(roots, "internal/a")

	// old tree untouched
	assert.Equal(t, before, len(Flatten(roots)))
	a := findOnly(roots, "internal/a")
	require.NotNil(t, a)
	assert.True(t, a.Expanded)

	a2 := findOnly(toggled, "internal/a")
	require.NotNil(t, a2)
	assert.False(t, a2.Expanded)

	// untouched siblings are shared between both trees
	cmd := findOnly(roots, "cmd")
	cmd2 := findOnly(toggled, "cmd")
	assert.Same(t, cmd, cmd2)
}

// findOnly searches without mutating fold state.
func findOnly(roots []*Node, path string) *Node {
	var found *Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Path == path {
			found = n
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range roots {
		walk(n)
	}
	return found
}

func TestCarryExpansion_SurvivesRebuild(t *testing.T) {
	prev := Build(sampleRecords())
	prev = Toggle(prev, "internal/a")

	// refresh arrives with a new file added under the collapsed folder
	recs := append(sampleRecords(), FileRecord{Path: "internal/a/new.go", Severity: theme.SeverityUntracked})
	next := Build(recs)
	CarryExpansion(prev, next)

	a := findOnly(next, "internal/a")
	require.NotNil(t, a)
	assert.False(t, a.Expanded, "collapsed folder must stay collapsed across rebuilds")

	for _, n := range Flatten(next) {
		assert.NotEqual(t, "internal/a/new.go", n.Path, "new file must stay hidden until expanded")
	}

	// a folder never seen before defaults to expanded
	recs = append(recs, FileRecord{Path: "pkg/util/u.go", Severity: theme.SeverityModified})
	next2 := Build(recs)
	CarryExpansion(next, next2)
	pkg := findOnly(next2, "pkg")
	require.NotNil(t, pkg)
	assert.True(t, pkg.Expanded)
}

func TestBuild_Deterministic(t *testing.T) {
	recs := sampleRecords()
	// reversed input must produce the same flattened order
	rev := make([]FileRecord, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		rev = append(rev, recs[i])
	}

	a := Flatten(Build(recs))
	b := Flatten(Build(rev))
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Path, b[i].Path)
	}
}
