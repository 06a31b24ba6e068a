// Package changetree groups a flat list of changed-file records into a
// hierarchical folder/file tree for the left pane.
//
// Trees are rebuilt from scratch on every status refresh; only the fold state
// of folders survives, carried forward by path. Toggling a fold returns a new
// tree so selection recomputation stays deterministic.
package changetree

import (
	"sort"
	"strings"

	"github.com/fieldstone/redline/internal/theme"
)

// Kind distinguishes file leaves from folder nodes.
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

// FileRecord is one changed file as reported by the status provider.
type FileRecord struct {
	Path     string
	Severity theme.Severity
	Staged   bool
}

// Node is a file or folder within the change tree. Path uniquely identifies a
// node within one tree snapshot. Folder colors aggregate from descendants,
// highest severity wins.
type Node struct {
	Kind     Kind
	Name     string
	Path     string
	Depth    int
	Record   *FileRecord // file nodes only
	Color    theme.Severity
	Expanded bool     // folder nodes only
	Children []*Node  // folder nodes only
}

// Build constructs a forest from an unordered record list. Records are sorted
// by path so sibling order is deterministic; callers guarantee path
// uniqueness per snapshot.
func Build(records []FileRecord) []*Node {
	sorted := append([]FileRecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var roots []*Node
	for i := range sorted {
		rec := sorted[i]
		segs := strings.Split(rec.Path, "/")
		roots = insert(roots, &rec, segs, "", 0)
	}
	for _, n := range roots {
		aggregateColor(n)
	}
	return roots
}

func insert(siblings []*Node, rec *FileRecord, segs []string, prefix string, depth int) []*Node {
	name := segs[0]
	path := name
	if prefix != "" {
		path = prefix + "/" + name
	}
	if len(segs) == 1 {
		return append(siblings, &Node{
			Kind:   KindFile,
			Name:   name,
			Path:   path,
			Depth:  depth,
			Record: rec,
			Color:  rec.Severity,
		})
	}
	var folder *Node
	for _, n := range siblings {
		if n.Kind == KindFolder && n.Name == name {
			folder = n
			break
		}
	}
	if folder == nil {
		folder = &Node{
			Kind:     KindFolder,
			Name:     name,
			Path:     path,
			Depth:    depth,
			Expanded: true,
		}
		siblings = append(siblings, folder)
	}
	folder.Children = insert(folder.Children, rec, segs[1:], path, depth+1)
	return siblings
}

func aggregateColor(n *Node) theme.Severity {
	if n.Kind == KindFile {
		return n.Color
	}
	sev := theme.SeverityUntracked
	for _, c := range n.Children {
		sev = theme.Max(sev, aggregateColor(c))
	}
	n.Color = sev
	return sev
}

// Flatten walks the forest depth-first in pre-order, descending into a
// folder's children only when it is expanded. The result is what selection
// and navigation index into.
func Flatten(roots []*Node) []*Node {
	out := make([]*Node, 0, len(roots))
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n)
		if n.Kind == KindFolder && n.Expanded {
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	for _, n := range roots {
		walk(n)
	}
	return out
}

// CarryExpansion applies the fold state of a previous tree onto a freshly
// built one, keyed by folder path. Folders with no prior entry stay expanded.
func CarryExpansion(prev, next []*Node) {
	if len(prev) == 0 {
		return
	}
	state := map[string]bool{}
	var collect func(n *Node)
	collect = func(n *Node) {
		if n.Kind == KindFolder {
			state[n.Path] = n.Expanded
			for _, c := range n.Children {
				collect(c)
			}
		}
	}
	for _, n := range prev {
		collect(n)
	}

	var apply func(n *Node)
	apply = func(n *Node) {
		if n.Kind == KindFolder {
			if exp, ok := state[n.Path]; ok {
				n.Expanded = exp
			}
			for _, c := range n.Children {
				apply(c)
			}
		}
	}
	for _, n := range next {
		apply(n)
	}
}

// Toggle flips the fold state of the folder at path and returns a new forest.
// Nodes off the toggled path are shared, not copied; the input forest is left
// structurally untouched.
func Toggle(roots []*Node, path string) []*Node {
	out := make([]*Node, len(roots))
	for i, n := range roots {
		out[i] = toggleNode(n, path)
	}
	return out
}

func toggleNode(n *Node, path string) *Node {
	if n.Kind != KindFolder {
		return n
	}
	if n.Path == path {
		c := *n
		c.Expanded = !c.Expanded
		return &c
	}
	if strings.HasPrefix(path, n.Path+"/") {
		c := *n
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = toggleNode(child, path)
		}
		return &c
	}
	return n
}
