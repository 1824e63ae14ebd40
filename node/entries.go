package node

import "github.com/brettbedarf/treefs/paths"

// Entry pairs a node with the path it was reached by
type Entry[D, M any] struct {
	Path string
	Node *Node[D, M]
}

// Root returns the entry for a tree root
func Root[D, M any](root *Node[D, M]) Entry[D, M] {
	return Entry[D, M]{Path: paths.Sep, Node: root}
}

// Children returns the child entries of a directory entry in iteration
// order. Files have no children.
func Children[D, M any](parent Entry[D, M]) []Entry[D, M] {
	if !parent.Node.IsDirectory() {
		return nil
	}
	entries := make([]Entry[D, M], 0, parent.Node.Len())
	for _, name := range parent.Node.names {
		entries = append(entries, Entry[D, M]{
			Path: paths.Join(parent.Path, name),
			Node: parent.Node.children[name],
		})
	}
	return entries
}

// WalkFunc is called for every entry visited by [Walk]. Returning
// [SkipDir] from a directory entry skips its children.
type WalkFunc[D, M any] func(entry Entry[D, M]) error

// SkipDir can be returned by a [WalkFunc] to skip a directory's children
var SkipDir = skipDir{}

type skipDir struct{}

func (skipDir) Error() string { return "skip this directory" }

// Walk visits start and every descendant depth-first, parents before
// children, siblings in insertion order. It stops at the first error
// other than [SkipDir] and returns it.
func Walk[D, M any](start Entry[D, M], fn WalkFunc[D, M]) error {
	if err := fn(start); err != nil {
		if err == SkipDir {
			return nil
		}
		return err
	}
	for _, child := range Children(start) {
		if err := Walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}
