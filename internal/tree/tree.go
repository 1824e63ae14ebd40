// Package tree walks component paths through a node tree and rebuilds
// the ancestor chain after a single-slot change.
package tree

import (
	"strings"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/node"
	"github.com/brettbedarf/treefs/paths"
)

// Policy controls what [Resolve] does when a component is missing.
// A nil *Policy never creates anything.
type Policy[M any] struct {
	// MakeIntermediate creates missing directories with zero metadata
	MakeIntermediate bool
	// IntermediateMetadata, when set, enables creation and supplies the
	// metadata for each created directory. It receives the cumulative
	// root-relative path and wins over MakeIntermediate.
	IntermediateMetadata func(path string) M
}

func (p *Policy[M]) creates() bool {
	return p != nil && (p.MakeIntermediate || p.IntermediateMetadata != nil)
}

func (p *Policy[M]) metadataFor(path string) M {
	if p.IntermediateMetadata != nil {
		return p.IntermediateMetadata(path)
	}
	var zero M
	return zero
}

// Chain is the list of nodes from the root to a resolved target.
// Chain[i] is the node addressed by components[:i], so a chain for n
// components has n+1 entries and the last one is the target.
type Chain[D, M any] []*node.Node[D, M]

// Target returns the last node in the chain
func (c Chain[D, M]) Target() *node.Node[D, M] {
	return c[len(c)-1]
}

// Resolve walks components from root. Every non-final step must be a
// directory. Missing children are created as empty directories when the
// policy allows it, otherwise the walk fails with treefs.ErrNotFound
// naming the full requested path. Created directories are not linked
// into their parents; [Rebuild] does that.
func Resolve[D, M any](op string, root *node.Node[D, M], components []string, policy *Policy[M]) (Chain[D, M], error) {
	chain := make(Chain[D, M], 1, len(components)+1)
	chain[0] = root

	current := root
	for i, name := range components {
		if !current.IsDirectory() {
			return nil, treefs.NewPathError(op, Join(components[:i]), treefs.ErrNotADirectory)
		}
		child, ok := current.Child(name)
		if !ok {
			if !policy.creates() {
				return nil, treefs.NewPathError(op, Join(components), treefs.ErrNotFound)
			}
			child = node.EmptyDirectory[D](policy.metadataFor(Join(components[:i+1])))
		}
		chain = append(chain, child)
		current = child
	}
	return chain, nil
}

// Rebuild returns a new root in which the chain's target is replaced by
// leaf. Each ancestor is copied with exactly one child changed; every
// other subtree is shared with the old root.
func Rebuild[D, M any](chain Chain[D, M], components []string, leaf *node.Node[D, M]) *node.Node[D, M] {
	current := leaf
	for i := len(components) - 1; i >= 0; i-- {
		current = chain[i].WithChild(components[i], current)
	}
	return current
}

// Join renders components as a root-relative path without a leading
// separator. The root itself is "".
func Join(components []string) string {
	return strings.Join(components, paths.Sep)
}
