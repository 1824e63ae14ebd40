// Package volume is the path-addressed API over immutable node trees.
//
// Every mutating function takes a root and returns a new root. The input
// root is never modified, so any root a caller holds is a stable snapshot.
// Errors are always paired with a nil root; there are no partial results.
package volume

import (
	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/internal/tree"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/brettbedarf/treefs/node"
)

// Create returns an empty root directory
func Create[D, M any](opts *Options[M]) *node.Node[D, M] {
	return node.EmptyDirectory[D](opts.metadata())
}

// GetNode returns the node at p. "/" and "." address the root.
func GetNode[D, M any, P PathLike](root *node.Node[D, M], p P) (*node.Node[D, M], error) {
	n, _, err := lookup(treefs.OpResolve, root, p)
	return n, err
}

// lookup resolves p without creating anything and also returns the
// components it resolved
func lookup[D, M any, P PathLike](op string, root *node.Node[D, M], p P) (*node.Node[D, M], []string, error) {
	parts, err := components(op, p)
	if err != nil {
		return nil, nil, err
	}
	chain, err := tree.Resolve[D, M](op, root, parts, nil)
	if err != nil {
		return nil, nil, err
	}
	return chain.Target(), parts, nil
}

// ReadFile returns the payload of the file at p
func ReadFile[D, M any, P PathLike](root *node.Node[D, M], p P) (D, error) {
	n, parts, err := lookup(treefs.OpReadFile, root, p)
	if err != nil {
		var zero D
		return zero, err
	}
	if !n.IsFile() {
		var zero D
		return zero, treefs.NewPathError(treefs.OpReadFile, tree.Join(parts), treefs.ErrNotAFile)
	}
	return n.Data(), nil
}

// ReadDirectory returns the child names of the directory at p in
// insertion order
func ReadDirectory[D, M any, P PathLike](root *node.Node[D, M], p P) ([]string, error) {
	n, parts, err := lookup(treefs.OpReadDir, root, p)
	if err != nil {
		return nil, err
	}
	if !n.IsDirectory() {
		return nil, treefs.NewPathError(treefs.OpReadDir, tree.Join(parts), treefs.ErrNotADirectory)
	}
	return n.Names(), nil
}

// GetMetadata returns the metadata of the node at p
func GetMetadata[D, M any, P PathLike](root *node.Node[D, M], p P) (M, error) {
	n, _, err := lookup(treefs.OpResolve, root, p)
	if err != nil {
		var zero M
		return zero, err
	}
	return n.Metadata(), nil
}

// WriteFile places a new file holding data at p, replacing whatever is
// there (file or directory). The parent must exist unless opts asks for
// intermediate directories.
func WriteFile[D, M any, P PathLike](root *node.Node[D, M], p P, data D, opts *Options[M]) (*node.Node[D, M], error) {
	return setNode(treefs.OpWriteFile, root, p, node.NewFile(data, opts.metadata()), opts)
}

// SetNode places n at p, replacing whatever is there. The root itself
// cannot be replaced.
func SetNode[D, M any, P PathLike](root *node.Node[D, M], p P, n *node.Node[D, M], opts *Options[M]) (*node.Node[D, M], error) {
	return setNode(treefs.OpSetNode, root, p, n, opts)
}

func setNode[D, M any, P PathLike](op string, root *node.Node[D, M], p P, n *node.Node[D, M], opts *Options[M]) (*node.Node[D, M], error) {
	parts, err := components(op, p)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, treefs.NewPathError(op, "", treefs.ErrInvalidPath)
	}

	parentParts, name := splitLast(parts)
	chain, err := resolveParent(op, root, parentParts, opts.policy())
	if err != nil {
		return nil, err
	}

	logger := util.GetLogger("Volume")
	logger.Trace().Str("op", op).Str("path", tree.Join(parts)).Stringer("kind", n.Kind()).Msg("set node")

	parent := chain.Target()
	return tree.Rebuild(chain, parentParts, parent.WithChild(name, n)), nil
}

// MakeDirectory creates an empty directory at p. An existing directory
// (including the root) is left alone and the same root is returned; an
// existing file fails with treefs.ErrAlreadyExists.
func MakeDirectory[D, M any, P PathLike](root *node.Node[D, M], p P, opts *Options[M]) (*node.Node[D, M], error) {
	logger := util.GetLogger("Volume")

	parts, err := components(treefs.OpMkdir, p)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return root, nil
	}

	parentParts, name := splitLast(parts)
	chain, err := resolveParent(treefs.OpMkdir, root, parentParts, opts.policy())
	if err != nil {
		return nil, err
	}
	parent := chain.Target()
	if existing, ok := parent.Child(name); ok {
		if existing.IsDirectory() {
			logger.Trace().Str("path", tree.Join(parts)).Msg("directory exists")
			return root, nil
		}
		return nil, treefs.NewPathError(treefs.OpMkdir, tree.Join(parts), treefs.ErrAlreadyExists)
	}

	logger.Trace().Str("path", tree.Join(parts)).Msg("make directory")
	dir := node.EmptyDirectory[D](opts.metadata())
	return tree.Rebuild(chain, parentParts, parent.WithChild(name, dir)), nil
}

// RemoveFile removes the file or directory subtree at p. The parent must
// exist and be a directory; a missing child is a no-op that returns the
// same root.
func RemoveFile[D, M any, P PathLike](root *node.Node[D, M], p P) (*node.Node[D, M], error) {
	logger := util.GetLogger("Volume")

	parts, err := components(treefs.OpRemove, p)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, treefs.NewPathError(treefs.OpRemove, "", treefs.ErrInvalidPath)
	}

	parentParts, name := splitLast(parts)
	chain, err := resolveParent[D, M](treefs.OpRemove, root, parentParts, nil)
	if err != nil {
		return nil, err
	}
	parent := chain.Target()
	if _, ok := parent.Child(name); !ok {
		return root, nil
	}

	logger.Trace().Str("path", tree.Join(parts)).Msg("remove")
	return tree.Rebuild(chain, parentParts, parent.WithoutChild(name)), nil
}

// SetMetadata replaces the metadata of the node at p, root included.
// Data and children are shared with the old node.
func SetMetadata[D, M any, P PathLike](root *node.Node[D, M], p P, metadata M) (*node.Node[D, M], error) {
	parts, err := components(treefs.OpSetMetadata, p)
	if err != nil {
		return nil, err
	}
	chain, err := tree.Resolve[D, M](treefs.OpSetMetadata, root, parts, nil)
	if err != nil {
		return nil, err
	}
	return tree.Rebuild(chain, parts, chain.Target().WithMetadata(metadata)), nil
}

// resolveParent resolves the chain to a parent directory. Unlike a plain
// Resolve, a parent that turns out to be a file is an error.
func resolveParent[D, M any](op string, root *node.Node[D, M], parentParts []string, policy *tree.Policy[M]) (tree.Chain[D, M], error) {
	chain, err := tree.Resolve(op, root, parentParts, policy)
	if err != nil {
		return nil, err
	}
	if !chain.Target().IsDirectory() {
		return nil, treefs.NewPathError(op, tree.Join(parentParts), treefs.ErrNotADirectory)
	}
	return chain, nil
}

func splitLast(parts []string) ([]string, string) {
	return parts[:len(parts)-1], parts[len(parts)-1]
}
