package volume

import "github.com/brettbedarf/treefs/internal/tree"

// Options controls node creation. A nil *Options behaves like the zero
// value: zero metadata and no intermediate directories.
type Options[M any] struct {
	// Metadata for the node being created. Nil leaves the zero M.
	Metadata *M
	// MakeIntermediateDirectories creates missing ancestors with zero metadata
	MakeIntermediateDirectories bool
	// IntermediateMetadata is called once per created ancestor, root to
	// leaf, with its root-relative path (e.g. "a/b"). Setting it implies
	// MakeIntermediateDirectories.
	IntermediateMetadata func(path string) M
}

func (o *Options[M]) metadata() M {
	if o == nil || o.Metadata == nil {
		var zero M
		return zero
	}
	return *o.Metadata
}

func (o *Options[M]) policy() *tree.Policy[M] {
	if o == nil {
		return nil
	}
	return &tree.Policy[M]{
		MakeIntermediate:     o.MakeIntermediateDirectories,
		IntermediateMetadata: o.IntermediateMetadata,
	}
}
