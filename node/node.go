// Package node defines the immutable File/Directory tree node shared by
// every treefs package.
//
// A [Node] is never modified after construction. The With* helpers return
// fresh nodes and reuse untouched children by reference, which is what
// lets earlier roots remain valid snapshots.
package node

import (
	"fmt"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/paths"
)

// NoMetadata is the metadata type for trees that carry none
type NoMetadata = struct{}

// Kind tags a [Node] as a file or a directory
type Kind uint8

const (
	KindFile Kind = iota + 1
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Node is either a file holding an opaque payload of type D, or a
// directory holding insertion-ordered named children. Both carry a
// metadata value of type M.
type Node[D, M any] struct {
	kind     Kind
	data     D // files only
	metadata M
	names    []string               // directories only; insertion order
	children map[string]*Node[D, M] // directories only
}

// Child names a node inside a directory under construction
type Child[D, M any] struct {
	Name string
	Node *Node[D, M]
}

// NewFile creates a file node
func NewFile[D, M any](data D, metadata M) *Node[D, M] {
	return &Node[D, M]{kind: KindFile, data: data, metadata: metadata}
}

// EmptyDirectory creates a directory node with no children
func EmptyDirectory[D, M any](metadata M) *Node[D, M] {
	return &Node[D, M]{
		kind:     KindDirectory,
		metadata: metadata,
		children: make(map[string]*Node[D, M]),
	}
}

// NewDirectory creates a directory node with the given children in order.
// Names must be valid path components and unique; nil child nodes are rejected.
func NewDirectory[D, M any](metadata M, children ...Child[D, M]) (*Node[D, M], error) {
	dir := &Node[D, M]{
		kind:     KindDirectory,
		metadata: metadata,
		names:    make([]string, 0, len(children)),
		children: make(map[string]*Node[D, M], len(children)),
	}
	for _, child := range children {
		if !paths.ValidComponent(child.Name) {
			return nil, treefs.NewPathError(treefs.OpMkdir, child.Name, treefs.ErrInvalidPath)
		}
		if child.Node == nil {
			return nil, fmt.Errorf("child %q: nil node", child.Name)
		}
		if _, dup := dir.children[child.Name]; dup {
			return nil, fmt.Errorf("duplicate child name %q", child.Name)
		}
		dir.names = append(dir.names, child.Name)
		dir.children[child.Name] = child.Node
	}
	return dir, nil
}

// Kind returns the node's tag
func (n *Node[D, M]) Kind() Kind {
	return n.kind
}

// IsFile reports whether n is a file
func (n *Node[D, M]) IsFile() bool {
	return n.kind == KindFile
}

// IsDirectory reports whether n is a directory
func (n *Node[D, M]) IsDirectory() bool {
	return n.kind == KindDirectory
}

// Data returns a file's payload; the zero D for directories
func (n *Node[D, M]) Data() D {
	return n.data
}

// Metadata returns the node's metadata value
func (n *Node[D, M]) Metadata() M {
	return n.metadata
}

// Names returns a directory's child names in insertion order.
// The returned slice is a copy; nil for files.
func (n *Node[D, M]) Names() []string {
	if !n.IsDirectory() {
		return nil
	}
	names := make([]string, len(n.names))
	copy(names, n.names)
	return names
}

// Len returns the number of children of a directory
func (n *Node[D, M]) Len() int {
	return len(n.names)
}

// Child looks up a direct child by name. A missing name is not an error.
func (n *Node[D, M]) Child(name string) (*Node[D, M], bool) {
	child, ok := n.children[name]
	return child, ok
}

// WithMetadata returns a copy of n with its metadata replaced.
// Children and data are shared with n.
func (n *Node[D, M]) WithMetadata(metadata M) *Node[D, M] {
	clone := *n
	clone.metadata = metadata
	return &clone
}

// WithChild returns a copy of directory n where name maps to child.
// An existing name keeps its position; a new name is appended.
// Calling WithChild on a file panics.
func (n *Node[D, M]) WithChild(name string, child *Node[D, M]) *Node[D, M] {
	n.mustBeDirectory("WithChild")

	clone := &Node[D, M]{
		kind:     KindDirectory,
		metadata: n.metadata,
		children: make(map[string]*Node[D, M], len(n.children)+1),
	}
	for k, v := range n.children {
		clone.children[k] = v
	}
	if _, exists := n.children[name]; exists {
		clone.names = make([]string, len(n.names))
		copy(clone.names, n.names)
	} else {
		clone.names = make([]string, len(n.names), len(n.names)+1)
		copy(clone.names, n.names)
		clone.names = append(clone.names, name)
	}
	clone.children[name] = child
	return clone
}

// WithoutChild returns a copy of directory n without name. If name is not
// a child, n itself is returned. Calling WithoutChild on a file panics.
func (n *Node[D, M]) WithoutChild(name string) *Node[D, M] {
	n.mustBeDirectory("WithoutChild")

	if _, exists := n.children[name]; !exists {
		return n
	}
	clone := &Node[D, M]{
		kind:     KindDirectory,
		metadata: n.metadata,
		names:    make([]string, 0, len(n.names)-1),
		children: make(map[string]*Node[D, M], len(n.children)-1),
	}
	for _, k := range n.names {
		if k == name {
			continue
		}
		clone.names = append(clone.names, k)
		clone.children[k] = n.children[k]
	}
	return clone
}

func (n *Node[D, M]) mustBeDirectory(op string) {
	if !n.IsDirectory() {
		panic(fmt.Sprintf("node.%s called on a %s", op, n.kind))
	}
}

// IsFile reports whether n is a file
func IsFile[D, M any](n *Node[D, M]) bool {
	return n.IsFile()
}

// IsDirectory reports whether n is a directory
func IsDirectory[D, M any](n *Node[D, M]) bool {
	return n.IsDirectory()
}

// ReadDirectory returns the child names of dir in insertion order
func ReadDirectory[D, M any](dir *Node[D, M]) []string {
	return dir.Names()
}

// GetChild returns the named child of dir, or nil if there is none
func GetChild[D, M any](dir *Node[D, M], name string) *Node[D, M] {
	child, _ := dir.Child(name)
	return child
}
