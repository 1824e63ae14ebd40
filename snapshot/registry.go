// Package snapshot keeps named, immutable roots. Roots are never merged
// or modified; the registry only maps identifiers and tags to them.
package snapshot

import (
	"errors"
	"fmt"
	"slices"

	"github.com/brettbedarf/treefs/internal/util"
	"github.com/brettbedarf/treefs/node"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
)

var (
	// ErrUnknownSnapshot indicates an ID that was never committed
	ErrUnknownSnapshot = errors.New("unknown snapshot")
	// ErrInvalidTag indicates an empty tag name
	ErrInvalidTag = errors.New("invalid tag")
)

// ID identifies a committed root
type ID = uuid.UUID

// Registry is safe for concurrent use
type Registry[D, M any] struct {
	roots *xsync.Map[ID, *node.Node[D, M]]
	tags  *xsync.Map[string, ID]
}

func NewRegistry[D, M any]() *Registry[D, M] {
	return &Registry[D, M]{
		roots: xsync.NewMap[ID, *node.Node[D, M]](),
		tags:  xsync.NewMap[string, ID](),
	}
}

// Commit stores root under a fresh random ID
func (r *Registry[D, M]) Commit(root *node.Node[D, M]) (ID, error) {
	if root == nil {
		return uuid.Nil, fmt.Errorf("commit: nil root")
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	r.roots.Store(id, root)

	logger := util.GetLogger("Snapshot")
	logger.Trace().Stringer("id", id).Msg("committed")
	return id, nil
}

// Get returns the root committed under id
func (r *Registry[D, M]) Get(id ID) (*node.Node[D, M], bool) {
	return r.roots.Load(id)
}

// Tag points name at id, replacing any previous target
func (r *Registry[D, M]) Tag(name string, id ID) error {
	if name == "" {
		return ErrInvalidTag
	}
	if _, ok := r.roots.Load(id); !ok {
		return fmt.Errorf("tag %s: %w: %s", name, ErrUnknownSnapshot, id)
	}
	r.tags.Store(name, id)
	return nil
}

// Lookup returns the root and ID a tag points at
func (r *Registry[D, M]) Lookup(name string) (*node.Node[D, M], ID, bool) {
	id, ok := r.tags.Load(name)
	if !ok {
		return nil, uuid.Nil, false
	}
	root, ok := r.roots.Load(id)
	return root, id, ok
}

// Untag removes a tag and reports whether it existed. The root stays committed.
func (r *Registry[D, M]) Untag(name string) bool {
	_, existed := r.tags.LoadAndDelete(name)
	return existed
}

// Tags returns all tag names, sorted
func (r *Registry[D, M]) Tags() []string {
	names := make([]string, 0, r.tags.Size())
	r.tags.Range(func(name string, _ ID) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

// Len returns the number of committed roots
func (r *Registry[D, M]) Len() int {
	return r.roots.Size()
}
