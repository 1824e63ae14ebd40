// Package fusefs serves a node tree snapshot as a read-only FUSE mount.
package fusefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/brettbedarf/treefs/node"
	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Defaults for [Options]
const (
	DefaultFsName       = "treefs"
	DefaultName         = "treefs"
	DefaultAttrTimeout  = time.Second
	DefaultEntryTimeout = time.Second
)

// Options configures a mount
type Options[D, M any] struct {
	// Mountpoint is created if it does not exist
	Mountpoint string
	// Root is the snapshot to serve. It never changes for the life of the mount.
	Root *node.Node[D, M]
	// Content converts a file payload to bytes. Required.
	Content func(data D) []byte
	// Attrs extracts mode and mtime from metadata. Optional.
	Attrs func(metadata M) node.Attrs

	FsName       string        // mount's FsName (Default "treefs")
	Name         string        // mount's Name (Default "treefs")
	AttrTimeout  time.Duration // kernel attribute cache timeout (Default 1s)
	EntryTimeout time.Duration // kernel entry cache timeout (Default 1s)
	Debug        bool          // go-fuse wire debug logs, routed through zerolog
}

// Server is a mounted snapshot
type Server struct {
	srv        *fuse.Server
	mountpoint string
}

// Mount mounts opts.Root at opts.Mountpoint and starts serving it. The
// caller must call Unmount when done.
func Mount[D, M any](opts Options[D, M]) (*Server, error) {
	logger := util.GetLogger("FUSE")

	if opts.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if opts.Root == nil || !opts.Root.IsDirectory() {
		return nil, fmt.Errorf("root must be a directory")
	}
	if opts.Content == nil {
		return nil, fmt.Errorf("content function is required")
	}
	if opts.FsName == "" {
		opts.FsName = DefaultFsName
	}
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.AttrTimeout == 0 {
		opts.AttrTimeout = DefaultAttrTimeout
	}
	if opts.EntryTimeout == 0 {
		opts.EntryTimeout = DefaultEntryTimeout
	}

	if err := os.MkdirAll(opts.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", opts.Mountpoint, err)
	}

	root := &dirNode[D, M]{opts: &opts, dir: opts.Root}
	srv, err := gofuse.Mount(opts.Mountpoint, root, &gofuse.Options{
		AttrTimeout:  &opts.AttrTimeout,
		EntryTimeout: &opts.EntryTimeout,
		MountOptions: fuse.MountOptions{
			FsName: opts.FsName,
			Name:   opts.Name,
			Debug:  opts.Debug,
			Logger: util.NewLogLogger("FuseServer", util.DebugLevel),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", opts.Mountpoint, err)
	}

	logger.Info().Str("mountpoint", opts.Mountpoint).Msg("snapshot mounted")
	return &Server{srv: srv, mountpoint: opts.Mountpoint}, nil
}

// Mountpoint returns the directory the snapshot is mounted on
func (s *Server) Mountpoint() string {
	return s.mountpoint
}

// Wait blocks until the filesystem is unmounted
func (s *Server) Wait() {
	s.srv.Wait()
}

// Unmount cleanly unmounts the filesystem
func (s *Server) Unmount() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Unmount()
}

// Errno translates a treefs error kind into an errno for the kernel.
// Errors outside the treefs kinds become EIO.
func Errno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, treefs.ErrNotFound), errors.Is(err, treefs.ErrOutOfRoot):
		return syscall.ENOENT
	case errors.Is(err, treefs.ErrNotADirectory):
		return syscall.ENOTDIR
	case errors.Is(err, treefs.ErrNotAFile):
		return syscall.EISDIR
	case errors.Is(err, treefs.ErrAlreadyExists):
		return syscall.EEXIST
	case errors.Is(err, treefs.ErrInvalidPath):
		return syscall.EINVAL
	default:
		return syscall.EIO
	}
}

// fillAttr writes the attributes of n into out
func fillAttr[D, M any](opts *Options[D, M], n *node.Node[D, M], out *fuse.Attr) {
	var attrs node.Attrs
	if opts.Attrs != nil {
		attrs = opts.Attrs(n.Metadata())
	}

	if n.IsDirectory() {
		out.Mode = syscall.S_IFDIR | permOr(attrs.Mode.Perm(), 0o555)
		out.Nlink = 2
	} else {
		out.Mode = syscall.S_IFREG | permOr(attrs.Mode.Perm(), 0o444)
		out.Nlink = 1
		out.Size = uint64(len(opts.Content(n.Data())))
		out.Blocks = (out.Size + 511) / 512
	}
	if !attrs.ModTime.IsZero() {
		out.SetTimes(nil, &attrs.ModTime, nil)
	}
}

func permOr[P ~uint32](perm P, fallback uint32) uint32 {
	if perm == 0 {
		return fallback
	}
	return uint32(perm)
}

// newChild creates the inode for n below parent
func newChild[D, M any](ctx context.Context, parent *gofuse.Inode, opts *Options[D, M], n *node.Node[D, M]) *gofuse.Inode {
	if n.IsDirectory() {
		return parent.NewInode(ctx, &dirNode[D, M]{opts: opts, dir: n}, gofuse.StableAttr{Mode: syscall.S_IFDIR})
	}
	return parent.NewInode(ctx, &fileNode[D, M]{opts: opts, file: n}, gofuse.StableAttr{Mode: syscall.S_IFREG})
}
