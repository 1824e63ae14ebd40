package fusefs

import (
	"context"
	"syscall"

	"github.com/brettbedarf/treefs/internal/util"
	"github.com/brettbedarf/treefs/node"
	"github.com/brettbedarf/treefs/volume"
	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// dirNode serves a directory of the snapshot
type dirNode[D, M any] struct {
	gofuse.Inode
	opts *Options[D, M]
	dir  *node.Node[D, M]
}

var _ gofuse.InodeEmbedder = (*dirNode[[]byte, node.NoMetadata])(nil)
var _ gofuse.NodeLookuper = (*dirNode[[]byte, node.NoMetadata])(nil)
var _ gofuse.NodeReaddirer = (*dirNode[[]byte, node.NoMetadata])(nil)
var _ gofuse.NodeGetattrer = (*dirNode[[]byte, node.NoMetadata])(nil)

func (d *dirNode[D, M]) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	child, err := volume.GetNode(d.dir, []string{name})
	if err != nil {
		return nil, Errno(err)
	}
	fillAttr(d.opts, child, &out.Attr)
	return newChild(ctx, &d.Inode, d.opts, child), 0
}

func (d *dirNode[D, M]) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	names, err := volume.ReadDirectory(d.dir, []string{})
	if err != nil {
		return nil, Errno(err)
	}
	entries := make([]fuse.DirEntry, 0, len(names))
	for _, name := range names {
		child, _ := d.dir.Child(name)
		mode := uint32(syscall.S_IFREG)
		if child.IsDirectory() {
			mode = syscall.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: name, Mode: mode})
	}
	return gofuse.NewListDirStream(entries), 0
}

func (d *dirNode[D, M]) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	fillAttr(d.opts, d.dir, &out.Attr)
	return 0
}

// fileNode serves a file of the snapshot
type fileNode[D, M any] struct {
	gofuse.Inode
	opts *Options[D, M]
	file *node.Node[D, M]
}

var _ gofuse.InodeEmbedder = (*fileNode[[]byte, node.NoMetadata])(nil)
var _ gofuse.NodeGetattrer = (*fileNode[[]byte, node.NoMetadata])(nil)
var _ gofuse.NodeOpener = (*fileNode[[]byte, node.NoMetadata])(nil)
var _ gofuse.NodeReader = (*fileNode[[]byte, node.NoMetadata])(nil)

func (f *fileNode[D, M]) Getattr(ctx context.Context, fh gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	fillAttr(f.opts, f.file, &out.Attr)
	return 0
}

func (f *fileNode[D, M]) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	// snapshots never change, so the page cache stays valid
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (f *fileNode[D, M]) Read(ctx context.Context, fh gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := volume.ReadFile(f.file, []string{})
	if err != nil {
		logger := util.GetLogger("FUSE")
		logger.Error().Err(err).Msg("read failed")
		return nil, Errno(err)
	}
	content := f.opts.Content(data)
	if off >= int64(len(content)) {
		return fuse.ReadResultData(nil), 0
	}
	end := min(off+int64(len(dest)), int64(len(content)))
	return fuse.ReadResultData(content[off:end]), 0
}
