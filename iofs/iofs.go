// Package iofs exposes a node tree snapshot as a read-only io/fs.FS.
package iofs

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/node"
	"github.com/brettbedarf/treefs/paths"
	"github.com/brettbedarf/treefs/volume"
)

// Default permission bits when no Attrs function is configured
const (
	DefaultFileMode fs.FileMode = 0o444
	DefaultDirMode  fs.FileMode = 0o555
)

// Options configures how payloads and metadata are presented
type Options[D, M any] struct {
	// Content converts a file payload to bytes. Required.
	Content func(data D) []byte
	// Attrs extracts mode and modification time from metadata. When nil
	// the default modes and a zero time are used.
	Attrs func(metadata M) node.Attrs
}

// FS serves one immutable root. It is safe for concurrent use.
type FS[D, M any] struct {
	root *node.Node[D, M]
	opts Options[D, M]
}

var (
	_ fs.FS         = (*FS[[]byte, node.NoMetadata])(nil)
	_ fs.StatFS     = (*FS[[]byte, node.NoMetadata])(nil)
	_ fs.ReadDirFS  = (*FS[[]byte, node.NoMetadata])(nil)
	_ fs.ReadFileFS = (*FS[[]byte, node.NoMetadata])(nil)
)

// New returns an FS over root. Later roots derived from root are not
// visible; create a new FS for them.
func New[D, M any](root *node.Node[D, M], opts Options[D, M]) *FS[D, M] {
	return &FS[D, M]{root: root, opts: opts}
}

// Bytes is the Content function for []byte payloads
func Bytes(data []byte) []byte { return data }

// String is the Content function for string payloads
func String(data string) []byte { return []byte(data) }

// Open implements fs.FS
func (f *FS[D, M]) Open(name string) (fs.File, error) {
	n, err := f.lookup("open", name)
	if err != nil {
		return nil, err
	}
	info := f.info(name, n)
	if n.IsDirectory() {
		return &openDir[D, M]{fsys: f, info: info, dir: n, path: name}, nil
	}
	return &openFile{info: info, r: bytes.NewReader(f.opts.Content(n.Data()))}, nil
}

// Stat implements fs.StatFS
func (f *FS[D, M]) Stat(name string) (fs.FileInfo, error) {
	n, err := f.lookup("stat", name)
	if err != nil {
		return nil, err
	}
	return f.info(name, n), nil
}

// ReadDir implements fs.ReadDirFS. Entries are sorted by name.
func (f *FS[D, M]) ReadDir(name string) ([]fs.DirEntry, error) {
	n, err := f.lookup("readdir", name)
	if err != nil {
		return nil, err
	}
	if !n.IsDirectory() {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: syscall.ENOTDIR}
	}
	entries := f.entries(name, n)
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, nil
}

// ReadFile implements fs.ReadFileFS. The returned slice is a copy.
func (f *FS[D, M]) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	data, err := volume.ReadFile(f.root, name)
	if err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: Err(err)}
	}
	return bytes.Clone(f.opts.Content(data)), nil
}

func (f *FS[D, M]) lookup(op, name string) (*node.Node[D, M], error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	n, err := volume.GetNode(f.root, name)
	if err != nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: Err(err)}
	}
	return n, nil
}

func (f *FS[D, M]) entries(dirName string, dir *node.Node[D, M]) []fs.DirEntry {
	names := dir.Names()
	entries := make([]fs.DirEntry, 0, len(names))
	for _, name := range names {
		child, _ := dir.Child(name)
		entries = append(entries, fs.FileInfoToDirEntry(f.info(paths.Join(dirName, name), child)))
	}
	return entries
}

func (f *FS[D, M]) info(name string, n *node.Node[D, M]) *fileInfo {
	var attrs node.Attrs
	if f.opts.Attrs != nil {
		attrs = f.opts.Attrs(n.Metadata())
	}

	info := &fileInfo{name: paths.Basename(name), modTime: attrs.ModTime}
	if name == "." {
		info.name = "."
	}
	if n.IsDirectory() {
		info.mode = fs.ModeDir | permOr(attrs.Mode, DefaultDirMode)
	} else {
		info.mode = permOr(attrs.Mode, DefaultFileMode)
		info.size = int64(len(f.opts.Content(n.Data())))
	}
	return info
}

func permOr(mode, fallback fs.FileMode) fs.FileMode {
	if mode.Perm() == 0 {
		return fallback
	}
	return mode.Perm()
}

// Err translates a treefs error kind into the matching io/fs or errno
// value. Unknown errors are returned unchanged.
func Err(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, treefs.ErrNotFound), errors.Is(err, treefs.ErrOutOfRoot):
		return fs.ErrNotExist
	case errors.Is(err, treefs.ErrNotADirectory):
		return syscall.ENOTDIR
	case errors.Is(err, treefs.ErrNotAFile):
		return syscall.EISDIR
	case errors.Is(err, treefs.ErrAlreadyExists):
		return fs.ErrExist
	case errors.Is(err, treefs.ErrInvalidPath):
		return fs.ErrInvalid
	default:
		return err
	}
}

type fileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (i *fileInfo) Name() string       { return i.name }
func (i *fileInfo) Size() int64        { return i.size }
func (i *fileInfo) Mode() fs.FileMode  { return i.mode }
func (i *fileInfo) ModTime() time.Time { return i.modTime }
func (i *fileInfo) IsDir() bool        { return i.mode.IsDir() }
func (i *fileInfo) Sys() any           { return nil }

type openFile struct {
	info *fileInfo
	r    *bytes.Reader
}

func (f *openFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *openFile) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *openFile) ReadAt(p []byte, off int64) (int, error) {
	return f.r.ReadAt(p, off)
}
func (f *openFile) Seek(offset int64, whence int) (int64, error) {
	return f.r.Seek(offset, whence)
}
func (f *openFile) Close() error { return nil }

type openDir[D, M any] struct {
	fsys    *FS[D, M]
	info    *fileInfo
	dir     *node.Node[D, M]
	path    string
	entries []fs.DirEntry // loaded on first ReadDir
	offset  int
}

func (d *openDir[D, M]) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *openDir[D, M]) Close() error               { return nil }

func (d *openDir[D, M]) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.path, Err: syscall.EISDIR}
}

// ReadDir returns entries in insertion order
func (d *openDir[D, M]) ReadDir(count int) ([]fs.DirEntry, error) {
	if d.entries == nil {
		d.entries = d.fsys.entries(d.path, d.dir)
	}
	remaining := len(d.entries) - d.offset
	if count <= 0 {
		out := d.entries[d.offset:]
		d.offset = len(d.entries)
		return slices.Clone(out), nil
	}
	if remaining == 0 {
		return nil, io.EOF
	}
	count = min(count, remaining)
	out := d.entries[d.offset : d.offset+count]
	d.offset += count
	return slices.Clone(out), nil
}
