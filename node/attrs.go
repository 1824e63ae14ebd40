package node

import (
	"io/fs"
	"time"
)

// Attrs is a ready-made metadata type carrying the attributes the OS
// bindings and the manifest loader understand. Any other M works with
// the core.
type Attrs struct {
	Mode    fs.FileMode
	ModTime time.Time
}
