package config

// MountOptions holds high-level settings for FUSE mounts.
// No go-fuse types are exposed here.
type MountOptions struct {
	Debug  bool   // go-fuse wire debug logs
	FsName string // mount's FsName
	Name   string // mount's Name
}
