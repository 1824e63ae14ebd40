package manifest

import (
	"encoding/json"
	"time"
)

// EntryDTO holds the fields common to all manifest entries
type EntryDTO struct {
	Path  string     `json:"path"`
	Type  NodeType   `json:"type"`
	Mode  *string    `json:"mode,omitempty"`  // octal permission bits, i.e. "0755"
	Mtime *time.Time `json:"mtime,omitempty"` // RFC 3339 (Default load time)
}

// FileEntryDTO is a file entry. Content and Source are mutually
// exclusive; with neither the file is empty.
type FileEntryDTO struct {
	EntryDTO
	Content *string         `json:"content,omitempty"`
	Source  json.RawMessage `json:"source,omitempty"`
}

// DirEntryDTO is an explicit directory entry
type DirEntryDTO struct {
	EntryDTO
}
