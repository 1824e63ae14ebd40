package treefs

import "context"

// ContentSource produces the payload of a single file. Sources are
// resolved once, when a tree is built; the tree only ever holds bytes.
type ContentSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// SourceProvider builds [ContentSource] values from raw JSON source
// configs of one "type"
type SourceProvider interface {
	NewSource(raw []byte) (ContentSource, error)
}
