package adapters

import "net/http"

type BuiltInSourceType = string

const (
	InlineSourceType BuiltInSourceType = "inline"
	FileSourceType   BuiltInSourceType = "file"
	HTTPSourceType   BuiltInSourceType = "http"
)

// RegisterBuiltins registers all built-in providers with default
// settings, or only the given types
func RegisterBuiltins(r *Registry, types ...BuiltInSourceType) {
	if len(types) == 0 {
		types = []BuiltInSourceType{InlineSourceType, FileSourceType, HTTPSourceType}
	}

	for _, key := range types {
		switch key {
		case InlineSourceType:
			r.Register(InlineSourceType, InlineProvider{})
		case FileSourceType:
			r.Register(FileSourceType, &FileProvider{})
		case HTTPSourceType:
			r.Register(HTTPSourceType, &HTTPProvider{Client: http.DefaultClient})
		}
	}
}
