package adapters

import (
	"context"
	"encoding/json"

	"github.com/brettbedarf/treefs"
)

// InlineSource holds its content directly in the config
type InlineSource struct {
	Content string `json:"content"`
}

func (s *InlineSource) Fetch(context.Context) ([]byte, error) {
	return []byte(s.Content), nil
}

// InlineProvider builds [InlineSource] values
type InlineProvider struct{}

func (InlineProvider) NewSource(raw []byte) (treefs.ContentSource, error) {
	var src InlineSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, err
	}
	return &src, nil
}

// Inline returns a source for a literal string
func Inline(content string) treefs.ContentSource {
	return &InlineSource{Content: content}
}
