package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/treefs"
)

// FileSource reads a file from the local disk
type FileSource struct {
	Path        string      `json:"path"`
	Compression Compression `json:"compression,omitempty"`
}

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	return Decompress(data, s.Compression)
}

// FileProvider builds [FileSource] values. Relative paths are resolved
// against BaseDir.
type FileProvider struct {
	BaseDir string
}

func (p *FileProvider) NewSource(raw []byte) (treefs.ContentSource, error) {
	var src FileSource
	err := json.Unmarshal(raw, &src)
	if err != nil {
		return nil, err
	}
	src.Path = strings.TrimSpace(src.Path)
	if src.Path == "" {
		return nil, fmt.Errorf("file source: path is required")
	}
	if src.Compression, err = ParseCompression(string(src.Compression)); err != nil {
		return nil, fmt.Errorf("file source: %w", err)
	}
	if !filepath.IsAbs(src.Path) && p.BaseDir != "" {
		src.Path = filepath.Join(p.BaseDir, src.Path)
	}
	return &src, nil
}
