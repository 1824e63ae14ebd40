// Package manifest builds trees from YAML, JSON or CBOR lists of file and
// directory entries.
//
//	entries:
//	  - type: dir
//	    path: /etc
//	    mode: "0755"
//	  - type: file
//	    path: /etc/motd
//	    content: welcome
//	  - type: file
//	    path: /srv/index.html
//	    source: {type: http, url: https://example.com/}
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/adapters"
	"github.com/brettbedarf/treefs/config"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/brettbedarf/treefs/node"
	"github.com/brettbedarf/treefs/volume"
	"github.com/fxamacker/cbor/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// NodeType valid types are FileNodeType "file", DirNodeType "dir"
type NodeType string

const (
	FileNodeType NodeType = "file"
	DirNodeType  NodeType = "dir"
)

// Format selects the manifest encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json" // comments and trailing commas allowed
	FormatCBOR Format = "cbor"
)

// cborDecMode decodes untyped maps as map[string]any so entries can be
// re-encoded as JSON
var cborDecMode cbor.DecMode

func init() {
	var err error
	cborDecMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("manifest: CBOR decoder initialization failed: " + err.Error())
	}
}

// Tree is the node type manifests produce
type Tree = node.Node[[]byte, node.Attrs]

// DirEntry is a decoded directory entry
type DirEntry struct {
	Path  string
	Attrs node.Attrs
}

// FileEntry is a decoded file entry. Its content is fetched by [Apply].
type FileEntry struct {
	Path   string
	Attrs  node.Attrs
	Source treefs.ContentSource
}

// Manifest is a decoded manifest, entries kept in document order
type Manifest struct {
	Dirs  []DirEntry
	Files []FileEntry
}

// Stats counts what [Apply] created
type Stats struct {
	Dirs  int
	Files int
	Bytes int64
}

// Loader decodes manifests using config defaults and a source registry.
// A Loader is not safe for concurrent use.
type Loader struct {
	cfg     *config.Config
	sources *adapters.Registry
	files   *adapters.FileProvider // nil when the caller supplied the registry
	now     func() time.Time
}

// NewLoader returns a Loader. A nil registry gets the built-in sources,
// with HTTP fetches bounded by cfg.HTTPTimeout.
func NewLoader(cfg *config.Config, sources *adapters.Registry) *Loader {
	l := &Loader{cfg: cfg, sources: sources, now: time.Now}
	if sources == nil {
		l.sources = adapters.NewRegistry()
		l.files = &adapters.FileProvider{}
		l.sources.Register(adapters.FileSourceType, l.files)
		l.sources.Register(adapters.HTTPSourceType, &adapters.HTTPProvider{
			Client: &http.Client{Timeout: cfg.HTTPTimeoutDuration()},
		})
		adapters.RegisterBuiltins(l.sources)
	}
	return l
}

// FormatForPath picks the format from a file extension
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	case ".cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("unknown manifest file extension: %s", path)
	}
}

// LoadFile reads and decodes the manifest at path. With the built-in
// registry, relative file sources resolve against the manifest's directory.
func (l *Loader) LoadFile(path string) (*Manifest, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if l.files != nil {
		l.files.BaseDir = filepath.Dir(path)
	}
	return l.Decode(data, format)
}

// Decode parses a manifest document. Each entry is dispatched on its
// "type" field.
func (l *Loader) Decode(data []byte, format Format) (*Manifest, error) {
	raws, err := rawEntries(data, format)
	if err != nil {
		return nil, err
	}

	now := l.now()
	var m Manifest
	for i, raw := range raws {
		nodeType, err := GetNodeType(raw)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		switch nodeType {
		case DirNodeType:
			entry, err := l.unmarshalDirEntry(raw, now)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			m.Dirs = append(m.Dirs, *entry)
		case FileNodeType:
			entry, err := l.unmarshalFileEntry(raw, now)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			m.Files = append(m.Files, *entry)
		default:
			return nil, fmt.Errorf("entry %d: unknown node type %q", i, nodeType)
		}
	}
	return &m, nil
}

// rawEntries splits a document into one JSON object per entry. YAML and
// CBOR entries are re-encoded so every format shares one decoding path.
func rawEntries(data []byte, format Format) ([]json.RawMessage, error) {
	var doc struct {
		Entries []map[string]any `yaml:"entries" cbor:"entries"`
	}

	switch format {
	case FormatJSON:
		var jsonDoc struct {
			Entries []json.RawMessage `json:"entries"`
		}
		if err := json.Unmarshal(jsonc.ToJSON(data), &jsonDoc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
		}
		return jsonDoc.Entries, nil
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
		}
	case FormatCBOR:
		if err := cborDecMode.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown manifest format %q", format)
	}

	raws := make([]json.RawMessage, 0, len(doc.Entries))
	for i, entry := range doc.Entries {
		raw, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// GetNodeType extracts the node type from JSON without full unmarshaling
func GetNodeType(data []byte) (NodeType, error) {
	var meta struct {
		Type NodeType `json:"type"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", err
	}
	return meta.Type, nil
}

func (l *Loader) unmarshalDirEntry(raw []byte, now time.Time) (*DirEntry, error) {
	var dto DirEntryDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, err
	}
	attrs, err := convertAttrs(dto.EntryDTO, l.cfg.DirMode, now)
	if err != nil {
		return nil, err
	}
	return &DirEntry{Path: dto.Path, Attrs: attrs}, nil
}

func (l *Loader) unmarshalFileEntry(raw []byte, now time.Time) (*FileEntry, error) {
	var dto FileEntryDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, err
	}
	attrs, err := convertAttrs(dto.EntryDTO, l.cfg.FileMode, now)
	if err != nil {
		return nil, err
	}

	var source treefs.ContentSource
	switch {
	case dto.Content != nil && len(dto.Source) > 0:
		return nil, fmt.Errorf("%s: content and source are mutually exclusive", dto.Path)
	case len(dto.Source) > 0:
		source, err = l.sources.NewSource(dto.Source)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dto.Path, err)
		}
	case dto.Content != nil:
		source = adapters.Inline(*dto.Content)
	default:
		source = adapters.Inline("")
	}
	return &FileEntry{Path: dto.Path, Attrs: attrs, Source: source}, nil
}

// convertAttrs applies defaults in the unmarshaling layer
func convertAttrs(dto EntryDTO, defaultMode uint32, now time.Time) (node.Attrs, error) {
	if strings.TrimSpace(dto.Path) == "" {
		return node.Attrs{}, errors.New("path is required")
	}
	mode := fs.FileMode(defaultMode).Perm()
	if dto.Mode != nil {
		parsed, err := strconv.ParseUint(strings.TrimPrefix(*dto.Mode, "0o"), 8, 32)
		if err != nil {
			return node.Attrs{}, fmt.Errorf("%s: invalid mode %q", dto.Path, *dto.Mode)
		}
		mode = fs.FileMode(parsed).Perm()
	}
	return node.Attrs{Mode: mode, ModTime: util.ValueOr(dto.Mtime, now)}, nil
}

// Apply adds every manifest entry to root, directories first, then
// files, each group in document order. File content is fetched here.
// Missing parents are created when the config allows it, with the
// default directory mode.
func (l *Loader) Apply(ctx context.Context, root *Tree, m *Manifest) (*Tree, Stats, error) {
	logger := util.GetLogger("Manifest")

	var stats Stats
	now := l.now()
	opts := &volume.Options[node.Attrs]{}
	if l.cfg.MakeIntermediateDirectories {
		opts.IntermediateMetadata = func(string) node.Attrs {
			return node.Attrs{Mode: fs.FileMode(l.cfg.DirMode).Perm(), ModTime: now}
		}
	}

	var err error
	for _, dir := range m.Dirs {
		opts.Metadata = &dir.Attrs
		next, err := volume.MakeDirectory(root, dir.Path, opts)
		if err != nil {
			return nil, stats, err
		}
		if next != root {
			stats.Dirs++
		}
		root = next
	}

	for _, file := range m.Files {
		data, fetchErr := file.Source.Fetch(ctx)
		if fetchErr != nil {
			return nil, stats, fmt.Errorf("fetching %s: %w", file.Path, fetchErr)
		}
		opts.Metadata = &file.Attrs
		root, err = volume.WriteFile(root, file.Path, data, opts)
		if err != nil {
			return nil, stats, err
		}
		stats.Files++
		stats.Bytes += int64(len(data))
		logger.Debug().Str("path", file.Path).Int("bytes", len(data)).Msg("file added")
	}

	logger.Info().Int("dirs", stats.Dirs).Int("files", stats.Files).Int64("bytes", stats.Bytes).Msg("manifest applied")
	return root, stats, nil
}

// Build applies m to a fresh root whose metadata uses the default directory mode
func (l *Loader) Build(ctx context.Context, m *Manifest) (*Tree, Stats, error) {
	rootAttrs := node.Attrs{Mode: fs.FileMode(l.cfg.DirMode).Perm(), ModTime: l.now()}
	root := volume.Create[[]byte](&volume.Options[node.Attrs]{Metadata: &rootAttrs})
	return l.Apply(ctx, root, m)
}
