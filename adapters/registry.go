// Package adapters resolves file content sources (inline text, local
// files, HTTP) used when building trees from manifests.
package adapters

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/brettbedarf/treefs"
)

// Registry maps source "type" keys to providers. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]treefs.SourceProvider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]treefs.SourceProvider)}
}

// Register ties a provider to a "type" key. The first registration for a
// key wins so callers can pre-register customized providers before
// [RegisterBuiltins].
func (r *Registry) Register(sourceType string, provider treefs.SourceProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[sourceType]; exists {
		return
	}
	r.providers[sourceType] = provider
}

// GetProvider returns the provider registered for sourceType
func (r *Registry) GetProvider(sourceType string) (treefs.SourceProvider, error) {
	r.mu.RLock()
	provider, ok := r.providers[sourceType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no source provider for %q", sourceType)
	}
	return provider, nil
}

// NewSource picks the provider by the config's "type" field and builds
// a source from raw
func (r *Registry) NewSource(raw []byte) (treefs.ContentSource, error) {
	sourceType, err := GetSourceType(raw)
	if err != nil {
		return nil, err
	}
	if sourceType == "" {
		return nil, fmt.Errorf("source config missing \"type\"")
	}
	provider, err := r.GetProvider(sourceType)
	if err != nil {
		return nil, err
	}
	return provider.NewSource(raw)
}

// GetSourceType extracts the "type" field without full unmarshaling
func GetSourceType(raw []byte) (string, error) {
	var meta struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return "", err
	}
	return meta.Type, nil
}
