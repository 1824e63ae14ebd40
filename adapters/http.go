package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/brettbedarf/treefs"
)

type HTTPMethod = string

const (
	HTTPMethodGet  HTTPMethod = "GET"
	HTTPMethodPost HTTPMethod = "POST"
)

// HTTPClient is the subset of *http.Client used by [HTTPSource]
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSourceConfig contains http-specific source config fields
type HTTPSourceConfig struct {
	URL     string            `json:"url"`
	Method  *HTTPMethod       `json:"method,omitempty"` // Default is GET
	Headers map[string]string `json:"headers,omitempty"`
	// Compression of the response body, independent of Content-Encoding
	Compression Compression `json:"compression,omitempty"`
}

// HTTPProvider builds [HTTPSource] values sharing one client
type HTTPProvider struct {
	Client HTTPClient
}

func (p *HTTPProvider) NewSource(raw []byte) (treefs.ContentSource, error) {
	var cfg HTTPSourceConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	cfg.URL = strings.TrimSpace(cfg.URL)
	if err := validateURL(cfg.URL); err != nil {
		return nil, err
	}
	compression, err := ParseCompression(string(cfg.Compression))
	if err != nil {
		return nil, fmt.Errorf("http source: %w", err)
	}
	cfg.Compression = compression
	return &HTTPSource{config: cfg, client: p.Client}, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("http source: url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("http source: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("http source: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("http source: missing host in %q", raw)
	}
	if u.User != nil {
		return fmt.Errorf("http source: user info not allowed in url")
	}
	return nil
}

// HTTPSource downloads a file's content with a single request
type HTTPSource struct {
	config HTTPSourceConfig
	client HTTPClient
}

func (h *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, h.method(), h.config.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range h.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: unexpected status %s", req.Method, h.config.URL, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return Decompress(body, h.config.Compression)
}

func (h *HTTPSource) method() HTTPMethod {
	if h.config.Method != nil {
		return *h.config.Method
	}
	return HTTPMethodGet
}
