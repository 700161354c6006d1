package contract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxDocumentSize bounds documents fetched over HTTP.
const maxDocumentSize = 16 << 20

// ErrHTTPDisabled is returned for URL locations without an HTTP client.
var ErrHTTPDisabled = errors.New("contract: http loading disabled")

// LoadOption configures Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	files   fs.FS
	client  *http.Client
	timeout time.Duration
}

// FromFS resolves relative locations inside files instead of the working
// directory.
func FromFS(files fs.FS) LoadOption {
	return func(cfg *loadConfig) { cfg.files = files }
}

// WithHTTPClient enables http and https locations.
func WithHTTPClient(client *http.Client) LoadOption {
	return func(cfg *loadConfig) { cfg.client = client }
}

// WithTimeout bounds HTTP fetches. Zero disables the bound.
func WithTimeout(timeout time.Duration) LoadOption {
	return func(cfg *loadConfig) { cfg.timeout = timeout }
}

// Load reads a document from a file path, an fs.FS or an http(s) URL.
func Load(ctx context.Context, location string, opts ...LoadOption) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("contract: location is required")
	}
	var cfg loadConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		if cfg.client == nil {
			return nil, ErrHTTPDisabled
		}
		return loadHTTP(ctx, cfg.client, location, cfg.timeout)
	}

	var (
		data []byte
		err  error
	)
	if cfg.files != nil {
		data, err = fs.ReadFile(cfg.files, strings.TrimPrefix(location, "./"))
	} else {
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("contract: read %s: %w", location, err)
	}
	return data, nil
}

func loadHTTP(ctx context.Context, client *http.Client, location string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("contract: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contract: fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("contract: fetch %s: unexpected status %s", location, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("contract: read body: %w", err)
	}
	return data, nil
}
