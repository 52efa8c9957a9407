package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookscout/internal/logging"
)

// ErrFetchFailed marks a fetch that failed after exhausting its retry
// budget. Callers that batch over many resources use it to distinguish
// fetch trouble from parse trouble.
var ErrFetchFailed = errors.New("fetch failed")

// Getter resolves a site-relative path to a parsed document. Implemented by
// Client; consumers accept the interface so tests can serve fixture pages.
type Getter interface {
	Get(ctx context.Context, path string) (*Document, error)
	Invalidate(path string) error
}

// Config describes Client construction parameters.
type Config struct {
	BaseURL       string
	CacheDir      string
	Cookie        string
	UserAgent     string
	RetryAttempts int
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// Client fetches pages from the source site and caches the raw bodies on
// disk, keyed by the exact path string. A path is fetched remotely at most
// once per cache lifetime unless explicitly invalidated.
type Client struct {
	baseURL   *url.URL
	cacheDir  string
	cookie    string
	userAgent string
	attempts  int
	timeout   time.Duration
	http      *http.Client
	logger    *slog.Logger
}

// NewClient creates a Client from the supplied configuration.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("source: base url is required")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("source: parse base url: %w", err)
	}
	if strings.TrimSpace(cfg.CacheDir) == "" {
		return nil, errors.New("source: cache dir is required")
	}
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 3
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Client{
		baseURL:   baseURL,
		cacheDir:  cfg.CacheDir,
		cookie:    strings.TrimSpace(cfg.Cookie),
		userAgent: strings.TrimSpace(cfg.UserAgent),
		attempts:  attempts,
		timeout:   timeout,
		http:      client,
		logger:    logging.NewComponentLogger(logger, "source"),
	}, nil
}

// Get returns the parsed document for a site-relative path, fetching and
// caching it if it has not been seen before. Successful fetches are
// persisted verbatim before being parsed and returned.
func (c *Client) Get(ctx context.Context, path string) (*Document, error) {
	cachePath, err := c.cachePath(path)
	if err != nil {
		return nil, err
	}

	if body, err := os.ReadFile(cachePath); err == nil {
		return ParseDocument(path, body)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("source: read cache %q: %w", path, err)
	}

	body, err := c.fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return nil, fmt.Errorf("source: create cache directory: %w", err)
	}
	if err := os.WriteFile(cachePath, body, 0o644); err != nil {
		return nil, fmt.Errorf("source: persist %q: %w", path, err)
	}

	return ParseDocument(path, body)
}

// Invalidate removes a cached entry, forcing the next Get to refetch.
// A path that was never cached is a no-op.
func (c *Client) Invalidate(path string) error {
	cachePath, err := c.cachePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(cachePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("source: invalidate %q: %w", path, err)
	}
	c.logger.Debug("invalidated cache entry", logging.String(logging.FieldPath, path))
	return nil
}

func (c *Client) cachePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("source: invalid path %q", path)
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == ".." {
			return "", fmt.Errorf("source: invalid path %q", path)
		}
	}
	return filepath.Join(c.cacheDir, filepath.FromSlash(path)), nil
}

// fetch performs the remote request with sequential retries. The
// per-attempt timeout grows linearly with the attempt number so slow
// responses get more room before the fetch is declared dead.
func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	target, err := c.baseURL.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("source: resolve %q: %w", path, err)
	}

	c.logger.Debug("downloading",
		logging.String(logging.FieldPath, path),
		logging.String("url", target.String()))

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		body, retryable, err := c.fetchOnce(ctx, target, time.Duration(attempt)*c.timeout)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || attempt == c.attempts {
			break
		}
		c.logger.Warn("fetch attempt failed",
			logging.String(logging.FieldPath, path),
			logging.Int("attempt", attempt),
			logging.Error(err))
	}

	return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, path, lastErr)
}

// fetchOnce runs a single attempt. The second return value reports whether
// the failure is transient (network error, 5xx, 429) and worth retrying.
func (c *Client) fetchOnce(ctx context.Context, target *url.URL, timeout time.Duration) ([]byte, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, true, fmt.Errorf("status %s", resp.Status)
	}
	if resp.StatusCode >= 400 {
		return nil, false, fmt.Errorf("status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	return body, false, nil
}
