package testsupport

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"bookscout/internal/source"
)

// FakeSource serves fixture pages from memory and records cache
// invalidations. It implements source.Getter for tests that must not touch
// the network or the disk cache.
type FakeSource struct {
	mu          sync.Mutex
	pages       map[string]string
	errs        map[string]error
	Requests    []string
	Invalidated []string
}

// NewFakeSource creates an empty fake. Add pages with Add or fail paths
// with Fail.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		pages: make(map[string]string),
		errs:  make(map[string]error),
	}
}

// Add registers a page body under a site-relative path.
func (f *FakeSource) Add(path, body string) *FakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[path] = body
	return f
}

// Fail makes Get return the given error for a path.
func (f *FakeSource) Fail(path string, err error) *FakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[path] = err
	return f
}

// Get implements source.Getter.
func (f *FakeSource) Get(_ context.Context, path string) (*source.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, path)
	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	body, ok := f.pages[path]
	if !ok {
		return nil, fmt.Errorf("no fixture for path %q", path)
	}
	return source.ParseDocument(path, []byte(body))
}

// Invalidate implements source.Getter.
func (f *FakeSource) Invalidate(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Invalidated = append(f.Invalidated, path)
	return nil
}

// RequestCount returns how many times a path was requested.
func (f *FakeSource) RequestCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, requested := range f.Requests {
		if requested == path {
			count++
		}
	}
	return count
}

// WasInvalidated reports whether Invalidate was called for a path.
func (f *FakeSource) WasInvalidated(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, invalidated := range f.Invalidated {
		if invalidated == path {
			return true
		}
	}
	return false
}

var _ source.Getter = (*FakeSource)(nil)

// BookPage assembles a minimal detail-page fixture with the given embedded
// metadata payload and extra markup.
func BookPage(tb testing.TB, payload string, extra string) string {
	tb.Helper()
	return `<html><body>` + extra +
		`<script id="__NEXT_DATA__" type="application/json">` + payload + `</script>` +
		`</body></html>`
}
