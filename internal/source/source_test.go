package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, server *httptest.Server, cacheDir string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:       server.URL,
		CacheDir:      cacheDir,
		UserAgent:     "bookscout-test",
		Cookie:        "session=abc",
		RetryAttempts: 3,
		Timeout:       time.Second,
		HTTPClient:    server.Client(),
	}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestGetFetchesOnceAndCaches(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Cookie") != "session=abc" {
			t.Errorf("cookie header missing, got %q", r.Header.Get("Cookie"))
		}
		w.Write([]byte(`<html><body><div id="x">hello</div></body></html>`))
	}))
	defer server.Close()

	cacheDir := t.TempDir()
	client := newTestClient(t, server, cacheDir)

	doc, err := client.Get(context.Background(), "book/show/123-dune")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if node := doc.ElementByID("x"); node == nil || Text(node) != "hello" {
		t.Fatal("parsed document missing expected element")
	}

	// second call must come from the cache
	if _, err := client.Get(context.Background(), "book/show/123-dune"); err != nil {
		t.Fatalf("cached Get failed: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 remote fetch, got %d", hits.Load())
	}

	// stored content is the raw body
	data, err := os.ReadFile(filepath.Join(cacheDir, "book", "show", "123-dune"))
	if err != nil {
		t.Fatalf("cache file missing: %v", err)
	}
	if string(data) != `<html><body><div id="x">hello</div></body></html>` {
		t.Fatalf("cache content not verbatim: %q", data)
	}
}

func TestGetRetriesTransientErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	client := newTestClient(t, server, t.TempDir())
	if _, err := client.Get(context.Background(), "review/list/1"); err != nil {
		t.Fatalf("Get should succeed on third attempt: %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestGetFatalAfterRetryExhaustion(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server, t.TempDir())
	_, err := client.Get(context.Background(), "review/list/1")
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server, t.TempDir())
	_, err := client.Get(context.Background(), "book/show/gone")
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("404 must not be retried, got %d attempts", hits.Load())
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	client := newTestClient(t, server, t.TempDir())
	path := "review/list/42?page=1"

	if _, err := client.Get(context.Background(), path); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if err := client.Invalidate(path); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, err := client.Get(context.Background(), path); err != nil {
		t.Fatalf("Get after invalidate failed: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected refetch after invalidate, got %d fetches", hits.Load())
	}
}

func TestInvalidateMissingEntryIsNoOp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := newTestClient(t, server, t.TempDir())
	if err := client.Invalidate("never/fetched"); err != nil {
		t.Fatalf("Invalidate of missing entry should be a no-op, got %v", err)
	}
}

func TestGetRejectsUnsafePaths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := newTestClient(t, server, t.TempDir())
	for _, path := range []string{"", "/absolute", "a/../../escape"} {
		if _, err := client.Get(context.Background(), path); err == nil {
			t.Errorf("expected error for path %q", path)
		}
	}
}
