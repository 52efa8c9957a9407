package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
cache_dir = %q
data_dir = %q

[logging]
level = "error"
`, filepath.Join(base, "cache"), filepath.Join(base, "data"))

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestRootShowsHelp(t *testing.T) {
	out, err := runCLI(t, "--config", writeTestConfig(t))
	if err != nil {
		t.Fatalf("root command: %v", err)
	}
	requireContains(t, out, "recommend")
	requireContains(t, out, "scan")
}

func TestCacheInvalidateMissingEntry(t *testing.T) {
	cfg := writeTestConfig(t)
	out, err := runCLI(t, "--config", cfg, "cache", "invalidate", "review/list/1?page=1")
	if err != nil {
		t.Fatalf("cache invalidate: %v", err)
	}
	requireContains(t, out, "Invalidated")
}

func TestSnapshotDelete(t *testing.T) {
	cfg := writeTestConfig(t)
	out, err := runCLI(t, "--config", cfg, "snapshot", "delete", "42")
	if err != nil {
		t.Fatalf("snapshot delete: %v", err)
	}
	requireContains(t, out, "Deleted snapshot for user 42")
}

func TestSnapshotDeleteRejectsBadID(t *testing.T) {
	cfg := writeTestConfig(t)
	if _, err := runCLI(t, "--config", cfg, "snapshot", "delete", "not-a-number"); err == nil {
		t.Fatal("expected an error for a non-numeric user id")
	}
}

func TestScanRequiresASource(t *testing.T) {
	cfg := writeTestConfig(t)
	if _, err := runCLI(t, "--config", cfg, "scan"); err == nil {
		t.Fatal("expected an error when no source flags are given")
	}
}

func TestRecommendRejectsBadUserID(t *testing.T) {
	cfg := writeTestConfig(t)
	if _, err := runCLI(t, "--config", cfg, "recommend", "abc"); err == nil {
		t.Fatal("expected an error for a non-numeric user id")
	}
}
