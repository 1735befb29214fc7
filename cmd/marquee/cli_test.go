package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"marquee/internal/logging"
	"marquee/internal/metacache"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()
	dataDir := filepath.Join(base, "data")
	content := fmt.Sprintf(`[paths]
data_dir = %q

[cache]
path = %q

[output]
dir = %q

[logging]
format = "json"
`, dataDir, filepath.Join(dataDir, "cache.json"), filepath.Join(dataDir, "site"))

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInit(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init without --overwrite must refuse.
	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error for existing config file")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestCacheListEmpty(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	configPath := writeTestConfig(t, t.TempDir())

	out, _, err := runCLI(t, configPath, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "Cache is empty.")
}

func TestCacheListAndClear(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	cachePath := filepath.Join(base, "data", "cache.json")
	cache := metacache.New(cachePath, metacache.DefaultTTL, logging.NewNop())
	if err := cache.Store(metacache.Entry{
		Key:          "send-help",
		MatchedTitle: "Send Help",
		Year:         "2026",
		TMDBID:       1100998,
		CachedAt:     time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	out, _, err := runCLI(t, configPath, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "send-help")
	requireContains(t, out, "Send Help")
	requireContains(t, out, "1100998")

	out, _, err = runCLI(t, configPath, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cache cleared.")

	out, _, err = runCLI(t, configPath, "cache", "list")
	if err != nil {
		t.Fatalf("cache list after clear: %v", err)
	}
	requireContains(t, out, "Cache is empty.")
}

func TestHistoryEmpty(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	configPath := writeTestConfig(t, t.TempDir())

	out, _, err := runCLI(t, configPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded yet.")
}
