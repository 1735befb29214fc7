package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")

	cfg, path, exists, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("exists = true for missing file")
	}
	if path == "" {
		t.Error("resolved path is empty")
	}
	if cfg.Source.VenueID != "st-austell" {
		t.Errorf("venue_id = %q", cfg.Source.VenueID)
	}
	if cfg.Enrichment.Workers != 4 {
		t.Errorf("workers = %d", cfg.Enrichment.Workers)
	}
	if cfg.TMDBEnabled() {
		t.Error("TMDB enabled with no API key")
	}
	if !strings.HasSuffix(cfg.Cache.Path, "metadata_cache.json") {
		t.Errorf("cache path = %q", cfg.Cache.Path)
	}
	if cfg.Output.Dir != filepath.Join(cfg.Paths.DataDir, "site") {
		t.Errorf("output dir = %q", cfg.Output.Dir)
	}
}

func TestLoadParsesFile(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `"

[source]
venue_id = "newquay"
venue_name = "Newquay"

[tmdb]
api_key = "abc123"

[enrichment]
workers = 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Error("exists = false")
	}
	if cfg.Source.VenueID != "newquay" {
		t.Errorf("venue_id = %q", cfg.Source.VenueID)
	}
	if !cfg.TMDBEnabled() {
		t.Error("TMDB not enabled")
	}
	if cfg.Enrichment.Workers != 2 {
		t.Errorf("workers = %d", cfg.Enrichment.Workers)
	}
	if got := cfg.ListingURL(); got != "https://wtwcinemas.co.uk/whats-on/?venue=newquay" {
		t.Errorf("listing URL = %q", got)
	}
}

func TestLoadEnvAPIKeyFallback(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "env-key")

	cfg, _, _, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TMDB.APIKey != "env-key" {
		t.Errorf("api_key = %q", cfg.TMDB.APIKey)
	}
}

func TestValidateRejectsBadOutputNames(t *testing.T) {
	cfg := Default()
	cfg.Output.DataFile = "../escape.json"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for path separator in data_file")
	}

	cfg = Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unsupported log format")
	}
}

func TestCreateSampleParses(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")

	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("sample config does not load: exists=%v err=%v", exists, err)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	got, err := expandPath("~/data")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if got != filepath.Join(home, "data") {
		t.Errorf("got %q", got)
	}
}
