package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
}

// Source describes the cinema site being scraped.
type Source struct {
	BaseURL        string `toml:"base_url"`
	VenueID        string `toml:"venue_id"`
	VenueName      string `toml:"venue_name"`
	WhatsOnURL     string `toml:"whats_on_url"`
	RequestTimeout int    `toml:"request_timeout"`
	UserAgent      string `toml:"user_agent"`
}

// TMDB contains configuration for The Movie Database API. An empty API
// key disables enrichment; previously published metadata is carried
// over instead.
type TMDB struct {
	APIKey       string `toml:"api_key"`
	BaseURL      string `toml:"base_url"`
	Language     string `toml:"language"`
	ImageBaseURL string `toml:"image_base_url"`
}

// Cache contains configuration for the metadata cache.
type Cache struct {
	Path          string `toml:"path"`
	RetentionDays int    `toml:"retention_days"`
}

// Enrichment controls the metadata matcher.
type Enrichment struct {
	Workers           int     `toml:"workers"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Output describes the published artifacts.
type Output struct {
	Dir             string `toml:"dir"`
	DataFile        string `toml:"data_file"`
	FingerprintFile string `toml:"fingerprint_file"`
	HTMLFile        string `toml:"html_file"`
	RenderHTML      bool   `toml:"render_html"`
	MirrorPosters   bool   `toml:"mirror_posters"`
}

// Logging controls log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config aggregates all configuration sections.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Source     Source     `toml:"source"`
	TMDB       TMDB       `toml:"tmdb"`
	Cache      Cache      `toml:"cache"`
	Enrichment Enrichment `toml:"enrichment"`
	Output     Output     `toml:"output"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/marquee/config.toml")
}

// Load reads configuration from path, falling back to the default
// location when path is empty. It returns the parsed config, the
// resolved path, and whether a file existed there. Missing files are
// not an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	} else {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		path = expanded
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return path, true, nil
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "marquee.lock")
}

// RunLogPath returns the SQLite run log location.
func (c *Config) RunLogPath() string {
	return filepath.Join(c.Paths.DataDir, "runs.db")
}

// DataFilePath returns the absolute artifact JSON location.
func (c *Config) DataFilePath() string {
	return filepath.Join(c.Output.Dir, c.Output.DataFile)
}

// FingerprintPath returns the absolute fingerprint sidecar location.
func (c *Config) FingerprintPath() string {
	return filepath.Join(c.Output.Dir, c.Output.FingerprintFile)
}

// HTMLPath returns the absolute rendered page location.
func (c *Config) HTMLPath() string {
	return filepath.Join(c.Output.Dir, c.Output.HTMLFile)
}

// ListingURL returns the page to scrape, deriving it from the base URL
// and venue id when not set explicitly.
func (c *Config) ListingURL() string {
	if c.Source.WhatsOnURL != "" {
		return c.Source.WhatsOnURL
	}
	return strings.TrimRight(c.Source.BaseURL, "/") + "/whats-on/?venue=" + c.Source.VenueID
}

// TMDBEnabled reports whether metadata enrichment can run.
func (c *Config) TMDBEnabled() bool {
	return strings.TrimSpace(c.TMDB.APIKey) != ""
}

// EnsureDirectories creates the directories the pipeline writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Output.Dir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves a leading ~ and returns an absolute, cleaned
// path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
