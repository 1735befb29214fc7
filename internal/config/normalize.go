package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizeSource()
	c.normalizeEnrichment()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}

	if strings.TrimSpace(c.Output.Dir) == "" {
		c.Output.Dir = filepath.Join(c.Paths.DataDir, "site")
	} else if c.Output.Dir, err = expandPath(c.Output.Dir); err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}

	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = filepath.Join(c.Paths.DataDir, "metadata_cache.json")
	} else if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if envKey := strings.TrimSpace(os.Getenv("TMDB_API_KEY")); envKey != "" {
			c.TMDB.APIKey = envKey
		}
	}
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
}

func (c *Config) normalizeSource() {
	c.Source.BaseURL = strings.TrimSpace(c.Source.BaseURL)
	c.Source.VenueID = strings.TrimSpace(c.Source.VenueID)
	c.Source.WhatsOnURL = strings.TrimSpace(c.Source.WhatsOnURL)
	if c.Source.RequestTimeout <= 0 {
		c.Source.RequestTimeout = defaultRequestTimeout
	}
	if strings.TrimSpace(c.Source.UserAgent) == "" {
		c.Source.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeEnrichment() {
	if c.Enrichment.Workers <= 0 {
		c.Enrichment.Workers = defaultEnrichWorkers
	}
	if c.Enrichment.RequestsPerSecond <= 0 {
		c.Enrichment.RequestsPerSecond = defaultRequestsPerSecond
	}
	if c.Cache.RetentionDays <= 0 {
		c.Cache.RetentionDays = defaultCacheRetention
	}
}
