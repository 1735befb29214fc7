package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSource() error {
	listing := c.ListingURL()
	parsed, err := url.Parse(listing)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("source: listing URL %q is not an absolute URL", listing)
	}
	if c.Source.WhatsOnURL == "" && c.Source.VenueID == "" {
		return errors.New("source.venue_id must be set when source.whats_on_url is not")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	// An empty API key is allowed; enrichment is skipped in that case.
	if c.TMDB.APIKey != "" && c.TMDB.BaseURL == "" {
		return errors.New("tmdb.base_url must be set when tmdb.api_key is configured")
	}
	return nil
}

func (c *Config) validateOutput() error {
	for name, value := range map[string]string{
		"output.data_file":        c.Output.DataFile,
		"output.fingerprint_file": c.Output.FingerprintFile,
		"output.html_file":        c.Output.HTMLFile,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		if strings.ContainsAny(value, "/\\") {
			return fmt.Errorf("%s must be a bare file name, got %q", name, value)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "auto", "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}
