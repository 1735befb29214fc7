// Package config loads and validates marquee configuration.
//
// Configuration is TOML, defaulting to ~/.config/marquee/config.toml.
// A missing file is not an error; every setting has a default so the
// pipeline runs with nothing but a TMDB_API_KEY environment variable
// (and without even that, enrichment is skipped).
//
// Load applies three passes: decode over Default(), normalize (path
// expansion, env fallback, derived locations) and Validate.
package config
