// Package pipeline orchestrates a full scrape-enrich-publish run.
//
// A run fetches the listing page, extracts films, merges subtitled
// variants, attaches movie metadata (or carries it over from the
// previous artifact when no API key is configured), and publishes the
// artifacts only when the listing fingerprint changed. Every run is
// recorded in the SQLite run log, failures included. A file lock keeps
// overlapping invocations from racing.
package pipeline
