// Package metacache persists movie metadata between pipeline runs.
//
// # Storage
//
// The cache is a single JSON file holding a sorted array of entries,
// written atomically on every mutation. Entries are keyed by the
// film's slugified search title so a film and its subtitled variant
// share one entry.
//
// # Lifetime
//
// Entries expire after a TTL (30 days by default) and are dropped on
// load and by Prune. Failed lookups are cached as empty entries so a
// film the metadata service cannot match is not retried every run.
// Entries that predate genre support (poster but no genres) read as
// misses without being deleted, forcing a refetch.
package metacache
