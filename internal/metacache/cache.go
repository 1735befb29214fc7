package metacache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"marquee/internal/fileutil"
	"marquee/internal/logging"
)

// DefaultTTL is how long an entry stays fresh.
const DefaultTTL = 30 * 24 * time.Hour

// Entry is cached movie metadata keyed by normalized search title.
// An entry with only Key and CachedAt set records a failed or empty
// lookup so the miss is not retried until the entry expires.
type Entry struct {
	Key            string    `json:"key"`
	MatchedTitle   string    `json:"matched_title,omitempty"`
	Year           string    `json:"year,omitempty"`
	Synopsis       string    `json:"synopsis,omitempty"`
	PosterURL      string    `json:"poster_url,omitempty"`
	TrailerURL     string    `json:"trailer_url,omitempty"`
	Genres         []string  `json:"genres,omitempty"`
	VoteAverage    *float64  `json:"vote_average,omitempty"`
	RuntimeMinutes int       `json:"runtime_minutes,omitempty"`
	Directors      []string  `json:"directors,omitempty"`
	Writers        []string  `json:"writers,omitempty"`
	Cast           []string  `json:"cast,omitempty"`
	TMDBID         int64     `json:"tmdb_id,omitempty"`
	IMDBID         string    `json:"imdb_id,omitempty"`
	CachedAt       time.Time `json:"cached_at"`
}

// Empty reports whether the entry records a miss.
func (e Entry) Empty() bool {
	return e.TMDBID == 0 && e.MatchedTitle == "" && e.PosterURL == ""
}

// Expired reports whether the entry has outlived ttl at now.
func (e Entry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CachedAt) > ttl
}

// NeedsGenreBackfill flags entries written before genre support: they
// have a poster but no genres and should be refetched even though they
// are otherwise fresh.
func (e Entry) NeedsGenreBackfill() bool {
	return e.PosterURL != "" && len(e.Genres) == 0
}

// Cache provides thread-safe access to the metadata cache file.
type Cache struct {
	path    string
	ttl     time.Duration
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates a cache backed by path. If path is empty every operation
// is a no-op. Expired entries are dropped while loading; a corrupted
// file starts the cache empty rather than failing the run.
func New(path string, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger = logging.NewComponentLogger(logger, "metacache")

	c := &Cache{
		path:    path,
		ttl:     ttl,
		logger:  logger,
		entries: make(map[string]Entry),
	}

	if path == "" {
		return c
	}

	if err := c.load(); err != nil {
		logger.Warn("failed to load metadata cache",
			logging.Error(err),
			logging.String("path", path))
	}
	return c
}

// Lookup returns the entry for key. Expired entries and entries
// needing a genre backfill read as misses.
func (c *Cache) Lookup(key string) (Entry, bool) {
	key = strings.TrimSpace(key)
	if key == "" || c.path == "" {
		return Entry{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.entries[key]
	if !found || entry.Expired(time.Now(), c.ttl) || entry.NeedsGenreBackfill() {
		return Entry{}, false
	}
	return entry, true
}

// Store adds or replaces an entry and persists to disk. A zero
// CachedAt is stamped with the current time.
func (c *Cache) Store(entry Entry) error {
	entry.Key = strings.TrimSpace(entry.Key)
	if entry.Key == "" {
		return errors.New("cache key cannot be empty")
	}
	if c.path == "" {
		return nil
	}
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entry.Key] = entry
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("cached metadata",
		logging.String(logging.FieldCacheKey, entry.Key),
		logging.Int64("tmdb_id", entry.TMDBID),
		logging.Bool("empty", entry.Empty()))
	return nil
}

// StoreMiss records a failed lookup for key.
func (c *Cache) StoreMiss(key string) error {
	return c.Store(Entry{Key: key})
}

// Remove deletes an entry by key and persists the change.
func (c *Cache) Remove(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		return fmt.Errorf("cache key %q not found", key)
	}
	delete(c.entries, key)

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

// Prune drops expired entries and persists the result, returning how
// many were removed.
func (c *Cache) Prune() (int, error) {
	if c.path == "" {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range c.entries {
		if entry.Expired(now, c.ttl) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	if err := c.save(); err != nil {
		return removed, fmt.Errorf("persist cache: %w", err)
	}
	c.logger.Debug("pruned metadata cache", logging.Int("removed", removed))
	return removed, nil
}

// List returns all entries sorted by CachedAt descending.
func (c *Cache) List() []Entry {
	if c.path == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CachedAt.Equal(entries[j].CachedAt) {
			return entries[i].CachedAt.After(entries[j].CachedAt)
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// Clear removes all entries and persists the empty cache.
func (c *Cache) Clear() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

// Count returns the number of entries.
func (c *Cache) Count() int {
	if c.path == "" {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	now := time.Now()
	dropped := 0
	c.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Key) == "" {
			continue
		}
		if entry.Expired(now, c.ttl) {
			dropped++
			continue
		}
		c.entries[entry.Key] = entry
	}

	c.logger.Debug("loaded metadata cache",
		logging.Int("entry_count", len(c.entries)),
		logging.Int("expired_dropped", dropped))
	return nil
}

func (c *Cache) save() error {
	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	return fileutil.WriteFileAtomic(c.path, data, 0o644)
}
