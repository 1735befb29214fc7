package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// TagSubtitles marks a subtitled screening. The extractor may also set
// it from the page; the reconciler adds it when folding variant films.
const TagSubtitles = "Subtitles"

// Showtime is a single screening of a film.
type Showtime struct {
	Date       string   `json:"date"` // ISO YYYY-MM-DD
	Time       string   `json:"time"` // 24h clock as shown on the page
	Screen     int      `json:"screen"`
	BookingURL string   `json:"booking_url,omitempty"`
	Tags       []string `json:"tags"`
}

// Key identifies a screening slot. Two showtimes with the same key are
// the same physical screening regardless of tags or booking URL.
func (s Showtime) Key() string {
	return fmt.Sprintf("%s_%s_%d", s.Date, s.Time, s.Screen)
}

// HasTag reports whether the showtime carries the given tag.
func (s Showtime) HasTag(tag string) bool {
	return slices.Contains(s.Tags, tag)
}

// AddTag appends tag unless already present.
func (s *Showtime) AddTag(tag string) {
	if !s.HasTag(tag) {
		s.Tags = append(s.Tags, tag)
	}
}

// Film is one listed film with its screenings and optional metadata.
// The scraped fields always survive a failed or disabled enrichment.
type Film struct {
	Title          string `json:"title"`
	SearchTitle    string `json:"search_title,omitempty"`
	Slug           string `json:"slug,omitempty"`
	URL            string `json:"url,omitempty"`
	Certificate    string `json:"certificate,omitempty"`
	Synopsis       string `json:"synopsis,omitempty"`
	RuntimeMinutes int    `json:"runtime_minutes,omitempty"`

	MatchedTitle string   `json:"matched_title,omitempty"`
	Year         string   `json:"year,omitempty"`
	PosterURL    string   `json:"poster_url,omitempty"`
	TrailerURL   string   `json:"trailer_url,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	VoteAverage  *float64 `json:"vote_average,omitempty"`
	Directors    []string `json:"directors,omitempty"`
	Writers      []string `json:"writers,omitempty"`
	Cast         []string `json:"cast,omitempty"`
	TMDBID       int64    `json:"tmdb_id,omitempty"`
	IMDBID       string   `json:"imdb_id,omitempty"`

	Showtimes []Showtime `json:"showtimes"`
}

// Venue groups the films showing at one cinema.
type Venue struct {
	Name  string  `json:"name"`
	URL   string  `json:"url"`
	Films []*Film `json:"films"`
}

// Catalog is the published artifact shape.
type Catalog struct {
	UpdatedAt string            `json:"updated_at"`
	Venues    map[string]*Venue `json:"venues"`
}

// VenueIDs returns the venue keys in sorted order.
func (c *Catalog) VenueIDs() []string {
	ids := make([]string, 0, len(c.Venues))
	for id := range c.Venues {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FilmCount returns the total number of films across venues.
func (c *Catalog) FilmCount() int {
	n := 0
	for _, v := range c.Venues {
		n += len(v.Films)
	}
	return n
}

// ShowtimeCount returns the total number of showtimes across venues.
func (c *Catalog) ShowtimeCount() int {
	n := 0
	for _, v := range c.Venues {
		for _, f := range v.Films {
			n += len(f.Showtimes)
		}
	}
	return n
}

// SortShowtimes orders screenings for display: non-subtitled first,
// then by date and time. The sort is stable so equal slots keep their
// extraction order.
func SortShowtimes(showtimes []Showtime) {
	sort.SliceStable(showtimes, func(i, j int) bool {
		si, sj := showtimes[i], showtimes[j]
		subI, subJ := si.HasTag(TagSubtitles), sj.HasTag(TagSubtitles)
		if subI != subJ {
			return !subI
		}
		if si.Date != sj.Date {
			return si.Date < sj.Date
		}
		return si.Time < sj.Time
	})
}

func normTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
