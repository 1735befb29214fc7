package catalog

import (
	"marquee/internal/titles"
)

// MergeSubtitleVariants folds films whose title carries a
// "(with subtitles)" marker into their base film. Variant showtimes
// gain the Subtitles tag; the base film's copy of a screening slot wins
// over the variant's regardless of which the page listed first. A
// variant without a base film in the slice keeps its own entry under
// the stripped title. Every film's showtimes come back ordered via
// SortShowtimes.
func MergeSubtitleVariants(films []*Film) []*Film {
	merged := make([]*Film, 0, len(films))
	index := make(map[string]int, len(films))
	variantOnly := make(map[string]bool, len(films))

	for _, film := range films {
		base, variant := titles.StripSubtitleMarker(film.Title)
		if variant {
			for i := range film.Showtimes {
				film.Showtimes[i].AddTag(TagSubtitles)
			}
			film.Title = base
		}

		// Grouping by search title also folds variants whose marker
		// sits mid-title, where the display titles never match.
		key := titles.NormalizeForMatch(film.SearchTitle)
		if key == "" {
			key = normTitle(base)
		}

		pos, ok := index[key]
		if !ok {
			index[key] = len(merged)
			variantOnly[key] = variant
			merged = append(merged, film)
			continue
		}
		if variantOnly[key] && !variant {
			// The base film was listed after its variant. It still
			// owns the merged entry: its slug, URL and synopsis stand,
			// and its untagged showtimes win collisions.
			absorbShowtimes(film, merged[pos].Showtimes)
			merged[pos] = film
			variantOnly[key] = false
			continue
		}
		absorbShowtimes(merged[pos], film.Showtimes)
	}

	for _, film := range merged {
		SortShowtimes(film.Showtimes)
	}
	return merged
}

// absorbShowtimes appends the incoming showtimes that do not collide
// with an existing screening slot.
func absorbShowtimes(dst *Film, incoming []Showtime) {
	seen := make(map[string]struct{}, len(dst.Showtimes))
	for _, st := range dst.Showtimes {
		seen[st.Key()] = struct{}{}
	}
	for _, st := range incoming {
		if _, dup := seen[st.Key()]; dup {
			continue
		}
		seen[st.Key()] = struct{}{}
		dst.Showtimes = append(dst.Showtimes, st)
	}
}

// CarryOverEnrichment copies metadata fields from a previously
// published catalog onto matching films. Used when enrichment is
// disabled so the artifact does not lose posters and synopses between
// runs. Films match by slug first, then by title.
func CarryOverEnrichment(current, previous *Catalog) int {
	if current == nil || previous == nil {
		return 0
	}

	carried := 0
	for id, venue := range current.Venues {
		prevVenue, ok := previous.Venues[id]
		if !ok {
			continue
		}

		bySlug := make(map[string]*Film, len(prevVenue.Films))
		byTitle := make(map[string]*Film, len(prevVenue.Films))
		for _, f := range prevVenue.Films {
			if f.Slug != "" {
				bySlug[f.Slug] = f
			}
			byTitle[normTitle(f.Title)] = f
		}

		for _, film := range venue.Films {
			prev := bySlug[film.Slug]
			if prev == nil {
				prev = byTitle[normTitle(film.Title)]
			}
			if prev == nil {
				continue
			}
			if copyEnrichment(film, prev) {
				carried++
			}
		}
	}
	return carried
}

func copyEnrichment(dst, src *Film) bool {
	if src.MatchedTitle == "" && src.PosterURL == "" && src.TMDBID == 0 {
		return false
	}

	dst.MatchedTitle = src.MatchedTitle
	dst.Year = src.Year
	dst.PosterURL = src.PosterURL
	dst.TrailerURL = src.TrailerURL
	dst.Genres = src.Genres
	dst.VoteAverage = src.VoteAverage
	dst.Directors = src.Directors
	dst.Writers = src.Writers
	dst.TMDBID = src.TMDBID
	dst.IMDBID = src.IMDBID
	if dst.Synopsis == "" {
		dst.Synopsis = src.Synopsis
	}
	if len(dst.Cast) == 0 {
		dst.Cast = src.Cast
	}
	if dst.RuntimeMinutes == 0 {
		dst.RuntimeMinutes = src.RuntimeMinutes
	}
	return true
}
