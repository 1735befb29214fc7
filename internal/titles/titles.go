package titles

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	formatSuffixRe   = regexp.MustCompile(`(?i)\s*-\s*HFR\s*3D\s*$`)
	ratingSuffixRe   = regexp.MustCompile(`(?i)\s*\((\d+A?|U|PG|R18)\)\s*$`)
	subtitleMarkerRe = regexp.MustCompile(`(?i)\s*\(with subtitles\)\s*$`)
	matchSeparatorRe = regexp.MustCompile(`[\s\-:]+`)
	cacheKeyRe       = regexp.MustCompile(`[^a-z0-9]+`)
)

// FoldDashes replaces en and em dashes with a plain hyphen so suffix
// markers match regardless of which dash the page used.
func FoldDashes(s string) string {
	s = strings.ReplaceAll(s, "–", "-")
	s = strings.ReplaceAll(s, "—", "-")
	return s
}

// StripFormatSuffix removes a trailing "- HFR 3D" presentation marker.
func StripFormatSuffix(title string) string {
	return strings.Trim(formatSuffixRe.ReplaceAllString(title, ""), " -")
}

// ExtractRating splits a trailing certificate marker such as "(15)" or
// "(PG)" from a display title. The returned rating is uppercased and
// empty when no marker is present.
func ExtractRating(title string) (clean, rating string) {
	m := ratingSuffixRe.FindStringSubmatch(title)
	if m == nil {
		return strings.TrimSpace(title), ""
	}
	clean = strings.TrimSpace(ratingSuffixRe.ReplaceAllString(title, ""))
	return clean, strings.ToUpper(m[1])
}

// StripSubtitleMarker removes a trailing "(with subtitles)" marker and
// reports whether one was present.
func StripSubtitleMarker(title string) (clean string, had bool) {
	if !subtitleMarkerRe.MatchString(title) {
		return strings.TrimSpace(title), false
	}
	return strings.TrimSpace(subtitleMarkerRe.ReplaceAllString(title, "")), true
}

// SearchTitle derives the title used for metadata lookups from a
// display title. Presentation suffix, subtitle marker and certificate
// are stripped repeatedly until stable, since the page stacks them in
// varying orders ("Title - HFR 3D (12A)", "Title (PG) (with
// subtitles)"). An empty result means the film cannot be matched
// against the metadata service.
func SearchTitle(display string) string {
	s := FoldDashes(display)
	for {
		prev := s
		s = StripFormatSuffix(s)
		s, _ = StripSubtitleMarker(s)
		s, _ = ExtractRating(s)
		if s == prev {
			return strings.Trim(s, " -")
		}
	}
}

// NormalizeForMatch canonicalizes a title for comparison: lowercase
// with runs of whitespace, hyphens and colons collapsed to single
// spaces.
func NormalizeForMatch(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimSpace(matchSeparatorRe.ReplaceAllString(s, " "))
}

// CacheKey builds the metadata cache key for a film. The search title
// is slugified; a film without one falls back to its URL slug, and the
// literal "unknown" is the last resort so the entry still has a stable
// home.
func CacheKey(searchTitle, slug string) string {
	key := strings.ToLower(strings.TrimSpace(searchTitle))
	key = strings.Trim(cacheKeyRe.ReplaceAllString(key, "-"), "-")
	if key != "" {
		return key
	}
	if slug = strings.TrimSpace(slug); slug != "" {
		return slug
	}
	return "unknown"
}

// SlugFromURL returns the last non-empty path segment of a film URL.
func SlugFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}

var titleCaser = cases.Title(language.Und)

// FromSlug derives a human readable title from a URL slug. Used when a
// listing entry carries no heading text at all.
func FromSlug(slug string) string {
	cleaned := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return ""
	}
	return titleCaser.String(cleaned)
}
