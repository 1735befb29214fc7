package enrich

import (
	"strconv"
	"strings"

	"marquee/internal/titles"
	"marquee/internal/tmdb"
)

// Match scores. Containment of the full search title beats everything
// except an exact match; a bare franchise title ("Avatar" for
// "Avatar: Fire and Ash") scores low so recent sequels win.
const (
	scoreResultContainsSearch = 90
	scoreRecentRelease        = 50
	scoreSearchContainsResult = 30
	scoreWeak                 = 10

	recentReleaseYear = 2020
)

// pickBestResult selects the search result matching searchTitle. An
// exact normalized title match short-circuits; otherwise the highest
// scoring result wins, earliest seen on ties, falling back to the
// first raw result.
func pickBestResult(results []tmdb.Result, searchTitle string) *tmdb.Result {
	if len(results) == 0 {
		return nil
	}
	normSearch := titles.NormalizeForMatch(searchTitle)
	if normSearch == "" {
		return &results[0]
	}

	var best *tmdb.Result
	bestScore := -1
	for i := range results {
		result := &results[i]
		normTitle := titles.NormalizeForMatch(result.Title)
		if normTitle == normSearch {
			return result
		}
		score := scoreResult(normTitle, normSearch, result.Year())
		if score > bestScore {
			bestScore = score
			best = result
		}
	}
	if best == nil {
		return &results[0]
	}
	return best
}

func scoreResult(normTitle, normSearch, year string) int {
	if normTitle != "" && strings.Contains(normTitle, normSearch) {
		return scoreResultContainsSearch
	}
	if normTitle != "" && strings.Contains(normSearch, normTitle) {
		return scoreSearchContainsResult
	}
	if y, err := strconv.Atoi(year); err == nil && y >= recentReleaseYear {
		return scoreRecentRelease
	}
	return scoreWeak
}
