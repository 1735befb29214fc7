package enrich

import (
	"strings"

	"marquee/internal/tmdb"
)

// genreNames maps TMDB genre ids to display names for search results,
// which carry ids only.
var genreNames = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// resolveGenres prefers named genres from the detail response, falling
// back to the id map over the search result's genre ids.
func resolveGenres(details *tmdb.MovieDetails, chosen *tmdb.Result) []string {
	var genres []string
	for _, g := range details.Genres {
		if name := strings.TrimSpace(g.Name); name != "" {
			genres = append(genres, name)
		}
	}
	if len(genres) > 0 {
		return genres
	}
	for _, id := range chosen.GenreIDs {
		if name, ok := genreNames[id]; ok {
			genres = append(genres, name)
		}
	}
	return genres
}
