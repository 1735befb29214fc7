// Package tmdb is a minimal client for The Movie Database API covering
// the two calls the enricher needs: movie search and movie details
// with videos and credits appended. Rate limiting and caching live in
// the enrichment layer, not here.
package tmdb
