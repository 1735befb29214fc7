// Package enrich matches scraped films against The Movie Database and
// attaches posters, trailers, genres and credits.
//
// Matching is heuristic: an exact normalized title match wins
// outright, containment of the search title scores high, and bare
// franchise titles score low so recent sequels beat decade-old
// originals. Every lookup result, including failures, lands in the
// metadata cache so repeat runs stay off the API.
package enrich
