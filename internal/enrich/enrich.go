package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"marquee/internal/catalog"
	"marquee/internal/logging"
	"marquee/internal/metacache"
	"marquee/internal/titles"
	"marquee/internal/tmdb"
)

const (
	maxDirectors = 3
	maxWriters   = 5
	maxCast      = 12
)

// writerJobs are the crew jobs counted as writing credits.
var writerJobs = map[string]bool{
	"Screenplay": true,
	"Writer":     true,
	"Story":      true,
	"Characters": true,
	"Novel":      true,
}

// Options configures an Enricher.
type Options struct {
	Searcher          tmdb.Searcher
	Cache             *metacache.Cache
	Workers           int
	RequestsPerSecond float64
	ImageBaseURL      string
	Logger            *slog.Logger
}

// Enricher attaches movie metadata to films, consulting the cache
// before the API. All API traffic shares one rate limiter regardless
// of worker count.
type Enricher struct {
	searcher     tmdb.Searcher
	cache        *metacache.Cache
	limiter      *rate.Limiter
	imageBaseURL string
	workers      int
	logger       *slog.Logger
}

// New builds an Enricher. The searcher and cache are required.
func New(opts Options) *Enricher {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	imageBase := strings.TrimRight(opts.ImageBaseURL, "/")
	if imageBase == "" {
		imageBase = "https://image.tmdb.org/t/p/w342"
	}
	return &Enricher{
		searcher:     opts.Searcher,
		cache:        opts.Cache,
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		imageBaseURL: imageBase,
		workers:      workers,
		logger:       logging.NewComponentLogger(opts.Logger, "enrich"),
	}
}

// EnrichCatalog enriches every film in the catalog using a worker
// pool. Per-film failures degrade to unenriched films; only context
// cancellation aborts the pass.
func (e *Enricher) EnrichCatalog(ctx context.Context, cat *catalog.Catalog) error {
	var films []*catalog.Film
	for _, id := range cat.VenueIDs() {
		films = append(films, cat.Venues[id].Films...)
	}
	if len(films) == 0 {
		return nil
	}

	jobs := make(chan *catalog.Film)
	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for film := range jobs {
				e.EnrichFilm(ctx, film)
			}
		}()
	}

	var sendErr error
	for _, film := range films {
		if sendErr = ctx.Err(); sendErr != nil {
			break
		}
		select {
		case <-ctx.Done():
			sendErr = ctx.Err()
		case jobs <- film:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	if sendErr != nil {
		return fmt.Errorf("enrich catalog: %w", sendErr)
	}
	return nil
}

// EnrichFilm enriches a single film in place. Lookup failures are
// cached as misses and never fail the film.
func (e *Enricher) EnrichFilm(ctx context.Context, film *catalog.Film) {
	searchTitle := film.SearchTitle
	if searchTitle == "" {
		searchTitle = titles.SearchTitle(film.Title)
	}
	if searchTitle == "" {
		return
	}
	key := titles.CacheKey(searchTitle, film.Slug)

	if entry, found := e.cache.Lookup(key); found {
		applyEntry(film, entry)
		return
	}

	entry, ok := e.fetch(ctx, key, searchTitle)
	if !ok {
		return
	}
	if err := e.cache.Store(entry); err != nil {
		e.logger.Warn("failed to persist cache entry",
			logging.String(logging.FieldCacheKey, key),
			logging.Error(err))
	}
	if !entry.Empty() {
		applyEntry(film, entry)
	}
}

// fetch performs the search and detail calls for one film. It returns
// ok=false only when the context is done; API failures come back as an
// empty entry so the miss is cached.
func (e *Enricher) fetch(ctx context.Context, key, searchTitle string) (metacache.Entry, bool) {
	miss := metacache.Entry{Key: key}

	if err := e.limiter.Wait(ctx); err != nil {
		return miss, false
	}
	resp, err := e.searcher.SearchMovie(ctx, searchTitle)
	if err != nil {
		if ctx.Err() != nil {
			return miss, false
		}
		e.logger.Warn("movie search failed",
			logging.String(logging.FieldFilm, searchTitle),
			logging.Error(err))
		return miss, true
	}
	if len(resp.Results) == 0 {
		e.logger.Debug("no search results", logging.String(logging.FieldFilm, searchTitle))
		return miss, true
	}

	chosen := pickBestResult(resp.Results, searchTitle)
	if chosen.PosterPath == "" {
		chosen = posterFallback(resp.Results, chosen)
	}
	if chosen.ID == 0 {
		return miss, true
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return miss, false
	}
	details, err := e.searcher.MovieDetails(ctx, chosen.ID)
	if err != nil {
		if ctx.Err() != nil {
			return miss, false
		}
		e.logger.Warn("movie details failed",
			logging.String(logging.FieldFilm, searchTitle),
			logging.Int64("tmdb_id", chosen.ID),
			logging.Error(err))
		return miss, true
	}

	entry := e.buildEntry(key, details, chosen)
	e.logger.Debug("matched film",
		logging.String(logging.FieldFilm, searchTitle),
		logging.String("matched_title", entry.MatchedTitle),
		logging.Int64("tmdb_id", entry.TMDBID))
	return entry, true
}

// posterFallback scans for a result with the same normalized title
// that has a poster; new movies sometimes get indexed before artwork.
func posterFallback(results []tmdb.Result, chosen *tmdb.Result) *tmdb.Result {
	want := titles.NormalizeForMatch(chosen.Title)
	for i := range results {
		r := &results[i]
		if r.PosterPath != "" && titles.NormalizeForMatch(r.Title) == want {
			return r
		}
	}
	return chosen
}

func (e *Enricher) buildEntry(key string, details *tmdb.MovieDetails, chosen *tmdb.Result) metacache.Entry {
	entry := metacache.Entry{
		Key:            key,
		MatchedTitle:   details.Title,
		Year:           details.Year(),
		Synopsis:       strings.TrimSpace(details.Overview),
		VoteAverage:    details.VoteAverage,
		RuntimeMinutes: details.Runtime,
		Genres:         resolveGenres(details, chosen),
		TMDBID:         details.ID,
		IMDBID:         details.IMDBID,
	}
	if entry.MatchedTitle == "" {
		entry.MatchedTitle = chosen.Title
	}
	if entry.Year == "" {
		entry.Year = chosen.Year()
	}

	if path := strings.TrimPrefix(details.PosterPath, "/"); path != "" {
		entry.PosterURL = e.imageBaseURL + "/" + path
	}

	for _, v := range details.Videos.Results {
		kind := strings.ToLower(v.Type)
		if v.Site == "YouTube" && (kind == "trailer" || kind == "teaser") && v.Key != "" {
			entry.TrailerURL = "https://www.youtube.com/watch?v=" + v.Key
			break
		}
	}

	for _, crew := range details.Credits.Crew {
		name := strings.TrimSpace(crew.Name)
		if name == "" {
			continue
		}
		if crew.Job == "Director" && len(entry.Directors) < maxDirectors && !slices.Contains(entry.Directors, name) {
			entry.Directors = append(entry.Directors, name)
		}
		if writerJobs[crew.Job] && len(entry.Writers) < maxWriters && !slices.Contains(entry.Writers, name) {
			entry.Writers = append(entry.Writers, name)
		}
	}
	for _, member := range details.Credits.Cast {
		if len(entry.Cast) >= maxCast {
			break
		}
		name := strings.TrimSpace(member.Name)
		if name == "" {
			continue
		}
		if character := strings.TrimSpace(member.Character); character != "" {
			name = fmt.Sprintf("%s (%s)", name, character)
		}
		entry.Cast = append(entry.Cast, name)
	}

	return entry
}

// applyEntry copies cached metadata onto the film. Scraped synopsis
// and runtime win over cached values; the cached cast wins because it
// carries character names the listing page lacks.
func applyEntry(film *catalog.Film, entry metacache.Entry) {
	if entry.Empty() {
		return
	}

	film.MatchedTitle = entry.MatchedTitle
	film.Year = entry.Year
	film.PosterURL = entry.PosterURL
	film.TrailerURL = entry.TrailerURL
	film.Genres = entry.Genres
	film.VoteAverage = entry.VoteAverage
	film.Directors = entry.Directors
	film.Writers = entry.Writers
	film.TMDBID = entry.TMDBID
	film.IMDBID = entry.IMDBID
	if len(entry.Cast) > 0 {
		film.Cast = entry.Cast
	}
	if film.Synopsis == "" {
		film.Synopsis = entry.Synopsis
	}
	if film.RuntimeMinutes == 0 {
		film.RuntimeMinutes = entry.RuntimeMinutes
	}
}
