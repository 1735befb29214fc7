package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/enrich"
	"marquee/internal/fingerprint"
	"marquee/internal/httpclient"
	"marquee/internal/listing"
	"marquee/internal/logging"
	"marquee/internal/metacache"
	"marquee/internal/publish"
	"marquee/internal/runlog"
	"marquee/internal/tmdb"
)

// ErrAlreadyRunning indicates another pipeline run holds the lock.
var ErrAlreadyRunning = errors.New("another run is already in progress")

// runRetention bounds the run log; a scheduled pipeline accumulates
// dozens of rows a day.
const runRetention = 90 * 24 * time.Hour

// Result summarizes a completed run.
type Result struct {
	RunID         string
	Status        string
	FilmCount     int
	ShowtimeCount int
	Fingerprint   string
	Changed       bool
	Duration      time.Duration
}

// Runner executes the scrape, enrich and publish pipeline. A file lock
// keeps concurrent invocations (cron overlap, a manual run alongside
// the schedule) from racing on the artifacts.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	lock   *flock.Flock

	// now is swappable for date-sensitive listing tests.
	now func() time.Time
}

// New builds a Runner for the configuration.
func New(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		lock:   flock.New(cfg.LockPath()),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one full pipeline pass and records it in the run log.
// With dryRun set, everything up to publishing happens but no artifact
// is written.
func (r *Runner) Run(ctx context.Context, dryRun bool) (*Result, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	ok, err := r.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	defer func() { _ = r.lock.Unlock() }()

	store, err := runlog.Open(r.cfg.RunLogPath())
	if err != nil {
		return nil, err
	}
	defer store.Close()

	started := r.now()
	runID := uuid.NewString()
	r.logger.Info("run started",
		logging.String(logging.FieldRunID, runID),
		logging.String(logging.FieldURL, r.cfg.ListingURL()),
		logging.Bool("dry_run", dryRun))

	result, runErr := r.execute(ctx, dryRun)
	finished := r.now()

	record := runlog.Run{
		ID:         runID,
		StartedAt:  started,
		FinishedAt: finished,
		Status:     runlog.StatusFailed,
	}
	if runErr == nil {
		record.Status = result.Status
		record.FilmCount = result.FilmCount
		record.ShowtimeCount = result.ShowtimeCount
		record.Fingerprint = result.Fingerprint
		record.Changed = result.Changed
	} else {
		record.ErrorMessage = runErr.Error()
	}
	if _, err := store.Record(ctx, record); err != nil {
		r.logger.Warn("recording run failed", logging.Error(err))
	}
	if _, err := store.Prune(ctx, finished.Add(-runRetention)); err != nil {
		r.logger.Warn("pruning run history failed", logging.Error(err))
	}

	if runErr != nil {
		return nil, runErr
	}
	result.RunID = runID
	result.Duration = finished.Sub(started)
	r.logger.Info("run finished",
		logging.String(logging.FieldRunID, runID),
		logging.String("status", result.Status),
		logging.Int("film_count", result.FilmCount),
		logging.Int("showtime_count", result.ShowtimeCount),
		logging.Duration("duration", result.Duration))
	return result, nil
}

func (r *Runner) execute(ctx context.Context, dryRun bool) (*Result, error) {
	cat, err := r.buildCatalog(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.enrichCatalog(ctx, cat); err != nil {
		return nil, err
	}

	fp := fingerprint.Compute(cat)
	previous, err := fingerprint.Read(r.cfg.FingerprintPath())
	if err != nil {
		return nil, err
	}

	result := &Result{
		FilmCount:     cat.FilmCount(),
		ShowtimeCount: cat.ShowtimeCount(),
		Fingerprint:   fp,
		Changed:       fp != previous,
	}

	switch {
	case dryRun:
		result.Status = runlog.StatusDryRun
	case !result.Changed:
		result.Status = runlog.StatusUnchanged
		r.logger.Info("listing unchanged, skipping publish",
			logging.String("fingerprint", fp))
	default:
		if err := r.publish(ctx, cat, fp); err != nil {
			return nil, err
		}
		result.Status = runlog.StatusPublished
	}
	return result, nil
}

// buildCatalog fetches the listing page and reconciles it into a
// catalog keyed by venue.
func (r *Runner) buildCatalog(ctx context.Context) (*catalog.Catalog, error) {
	client := httpclient.New(
		time.Duration(r.cfg.Source.RequestTimeout)*time.Second,
		httpclient.WithUserAgent(r.cfg.Source.UserAgent),
		httpclient.WithLogger(r.logger),
	)

	html, err := client.Get(ctx, r.cfg.ListingURL())
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}

	films, err := listing.Parse(html, listing.Options{
		BaseURL:   r.cfg.Source.BaseURL,
		VenueID:   r.cfg.Source.VenueID,
		Reference: r.now(),
		Logger:    r.logger,
	})
	if err != nil {
		return nil, err
	}
	films = catalog.MergeSubtitleVariants(films)

	return &catalog.Catalog{
		UpdatedAt: r.now().Format(time.RFC3339),
		Venues: map[string]*catalog.Venue{
			r.cfg.Source.VenueID: {
				Name:  r.cfg.Source.VenueName,
				URL:   r.cfg.ListingURL(),
				Films: films,
			},
		},
	}, nil
}

// enrichCatalog attaches movie metadata. Without an API key the
// previous artifact's metadata is carried over so a key outage never
// strips posters from the published page.
func (r *Runner) enrichCatalog(ctx context.Context, cat *catalog.Catalog) error {
	if !r.cfg.TMDBEnabled() {
		previous, err := publish.LoadPrevious(r.cfg.DataFilePath())
		if err != nil {
			r.logger.Warn("previous artifact unreadable, skipping carry-over", logging.Error(err))
			return nil
		}
		carried := catalog.CarryOverEnrichment(cat, previous)
		r.logger.Info("enrichment disabled, carried over previous metadata",
			logging.Int("carried", carried))
		return nil
	}

	opts := []tmdb.Option{tmdb.WithLanguage(r.cfg.TMDB.Language)}
	if r.cfg.TMDB.BaseURL != "" {
		opts = append(opts, tmdb.WithBaseURL(r.cfg.TMDB.BaseURL))
	}
	client, err := tmdb.New(r.cfg.TMDB.APIKey, opts...)
	if err != nil {
		return err
	}

	ttl := metacache.DefaultTTL
	if r.cfg.Cache.RetentionDays > 0 {
		ttl = time.Duration(r.cfg.Cache.RetentionDays) * 24 * time.Hour
	}
	cache := metacache.New(r.cfg.Cache.Path, ttl, r.logger)

	enricher := enrich.New(enrich.Options{
		Searcher:          client,
		Cache:             cache,
		Workers:           r.cfg.Enrichment.Workers,
		RequestsPerSecond: r.cfg.Enrichment.RequestsPerSecond,
		ImageBaseURL:      r.cfg.TMDB.ImageBaseURL,
		Logger:            r.logger,
	})
	return enricher.EnrichCatalog(ctx, cat)
}

func (r *Runner) publish(ctx context.Context, cat *catalog.Catalog, fp string) error {
	opts := publish.Options{
		DataPath:        r.cfg.DataFilePath(),
		FingerprintPath: r.cfg.FingerprintPath(),
		HTMLPath:        r.cfg.HTMLPath(),
		RenderHTML:      r.cfg.Output.RenderHTML,
		MirrorPosters:   r.cfg.Output.MirrorPosters,
		Logger:          r.logger,
	}
	if opts.MirrorPosters {
		opts.PosterClient = httpclient.New(
			time.Duration(r.cfg.Source.RequestTimeout)*time.Second,
			httpclient.WithLogger(r.logger),
		)
	}
	return publish.New(opts).Publish(ctx, cat, fp)
}
