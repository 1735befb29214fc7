package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"marquee/internal/catalog"
	"marquee/internal/fileutil"
	"marquee/internal/fingerprint"
	"marquee/internal/httpclient"
	"marquee/internal/logging"
)

// Options configures a Publisher.
type Options struct {
	DataPath        string
	FingerprintPath string
	HTMLPath        string
	RenderHTML      bool
	MirrorPosters   bool
	// PosterClient downloads poster images when MirrorPosters is set.
	PosterClient *httpclient.Client
	Logger       *slog.Logger
}

// Publisher writes the run's artifacts: the catalog JSON, the
// fingerprint sidecar and optionally a rendered HTML page. Every write
// is atomic so consumers never observe a partial artifact.
type Publisher struct {
	opts   Options
	logger *slog.Logger
}

// New builds a Publisher.
func New(opts Options) *Publisher {
	return &Publisher{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "publish"),
	}
}

// Publish writes all configured artifacts for the catalog.
func (p *Publisher) Publish(ctx context.Context, cat *catalog.Catalog, fp string) error {
	if p.opts.MirrorPosters {
		p.mirrorPosters(ctx, cat)
	}

	if err := p.writeCatalog(cat); err != nil {
		return err
	}
	if p.opts.RenderHTML && p.opts.HTMLPath != "" {
		if err := p.renderHTML(cat); err != nil {
			return err
		}
	}
	if err := fingerprint.Write(p.opts.FingerprintPath, fp); err != nil {
		return err
	}

	p.logger.Info("published artifacts",
		logging.String("data_path", p.opts.DataPath),
		logging.Int("film_count", cat.FilmCount()),
		logging.Int("showtime_count", cat.ShowtimeCount()))
	return nil
}

func (p *Publisher) writeCatalog(cat *catalog.Catalog) error {
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := fileutil.WriteFileAtomic(p.opts.DataPath, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// LoadPrevious reads a previously published catalog. A missing file
// returns nil without error; the first run has nothing to carry over.
func LoadPrevious(path string) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read previous catalog: %w", err)
	}

	var cat catalog.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse previous catalog: %w", err)
	}
	return &cat, nil
}

// mirrorPosters downloads poster images next to the HTML page and
// rewrites poster URLs to relative paths, so the page can be served
// without hotlinking the image CDN. Failures keep the remote URL.
func (p *Publisher) mirrorPosters(ctx context.Context, cat *catalog.Catalog) {
	if p.opts.PosterClient == nil || p.opts.HTMLPath == "" {
		return
	}
	posterDir := filepath.Join(filepath.Dir(p.opts.HTMLPath), "posters")

	for _, id := range cat.VenueIDs() {
		for _, film := range cat.Venues[id].Films {
			if !strings.HasPrefix(film.PosterURL, "http") {
				continue
			}
			name := posterFileName(film)
			if name == "" {
				continue
			}

			local := filepath.Join(posterDir, name)
			if _, err := os.Stat(local); err == nil {
				film.PosterURL = "posters/" + name
				continue
			}

			data, err := p.opts.PosterClient.Get(ctx, film.PosterURL)
			if err != nil {
				p.logger.Warn("poster download failed",
					logging.String(logging.FieldFilm, film.Title),
					logging.Error(err))
				continue
			}
			if err := fileutil.WriteFileAtomic(local, data, 0o644); err != nil {
				p.logger.Warn("poster write failed",
					logging.String(logging.FieldFilm, film.Title),
					logging.Error(err))
				continue
			}
			film.PosterURL = "posters/" + name
		}
	}
}

func posterFileName(film *catalog.Film) string {
	base := film.Slug
	if base == "" {
		base = strings.ToLower(strings.ReplaceAll(film.Title, " ", "-"))
	}
	if base == "" {
		return ""
	}
	ext := filepath.Ext(film.PosterURL)
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}
	return base + ext
}
