package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/runlog"
)

const listingPage = `<!DOCTYPE html>
<html><body>
<ul class="listing--items">
  <li class="js-film">
    <h2>Send Help (15)</h2>
    <a href="/film/send-help/?venue=st-austell">More info</a>
    <p>Running time: 110 minutes</p>
    <p>Stranded on a desert island after a plane crash, an executive assistant
    finds herself trapped with her overbearing boss and must decide how far
    she will go to survive the ordeal.</p>
    <ul class="dates">
      <li class="js-performance-date">
        <h4>28 August 2026</h4>
        <ul>
          <li class="js-performance">18:00 Screen: 2
            <a href="/book/?performance=123&#038;venue=st-austell">Book</a>
          </li>
        </ul>
      </li>
    </ul>
  </li>
  <li class="js-film">
    <h2>Send Help (with subtitles) (15)</h2>
    <a href="/film/send-help-with-subtitles/?venue=st-austell">More info</a>
    <ul class="dates">
      <li class="js-performance-date">
        <h4>29 August 2026</h4>
        <ul><li class="js-performance">20:30 Screen: 1</li></ul>
      </li>
    </ul>
  </li>
</ul>
</body></html>`

const extraShowtime = `<li class="js-performance">15:00 Screen: 3</li>`

func newListingServer(t *testing.T) (*httptest.Server, *string) {
	t.Helper()
	page := listingPage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)
	return srv, &page
}

func newTMDBServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/search/movie"):
			fmt.Fprint(w, `{"results":[{
				"id": 1100998, "title": "Send Help",
				"release_date": "2026-01-23",
				"poster_path": "/sendhelp.jpg",
				"vote_average": 7.1, "genre_ids": [27, 35]
			}]}`)
		case strings.HasPrefix(r.URL.Path, "/movie/"):
			fmt.Fprint(w, `{
				"id": 1100998, "title": "Send Help",
				"release_date": "2026-01-23", "runtime": 112,
				"imdb_id": "tt30988739",
				"genres": [{"id":27,"name":"Horror"},{"id":35,"name":"Comedy"}],
				"videos": {"results": [{"site":"YouTube","type":"Trailer","key":"abc123"}]},
				"credits": {
					"crew": [{"name":"Sam Raimi","job":"Director"}],
					"cast": [{"name":"Rachel McAdams","character":"Linda"}]
				}
			}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, listingURL, tmdbURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = dir
	cfg.Source.BaseURL = listingURL
	cfg.Source.WhatsOnURL = listingURL + "/whats-on/?venue=st-austell"
	cfg.Source.RequestTimeout = 5
	cfg.TMDB.APIKey = "test-key"
	cfg.TMDB.BaseURL = tmdbURL
	cfg.Cache.Path = filepath.Join(dir, "metadata_cache.json")
	cfg.Output.Dir = filepath.Join(dir, "site")
	return &cfg
}

func newRunner(cfg *config.Config) *Runner {
	r := New(cfg, logging.NewNop())
	r.now = func() time.Time {
		return time.Date(2026, time.August, 27, 6, 0, 0, 0, time.UTC)
	}
	return r
}

func readArtifact(t *testing.T, cfg *config.Config) *catalog.Catalog {
	t.Helper()
	data, err := os.ReadFile(cfg.DataFilePath())
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	var cat catalog.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		t.Fatalf("parse artifact: %v", err)
	}
	return &cat
}

func TestRunPublishesAndRecords(t *testing.T) {
	listingSrv, _ := newListingServer(t)
	tmdbSrv := newTMDBServer(t)
	cfg := testConfig(t, listingSrv.URL, tmdbSrv.URL)

	result, err := newRunner(cfg).Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != runlog.StatusPublished || !result.Changed {
		t.Errorf("result = %+v", result)
	}
	if result.FilmCount != 1 || result.ShowtimeCount != 2 {
		t.Errorf("counts = %d films %d showtimes", result.FilmCount, result.ShowtimeCount)
	}

	cat := readArtifact(t, cfg)
	venue := cat.Venues["st-austell"]
	if venue == nil || len(venue.Films) != 1 {
		t.Fatalf("venues = %+v", cat.Venues)
	}
	film := venue.Films[0]
	if film.Title != "Send Help" || film.Certificate != "15" {
		t.Errorf("film = %q (%q)", film.Title, film.Certificate)
	}
	if film.TMDBID != 1100998 || film.PosterURL == "" {
		t.Errorf("enrichment missing: tmdb_id=%d poster=%q", film.TMDBID, film.PosterURL)
	}
	if film.RuntimeMinutes != 110 {
		t.Errorf("scraped runtime should win, got %d", film.RuntimeMinutes)
	}
	// The subtitled screening folds into the base film.
	if len(film.Showtimes) != 2 || !film.Showtimes[1].HasTag(catalog.TagSubtitles) {
		t.Errorf("showtimes = %+v", film.Showtimes)
	}

	if _, err := os.Stat(cfg.HTMLPath()); err != nil {
		t.Errorf("page not rendered: %v", err)
	}

	store, err := runlog.Open(cfg.RunLogPath())
	if err != nil {
		t.Fatalf("open run log: %v", err)
	}
	defer store.Close()
	latest, err := store.Latest(context.Background())
	if err != nil || latest == nil {
		t.Fatalf("latest run: %v %v", latest, err)
	}
	if latest.ID != result.RunID || latest.Status != runlog.StatusPublished {
		t.Errorf("recorded run = %+v", latest)
	}
	if latest.Fingerprint != result.Fingerprint || !latest.Changed {
		t.Errorf("recorded fingerprint = %+v", latest)
	}
}

func TestRunUnchangedSkipsPublish(t *testing.T) {
	listingSrv, _ := newListingServer(t)
	tmdbSrv := newTMDBServer(t)
	cfg := testConfig(t, listingSrv.URL, tmdbSrv.URL)
	runner := newRunner(cfg)

	first, err := runner.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	artifactBefore, err := os.ReadFile(cfg.DataFilePath())
	if err != nil {
		t.Fatal(err)
	}

	second, err := runner.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Status != runlog.StatusUnchanged || second.Changed {
		t.Errorf("second result = %+v", second)
	}
	if second.Fingerprint != first.Fingerprint {
		t.Errorf("fingerprint drifted across identical runs: %q vs %q",
			first.Fingerprint, second.Fingerprint)
	}

	artifactAfter, err := os.ReadFile(cfg.DataFilePath())
	if err != nil {
		t.Fatal(err)
	}
	if string(artifactBefore) != string(artifactAfter) {
		t.Error("artifact rewritten despite unchanged listing")
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	listingSrv, _ := newListingServer(t)
	tmdbSrv := newTMDBServer(t)
	cfg := testConfig(t, listingSrv.URL, tmdbSrv.URL)

	result, err := newRunner(cfg).Run(context.Background(), true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != runlog.StatusDryRun {
		t.Errorf("status = %q", result.Status)
	}
	if _, err := os.Stat(cfg.DataFilePath()); !os.IsNotExist(err) {
		t.Error("dry run wrote the artifact")
	}

	store, err := runlog.Open(cfg.RunLogPath())
	if err != nil {
		t.Fatalf("open run log: %v", err)
	}
	defer store.Close()
	latest, _ := store.Latest(context.Background())
	if latest == nil || latest.Status != runlog.StatusDryRun {
		t.Errorf("recorded run = %+v", latest)
	}
}

func TestRunCarriesOverWithoutAPIKey(t *testing.T) {
	listingSrv, page := newListingServer(t)
	tmdbSrv := newTMDBServer(t)
	cfg := testConfig(t, listingSrv.URL, tmdbSrv.URL)
	runner := newRunner(cfg)

	if _, err := runner.Run(context.Background(), false); err != nil {
		t.Fatalf("seeding run: %v", err)
	}

	// Key revoked and the listing gains a showtime; metadata must
	// survive from the previous artifact.
	cfg.TMDB.APIKey = ""
	*page = strings.Replace(listingPage,
		`<li class="js-performance">20:30 Screen: 1</li>`,
		`<li class="js-performance">20:30 Screen: 1</li>`+extraShowtime, 1)

	result, err := runner.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("carry-over run: %v", err)
	}
	if result.Status != runlog.StatusPublished {
		t.Fatalf("result = %+v", result)
	}

	film := readArtifact(t, cfg).Venues["st-austell"].Films[0]
	if film.TMDBID != 1100998 || film.PosterURL == "" || film.TrailerURL == "" {
		t.Errorf("metadata lost without api key: %+v", film)
	}
	if len(film.Showtimes) != 3 {
		t.Errorf("showtimes = %+v", film.Showtimes)
	}
}

func TestRunRecordsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()
	cfg := testConfig(t, srv.URL, srv.URL)

	_, err := newRunner(cfg).Run(context.Background(), false)
	if err == nil {
		t.Fatal("expected fetch failure")
	}

	store, openErr := runlog.Open(cfg.RunLogPath())
	if openErr != nil {
		t.Fatalf("open run log: %v", openErr)
	}
	defer store.Close()
	latest, _ := store.Latest(context.Background())
	if latest == nil || latest.Status != runlog.StatusFailed {
		t.Fatalf("recorded run = %+v", latest)
	}
	if latest.ErrorMessage == "" {
		t.Error("failed run recorded without error message")
	}
}

func TestRunRefusesSecondInstance(t *testing.T) {
	listingSrv, _ := newListingServer(t)
	tmdbSrv := newTMDBServer(t)
	cfg := testConfig(t, listingSrv.URL, tmdbSrv.URL)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	held := flock.New(cfg.LockPath())
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("seed lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	_, err = newRunner(cfg).Run(context.Background(), false)
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("err = %v, want ErrAlreadyRunning", err)
	}
}
