package fingerprint

import (
	"path/filepath"
	"testing"

	"marquee/internal/catalog"
)

func sampleCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		UpdatedAt: "2026-08-27T12:00:00Z",
		Venues: map[string]*catalog.Venue{
			"st-austell": {
				Name: "St Austell",
				Films: []*catalog.Film{
					{
						Title: "Send Help",
						Showtimes: []catalog.Showtime{
							{Date: "2026-08-28", Time: "18:00", Screen: 2, Tags: []string{"2D"}},
							{Date: "2026-08-28", Time: "20:30", Screen: 1, Tags: []string{"2D"}},
						},
					},
					{
						Title: "Avatar: Fire and Ash",
						Showtimes: []catalog.Showtime{
							{Date: "2026-08-29", Time: "19:00", Screen: 1, Tags: []string{"3D"}},
						},
					},
				},
			},
		},
	}
}

func TestComputeDeterministic(t *testing.T) {
	a := Compute(sampleCatalog())
	b := Compute(sampleCatalog())
	if a != b {
		t.Errorf("fingerprints differ: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d", len(a))
	}
}

func TestComputeIgnoresEnrichmentAndTimestamp(t *testing.T) {
	base := Compute(sampleCatalog())

	enriched := sampleCatalog()
	enriched.UpdatedAt = "2026-08-28T09:00:00Z"
	film := enriched.Venues["st-austell"].Films[0]
	film.PosterURL = "https://image.example/poster.jpg"
	film.Genres = []string{"Horror"}
	film.TMDBID = 1100998
	film.Showtimes[0].Tags = append(film.Showtimes[0].Tags, "Audio Description")
	film.Showtimes[0].BookingURL = "https://example.org/book/?performance=1"

	if got := Compute(enriched); got != base {
		t.Error("enrichment-only changes altered the fingerprint")
	}
}

func TestComputeReactsToScheduleChanges(t *testing.T) {
	base := Compute(sampleCatalog())

	extra := sampleCatalog()
	extra.Venues["st-austell"].Films[1].Showtimes = append(
		extra.Venues["st-austell"].Films[1].Showtimes,
		catalog.Showtime{Date: "2026-08-30", Time: "19:00", Screen: 1, Tags: []string{"3D"}},
	)
	if Compute(extra) == base {
		t.Error("added showtime did not change the fingerprint")
	}

	renamed := sampleCatalog()
	renamed.Venues["st-austell"].Films[0].Title = "Send More Help"
	if Compute(renamed) == base {
		t.Error("retitled film did not change the fingerprint")
	}

	rescreened := sampleCatalog()
	rescreened.Venues["st-austell"].Films[0].Showtimes[0].Screen = 3
	if Compute(rescreened) == base {
		t.Error("screen change did not change the fingerprint")
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whats_on.fingerprint")

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read missing file: %v", err)
	}
	if got != "" {
		t.Errorf("missing file read as %q", got)
	}

	fp := Compute(sampleCatalog())
	if err := Write(path, fp); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err = Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != fp {
		t.Errorf("round trip = %q, want %q", got, fp)
	}
}
