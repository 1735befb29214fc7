package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchMovie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_key") != "test-key" {
			t.Errorf("api_key = %q", q.Get("api_key"))
		}
		if q.Get("query") != "Send Help" {
			t.Errorf("query = %q", q.Get("query"))
		}
		if q.Get("language") != "en-GB" {
			t.Errorf("language = %q", q.Get("language"))
		}
		if q.Get("include_adult") != "false" {
			t.Errorf("include_adult = %q", q.Get("include_adult"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"page": 1,
			"results": [
				{"id": 1100998, "title": "Send Help", "release_date": "2026-01-30",
				 "poster_path": "/sendhelp.jpg", "vote_average": 7.1, "genre_ids": [27, 35]}
			],
			"total_results": 1
		}`))
	}))
	defer srv.Close()

	client, err := New("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := client.SearchMovie(context.Background(), "Send Help")
	if err != nil {
		t.Fatalf("SearchMovie: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("result count = %d", len(resp.Results))
	}
	result := resp.Results[0]
	if result.ID != 1100998 || result.Title != "Send Help" {
		t.Errorf("result = %+v", result)
	}
	if result.Year() != "2026" {
		t.Errorf("year = %q", result.Year())
	}
	if result.VoteAverage == nil || *result.VoteAverage != 7.1 {
		t.Error("vote average missing")
	}
}

func TestMovieDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/1100998" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("append_to_response"); got != "videos,credits" {
			t.Errorf("append_to_response = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 1100998,
			"title": "Send Help",
			"release_date": "2026-01-30",
			"runtime": 110,
			"imdb_id": "tt21088888",
			"genres": [{"id": 27, "name": "Horror"}],
			"videos": {"results": [
				{"site": "YouTube", "type": "Trailer", "key": "abc123", "name": "Official Trailer"}
			]},
			"credits": {
				"cast": [{"name": "Rachel McAdams", "character": "Linda", "order": 0}],
				"crew": [{"name": "Sam Raimi", "job": "Director", "department": "Directing"}]
			}
		}`))
	}))
	defer srv.Close()

	client, err := New("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	details, err := client.MovieDetails(context.Background(), 1100998)
	if err != nil {
		t.Fatalf("MovieDetails: %v", err)
	}
	if details.Runtime != 110 {
		t.Errorf("runtime = %d", details.Runtime)
	}
	if len(details.Videos.Results) != 1 || details.Videos.Results[0].Key != "abc123" {
		t.Errorf("videos = %+v", details.Videos.Results)
	}
	if len(details.Credits.Crew) != 1 || details.Credits.Crew[0].Job != "Director" {
		t.Errorf("crew = %+v", details.Credits.Crew)
	}
}

func TestErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := New("bad-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.SearchMovie(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
