package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// Result is a single movie search result.
type Result struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title"`
	ReleaseDate   string   `json:"release_date"`
	Overview      string   `json:"overview"`
	PosterPath    string   `json:"poster_path"`
	VoteAverage   *float64 `json:"vote_average"`
	GenreIDs      []int    `json:"genre_ids"`
}

// Year returns the four digit release year, or empty.
func (r Result) Year() string {
	if len(r.ReleaseDate) >= 4 {
		return r.ReleaseDate[:4]
	}
	return ""
}

// Response is a search response page.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Genre is a movie genre as returned on detail lookups.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Video is an attached clip (trailers, teasers, featurettes).
type Video struct {
	Site string `json:"site"`
	Type string `json:"type"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// CastMember is a credited performer.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewMember is a credited crew role.
type CrewMember struct {
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// Credits holds cast and crew for a movie.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// MovieDetails is a movie detail response with videos and credits
// appended.
type MovieDetails struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate string   `json:"release_date"`
	Overview    string   `json:"overview"`
	PosterPath  string   `json:"poster_path"`
	Runtime     int      `json:"runtime"`
	VoteAverage *float64 `json:"vote_average"`
	IMDBID      string   `json:"imdb_id"`
	Genres      []Genre  `json:"genres"`
	Videos      struct {
		Results []Video `json:"results"`
	} `json:"videos"`
	Credits Credits `json:"credits"`
}

// Year returns the four digit release year, or empty.
func (d MovieDetails) Year() string {
	if len(d.ReleaseDate) >= 4 {
		return d.ReleaseDate[:4]
	}
	return ""
}

// Searcher is the surface the enricher consumes, kept narrow so tests
// can substitute doubles.
type Searcher interface {
	SearchMovie(ctx context.Context, title string) (*Response, error)
	MovieDetails(ctx context.Context, id int64) (*MovieDetails, error)
}

// Client talks to The Movie Database API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

// Option customizes client construction.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLanguage sets the language parameter sent on every request.
func WithLanguage(language string) Option {
	return func(c *Client) {
		if language != "" {
			c.language = language
		}
	}
}

// WithHTTPClient supplies a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB API client.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("tmdb: api key is required")
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		language:   "en-GB",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SearchMovie queries /search/movie for the given title.
func (c *Client) SearchMovie(ctx context.Context, title string) (*Response, error) {
	params := url.Values{}
	params.Set("query", title)
	params.Set("include_adult", "false")

	var response Response
	if err := c.get(ctx, "/search/movie", params, &response); err != nil {
		return nil, fmt.Errorf("search movie %q: %w", title, err)
	}
	return &response, nil
}

// MovieDetails fetches /movie/{id} with videos and credits appended.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "videos,credits")

	var details MovieDetails
	path := "/movie/" + strconv.FormatInt(id, 10)
	if err := c.get(ctx, path, params, &details); err != nil {
		return nil, fmt.Errorf("movie details %d: %w", id, err)
	}
	return &details, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d after %s: %s",
			resp.StatusCode, time.Since(start).Round(time.Millisecond), strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
