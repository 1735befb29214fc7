package listing

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"marquee/internal/catalog"
	"marquee/internal/logging"
	"marquee/internal/titles"
)

const (
	filmSelector        = "li.js-film"
	dateSelector        = "li.js-performance-date"
	performanceSelector = "li.js-performance"

	synopsisMinLength = 80
	synopsisMaxLength = 500
)

// Non-film promotional entries that share the film listing markup.
var denylist = []string{
	"looking ahead",
	"gaming",
	"private cinema",
	"onscreen magazine",
	"book the cinema",
}

// tagVocabulary is scanned against each performance block. Order is
// preserved in the output tags.
var tagVocabulary = []string{
	"Audio Description",
	"Subtitles",
	"Wheelchair access",
	"Silver Screen",
	"2D",
	"3D",
	"Event cinema",
	"Strobe Light warning",
	"Parent & Baby",
	"Autism Friendly",
	"Kids Club",
}

var (
	timeRe    = regexp.MustCompile(`(\d{1,2}:\d{2})`)
	screenRe  = regexp.MustCompile(`(?i)Screen:\s*(\d+)`)
	runtimeRe = regexp.MustCompile(`(?i)(\d+)\s*minutes?`)
)

// Options configures a parse pass.
type Options struct {
	// BaseURL resolves relative film and booking links.
	BaseURL string
	// VenueID, when set, restricts film links to those carrying the
	// venue in their query string. Multi-venue pages list every site's
	// films in one document.
	VenueID string
	// Reference anchors "today"/"tomorrow" and year-less dates.
	Reference time.Time
	Logger    *slog.Logger
}

// Parse extracts films and showtimes from a listing page. It is a pure
// function of the document and options; network access happens
// elsewhere.
func Parse(html []byte, opts Options) ([]*catalog.Film, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	logger := logging.NewComponentLogger(opts.Logger, "listing")
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	ref := opts.Reference
	if ref.IsZero() {
		ref = time.Now().UTC()
	}

	var films []*catalog.Film
	doc.Find(filmSelector).Each(func(_ int, block *goquery.Selection) {
		film := parseFilm(block, base, opts.VenueID, ref, logger)
		if film != nil {
			films = append(films, film)
		}
	})

	logger.Info("parsed listing", logging.Int("film_count", len(films)))
	return films, nil
}

func parseFilm(block *goquery.Selection, base *url.URL, venueID string, ref time.Time, logger *slog.Logger) *catalog.Film {
	link := filmLink(block, venueID)
	if link == nil {
		return nil
	}
	filmURL := resolveURL(base, link.AttrOr("href", ""))
	slug := titles.SlugFromURL(filmURL)

	rawTitle := normSpace(block.Find("h1, h2, h3").First().Text())
	if rawTitle == "" {
		rawTitle = normSpace(link.Text())
	}
	if rawTitle == "" {
		rawTitle = titles.FromSlug(slug)
	}

	title := titles.FoldDashes(rawTitle)
	title, certificate := titles.ExtractRating(title)
	title = titles.StripFormatSuffix(title)
	if certificate == "" {
		// The certificate can sit before the presentation suffix.
		title, certificate = titles.ExtractRating(title)
	}
	if title == "" {
		return nil
	}
	if denied(title) {
		logger.Debug("skipping non-film entry", logging.String(logging.FieldFilm, title))
		return nil
	}

	film := &catalog.Film{
		Title:       title,
		SearchTitle: titles.SearchTitle(rawTitle),
		Slug:        slug,
		URL:         filmURL,
		Certificate: certificate,
	}

	parseDescription(block, film)

	if m := runtimeRe.FindStringSubmatch(block.Text()); m != nil {
		film.RuntimeMinutes, _ = strconv.Atoi(m[1])
	}

	film.Showtimes = parseShowtimes(block, base, ref, logger, title)
	return film
}

// parseDescription pulls synopsis and cast out of the film block's
// paragraphs. The synopsis is the first substantial paragraph that is
// not a credits or running-time line.
func parseDescription(block *goquery.Selection, film *catalog.Film) {
	block.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := normSpace(p.Text())
		lower := strings.ToLower(text)

		if strings.Contains(lower, "starring") && strings.Contains(text, ":") && len(film.Cast) == 0 {
			_, after, _ := strings.Cut(text, ":")
			for _, name := range strings.Split(after, ",") {
				if name = strings.TrimSpace(name); name != "" {
					film.Cast = append(film.Cast, name)
				}
			}
			return true
		}

		if film.Synopsis == "" && len(text) > synopsisMinLength &&
			!strings.Contains(lower, "starring") && !strings.Contains(lower, "running time") {
			film.Synopsis = truncate(text, synopsisMaxLength)
		}
		return true
	})
}

func parseShowtimes(block *goquery.Selection, base *url.URL, ref time.Time, logger *slog.Logger, title string) []catalog.Showtime {
	var showtimes []catalog.Showtime
	seen := make(map[string]struct{})

	block.Find(dateSelector).Each(func(_ int, dateNode *goquery.Selection) {
		heading := dateNode.Find("h1, h2, h3, h4, .date-heading").First().Text()
		if normSpace(heading) == "" {
			heading = firstLine(dateNode.Text())
		}

		date, err := ParseListingDate(heading, ref)
		if err != nil {
			logger.Warn("dropping date group",
				logging.String(logging.FieldFilm, title),
				logging.String("heading", normSpace(heading)),
				logging.Error(err))
			return
		}

		dateNode.Find(performanceSelector).Each(func(_ int, perf *goquery.Selection) {
			st, ok := parsePerformance(perf, base, date)
			if !ok {
				return
			}
			if _, dup := seen[st.Key()]; dup {
				return
			}
			seen[st.Key()] = struct{}{}
			showtimes = append(showtimes, st)
		})
	})

	catalog.SortShowtimes(showtimes)
	return showtimes
}

func parsePerformance(perf *goquery.Selection, base *url.URL, date string) (catalog.Showtime, bool) {
	text := perf.Text()

	m := timeRe.FindStringSubmatch(text)
	if m == nil {
		return catalog.Showtime{}, false
	}

	st := catalog.Showtime{
		Date:   date,
		Time:   m[1],
		Screen: 1,
	}
	if sm := screenRe.FindStringSubmatch(text); sm != nil {
		st.Screen, _ = strconv.Atoi(sm[1])
	}
	if booking := perf.Find(`a[href*="performance="]`).First(); booking.Length() > 0 {
		st.BookingURL = resolveURL(base, booking.AttrOr("href", ""))
	}

	st.Tags = scanTags(perf)
	return st, true
}

// scanTags matches the fixed tag vocabulary against the performance
// text and its icon title/alt attributes.
func scanTags(perf *goquery.Selection) []string {
	var haystack strings.Builder
	haystack.WriteString(perf.Text())
	perf.Find("[title], [alt], [aria-label]").Each(func(_ int, s *goquery.Selection) {
		haystack.WriteByte(' ')
		haystack.WriteString(s.AttrOr("title", ""))
		haystack.WriteByte(' ')
		haystack.WriteString(s.AttrOr("alt", ""))
		haystack.WriteByte(' ')
		haystack.WriteString(s.AttrOr("aria-label", ""))
	})
	lower := strings.ToLower(haystack.String())

	var tags []string
	for _, tag := range tagVocabulary {
		if strings.Contains(lower, strings.ToLower(tag)) {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		tags = []string{"2D"}
	}
	return tags
}

// filmLink returns the block's film detail anchor, or nil when the
// block does not belong to the requested venue.
func filmLink(block *goquery.Selection, venueID string) *goquery.Selection {
	var match *goquery.Selection
	block.Find(`a[href*="/film/"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if venueID != "" && !strings.Contains(a.AttrOr("href", ""), venueID) {
			return true
		}
		match = a
		return false
	})
	return match
}

func denied(title string) bool {
	lower := strings.ToLower(title)
	for _, entry := range denylist {
		if strings.Contains(lower, entry) {
			return true
		}
	}
	return false
}

func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func normSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := normSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
