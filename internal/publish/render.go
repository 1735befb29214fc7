package publish

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/url"
	"sort"
	"strings"
	"time"

	"marquee/internal/catalog"
	"marquee/internal/fileutil"
)

//go:embed page.html.tmpl
var pageTemplate string

var page = template.Must(template.New("page").Parse(pageTemplate))

type pageData struct {
	GeneratedAt string
	Venues      []venueView
}

type venueView struct {
	ID    string
	Name  string
	URL   string
	Films []filmView
}

type filmView struct {
	*catalog.Film
	Runtime string
	Vote    string
	IMDBURL string
	Days    []dayView
}

type dayView struct {
	Label string
	Shows []catalog.Showtime
}

func (p *Publisher) renderHTML(cat *catalog.Catalog) error {
	data := pageData{GeneratedAt: cat.UpdatedAt}
	for _, id := range cat.VenueIDs() {
		venue := cat.Venues[id]
		view := venueView{ID: id, Name: venue.Name, URL: venue.URL}
		for _, film := range venue.Films {
			fv := filmView{
				Film:    film,
				Runtime: formatRuntime(film.RuntimeMinutes),
				IMDBURL: imdbURL(film),
				Days:    groupByDate(film.Showtimes),
			}
			if film.VoteAverage != nil {
				fv.Vote = fmt.Sprintf("%.1f", *film.VoteAverage)
			}
			view.Films = append(view.Films, fv)
		}
		data.Venues = append(data.Venues, view)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	if err := fileutil.WriteFileAtomic(p.opts.HTMLPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}

// groupByDate buckets showtimes per day in date order, preserving the
// reconciler's within-day ordering.
func groupByDate(showtimes []catalog.Showtime) []dayView {
	byDate := make(map[string][]catalog.Showtime)
	var dates []string
	for _, st := range showtimes {
		if _, seen := byDate[st.Date]; !seen {
			dates = append(dates, st.Date)
		}
		byDate[st.Date] = append(byDate[st.Date], st)
	}
	sort.Strings(dates)

	days := make([]dayView, 0, len(dates))
	for _, date := range dates {
		days = append(days, dayView{Label: dateLabel(date), Shows: byDate[date]})
	}
	return days
}

// dateLabel renders an ISO date as "Fri 28 Aug", keeping the raw value
// when it does not parse.
func dateLabel(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Mon 02 Jan")
}

// formatRuntime renders "110 min (1 hour 50 mins)"; under an hour only
// the minute count appears.
func formatRuntime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	out := fmt.Sprintf("%d min", minutes)
	if minutes < 60 {
		return out
	}

	var parts []string
	h := minutes / 60
	parts = append(parts, fmt.Sprintf("%d %s", h, plural(h, "hour")))
	if m := minutes % 60; m > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", m, plural(m, "min")))
	}
	return out + " (" + strings.Join(parts, " ") + ")"
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

func imdbURL(film *catalog.Film) string {
	if film.IMDBID != "" {
		return "https://www.imdb.com/title/" + film.IMDBID + "/"
	}
	title := film.SearchTitle
	if title == "" {
		title = film.Title
	}
	return "https://www.imdb.com/find/?q=" + url.QueryEscape(title)
}
