package listing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dateRe = regexp.MustCompile(`(?i)(\d{1,2})(?:st|nd|rd|th)?\s+([A-Za-z]+)(?:\s+(\d{4}))?`)

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"jun": time.June, "jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseListingDate turns a date heading ("today", "tomorrow",
// "20 December 2026", "10 February") into ISO YYYY-MM-DD relative to
// ref. Year-less dates already behind ref roll forward to the next
// year.
func ParseListingDate(raw string, ref time.Time) (string, error) {
	text := strings.ToLower(strings.TrimSpace(raw))
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)

	switch {
	case strings.Contains(text, "today"):
		return refDay.Format("2006-01-02"), nil
	case strings.Contains(text, "tomorrow"):
		return refDay.AddDate(0, 0, 1).Format("2006-01-02"), nil
	}

	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("unrecognized date %q", raw)
	}

	day, err := strconv.Atoi(m[1])
	if err != nil {
		return "", fmt.Errorf("unrecognized date %q", raw)
	}
	month, ok := months[m[2]]
	if !ok {
		return "", fmt.Errorf("unknown month in %q", raw)
	}

	if m[3] != "" {
		year, err := strconv.Atoi(m[3])
		if err != nil {
			return "", fmt.Errorf("unrecognized date %q", raw)
		}
		return buildDate(year, month, day)
	}

	iso, err := buildDate(refDay.Year(), month, day)
	if err != nil {
		return "", err
	}
	if iso < refDay.Format("2006-01-02") {
		return buildDate(refDay.Year()+1, month, day)
	}
	return iso, nil
}

func buildDate(year int, month time.Month, day int) (string, error) {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month {
		return "", fmt.Errorf("invalid calendar date %d %s %d", day, month, year)
	}
	return d.Format("2006-01-02"), nil
}
