// Package titles normalizes scraped film titles.
//
// Cinema listings decorate titles with certificate markers ("(15)"),
// subtitle markers ("(with subtitles)") and presentation suffixes
// ("- HFR 3D"). The helpers here strip those decorations to produce
// display titles, metadata search titles and stable cache keys, and
// provide the canonical form used when comparing titles against
// metadata search results.
package titles
