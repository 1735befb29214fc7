// Package listing extracts films and showtimes from a cinema "what's
// on" page.
//
// Parsing is a pure function over fetched HTML so it can be exercised
// against fixtures without network access. The extractor tolerates the
// page's quirks: promotional entries sharing the film markup, date
// headings like "today" or "10 February" with no year, missing screen
// numbers, and duplicated performance nodes.
package listing
