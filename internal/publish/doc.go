// Package publish writes the pipeline's output artifacts.
//
// Three files come out of a run: the catalog JSON consumed by
// downstream sites, a fingerprint sidecar used for change detection,
// and an optional self-contained HTML listings page. All writes go
// through atomic temp-file renames so a crash mid-run never leaves a
// truncated artifact. Poster mirroring optionally localizes artwork so
// the rendered page does not hotlink the image CDN.
package publish
