// Package catalog defines the published domain model: venues, films
// and showtimes, plus the reconciliation that folds subtitled screening
// variants into their base film.
//
// Listing pages publish subtitled screenings as a separate film whose
// title ends in "(with subtitles)". MergeSubtitleVariants removes that
// duplication so consumers see one film with tagged showtimes.
package catalog
