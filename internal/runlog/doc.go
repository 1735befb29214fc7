// Package runlog persists a history of pipeline runs in SQLite.
//
// Each run gets a UUID, timing, counts, the published fingerprint and
// a status. The read side powers the history command. A schema_version
// table guards against reading a database written by a different
// schema; bump schemaVersion when runs gains or changes columns.
package runlog
