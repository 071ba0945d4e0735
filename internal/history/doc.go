// Package history persists scored runs in SQLite so results can be listed
// and compared across models and over time.
//
// The Store owns the database connection, schema initialization, and an
// advisory file lock that keeps concurrent invocations from interleaving
// writes. Runs are append-only; the only mutation besides Record is Clear.
//
// The database is bookkeeping, not an archive of transcripts: a run stores
// the error counts and enough provenance (model, dataset, file paths, rule
// version) to make old numbers comparable. Schema changes bump the version
// in schema.go; users delete the database to adopt the new schema.
package history
