// Package repositories implements SQLite persistence for word count results.
//
// [ResultRepository] stores each [models.Result] with its raw and filtered counts encoded as JSON objects.
// Results support soft deletes via deleted_at timestamps and are excluded from queries once deleted.
// The application never updates a result after it is created.
//
// Sequence numbers provide stable, human-readable ordering (e.g., result #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
