// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type,
// handling CRUD operations, soft deletes, and sequence generation.
package repositories

import (
	"database/sql"
	"fmt"
)

// queryer is satisfied by both [sql.DB] and [sql.Tx].
type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Pass the [sql.Tx] of the insert that consumes the number so a failed insert does not burn it.
// Sequence numbers give results a human-readable order (result #42) independent of their UUIDs.
func NextSequence(q queryer, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := q.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return sequence, nil
}
