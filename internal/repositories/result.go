package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/shared"
)

var _ models.Repository[*models.Result] = (*ResultRepository)(nil)

// ResultRepository implements [models.Repository] for [models.Result] persistence.
type ResultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new [ResultRepository] with the given database connection
func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Create inserts a new result with a generated ID and sequence.
//
// The sequence increment and the insert share one transaction, so a failed insert leaves no row
// and no gap.
func (r *ResultRepository) Create(result *models.Result) error {
	all, err := json.Marshal(result.All())
	if err != nil {
		return fmt.Errorf("failed to encode counts: %w", err)
	}
	noStopWords, err := json.Marshal(result.NoStopWords())
	if err != nil {
		return fmt.Errorf("failed to encode filtered counts: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(tx, "results")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	result.SetID(id)
	result.SetSequence(sequence)

	if err := result.Validate(); err != nil {
		result.SetID("")
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO results (id, sequence, url, result_all, result_no_stop_words, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query, id, sequence, result.URL(), string(all), string(noStopWords), result.CreatedAt(), result.UpdatedAt())
	if err != nil {
		result.SetID("")
		return fmt.Errorf("failed to insert result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		result.SetID("")
		return fmt.Errorf("failed to commit result: %w", err)
	}

	return nil
}

// Get retrieves a result by ID, excluding soft-deleted results
func (r *ResultRepository) Get(id string) (*models.Result, error) {
	query := `
		SELECT id, sequence, url, result_all, result_no_stop_words, created_at, updated_at, deleted_at
		FROM results
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := scanResult(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: result %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query result: %w", err)
	}

	return result, nil
}

// Update always fails: results are written once.
func (r *ResultRepository) Update(result *models.Result) error {
	return fmt.Errorf("%w: result %s", shared.ErrImmutable, result.ID())
}

// Delete soft-deletes a result by ID
func (r *ResultRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE results
		SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	res, err := r.db.Exec(query, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: result %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves results matching the given criteria, newest first, excluding soft-deleted results.
//
// Supported criteria: "url" (string, exact match) and "limit" (int, > 0).
func (r *ResultRepository) List(criteria map[string]any) ([]*models.Result, error) {
	query := `
		SELECT id, sequence, url, result_all, result_no_stop_words, created_at, updated_at, deleted_at
		FROM results
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if url, ok := criteria["url"].(string); ok && url != "" {
		query += " AND url = ?"
		args = append(args, url)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*models.Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*models.Result, error) {
	var (
		id          string
		sequence    int
		url         string
		all         string
		noStopWords string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &url, &all, &noStopWords, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	var allCounts, filteredCounts map[string]int
	if err := json.Unmarshal([]byte(all), &allCounts); err != nil {
		return nil, fmt.Errorf("corrupt result_all for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(noStopWords), &filteredCounts); err != nil {
		return nil, fmt.Errorf("corrupt result_no_stop_words for %s: %w", id, err)
	}

	result := models.NewResult(sequence, url, allCounts, filteredCounts)
	result.SetID(id)
	result.SetCreatedAt(createdAt)
	result.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		result.SetDeletedAt(&deletedAt.Time)
	}

	return result, nil
}
