package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-remote/internal/feedback"
)

const (
	// DefaultHistoryLimit is used when History is called with limit <= 0.
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps History results.
	MaxHistoryLimit = 200
)

// Record is one journalled feedback value.
type Record struct {
	Seq        int64         `json:"seq"`
	Kind       feedback.Kind `json:"kind"`
	ID         int           `json:"id"`
	Value      any           `json:"value"`
	Source     string        `json:"source"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// Repository stores records in SQLite. It is safe for concurrent use.
type Repository struct {
	db *sql.DB
}

// NewRepository returns a repository over an open, migrated database.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Append writes entries in one transaction, tagged with source.
func (r *Repository) Append(ctx context.Context, source string, entries []feedback.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO feedback_history (kind, id, value, source, recorded_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		value, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("marshalling %s %d: %w", e.Kind, e.ID, err)
		}
		at := e.Timestamp
		if at.IsZero() {
			at = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, e.Kind.String(), e.ID, string(value), source, at.UTC().UnixNano()); err != nil {
			return fmt.Errorf("inserting %s %d: %w", e.Kind, e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history: %w", err)
	}
	return nil
}

// History returns the records of (kind, id), newest first. limit defaults to
// DefaultHistoryLimit and is capped at MaxHistoryLimit.
func (r *Repository) History(ctx context.Context, kind feedback.Kind, id, limit int) ([]Record, error) {
	if !kind.Valid() || id <= 0 {
		return nil, fmt.Errorf("%w: %s %d", ErrInvalidKey, kind, id)
	}
	limit = ClampLimit(limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, value, source, recorded_at
		 FROM feedback_history
		 WHERE kind = ? AND id = ?
		 ORDER BY recorded_at DESC, seq DESC
		 LIMIT ?`,
		kind.String(), id, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		rec := Record{Kind: kind, ID: id}
		var value string
		var at int64
		if err := rows.Scan(&rec.Seq, &value, &rec.Source, &at); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		if err := json.Unmarshal([]byte(value), &rec.Value); err != nil {
			return nil, fmt.Errorf("unmarshalling value: %w", err)
		}
		rec.RecordedAt = time.Unix(0, at).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return records, nil
}

// Prune deletes records older than olderThan and returns how many went.
func (r *Repository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, ErrInvalidRetention
	}
	cutoff := time.Now().UTC().Add(-olderThan).UnixNano()
	result, err := r.db.ExecContext(ctx, "DELETE FROM feedback_history WHERE recorded_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting history: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

// ClampLimit applies the History limit defaults.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
