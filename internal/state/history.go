package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// HistoryRepository keeps a trail of past snapshots in sqlite.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a HistoryRepository over an existing
// database connection.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append records the snapshot as a new history row.
func (r *HistoryRepository) Append(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	takenAt := snap.SavedAt
	if takenAt.IsZero() {
		takenAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO snapshots (taken_at, data) VALUES (?, ?)`,
		takenAt, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot, or false when the history is
// empty.
func (r *HistoryRepository) Latest(ctx context.Context) (Snapshot, bool, error) {
	var data string
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots ORDER BY taken_at DESC, id DESC LIMIT 1`,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return snap, true, nil
}

// Prune deletes history rows older than the given number of days and
// returns how many were removed.
func (r *HistoryRepository) Prune(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -olderThanDays)
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE taken_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return res.RowsAffected()
}
