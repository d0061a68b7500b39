package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ImportLog represents a single import operation's outcome.
type ImportLog struct {
	ID               int64            `json:"id"`
	UserID           int              `json:"user_id"`
	CreatedAt        time.Time        `json:"created_at"`
	Source           string           `json:"source"`
	Status           string           `json:"status"`
	WorkoutsReceived int              `json:"workouts_received"`
	WorkoutsInserted int              `json:"workouts_inserted"`
	SetsReceived     int              `json:"sets_received"`
	SetsInserted     int64            `json:"sets_inserted"`
	PRsDetected      int              `json:"prs_detected"`
	DurationMs       *int             `json:"duration_ms"`
	ErrorMessage     *string          `json:"error_message"`
	Metadata         *json.RawMessage `json:"metadata"`
}

// Import log statuses. An entry is written as running and finished with
// success or error.
const (
	ImportRunning = "running"
	ImportSuccess = "success"
	ImportError   = "error"
)

const importLogColumns = `id, user_id, created_at, source, status, workouts_received, workouts_inserted,
	sets_received, sets_inserted, prs_detected, duration_ms, error_message, metadata`

func scanImportLog(row pgx.CollectableRow) (ImportLog, error) {
	var l ImportLog
	err := row.Scan(&l.ID, &l.UserID, &l.CreatedAt, &l.Source, &l.Status,
		&l.WorkoutsReceived, &l.WorkoutsInserted, &l.SetsReceived, &l.SetsInserted,
		&l.PRsDetected, &l.DurationMs, &l.ErrorMessage, &l.Metadata)
	return l, err
}

// InsertImportLog creates an import log entry and returns its ID. An empty
// status is stored as running.
func (db *DB) InsertImportLog(ctx context.Context, l ImportLog) (int64, error) {
	if l.Status == "" {
		l.Status = ImportRunning
	}
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO import_logs (user_id, source, status, workouts_received, workouts_inserted,
		 sets_received, sets_inserted, prs_detected, duration_ms, error_message, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		l.UserID, l.Source, l.Status, l.WorkoutsReceived, l.WorkoutsInserted,
		l.SetsReceived, l.SetsInserted, l.PRsDetected,
		l.DurationMs, l.ErrorMessage, l.Metadata,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting %s import log: %w", l.Source, err)
	}
	return id, nil
}

// UpdateImportLog finishes a running entry with its counts and outcome.
// The entry must belong to l.UserID.
func (db *DB) UpdateImportLog(ctx context.Context, id int64, l ImportLog) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE import_logs SET
		 status = $3, workouts_received = $4, workouts_inserted = $5,
		 sets_received = $6, sets_inserted = $7, prs_detected = $8,
		 duration_ms = $9, error_message = $10, metadata = $11
		 WHERE id = $1 AND user_id = $2`,
		id, l.UserID, l.Status, l.WorkoutsReceived, l.WorkoutsInserted,
		l.SetsReceived, l.SetsInserted, l.PRsDetected,
		l.DurationMs, l.ErrorMessage, l.Metadata,
	)
	if err != nil {
		return fmt.Errorf("updating import log %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("import log %d: %w", id, ErrNotFound)
	}
	return nil
}

// QueryImportLogs returns a user's most recent import logs, newest first.
func (db *DB) QueryImportLogs(ctx context.Context, userID, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+importLogColumns+`
		 FROM import_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	logs, err := pgx.CollectRows(rows, scanImportLog)
	if err != nil {
		return nil, fmt.Errorf("scanning import logs: %w", err)
	}
	return logs, nil
}
