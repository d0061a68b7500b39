package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/analytics/bodycomp"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

const bodyLogColumns = `id, user_id, logged_at, weight_kg, body_fat_pct, measurements, computed_stats, created_at`

func scanBodyLog(row interface{ Scan(...any) error }) (models.BodyLog, error) {
	var l models.BodyLog
	err := row.Scan(&l.ID, &l.UserID, &l.LoggedAt, &l.WeightKg, &l.BodyFatPct,
		&l.Measurements, &l.Stats, &l.CreatedAt)
	return l, err
}

// InsertBodyLog stores a weigh-in together with its derived stats.
func (db *DB) InsertBodyLog(ctx context.Context, l models.BodyLog) (*models.BodyLog, error) {
	if l.Measurements == nil {
		l.Measurements = map[string]float64{}
	}
	if l.LoggedAt.IsZero() {
		l.LoggedAt = time.Now()
	}
	out, err := scanBodyLog(db.Pool.QueryRow(ctx,
		`INSERT INTO body_logs (user_id, logged_at, weight_kg, body_fat_pct, measurements, computed_stats)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+bodyLogColumns,
		l.UserID, l.LoggedAt, l.WeightKg, l.BodyFatPct, l.Measurements, l.Stats,
	))
	if err != nil {
		return nil, fmt.Errorf("inserting body log: %w", err)
	}
	return &out, nil
}

// GetBodyLog returns one of the user's body logs.
func (db *DB) GetBodyLog(ctx context.Context, userID int, id uuid.UUID) (*models.BodyLog, error) {
	l, err := scanBodyLog(db.Pool.QueryRow(ctx,
		`SELECT `+bodyLogColumns+` FROM body_logs WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, rowErr("body log", err)
	}
	return &l, nil
}

// QueryBodyLogs returns body logs in [start, end), newest first.
func (db *DB) QueryBodyLogs(ctx context.Context, userID int, start, end time.Time) ([]models.BodyLog, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+bodyLogColumns+` FROM body_logs
		 WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
		 ORDER BY logged_at DESC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying body logs: %w", err)
	}
	defer rows.Close()

	var result []models.BodyLog
	for rows.Next() {
		l, err := scanBodyLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning body log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// LatestBodyLog returns the most recent weigh-in.
func (db *DB) LatestBodyLog(ctx context.Context, userID int) (*models.BodyLog, error) {
	l, err := scanBodyLog(db.Pool.QueryRow(ctx,
		`SELECT `+bodyLogColumns+` FROM body_logs WHERE user_id = $1
		 ORDER BY logged_at DESC LIMIT 1`, userID))
	if err != nil {
		return nil, rowErr("latest body log", err)
	}
	return &l, nil
}

// UpdateBodyLogStats replaces the cached stats of a body log.
func (db *DB) UpdateBodyLogStats(ctx context.Context, userID int, id uuid.UUID, stats bodycomp.Stats) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE body_logs SET computed_stats = $3 WHERE id = $1 AND user_id = $2`,
		id, userID, stats)
	if err != nil {
		return fmt.Errorf("updating body log stats %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("body log %s: %w", id, ErrNotFound)
	}
	return nil
}

// WeightHistory returns every recorded body weight, oldest first.
func (db *DB) WeightHistory(ctx context.Context, userID int) ([]models.WeightPoint, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT logged_at, weight_kg FROM body_logs WHERE user_id = $1 ORDER BY logged_at`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying weight history: %w", err)
	}
	defer rows.Close()

	var result []models.WeightPoint
	for rows.Next() {
		var p models.WeightPoint
		if err := rows.Scan(&p.At, &p.WeightKg); err != nil {
			return nil, fmt.Errorf("scanning weight point: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
