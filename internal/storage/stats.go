package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about all stored data.
type DataStats struct {
	TotalWorkouts  int64               `json:"total_workouts"`
	TotalSets      int64               `json:"total_sets"`
	TotalPRs       int64               `json:"total_prs"`
	TotalBodyLogs  int64               `json:"total_body_logs"`
	TotalExercises int64               `json:"total_exercises"`
	EarliestData   *time.Time          `json:"earliest_data"`
	LatestData     *time.Time          `json:"latest_data"`
	WorkoutsBySrc  []WorkoutSourceStat `json:"workouts_by_source"`
}

// WorkoutSourceStat holds summary stats for workouts from one source.
type WorkoutSourceStat struct {
	Source        string  `json:"source"`
	Count         int64   `json:"count"`
	TotalDuration float64 `json:"total_duration_sec"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(started_at), MAX(started_at) FROM workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.EarliestData, &stats.LatestData)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE ws.is_pr)
		 FROM workout_sets ws JOIN workouts w ON w.id = ws.workout_id
		 WHERE w.user_id = $1`, userID,
	).Scan(&stats.TotalSets, &stats.TotalPRs)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM body_logs WHERE user_id = $1`, userID,
	).Scan(&stats.TotalBodyLogs)
	if err != nil {
		return nil, fmt.Errorf("counting body logs: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exercises WHERE user_id = $1`, userID,
	).Scan(&stats.TotalExercises)
	if err != nil {
		return nil, fmt.Errorf("counting exercises: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT source, COUNT(*), COALESCE(SUM(duration_seconds), 0)::float8
		 FROM workouts
		 WHERE user_id = $1
		 GROUP BY source
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts by source: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s WorkoutSourceStat
		if err := rows.Scan(&s.Source, &s.Count, &s.TotalDuration); err != nil {
			return nil, fmt.Errorf("scanning workout source stat: %w", err)
		}
		stats.WorkoutsBySrc = append(stats.WorkoutsBySrc, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
