package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/analytics/recovery"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// MuscleSets returns every set performed in [start, end) with the muscles
// its exercise trains.
func (db *DB) MuscleSets(ctx context.Context, userID int, start, end time.Time) ([]recovery.SetRecord, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT w.id, w.started_at, ws.weight, ws.reps, ws.duration_seconds,
		       e.primary_muscle_group_id, e.secondary_muscle_group_id, e.tertiary_muscle_group_id
		FROM workout_sets ws
		JOIN workouts w ON w.id = ws.workout_id
		JOIN exercises e ON e.id = ws.exercise_id
		WHERE w.user_id = $1 AND w.started_at >= $2 AND w.started_at < $3
		ORDER BY w.started_at
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying muscle sets: %w", err)
	}
	defer rows.Close()

	var result []recovery.SetRecord
	for rows.Next() {
		var (
			s                  recovery.SetRecord
			primary, sec, tert *uuid.UUID
		)
		if err := rows.Scan(&s.WorkoutID, &s.PerformedAt, &s.Weight, &s.Reps, &s.DurationSeconds,
			&primary, &sec, &tert); err != nil {
			return nil, fmt.Errorf("scanning muscle set: %w", err)
		}
		for role, id := range []*uuid.UUID{primary, sec, tert} {
			if id != nil {
				s.Targets = append(s.Targets, recovery.Target{MuscleID: *id, Role: recovery.Role(role)})
			}
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ExerciseSet is one working set of a single exercise.
type ExerciseSet struct {
	SetID           uuid.UUID
	WorkoutID       uuid.UUID
	StartedAt       time.Time
	SetOrder        int
	Weight          *float64
	Reps            *int
	DurationSeconds *int
	IsPR            bool
}

// ExerciseSets returns working sets of an exercise performed in
// [start, end), oldest first.
func (db *DB) ExerciseSets(ctx context.Context, userID int, exerciseID uuid.UUID, start, end time.Time) ([]ExerciseSet, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT ws.id, w.id, w.started_at, ws.set_order, ws.weight, ws.reps,
		       ws.duration_seconds, ws.is_pr
		FROM workout_sets ws
		JOIN workouts w ON w.id = ws.workout_id
		WHERE w.user_id = $1 AND ws.exercise_id = $2 AND NOT ws.is_warmup
		  AND w.started_at >= $3 AND w.started_at < $4
		ORDER BY w.started_at, ws.set_order
	`, userID, exerciseID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying exercise sets: %w", err)
	}
	defer rows.Close()

	var result []ExerciseSet
	for rows.Next() {
		var s ExerciseSet
		if err := rows.Scan(&s.SetID, &s.WorkoutID, &s.StartedAt, &s.SetOrder,
			&s.Weight, &s.Reps, &s.DurationSeconds, &s.IsPR); err != nil {
			return nil, fmt.Errorf("scanning exercise set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ExerciseTotals summarizes every set ever logged for an exercise.
type ExerciseTotals struct {
	TotalSets      int        `json:"total_sets"`
	TotalWorkouts  int        `json:"total_workouts"`
	FirstPerformed *time.Time `json:"first_performed"`
	LastPerformed  *time.Time `json:"last_performed"`
	BestWeight     *float64   `json:"best_weight"`
	BestReps       *int       `json:"best_reps"`
	BestVolume     *float64   `json:"best_volume"`
	BestDuration   *int       `json:"best_duration"`
}

// GetExerciseTotals aggregates the working sets of an exercise.
func (db *DB) GetExerciseTotals(ctx context.Context, userID int, exerciseID uuid.UUID) (*ExerciseTotals, error) {
	var t ExerciseTotals
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(ws.id), COUNT(DISTINCT w.id), MIN(w.started_at), MAX(w.started_at),
		       MAX(ws.weight)::float8, MAX(ws.reps), MAX(ws.weight * ws.reps)::float8,
		       MAX(ws.duration_seconds)
		FROM workout_sets ws
		JOIN workouts w ON w.id = ws.workout_id
		WHERE w.user_id = $1 AND ws.exercise_id = $2 AND NOT ws.is_warmup
	`, userID, exerciseID).Scan(&t.TotalSets, &t.TotalWorkouts, &t.FirstPerformed, &t.LastPerformed,
		&t.BestWeight, &t.BestReps, &t.BestVolume, &t.BestDuration)
	if err != nil {
		return nil, fmt.Errorf("querying exercise totals: %w", err)
	}
	return &t, nil
}

// PRSet is a set flagged as a personal record.
type PRSet struct {
	SetID            uuid.UUID `json:"set_id"`
	WorkoutID        uuid.UUID `json:"workout_id"`
	WorkoutStartedAt time.Time `json:"workout_started_at"`
	ExerciseID       uuid.UUID `json:"exercise_id"`
	ExerciseName     string    `json:"exercise_name"`
	PRType           string    `json:"pr_type"`
	Weight           *float64  `json:"weight"`
	Reps             *int      `json:"reps"`
	DurationSeconds  *int      `json:"duration_seconds"`
}

// PRSets returns record sets from workouts started on or after since,
// newest first.
func (db *DB) PRSets(ctx context.Context, userID int, since time.Time) ([]PRSet, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT ws.id, w.id, w.started_at, e.id, e.name, ws.pr_type,
		       ws.weight, ws.reps, ws.duration_seconds
		FROM workout_sets ws
		JOIN workouts w ON w.id = ws.workout_id
		JOIN exercises e ON e.id = ws.exercise_id
		WHERE w.user_id = $1 AND ws.is_pr AND w.started_at >= $2
		ORDER BY w.started_at DESC, ws.set_order
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("querying PR sets: %w", err)
	}
	defer rows.Close()

	var result []PRSet
	for rows.Next() {
		var p PRSet
		if err := rows.Scan(&p.SetID, &p.WorkoutID, &p.WorkoutStartedAt, &p.ExerciseID,
			&p.ExerciseName, &p.PRType, &p.Weight, &p.Reps, &p.DurationSeconds); err != nil {
			return nil, fmt.Errorf("scanning PR set: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// SessionBests is the best working set of one exercise in one workout.
type SessionBests struct {
	ExerciseID   uuid.UUID
	ExerciseName string
	WorkoutID    uuid.UUID
	StartedAt    time.Time
	MaxWeight    float64
	MaxVolume    float64
	MaxDuration  int
}

// RecentSessionBests returns, for every exercise, the per-workout maxima of
// its last perExercise workouts. Rows are grouped by exercise, newest
// workout first.
func (db *DB) RecentSessionBests(ctx context.Context, userID, perExercise int) ([]SessionBests, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT exercise_id, name, workout_id, started_at, max_weight, max_volume, max_duration
		FROM (
			SELECT ws.exercise_id, e.name, w.id AS workout_id, w.started_at,
			       COALESCE(MAX(ws.weight), 0)::float8 AS max_weight,
			       COALESCE(MAX(ws.weight * ws.reps), 0)::float8 AS max_volume,
			       COALESCE(MAX(ws.duration_seconds), 0) AS max_duration,
			       ROW_NUMBER() OVER (PARTITION BY ws.exercise_id ORDER BY w.started_at DESC) AS rn
			FROM workout_sets ws
			JOIN workouts w ON w.id = ws.workout_id
			JOIN exercises e ON e.id = ws.exercise_id
			WHERE w.user_id = $1 AND NOT ws.is_warmup
			GROUP BY ws.exercise_id, e.name, w.id, w.started_at
		) ranked
		WHERE rn <= $2
		ORDER BY name, exercise_id, started_at DESC
	`, userID, perExercise)
	if err != nil {
		return nil, fmt.Errorf("querying session bests: %w", err)
	}
	defer rows.Close()

	var result []SessionBests
	for rows.Next() {
		var s SessionBests
		if err := rows.Scan(&s.ExerciseID, &s.ExerciseName, &s.WorkoutID, &s.StartedAt,
			&s.MaxWeight, &s.MaxVolume, &s.MaxDuration); err != nil {
			return nil, fmt.Errorf("scanning session bests: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// SessionVolume is the working volume of one exercise in one workout.
type SessionVolume struct {
	ExerciseID   uuid.UUID
	ExerciseName string
	WorkoutID    uuid.UUID
	StartedAt    time.Time
	Volume       float64
}

// TopExerciseVolumes returns the per-workout working volume of the user's
// limit most logged exercises. Rows are grouped by exercise, most logged
// first, newest workout first within a group. Sets without weight or reps
// are ignored.
func (db *DB) TopExerciseVolumes(ctx context.Context, userID, limit int) ([]SessionVolume, error) {
	rows, err := db.Pool.Query(ctx, `
		WITH working AS (
			SELECT ws.exercise_id, w.id AS workout_id, w.started_at, ws.weight * ws.reps AS volume
			FROM workout_sets ws
			JOIN workouts w ON w.id = ws.workout_id
			WHERE w.user_id = $1 AND NOT ws.is_warmup
			  AND ws.weight IS NOT NULL AND ws.reps IS NOT NULL
		), top AS (
			SELECT exercise_id, COUNT(*) AS n
			FROM working
			GROUP BY exercise_id
			ORDER BY n DESC, exercise_id
			LIMIT $2
		)
		SELECT t.exercise_id, e.name, wk.workout_id, wk.started_at, SUM(wk.volume)::float8
		FROM top t
		JOIN exercises e ON e.id = t.exercise_id
		JOIN working wk ON wk.exercise_id = t.exercise_id
		GROUP BY t.exercise_id, t.n, e.name, wk.workout_id, wk.started_at
		ORDER BY t.n DESC, t.exercise_id, wk.started_at DESC
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exercise volumes: %w", err)
	}
	defer rows.Close()

	var result []SessionVolume
	for rows.Next() {
		var v SessionVolume
		if err := rows.Scan(&v.ExerciseID, &v.ExerciseName, &v.WorkoutID, &v.StartedAt, &v.Volume); err != nil {
			return nil, fmt.Errorf("scanning exercise volume: %w", err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

// SessionSets are the sets of one exercise within one workout.
type SessionSets struct {
	WorkoutID uuid.UUID
	StartedAt time.Time
	Sets      []models.WorkoutSet
}

// LatestSessionSets returns the exercise's sets from the most recent
// workout that contains it, skipping the workout exclude when non-nil.
// It returns ErrNotFound when no such workout exists.
func (db *DB) LatestSessionSets(ctx context.Context, userID int, exerciseID uuid.UUID, exclude *uuid.UUID) (*SessionSets, error) {
	out := SessionSets{Sets: []models.WorkoutSet{}}
	err := db.Pool.QueryRow(ctx, `
		SELECT w.id, w.started_at
		FROM workouts w
		WHERE w.user_id = $1
		  AND ($3::uuid IS NULL OR w.id <> $3)
		  AND EXISTS (SELECT 1 FROM workout_sets ws WHERE ws.workout_id = w.id AND ws.exercise_id = $2)
		ORDER BY w.started_at DESC
		LIMIT 1
	`, userID, exerciseID, exclude).Scan(&out.WorkoutID, &out.StartedAt)
	if err != nil {
		return nil, rowErr("previous session", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT `+setColumns+` FROM workout_sets
		 WHERE workout_id = $1 AND exercise_id = $2
		 ORDER BY set_order, created_at`,
		out.WorkoutID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		s, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session set: %w", err)
		}
		out.Sets = append(out.Sets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &out, nil
}
