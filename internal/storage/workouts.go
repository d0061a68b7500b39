package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

const workoutColumns = `id, user_id, name, started_at, ended_at, duration_seconds,
	intensity, notes, source, created_at`

func scanWorkout(row interface{ Scan(...any) error }) (models.Workout, error) {
	var w models.Workout
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.StartedAt, &w.EndedAt,
		&w.DurationSeconds, &w.Intensity, &w.Notes, &w.Source, &w.CreatedAt)
	return w, err
}

func insertWorkout(ctx context.Context, q querier, w models.Workout) (models.Workout, error) {
	if w.Source == "" {
		w.Source = "manual"
	}
	out, err := scanWorkout(q.QueryRow(ctx,
		`INSERT INTO workouts (user_id, name, started_at, ended_at, duration_seconds, intensity, notes, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+workoutColumns,
		w.UserID, w.Name, w.StartedAt, w.EndedAt, w.DurationSeconds, w.Intensity, w.Notes, w.Source,
	))
	if err != nil {
		return models.Workout{}, fmt.Errorf("inserting workout: %w", err)
	}
	return out, nil
}

// CreateWorkout inserts a workout without sets.
func (db *DB) CreateWorkout(ctx context.Context, w models.Workout) (*models.Workout, error) {
	out, err := insertWorkout(ctx, db.Pool, w)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// QueryWorkouts returns workouts started in [start, end), newest first.
func (db *DB) QueryWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+` FROM workouts
		 WHERE user_id = $1 AND started_at >= $2 AND started_at < $3
		 ORDER BY started_at DESC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// GetWorkout returns one of the user's workouts with its sets.
func (db *DB) GetWorkout(ctx context.Context, userID int, id uuid.UUID) (*models.WorkoutDetail, error) {
	w, err := scanWorkout(db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, rowErr("workout", err)
	}
	sets, err := db.setsForWorkouts(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return &models.WorkoutDetail{Workout: w, Sets: sets[id]}, nil
}

// QueryWorkoutDetails returns workouts started in [start, end) with their
// sets, oldest first.
func (db *DB) QueryWorkoutDetails(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutDetail, error) {
	workouts, err := db.QueryWorkouts(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(workouts))
	for i, w := range workouts {
		ids[i] = w.ID
	}
	sets, err := db.setsForWorkouts(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]models.WorkoutDetail, len(workouts))
	for i, w := range workouts {
		result[len(workouts)-1-i] = models.WorkoutDetail{Workout: w, Sets: sets[w.ID]}
	}
	return result, nil
}

// WorkoutDays returns the distinct UTC calendar days with a workout on or
// after since, newest first.
func (db *DB) WorkoutDays(ctx context.Context, userID int, since time.Time) ([]time.Time, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT (started_at AT TIME ZONE 'UTC')::date AS day
		 FROM workouts
		 WHERE user_id = $1 AND started_at >= $2
		 ORDER BY day DESC`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("querying workout days: %w", err)
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning workout day: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
