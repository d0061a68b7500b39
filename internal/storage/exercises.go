package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

const exerciseColumns = `id, user_id, name, equipment, primary_muscle_group_id,
	secondary_muscle_group_id, tertiary_muscle_group_id, created_at`

func scanExercise(row interface{ Scan(...any) error }) (models.Exercise, error) {
	var e models.Exercise
	err := row.Scan(&e.ID, &e.UserID, &e.Name, &e.Equipment, &e.PrimaryMuscleID,
		&e.SecondaryMuscleID, &e.TertiaryMuscleID, &e.CreatedAt)
	return e, err
}

// ListMuscleGroups returns the muscle catalog ordered by name.
func (db *DB) ListMuscleGroups(ctx context.Context) ([]models.MuscleGroup, error) {
	rows, err := db.Pool.Query(ctx, `SELECT id, name FROM muscle_groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying muscle groups: %w", err)
	}
	defer rows.Close()

	var result []models.MuscleGroup
	for rows.Next() {
		var g models.MuscleGroup
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scanning muscle group: %w", err)
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// ListExercises returns the user's exercises ordered by name.
func (db *DB) ListExercises(ctx context.Context, userID int) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE user_id = $1 ORDER BY name, equipment`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetExercise returns one of the user's exercises.
func (db *DB) GetExercise(ctx context.Context, userID int, id uuid.UUID) (*models.Exercise, error) {
	e, err := scanExercise(db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, rowErr("exercise", err)
	}
	return &e, nil
}

// CreateExercise inserts a new exercise.
func (db *DB) CreateExercise(ctx context.Context, e models.Exercise) (*models.Exercise, error) {
	out, err := scanExercise(db.Pool.QueryRow(ctx,
		`INSERT INTO exercises (user_id, name, equipment, primary_muscle_group_id,
		 secondary_muscle_group_id, tertiary_muscle_group_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+exerciseColumns,
		e.UserID, e.Name, e.Equipment, e.PrimaryMuscleID, e.SecondaryMuscleID, e.TertiaryMuscleID,
	))
	if err != nil {
		return nil, fmt.Errorf("inserting exercise %q: %w", e.Name, err)
	}
	return &out, nil
}

// findOrCreateExercise resolves an exercise by name and equipment, creating
// it without a muscle mapping when it does not exist yet.
func findOrCreateExercise(ctx context.Context, q querier, userID int, name, equipment string) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.QueryRow(ctx, `
		INSERT INTO exercises (user_id, name, equipment)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, name, equipment) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, userID, name, equipment).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolving exercise %q: %w", name, err)
	}
	return id, nil
}
