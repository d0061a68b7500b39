package storage

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/claude/liftlog/internal/analytics/records"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PRCheck decides whether a candidate set beats an exercise's prior bests.
type PRCheck func(prior records.Bests, c records.Candidate) (records.Type, bool)

const setColumns = `id, workout_id, exercise_id, set_order, weight, reps, duration_seconds,
	rir, is_warmup, time_under_tension_seconds, rest_seconds_after, is_pr, pr_type, created_at`

func scanSet(row interface{ Scan(...any) error }) (models.WorkoutSet, error) {
	var s models.WorkoutSet
	err := row.Scan(&s.ID, &s.WorkoutID, &s.ExerciseID, &s.SetOrder, &s.Weight, &s.Reps,
		&s.DurationSeconds, &s.RIR, &s.IsWarmup, &s.TimeUnderTensionSeconds,
		&s.RestSecondsAfter, &s.IsPR, &s.PRType, &s.CreatedAt)
	return s, err
}

// InsertSet stores a set in one of the user's workouts. When check is
// non-nil the set is compared against the exercise's prior bests and
// flagged; the read and the insert share a transaction that holds an
// advisory lock on (user, exercise).
func (db *DB) InsertSet(ctx context.Context, userID int, s models.WorkoutSet, check PRCheck) (*models.WorkoutSet, error) {
	var out models.WorkoutSet
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var owner int
		err := tx.QueryRow(ctx, `SELECT user_id FROM workouts WHERE id = $1`, s.WorkoutID).Scan(&owner)
		if err != nil {
			return rowErr("workout", err)
		}
		if owner != userID {
			return fmt.Errorf("workout %s: %w", s.WorkoutID, ErrNotFound)
		}
		var exOwner int
		err = tx.QueryRow(ctx, `SELECT user_id FROM exercises WHERE id = $1`, s.ExerciseID).Scan(&exOwner)
		if err != nil {
			return rowErr("exercise", err)
		}
		if exOwner != userID {
			return fmt.Errorf("exercise %s: %w", s.ExerciseID, ErrNotFound)
		}

		out, err = insertSet(ctx, tx, userID, s, check)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// insertSet must run inside a transaction so the advisory lock is released
// on commit.
func insertSet(ctx context.Context, q querier, userID int, s models.WorkoutSet, check PRCheck) (models.WorkoutSet, error) {
	s.IsPR, s.PRType = false, nil
	if check != nil && !s.IsWarmup {
		if err := lockExercise(ctx, q, userID, s.ExerciseID); err != nil {
			return models.WorkoutSet{}, err
		}
		prior, err := exerciseBests(ctx, q, userID, s.ExerciseID)
		if err != nil {
			return models.WorkoutSet{}, err
		}
		c := records.Candidate{Weight: s.Weight, Reps: s.Reps, DurationSeconds: s.DurationSeconds}
		if t, ok := check(prior, c); ok {
			pt := string(t)
			s.IsPR, s.PRType = true, &pt
		}
	}

	out, err := scanSet(q.QueryRow(ctx,
		`INSERT INTO workout_sets (workout_id, exercise_id, set_order, weight, reps, duration_seconds,
		 rir, is_warmup, time_under_tension_seconds, rest_seconds_after, is_pr, pr_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+setColumns,
		s.WorkoutID, s.ExerciseID, s.SetOrder, s.Weight, s.Reps, s.DurationSeconds,
		s.RIR, s.IsWarmup, s.TimeUnderTensionSeconds, s.RestSecondsAfter, s.IsPR, s.PRType,
	))
	if err != nil {
		return models.WorkoutSet{}, fmt.Errorf("inserting set: %w", err)
	}
	return out, nil
}

// lockExercise takes the transaction-scoped advisory lock on (user,
// exercise). Postgres advisory locks are reentrant within a session.
func lockExercise(ctx context.Context, q querier, userID int, exerciseID uuid.UUID) error {
	if _, err := q.Exec(ctx,
		`SELECT pg_advisory_xact_lock($1, hashtext($2::text))`,
		userID, exerciseID.String()); err != nil {
		return fmt.Errorf("locking exercise %s: %w", exerciseID, err)
	}
	return nil
}

// lockOrder returns the distinct IDs in ascending order.
func lockOrder(ids []uuid.UUID) []uuid.UUID {
	out := slices.Clone(ids)
	slices.SortFunc(out, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	return slices.Compact(out)
}

// lockExercises locks every exercise in ids in lockOrder.
func lockExercises(ctx context.Context, q querier, userID int, ids []uuid.UUID) error {
	for _, id := range lockOrder(ids) {
		if err := lockExercise(ctx, q, userID, id); err != nil {
			return err
		}
	}
	return nil
}

// lockImports serializes the imports of one user. Single-set inserts hold
// at most one exercise lock, so they cannot close a cycle with an import.
func lockImports(ctx context.Context, q querier, userID int) error {
	if _, err := q.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext('liftlog.import'), $1)`, userID); err != nil {
		return fmt.Errorf("locking imports of user %d: %w", userID, err)
	}
	return nil
}

// exerciseBests reads the all-time working-set maxima of an exercise.
func exerciseBests(ctx context.Context, q querier, userID int, exerciseID uuid.UUID) (records.Bests, error) {
	var b records.Bests
	err := q.QueryRow(ctx, `
		SELECT COALESCE(MAX(ws.weight), 0)::float8,
		       COALESCE(MAX(ws.weight * ws.reps), 0)::float8,
		       COALESCE(MAX(ws.duration_seconds), 0)
		FROM workout_sets ws
		JOIN workouts w ON w.id = ws.workout_id
		WHERE ws.exercise_id = $1 AND w.user_id = $2 AND NOT ws.is_warmup
	`, exerciseID, userID).Scan(&b.MaxWeight, &b.MaxVolume, &b.MaxDuration)
	if err != nil {
		return records.Bests{}, fmt.Errorf("querying bests for %s: %w", exerciseID, err)
	}
	return b, nil
}

// setsForWorkouts loads the sets of the given workouts keyed by workout.
func (db *DB) setsForWorkouts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]models.WorkoutSet, error) {
	result := make(map[uuid.UUID][]models.WorkoutSet, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setColumns+` FROM workout_sets
		 WHERE workout_id = ANY($1)
		 ORDER BY workout_id, set_order, created_at`,
		ids)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result[s.WorkoutID] = append(result[s.WorkoutID], s)
	}
	return result, rows.Err()
}
