package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ImportedSet is a set whose exercise is known only by name.
type ImportedSet struct {
	ExerciseName string
	Equipment    string
	Set          models.WorkoutSet
}

// ImportOutcome counts what one imported workout wrote.
type ImportOutcome struct {
	Replaced     bool
	SetsInserted int
	PRsDetected  int
}

// ReplaceImportedWorkout stores an externally sourced workout. An earlier
// import with the same source and start time is deleted first, sets
// included, so re-importing an export is idempotent. Imports of one user
// run one at a time, and every exercise checked for records is locked
// before the first set is written.
func (db *DB) ReplaceImportedWorkout(ctx context.Context, w models.Workout, sets []ImportedSet, check PRCheck) (ImportOutcome, error) {
	var out ImportOutcome
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockImports(ctx, tx, w.UserID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`DELETE FROM workouts WHERE user_id = $1 AND source = $2 AND started_at = $3`,
			w.UserID, w.Source, w.StartedAt)
		if err != nil {
			return fmt.Errorf("deleting previous import: %w", err)
		}
		out.Replaced = tag.RowsAffected() > 0

		stored, err := insertWorkout(ctx, tx, w)
		if err != nil {
			return err
		}

		exercises := make(map[[2]string]uuid.UUID)
		resolved := make([]models.WorkoutSet, len(sets))
		var checked []uuid.UUID
		for i, is := range sets {
			key := [2]string{is.ExerciseName, is.Equipment}
			id, ok := exercises[key]
			if !ok {
				id, err = findOrCreateExercise(ctx, tx, w.UserID, is.ExerciseName, is.Equipment)
				if err != nil {
					return err
				}
				exercises[key] = id
			}
			resolved[i] = is.Set
			resolved[i].ExerciseID = id
			resolved[i].WorkoutID = stored.ID
			if check != nil && !is.Set.IsWarmup {
				checked = append(checked, id)
			}
		}

		// insertSet re-enters the exercise locks taken here.
		if err := lockExercises(ctx, tx, w.UserID, checked); err != nil {
			return err
		}

		for _, s := range resolved {
			inserted, err := insertSet(ctx, tx, w.UserID, s, check)
			if err != nil {
				return err
			}
			out.SetsInserted++
			if inserted.IsPR {
				out.PRsDetected++
			}
		}
		return nil
	})
	if err != nil {
		return ImportOutcome{}, fmt.Errorf("importing workout %s: %w", w.StartedAt.Format("2006-01-02 15:04"), err)
	}
	return out, nil
}
