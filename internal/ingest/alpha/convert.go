package alpha

import (
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// Source tags workouts imported from Alpha Progression.
const Source = "alpha"

// ToWorkout maps a parsed session to a workout and its sets. Sets are
// numbered in export order, warmups before the working sets of each
// exercise. Bodyweight-plus sets carry only the added load; bodyweight-only
// sets carry no weight.
func ToWorkout(userID int, s models.AlphaSession) (models.Workout, []storage.ImportedSet) {
	w := models.Workout{
		UserID:    userID,
		Name:      s.Name,
		StartedAt: s.Date,
		Source:    Source,
	}
	if secs := s.DurationSeconds(); secs > 0 {
		end := s.Date.Add(time.Duration(secs) * time.Second)
		w.DurationSeconds = &secs
		w.EndedAt = &end
	}

	var sets []storage.ImportedSet
	order := 0
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			order++
			reps := set.Reps
			ws := models.WorkoutSet{
				SetOrder: order,
				Reps:     &reps,
				IsWarmup: set.IsWarmup,
			}
			if !set.IsBodyweightPlus || set.WeightKg > 0 {
				weight := set.WeightKg
				ws.Weight = &weight
			}
			if !set.IsWarmup {
				rir := set.RIR
				ws.RIR = &rir
			}
			sets = append(sets, storage.ImportedSet{
				ExerciseName: ex.Name,
				Equipment:    ex.Equipment,
				Set:          ws,
			})
		}
	}
	return w, sets
}
