package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/analytics/strength"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// radarExercises is how many of the most logged exercises the plateau radar
// charts.
const radarExercises = 6

// RadarEntry is one exercise on the plateau radar.
type RadarEntry struct {
	ExerciseID   uuid.UUID `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	strength.Radar
}

// PlateauRadar compares best and recent session volume of the most logged
// exercises, most logged first.
func (s *Service) PlateauRadar(ctx context.Context, userID int) ([]RadarEntry, error) {
	defer s.observe("plateau_radar", time.Now())
	rows, err := s.store.TopExerciseVolumes(ctx, userID, radarExercises)
	if err != nil {
		return nil, err
	}

	out := []RadarEntry{}
	start := 0
	for i := 1; i <= len(rows); i++ {
		if i < len(rows) && rows[i].ExerciseID == rows[start].ExerciseID {
			continue
		}
		history := make([]float64, 0, i-start)
		for _, r := range rows[start:i] {
			history = append(history, r.Volume)
		}
		if radar, ok := strength.PlateauRadar(history); ok {
			out = append(out, RadarEntry{
				ExerciseID:   rows[start].ExerciseID,
				ExerciseName: rows[start].ExerciseName,
				Radar:        radar,
			})
		}
		start = i
	}
	return out, nil
}

// WorkoutTonnage is the total load moved in one workout.
type WorkoutTonnage struct {
	WorkoutID uuid.UUID `json:"workout_id"`
	StartedAt time.Time `json:"started_at"`
	Tonnage   float64   `json:"tonnage"`
}

// TonnageReport lists tonnage per workout over a range.
type TonnageReport struct {
	From     time.Time        `json:"from"`
	To       time.Time        `json:"to"`
	Workouts []WorkoutTonnage `json:"workouts"`
}

// tonnage sums weight x reps over every set, warmups included. Missing reps
// count as zero.
func tonnage(sets []models.WorkoutSet) float64 {
	var t float64
	for _, st := range sets {
		if st.Weight == nil || st.Reps == nil {
			continue
		}
		t += *st.Weight * float64(*st.Reps)
	}
	return round2(t)
}

// Tonnage reports every workout with at least one set in [start, end),
// oldest first.
func (s *Service) Tonnage(ctx context.Context, userID int, start, end time.Time) (*TonnageReport, error) {
	defer s.observe("tonnage", time.Now())
	workouts, err := s.store.QueryWorkoutDetails(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	rep := &TonnageReport{From: start, To: end, Workouts: []WorkoutTonnage{}}
	for _, w := range workouts {
		if len(w.Sets) == 0 {
			continue
		}
		rep.Workouts = append(rep.Workouts, WorkoutTonnage{
			WorkoutID: w.ID,
			StartedAt: w.StartedAt,
			Tonnage:   tonnage(w.Sets),
		})
	}
	return rep, nil
}

// TrainingDay is one day of the consistency calendar.
type TrainingDay struct {
	Date            string  `json:"date"`
	Workouts        int     `json:"workouts"`
	DurationSeconds int     `json:"duration_seconds"`
	Tonnage         float64 `json:"tonnage"`
}

// ConsistencyCalendar lists the trained days of a month or a year.
type ConsistencyCalendar struct {
	Year  int           `json:"year"`
	Month *int          `json:"month"`
	Days  []TrainingDay `json:"days"`
}

// Consistency builds the training calendar of year, or of one month when
// month is 1 to 12. A month of 0 means the whole year. Days are UTC and
// include workouts without sets.
func (s *Service) Consistency(ctx context.Context, userID, year, month int) (*ConsistencyCalendar, error) {
	defer s.observe("consistency", time.Now())
	if year < 1 || year > 9999 {
		return nil, fmt.Errorf("year %d out of range: %w", year, ErrInvalid)
	}
	if month < 0 || month > 12 {
		return nil, fmt.Errorf("month %d out of range: %w", month, ErrInvalid)
	}

	cal := &ConsistencyCalendar{Year: year, Days: []TrainingDay{}}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	if month > 0 {
		m := month
		cal.Month = &m
		start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	}

	workouts, err := s.store.QueryWorkoutDetails(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	for _, w := range workouts {
		day := w.StartedAt.UTC().Format(dateLayout)
		if n := len(cal.Days); n == 0 || cal.Days[n-1].Date != day {
			cal.Days = append(cal.Days, TrainingDay{Date: day})
		}
		d := &cal.Days[len(cal.Days)-1]
		d.Workouts++
		if w.DurationSeconds != nil {
			d.DurationSeconds += *w.DurationSeconds
		}
		d.Tonnage = round2(d.Tonnage + tonnage(w.Sets))
	}
	return cal, nil
}

// PreviousSession is what was done on an exercise last time.
type PreviousSession struct {
	WorkoutID        *uuid.UUID          `json:"workout_id"`
	WorkoutStartedAt *time.Time          `json:"workout_started_at,omitempty"`
	Sets             []models.WorkoutSet `json:"sets"`
	Message          string              `json:"message,omitempty"`
}

// PreviousSession returns the exercise's sets from its most recent workout,
// skipping excludeWorkout when non-nil so a workout in progress does not
// match itself. An exercise never performed yields an empty session.
func (s *Service) PreviousSession(ctx context.Context, userID int, exerciseID uuid.UUID, excludeWorkout *uuid.UUID) (*PreviousSession, error) {
	if _, err := s.store.GetExercise(ctx, userID, exerciseID); err != nil {
		return nil, err
	}
	last, err := s.store.LatestSessionSets(ctx, userID, exerciseID, excludeWorkout)
	if errors.Is(err, storage.ErrNotFound) {
		return &PreviousSession{Sets: []models.WorkoutSet{}, Message: "No previous session for this exercise."}, nil
	}
	if err != nil {
		return nil, err
	}
	return &PreviousSession{WorkoutID: &last.WorkoutID, WorkoutStartedAt: &last.StartedAt, Sets: last.Sets}, nil
}
