package insights

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/claude/liftlog/internal/analytics/records"
	"github.com/claude/liftlog/internal/analytics/recovery"
	"github.com/claude/liftlog/internal/analytics/streak"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// SetInput is one set as submitted by a client.
type SetInput struct {
	ExerciseID              uuid.UUID `json:"exercise_id"`
	SetOrder                int       `json:"set_order"`
	Weight                  *float64  `json:"weight"`
	Reps                    *int      `json:"reps"`
	DurationSeconds         *int      `json:"duration_seconds"`
	RIR                     *float64  `json:"rir"`
	IsWarmup                bool      `json:"is_warmup"`
	TimeUnderTensionSeconds *int      `json:"time_under_tension_seconds"`
	RestSecondsAfter        *int      `json:"rest_seconds_after"`
}

func (in SetInput) validate() error {
	if in.ExerciseID == uuid.Nil {
		return fmt.Errorf("exercise_id is required: %w", ErrInvalid)
	}
	if in.Weight == nil && in.Reps == nil && in.DurationSeconds == nil {
		return fmt.Errorf("one of weight, reps or duration_seconds is required: %w", ErrInvalid)
	}
	if in.Weight != nil && (!(*in.Weight >= 0) || math.IsInf(*in.Weight, 0)) {
		return fmt.Errorf("weight must be non-negative: %w", ErrInvalid)
	}
	for name, v := range map[string]*int{
		"reps":                       in.Reps,
		"duration_seconds":           in.DurationSeconds,
		"time_under_tension_seconds": in.TimeUnderTensionSeconds,
		"rest_seconds_after":         in.RestSecondsAfter,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative: %w", name, ErrInvalid)
		}
	}
	return nil
}

// LogSet stores a set and flags it when it beats the exercise's prior bests.
func (s *Service) LogSet(ctx context.Context, userID int, workoutID uuid.UUID, in SetInput) (*models.WorkoutSet, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	out, err := s.store.InsertSet(ctx, userID, models.WorkoutSet{
		WorkoutID:               workoutID,
		ExerciseID:              in.ExerciseID,
		SetOrder:                in.SetOrder,
		Weight:                  in.Weight,
		Reps:                    in.Reps,
		DurationSeconds:         in.DurationSeconds,
		RIR:                     in.RIR,
		IsWarmup:                in.IsWarmup,
		TimeUnderTensionSeconds: in.TimeUnderTensionSeconds,
		RestSecondsAfter:        in.RestSecondsAfter,
	}, records.Detect)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CounterSetsLogged.Inc()
		if out.IsPR && out.PRType != nil {
			s.metrics.CounterPRs.WithLabelValues(*out.PRType).Inc()
		}
	}
	if out.IsPR {
		s.logger.Info("personal record", "user_id", userID, "exercise_id", out.ExerciseID, "type", *out.PRType)
	}
	return out, nil
}

// Streak counts workout-day streaks in UTC calendar days.
func (s *Service) Streak(ctx context.Context, userID int, now time.Time) (streak.Result, error) {
	defer s.observe("streak", time.Now())
	today := streak.Day(now.UTC())
	days, err := s.store.WorkoutDays(ctx, userID, today.AddDate(0, 0, -s.opts.StreakLookbackDays))
	if err != nil {
		return streak.Result{}, err
	}
	return streak.Compute(days, today), nil
}

// Recovery scores every catalog muscle from the last 28 days of sets.
func (s *Service) Recovery(ctx context.Context, userID int, now time.Time) ([]recovery.Score, error) {
	defer s.observe("recovery", time.Now())
	muscles, err := s.muscles(ctx)
	if err != nil {
		return nil, err
	}
	sets, err := s.store.MuscleSets(ctx, userID, now.Add(-s.recovery.Window), now.Add(time.Second))
	if err != nil {
		return nil, err
	}
	return s.recovery.Compute(muscles, sets, now), nil
}

// MuscleVolume sums role-weighted volume per muscle in [start, end).
func (s *Service) MuscleVolume(ctx context.Context, userID int, start, end time.Time) ([]recovery.MuscleVolume, error) {
	defer s.observe("muscle_volume", time.Now())
	muscles, err := s.muscles(ctx)
	if err != nil {
		return nil, err
	}
	sets, err := s.store.MuscleSets(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return recovery.VolumeByMuscle(muscles, sets), nil
}

func (s *Service) muscles(ctx context.Context) ([]recovery.Muscle, error) {
	groups, err := s.store.ListMuscleGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]recovery.Muscle, len(groups))
	for i, g := range groups {
		out[i] = recovery.Muscle{ID: g.ID, Name: g.Name}
	}
	return out, nil
}
