package insights

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/analytics/calories"
	"github.com/claude/liftlog/internal/analytics/streak"
	"github.com/claude/liftlog/internal/models"
)

const dateLayout = "2006-01-02"

// DailyCalories is the estimated kcal burned on one day.
type DailyCalories struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
}

// CaloriesSummary totals estimated kcal over a range.
type CaloriesSummary struct {
	TotalCalories float64 `json:"total_calories"`
	WorkoutCount  int     `json:"workout_count"`
	DailyAverage  float64 `json:"daily_average"`
}

type workoutCalories struct {
	day  string
	kcal float64
}

// workoutCalories estimates every workout in [start, end) that has a known
// body weight and a usable duration. It also returns how many workouts the
// range holds, estimated or not.
func (s *Service) workoutCalories(ctx context.Context, userID int, start, end time.Time) ([]workoutCalories, int, error) {
	workouts, err := s.store.QueryWorkoutDetails(ctx, userID, start, end)
	if err != nil {
		return nil, 0, err
	}
	if len(workouts) == 0 {
		return nil, 0, nil
	}
	weights, err := s.store.WeightHistory(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	var out []workoutCalories
	for _, w := range workouts {
		weight, ok := nearestWeight(weights, w.StartedAt)
		if !ok {
			continue
		}
		if s.calories.ActiveDurationMinutes(w.DurationSeconds, len(w.Sets)) <= 0 {
			continue
		}
		intensity := s.opts.DefaultIntensity
		if w.Intensity != nil {
			intensity = *w.Intensity
		}
		kcal := s.calories.FromSets(weight, w.DurationSeconds, intensity, setSignals(w.Sets))
		out = append(out, workoutCalories{day: w.StartedAt.UTC().Format(dateLayout), kcal: kcal})
	}
	return out, len(workouts), nil
}

func setSignals(sets []models.WorkoutSet) []calories.SetSignal {
	out := make([]calories.SetSignal, len(sets))
	for i, st := range sets {
		out[i] = calories.SetSignal{
			Weight:                  st.Weight,
			Reps:                    st.Reps,
			TimeUnderTensionSeconds: st.TimeUnderTensionSeconds,
			RestSecondsAfter:        st.RestSecondsAfter,
		}
	}
	return out
}

// nearestWeight picks the latest weight logged on or before the workout's
// day, else the earliest one after it. history must be sorted oldest first.
func nearestWeight(history []models.WeightPoint, at time.Time) (float64, bool) {
	if len(history) == 0 {
		return 0, false
	}
	cutoff := streak.Day(at.UTC()).AddDate(0, 0, 1)
	i := sort.Search(len(history), func(i int) bool {
		return !history[i].At.Before(cutoff)
	})
	if i > 0 {
		return history[i-1].WeightKg, true
	}
	return history[0].WeightKg, true
}

// CaloriesHistory returns per-day estimated kcal, oldest first. Each workout
// is rounded to whole kcal before summing.
func (s *Service) CaloriesHistory(ctx context.Context, userID int, start, end time.Time) ([]DailyCalories, error) {
	defer s.observe("calories_history", time.Now())
	per, _, err := s.workoutCalories(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]float64)
	for _, wc := range per {
		byDay[wc.day] += math.Round(wc.kcal)
	}
	out := make([]DailyCalories, 0, len(byDay))
	for d, kcal := range byDay {
		out = append(out, DailyCalories{Date: d, Calories: kcal})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// CaloriesSummary totals kcal over [start, end). WorkoutCount includes
// workouts that could not be estimated. The daily average spreads the total
// over every day in the range, trained or not.
func (s *Service) CaloriesSummary(ctx context.Context, userID int, start, end time.Time) (CaloriesSummary, error) {
	defer s.observe("calories_summary", time.Now())
	per, count, err := s.workoutCalories(ctx, userID, start, end)
	if err != nil {
		return CaloriesSummary{}, err
	}

	var total float64
	for _, wc := range per {
		total += wc.kcal
	}
	days := math.Max(math.Ceil(end.Sub(start).Hours()/24), 1)
	return CaloriesSummary{
		TotalCalories: math.Round(total),
		WorkoutCount:  count,
		DailyAverage:  math.Round(total/days*10) / 10,
	}, nil
}
