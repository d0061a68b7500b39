package insights

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/claude/liftlog/internal/analytics/strength"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// OneRMPoint is the estimated max of one set.
type OneRMPoint struct {
	Date         time.Time `json:"date"`
	Estimated1RM float64   `json:"estimated_1rm"`
}

// OneRMResult is the 1RM series of one exercise.
type OneRMResult struct {
	ExerciseID uuid.UUID             `json:"exercise_id"`
	Formula    strength.OneRMFormula `json:"formula"`
	Points     []OneRMPoint          `json:"points"`
}

// Exercises lists the user's exercises by name.
func (s *Service) Exercises(ctx context.Context, userID int) ([]models.Exercise, error) {
	return s.store.ListExercises(ctx, userID)
}

// OneRM estimates a one-rep max for every weighted set of an exercise in
// [start, end).
func (s *Service) OneRM(ctx context.Context, userID int, exerciseID uuid.UUID, formula string, start, end time.Time) (*OneRMResult, error) {
	defer s.observe("one_rm", time.Now())
	f, err := strength.ParseFormula(formula)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalid)
	}
	if _, err := s.store.GetExercise(ctx, userID, exerciseID); err != nil {
		return nil, err
	}
	sets, err := s.store.ExerciseSets(ctx, userID, exerciseID, start, end)
	if err != nil {
		return nil, err
	}

	res := &OneRMResult{ExerciseID: exerciseID, Formula: f, Points: []OneRMPoint{}}
	for _, st := range sets {
		if st.Weight == nil || st.Reps == nil || *st.Weight <= 0 || *st.Reps <= 0 {
			continue
		}
		res.Points = append(res.Points, OneRMPoint{
			Date:         st.StartedAt,
			Estimated1RM: round2(f.Estimate(*st.Weight, *st.Reps)),
		})
	}
	return res, nil
}

// ExerciseBests are the all-time bests of one exercise.
type ExerciseBests struct {
	BestWeight   *float64 `json:"best_weight"`
	BestReps     *int     `json:"best_reps"`
	BestVolume   *float64 `json:"best_volume"`
	Best1RM      *float64 `json:"best_1rm"`
	BestDuration *int     `json:"best_duration"`
}

// DailyProgress aggregates one exercise's working sets on one day.
type DailyProgress struct {
	Date         string  `json:"date"`
	Estimated1RM float64 `json:"estimated_1rm"`
	Volume       float64 `json:"volume"`
	MaxWeight    float64 `json:"max_weight"`
	Sets         int     `json:"sets"`
	Reps         int     `json:"reps"`
}

// HistorySet is one set of a recent workout.
type HistorySet struct {
	SetOrder        int      `json:"set_order"`
	Weight          *float64 `json:"weight"`
	Reps            *int     `json:"reps"`
	DurationSeconds *int     `json:"duration_seconds"`
	IsPR            bool     `json:"is_pr"`
}

// WorkoutHistory is one recent workout of an exercise.
type WorkoutHistory struct {
	WorkoutID uuid.UUID    `json:"workout_id"`
	StartedAt time.Time    `json:"started_at"`
	Sets      []HistorySet `json:"sets"`
}

// ExerciseStats is everything known about one exercise.
type ExerciseStats struct {
	ExerciseID     uuid.UUID        `json:"exercise_id"`
	Name           string           `json:"name"`
	TotalSets      int              `json:"total_sets"`
	TotalWorkouts  int              `json:"total_workouts"`
	FirstPerformed *time.Time       `json:"first_performed"`
	LastPerformed  *time.Time       `json:"last_performed"`
	PRs            ExerciseBests    `json:"prs"`
	Progression    []DailyProgress  `json:"progression"`
	RecentHistory  []WorkoutHistory `json:"recent_history"`
}

// recentWorkouts is how many workouts ExerciseStats lists in full.
const recentWorkouts = 10

// ExerciseStats summarizes an exercise's whole history. Best 1RM and the
// daily 1RM use the Brzycki formula.
func (s *Service) ExerciseStats(ctx context.Context, userID int, exerciseID uuid.UUID) (*ExerciseStats, error) {
	defer s.observe("exercise_stats", time.Now())
	ex, err := s.store.GetExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.GetExerciseTotals(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	sets, err := s.store.ExerciseSets(ctx, userID, exerciseID, time.Time{}, time.Now().AddDate(100, 0, 0))
	if err != nil {
		return nil, err
	}

	out := &ExerciseStats{
		ExerciseID:     ex.ID,
		Name:           ex.Name,
		TotalSets:      totals.TotalSets,
		TotalWorkouts:  totals.TotalWorkouts,
		FirstPerformed: totals.FirstPerformed,
		LastPerformed:  totals.LastPerformed,
		PRs: ExerciseBests{
			BestWeight:   totals.BestWeight,
			BestReps:     totals.BestReps,
			BestDuration: totals.BestDuration,
		},
		Progression:   dailyProgress(sets),
		RecentHistory: recentHistory(sets, recentWorkouts),
	}
	if totals.BestVolume != nil {
		v := round2(*totals.BestVolume)
		out.PRs.BestVolume = &v
	}
	for _, p := range out.Progression {
		if p.Estimated1RM > 0 && (out.PRs.Best1RM == nil || p.Estimated1RM > *out.PRs.Best1RM) {
			best := p.Estimated1RM
			out.PRs.Best1RM = &best
		}
	}
	return out, nil
}

// dailyProgress groups sets (oldest first) by UTC day.
func dailyProgress(sets []storage.ExerciseSet) []DailyProgress {
	out := []DailyProgress{}
	for _, st := range sets {
		day := st.StartedAt.UTC().Format(dateLayout)
		if len(out) == 0 || out[len(out)-1].Date != day {
			out = append(out, DailyProgress{Date: day})
		}
		p := &out[len(out)-1]
		p.Sets++
		if st.Reps != nil {
			p.Reps += *st.Reps
		}
		if st.Weight == nil {
			continue
		}
		p.MaxWeight = math.Max(p.MaxWeight, *st.Weight)
		if st.Reps != nil {
			p.Volume = round2(p.Volume + *st.Weight*float64(*st.Reps))
			p.Estimated1RM = math.Max(p.Estimated1RM, round2(strength.BrzyckiOneRM(*st.Weight, *st.Reps)))
		}
	}
	return out
}

// recentHistory returns the last n workouts, newest first.
func recentHistory(sets []storage.ExerciseSet, n int) []WorkoutHistory {
	var all []WorkoutHistory
	for _, st := range sets {
		if len(all) == 0 || all[len(all)-1].WorkoutID != st.WorkoutID {
			all = append(all, WorkoutHistory{WorkoutID: st.WorkoutID, StartedAt: st.StartedAt})
		}
		w := &all[len(all)-1]
		w.Sets = append(w.Sets, HistorySet{
			SetOrder:        st.SetOrder,
			Weight:          st.Weight,
			Reps:            st.Reps,
			DurationSeconds: st.DurationSeconds,
			IsPR:            st.IsPR,
		})
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	out := make([]WorkoutHistory, len(all))
	for i := range all {
		out[i] = all[len(all)-1-i]
	}
	return out
}

// TrophyRoom lists the records set in the current month or year.
type TrophyRoom struct {
	Period  string          `json:"period"`
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Count   int             `json:"count"`
	Records []storage.PRSet `json:"records"`
}

// TrophyRoom returns PR sets since the start of the current month or year
// (UTC). period is "month" or "year".
func (s *Service) TrophyRoom(ctx context.Context, userID int, period string, now time.Time) (*TrophyRoom, error) {
	now = now.UTC()
	var from time.Time
	switch period {
	case "", "month":
		period = "month"
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	case "year":
		from = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return nil, fmt.Errorf("period must be month or year: %w", ErrInvalid)
	}

	prs, err := s.store.PRSets(ctx, userID, from)
	if err != nil {
		return nil, err
	}
	if prs == nil {
		prs = []storage.PRSet{}
	}
	return &TrophyRoom{Period: period, From: from, To: now, Count: len(prs), Records: prs}, nil
}

// PlateauAlert flags an exercise whose recent sessions stopped improving.
type PlateauAlert struct {
	ExerciseID                 uuid.UUID `json:"exercise_id"`
	ExerciseName               string    `json:"exercise_name"`
	SessionsWithoutImprovement int       `json:"sessions_without_improvement"`
	LastWorkoutID              uuid.UUID `json:"last_workout_id"`
}

// PlateauAlerts checks the last few sessions of every exercise.
func (s *Service) PlateauAlerts(ctx context.Context, userID int) ([]PlateauAlert, error) {
	defer s.observe("plateau_alerts", time.Now())
	rows, err := s.store.RecentSessionBests(ctx, userID, s.opts.PlateauSessions)
	if err != nil {
		return nil, err
	}

	alerts := []PlateauAlert{}
	flush := func(group []storage.SessionBests) {
		if len(group) == 0 {
			return
		}
		sessions := make([]strength.SessionBest, len(group))
		for i, g := range group {
			sessions[i] = strength.SessionBest{MaxWeight: g.MaxWeight, MaxVolume: g.MaxVolume, MaxDuration: g.MaxDuration}
		}
		if n, ok := strength.DetectPlateau(sessions, s.opts.PlateauThreshold); ok {
			alerts = append(alerts, PlateauAlert{
				ExerciseID:                 group[0].ExerciseID,
				ExerciseName:               group[0].ExerciseName,
				SessionsWithoutImprovement: n,
				LastWorkoutID:              group[0].WorkoutID,
			})
		}
	}

	start := 0
	for i := 1; i <= len(rows); i++ {
		if i == len(rows) || rows[i].ExerciseID != rows[start].ExerciseID {
			flush(rows[start:i])
			start = i
		}
	}
	return alerts, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
