package insights

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/analytics/bodycomp"
	"github.com/claude/liftlog/internal/analytics/records"
	"github.com/claude/liftlog/internal/analytics/recovery"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeStore is an in-memory Store. Fields may be set directly by tests.
type fakeStore struct {
	mu sync.Mutex

	bio       *models.UserBio
	bodyLogs  []models.BodyLog
	sets      []models.WorkoutSet
	days      []time.Time
	daysSince time.Time
	workouts  []models.WorkoutDetail
	muscles   []models.MuscleGroup
	muscleSet []recovery.SetRecord
	exercises map[uuid.UUID]models.Exercise
	exSets    []storage.ExerciseSet
	totals    storage.ExerciseTotals
	prs       []storage.PRSet
	prsSince  time.Time
	bests     []storage.SessionBests
	volumes   []storage.SessionVolume
	volLimit  int

	muscleErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{exercises: make(map[uuid.UUID]models.Exercise)}
}

func newTestService(st Store) (*Service, *metrics.Manager) {
	m := metrics.NewTestManager()
	return New(st, Options{}, m, slog.New(slog.NewTextHandler(io.Discard, nil))), m
}

func (f *fakeStore) GetBio(_ context.Context, _ int) (*models.UserBio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bio == nil {
		return nil, storage.ErrNotFound
	}
	b := *f.bio
	return &b, nil
}

func (f *fakeStore) UpsertBio(_ context.Context, bio models.UserBio) (*models.UserBio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bio.UpdatedAt = time.Now()
	f.bio = &bio
	return &bio, nil
}

func (f *fakeStore) InsertBodyLog(_ context.Context, l models.BodyLog) (*models.BodyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = uuid.New()
	f.bodyLogs = append(f.bodyLogs, l)
	return &l, nil
}

func (f *fakeStore) GetBodyLog(_ context.Context, userID int, id uuid.UUID) (*models.BodyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.bodyLogs {
		if l.ID == id && l.UserID == userID {
			return &l, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) QueryBodyLogs(_ context.Context, _ int, start, end time.Time) ([]models.BodyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BodyLog
	for _, l := range f.bodyLogs {
		if !l.LoggedAt.Before(start) && l.LoggedAt.Before(end) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) LatestBodyLog(_ context.Context, _ int) (*models.BodyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bodyLogs) == 0 {
		return nil, storage.ErrNotFound
	}
	l := f.bodyLogs[len(f.bodyLogs)-1]
	return &l, nil
}

func (f *fakeStore) UpdateBodyLogStats(_ context.Context, _ int, id uuid.UUID, stats bodycomp.Stats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bodyLogs {
		if f.bodyLogs[i].ID == id {
			f.bodyLogs[i].Stats = &stats
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) WeightHistory(_ context.Context, _ int) ([]models.WeightPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.WeightPoint, 0, len(f.bodyLogs))
	for _, l := range f.bodyLogs {
		out = append(out, models.WeightPoint{At: l.LoggedAt, WeightKg: l.WeightKg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

// InsertSet mirrors the storage contract: prior bests exclude warmups and
// the candidate itself.
func (f *fakeStore) InsertSet(_ context.Context, _ int, s models.WorkoutSet, check storage.PRCheck) (*models.WorkoutSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if check != nil && !s.IsWarmup {
		var history []records.Candidate
		for _, prev := range f.sets {
			if prev.ExerciseID == s.ExerciseID && !prev.IsWarmup {
				history = append(history, records.Candidate{Weight: prev.Weight, Reps: prev.Reps, DurationSeconds: prev.DurationSeconds})
			}
		}
		c := records.Candidate{Weight: s.Weight, Reps: s.Reps, DurationSeconds: s.DurationSeconds}
		if t, ok := check(records.BestsOf(history), c); ok {
			pt := string(t)
			s.IsPR, s.PRType = true, &pt
		}
	}
	s.ID = uuid.New()
	f.sets = append(f.sets, s)
	return &s, nil
}

func (f *fakeStore) WorkoutDays(_ context.Context, _ int, since time.Time) ([]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.daysSince = since
	return f.days, nil
}

func (f *fakeStore) QueryWorkoutDetails(_ context.Context, _ int, start, end time.Time) ([]models.WorkoutDetail, error) {
	var out []models.WorkoutDetail
	for _, w := range f.workouts {
		if !w.StartedAt.Before(start) && w.StartedAt.Before(end) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) ListMuscleGroups(_ context.Context) ([]models.MuscleGroup, error) {
	return f.muscles, nil
}

func (f *fakeStore) MuscleSets(_ context.Context, _ int, start, end time.Time) ([]recovery.SetRecord, error) {
	if f.muscleErr != nil {
		return nil, f.muscleErr
	}
	var out []recovery.SetRecord
	for _, s := range f.muscleSet {
		if !s.PerformedAt.Before(start) && s.PerformedAt.Before(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListExercises(_ context.Context, _ int) ([]models.Exercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Exercise, 0, len(f.exercises))
	for _, e := range f.exercises {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) GetExercise(_ context.Context, _ int, id uuid.UUID) (*models.Exercise, error) {
	e, ok := f.exercises[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &e, nil
}

func (f *fakeStore) ExerciseSets(_ context.Context, _ int, _ uuid.UUID, start, end time.Time) ([]storage.ExerciseSet, error) {
	var out []storage.ExerciseSet
	for _, s := range f.exSets {
		if !s.StartedAt.Before(start) && s.StartedAt.Before(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) GetExerciseTotals(_ context.Context, _ int, _ uuid.UUID) (*storage.ExerciseTotals, error) {
	t := f.totals
	return &t, nil
}

func (f *fakeStore) PRSets(_ context.Context, _ int, since time.Time) ([]storage.PRSet, error) {
	f.prsSince = since
	return f.prs, nil
}

func (f *fakeStore) RecentSessionBests(_ context.Context, _, perExercise int) ([]storage.SessionBests, error) {
	if perExercise <= 0 {
		return nil, errors.New("perExercise must be positive")
	}
	return f.bests, nil
}

func (f *fakeStore) TopExerciseVolumes(_ context.Context, _, limit int) ([]storage.SessionVolume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volLimit = limit
	return f.volumes, nil
}

// LatestSessionSets scans workouts newest first for the exercise.
func (f *fakeStore) LatestSessionSets(_ context.Context, userID int, exerciseID uuid.UUID, exclude *uuid.UUID) (*storage.SessionSets, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.workouts) - 1; i >= 0; i-- {
		w := f.workouts[i]
		if w.UserID != userID || (exclude != nil && w.ID == *exclude) {
			continue
		}
		out := storage.SessionSets{WorkoutID: w.ID, StartedAt: w.StartedAt}
		for _, st := range w.Sets {
			if st.ExerciseID == exerciseID {
				out.Sets = append(out.Sets, st)
			}
		}
		if len(out.Sets) > 0 {
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }
func strp(v string) *string  { return &v }
