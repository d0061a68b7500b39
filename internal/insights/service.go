// Package insights fetches rows from storage, runs the analytics packages
// over them and persists whatever is cached.
package insights

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/analytics/bodycomp"
	"github.com/claude/liftlog/internal/analytics/calories"
	"github.com/claude/liftlog/internal/analytics/recovery"
	"github.com/claude/liftlog/internal/analytics/streak"
	"github.com/claude/liftlog/internal/analytics/strength"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// ErrInvalid marks input rejected before reaching storage.
var ErrInvalid = errors.New("invalid input")

// Store is the persistence the service needs. *storage.DB implements it.
type Store interface {
	GetBio(ctx context.Context, userID int) (*models.UserBio, error)
	UpsertBio(ctx context.Context, bio models.UserBio) (*models.UserBio, error)

	InsertBodyLog(ctx context.Context, l models.BodyLog) (*models.BodyLog, error)
	GetBodyLog(ctx context.Context, userID int, id uuid.UUID) (*models.BodyLog, error)
	QueryBodyLogs(ctx context.Context, userID int, start, end time.Time) ([]models.BodyLog, error)
	LatestBodyLog(ctx context.Context, userID int) (*models.BodyLog, error)
	UpdateBodyLogStats(ctx context.Context, userID int, id uuid.UUID, stats bodycomp.Stats) error
	WeightHistory(ctx context.Context, userID int) ([]models.WeightPoint, error)

	InsertSet(ctx context.Context, userID int, s models.WorkoutSet, check storage.PRCheck) (*models.WorkoutSet, error)
	WorkoutDays(ctx context.Context, userID int, since time.Time) ([]time.Time, error)
	QueryWorkoutDetails(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutDetail, error)

	ListMuscleGroups(ctx context.Context) ([]models.MuscleGroup, error)
	MuscleSets(ctx context.Context, userID int, start, end time.Time) ([]recovery.SetRecord, error)

	ListExercises(ctx context.Context, userID int) ([]models.Exercise, error)
	GetExercise(ctx context.Context, userID int, id uuid.UUID) (*models.Exercise, error)
	ExerciseSets(ctx context.Context, userID int, exerciseID uuid.UUID, start, end time.Time) ([]storage.ExerciseSet, error)
	GetExerciseTotals(ctx context.Context, userID int, exerciseID uuid.UUID) (*storage.ExerciseTotals, error)
	PRSets(ctx context.Context, userID int, since time.Time) ([]storage.PRSet, error)
	RecentSessionBests(ctx context.Context, userID, perExercise int) ([]storage.SessionBests, error)
	TopExerciseVolumes(ctx context.Context, userID, limit int) ([]storage.SessionVolume, error)
	LatestSessionSets(ctx context.Context, userID int, exerciseID uuid.UUID, exclude *uuid.UUID) (*storage.SessionSets, error)
}

// Options tune the service. Zero values fall back to defaults.
type Options struct {
	StreakLookbackDays int
	PlateauThreshold   int
	// PlateauSessions is how many recent sessions per exercise are compared.
	PlateauSessions  int
	DefaultIntensity string
}

func (o Options) withDefaults() Options {
	if o.StreakLookbackDays <= 0 {
		o.StreakLookbackDays = streak.LookbackDays
	}
	if o.PlateauThreshold <= 0 {
		o.PlateauThreshold = strength.DefaultPlateauThreshold
	}
	if o.PlateauSessions <= 0 {
		o.PlateauSessions = o.PlateauThreshold + 1
	}
	return o
}

// Service is safe for concurrent use.
type Service struct {
	store    Store
	opts     Options
	body     *bodycomp.Estimator
	calories *calories.Estimator
	recovery recovery.Model
	metrics  *metrics.Manager
	logger   *slog.Logger
}

// New creates a Service. m may be nil when metrics are not exported.
func New(store Store, opts Options, m *metrics.Manager, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		opts:     opts.withDefaults(),
		body:     bodycomp.NewEstimator(bodycomp.DefaultReference()),
		calories: calories.New(calories.DefaultMETs()),
		recovery: recovery.DefaultModel(),
		metrics:  m,
		logger:   logger,
	}
}

// observe records how long an analytics operation took.
func (s *Service) observe(op string, begin time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.HistAnalyticsLatency.WithLabelValues(op).Observe(time.Since(begin).Seconds())
}
