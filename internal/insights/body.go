package insights

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/claude/liftlog/internal/analytics/bodycomp"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// BioInput is the editable part of a user's bio.
type BioInput struct {
	HeightCm float64 `json:"height_cm"`
	Age      int     `json:"age"`
	Sex      string  `json:"sex"`
}

func (in BioInput) validate() (bodycomp.Sex, error) {
	if !(in.HeightCm >= 50 && in.HeightCm <= 300) {
		return "", fmt.Errorf("height_cm must be between 50 and 300: %w", ErrInvalid)
	}
	if in.Age < 10 || in.Age > 120 {
		return "", fmt.Errorf("age must be between 10 and 120: %w", ErrInvalid)
	}
	sex, ok := bodycomp.ParseSex(in.Sex)
	if !ok {
		return "", fmt.Errorf("sex must be male or female: %w", ErrInvalid)
	}
	return sex, nil
}

// Bio returns the user's bio or storage.ErrNotFound.
func (s *Service) Bio(ctx context.Context, userID int) (*models.UserBio, error) {
	return s.store.GetBio(ctx, userID)
}

// UpsertBio validates and saves the user's bio.
func (s *Service) UpsertBio(ctx context.Context, userID int, in BioInput) (*models.UserBio, error) {
	sex, err := in.validate()
	if err != nil {
		return nil, err
	}
	return s.store.UpsertBio(ctx, models.UserBio{
		UserID:   userID,
		HeightCm: in.HeightCm,
		Age:      in.Age,
		Sex:      string(sex),
	})
}

// BodyLogInput is one weigh-in as submitted by a client.
type BodyLogInput struct {
	LoggedAt     *time.Time         `json:"logged_at"`
	WeightKg     float64            `json:"weight_kg"`
	BodyFatPct   *float64           `json:"body_fat_pct"`
	Measurements map[string]float64 `json:"measurements"`
}

func (in BodyLogInput) validate() error {
	if !(in.WeightKg > 0) || math.IsInf(in.WeightKg, 0) {
		return fmt.Errorf("weight_kg must be positive: %w", ErrInvalid)
	}
	if in.BodyFatPct != nil && !(*in.BodyFatPct >= 0 && *in.BodyFatPct <= 100) {
		return fmt.Errorf("body_fat_pct must be between 0 and 100: %w", ErrInvalid)
	}
	for k, v := range in.Measurements {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("measurement %q must be non-negative: %w", k, ErrInvalid)
		}
	}
	return nil
}

// LogBody stores a weigh-in with stats derived from the current bio. Without
// a bio the log is stored with no stats; RecomputeBodyLog fills them later.
func (s *Service) LogBody(ctx context.Context, userID int, in BodyLogInput) (*models.BodyLog, error) {
	defer s.observe("log_body", time.Now())
	if err := in.validate(); err != nil {
		return nil, err
	}

	l := models.BodyLog{
		UserID:       userID,
		WeightKg:     in.WeightKg,
		BodyFatPct:   in.BodyFatPct,
		Measurements: in.Measurements,
	}
	if in.LoggedAt != nil {
		l.LoggedAt = *in.LoggedAt
	}

	stats, err := s.statsFor(ctx, userID, l)
	if err != nil {
		return nil, err
	}
	l.Stats = stats

	out, err := s.store.InsertBodyLog(ctx, l)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CounterBodyLogs.Inc()
	}
	return out, nil
}

// RecomputeBodyLog re-derives a log's cached stats from its stored inputs
// and the current bio.
func (s *Service) RecomputeBodyLog(ctx context.Context, userID int, id uuid.UUID) (*models.BodyLog, error) {
	l, err := s.store.GetBodyLog(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.statsFor(ctx, userID, *l)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, fmt.Errorf("no bio saved, cannot compute stats: %w", ErrInvalid)
	}
	if err := s.store.UpdateBodyLogStats(ctx, userID, id, *stats); err != nil {
		return nil, err
	}
	l.Stats = stats
	return l, nil
}

// statsFor returns nil stats when the user has no bio yet.
func (s *Service) statsFor(ctx context.Context, userID int, l models.BodyLog) (*bodycomp.Stats, error) {
	bio, err := s.store.GetBio(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debug("no bio, skipping body stats", "user_id", userID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	st := s.body.Compute(bodycomp.Input{
		WeightKg:      l.WeightKg,
		Profile:       bio.Profile(),
		Measurements:  l.Measurements,
		ManualBodyFat: l.BodyFatPct,
	})
	return &st, nil
}

// BodyLogs returns logs in [start, end), newest first.
func (s *Service) BodyLogs(ctx context.Context, userID int, start, end time.Time) ([]models.BodyLog, error) {
	return s.store.QueryBodyLogs(ctx, userID, start, end)
}

// LatestBody returns the most recent log or storage.ErrNotFound.
func (s *Service) LatestBody(ctx context.Context, userID int) (*models.BodyLog, error) {
	return s.store.LatestBodyLog(ctx, userID)
}
