package insights

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/analytics/recovery"
	"github.com/claude/liftlog/internal/analytics/streak"
	"golang.org/x/sync/errgroup"
)

// Overview is the dashboard snapshot.
type Overview struct {
	Streak       streak.Result    `json:"streak"`
	Recovery     []recovery.Score `json:"recovery"`
	CaloriesWeek CaloriesSummary  `json:"calories_week"`
}

// Overview computes streak, recovery and the last seven days of calories
// concurrently. The first error cancels the rest.
func (s *Service) Overview(ctx context.Context, userID int, now time.Time) (*Overview, error) {
	var out Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := s.Streak(gctx, userID, now)
		out.Streak = res
		return err
	})
	g.Go(func() error {
		res, err := s.Recovery(gctx, userID, now)
		out.Recovery = res
		return err
	})
	g.Go(func() error {
		end := streak.Day(now.UTC()).AddDate(0, 0, 1)
		res, err := s.CaloriesSummary(gctx, userID, end.AddDate(0, 0, -7), end)
		out.CaloriesWeek = res
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
