package mcp

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/analytics/recovery"
	"github.com/claude/liftlog/internal/analytics/streak"
	"github.com/claude/liftlog/internal/insights"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *insights.Service
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	Streak(ctx context.Context, userID int, now time.Time) (streak.Result, error)
	Recovery(ctx context.Context, userID int, now time.Time) ([]recovery.Score, error)
	LatestBody(ctx context.Context, userID int) (*models.BodyLog, error)
	BodyLogs(ctx context.Context, userID int, start, end time.Time) ([]models.BodyLog, error)
	CaloriesSummary(ctx context.Context, userID int, start, end time.Time) (insights.CaloriesSummary, error)
	TrophyRoom(ctx context.Context, userID int, period string, now time.Time) (*insights.TrophyRoom, error)
	PlateauAlerts(ctx context.Context, userID int) ([]insights.PlateauAlert, error)
	OneRM(ctx context.Context, userID int, exerciseID uuid.UUID, formula string, start, end time.Time) (*insights.OneRMResult, error)
	Exercises(ctx context.Context, userID int) ([]models.Exercise, error)
	Overview(ctx context.Context, userID int, now time.Time) (*insights.Overview, error)
}

// Compile-time check: *insights.Service satisfies DataSource.
var _ DataSource = (*insights.Service)(nil)
