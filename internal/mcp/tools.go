package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/liftlog/internal/analytics/recovery"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last days days.
func defaultTimeRange(startStr, endStr string, days int) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -days)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetStreak = mcp.NewTool("get_streak",
	mcp.WithDescription("Current and longest streak of consecutive training days, and the date of the last workout."),
)

var toolGetMuscleRecovery = mcp.NewTool("get_muscle_recovery",
	mcp.WithDescription("Fatigue score (0-1) per muscle group from the last 28 days of sets. Higher means more fatigued; overstrained muscles should rest."),
	mcp.WithBoolean("overstrained_only", mcp.Description("Only return muscles flagged as overstrained. Defaults to false.")),
)

var toolGetBodyStats = mcp.NewTool("get_body_stats",
	mcp.WithDescription("Latest body log with derived stats (BMR, body fat estimates, FFMI, measurement percentiles, symmetry, aesthetic rank) and the weigh-ins in the range."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetCalorieSummary = mcp.NewTool("get_calorie_summary",
	mcp.WithDescription("Estimated kcal burned by strength training: total, workout count and daily average over the range."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Sets that broke a weight, volume or duration record since the start of the current month or year."),
	mcp.WithString("period", mcp.Description("Defaults to 'month'."), mcp.Enum("month", "year")),
)

var toolGetPlateauAlerts = mcp.NewTool("get_plateau_alerts",
	mcp.WithDescription("Exercises whose recent sessions have stopped improving in weight, volume and duration."),
)

var toolGetOneRepMax = mcp.NewTool("get_one_rep_max",
	mcp.WithDescription("Estimated one-rep max for every weighted set of an exercise. Exercise IDs are listed in the liftlog://exercises resource."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise UUID")),
	mcp.WithString("formula", mcp.Description("Estimation formula. Defaults to 'brzycki'."), mcp.Enum("brzycki", "epley")),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 365 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

// --- Tool handlers ---

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) queryFailed(tool string, err error) *mcp.CallToolResult {
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}

func (h *handlers) getStreak(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.ds.Streak(ctx, UserIDFromContext(ctx), h.now())
	if err != nil {
		return h.queryFailed("get_streak", err), nil
	}
	return jsonResult(res)
}

func (h *handlers) getMuscleRecovery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scores, err := h.ds.Recovery(ctx, UserIDFromContext(ctx), h.now())
	if err != nil {
		return h.queryFailed("get_muscle_recovery", err), nil
	}
	if req.GetBool("overstrained_only", false) {
		kept := make([]recovery.Score, 0, len(scores))
		for _, s := range scores {
			if s.Overstrained {
				kept = append(kept, s)
			}
		}
		scores = kept
	}
	return jsonResult(scores)
}

func (h *handlers) getBodyStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 90)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	uid := UserIDFromContext(ctx)

	latest, err := h.ds.LatestBody(ctx, uid)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultText("No body logs recorded yet."), nil
	}
	if err != nil {
		return h.queryFailed("get_body_stats", err), nil
	}

	history, err := h.ds.BodyLogs(ctx, uid, start, end)
	if err != nil {
		return h.queryFailed("get_body_stats", err), nil
	}
	weights := make([]models.WeightPoint, 0, len(history))
	for _, l := range history {
		weights = append(weights, models.WeightPoint{At: l.LoggedAt, WeightKg: l.WeightKg})
	}

	return jsonResult(map[string]any{
		"latest":         latest,
		"weight_history": weights,
	})
}

func (h *handlers) getCalorieSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 7)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	sum, err := h.ds.CaloriesSummary(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		return h.queryFailed("get_calorie_summary", err), nil
	}
	return jsonResult(map[string]any{
		"start":   start.Format(time.RFC3339),
		"end":     end.Format(time.RFC3339),
		"summary": sum,
	})
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	room, err := h.ds.TrophyRoom(ctx, UserIDFromContext(ctx), req.GetString("period", "month"), h.now())
	if err != nil {
		return h.queryFailed("get_personal_records", err), nil
	}
	return jsonResult(room)
}

func (h *handlers) getPlateauAlerts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	alerts, err := h.ds.PlateauAlerts(ctx, UserIDFromContext(ctx))
	if err != nil {
		return h.queryFailed("get_plateau_alerts", err), nil
	}
	return jsonResult(alerts)
}

func (h *handlers) getOneRepMax(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	exerciseID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("exercise_id must be a UUID"), nil
	}
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 365)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	res, err := h.ds.OneRM(ctx, UserIDFromContext(ctx), exerciseID, req.GetString("formula", "brzycki"), start, end)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("exercise not found"), nil
	}
	if err != nil {
		return h.queryFailed("get_one_rep_max", err), nil
	}
	return jsonResult(res)
}
