package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/analytics/recovery"
	"github.com/claude/liftlog/internal/analytics/streak"
	"github.com/claude/liftlog/internal/insights"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// TestDefaultTimeRange verifies time range defaults and parsing.
func TestDefaultTimeRange(t *testing.T) {
	// Both empty → defaults to last 7 days
	start, end, err := defaultTimeRange("", "", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := end.Sub(start)
	if diff.Hours() < 167 || diff.Hours() > 169 { // ~168 hours = 7 days
		t.Errorf("default range = %.0f hours, want ~168", diff.Hours())
	}

	// Explicit dates
	start, end, err = defaultTimeRange("2024-01-01", "2024-01-31", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2024 || start.Month() != 1 || start.Day() != 1 {
		t.Errorf("start = %v, want 2024-01-01", start)
	}
	if end.Year() != 2024 || end.Month() != 1 || end.Day() != 31 {
		t.Errorf("end = %v, want 2024-01-31", end)
	}

	// RFC3339
	start, _, err = defaultTimeRange("2024-06-15T10:30:00Z", "", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	// Invalid
	_, _, err = defaultTimeRange("not-a-date", "", 7)
	if err == nil {
		t.Error("expected error for invalid date")
	}
}

// fakeSource is an in-memory DataSource.
type fakeSource struct {
	userID  int
	scores  []recovery.Score
	latest  *models.BodyLog
	logs    []models.BodyLog
	formula string
	err     error
}

func (f *fakeSource) Streak(_ context.Context, userID int, _ time.Time) (streak.Result, error) {
	f.userID = userID
	return streak.Result{CurrentStreak: 4, LongestStreak: 12}, f.err
}

func (f *fakeSource) Recovery(_ context.Context, _ int, _ time.Time) ([]recovery.Score, error) {
	return f.scores, f.err
}

func (f *fakeSource) LatestBody(_ context.Context, _ int) (*models.BodyLog, error) {
	if f.latest == nil {
		return nil, fmt.Errorf("body log: %w", storage.ErrNotFound)
	}
	return f.latest, nil
}

func (f *fakeSource) BodyLogs(_ context.Context, _ int, _, _ time.Time) ([]models.BodyLog, error) {
	return f.logs, nil
}

func (f *fakeSource) CaloriesSummary(_ context.Context, _ int, _, _ time.Time) (insights.CaloriesSummary, error) {
	return insights.CaloriesSummary{TotalCalories: 672, WorkoutCount: 3, DailyAverage: 96}, nil
}

func (f *fakeSource) TrophyRoom(_ context.Context, _ int, period string, now time.Time) (*insights.TrophyRoom, error) {
	return &insights.TrophyRoom{Period: period, To: now, Records: []storage.PRSet{}}, nil
}

func (f *fakeSource) PlateauAlerts(_ context.Context, _ int) ([]insights.PlateauAlert, error) {
	return []insights.PlateauAlert{{ExerciseName: "Squat", SessionsWithoutImprovement: 3}}, nil
}

func (f *fakeSource) OneRM(_ context.Context, _ int, id uuid.UUID, formula string, _, _ time.Time) (*insights.OneRMResult, error) {
	f.formula = formula
	return &insights.OneRMResult{ExerciseID: id, Points: []insights.OneRMPoint{}}, nil
}

func (f *fakeSource) Exercises(_ context.Context, _ int) ([]models.Exercise, error) {
	return []models.Exercise{{Name: "Squat"}}, nil
}

func (f *fakeSource) Overview(_ context.Context, _ int, _ time.Time) (*insights.Overview, error) {
	return &insights.Overview{Streak: streak.Result{CurrentStreak: 4}}, nil
}

func newHandlers(ds DataSource) *handlers {
	return &handlers{
		ds:  ds,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) },
	}
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// resultText returns the text of the first content block.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestGetStreakUsesContextUser(t *testing.T) {
	src := &fakeSource{}
	h := newHandlers(src)

	res, err := h.getStreak(WithUserID(context.Background(), 7), callTool(nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var got streak.Result
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if got.CurrentStreak != 4 || got.LongestStreak != 12 {
		t.Errorf("streak = %+v", got)
	}
	if src.userID != 7 {
		t.Errorf("userID = %d, want 7", src.userID)
	}
}

func TestGetMuscleRecoveryFilter(t *testing.T) {
	h := newHandlers(&fakeSource{scores: []recovery.Score{
		{Key: "chest", FatigueScore: 82, Overstrained: true},
		{Key: "back", FatigueScore: 20},
	}})

	res, _ := h.getMuscleRecovery(context.Background(), callTool(map[string]any{"overstrained_only": true}))
	var got []recovery.Score
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Key != "chest" {
		t.Errorf("scores = %+v, want only chest", got)
	}

	res, _ = h.getMuscleRecovery(context.Background(), callTool(nil))
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d scores, want 2", len(got))
	}
}

func TestGetBodyStats(t *testing.T) {
	h := newHandlers(&fakeSource{})
	res, _ := h.getBodyStats(context.Background(), callTool(nil))
	if res.IsError {
		t.Fatalf("missing body logs should not be an error: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "No body logs recorded yet." {
		t.Errorf("text = %q", got)
	}

	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	h = newHandlers(&fakeSource{
		latest: &models.BodyLog{WeightKg: 80.5, LoggedAt: at},
		logs:   []models.BodyLog{{WeightKg: 80.5, LoggedAt: at}, {WeightKg: 81, LoggedAt: at.AddDate(0, 0, -7)}},
	})
	res, _ = h.getBodyStats(context.Background(), callTool(nil))
	var got struct {
		Latest  models.BodyLog       `json:"latest"`
		Weights []models.WeightPoint `json:"weight_history"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if got.Latest.WeightKg != 80.5 || len(got.Weights) != 2 {
		t.Errorf("body stats = %+v", got)
	}
}

func TestGetOneRepMaxValidation(t *testing.T) {
	src := &fakeSource{}
	h := newHandlers(src)

	res, _ := h.getOneRepMax(context.Background(), callTool(nil))
	if !res.IsError {
		t.Error("missing exercise_id should be a tool error")
	}
	res, _ = h.getOneRepMax(context.Background(), callTool(map[string]any{"exercise_id": "bench"}))
	if !res.IsError {
		t.Error("non-UUID exercise_id should be a tool error")
	}

	res, _ = h.getOneRepMax(context.Background(), callTool(map[string]any{"exercise_id": uuid.NewString()}))
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if src.formula != "brzycki" {
		t.Errorf("formula = %q, want brzycki default", src.formula)
	}
}

func TestQueryFailureIsToolError(t *testing.T) {
	h := newHandlers(&fakeSource{err: fmt.Errorf("connection refused")})
	res, err := h.getStreak(context.Background(), callTool(nil))
	if err != nil {
		t.Fatalf("handler returned protocol error: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error result")
	}
}

func TestPersonalRecordsDefaultPeriod(t *testing.T) {
	h := newHandlers(&fakeSource{})
	res, _ := h.getPersonalRecords(context.Background(), callTool(nil))
	var room insights.TrophyRoom
	if err := json.Unmarshal([]byte(resultText(t, res)), &room); err != nil {
		t.Fatal(err)
	}
	if room.Period != "month" {
		t.Errorf("period = %q, want month", room.Period)
	}
}

func TestOverviewResource(t *testing.T) {
	h := newHandlers(&fakeSource{})
	var req mcp.ReadResourceRequest
	req.Params.URI = "liftlog://overview"

	contents, err := h.overview(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content is %T", contents[0])
	}
	if text.URI != "liftlog://overview" || text.MIMEType != "application/json" {
		t.Errorf("resource = %+v", text)
	}
}

// TestNewRegistersTools verifies New builds a server from any DataSource.
func TestNewRegistersTools(t *testing.T) {
	if s := New(&fakeSource{}, "test", slog.New(slog.NewTextHandler(io.Discard, nil))); s == nil {
		t.Fatal("New returned nil")
	}
}
