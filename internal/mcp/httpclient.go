package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/analytics/recovery"
	"github.com/claude/liftlog/internal/analytics/streak"
	"github.com/claude/liftlog/internal/insights"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). The server
// resolves the user and the current time itself, so userID and now are
// ignored.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	case http.StatusBadRequest:
		return nil, fmt.Errorf("httpclient: %s: %s: %w", path, body, insights.ErrInvalid)
	}
	return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
}

// getJSON fetches path and decodes the response into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, what string, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", what, err)
	}
	return nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) Streak(ctx context.Context, _ int, _ time.Time) (streak.Result, error) {
	var res streak.Result
	err := c.getJSON(ctx, "/api/v1/streak", nil, "streak", &res)
	return res, err
}

func (c *HTTPClient) Recovery(ctx context.Context, _ int, _ time.Time) ([]recovery.Score, error) {
	var scores []recovery.Score
	if err := c.getJSON(ctx, "/api/v1/analytics/recovery", nil, "recovery", &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

func (c *HTTPClient) LatestBody(ctx context.Context, _ int) (*models.BodyLog, error) {
	var l models.BodyLog
	if err := c.getJSON(ctx, "/api/v1/body/logs/latest", nil, "body log", &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *HTTPClient) BodyLogs(ctx context.Context, _ int, start, end time.Time) ([]models.BodyLog, error) {
	var logs []models.BodyLog
	if err := c.getJSON(ctx, "/api/v1/body/logs", timeParams(start, end), "body logs", &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *HTTPClient) CaloriesSummary(ctx context.Context, _ int, start, end time.Time) (insights.CaloriesSummary, error) {
	var sum insights.CaloriesSummary
	err := c.getJSON(ctx, "/api/v1/analytics/calories-summary", timeParams(start, end), "calories summary", &sum)
	return sum, err
}

func (c *HTTPClient) TrophyRoom(ctx context.Context, _ int, period string, _ time.Time) (*insights.TrophyRoom, error) {
	params := url.Values{}
	if period != "" {
		params.Set("period", period)
	}
	var room insights.TrophyRoom
	if err := c.getJSON(ctx, "/api/v1/pr/trophy-room", params, "trophy room", &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *HTTPClient) PlateauAlerts(ctx context.Context, _ int) ([]insights.PlateauAlert, error) {
	var alerts []insights.PlateauAlert
	if err := c.getJSON(ctx, "/api/v1/tools/plateau-alerts", nil, "plateau alerts", &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (c *HTTPClient) OneRM(ctx context.Context, _ int, exerciseID uuid.UUID, formula string, start, end time.Time) (*insights.OneRMResult, error) {
	params := timeParams(start, end)
	if formula != "" {
		params.Set("formula", formula)
	}
	var res insights.OneRMResult
	if err := c.getJSON(ctx, "/api/v1/analytics/one-rm/"+exerciseID.String(), params, "one rep max", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Exercises(ctx context.Context, _ int) ([]models.Exercise, error) {
	var exercises []models.Exercise
	if err := c.getJSON(ctx, "/api/v1/exercises", nil, "exercises", &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (c *HTTPClient) Overview(ctx context.Context, _ int, _ time.Time) (*insights.Overview, error) {
	var ov insights.Overview
	if err := c.getJSON(ctx, "/api/v1/analytics/overview", nil, "overview", &ov); err != nil {
		return nil, err
	}
	return &ov, nil
}
