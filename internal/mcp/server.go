package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog strength training server. Query workout streaks, muscle recovery, body composition, calorie estimates, personal records, plateaus and estimated one-rep maxes. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log, now: time.Now}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetStreak, Handler: h.getStreak},
		server.ServerTool{Tool: toolGetMuscleRecovery, Handler: h.getMuscleRecovery},
		server.ServerTool{Tool: toolGetBodyStats, Handler: h.getBodyStats},
		server.ServerTool{Tool: toolGetCalorieSummary, Handler: h.getCalorieSummary},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetPlateauAlerts, Handler: h.getPlateauAlerts},
		server.ServerTool{Tool: toolGetOneRepMax, Handler: h.getOneRepMax},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resOverview, Handler: h.overview},
		server.ServerResource{Resource: resExercises, Handler: h.exercises},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
	now func() time.Time
}

// --- Resource definitions ---

var resOverview = mcp.NewResource(
	"liftlog://overview",
	"Training Overview",
	mcp.WithResourceDescription("Current streak, per-muscle recovery and the last 7 days of estimated calories"),
	mcp.WithMIMEType("application/json"),
)

var resExercises = mcp.NewResource(
	"liftlog://exercises",
	"Exercise Catalog",
	mcp.WithResourceDescription("All of the user's exercises with IDs and muscle mapping, for use with get_one_rep_max"),
	mcp.WithMIMEType("application/json"),
)
