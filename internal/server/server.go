package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/insights"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc      *insights.Service
	db       *storage.DB
	alpha    *alpha.Provider
	metrics  *metrics.Manager
	gatherer prometheus.Gatherer
	log      *slog.Logger
	apiKey   string
	router   chi.Router

	// whois is set once tsnet is up; until then every request is the dev user.
	whois whoIser
	users userResolver
}

// Deps groups what New needs. Metrics and Gatherer may be nil.
type Deps struct {
	Insights *insights.Service
	DB       *storage.DB
	Alpha    *alpha.Provider
	Metrics  *metrics.Manager
	Gatherer prometheus.Gatherer
	APIKey   string
	Log      *slog.Logger
}

// New creates a new Server with all routes configured.
func New(d Deps) *Server {
	s := &Server{
		svc:      d.Insights,
		db:       d.DB,
		alpha:    d.Alpha,
		metrics:  d.Metrics,
		gatherer: d.Gatherer,
		log:      d.Log,
		apiKey:   d.APIKey,
		router:   chi.NewRouter(),
	}
	if d.DB != nil {
		s.users = d.DB
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	if s.metrics != nil {
		s.router.Use(RequestMetrics(s.metrics))
	}
	s.router.Use(CORS)

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// Ingest endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(s.identity)
		r.Post("/alpha", s.handleAlphaIngest)
	})

	// Dashboard API endpoints (no API key, tsnet handles access)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)

		r.Get("/me", s.handleMe)
		r.Get("/stats", s.handleStats)
		r.Get("/import-logs", s.handleImportLogs)

		r.Get("/body/bio", s.handleGetBio)
		r.Put("/body/bio", s.handlePutBio)
		r.Get("/body/logs", s.handleQueryBodyLogs)
		r.Post("/body/logs", s.handleCreateBodyLog)
		r.Get("/body/logs/latest", s.handleLatestBodyLog)
		r.Post("/body/logs/{id}/recompute", s.handleRecomputeBodyLog)

		r.Get("/muscle-groups", s.handleMuscleGroups)
		r.Get("/exercises", s.handleListExercises)
		r.Post("/exercises", s.handleCreateExercise)
		r.Get("/exercises/{id}/stats", s.handleExerciseStats)
		r.Get("/exercises/{id}/previous-session", s.handlePreviousSession)

		r.Get("/workouts", s.handleQueryWorkouts)
		r.Post("/workouts", s.handleCreateWorkout)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Post("/workouts/{id}/sets", s.handleCreateSet)

		r.Get("/streak", s.handleStreak)
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/recovery", s.handleRecovery)
			r.Get("/muscle-volume", s.handleMuscleVolume)
			r.Get("/one-rm/{exercise_id}", s.handleOneRM)
			r.Get("/calories-history", s.handleCaloriesHistory)
			r.Get("/calories-summary", s.handleCaloriesSummary)
			r.Get("/overview", s.handleOverview)
			r.Get("/tonnage", s.handleTonnage)
			r.Get("/consistency", s.handleConsistency)
			r.Get("/plateau-radar", s.handlePlateauRadar)
		})

		r.Get("/pr/trophy-room", s.handleTrophyRoom)
		r.Get("/tools/plate-calculator", s.handlePlateCalculator)
		r.Get("/tools/plateau-alerts", s.handlePlateauAlerts)
	})
}
