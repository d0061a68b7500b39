package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/analytics/calories"
	"github.com/claude/liftlog/internal/insights"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

func (s *Server) handleMuscleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.db.ListMuscleGroups(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	exercises, err := s.svc.Exercises(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

type exerciseRequest struct {
	Name              string     `json:"name"`
	Equipment         string     `json:"equipment"`
	PrimaryMuscleID   *uuid.UUID `json:"primary_muscle_group_id"`
	SecondaryMuscleID *uuid.UUID `json:"secondary_muscle_group_id"`
	TertiaryMuscleID  *uuid.UUID `json:"tertiary_muscle_group_id"`
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req exerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	ex, err := s.db.CreateExercise(r.Context(), models.Exercise{
		UserID:            uid,
		Name:              req.Name,
		Equipment:         strings.TrimSpace(req.Equipment),
		PrimaryMuscleID:   req.PrimaryMuscleID,
		SecondaryMuscleID: req.SecondaryMuscleID,
		TertiaryMuscleID:  req.TertiaryMuscleID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleExerciseStats(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	stats, err := s.svc.ExerciseStats(r.Context(), uid, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePreviousSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var exclude *uuid.UUID
	if v := r.URL.Query().Get("exclude_workout_id"); v != "" {
		wid, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exclude_workout_id"})
			return
		}
		exclude = &wid
	}
	prev, err := s.svc.PreviousSession(r.Context(), uid, id, exclude)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prev)
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	workouts, err := s.db.QueryWorkouts(r.Context(), uid, start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

type workoutRequest struct {
	Name            string     `json:"name"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationSeconds *int       `json:"duration_seconds"`
	Intensity       *string    `json:"intensity"`
	Notes           *string    `json:"notes"`
}

func (req *workoutRequest) validate() error {
	if req.StartedAt.IsZero() {
		return errors.New("started_at is required")
	}
	if req.EndedAt != nil && req.EndedAt.Before(req.StartedAt) {
		return errors.New("ended_at is before started_at")
	}
	if req.DurationSeconds == nil && req.EndedAt != nil {
		d := int(req.EndedAt.Sub(req.StartedAt).Seconds())
		req.DurationSeconds = &d
	}
	if req.DurationSeconds != nil && *req.DurationSeconds < 0 {
		return errors.New("duration_seconds must be non-negative")
	}
	if req.Intensity != nil {
		i, ok := calories.ParseIntensity(*req.Intensity)
		if !ok {
			return errors.New("intensity must be light, moderate or vigorous")
		}
		label := string(i)
		req.Intensity = &label
	}
	return nil
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req workoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	wo, err := s.db.CreateWorkout(r.Context(), models.Workout{
		UserID:          uid,
		Name:            strings.TrimSpace(req.Name),
		StartedAt:       req.StartedAt,
		EndedAt:         req.EndedAt,
		DurationSeconds: req.DurationSeconds,
		Intensity:       req.Intensity,
		Notes:           req.Notes,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wo)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	workoutID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	detail, err := s.db.GetWorkout(r.Context(), uid, workoutID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleCreateSet(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	workoutID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var in insights.SetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	set, err := s.svc.LogSet(r.Context(), uid, workoutID, in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	res, err := s.svc.Streak(r.Context(), uid, time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeError maps service and storage errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, insights.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		if s.log != nil {
			s.log.Error("request failed", "error", err)
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v, writing 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	return parseTimeRangeDefault(r, 7*24*time.Hour)
}

// parseTimeRangeDefault reads start and end query parameters as RFC 3339 or
// dates. A date-only end covers that whole day. Without start the range is
// the last def.
func parseTimeRangeDefault(r *http.Request, def time.Duration) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, errors.New("invalid end")
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}

	if startStr == "" {
		return end.Add(-def), end, nil
	}
	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid start")
		}
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, errors.New("start must be before end")
	}
	return start, end, nil
}
