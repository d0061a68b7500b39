package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/analytics/strength"
)

const (
	muscleVolumeRange = 7 * 24 * time.Hour
	oneRMRange        = 365 * 24 * time.Hour
	caloriesRange     = 30 * 24 * time.Hour
	tonnageRange      = 90 * 24 * time.Hour
	defaultBarKg      = 20.0
)

func (s *Server) handleRecovery(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	scores, err := s.svc.Recovery(r.Context(), uid, time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Server) handleMuscleVolume(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRangeDefault(r, muscleVolumeRange)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	vol, err := s.svc.MuscleVolume(r.Context(), uid, start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vol)
}

func (s *Server) handleOneRM(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	exerciseID, ok := uuidParam(w, r, "exercise_id")
	if !ok {
		return
	}
	start, end, err := parseTimeRangeDefault(r, oneRMRange)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	res, err := s.svc.OneRM(r.Context(), uid, exerciseID, r.URL.Query().Get("formula"), start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCaloriesHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRangeDefault(r, caloriesRange)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	days, err := s.svc.CaloriesHistory(r.Context(), uid, start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handleCaloriesSummary(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRangeDefault(r, caloriesRange)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sum, err := s.svc.CaloriesSummary(r.Context(), uid, start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	ov, err := s.svc.Overview(r.Context(), uid, time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (s *Server) handleTonnage(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRangeDefault(r, tonnageRange)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rep, err := s.svc.Tonnage(r.Context(), uid, start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleConsistency needs year; month is optional and narrows the calendar.
func (s *Server) handleConsistency(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "year must be an integer"})
		return
	}
	var month int
	if m := q.Get("month"); m != "" {
		if month, err = strconv.Atoi(m); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be an integer"})
			return
		}
	}
	cal, err := s.svc.Consistency(r.Context(), uid, year, month)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

func (s *Server) handlePlateauRadar(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	radar, err := s.svc.PlateauRadar(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, radar)
}

func (s *Server) handleTrophyRoom(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	room, err := s.svc.TrophyRoom(r.Context(), uid, r.URL.Query().Get("period"), time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) handlePlateauAlerts(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	alerts, err := s.svc.PlateauAlerts(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

// handlePlateCalculator is pure arithmetic and needs no user.
func (s *Server) handlePlateCalculator(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, err := strconv.ParseFloat(q.Get("target"), 64)
	if err != nil || !(target > 0) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "target must be a positive number"})
		return
	}
	bar := defaultBarKg
	if b := q.Get("bar"); b != "" {
		bar, err = strconv.ParseFloat(b, 64)
		if err != nil || bar < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bar must be a non-negative number"})
			return
		}
	}
	plates := strength.DefaultPlates
	if p := q.Get("plates"); p != "" {
		plates, err = strength.ParsePlates(p)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, strength.PlatesPerSide(bar, target, plates))
}
