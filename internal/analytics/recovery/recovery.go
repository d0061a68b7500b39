// Package recovery scores per-muscle fatigue from recent training volume.
package recovery

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is how much an exercise loads a muscle.
type Role int

const (
	Primary Role = iota
	Secondary
	Tertiary
)

// Factor is the share of a set's volume credited to a muscle in this role.
func (r Role) Factor() float64 {
	switch r {
	case Primary:
		return 1.0
	case Secondary:
		return 0.5
	case Tertiary:
		return 0.25
	}
	return 0
}

func (r Role) String() string {
	switch r {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case Tertiary:
		return "tertiary"
	}
	return "unknown"
}

// Muscle is a muscle group known to the catalog.
type Muscle struct {
	ID   uuid.UUID
	Name string
}

// Key is the normalized name used by body-map clients.
func (m Muscle) Key() string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(m.Name)), " ", "_")
}

// Target links an exercise to one muscle it trains.
type Target struct {
	MuscleID uuid.UUID
	Role     Role
}

// SetRecord is one performed set with the timestamp of its workout and the
// muscles its exercise trains.
type SetRecord struct {
	WorkoutID       uuid.UUID
	PerformedAt     time.Time
	Weight          *float64
	Reps            *int
	DurationSeconds *int
	Targets         []Target
}

// Volume is the set's unweighted load: duration when timed, else weight x reps.
func (s SetRecord) Volume() float64 {
	if s.DurationSeconds != nil && *s.DurationSeconds != 0 {
		return float64(*s.DurationSeconds)
	}
	var w float64
	var r int
	if s.Weight != nil {
		w = *s.Weight
	}
	if s.Reps != nil {
		r = *s.Reps
	}
	return w * float64(r)
}

// Score is the fatigue state of one muscle.
type Score struct {
	Key          string    `json:"key"`
	MuscleID     uuid.UUID `json:"muscle_id"`
	Name         string    `json:"name"`
	FatigueScore float64   `json:"fatigue_score"`
	Overstrained bool      `json:"overstrained"`
}

// Model holds the recovery windows and thresholds.
type Model struct {
	// Window is the baseline period for the average session volume.
	Window time.Duration
	// RecentWindow is the period whose volume counts as current load.
	RecentWindow time.Duration
	// DecayHours is the e-folding time of fatigue since last trained.
	DecayHours float64
	// OverstrainRatio flags recent volume above this multiple of average.
	OverstrainRatio float64
}

// DefaultModel is 28 days of baseline, 48 hours of recent load, a 24 hour
// decay and a 30% overstrain margin.
func DefaultModel() Model {
	return Model{
		Window:          28 * 24 * time.Hour,
		RecentWindow:    48 * time.Hour,
		DecayHours:      24,
		OverstrainRatio: 1.3,
	}
}

type accum struct {
	total    float64
	recent   float64
	workouts map[uuid.UUID]struct{}
	last     time.Time
}

// Compute scores every muscle in muscles. Sets older than Window are
// ignored; muscles without sets score zero. The result is sorted by fatigue
// descending, then by name.
func (m Model) Compute(muscles []Muscle, sets []SetRecord, now time.Time) []Score {
	windowStart := now.Add(-m.Window)
	recentStart := now.Add(-m.RecentWindow)

	acc := make(map[uuid.UUID]*accum)
	for _, s := range sets {
		if s.PerformedAt.Before(windowStart) {
			continue
		}
		base := s.Volume()
		for _, t := range s.Targets {
			a := acc[t.MuscleID]
			if a == nil {
				a = &accum{workouts: make(map[uuid.UUID]struct{})}
				acc[t.MuscleID] = a
			}
			vol := base * t.Role.Factor()
			a.total += vol
			a.workouts[s.WorkoutID] = struct{}{}
			if !s.PerformedAt.Before(recentStart) {
				a.recent += vol
			}
			if s.PerformedAt.After(a.last) {
				a.last = s.PerformedAt
			}
		}
	}

	out := make([]Score, 0, len(muscles))
	for _, mu := range muscles {
		sc := Score{Key: mu.Key(), MuscleID: mu.ID, Name: mu.Name}
		if a := acc[mu.ID]; a != nil {
			sc.FatigueScore, sc.Overstrained = m.score(a, now)
		}
		out = append(out, sc)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FatigueScore != out[j].FatigueScore {
			return out[i].FatigueScore > out[j].FatigueScore
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (m Model) score(a *accum, now time.Time) (float64, bool) {
	sessions := max(len(a.workouts), 1)
	avg := a.total / float64(sessions)

	var decay float64
	if !a.last.IsZero() {
		hours := math.Max(now.Sub(a.last).Hours(), 0)
		decay = math.Exp(-hours / m.DecayHours)
	}

	var raw float64
	switch {
	case avg > 0:
		raw = a.recent / avg * decay
	case a.recent > 0:
		raw = decay
	}
	fatigue := math.Round(math.Min(math.Max(raw, 0), 1)*100) / 100

	overstrained := avg > 0 && a.recent > avg*m.OverstrainRatio
	return fatigue, overstrained
}

// MuscleVolume is the role-weighted volume credited to one muscle.
type MuscleVolume struct {
	MuscleID uuid.UUID `json:"muscle_group_id"`
	Name     string    `json:"name"`
	Volume   float64   `json:"volume"`
}

// VolumeByMuscle sums role-weighted volume per muscle over all sets, for
// heatmaps. Only muscles with volume are returned, largest first. Muscles
// not in the catalog are named by ID.
func VolumeByMuscle(muscles []Muscle, sets []SetRecord) []MuscleVolume {
	names := make(map[uuid.UUID]string, len(muscles))
	for _, mu := range muscles {
		names[mu.ID] = mu.Name
	}

	vol := make(map[uuid.UUID]float64)
	for _, s := range sets {
		base := s.Volume()
		for _, t := range s.Targets {
			vol[t.MuscleID] += base * t.Role.Factor()
		}
	}

	out := make([]MuscleVolume, 0, len(vol))
	for id, v := range vol {
		name, ok := names[id]
		if !ok {
			name = id.String()
		}
		out = append(out, MuscleVolume{MuscleID: id, Name: name, Volume: math.Round(v*100) / 100})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Volume != out[j].Volume {
			return out[i].Volume > out[j].Volume
		}
		return out[i].Name < out[j].Name
	})
	return out
}
