// Package strength holds the small lifting calculators: estimated one-rep
// max, barbell plate loading and plateau detection.
package strength

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// OneRMFormula selects a one-rep-max estimator.
type OneRMFormula string

const (
	Brzycki OneRMFormula = "brzycki"
	Epley   OneRMFormula = "epley"
)

// ParseFormula accepts a formula name case-insensitively. Empty means Brzycki.
func ParseFormula(s string) (OneRMFormula, error) {
	switch OneRMFormula(strings.ToLower(strings.TrimSpace(s))) {
	case "", Brzycki:
		return Brzycki, nil
	case Epley:
		return Epley, nil
	}
	return "", fmt.Errorf("unknown 1RM formula %q", s)
}

// Estimate returns the estimated one-rep max for weight x reps.
func (f OneRMFormula) Estimate(weight float64, reps int) float64 {
	if f == Epley {
		return EpleyOneRM(weight, reps)
	}
	return BrzyckiOneRM(weight, reps)
}

// BrzyckiOneRM is weight x 36 / (37 - reps). The formula diverges at 37 reps,
// so high-rep sets extrapolate to weight x 1.1.
func BrzyckiOneRM(weight float64, reps int) float64 {
	switch {
	case reps <= 0:
		return 0
	case reps >= 37:
		return weight * 1.1
	}
	return weight * 36 / float64(37-reps)
}

// EpleyOneRM is weight x (1 + reps/30).
func EpleyOneRM(weight float64, reps int) float64 {
	if reps <= 0 {
		return 0
	}
	return weight * (1 + float64(reps)/30)
}

// DefaultPlates are the standard kilogram plates.
var DefaultPlates = []float64{20, 15, 10, 5, 2.5, 1.25}

const plateTolerance = 0.001

// PlateLoad is how to load a bar for a target weight.
type PlateLoad struct {
	WeightToLoad  float64   `json:"weight_to_load"`
	PerSide       float64   `json:"per_side"`
	PlatesPerSide []float64 `json:"plates_per_side"`
	TotalWeight   float64   `json:"total_weight"`
}

// PlatesPerSide greedily loads the heaviest plates first. When the target is
// not reachable with the given plates the load falls short; TotalWeight is
// what actually ends up on the bar.
func PlatesPerSide(bar, target float64, plates []float64) PlateLoad {
	res := PlateLoad{PlatesPerSide: []float64{}, TotalWeight: bar}
	load := target - bar
	if load <= 0 {
		return res
	}
	res.PerSide = load / 2

	sorted := make([]float64, 0, len(plates))
	for _, p := range plates {
		if p > 0 {
			sorted = append(sorted, p)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	remaining := res.PerSide
	var side float64
	for _, p := range sorted {
		for remaining >= p-plateTolerance {
			res.PlatesPerSide = append(res.PlatesPerSide, p)
			remaining -= p
			side += p
		}
	}
	res.TotalWeight = bar + 2*side
	res.WeightToLoad = res.TotalWeight - bar
	return res
}

// ParsePlates reads a comma separated plate list such as "20,10,5".
func ParsePlates(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || !(v > 0) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid plate weight %q", part)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no plates given")
	}
	return out, nil
}

// DefaultPlateauThreshold is how many stalled sessions make a plateau.
const DefaultPlateauThreshold = 3

// SessionBest is an exercise's best numbers within one workout.
type SessionBest struct {
	MaxWeight   float64
	MaxVolume   float64
	MaxDuration int
}

// improvedOver reports whether s beat prev on any axis.
func (s SessionBest) improvedOver(prev SessionBest) bool {
	return s.MaxWeight > prev.MaxWeight || s.MaxVolume > prev.MaxVolume || s.MaxDuration > prev.MaxDuration
}

// StalledSessions counts, from the newest session backwards, how many
// consecutive sessions failed to beat the one before them. sessions must be
// ordered newest first.
func StalledSessions(sessions []SessionBest) int {
	n := 0
	for i := 0; i+1 < len(sessions); i++ {
		if sessions[i].improvedOver(sessions[i+1]) {
			break
		}
		n++
	}
	return n
}

// DetectPlateau reports the stalled count and whether it reaches threshold.
func DetectPlateau(sessions []SessionBest, threshold int) (int, bool) {
	if threshold <= 0 {
		threshold = DefaultPlateauThreshold
	}
	n := StalledSessions(sessions)
	return n, n >= threshold
}

// RadarRecentSessions is how many of the newest sessions form the recent
// average of a plateau radar.
const RadarRecentSessions = 3

// Radar compares an exercise's best session volume with its recent form.
// FullMark is the chart's outer ring, 10% above the best.
type Radar struct {
	Best      float64 `json:"best"`
	RecentAvg float64 `json:"recent_avg"`
	FullMark  float64 `json:"full_mark"`
}

// PlateauRadar summarizes per-session volumes ordered newest first. Values
// are rounded to 0.1. It reports false for an empty history.
func PlateauRadar(history []float64) (Radar, bool) {
	if len(history) == 0 {
		return Radar{}, false
	}
	best := history[0]
	for _, v := range history[1:] {
		best = math.Max(best, v)
	}
	recent := history[:min(len(history), RadarRecentSessions)]
	var sum float64
	for _, v := range recent {
		sum += v
	}
	return Radar{
		Best:      round1(best),
		RecentAvg: round1(sum / float64(len(recent))),
		FullMark:  round1(best * 1.1),
	}, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
