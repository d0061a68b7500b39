// Package calories estimates energy expenditure of a resistance-training
// session with MET values from the 2024 Adult Compendium of Physical
// Activities.
package calories

import (
	"math"
	"strings"
)

// Intensity is the coarse effort label of a session.
type Intensity string

const (
	Light    Intensity = "light"
	Moderate Intensity = "moderate"
	Vigorous Intensity = "vigorous"
)

// ParseIntensity maps a free-form label to an Intensity. Empty or unknown
// labels report false.
func ParseIntensity(s string) (Intensity, bool) {
	switch Intensity(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Moderate:
		return Moderate, true
	case Vigorous:
		return Vigorous, true
	}
	return "", false
}

// METs holds the metabolic equivalents and thresholds used by the estimator.
type METs struct {
	Light    float64
	Moderate float64
	Vigorous float64

	// Active and Rest apply when time under tension and rest are tracked.
	Active float64
	Rest   float64

	// Tonnage density (kg per minute) bands for inferring intensity.
	LightBelowKgPerMin    float64
	VigorousFromKgPerMin  float64
	MinutesPerSetEstimate float64
}

// DefaultMETs returns the Compendium values for resistance training.
func DefaultMETs() METs {
	return METs{
		Light:                 3.5,
		Moderate:              5.0,
		Vigorous:              6.0,
		Active:                5.5,
		Rest:                  2.0,
		LightBelowKgPerMin:    80,
		VigorousFromKgPerMin:  200,
		MinutesPerSetEstimate: 2.5,
	}
}

func (m METs) forIntensity(i Intensity) float64 {
	switch i {
	case Light:
		return m.Light
	case Vigorous:
		return m.Vigorous
	}
	return m.Moderate
}

// Session carries whatever signals are known about a workout. Nil pointers
// mean the signal was not recorded.
type Session struct {
	DurationMinutes float64
	Intensity       string
	TonnageKg       *float64
	ActiveSeconds   *float64
	RestSeconds     *float64
}

// Estimator turns session signals into kcal.
type Estimator struct {
	mets METs
}

// New returns an Estimator using mets.
func New(mets METs) *Estimator {
	return &Estimator{mets: mets}
}

// kcalPerMETMinute is the base unit: 3.5 ml O2/kg/min over 200.
func kcalPerMETMinute(weightKg float64) float64 {
	return 3.5 * weightKg / 200
}

// Estimate returns estimated kcal, rounded to 0.1.
//
// When both time under tension and rest are known (and at least one is
// positive) the active and rest minutes are costed separately. Otherwise the
// session duration is costed at the MET of its intensity.
func (e *Estimator) Estimate(weightKg float64, s Session) float64 {
	if weightKg <= 0 {
		return 0
	}
	base := kcalPerMETMinute(weightKg)

	if s.ActiveSeconds != nil && s.RestSeconds != nil &&
		(*s.ActiveSeconds > 0 || *s.RestSeconds > 0) {
		active := math.Max(*s.ActiveSeconds, 0) / 60
		rest := math.Max(*s.RestSeconds, 0) / 60
		return round1(e.mets.Active*base*active + e.mets.Rest*base*rest)
	}

	if s.DurationMinutes <= 0 {
		return 0
	}
	met := e.mets.forIntensity(e.InferIntensity(s))
	return round1(met * base * s.DurationMinutes)
}

// InferIntensity uses the explicit label when it is valid, otherwise the
// tonnage density of the session, otherwise Moderate.
func (e *Estimator) InferIntensity(s Session) Intensity {
	if i, ok := ParseIntensity(s.Intensity); ok {
		return i
	}
	if s.TonnageKg != nil && *s.TonnageKg > 0 && s.DurationMinutes > 0 {
		density := *s.TonnageKg / s.DurationMinutes
		switch {
		case density < e.mets.LightBelowKgPerMin:
			return Light
		case density >= e.mets.VigorousFromKgPerMin:
			return Vigorous
		}
	}
	return Moderate
}

// ActiveDurationMinutes prefers the recorded session duration and falls back
// to a per-set estimate.
func (e *Estimator) ActiveDurationMinutes(durationSeconds *int, setsCount int) float64 {
	if durationSeconds != nil && *durationSeconds > 0 {
		return float64(*durationSeconds) / 60
	}
	if setsCount <= 0 {
		return 0
	}
	return float64(setsCount) * e.mets.MinutesPerSetEstimate
}

// SetSignal is the per-set data the estimator aggregates.
type SetSignal struct {
	Weight                  *float64
	Reps                    *int
	TimeUnderTensionSeconds *int
	RestSecondsAfter        *int
}

// FromSets aggregates tonnage, time under tension and rest over a session's
// sets and estimates its kcal. Aggregates that sum to zero are treated as
// not recorded.
func (e *Estimator) FromSets(weightKg float64, durationSeconds *int, intensity string, sets []SetSignal) float64 {
	var tonnage, active, rest float64
	for _, s := range sets {
		if s.Weight != nil && s.Reps != nil {
			tonnage += *s.Weight * float64(*s.Reps)
		}
		if s.TimeUnderTensionSeconds != nil {
			active += float64(*s.TimeUnderTensionSeconds)
		}
		if s.RestSecondsAfter != nil {
			rest += float64(*s.RestSecondsAfter)
		}
	}

	sess := Session{
		DurationMinutes: e.ActiveDurationMinutes(durationSeconds, len(sets)),
		Intensity:       intensity,
	}
	if tonnage > 0 {
		sess.TonnageKg = &tonnage
	}
	if active > 0 {
		sess.ActiveSeconds = &active
	}
	if rest > 0 {
		sess.RestSeconds = &rest
	}
	return e.Estimate(weightKg, sess)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
