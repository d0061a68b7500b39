package bodycomp

import (
	"math"
	"strings"
)

// idealShoulderWaist is the golden-ratio target for the V-taper score.
const idealShoulderWaist = 1.618

// SymmetryPair compares the two sides of a paired limb.
type SymmetryPair struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
	Ratio float64 `json:"ratio"`
	Delta float64 `json:"delta"`
}

// Input is one measurement snapshot plus the bio it is evaluated against.
type Input struct {
	WeightKg      float64
	Profile       Profile
	Measurements  Measurements
	ManualBodyFat *float64
}

// Stats is the derived record cached alongside a body log. Metrics that
// could not be computed are nil.
type Stats struct {
	BMR           *float64                `json:"bmr"`
	BFNavy        *float64                `json:"bf_navy"`
	BFArmy        *float64                `json:"bf_army"`
	BFCunBae      *float64                `json:"bf_cun_bae"`
	BFRFM         *float64                `json:"bf_rfm"`
	BFMulti       *float64                `json:"bf_multi"`
	BodyFat       *float64                `json:"body_fat"`
	FFMI          *float64                `json:"ffmi"`
	Percentiles   map[string]float64      `json:"percentiles"`
	AestheticRank *float64                `json:"aesthetic_rank"`
	Symmetry      map[string]SymmetryPair `json:"symmetry"`
}

// Estimator computes body-composition stats against a fixed reference table.
type Estimator struct {
	ref *Reference
}

// NewEstimator returns an Estimator using ref. A nil ref means the built-in
// NHANES table.
func NewEstimator(ref *Reference) *Estimator {
	if ref == nil {
		ref = DefaultReference()
	}
	return &Estimator{ref: ref}
}

// Compute runs every estimate. It never fails: each metric that lacks inputs
// or hits a domain error is left nil.
func (e *Estimator) Compute(in Input) Stats {
	m := in.Measurements.Normalize()
	p := in.Profile
	p.Sex = Sex(strings.ToLower(string(p.Sex)))

	st := Stats{
		BMR:      BMR(in.WeightKg, p),
		BFNavy:   NavyBodyFat(p, m),
		BFArmy:   ArmyBodyFat(in.WeightKg, p, m),
		BFCunBae: CunBaeBodyFat(in.WeightKg, p),
		BFRFM:    RFMBodyFat(p, m),
		BFMulti:  MultiGirthBodyFat(in.WeightKg, p, m),
	}

	st.BodyFat = st.BFNavy
	if in.ManualBodyFat != nil {
		st.BodyFat = bodyFat(*in.ManualBodyFat)
	}
	st.FFMI = FFMI(in.WeightKg, p.HeightCm, st.BodyFat)

	st.Symmetry = Symmetry(m)
	st.Percentiles = e.Percentiles(p.Sex, m)
	st.AestheticRank = AestheticRank(st.Percentiles, m)
	return st
}

// Symmetry compares left and right values for every paired limb measured on
// both sides. m must already be normalized.
func Symmetry(m Measurements) map[string]SymmetryPair {
	out := make(map[string]SymmetryPair)
	for _, key := range pairedKeys {
		l, r, okL, okR := m.paired(key)
		if !okL || !okR {
			continue
		}
		hi := math.Max(l, r)
		if hi <= 0 {
			continue
		}
		out[key] = SymmetryPair{
			Left:  l,
			Right: r,
			Ratio: round(math.Min(l, r)/hi*100, 1),
			Delta: round(math.Abs(l-r), 1),
		}
	}
	return out
}

// Percentiles places every known measurement in the population distribution
// for sex. Paired limbs are averaged across sides first. m must already be
// normalized.
func (e *Estimator) Percentiles(sex Sex, m Measurements) map[string]float64 {
	out := make(map[string]float64)
	for key := range m {
		base, _ := splitKey(key)
		if _, done := out[base]; done {
			continue
		}
		v, ok := e.valueFor(base, m)
		if !ok {
			continue
		}
		stat, ok := e.ref.Lookup(sex, base)
		if !ok {
			continue
		}
		out[base] = Percentile(v, stat)
	}
	return out
}

func (e *Estimator) valueFor(base string, m Measurements) (float64, bool) {
	if !isPaired(base) {
		return m.get(base)
	}
	l, r, okL, okR := m.paired(base)
	switch {
	case okL && okR:
		return (l + r) / 2, true
	case okL:
		return l, true
	case okR:
		return r, true
	}
	return m.get(base)
}

// Percentile converts a value to a population percentile via the normal CDF,
// computed with math.Erf.
func Percentile(value float64, s PopulationStat) float64 {
	if s.Std <= 0 {
		return 50.0
	}
	z := (value - s.Mean) / s.Std
	p := 50 * (1 + math.Erf(z/math.Sqrt2))
	if !finite(p) {
		return 50.0
	}
	return round(math.Min(math.Max(p, 0), 100), 1)
}

// AestheticRank scores V-taper, muscle percentiles and a lean waist into a
// "top X%" figure; lower is better and the floor is 1.
func AestheticRank(percentiles map[string]float64, m Measurements) *float64 {
	if len(percentiles) == 0 {
		return nil
	}

	var scores []float64
	shoulder, okS := m.get("shoulder")
	waist, okW := m.get("waist")
	if okS && okW && waist > 0 {
		scores = append(scores, math.Min(shoulder/waist/idealShoulderWaist*100, 100))
	}
	for _, key := range []string{"chest", "shoulder", "bicep", "thigh", "calf"} {
		if p, ok := percentiles[key]; ok {
			scores = append(scores, p)
		}
	}
	if p, ok := percentiles["waist"]; ok {
		scores = append(scores, 100-p)
	}
	if len(scores) == 0 {
		return nil
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	rank := round(math.Max(100-sum/float64(len(scores)), 1), 1)
	return &rank
}
