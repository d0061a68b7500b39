package bodycomp

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var maleProfile = Profile{HeightCm: 180, Age: 30, Sex: Male}

func sampleMeasurements() Measurements {
	return Measurements{
		"chest":    105,
		"abdomen":  85,
		"neck":     38,
		"hip":      100,
		"shoulder": 125,
		"bicep_l":  37,
		"bicep_r":  39,
		"calf_l":   38,
	}
}

// TestBMRSexOffset verifies the Mifflin-St Jeor constant differs by exactly
// 166 kcal between sexes for identical weight, height and age.
func TestBMRSexOffset(t *testing.T) {
	for _, w := range []float64{45, 62.5, 80, 133.3} {
		m := BMR(w, Profile{HeightCm: 172.4, Age: 41, Sex: Male})
		f := BMR(w, Profile{HeightCm: 172.4, Age: 41, Sex: Female})
		require.NotNil(t, m)
		require.NotNil(t, f)
		assert.InDelta(t, 166.0, *m-*f, 1e-9, "weight %.1f", w)
	}
	assert.InDelta(t, 1780.0, *BMR(80, maleProfile), 1e-9)
	assert.Nil(t, BMR(0, maleProfile))
}

// TestNonFiniteWeight verifies NaN and infinite weights leave BMR nil and
// the cached stats still encode to JSON.
func TestNonFiniteWeight(t *testing.T) {
	est := NewEstimator(nil)
	for _, w := range []float64{math.NaN(), math.Inf(1)} {
		assert.Nil(t, BMR(w, maleProfile), "weight %v", w)

		st := est.Compute(Input{WeightKg: w, Profile: maleProfile, Measurements: sampleMeasurements()})
		assert.Nil(t, st.BMR)
		assert.Nil(t, st.FFMI)
		_, err := json.Marshal(st)
		require.NoError(t, err, "weight %v", w)
	}
}

// TestNavyBodyFat checks the inch-converted Navy formula and its null cases.
func TestNavyBodyFat(t *testing.T) {
	m := Measurements{"waist": 85, "neck": 38}
	bf := NavyBodyFat(maleProfile, m)
	require.NotNil(t, bf)
	assert.Equal(t, 16.2, *bf)

	// waist <= neck is a domain error for log10
	assert.Nil(t, NavyBodyFat(maleProfile, Measurements{"waist": 38, "neck": 38}))
	// female variant needs hips
	female := Profile{HeightCm: 165, Age: 28, Sex: Female}
	assert.Nil(t, NavyBodyFat(female, Measurements{"waist": 75, "neck": 33}))
	fbf := NavyBodyFat(female, Measurements{"waist": 75, "neck": 33, "hips": 100})
	require.NotNil(t, fbf)
	assert.Equal(t, 29.7, *fbf)
}

// TestOtherBodyFatModels pins each model against hand-computed values.
func TestOtherBodyFatModels(t *testing.T) {
	m := Measurements{"waist": 85, "chest": 105, "hips": 100}

	army := ArmyBodyFat(80, maleProfile, m)
	require.NotNil(t, army)
	assert.Equal(t, 18.5, *army)

	cun := CunBaeBodyFat(80, maleProfile)
	require.NotNil(t, cun)
	assert.Equal(t, 21.6, *cun)

	rfm := RFMBodyFat(maleProfile, m)
	require.NotNil(t, rfm)
	assert.Equal(t, 21.6, *rfm)

	multi := MultiGirthBodyFat(80, maleProfile, m)
	require.NotNil(t, multi)
	assert.Equal(t, 6.2, *multi)

	assert.Nil(t, MultiGirthBodyFat(80, maleProfile, Measurements{"waist": 85}))
	assert.Nil(t, ArmyBodyFat(80, maleProfile, Measurements{}))
}

// TestBodyFatClamped verifies every model stays inside [2, 60] even for
// absurd inputs.
func TestBodyFatClamped(t *testing.T) {
	lean := Measurements{"waist": 300, "neck": 10, "chest": 20, "hips": 20}
	huge := Measurements{"waist": 40, "neck": 39.9, "chest": 300, "hips": 300}
	for _, m := range []Measurements{lean, huge} {
		for _, bf := range []*float64{
			NavyBodyFat(maleProfile, m),
			ArmyBodyFat(40, maleProfile, m),
			CunBaeBodyFat(250, Profile{HeightCm: 150, Age: 90, Sex: Female}),
			RFMBodyFat(maleProfile, m),
			MultiGirthBodyFat(40, maleProfile, m),
		} {
			if bf == nil {
				continue
			}
			assert.GreaterOrEqual(t, *bf, MinBodyFat)
			assert.LessOrEqual(t, *bf, MaxBodyFat)
		}
	}
}

// TestComputeFullSnapshot runs the whole estimator on a realistic snapshot,
// including alias normalization (abdomen, hip) and paired averaging.
func TestComputeFullSnapshot(t *testing.T) {
	est := NewEstimator(nil)
	st := est.Compute(Input{WeightKg: 80, Profile: maleProfile, Measurements: sampleMeasurements()})

	require.NotNil(t, st.BFNavy)
	assert.Equal(t, 16.2, *st.BFNavy)
	require.NotNil(t, st.BodyFat)
	assert.Equal(t, *st.BFNavy, *st.BodyFat)
	require.NotNil(t, st.FFMI)
	assert.Equal(t, 20.7, *st.FFMI)

	assert.Equal(t, 56.1, st.Percentiles["chest"])
	assert.Equal(t, 18.0, st.Percentiles["waist"])
	assert.Equal(t, 85.8, st.Percentiles["bicep"])
	assert.Contains(t, st.Percentiles, "calf")
	assert.NotContains(t, st.Percentiles, "abdomen")

	require.Contains(t, st.Symmetry, "bicep")
	assert.Equal(t, SymmetryPair{Left: 37, Right: 39, Ratio: 94.9, Delta: 2}, st.Symmetry["bicep"])
	assert.NotContains(t, st.Symmetry, "calf")

	require.NotNil(t, st.AestheticRank)
	assert.InDelta(t, 27.0, *st.AestheticRank, 1e-9)
}

// TestComputeManualBodyFat verifies a manual value overrides Navy for FFMI
// and is clamped like every other estimate.
func TestComputeManualBodyFat(t *testing.T) {
	est := NewEstimator(nil)
	manual := 75.0
	st := est.Compute(Input{WeightKg: 80, Profile: maleProfile, Measurements: sampleMeasurements(), ManualBodyFat: &manual})
	require.NotNil(t, st.BodyFat)
	assert.Equal(t, MaxBodyFat, *st.BodyFat)
	assert.Equal(t, 16.2, *st.BFNavy)
}

// TestComputeWithoutMeasurements only yields the measurement-free metrics.
func TestComputeWithoutMeasurements(t *testing.T) {
	st := NewEstimator(nil).Compute(Input{WeightKg: 80, Profile: maleProfile})
	assert.NotNil(t, st.BMR)
	assert.NotNil(t, st.BFCunBae)
	assert.Nil(t, st.BFNavy)
	assert.Nil(t, st.FFMI)
	assert.Nil(t, st.AestheticRank)
	assert.Empty(t, st.Percentiles)
	assert.Empty(t, st.Symmetry)
}

// TestComputeDeterministic feeds the same inputs twice; cached stats must be
// reproducible from their inputs.
func TestComputeDeterministic(t *testing.T) {
	est := NewEstimator(DefaultReference())
	in := Input{WeightKg: 77.3, Profile: Profile{HeightCm: 168, Age: 52, Sex: Female}, Measurements: sampleMeasurements()}
	assert.Equal(t, est.Compute(in), est.Compute(in))
}

// TestPercentileBounds covers the std guard and extreme z-scores.
func TestPercentileBounds(t *testing.T) {
	assert.Equal(t, 50.0, Percentile(120, PopulationStat{Mean: 100, Std: 0}))
	assert.Equal(t, 50.0, Percentile(100, PopulationStat{Mean: 100, Std: 5}))
	assert.Equal(t, 100.0, Percentile(1e6, PopulationStat{Mean: 100, Std: 5}))
	assert.Equal(t, 0.0, Percentile(-1e6, PopulationStat{Mean: 100, Std: 5}))
}

// TestNormalizeCanonicalWins keeps an explicit waist over the abdomen alias.
func TestNormalizeCanonicalWins(t *testing.T) {
	m := Measurements{"Abdomen": 90, "waist": 84, "Bicep Left": 36, "thighs_r": 60, "neck": 0}.Normalize()
	assert.Equal(t, 84.0, m["waist"])
	assert.Equal(t, 36.0, m["bicep_l"])
	assert.Equal(t, 60.0, m["thigh_r"])
	assert.NotContains(t, m, "neck")
	assert.NotContains(t, m, "abdomen")
}

// TestReferenceIsolated verifies the reference copies its input table.
func TestReferenceIsolated(t *testing.T) {
	table := map[Sex]map[string]PopulationStat{Male: {"neck": {40, 3}}}
	ref := NewReference(table)
	table[Male]["neck"] = PopulationStat{Mean: 1, Std: 1}
	got, ok := ref.Lookup(Male, "neck")
	require.True(t, ok)
	assert.Equal(t, PopulationStat{Mean: 40, Std: 3}, got)
}

// TestAestheticRankFloor verifies a perfect score bottoms out at rank 1.
func TestAestheticRankFloor(t *testing.T) {
	rank := AestheticRank(
		map[string]float64{"chest": 100, "bicep": 100, "waist": 0},
		Measurements{"shoulder": 140, "waist": 70},
	)
	require.NotNil(t, rank)
	assert.Equal(t, 1.0, *rank)

	assert.Nil(t, AestheticRank(nil, Measurements{"shoulder": 140, "waist": 70}))
}

// TestSymmetryLopsided keeps the ratio a percentage of the larger side.
func TestSymmetryLopsided(t *testing.T) {
	sym := Symmetry(Measurements{"bicep_l": 10, "bicep_r": 50, "thigh_l": 0.5, "thigh_r": 60})
	require.Contains(t, sym, "bicep")
	assert.Equal(t, SymmetryPair{Left: 10, Right: 50, Ratio: 20, Delta: 40}, sym["bicep"])
	for key, pair := range sym {
		assert.GreaterOrEqual(t, pair.Ratio, 0.0, key)
		assert.LessOrEqual(t, pair.Ratio, 100.0, key)
	}
}
