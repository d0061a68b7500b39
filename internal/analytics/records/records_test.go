package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

// TestDetect walks the weight, volume, duration priority.
func TestDetect(t *testing.T) {
	prior := Bests{MaxWeight: 120, MaxVolume: 850, MaxDuration: 60}
	tests := []struct {
		name   string
		c      Candidate
		want   Type
		wantOK bool
	}{
		{"heavier wins first", Candidate{Weight: f64(125), Reps: intp(10), DurationSeconds: intp(90)}, Weight, true},
		{"volume when weight not beaten", Candidate{Weight: f64(90), Reps: intp(10)}, Volume, true},
		{"tie on volume is not a record", Candidate{Weight: f64(85), Reps: intp(10)}, "", false},
		{"tie on weight is not a record", Candidate{Weight: f64(120), Reps: intp(1)}, "", false},
		{"duration last", Candidate{DurationSeconds: intp(61)}, Duration, true},
		{"weight without reps has no volume", Candidate{Weight: f64(100)}, "", false},
		{"nothing recorded", Candidate{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect(prior, tt.c)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestDetectFirstSet treats any positive value as a record when no history
// exists.
func TestDetectFirstSet(t *testing.T) {
	got, ok := Detect(Bests{}, Candidate{Weight: f64(20), Reps: intp(5)})
	assert.True(t, ok)
	assert.Equal(t, Weight, got)

	got, ok = Detect(Bests{}, Candidate{DurationSeconds: intp(30)})
	assert.True(t, ok)
	assert.Equal(t, Duration, got)

	_, ok = Detect(Bests{}, Candidate{Weight: f64(0), Reps: intp(10)})
	assert.False(t, ok)
}

// TestBestsOf folds a history and matches incremental Include.
func TestBestsOf(t *testing.T) {
	history := []Candidate{
		{Weight: f64(100), Reps: intp(5)},
		{Weight: f64(80), Reps: intp(10)},
		{DurationSeconds: intp(45)},
		{Weight: f64(110)},
	}
	b := BestsOf(history)
	assert.Equal(t, Bests{MaxWeight: 110, MaxVolume: 800, MaxDuration: 45}, b)

	var inc Bests
	for _, c := range history {
		inc = inc.Include(c)
	}
	assert.Equal(t, b, inc)
}
