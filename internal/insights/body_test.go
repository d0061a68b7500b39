package insights

import (
	"context"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertBioValidation(t *testing.T) {
	svc, _ := newTestService(newFakeStore())
	ctx := context.Background()

	tests := []struct {
		name string
		in   BioInput
		ok   bool
	}{
		{"valid", BioInput{HeightCm: 180, Age: 30, Sex: "Male"}, true},
		{"shorthand sex", BioInput{HeightCm: 165, Age: 28, Sex: "f"}, true},
		{"height too low", BioInput{HeightCm: 49, Age: 30, Sex: "male"}, false},
		{"height too high", BioInput{HeightCm: 301, Age: 30, Sex: "male"}, false},
		{"age too low", BioInput{HeightCm: 180, Age: 9, Sex: "male"}, false},
		{"age too high", BioInput{HeightCm: 180, Age: 121, Sex: "male"}, false},
		{"unknown sex", BioInput{HeightCm: 180, Age: 30, Sex: "other"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bio, err := svc.UpsertBio(ctx, 1, tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, []string{"male", "female"}, bio.Sex)
		})
	}
}

// TestLogBodyComputesStats caches stats derived from the saved bio.
func TestLogBodyComputesStats(t *testing.T) {
	st := newFakeStore()
	st.bio = &models.UserBio{UserID: 1, HeightCm: 180, Age: 30, Sex: "male"}
	svc, m := newTestService(st)

	l, err := svc.LogBody(context.Background(), 1, BodyLogInput{
		WeightKg:     80,
		Measurements: map[string]float64{"waist": 85, "neck": 38},
	})
	require.NoError(t, err)
	require.NotNil(t, l.Stats)
	require.NotNil(t, l.Stats.BMR)
	assert.InDelta(t, 1780.0, *l.Stats.BMR, 1e-9)
	require.NotNil(t, l.Stats.BFNavy)
	assert.Equal(t, 16.2, *l.Stats.BFNavy)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterBodyLogs))
}

// TestLogBodyWithoutBio stores the log and leaves stats empty until a bio
// exists, then RecomputeBodyLog fills them in.
func TestLogBodyWithoutBio(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ctx := context.Background()

	l, err := svc.LogBody(ctx, 1, BodyLogInput{WeightKg: 80})
	require.NoError(t, err)
	assert.Nil(t, l.Stats)

	_, err = svc.RecomputeBodyLog(ctx, 1, l.ID)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.UpsertBio(ctx, 1, BioInput{HeightCm: 180, Age: 30, Sex: "male"})
	require.NoError(t, err)
	l, err = svc.RecomputeBodyLog(ctx, 1, l.ID)
	require.NoError(t, err)
	require.NotNil(t, l.Stats)
	assert.NotNil(t, st.bodyLogs[0].Stats)
}

func TestLogBodyValidation(t *testing.T) {
	svc, _ := newTestService(newFakeStore())
	ctx := context.Background()

	for _, in := range []BodyLogInput{
		{WeightKg: 0},
		{WeightKg: -3},
		{WeightKg: 80, BodyFatPct: f64(101)},
		{WeightKg: 80, Measurements: map[string]float64{"waist": -1}},
	} {
		_, err := svc.LogBody(ctx, 1, in)
		assert.ErrorIs(t, err, ErrInvalid)
	}
}

func TestRecomputeBodyLogNotFound(t *testing.T) {
	svc, _ := newTestService(newFakeStore())
	_, err := svc.RecomputeBodyLog(context.Background(), 1, [16]byte{1})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBodyLogsRange(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(st)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := range 5 {
		at := base.AddDate(0, 0, i)
		_, err := svc.LogBody(ctx, 1, BodyLogInput{LoggedAt: &at, WeightKg: 80 + float64(i)})
		require.NoError(t, err)
	}

	logs, err := svc.BodyLogs(ctx, 1, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	latest, err := svc.LatestBody(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 84.0, latest.WeightKg)
}
