package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMidsComponent(t *testing.T) {
	tests := []struct {
		name     string
		mid1     float64
		mid2     float64
		expected float64
	}{
		{"higher first", 20, 18, 0.8*20 + 0.2*18},
		{"higher second", 18, 20, 0.8*20 + 0.2*18},
		{"equal mids", 15, 15, 15},
		{"both zero", 0, 0, 0},
		{"negative passes through uncapped", -5, 10, 0.8*10 + 0.2*-5},
		{"above assumed max passes through uncapped", 100, 10, 0.8*100 + 0.2*10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, MidsComponent(tt.mid1, tt.mid2), 1e-12)
		})
	}
}

func TestWeeklyComponent_BestFourOfMany(t *testing.T) {
	scores := []float64{5, 4, 4.5, 3, 5, 4, 3.5, 4}
	// best 4 = [5, 5, 4.5, 4]
	assert.InDelta(t, 4.625, WeeklyComponent(scores), 1e-12)

	// Order must not matter.
	reversed := []float64{4, 3.5, 4, 5, 3, 4.5, 4, 5}
	assert.InDelta(t, 4.625, WeeklyComponent(reversed), 1e-12)
}

func TestWeeklyComponent_FewerThanFour(t *testing.T) {
	assert.InDelta(t, 3.5, WeeklyComponent([]float64{3, 4}), 1e-12)
	assert.InDelta(t, 5, WeeklyComponent([]float64{5}), 1e-12)
	assert.Equal(t, 0.0, WeeklyComponent(nil))
	assert.Equal(t, 0.0, WeeklyComponent([]float64{}))
}

func TestWeeklyComponent_DoesNotMutateInput(t *testing.T) {
	scores := []float64{1, 5, 3}
	WeeklyComponent(scores)
	assert.Equal(t, []float64{1, 5, 3}, scores)
}

func TestInternals_EndToEndExample(t *testing.T) {
	// mid1=18, mid2=20 -> mids = 19.6
	// weeklies [5 4 4.5 3 5 4 3.5 4] -> best4 mean = 4.625
	// total = 24.225
	b := Internals(18, 20, []float64{5, 4, 4.5, 3, 5, 4, 3.5, 4})

	assert.InDelta(t, 19.6, b.Mids, 1e-9)
	assert.InDelta(t, 4.625, b.Weekly, 1e-9)
	assert.InDelta(t, 24.225, b.Total, 1e-9)

	req := NeededExternalToPass(b.Total, DefaultPassingPercent)
	assert.InDelta(t, 15.775, req.Raw, 1e-9)
	assert.InDelta(t, 15.775, req.Capped, 1e-9)
	assert.True(t, req.Achievable())
}

func TestInternals_TotalClamped(t *testing.T) {
	tests := []struct {
		name     string
		mid1     float64
		mid2     float64
		weeklies []float64
		expected float64
	}{
		{"huge mids clamp to 30", 1000, 900, []float64{5, 5, 5, 5}, InternalsMax},
		{"negative mids clamp to 0", -100, -50, nil, 0},
		{"exactly at max", 25, 25, []float64{5, 5, 5, 5}, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Internals(tt.mid1, tt.mid2, tt.weeklies)
			assert.InDelta(t, tt.expected, b.Total, 1e-12)
			assert.GreaterOrEqual(t, b.Total, 0.0)
			assert.LessOrEqual(t, b.Total, InternalsMax)
		})
	}
}

func TestInternals_ComponentsNotClamped(t *testing.T) {
	b := Internals(100, 90, []float64{9, 9, 9, 9})
	assert.Greater(t, b.Mids, MidsMax)
	assert.Greater(t, b.Weekly, WeeklyMax)
	assert.Equal(t, InternalsMax, b.Total)
}

func TestNeededExternalToPass(t *testing.T) {
	tests := []struct {
		name       string
		internals  float64
		percent    float64
		wantRaw    float64
		wantCapped float64
		achievable bool
	}{
		{"full internals", 30, 40, 10, 10, true},
		{"zero internals", 0, 40, 40, 40, true},
		{"already passed", 45, 40, 0, 0, true},
		{"unreachable threshold", 5, 90, 85, 70, false},
		{"boundary exactly 70", 20, 90, 70, 70, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NeededExternalToPass(tt.internals, tt.percent)
			assert.InDelta(t, tt.wantRaw, req.Raw, 1e-9)
			assert.InDelta(t, tt.wantCapped, req.Capped, 1e-9)
			assert.Equal(t, tt.achievable, req.Achievable())
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 24.23, Round2(24.225))
	assert.Equal(t, 19.6, Round2(19.6))
	// Epsilon bias keeps values just below a boundary from rounding down.
	assert.Equal(t, 25.0, Round2(24.999999999))
	assert.Equal(t, 0.0, Round2(0))
}
