// Package grading implements the pure scoring engine for Gradehub.
// All functions here are stateless and perform no I/O: they take raw marks
// and produce derived scores. Input validation (non-negativity, ranges)
// is the caller's responsibility; the engine only clamps where the grading
// scheme itself demands it.
package grading

import "sort"

// Grading scheme constants. Mids are assumed out of 25 each, weekly tests
// out of 5, internals out of 30, and the external exam out of 70, for an
// overall total of 100 marks.
const (
	// MidsMax is the assumed maximum of a single mid exam.
	MidsMax = 25.0

	// WeeklyMax is the assumed maximum of a single weekly test.
	WeeklyMax = 5.0

	// InternalsMax is the maximum internals total.
	InternalsMax = 30.0

	// ExternalMax is the maximum of the external exam.
	ExternalMax = 70.0

	// DefaultPassingPercent is the overall percentage needed to pass.
	DefaultPassingPercent = 40.0
)

// bestWeeklyCount is how many weekly tests count towards the weekly component.
const bestWeeklyCount = 4

// MidsComponent combines two mid-exam scores: 80% of the higher mid plus
// 20% of the lower one. The result stays on the raw mid scale (out of 25);
// no rescaling or clamping is performed.
func MidsComponent(mid1, mid2 float64) float64 {
	high, low := mid1, mid2
	if mid2 > mid1 {
		high, low = mid2, mid1
	}
	return 0.8*high + 0.2*low
}

// WeeklyComponent returns the arithmetic mean of the best 4 weekly test
// scores (or of all of them when fewer than 4 were taken). An empty slice
// yields 0. The input slice is not modified.
func WeeklyComponent(weeklies []float64) float64 {
	if len(weeklies) == 0 {
		return 0
	}

	sorted := make([]float64, len(weeklies))
	copy(sorted, weeklies)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	n := bestWeeklyCount
	if len(sorted) < n {
		n = len(sorted)
	}

	var sum float64
	for _, v := range sorted[:n] {
		sum += v
	}
	return sum / float64(n)
}

// Breakdown holds the computed internals components and total.
type Breakdown struct {
	// Mids is the mids component, out of 25 (not clamped).
	Mids float64

	// Weekly is the weekly component, out of 5 (not clamped).
	Weekly float64

	// Total is the internals total, clamped to [0, 30].
	Total float64
}

// Internals computes the full internals breakdown from two mid scores and
// the weekly test scores. Only the total is clamped to [0, InternalsMax];
// the individual components are returned as-is.
func Internals(mid1, mid2 float64, weeklies []float64) Breakdown {
	mids := MidsComponent(mid1, mid2)
	weekly := WeeklyComponent(weeklies)

	total := mids + weekly
	if total < 0 {
		total = 0
	}
	if total > InternalsMax {
		total = InternalsMax
	}

	return Breakdown{Mids: mids, Weekly: weekly, Total: total}
}

// ExternalRequirement holds the marks needed in the external exam to reach
// the passing threshold. Raw may exceed ExternalMax, in which case the
// target is mathematically unreachable; Capped is bounded by ExternalMax
// and must never be presented as achievable on its own.
type ExternalRequirement struct {
	// Raw is max(0, passing threshold - internals), unbounded above.
	Raw float64

	// Capped is Raw bounded by ExternalMax.
	Capped float64
}

// Achievable reports whether the passing threshold can be reached with a
// perfect external score.
func (r ExternalRequirement) Achievable() bool {
	return r.Raw <= ExternalMax
}

// NeededExternalToPass computes how many external-exam marks are required
// to reach the given overall passing percent. The percent is numerically
// equal to marks out of 100, so the required overall marks compare directly
// against the internals total.
func NeededExternalToPass(internals, passingPercent float64) ExternalRequirement {
	requiredOverall := passingPercent / 100.0 * 100.0

	raw := requiredOverall - internals
	if raw < 0 {
		raw = 0
	}

	capped := raw
	if capped > ExternalMax {
		capped = ExternalMax
	}

	return ExternalRequirement{Raw: raw, Capped: capped}
}
