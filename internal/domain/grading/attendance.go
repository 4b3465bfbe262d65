package grading

import "github.com/gradehub/gradehub-bot/internal/domain/shared"

// DefaultAttendanceTarget is the minimum attendance percentage students
// are expected to maintain.
const DefaultAttendanceTarget = 75.0

// AttendanceForecast is the projected attendance state after a number of
// future classes.
type AttendanceForecast struct {
	// Attended is the projected number of attended classes.
	Attended int

	// Total is the projected total number of classes.
	Total int

	// FinalPercent is 100 * Attended / Total.
	FinalPercent float64

	// MaxSkippable is how many of the projected attended classes could be
	// skipped while still staying at or above the target percentage.
	// Never negative.
	MaxSkippable int
}

// ForecastAttendance projects attendance after futureTotal more classes of
// which futureAttend will be attended. All counts must already be validated
// as non-negative integers by the caller. A projected total of zero is a
// degenerate input and is reported as shared.ErrZeroClassTotal instead of
// dividing by zero.
func ForecastAttendance(attended, total, futureAttend, futureTotal int, target float64) (AttendanceForecast, error) {
	newAttended := attended + futureAttend
	newTotal := total + futureTotal

	if newTotal == 0 {
		return AttendanceForecast{}, shared.ErrZeroClassTotal
	}

	finalPercent := float64(newAttended) / float64(newTotal) * 100.0

	ratio := target / 100.0
	maxSkip := (float64(newAttended) - ratio*float64(newTotal)) / ratio
	skippable := 0
	if maxSkip > 0 {
		skippable = int(maxSkip)
	}

	return AttendanceForecast{
		Attended:     newAttended,
		Total:        newTotal,
		FinalPercent: finalPercent,
		MaxSkippable: skippable,
	}, nil
}
