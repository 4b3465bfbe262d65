// Package presenter formats domain data into user-facing Telegram messages.
package presenter

import (
	"fmt"
	"strings"

	"github.com/gradehub/gradehub-bot/internal/application/query"
	"github.com/gradehub/gradehub-bot/internal/domain/grading"
)

// StatsPresenter renders saved marks and derived scores for /mystats.
type StatsPresenter struct {
	passingPercent float64
}

// NewStatsPresenter creates a stats presenter.
func NewStatsPresenter(passingPercent float64) *StatsPresenter {
	if passingPercent <= 0 {
		passingPercent = grading.DefaultPassingPercent
	}
	return &StatsPresenter{passingPercent: passingPercent}
}

// Render formats the full saved-stats message.
func (p *StatsPresenter) Render(res *query.GetStatsResult) string {
	rec := res.Record

	wkDisplay := "No weekly marks"
	if len(rec.WeeklyScores) > 0 {
		marks := make([]string, len(rec.WeeklyScores))
		for i, w := range rec.WeeklyScores {
			marks[i] = grading.FormatMark(w)
		}
		wkDisplay = strings.Join(marks, " ")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Saved data for %s:\n\n", rec.DisplayName))
	sb.WriteString(fmt.Sprintf("Mid-1: %s\nMid-2: %s\n", grading.FormatMark(rec.Mid1), grading.FormatMark(rec.Mid2)))
	sb.WriteString(fmt.Sprintf("Weeklies: %s\n\n", wkDisplay))
	sb.WriteString(fmt.Sprintf("Computed mids component (out of 25): %s\n", grading.FormatMark(res.Breakdown.Mids)))
	sb.WriteString(fmt.Sprintf("Computed weekly component (out of 5): %s\n", grading.FormatMark(res.Breakdown.Weekly)))
	sb.WriteString(fmt.Sprintf("Internals (out of 30): %s\n\n", grading.FormatMark(res.Breakdown.Total)))
	percent := grading.FormatMark(p.passingPercent)
	if res.Required.Achievable() {
		sb.WriteString(fmt.Sprintf(
			"Marks needed in external (out of 70) to reach %s%% overall: %s",
			percent, grading.FormatMark(res.Required.Capped),
		))
	} else {
		// Showing the capped number here would look achievable when it
		// is not; report the raw requirement and say so.
		sb.WriteString(fmt.Sprintf(
			"⚠️ Reaching %s%% overall needs %s external marks, but the external is out of 70. Not achievable even with a perfect score.",
			percent, grading.FormatMark(res.Required.Raw),
		))
	}

	return sb.String()
}

// RenderForecast formats the attendance forecast message.
func RenderForecast(f grading.AttendanceForecast, target float64) string {
	return fmt.Sprintf(
		"📊 Attendance Forecast:\n\n"+
			"➡️ Final: %d/%d (%s%%)\n"+
			"➡️ You can skip up to %d classes and still stay ≥ %s%%.",
		f.Attended, f.Total, grading.FormatMark(f.FinalPercent), f.MaxSkippable, grading.FormatMark(target),
	)
}
