// Package query contains application-layer read operations.
package query

import (
	"context"
	"fmt"

	"github.com/gradehub/gradehub-bot/internal/domain/grading"
	"github.com/gradehub/gradehub-bot/internal/domain/student"
)

// GetStatsResult is the saved record together with freshly recomputed
// derived scores. The stored internals total is never trusted for display;
// components are always re-derived from the raw marks.
type GetStatsResult struct {
	Record    *student.Record
	Breakdown grading.Breakdown
	Required  grading.ExternalRequirement
}

// GetStatsHandler answers the /mystats query.
type GetStatsHandler struct {
	repo           student.Repository
	passingPercent float64
}

// NewGetStatsHandler creates a new GetStatsHandler.
func NewGetStatsHandler(repo student.Repository, passingPercent float64) *GetStatsHandler {
	if passingPercent <= 0 {
		passingPercent = grading.DefaultPassingPercent
	}
	return &GetStatsHandler{repo: repo, passingPercent: passingPercent}
}

// Handle fetches the record and recomputes all derived values.
// Returns shared.ErrStudentNotFound (via the repository) when no record
// has been saved for the ID.
func (h *GetStatsHandler) Handle(ctx context.Context, id student.TelegramID) (*GetStatsResult, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	rec, err := h.repo.Fetch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch record: %w", err)
	}

	breakdown := grading.Internals(rec.Mid1, rec.Mid2, rec.WeeklyScores)
	required := grading.NeededExternalToPass(grading.Round2(breakdown.Total), h.passingPercent)

	return &GetStatsResult{
		Record:    rec,
		Breakdown: breakdown,
		Required:  required,
	}, nil
}
