package handler

import (
	"context"

	"github.com/gradehub/gradehub-bot/internal/application/query"
	"github.com/gradehub/gradehub-bot/internal/domain/shared"
	"github.com/gradehub/gradehub-bot/internal/domain/student"
	"github.com/gradehub/gradehub-bot/internal/interface/telegram/presenter"
)

const noSavedData = "No saved data found. Use /marks to compute and save your data."

// StatsHandler answers /mystats with the saved record and recomputed scores.
type StatsHandler struct {
	stats     *query.GetStatsHandler
	presenter *presenter.StatsPresenter
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(stats *query.GetStatsHandler, p *presenter.StatsPresenter) *StatsHandler {
	return &StatsHandler{stats: stats, presenter: p}
}

// Handle fetches and formats the user's saved marks.
func (h *StatsHandler) Handle(ctx context.Context, req Request) (Response, error) {
	res, err := h.stats.Handle(ctx, student.TelegramID(req.TelegramID))
	if err != nil {
		if shared.IsNotFound(err) {
			return reply(noSavedData), nil
		}
		return Response{}, err
	}

	return reply(h.presenter.Render(res)), nil
}
