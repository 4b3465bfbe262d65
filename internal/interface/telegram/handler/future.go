package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gradehub/gradehub-bot/internal/domain/grading"
	"github.com/gradehub/gradehub-bot/internal/interface/telegram/presenter"
)

const futureUsage = "⚠️ Usage: /future <attended> <total> <future_attend> <future_total>"

// FutureHandler answers /future with an attendance forecast.
type FutureHandler struct {
	target float64
}

// NewFutureHandler creates a FutureHandler with the given attendance target
// percentage.
func NewFutureHandler(target float64) *FutureHandler {
	if target <= 0 {
		target = grading.DefaultAttendanceTarget
	}
	return &FutureHandler{target: target}
}

// Handle parses the four integer arguments and forecasts attendance.
// Any parse failure, wrong argument count, negative count, or degenerate
// zero-total input gets the usage message rather than an error.
func (h *FutureHandler) Handle(_ context.Context, req Request) (Response, error) {
	fields := strings.Fields(req.Args)
	if len(fields) != 4 {
		return reply(futureUsage), nil
	}

	// The forecast contract requires non-negative counts; validation
	// happens here, not in the domain function.
	nums := make([]int, 4)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return reply(futureUsage), nil
		}
		nums[i] = n
	}

	forecast, err := grading.ForecastAttendance(nums[0], nums[1], nums[2], nums[3], h.target)
	if err != nil {
		return reply(futureUsage), nil
	}

	return reply(presenter.RenderForecast(forecast, h.target)), nil
}
