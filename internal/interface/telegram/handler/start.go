package handler

import (
	"context"
	"fmt"
)

// StartHandler answers /start and /help with the greeting and command list.
type StartHandler struct{}

// NewStartHandler creates a StartHandler.
func NewStartHandler() *StartHandler {
	return &StartHandler{}
}

// Handle builds the greeting. /help reuses it, matching how the original
// commands behave identically.
func (h *StartHandler) Handle(_ context.Context, req Request) (Response, error) {
	name := req.DisplayName
	if name == "" {
		name = "Student"
	}

	text := fmt.Sprintf(
		"Hi %s! 👋\n\n"+
			"I can help you calculate internals, forecast attendance, and search YouTube for study topics.\n\n"+
			"Commands:\n"+
			"/marks - Enter marks and calculate\n"+
			"/mystats - Show your saved marks\n"+
			"/yt <topic> - Search YouTube for topic (top 5)\n"+
			"/reset - Reset your saved marks\n"+
			"/future <attended> <total> <future_attend> <future_total> - Attendance forecast\n"+
			"/help - Show help",
		name,
	)

	return reply(text), nil
}
