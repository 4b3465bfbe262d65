package handler

import (
	"context"

	"github.com/gradehub/gradehub-bot/internal/application/command"
	"github.com/gradehub/gradehub-bot/internal/domain/student"
)

// ResetHandler answers /reset by deleting the user's saved record.
type ResetHandler struct {
	reset *command.ResetStudentHandler
}

// NewResetHandler creates a ResetHandler.
func NewResetHandler(reset *command.ResetStudentHandler) *ResetHandler {
	return &ResetHandler{reset: reset}
}

// Handle deletes the saved record. Resetting with nothing saved still
// reports success, matching the delete's idempotency.
func (h *ResetHandler) Handle(ctx context.Context, req Request) (Response, error) {
	if err := h.reset.Handle(ctx, student.TelegramID(req.TelegramID)); err != nil {
		return Response{}, err
	}
	return reply("Your saved data has been reset."), nil
}
