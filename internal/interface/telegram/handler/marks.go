package handler

import (
	"context"
	"errors"

	"github.com/gradehub/gradehub-bot/internal/application/dialogue"
	"github.com/gradehub/gradehub-bot/internal/domain/shared"
	"github.com/gradehub/gradehub-bot/internal/domain/student"
)

const unknownMessage = "Sorry, I didn't understand that. Type /help for commands."

// MarksHandler drives the marks-entry dialogue: /marks starts it, /cancel
// aborts it, and free-text messages advance it.
type MarksHandler struct {
	engine *dialogue.Engine
}

// NewMarksHandler creates a MarksHandler.
func NewMarksHandler(engine *dialogue.Engine) *MarksHandler {
	return &MarksHandler{engine: engine}
}

// Handle starts (or restarts) the dialogue for the user.
func (h *MarksHandler) Handle(_ context.Context, req Request) (Response, error) {
	res := h.engine.Start(student.TelegramID(req.TelegramID), req.DisplayName)
	return Response{Messages: res.Replies}, nil
}

// Cancel aborts the user's dialogue from any stage. /cancel outside a
// dialogue is not a recognized command and gets the unknown-input reply.
func (h *MarksHandler) Cancel(_ context.Context, req Request) (Response, error) {
	msg, ok := h.engine.Cancel(student.TelegramID(req.TelegramID))
	if !ok {
		return reply(unknownMessage), nil
	}
	return reply(msg), nil
}

// HandleText advances the dialogue with a free-text message. Users with no
// active dialogue get the generic unknown-input reply.
func (h *MarksHandler) HandleText(ctx context.Context, req Request, text string) (Response, error) {
	res, err := h.engine.HandleMessage(ctx, student.TelegramID(req.TelegramID), req.DisplayName, text)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return reply(unknownMessage), nil
		}
		return Response{}, err
	}
	return Response{Messages: res.Replies}, nil
}

// InDialogue reports whether the user has an active marks dialogue.
func (h *MarksHandler) InDialogue(id int64) bool {
	return h.engine.Active(student.TelegramID(id))
}
