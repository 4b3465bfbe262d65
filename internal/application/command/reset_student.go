package command

import (
	"context"
	"fmt"

	"github.com/gradehub/gradehub-bot/internal/domain/student"
)

// ResetStudentHandler deletes a student's saved record.
type ResetStudentHandler struct {
	repo student.Repository
}

// NewResetStudentHandler creates a new ResetStudentHandler.
func NewResetStudentHandler(repo student.Repository) *ResetStudentHandler {
	return &ResetStudentHandler{repo: repo}
}

// Handle removes the record for the given Telegram ID. Resetting a user
// that has no record is not an error (delete is idempotent).
func (h *ResetStudentHandler) Handle(ctx context.Context, id student.TelegramID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	return nil
}
