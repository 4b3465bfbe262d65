// Package command contains application-layer write operations.
// Each handler follows the pattern: validate input → invoke domain →
// persist through a repository interface.
package command

import (
	"context"
	"fmt"

	"github.com/gradehub/gradehub-bot/internal/domain/student"
)

// SaveRecordInput contains everything collected by the marks dialogue.
type SaveRecordInput struct {
	TelegramID  student.TelegramID
	DisplayName string
	Mid1        float64
	Mid2        float64
	Weeklies    []float64

	// Internals is the computed (already rounded) internals total.
	Internals float64
}

// SaveRecordHandler persists a student's marks snapshot.
type SaveRecordHandler struct {
	repo student.Repository
}

// NewSaveRecordHandler creates a new SaveRecordHandler.
func NewSaveRecordHandler(repo student.Repository) *SaveRecordHandler {
	return &SaveRecordHandler{repo: repo}
}

// Handle validates the input and upserts the record. The upsert fully
// replaces any previous record for the same Telegram ID.
func (h *SaveRecordHandler) Handle(ctx context.Context, in SaveRecordInput) error {
	rec, err := student.NewRecord(in.TelegramID, in.DisplayName, in.Mid1, in.Mid2, in.Weeklies, in.Internals)
	if err != nil {
		return fmt.Errorf("build record: %w", err)
	}

	if err := h.repo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}

	return nil
}
