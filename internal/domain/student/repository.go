package student

import "context"

// Repository is the persistence contract for academic records.
// Implementations must be safe for concurrent use across different
// Telegram IDs; operations on the same ID are serialized by the caller.
type Repository interface {
	// Upsert fully replaces the record for its Telegram ID (idempotent).
	Upsert(ctx context.Context, rec *Record) error

	// Fetch returns the record for the given ID, or
	// shared.ErrStudentNotFound when absent.
	Fetch(ctx context.Context, id TelegramID) (*Record, error)

	// Delete removes the record. Deleting an absent record is not an error.
	Delete(ctx context.Context, id TelegramID) error
}
