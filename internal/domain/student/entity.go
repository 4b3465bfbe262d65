// Package student defines the academic record entity and its repository
// contract. A record is the last saved marks snapshot for one Telegram user;
// saving fully replaces the previous snapshot, there is no history.
package student

import (
	"time"

	"github.com/gradehub/gradehub-bot/internal/domain/shared"
)

// TelegramID identifies a student by their Telegram user ID. It is treated
// as an opaque identity; the bot performs no authentication beyond it.
type TelegramID int64

// Validate checks that the ID is usable as a primary key.
func (id TelegramID) Validate() error {
	if id <= 0 {
		return shared.ErrInvalidTelegramID
	}
	return nil
}

// Record is the persisted academic record of one student.
type Record struct {
	// TelegramID is the primary key.
	TelegramID TelegramID

	// DisplayName is the student's name as reported by Telegram at save time.
	DisplayName string

	// Mid1 and Mid2 are the raw mid-exam marks (assumed out of 25 each).
	Mid1 float64
	Mid2 float64

	// WeeklyScores are the raw weekly test marks in the order they were
	// entered (assumed out of 5 each). Length is not constrained here;
	// validation happens at collection time.
	WeeklyScores []float64

	// LastInternals is the internals total computed when the record was saved.
	// Readers should recompute from the raw marks rather than trust it.
	LastInternals float64

	// UpdatedAt is when the record was last saved.
	UpdatedAt time.Time
}

// NewRecord creates a record from collected dialogue data.
func NewRecord(id TelegramID, displayName string, mid1, mid2 float64, weeklies []float64, internals float64) (*Record, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if displayName == "" {
		displayName = "Student"
	}

	scores := make([]float64, len(weeklies))
	copy(scores, weeklies)

	return &Record{
		TelegramID:    id,
		DisplayName:   displayName,
		Mid1:          mid1,
		Mid2:          mid2,
		WeeklyScores:  scores,
		LastInternals: internals,
		UpdatedAt:     time.Now().UTC(),
	}, nil
}
