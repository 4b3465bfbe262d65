package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gradehub/gradehub-bot/internal/domain/shared"
	"github.com/gradehub/gradehub-bot/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository for PostgreSQL.
// Writes are single-row upserts; PostgreSQL's row-level locking serializes
// concurrent writes to the same Telegram ID without blocking reads of
// unrelated rows.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

// Upsert fully replaces the record for its Telegram ID.
func (r *StudentRepository) Upsert(ctx context.Context, rec *student.Record) error {
	query := `
		INSERT INTO students (telegram_id, display_name, mid1, mid2, weekly, last_internals, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (telegram_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			mid1 = EXCLUDED.mid1,
			mid2 = EXCLUDED.mid2,
			weekly = EXCLUDED.weekly,
			last_internals = EXCLUDED.last_internals,
			updated_at = EXCLUDED.updated_at
	`

	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := r.conn.Exec(ctx, query,
		int64(rec.TelegramID),
		rec.DisplayName,
		rec.Mid1,
		rec.Mid2,
		encodeWeekly(rec.WeeklyScores),
		rec.LastInternals,
		updatedAt,
	)
	if err != nil {
		return shared.WrapError("student", "Upsert", shared.ErrPersistence, "failed to upsert record", err)
	}

	return nil
}

// Fetch returns the record for the given Telegram ID, or
// shared.ErrStudentNotFound when absent.
func (r *StudentRepository) Fetch(ctx context.Context, id student.TelegramID) (*student.Record, error) {
	query := `
		SELECT telegram_id, display_name, mid1, mid2, weekly, last_internals, updated_at
		FROM students
		WHERE telegram_id = $1
	`

	row := r.conn.QueryRow(ctx, query, int64(id))
	return r.scanRecord(row)
}

// Delete removes the record. Deleting an absent record is not an error.
func (r *StudentRepository) Delete(ctx context.Context, id student.TelegramID) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM students WHERE telegram_id = $1`, int64(id))
	if err != nil {
		return shared.WrapError("student", "Delete", shared.ErrPersistence, "failed to delete record", err)
	}
	return nil
}

// scanRecord maps a row onto the domain entity.
func (r *StudentRepository) scanRecord(row pgx.Row) (*student.Record, error) {
	var (
		rec       student.Record
		tgID      int64
		weeklyStr string
	)

	err := row.Scan(&tgID, &rec.DisplayName, &rec.Mid1, &rec.Mid2, &weeklyStr, &rec.LastInternals, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, shared.WrapError("student", "Fetch", shared.ErrPersistence, "failed to scan record", err)
	}

	rec.TelegramID = student.TelegramID(tgID)

	rec.WeeklyScores, err = decodeWeekly(weeklyStr)
	if err != nil {
		return nil, fmt.Errorf("decode weekly scores: %w", err)
	}

	return &rec, nil
}
