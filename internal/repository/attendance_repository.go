package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chandra197/tpo-attendance-api/internal/models"
)

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListBySession returns per-student status for a session, ordered by hall ticket.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID string) ([]models.SessionAttendanceRow, error) {
	const query = `SELECT a.student_id, s.hall_ticket_number, s.name AS student_name, a.status
        FROM attendance a
        JOIN students s ON s.id = a.student_id
        WHERE a.session_id = $1
        ORDER BY s.hall_ticket_number`
	var rows []models.SessionAttendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("list session attendance: %w", err)
	}
	return rows, nil
}

// CountBySession counts existing records for a session within the caller's
// transaction. Used to reject re-marking in create mode.
func (r *AttendanceRepository) CountBySession(ctx context.Context, exec sqlx.ExtContext, sessionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM attendance WHERE session_id = $1`
	var count int
	if err := sqlx.GetContext(ctx, exec, &count, query, sessionID); err != nil {
		return 0, fmt.Errorf("count session attendance: %w", err)
	}
	return count, nil
}

// UpsertBatch writes one record per roster student within the caller's
// transaction. The conflict target on (student_id, session_id) makes
// corrections overwrite instead of duplicating.
func (r *AttendanceRepository) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, records []models.AttendanceRecord) error {
	const query = `INSERT INTO attendance (id, student_id, session_id, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (student_id, session_id)
        DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		if _, err := exec.ExecContext(ctx, query,
			rec.ID, rec.StudentID, rec.SessionID, rec.Status, rec.CreatedAt, rec.UpdatedAt); err != nil {
			return fmt.Errorf("upsert attendance for student %s: %w", rec.StudentID, err)
		}
	}
	return nil
}
