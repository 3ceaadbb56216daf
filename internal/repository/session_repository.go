package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chandra197/tpo-attendance-api/internal/models"
)

const sessionColumns = `id, batch_year, year, semester, branch, section, date, start_time, end_time, is_generated, created_at`

// SessionRepository handles persistence for training sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// FindByID fetches a session. sql.ErrNoRows passes through.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.TrainingSession, error) {
	query := fmt.Sprintf("SELECT %s FROM training_sessions WHERE id = $1", sessionColumns)
	var session models.TrainingSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// LockByID fetches a session with a row lock so concurrent attendance writes
// for the same session serialize. sql.ErrNoRows passes through.
func (r *SessionRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.TrainingSession, error) {
	query := fmt.Sprintf("SELECT %s FROM training_sessions WHERE id = $1 FOR UPDATE", sessionColumns)
	var session models.TrainingSession
	if err := sqlx.GetContext(ctx, exec, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns a section's sessions regardless of marking state, ordered by
// date then start time.
func (r *SessionRepository) List(ctx context.Context, filter models.CohortFilter) ([]models.TrainingSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM training_sessions
        WHERE batch_year = $1 AND semester = $2 AND year = $3 AND branch = $4 AND section = $5
        ORDER BY date, start_time`, sessionColumns)
	var sessions []models.TrainingSession
	if err := r.db.SelectContext(ctx, &sessions, query, filter.BatchYear, filter.Semester, filter.Year, filter.Branch, filter.Section); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// ListUnmarked returns a section's sessions with no attendance rows yet,
// ordered by date then start time.
func (r *SessionRepository) ListUnmarked(ctx context.Context, filter models.CohortFilter) ([]models.TrainingSession, error) {
	const query = `SELECT ts.id, ts.batch_year, ts.year, ts.semester, ts.branch, ts.section,
        ts.date, ts.start_time, ts.end_time, ts.is_generated, ts.created_at
        FROM training_sessions ts
        LEFT JOIN attendance a ON a.session_id = ts.id
        WHERE ts.batch_year = $1 AND ts.semester = $2 AND ts.year = $3 AND ts.branch = $4 AND ts.section = $5
        AND a.session_id IS NULL
        ORDER BY ts.date, ts.start_time`
	var sessions []models.TrainingSession
	if err := r.db.SelectContext(ctx, &sessions, query, filter.BatchYear, filter.Semester, filter.Year, filter.Branch, filter.Section); err != nil {
		return nil, fmt.Errorf("list unmarked sessions: %w", err)
	}
	return sessions, nil
}

// InsertGenerated inserts a generated session within the caller's transaction.
// A session already covering the same cohort, date and start time is left
// untouched; the return value reports whether a row was actually inserted.
func (r *SessionRepository) InsertGenerated(ctx context.Context, exec sqlx.ExtContext, session *models.TrainingSession) (bool, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	session.IsGenerated = true
	const query = `INSERT INTO training_sessions
        (id, batch_year, year, semester, branch, section, date, start_time, end_time, is_generated, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (batch_year, year, semester, branch, section, date, start_time) DO NOTHING
        RETURNING id`
	var insertedID string
	err := sqlx.GetContext(ctx, exec, &insertedID, query,
		session.ID, session.BatchYear, session.Year, session.Semester, session.Branch, session.Section,
		session.Date, session.StartTime, session.EndTime, session.IsGenerated, session.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("insert generated session: %w", err)
	}
	return true, nil
}
