package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/chandra197/tpo-attendance-api/internal/models"
)

// SemesterRepository handles persistence for semester date windows.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs the repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// Upsert saves a cohort's window within the caller's transaction, overwriting
// the dates when one already exists. The row lock taken here also serializes
// concurrent expansions for the same cohort.
func (r *SemesterRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, window *models.SemesterWindow) error {
	const query = `INSERT INTO semester_dates (batch_year, year, semester, branch, start_date, end_date)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (batch_year, year, semester, branch)
        DO UPDATE SET start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date`
	if _, err := exec.ExecContext(ctx, query,
		window.BatchYear, window.Year, window.Semester, window.Branch, window.StartDate, window.EndDate); err != nil {
		return fmt.Errorf("upsert semester window: %w", err)
	}
	return nil
}
