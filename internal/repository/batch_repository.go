package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/chandra197/tpo-attendance-api/internal/models"
)

// BatchRepository handles persistence for academic batch (section) records.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs the repository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// ListSections returns the active sections for a cohort, ordered by section.
func (r *BatchRepository) ListSections(ctx context.Context, filter models.CohortFilter) ([]models.AcademicBatch, error) {
	const query = `SELECT id, batch_year, semester, year, branch, section, is_active
        FROM academic_batches
        WHERE batch_year = $1 AND semester = $2 AND year = $3 AND branch = $4 AND is_active = true
        ORDER BY section`
	var sections []models.AcademicBatch
	if err := r.db.SelectContext(ctx, &sections, query, filter.BatchYear, filter.Semester, filter.Year, filter.Branch); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}
