package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/chandra197/tpo-attendance-api/internal/models"
)

// TimeSlotRepository resolves period numbers to wall-clock times.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository constructs the repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// FindByYearPeriod resolves one (year, period) pair within the caller's
// transaction. sql.ErrNoRows passes through for unresolvable periods so the
// caller can turn it into a validation failure before anything is written.
func (r *TimeSlotRepository) FindByYearPeriod(ctx context.Context, exec sqlx.ExtContext, year, period int) (*models.TimeSlot, error) {
	const query = `SELECT year, period_number, start_time, end_time
        FROM time_slots WHERE year = $1 AND period_number = $2`
	var slot models.TimeSlot
	if err := sqlx.GetContext(ctx, exec, &slot, query, year, period); err != nil {
		return nil, err
	}
	return &slot, nil
}
