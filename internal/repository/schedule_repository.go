package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chandra197/tpo-attendance-api/internal/models"
)

// ScheduleRepository handles persistence for weekly training schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create inserts a weekly schedule within the caller's transaction.
func (r *ScheduleRepository) Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.TrainingSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO training_schedules
        (id, batch_year, semester, year, branch, section, day_of_week, start_period, end_period, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := exec.ExecContext(ctx, query,
		schedule.ID, schedule.BatchYear, schedule.Semester, schedule.Year, schedule.Branch,
		schedule.Section, schedule.DayOfWeek, schedule.StartPeriod, schedule.EndPeriod, schedule.CreatedAt); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// ListByCohort returns every weekly schedule for a cohort key, across all
// sections, inside the caller's transaction. Expansion iterates this set.
func (r *ScheduleRepository) ListByCohort(ctx context.Context, exec sqlx.ExtContext, batchYear, year, semester int, branch string) ([]models.TrainingSchedule, error) {
	const query = `SELECT id, batch_year, semester, year, branch, section, day_of_week, start_period, end_period, created_at
        FROM training_schedules
        WHERE batch_year = $1 AND year = $2 AND semester = $3 AND branch = $4
        ORDER BY section, day_of_week, start_period`
	var schedules []models.TrainingSchedule
	if err := sqlx.SelectContext(ctx, exec, &schedules, query, batchYear, year, semester, branch); err != nil {
		return nil, fmt.Errorf("list schedules by cohort: %w", err)
	}
	return schedules, nil
}

// ListByBranch returns a branch's schedules with their periods resolved to
// wall-clock times.
func (r *ScheduleRepository) ListByBranch(ctx context.Context, branch string) ([]models.ScheduleDetail, error) {
	const query = `SELECT ts.id, ts.batch_year, ts.semester, ts.year, ts.branch, ts.section,
        ts.day_of_week, ts.start_period, ts.end_period, ts.created_at,
        start_slots.start_time, end_slots.end_time
        FROM training_schedules ts
        JOIN time_slots start_slots ON start_slots.period_number = ts.start_period AND start_slots.year = ts.year
        JOIN time_slots end_slots ON end_slots.period_number = ts.end_period AND end_slots.year = ts.year
        WHERE ts.branch = $1
        ORDER BY ts.year, ts.section, ts.day_of_week, ts.start_period`
	var schedules []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query, branch); err != nil {
		return nil, fmt.Errorf("list schedules by branch: %w", err)
	}
	return schedules, nil
}
