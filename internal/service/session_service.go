package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/chandra197/tpo-attendance-api/internal/models"
	appErrors "github.com/chandra197/tpo-attendance-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, filter models.CohortFilter) ([]models.TrainingSession, error)
	ListUnmarked(ctx context.Context, filter models.CohortFilter) ([]models.TrainingSession, error)
	InsertGenerated(ctx context.Context, exec sqlx.ExtContext, session *models.TrainingSession) (bool, error)
}

type semesterRepository interface {
	Upsert(ctx context.Context, exec sqlx.ExtContext, window *models.SemesterWindow) error
}

type cohortScheduleLister interface {
	ListByCohort(ctx context.Context, exec sqlx.ExtContext, batchYear, year, semester int, branch string) ([]models.TrainingSchedule, error)
}

type timeSlotResolver interface {
	FindByYearPeriod(ctx context.Context, exec sqlx.ExtContext, year, period int) (*models.TimeSlot, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// SessionService owns the session lifecycle: listing for the marking UI and
// expanding weekly schedules into dated sessions when a semester window is saved.
type SessionService struct {
	sessions  sessionRepository
	schedules cohortScheduleLister
	slots     timeSlotResolver
	semesters semesterRepository
	tx        txProvider
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService wires session dependencies.
func NewSessionService(
	sessions sessionRepository,
	schedules cohortScheduleLister,
	slots timeSlotResolver,
	semesters semesterRepository,
	tx txProvider,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		sessions:  sessions,
		schedules: schedules,
		slots:     slots,
		semesters: semesters,
		tx:        tx,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// SessionListRequest scopes session listings to one section.
type SessionListRequest struct {
	BatchYear int    `json:"batch_year" validate:"required"`
	Semester  int    `json:"semester" validate:"required"`
	Year      int    `json:"year" validate:"required"`
	Branch    string `json:"branch" validate:"required"`
	Section   string `json:"section" validate:"required"`
}

// SaveSemesterWindowRequest carries a cohort's semester bounds.
type SaveSemesterWindowRequest struct {
	BatchYear int    `json:"batch_year" validate:"required"`
	Year      int    `json:"year" validate:"required"`
	Semester  int    `json:"semester" validate:"required"`
	Branch    string `json:"branch" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// List returns a section's sessions in any marking state, ordered by date.
func (s *SessionService) List(ctx context.Context, req SessionListRequest) ([]models.TrainingSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session filter")
	}
	sessions, err := s.sessions.List(ctx, cohortFilter(req))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// ListUnmarked returns the sessions still waiting for attendance.
func (s *SessionService) ListUnmarked(ctx context.Context, req SessionListRequest) ([]models.TrainingSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session filter")
	}
	sessions, err := s.sessions.ListUnmarked(ctx, cohortFilter(req))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unmarked sessions")
	}
	return sessions, nil
}

// SaveSemesterWindow upserts the cohort's window and expands every weekly
// schedule under it into dated sessions, all in one transaction. Dates already
// covered by an existing session are skipped, so re-saving a window is safe.
func (s *SessionService) SaveSemesterWindow(ctx context.Context, req SaveSemesterWindowRequest) (*models.ExpansionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester window payload")
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start_date format, expected YYYY-MM-DD")
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end_date format, expected YYYY-MM-DD")
	}
	if endDate.Before(startDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	window := &models.SemesterWindow{
		BatchYear: req.BatchYear,
		Year:      req.Year,
		Semester:  req.Semester,
		Branch:    req.Branch,
		StartDate: startDate,
		EndDate:   endDate,
	}
	if err = s.semesters.Upsert(ctx, tx, window); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save semester window")
		return nil, err
	}

	schedules, listErr := s.schedules.ListByCohort(ctx, tx, req.BatchYear, req.Year, req.Semester, req.Branch)
	if listErr != nil {
		err = appErrors.Wrap(listErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly schedules")
		return nil, err
	}

	result := &models.ExpansionResult{}
	resolved := make(map[int]*models.TimeSlot)
	for _, schedule := range schedules {
		var startSlot, endSlot *models.TimeSlot
		if startSlot, err = resolveSlotWith(ctx, tx, s.slots, resolved, schedule.Year, schedule.StartPeriod); err != nil {
			return nil, err
		}
		if endSlot, err = resolveSlotWith(ctx, tx, s.slots, resolved, schedule.Year, schedule.EndPeriod); err != nil {
			return nil, err
		}

		for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
			if int(d.Weekday()) != schedule.DayOfWeek {
				continue
			}
			session := &models.TrainingSession{
				BatchYear: schedule.BatchYear,
				Year:      schedule.Year,
				Semester:  schedule.Semester,
				Branch:    schedule.Branch,
				Section:   schedule.Section,
				Date:      d,
				StartTime: startSlot.StartTime,
				EndTime:   endSlot.EndTime,
			}
			inserted, insertErr := s.sessions.InsertGenerated(ctx, tx, session)
			if insertErr != nil {
				err = appErrors.Wrap(insertErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate session")
				return nil, err
			}
			if inserted {
				result.SessionsInserted++
			} else {
				result.SessionsSkipped++
			}
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit semester window")
		return nil, err
	}

	s.metrics.AddSessionsCreated(result.SessionsInserted)
	s.logger.Info("semester window saved",
		zap.Int("batch_year", req.BatchYear),
		zap.Int("year", req.Year),
		zap.Int("semester", req.Semester),
		zap.String("branch", req.Branch),
		zap.Int("schedules", len(schedules)),
		zap.Int("sessions_inserted", result.SessionsInserted),
		zap.Int("sessions_skipped", result.SessionsSkipped),
	)
	return result, nil
}

// resolveSlotWith looks up a (year, period) pair at most once per call chain.
// A missing slot surfaces as a validation error before anything is written.
func resolveSlotWith(ctx context.Context, tx *sqlx.Tx, slots timeSlotResolver, cache map[int]*models.TimeSlot, year, period int) (*models.TimeSlot, error) {
	key := year*1000 + period
	if slot, ok := cache[key]; ok {
		return slot, nil
	}
	slot, err := slots.FindByYearPeriod(ctx, tx, year, period)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unresolvable time slot: year %d period %d", year, period))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve time slot")
	}
	cache[key] = slot
	return slot, nil
}

func cohortFilter(req SessionListRequest) models.CohortFilter {
	return models.CohortFilter{
		BatchYear: req.BatchYear,
		Semester:  req.Semester,
		Year:      req.Year,
		Branch:    req.Branch,
		Section:   req.Section,
	}
}
