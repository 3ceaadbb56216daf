package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/chandra197/tpo-attendance-api/internal/models"
	appErrors "github.com/chandra197/tpo-attendance-api/pkg/errors"
)

type scheduleRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.TrainingSchedule) error
	ListByBranch(ctx context.Context, branch string) ([]models.ScheduleDetail, error)
}

// ScheduleService manages weekly training schedules, the templates that
// semester window saves expand into dated sessions.
type ScheduleService struct {
	repo      scheduleRepository
	slots     timeSlotResolver
	tx        txProvider
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs the schedule service.
func NewScheduleService(
	repo scheduleRepository,
	slots timeSlotResolver,
	tx txProvider,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, slots: slots, tx: tx, cache: cache, validator: validate, logger: logger}
}

// CreateScheduleRequest describes one weekly slot for a section. DayOfWeek
// follows time.Weekday numbering, 0 for Sunday through 6 for Saturday.
type CreateScheduleRequest struct {
	BatchYear   int    `json:"batch_year" validate:"required"`
	Semester    int    `json:"semester" validate:"required"`
	Year        int    `json:"year" validate:"required"`
	Branch      string `json:"branch" validate:"required"`
	Section     string `json:"section" validate:"required"`
	DayOfWeek   int    `json:"day_of_week" validate:"min=0,max=6"`
	StartPeriod int    `json:"start_period" validate:"required,min=1"`
	EndPeriod   int    `json:"end_period" validate:"required,min=1"`
}

// Create validates that both boundary periods resolve to time slots for the
// schedule's year, then persists the weekly schedule.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.TrainingSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if req.EndPeriod < req.StartPeriod {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_period must not precede start_period")
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

	resolved := make(map[int]*models.TimeSlot)
	if _, err = resolveSlotWith(ctx, tx, s.slots, resolved, req.Year, req.StartPeriod); err != nil {
		return nil, err
	}
	if _, err = resolveSlotWith(ctx, tx, s.slots, resolved, req.Year, req.EndPeriod); err != nil {
		return nil, err
	}

	schedule := &models.TrainingSchedule{
		BatchYear:   req.BatchYear,
		Semester:    req.Semester,
		Year:        req.Year,
		Branch:      req.Branch,
		Section:     req.Section,
		DayOfWeek:   req.DayOfWeek,
		StartPeriod: req.StartPeriod,
		EndPeriod:   req.EndPeriod,
	}
	if err = s.repo.Create(ctx, tx, schedule); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule")
		return nil, err
	}

	if s.cache != nil {
		if invErr := s.cache.Invalidate(ctx, "schedules:"+req.Branch+"*"); invErr != nil {
			s.logger.Warn("schedule cache invalidate failed", zap.String("branch", req.Branch), zap.Error(invErr))
		}
	}

	s.logger.Info("schedule created",
		zap.String("schedule_id", schedule.ID),
		zap.String("branch", req.Branch),
		zap.String("section", req.Section),
		zap.Int("day_of_week", req.DayOfWeek),
	)
	return schedule, nil
}

// ListByBranch returns a branch's weekly schedules with period times resolved.
func (s *ScheduleService) ListByBranch(ctx context.Context, branch string) ([]models.ScheduleDetail, error) {
	if branch == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "branch is required")
	}

	cacheKey := "schedules:" + branch
	if s.cache != nil {
		var cached []models.ScheduleDetail
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return cached, nil
		}
	}

	schedules, err := s.repo.ListByBranch(ctx, branch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, schedules, 0); err != nil {
			s.logger.Warn("schedule cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return schedules, nil
}
