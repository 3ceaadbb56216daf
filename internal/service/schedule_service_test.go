package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chandra197/tpo-attendance-api/internal/models"
	appErrors "github.com/chandra197/tpo-attendance-api/pkg/errors"
)

type scheduleRepoMock struct {
	created []models.TrainingSchedule
	details []models.ScheduleDetail
}

func (m *scheduleRepoMock) Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.TrainingSchedule) error {
	if schedule.ID == "" {
		schedule.ID = "sched-new"
	}
	m.created = append(m.created, *schedule)
	return nil
}

func (m *scheduleRepoMock) ListByBranch(ctx context.Context, branch string) ([]models.ScheduleDetail, error) {
	return m.details, nil
}

func createScheduleRequest() CreateScheduleRequest {
	return CreateScheduleRequest{
		BatchYear: 2022, Semester: 1, Year: 3, Branch: "CSE", Section: "A",
		DayOfWeek: 1, StartPeriod: 1, EndPeriod: 2,
	}
}

func TestScheduleServiceCreate(t *testing.T) {
	repo := &scheduleRepoMock{}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewScheduleService(repo, &slotResolverMock{slots: mondaySlots()}, tx, nil, validator.New(), zap.NewNop())

	schedule, err := svc.Create(context.Background(), createScheduleRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, schedule.ID)
	require.Len(t, repo.created, 1)
	assert.Equal(t, 1, repo.created[0].DayOfWeek)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleServiceCreateUnresolvablePeriod(t *testing.T) {
	repo := &scheduleRepoMock{}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	slots := mondaySlots()
	delete(slots, 3002)
	svc := NewScheduleService(repo, &slotResolverMock{slots: slots}, tx, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), createScheduleRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleServiceCreateRejectsInvertedPeriods(t *testing.T) {
	svc := NewScheduleService(&scheduleRepoMock{}, &slotResolverMock{}, nil, nil, validator.New(), zap.NewNop())

	req := createScheduleRequest()
	req.StartPeriod = 4
	req.EndPeriod = 2
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceListByBranchRequiresBranch(t *testing.T) {
	svc := NewScheduleService(&scheduleRepoMock{}, &slotResolverMock{}, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.ListByBranch(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceCreateInvalidatesBranchCache(t *testing.T) {
	cacheRepo := newCacheRepoMock()
	cacheSvc := NewCacheService(cacheRepo, nil, 0, zap.NewNop(), true)
	repo := &scheduleRepoMock{details: []models.ScheduleDetail{{
		TrainingSchedule: models.TrainingSchedule{ID: "sched-1", Branch: "CSE"},
		StartTime:        "09:00", EndTime: "10:50",
	}}}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewScheduleService(repo, &slotResolverMock{slots: mondaySlots()}, tx, cacheSvc, validator.New(), zap.NewNop())

	_, err := svc.ListByBranch(context.Background(), "CSE")
	require.NoError(t, err)
	require.Contains(t, cacheRepo.store, "schedules:CSE")

	_, err = svc.Create(context.Background(), createScheduleRequest())
	require.NoError(t, err)
	assert.NotContains(t, cacheRepo.store, "schedules:CSE")
	require.NoError(t, mock.ExpectationsWereMet())
}
