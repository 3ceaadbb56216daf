package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chandra197/tpo-attendance-api/internal/models"
	appErrors "github.com/chandra197/tpo-attendance-api/pkg/errors"
)

type attendanceRepoMock struct {
	count   int
	upserts []models.AttendanceRecord
	rows    []models.SessionAttendanceRow
}

func (m *attendanceRepoMock) ListBySession(ctx context.Context, sessionID string) ([]models.SessionAttendanceRow, error) {
	return m.rows, nil
}

func (m *attendanceRepoMock) CountBySession(ctx context.Context, exec sqlx.ExtContext, sessionID string) (int, error) {
	return m.count, nil
}

func (m *attendanceRepoMock) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, records []models.AttendanceRecord) error {
	m.upserts = append(m.upserts, records...)
	return nil
}

type sessionReaderMock struct {
	sessions map[string]*models.TrainingSession
}

func (m *sessionReaderMock) FindByID(ctx context.Context, id string) (*models.TrainingSession, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *sessionReaderMock) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.TrainingSession, error) {
	return m.FindByID(ctx, id)
}

type rosterReaderMock struct {
	ids []string
}

func (m *rosterReaderMock) RosterIDs(ctx context.Context, exec sqlx.ExtContext, year int, branch, section string) ([]string, error) {
	return m.ids, nil
}

const testSessionID = "6f1cde9a-48a6-4c2b-9d5e-0f6a3b1c2d4e"

func markedSession() *models.TrainingSession {
	return &models.TrainingSession{
		ID: testSessionID, BatchYear: 2022, Year: 3, Semester: 1, Branch: "CSE", Section: "A",
		Date: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), StartTime: "09:00", EndTime: "10:50",
	}
}

func TestAttendanceServiceRecordMarksWholeRoster(t *testing.T) {
	attendance := &attendanceRepoMock{}
	sessions := &sessionReaderMock{sessions: map[string]*models.TrainingSession{testSessionID: markedSession()}}
	roster := &rosterReaderMock{ids: []string{"stu-1", "stu-2", "stu-3"}}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewAttendanceService(attendance, sessions, roster, tx, nil, validator.New(), zap.NewNop())

	result, err := svc.Record(context.Background(), RecordAttendanceRequest{
		SessionID: testSessionID,
		AbsentIDs: []string{"stu-2"},
		Mode:      models.AttendanceModeCreate,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Marked)
	assert.Equal(t, 2, result.Present)
	assert.Equal(t, 1, result.Absent)

	require.Len(t, attendance.upserts, 3)
	statuses := map[string]models.AttendanceStatus{}
	for _, rec := range attendance.upserts {
		statuses[rec.StudentID] = rec.Status
		assert.Equal(t, testSessionID, rec.SessionID)
	}
	assert.Equal(t, models.AttendanceStatusPresent, statuses["stu-1"])
	assert.Equal(t, models.AttendanceStatusAbsent, statuses["stu-2"])
	assert.Equal(t, models.AttendanceStatusPresent, statuses["stu-3"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceServiceRecordCreateRejectsAlreadyMarked(t *testing.T) {
	attendance := &attendanceRepoMock{count: 3}
	sessions := &sessionReaderMock{sessions: map[string]*models.TrainingSession{testSessionID: markedSession()}}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	svc := NewAttendanceService(attendance, sessions, &rosterReaderMock{}, tx, nil, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{
		SessionID: testSessionID,
		Mode:      models.AttendanceModeCreate,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, attendance.upserts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceServiceRecordUpdateOverwritesExisting(t *testing.T) {
	attendance := &attendanceRepoMock{count: 3}
	sessions := &sessionReaderMock{sessions: map[string]*models.TrainingSession{testSessionID: markedSession()}}
	roster := &rosterReaderMock{ids: []string{"stu-1", "stu-2"}}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewAttendanceService(attendance, sessions, roster, tx, nil, validator.New(), zap.NewNop())

	result, err := svc.Record(context.Background(), RecordAttendanceRequest{
		SessionID: testSessionID,
		AbsentIDs: []string{"stu-1"},
		Mode:      models.AttendanceModeUpdate,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Marked)
	assert.Equal(t, 1, result.Absent)
	require.Len(t, attendance.upserts, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceServiceRecordCorrectionFlipsStatuses(t *testing.T) {
	attendance := &attendanceRepoMock{}
	sessions := &sessionReaderMock{sessions: map[string]*models.TrainingSession{testSessionID: markedSession()}}
	roster := &rosterReaderMock{ids: []string{"stu-1", "stu-2", "stu-3"}}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewAttendanceService(attendance, sessions, roster, tx, nil, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{
		SessionID: testSessionID,
		AbsentIDs: []string{"stu-2"},
		Mode:      models.AttendanceModeCreate,
	})
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), RecordAttendanceRequest{
		SessionID: testSessionID,
		AbsentIDs: []string{"stu-1", "stu-3"},
		Mode:      models.AttendanceModeUpdate,
	})
	require.NoError(t, err)

	// Later writes overwrite: the last status per student is what persists.
	final := map[string]models.AttendanceStatus{}
	for _, rec := range attendance.upserts {
		final[rec.StudentID] = rec.Status
	}
	require.Len(t, final, 3)
	assert.Equal(t, models.AttendanceStatusAbsent, final["stu-1"])
	assert.Equal(t, models.AttendanceStatusPresent, final["stu-2"])
	assert.Equal(t, models.AttendanceStatusAbsent, final["stu-3"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceServiceRecordUnknownSession(t *testing.T) {
	sessions := &sessionReaderMock{sessions: map[string]*models.TrainingSession{}}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	svc := NewAttendanceService(&attendanceRepoMock{}, sessions, &rosterReaderMock{}, tx, nil, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{
		SessionID: testSessionID,
		Mode:      models.AttendanceModeUpdate,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceServiceRecordIgnoresNonRosterAbsentees(t *testing.T) {
	attendance := &attendanceRepoMock{}
	sessions := &sessionReaderMock{sessions: map[string]*models.TrainingSession{testSessionID: markedSession()}}
	roster := &rosterReaderMock{ids: []string{"stu-1", "stu-2"}}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewAttendanceService(attendance, sessions, roster, tx, nil, validator.New(), zap.NewNop())

	result, err := svc.Record(context.Background(), RecordAttendanceRequest{
		SessionID: testSessionID,
		AbsentIDs: []string{"ghost-student"},
		Mode:      models.AttendanceModeCreate,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Marked)
	assert.Equal(t, 0, result.Absent)
	for _, rec := range attendance.upserts {
		assert.Equal(t, models.AttendanceStatusPresent, rec.Status)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceServiceRecordWriteFailureRollsBack(t *testing.T) {
	attendance := &failingAttendanceRepo{}
	sessions := &sessionReaderMock{sessions: map[string]*models.TrainingSession{testSessionID: markedSession()}}
	roster := &rosterReaderMock{ids: []string{"stu-1", "stu-2"}}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	svc := NewAttendanceService(attendance, sessions, roster, tx, nil, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{
		SessionID: testSessionID,
		Mode:      models.AttendanceModeCreate,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

type failingAttendanceRepo struct {
	attendanceRepoMock
}

func (m *failingAttendanceRepo) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, records []models.AttendanceRecord) error {
	return sql.ErrConnDone
}

func TestAttendanceServiceRecordRejectsBadMode(t *testing.T) {
	svc := NewAttendanceService(&attendanceRepoMock{}, &sessionReaderMock{}, &rosterReaderMock{}, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{
		SessionID: testSessionID,
		Mode:      models.AttendanceMode("upsert"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceGetSession(t *testing.T) {
	attendance := &attendanceRepoMock{rows: []models.SessionAttendanceRow{
		{StudentID: "stu-1", HallTicketNumber: "20B81A0501", StudentName: "Anil Kumar", Status: models.AttendanceStatusPresent},
	}}
	sessions := &sessionReaderMock{sessions: map[string]*models.TrainingSession{testSessionID: markedSession()}}
	svc := NewAttendanceService(attendance, sessions, &rosterReaderMock{}, nil, nil, validator.New(), zap.NewNop())

	result, err := svc.GetSession(context.Background(), testSessionID)
	require.NoError(t, err)
	assert.Equal(t, testSessionID, result.Session.ID)
	require.Len(t, result.Records, 1)
}

func TestAttendanceServiceGetSessionUnknown(t *testing.T) {
	svc := NewAttendanceService(&attendanceRepoMock{}, &sessionReaderMock{}, &rosterReaderMock{}, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.GetSession(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceGetSessionUnmarkedReturnsEmptyRecords(t *testing.T) {
	sessions := &sessionReaderMock{sessions: map[string]*models.TrainingSession{testSessionID: markedSession()}}
	svc := NewAttendanceService(&attendanceRepoMock{}, sessions, &rosterReaderMock{}, nil, nil, validator.New(), zap.NewNop())

	result, err := svc.GetSession(context.Background(), testSessionID)
	require.NoError(t, err)
	require.NotNil(t, result.Records)
	assert.Empty(t, result.Records)
}
