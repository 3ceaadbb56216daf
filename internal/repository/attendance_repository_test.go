package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/chandra197/tpo-attendance-api/internal/models"
)

func TestAttendanceRepositoryListBySession(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "hall_ticket_number", "student_name", "status"}).
		AddRow("stu-1", "20B81A0501", "Anil Kumar", models.AttendanceStatusPresent).
		AddRow("stu-2", "20B81A0502", "Bhavya Reddy", models.AttendanceStatusAbsent)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN students s ON s.id = a.student_id")).
		WithArgs("sess-1").
		WillReturnRows(rows)

	records, err := repo.ListBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, models.AttendanceStatusAbsent, records[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCountBySession(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM attendance WHERE session_id = $1")).
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountBySession(context.Background(), db, "sess-1")
	require.NoError(t, err)
	require.Equal(t, 42, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsertBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	records := []models.AttendanceRecord{
		{StudentID: "stu-1", SessionID: "sess-1", Status: models.AttendanceStatusPresent},
		{StudentID: "stu-2", SessionID: "sess-1", Status: models.AttendanceStatusAbsent},
	}
	upsert := regexp.QuoteMeta("ON CONFLICT (student_id, session_id)")
	mock.ExpectExec(upsert).
		WithArgs(sqlmock.AnyArg(), "stu-1", "sess-1", models.AttendanceStatusPresent, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upsert).
		WithArgs(sqlmock.AnyArg(), "stu-2", "sess-1", models.AttendanceStatusAbsent, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertBatch(context.Background(), db, records)
	require.NoError(t, err)
	require.NotEmpty(t, records[0].ID)
	require.False(t, records[0].UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
