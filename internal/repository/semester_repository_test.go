package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/chandra197/tpo-attendance-api/internal/models"
)

func TestSemesterRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	window := &models.SemesterWindow{
		BatchYear: 2022, Year: 3, Semester: 1, Branch: "CSE",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (batch_year, year, semester, branch)")).
		WithArgs(2022, 3, 1, "CSE", window.StartDate, window.EndDate).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), db, window)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
