package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chandra197/tpo-attendance-api/internal/models"
	appErrors "github.com/chandra197/tpo-attendance-api/pkg/errors"
)

type studentRepoMock struct {
	students    []models.Student
	byTerm      map[string]*models.Student
	rosterCalls int
}

func (m *studentRepoMock) ListRoster(ctx context.Context, year int, branch, section string) ([]models.Student, error) {
	m.rosterCalls++
	return m.students, nil
}

func (m *studentRepoMock) Search(ctx context.Context, term string) (*models.Student, error) {
	if s, ok := m.byTerm[term]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type cacheRepoMock struct {
	store map[string][]byte
}

func newCacheRepoMock() *cacheRepoMock {
	return &cacheRepoMock{store: map[string][]byte{}}
}

func (m *cacheRepoMock) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *cacheRepoMock) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *cacheRepoMock) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.store {
		if strings.HasPrefix(key, prefix) {
			delete(m.store, key)
		}
	}
	return nil
}

func enabledCache() *CacheService {
	return NewCacheService(newCacheRepoMock(), nil, time.Minute, zap.NewNop(), true)
}

func TestStudentServiceRosterCachesResult(t *testing.T) {
	repo := &studentRepoMock{students: []models.Student{
		{ID: "stu-1", HallTicketNumber: "20B81A0501", Name: "Anil Kumar", Year: 3, Branch: "CSE", Section: "A"},
	}}
	svc := NewStudentService(repo, enabledCache(), time.Minute, validator.New(), zap.NewNop())

	req := RosterRequest{Year: 3, Branch: "CSE", Section: "A"}
	first, err := svc.Roster(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.Roster(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, repo.rosterCalls)
}

func TestStudentServiceRosterRequiresSection(t *testing.T) {
	svc := NewStudentService(&studentRepoMock{}, nil, 0, validator.New(), zap.NewNop())

	_, err := svc.Roster(context.Background(), RosterRequest{Year: 3, Branch: "CSE"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceSearchFound(t *testing.T) {
	repo := &studentRepoMock{byTerm: map[string]*models.Student{
		"anil": {ID: "stu-1", HallTicketNumber: "20B81A0501", Name: "Anil Kumar"},
	}}
	svc := NewStudentService(repo, nil, 0, validator.New(), zap.NewNop())

	student, err := svc.Search(context.Background(), "  anil  ")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", student.ID)
}

func TestStudentServiceSearchNoMatch(t *testing.T) {
	svc := NewStudentService(&studentRepoMock{}, nil, 0, validator.New(), zap.NewNop())

	_, err := svc.Search(context.Background(), "nobody")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceSearchRequiresTerm(t *testing.T) {
	svc := NewStudentService(&studentRepoMock{}, nil, 0, validator.New(), zap.NewNop())

	_, err := svc.Search(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
