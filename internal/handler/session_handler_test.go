package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandra197/tpo-attendance-api/internal/models"
	"github.com/chandra197/tpo-attendance-api/internal/service"
	appErrors "github.com/chandra197/tpo-attendance-api/pkg/errors"
)

type sessionServiceMock struct {
	listResp   []models.TrainingSession
	listErr    error
	saveResp   *models.ExpansionResult
	saveErr    error
	lastFilter service.SessionListRequest
	lastSave   service.SaveSemesterWindowRequest
}

func (m *sessionServiceMock) List(ctx context.Context, req service.SessionListRequest) ([]models.TrainingSession, error) {
	m.lastFilter = req
	return m.listResp, m.listErr
}

func (m *sessionServiceMock) ListUnmarked(ctx context.Context, req service.SessionListRequest) ([]models.TrainingSession, error) {
	m.lastFilter = req
	return m.listResp, m.listErr
}

func (m *sessionServiceMock) SaveSemesterWindow(ctx context.Context, req service.SaveSemesterWindowRequest) (*models.ExpansionResult, error) {
	m.lastSave = req
	return m.saveResp, m.saveErr
}

func TestSessionHandlerListUnmarkedParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{listResp: []models.TrainingSession{{ID: "sess-1"}}}
	h := NewSessionHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/sessions/unmarked?batch_year=2022&semester=1&year=3&branch=CSE&section=A", nil)
	c.Request = req

	h.ListUnmarked(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2022, mockSvc.lastFilter.BatchYear)
	assert.Equal(t, "A", mockSvc.lastFilter.Section)
}

func TestSessionHandlerSaveSemesterWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{saveResp: &models.ExpansionResult{SessionsInserted: 5}}
	h := NewSessionHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"batch_year":2022,"year":3,"semester":1,"branch":"CSE","start_date":"2024-01-01","end_date":"2024-01-31"}`
	req, _ := http.NewRequest(http.MethodPost, "/semester-dates", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.SaveSemesterWindow(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-01-01", mockSvc.lastSave.StartDate)
}

func TestSessionHandlerSaveSemesterWindowInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSessionHandler(&sessionServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/semester-dates", bytes.NewBufferString(`{"batch_year":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.SaveSemesterWindow(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerListValidationErrorPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{listErr: appErrors.Clone(appErrors.ErrValidation, "invalid session filter")}
	h := NewSessionHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/sessions", nil)
	c.Request = req

	h.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
