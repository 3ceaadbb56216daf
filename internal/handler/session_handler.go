package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chandra197/tpo-attendance-api/internal/models"
	"github.com/chandra197/tpo-attendance-api/internal/service"
	appErrors "github.com/chandra197/tpo-attendance-api/pkg/errors"
	"github.com/chandra197/tpo-attendance-api/pkg/response"
)

type sessionService interface {
	List(ctx context.Context, req service.SessionListRequest) ([]models.TrainingSession, error)
	ListUnmarked(ctx context.Context, req service.SessionListRequest) ([]models.TrainingSession, error)
	SaveSemesterWindow(ctx context.Context, req service.SaveSemesterWindowRequest) (*models.ExpansionResult, error)
}

// SessionHandler serves session listings and semester window saves.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(svc sessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// ListUnmarked returns a section's sessions that still lack attendance.
func (h *SessionHandler) ListUnmarked(c *gin.Context) {
	sessions, err := h.service.ListUnmarked(c.Request.Context(), sessionListRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// List returns all of a section's sessions regardless of marking state.
func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.service.List(c.Request.Context(), sessionListRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// SaveSemesterWindow saves a cohort's semester dates and expands its weekly
// schedules into dated sessions.
func (h *SessionHandler) SaveSemesterWindow(c *gin.Context) {
	var req service.SaveSemesterWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.SaveSemesterWindow(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func sessionListRequest(c *gin.Context) service.SessionListRequest {
	return service.SessionListRequest{
		BatchYear: intQuery(c, "batch_year"),
		Semester:  intQuery(c, "semester"),
		Year:      intQuery(c, "year"),
		Branch:    c.Query("branch"),
		Section:   c.Query("section"),
	}
}
