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

type attendanceService interface {
	Record(ctx context.Context, req service.RecordAttendanceRequest) (*service.RecordAttendanceResult, error)
	GetSession(ctx context.Context, sessionID string) (*service.SessionAttendance, error)
}

// AttendanceHandler serves attendance marking and review endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Get returns a session with its recorded per-student statuses.
func (h *AttendanceHandler) Get(c *gin.Context) {
	result, err := h.service.GetSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Submit marks attendance for a session the first time. A session that
// already has records is rejected with a conflict.
func (h *AttendanceHandler) Submit(c *gin.Context) {
	h.record(c, models.AttendanceModeCreate)
}

// Update overwrites a session's attendance with a corrected absentee list.
func (h *AttendanceHandler) Update(c *gin.Context) {
	h.record(c, models.AttendanceModeUpdate)
}

func (h *AttendanceHandler) record(c *gin.Context, mode models.AttendanceMode) {
	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.Mode = mode
	result, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if mode == models.AttendanceModeCreate {
		status = http.StatusCreated
	}
	response.JSON(c, status, result, nil)
}
