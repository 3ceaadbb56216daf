package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chandra197/tpo-attendance-api/internal/service"
	appErrors "github.com/chandra197/tpo-attendance-api/pkg/errors"
	"github.com/chandra197/tpo-attendance-api/pkg/response"
)

// ScheduleHandler manages weekly schedule endpoints.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Create registers a weekly schedule slot for a section.
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// ListByBranch returns a branch's weekly schedules with resolved times.
func (h *ScheduleHandler) ListByBranch(c *gin.Context) {
	schedules, err := h.service.ListByBranch(c.Request.Context(), c.Query("branch"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}
