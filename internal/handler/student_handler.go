package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chandra197/tpo-attendance-api/internal/service"
	appErrors "github.com/chandra197/tpo-attendance-api/pkg/errors"
	"github.com/chandra197/tpo-attendance-api/pkg/response"
)

// StudentHandler serves roster listings and student search.
type StudentHandler struct {
	service *service.StudentService
}

// NewStudentHandler constructs handler.
func NewStudentHandler(svc *service.StudentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// Roster returns the students of one section, identified by path parameters.
func (h *StudentHandler) Roster(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a number"))
		return
	}
	req := service.RosterRequest{
		Year:    year,
		Branch:  c.Param("branch"),
		Section: c.Param("section"),
	}
	students, svcErr := h.service.Roster(c.Request.Context(), req)
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Search resolves a free-text query to the single best matching student.
func (h *StudentHandler) Search(c *gin.Context) {
	student, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}
