package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chandra197/tpo-attendance-api/internal/middleware"
	"github.com/chandra197/tpo-attendance-api/internal/service"
	"github.com/chandra197/tpo-attendance-api/pkg/response"
)

// BatchHandler serves cohort section lookups.
type BatchHandler struct {
	service *service.BatchService
}

// NewBatchHandler constructs handler.
func NewBatchHandler(svc *service.BatchService) *BatchHandler {
	return &BatchHandler{service: svc}
}

// ListSections returns the active sections for a cohort identified by
// batch_year, semester, year and branch query parameters.
func (h *BatchHandler) ListSections(c *gin.Context) {
	req := service.SectionListRequest{
		BatchYear: intQuery(c, "batch_year"),
		Semester:  intQuery(c, "semester"),
		Year:      intQuery(c, "year"),
		Branch:    c.Query("branch"),
	}
	sections, cached, err := h.service.ListSections(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, sections, nil, middleware.ExtractMeta(c))
}

// intQuery parses an integer query parameter, returning zero when absent or
// malformed so struct validation reports the missing field.
func intQuery(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return value
}
