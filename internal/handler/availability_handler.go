package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type facultyRanker interface {
	AvailableFaculty(ctx context.Context, subjectID int64) (*models.AvailabilityReport, error)
}

// AvailabilityHandler exposes faculty ranking for subject assignment.
type AvailabilityHandler struct {
	service facultyRanker
	logger  *zap.Logger
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(svc facultyRanker, logger *zap.Logger) *AvailabilityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityHandler{service: svc, logger: logger}
}

// AvailableFaculty godoc
// @Summary Rank faculty for a subject
// @Description Active faculty not yet assigned to the subject, best compatibility first.
// @Tags Availability
// @Produce json
// @Param id path int true "Subject ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id}/available-faculty [get]
func (h *AvailabilityHandler) AvailableFaculty(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	subjectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	report, err := h.service.AvailableFaculty(c.Request.Context(), subjectID)
	if err != nil {
		failure(c, h.logger, "availability.faculty", caller, subjectID, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}
