package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type timeSlotReader interface {
	List(ctx context.Context, query dto.TimeSlotQuery) ([]models.TimeSlot, error)
	Details(ctx context.Context, id int64) (*dto.TimeSlotDetails, error)
}

// TimeSlotHandler serves the slot catalog.
type TimeSlotHandler struct {
	service timeSlotReader
	logger  *zap.Logger
}

// NewTimeSlotHandler constructs handler.
func NewTimeSlotHandler(svc timeSlotReader, logger *zap.Logger) *TimeSlotHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeSlotHandler{service: svc, logger: logger}
}

// List godoc
// @Summary List time slots
// @Tags TimeSlots
// @Produce json
// @Param day query string false "Weekday name"
// @Param include_inactive query bool false "Include inactive slots"
// @Success 200 {object} response.Envelope
// @Router /timeslots [get]
func (h *TimeSlotHandler) List(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var query dto.TimeSlotQuery
	if !bindQuery(c, &query) {
		return
	}
	slots, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		failure(c, h.logger, "timeslot.list", caller, 0, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, map[string]interface{}{"total": len(slots)})
}

// Get godoc
// @Summary Time slot with usage and overlaps
// @Tags TimeSlots
// @Produce json
// @Param id path int true "Time slot ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timeslots/{id} [get]
func (h *TimeSlotHandler) Get(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	details, err := h.service.Details(c.Request.Context(), id)
	if err != nil {
		failure(c, h.logger, "timeslot.get", caller, id, err)
		return
	}
	response.JSON(c, http.StatusOK, details)
}
