package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type timetableManager interface {
	Get(ctx context.Context, caller models.Caller, id int64) (*dto.TimetableDetails, error)
	Roster(ctx context.Context, caller models.Caller, id int64) (*dto.TimetableRoster, error)
	Create(ctx context.Context, caller models.Caller, req dto.TimetableRequest) (*models.ScheduleRow, error)
	Update(ctx context.Context, caller models.Caller, id int64, req dto.TimetableRequest) (*models.ScheduleRow, error)
	Deactivate(ctx context.Context, caller models.Caller, id int64) error
}

// TimetableHandler manages timetable entries.
type TimetableHandler struct {
	service timetableManager
	logger  *zap.Logger
}

// NewTimetableHandler constructs handler.
func NewTimetableHandler(svc timetableManager, logger *zap.Logger) *TimetableHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableHandler{service: svc, logger: logger}
}

// Get godoc
// @Summary Get timetable entry
// @Tags Timetables
// @Produce json
// @Param id path int true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	details, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		failure(c, h.logger, "timetable.get", caller, id, err)
		return
	}
	response.JSON(c, http.StatusOK, details)
}

// Roster godoc
// @Summary Students enrolled in a timetable entry
// @Tags Timetables
// @Produce json
// @Param id path int true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/roster [get]
func (h *TimetableHandler) Roster(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	roster, err := h.service.Roster(c.Request.Context(), caller, id)
	if err != nil {
		failure(c, h.logger, "timetable.roster", caller, id, err)
		return
	}
	response.JSON(c, http.StatusOK, roster)
}

// Create godoc
// @Summary Create timetable entry
// @Description Rejected with 409 when the classroom, faculty member or subject section is already booked in the slot.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.TimetableRequest true "Timetable payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req dto.TimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	row, err := h.service.Create(c.Request.Context(), caller, req)
	if err != nil {
		failure(c, h.logger, "timetable.create", caller, 0, err)
		return
	}
	response.Created(c, row)
}

// Update godoc
// @Summary Replace timetable entry
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path int true "Timetable ID"
// @Param payload body dto.TimetableRequest true "Timetable payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/{id} [put]
func (h *TimetableHandler) Update(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.TimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	row, err := h.service.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		failure(c, h.logger, "timetable.update", caller, id, err)
		return
	}
	response.JSON(c, http.StatusOK, row)
}

// Delete godoc
// @Summary Deactivate timetable entry
// @Tags Timetables
// @Produce json
// @Param id path int true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), caller, id); err != nil {
		failure(c, h.logger, "timetable.deactivate", caller, id, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id, "is_active": false})
}
