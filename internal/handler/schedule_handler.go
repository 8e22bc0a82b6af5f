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

type scheduleReader interface {
	List(ctx context.Context, caller models.Caller, query dto.ScheduleQuery) (*dto.ScheduleList, error)
	Weekly(ctx context.Context, caller models.Caller, query dto.ScheduleQuery) (*dto.WeeklySchedule, error)
	Daily(ctx context.Context, caller models.Caller, query dto.ScheduleQuery) (*dto.DailySchedule, error)
	Search(ctx context.Context, caller models.Caller, query dto.ScheduleQuery) (*dto.ScheduleSearchResult, error)
	Stats(ctx context.Context, caller models.Caller, query dto.ScheduleQuery) (*models.ScheduleStats, error)
}

type conflictScanner interface {
	Scan(ctx context.Context, period models.Period) (*dto.ConflictReport, error)
}

type availableSlotFinder interface {
	AvailableSlots(ctx context.Context, query dto.AvailableSlotsQuery) (*dto.AvailableSlots, error)
}

// ScheduleHandler serves role-scoped schedule views and the admin conflict tools.
type ScheduleHandler struct {
	schedules scheduleReader
	conflicts conflictScanner
	slots     availableSlotFinder
	logger    *zap.Logger
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(schedules scheduleReader, conflicts conflictScanner, slots availableSlotFinder, logger *zap.Logger) *ScheduleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleHandler{schedules: schedules, conflicts: conflicts, slots: slots, logger: logger}
}

// List godoc
// @Summary List the caller's schedule
// @Description Admins see every active entry and may filter; faculty see their own classes; students see the sections they are enrolled in.
// @Tags Schedule
// @Produce json
// @Param week query string false "Any date in the target week (YYYY-MM-DD)"
// @Param view query string false "list or weekly"
// @Param academic_year query string false "Academic year"
// @Param semester query string false "Semester"
// @Param department query string false "Department (admin only)"
// @Param faculty_id query int false "Faculty (admin only)"
// @Param subject_id query int false "Subject (admin only)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var query dto.ScheduleQuery
	if !bindQuery(c, &query) {
		return
	}
	if query.View == dto.ViewWeekly {
		h.respondWeekly(c, caller, query)
		return
	}
	list, err := h.schedules.List(c.Request.Context(), caller, query)
	if err != nil {
		failure(c, h.logger, "schedule.list", caller, 0, err)
		return
	}
	response.JSON(c, http.StatusOK, list, roleMeta(caller))
}

// Weekly godoc
// @Summary Weekly schedule grid
// @Tags Schedule
// @Produce json
// @Param week query string false "Any date in the target week (YYYY-MM-DD)"
// @Param academic_year query string false "Academic year"
// @Param semester query string false "Semester"
// @Success 200 {object} response.Envelope
// @Router /schedule/weekly [get]
func (h *ScheduleHandler) Weekly(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var query dto.ScheduleQuery
	if !bindQuery(c, &query) {
		return
	}
	h.respondWeekly(c, caller, query)
}

func (h *ScheduleHandler) respondWeekly(c *gin.Context, caller models.Caller, query dto.ScheduleQuery) {
	weekly, err := h.schedules.Weekly(c.Request.Context(), caller, query)
	if err != nil {
		failure(c, h.logger, "schedule.weekly", caller, 0, err)
		return
	}
	response.JSON(c, http.StatusOK, weekly, roleMeta(caller))
}

// Daily godoc
// @Summary Schedule for one weekday
// @Tags Schedule
// @Produce json
// @Param day query string false "Weekday name, defaults to today"
// @Success 200 {object} response.Envelope
// @Router /schedule/daily [get]
func (h *ScheduleHandler) Daily(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var query dto.ScheduleQuery
	if !bindQuery(c, &query) {
		return
	}
	daily, err := h.schedules.Daily(c.Request.Context(), caller, query)
	if err != nil {
		failure(c, h.logger, "schedule.daily", caller, 0, err)
		return
	}
	response.JSON(c, http.StatusOK, daily, roleMeta(caller))
}

// Stats godoc
// @Summary Schedule statistics
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/stats [get]
func (h *ScheduleHandler) Stats(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var query dto.ScheduleQuery
	if !bindQuery(c, &query) {
		return
	}
	stats, err := h.schedules.Stats(c.Request.Context(), caller, query)
	if err != nil {
		failure(c, h.logger, "schedule.stats", caller, 0, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, roleMeta(caller))
}

// Search godoc
// @Summary Search the caller's schedule
// @Tags Schedule
// @Produce json
// @Param q query string true "Search term"
// @Param type query string false "subject, faculty, classroom or all"
// @Success 200 {object} response.Envelope
// @Router /schedule/search [get]
func (h *ScheduleHandler) Search(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var query dto.ScheduleQuery
	if !bindQuery(c, &query) {
		return
	}
	result, err := h.schedules.Search(c.Request.Context(), caller, query)
	if err != nil {
		failure(c, h.logger, "schedule.search", caller, 0, err)
		return
	}
	response.JSON(c, http.StatusOK, result, roleMeta(caller))
}

// Conflicts godoc
// @Summary Detect double bookings
// @Tags Schedule
// @Produce json
// @Param academic_year query string false "Academic year"
// @Param semester query string false "Semester"
// @Success 200 {object} response.Envelope
// @Router /schedule/conflicts [get]
func (h *ScheduleHandler) Conflicts(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	period := models.Period{AcademicYear: c.Query("academic_year"), Semester: c.Query("semester")}
	report, err := h.conflicts.Scan(c.Request.Context(), period)
	if err != nil {
		failure(c, h.logger, "schedule.conflicts", caller, 0, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// AvailableSlots godoc
// @Summary Free slots for a date
// @Tags Schedule
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param classroom_id query int false "Classroom"
// @Param faculty_id query int false "Faculty"
// @Success 200 {object} response.Envelope
// @Router /schedule/available-slots [get]
func (h *ScheduleHandler) AvailableSlots(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var query dto.AvailableSlotsQuery
	if !bindQuery(c, &query) {
		return
	}
	slots, err := h.slots.AvailableSlots(c.Request.Context(), query)
	if err != nil {
		failure(c, h.logger, "schedule.available_slots", caller, 0, err)
		return
	}
	response.JSON(c, http.StatusOK, slots)
}
