package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/clock"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type timeSlotCatalog interface {
	List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id int64) (*models.TimeSlot, error)
	Usage(ctx context.Context, slotID int64) (*models.TimeSlotUsage, error)
	Overlapping(ctx context.Context, slotID int64) ([]models.TimeSlot, error)
	Available(ctx context.Context, filter models.SlotBookingFilter) ([]models.TimeSlot, error)
}

// TimeSlotService serves the slot catalog. Slots are immutable reference data, so catalog listings may
// be served from cache; booking lookups always hit the store.
type TimeSlotService struct {
	repo      timeSlotCatalog
	cache     *CacheService
	cfg       ScheduleConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeSlotService instantiates TimeSlotService. cache may be nil.
func NewTimeSlotService(repo timeSlotCatalog, cache *CacheService, cfg ScheduleConfig, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeSlotService{repo: repo, cache: cache, cfg: cfg, validator: validate, logger: logger}
}

// List returns catalog slots, optionally restricted to one weekday.
func (s *TimeSlotService) List(ctx context.Context, query dto.TimeSlotQuery) ([]models.TimeSlot, error) {
	filter := models.TimeSlotFilter{ActiveOnly: !query.IncludeInactive}
	if strings.TrimSpace(query.Day) != "" {
		day, ok := clock.NormalizeDay(query.Day)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "day must be a weekday name")
		}
		filter.DayOfWeek = day
	}

	key := slotCacheKey(filter)
	var slots []models.TimeSlot
	if s.cache.Get(ctx, key, &slots) {
		return slots, nil
	}

	slots, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list time slots")
	}
	if slots == nil {
		slots = []models.TimeSlot{}
	}
	s.cache.Set(ctx, key, slots, 0)
	return slots, nil
}

func slotCacheKey(filter models.TimeSlotFilter) string {
	day := filter.DayOfWeek
	if day == "" {
		day = "all"
	}
	scope := "active"
	if !filter.ActiveOnly {
		scope = "any"
	}
	return "slots:" + scope + ":" + day
}

// Details returns a slot with its usage and the active slots overlapping it on the same weekday.
func (s *TimeSlotService) Details(ctx context.Context, id int64) (*dto.TimeSlotDetails, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid time slot id")
	}

	var (
		slot        *models.TimeSlot
		usage       *models.TimeSlotUsage
		overlapping []models.TimeSlot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		slot, err = s.repo.FindByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		usage, err = s.repo.Usage(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		overlapping, err = s.repo.Overlapping(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, notFoundOr(err, "time slot not found", "failed to load time slot")
	}
	if overlapping == nil {
		overlapping = []models.TimeSlot{}
	}
	return &dto.TimeSlotDetails{Slot: *slot, Usage: *usage, Overlapping: overlapping}, nil
}

// AvailableSlots lists the active slots on the weekday of the given date that are not booked for the
// classroom and/or faculty member in the academic period.
func (s *TimeSlotService) AvailableSlots(ctx context.Context, query dto.AvailableSlotsQuery) (*dto.AvailableSlots, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid available slots query")
	}
	date, err := time.Parse(dateLayout, query.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}

	period := s.cfg.DefaultPeriod
	if v := strings.TrimSpace(query.AcademicYear); v != "" {
		period.AcademicYear = v
	}
	if v := strings.TrimSpace(query.Semester); v != "" {
		period.Semester = v
	}

	day := clock.DayOf(date)
	slots, err := s.repo.Available(ctx, models.SlotBookingFilter{
		DayOfWeek:   day,
		ClassroomID: query.ClassroomID,
		FacultyID:   query.FacultyID,
		Period:      period,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list available slots")
	}
	if slots == nil {
		slots = []models.TimeSlot{}
	}
	return &dto.AvailableSlots{
		Date:        query.Date,
		Day:         day,
		ClassroomID: query.ClassroomID,
		FacultyID:   query.FacultyID,
		Slots:       slots,
	}, nil
}
