package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/clock"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type timetableLister interface {
	ListActive(ctx context.Context, filter models.TimetableFilter) ([]models.ScheduleRow, error)
}

type facultyProfileFinder interface {
	FindByUserID(ctx context.Context, userID int64) (*models.Faculty, error)
}

type studentProfileFinder interface {
	FindByUserID(ctx context.Context, userID int64) (*models.Student, error)
}

type studentCounter interface {
	DistinctStudents(ctx context.Context, entryIDs []int64) (int, error)
}

// ScheduleConfig carries the academic period applied when a request omits one.
type ScheduleConfig struct {
	DefaultPeriod models.Period
}

// ScheduleService assembles role-scoped schedules. It is a pure projection over the timetable store.
type ScheduleService struct {
	timetables  timetableLister
	faculty     facultyProfileFinder
	students    studentProfileFinder
	enrollments studentCounter
	cfg         ScheduleConfig
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(timetables timetableLister, faculty facultyProfileFinder, students studentProfileFinder, enrollments studentCounter, cfg ScheduleConfig, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		timetables:  timetables,
		faculty:     faculty,
		students:    students,
		enrollments: enrollments,
		cfg:         cfg,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// List returns the caller's flat schedule in display order.
func (s *ScheduleService) List(ctx context.Context, caller models.Caller, query dto.ScheduleQuery) (*dto.ScheduleList, error) {
	rows, period, err := s.assemble(ctx, caller, query)
	if err != nil {
		return nil, err
	}
	week, err := s.weekOf(query.Week)
	if err != nil {
		return nil, err
	}
	return &dto.ScheduleList{Period: period, Week: week.Range(), Rows: rows}, nil
}

// Weekly returns the caller's schedule grouped by weekday.
func (s *ScheduleService) Weekly(ctx context.Context, caller models.Caller, query dto.ScheduleQuery) (*dto.WeeklySchedule, error) {
	rows, period, err := s.assemble(ctx, caller, query)
	if err != nil {
		return nil, err
	}
	week, err := s.weekOf(query.Week)
	if err != nil {
		return nil, err
	}
	days, grid := groupByWeekday(rows)
	dates := make(map[string]string, len(days))
	for _, day := range days {
		if _, ok := clock.NormalizeDay(day); ok {
			dates[day] = clock.DateOf(week.monday, day).Format(dateLayout)
		}
	}
	return &dto.WeeklySchedule{Period: period, Week: week.Range(), Days: days, Dates: dates, Grid: grid}, nil
}

// Daily returns the caller's rows for one weekday. An empty day means today.
func (s *ScheduleService) Daily(ctx context.Context, caller models.Caller, query dto.ScheduleQuery) (*dto.DailySchedule, error) {
	day := clock.DayOf(s.now())
	if strings.TrimSpace(query.Day) != "" {
		normalized, ok := clock.NormalizeDay(query.Day)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "day must be a weekday name")
		}
		day = normalized
	}
	rows, period, err := s.assemble(ctx, caller, query)
	if err != nil {
		return nil, err
	}
	return &dto.DailySchedule{Period: period, Day: day, Rows: rowsForDay(rows, day)}, nil
}

// Search filters the caller's schedule by a case-insensitive substring.
func (s *ScheduleService) Search(ctx context.Context, caller models.Caller, query dto.ScheduleQuery) (*dto.ScheduleSearchResult, error) {
	term := strings.TrimSpace(query.Q)
	if term == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "q is required")
	}
	kind := query.Type
	if kind == "" {
		kind = dto.SearchAll
	}
	rows, _, err := s.assemble(ctx, caller, query)
	if err != nil {
		return nil, err
	}
	matches := make([]models.ScheduleRow, 0)
	for _, row := range rows {
		if matchesSearch(row, strings.ToLower(term), kind) {
			matches = append(matches, row)
		}
	}
	return &dto.ScheduleSearchResult{Query: term, Type: kind, Rows: matches}, nil
}

// Stats computes role-scoped summary figures over the caller's schedule.
func (s *ScheduleService) Stats(ctx context.Context, caller models.Caller, query dto.ScheduleQuery) (*models.ScheduleStats, error) {
	rows, _, err := s.assemble(ctx, caller, query)
	if err != nil {
		return nil, err
	}
	stats := aggregateStats(rows, caller.Role)
	if caller.Role == models.RoleAdmin || caller.Role == models.RoleFaculty {
		ids := make([]int64, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		students, err := s.enrollments.DistinctStudents(ctx, ids)
		if err != nil {
			s.logger.Error("failed to count students", zap.Int64("user_id", caller.UserID), zap.Error(err))
			return nil, appErrors.Internal(err, "failed to compute schedule stats")
		}
		stats.DistinctStudents = &students
	}
	return &stats, nil
}

// assemble resolves the caller's scope and loads their rows in display order.
func (s *ScheduleService) assemble(ctx context.Context, caller models.Caller, query dto.ScheduleQuery) ([]models.ScheduleRow, models.Period, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, models.Period{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule query")
	}
	period := s.period(query)
	filter, err := s.scope(ctx, caller, query)
	if err != nil {
		return nil, period, err
	}
	filter.AcademicYear = period.AcademicYear
	filter.Semester = period.Semester

	start := time.Now()
	rows, err := s.timetables.ListActive(ctx, filter)
	s.metrics.ObserveDBQuery("schedule_assemble", time.Since(start))
	if err != nil {
		return nil, period, appErrors.Internal(err, "failed to load schedule")
	}
	if rows == nil {
		rows = []models.ScheduleRow{}
	}
	sortScheduleRows(rows)
	return rows, period, nil
}

// scope translates the caller's role into the store filter that bounds what they may see.
func (s *ScheduleService) scope(ctx context.Context, caller models.Caller, query dto.ScheduleQuery) (models.TimetableFilter, error) {
	switch caller.Role {
	case models.RoleAdmin:
		return models.TimetableFilter{
			Department: strings.TrimSpace(query.Department),
			FacultyID:  query.FacultyID,
			SubjectID:  query.SubjectID,
		}, nil
	case models.RoleFaculty:
		profile, err := s.faculty.FindByUserID(ctx, caller.UserID)
		if err != nil {
			return models.TimetableFilter{}, profileError(err, "faculty profile not found")
		}
		id := profile.ID
		return models.TimetableFilter{FacultyID: &id}, nil
	case models.RoleStudent:
		profile, err := s.students.FindByUserID(ctx, caller.UserID)
		if err != nil {
			return models.TimetableFilter{}, profileError(err, "student profile not found")
		}
		id := profile.ID
		return models.TimetableFilter{StudentID: &id}, nil
	default:
		return models.TimetableFilter{}, appErrors.Clone(appErrors.ErrInvalidRole, "")
	}
}

func profileError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrProfileNotFound, message)
	}
	return appErrors.Internal(err, "failed to resolve profile")
}

func (s *ScheduleService) period(query dto.ScheduleQuery) models.Period {
	period := s.cfg.DefaultPeriod
	if v := strings.TrimSpace(query.AcademicYear); v != "" {
		period.AcademicYear = v
	}
	if v := strings.TrimSpace(query.Semester); v != "" {
		period.Semester = v
	}
	return period
}

const dateLayout = "2006-01-02"

type week struct {
	monday   time.Time
	saturday time.Time
}

func (w week) Range() dto.WeekRange {
	return dto.WeekRange{Start: w.monday.Format(dateLayout), End: w.saturday.Format(dateLayout)}
}

func (s *ScheduleService) weekOf(anchor string) (week, error) {
	date := s.now()
	if anchor != "" {
		parsed, err := time.Parse(dateLayout, anchor)
		if err != nil {
			return week{}, appErrors.Clone(appErrors.ErrValidation, "week must be formatted as YYYY-MM-DD")
		}
		date = parsed
	}
	monday, saturday := clock.WeekBounds(date)
	return week{monday: monday, saturday: saturday}, nil
}

func matchesSearch(row models.ScheduleRow, term, kind string) bool {
	contains := func(values ...string) bool {
		for _, v := range values {
			if strings.Contains(strings.ToLower(v), term) {
				return true
			}
		}
		return false
	}
	switch kind {
	case dto.SearchSubject:
		return contains(row.SubjectCode, row.SubjectName)
	case dto.SearchFaculty:
		return contains(row.FacultyName)
	case dto.SearchClassroom:
		return contains(row.RoomNumber, row.Building)
	default:
		return contains(row.SubjectCode, row.SubjectName, row.FacultyName, row.RoomNumber, row.Building)
	}
}

// aggregateStats derives summary figures from assembled rows. Hours are the sum of each entry's actual
// start/end difference.
func aggregateStats(rows []models.ScheduleRow, role models.UserRole) models.ScheduleStats {
	stats := models.ScheduleStats{TotalClasses: len(rows), ClassesPerDay: make(map[string]int)}
	for _, day := range clock.WorkWeek {
		stats.ClassesPerDay[day] = 0
	}

	subjects := make(map[int64]int)
	faculty := make(map[int64]struct{})
	classrooms := make(map[int64]struct{})
	var hours float64
	for _, row := range rows {
		subjects[row.SubjectID] = row.SubjectCredits
		faculty[row.FacultyID] = struct{}{}
		classrooms[row.ClassroomID] = struct{}{}
		hours += clock.HoursBetween(row.StartTime, row.EndTime)
		stats.ClassesPerDay[row.DayOfWeek]++
	}
	stats.DistinctSubjects = len(subjects)
	stats.TotalHours = math.Round(hours*100) / 100

	distinctFaculty := len(faculty)
	distinctClassrooms := len(classrooms)
	switch role {
	case models.RoleAdmin:
		stats.DistinctFaculty = &distinctFaculty
		stats.DistinctClassrooms = &distinctClassrooms
	case models.RoleFaculty:
		stats.DistinctClassrooms = &distinctClassrooms
	case models.RoleStudent:
		credits := 0
		for _, c := range subjects {
			credits += c
		}
		stats.DistinctFaculty = &distinctFaculty
		stats.TotalCredits = &credits
	}
	return stats
}
