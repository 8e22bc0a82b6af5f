package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/clock"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/jobs"
)

var conflictTypeRank = map[models.ConflictType]int{
	models.ConflictClassroom: 0,
	models.ConflictFaculty:   1,
	models.ConflictSection:   2,
}

type slotBucket struct {
	slotID       int64
	academicYear string
	semester     string
}

// DetectConflicts reports every pair of active rows that share a slot and period and also share a
// classroom, a faculty member, or a subject section. Each unordered pair is reported once per type with
// the lower id as entry A.
func DetectConflicts(rows []models.ScheduleRow) []models.Conflict {
	buckets := make(map[slotBucket][]models.ScheduleRow)
	for _, row := range rows {
		if !row.IsActive {
			continue
		}
		key := slotBucket{slotID: row.SlotID, academicYear: row.AcademicYear, semester: row.Semester}
		buckets[key] = append(buckets[key], row)
	}

	conflicts := make([]models.Conflict, 0)
	for _, bucket := range buckets {
		if len(bucket) < 2 {
			continue
		}
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].ID < bucket[j].ID })
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := bucket[i], bucket[j]
				if a.ID >= b.ID {
					continue
				}
				if a.ClassroomID == b.ClassroomID {
					conflicts = append(conflicts, newConflict(models.ConflictClassroom, a, b))
				}
				if a.FacultyID == b.FacultyID {
					conflicts = append(conflicts, newConflict(models.ConflictFaculty, a, b))
				}
				if a.SubjectID == b.SubjectID && a.Section == b.Section {
					conflicts = append(conflicts, newConflict(models.ConflictSection, a, b))
				}
			}
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if ra, rb := clock.DayRank(a.Day), clock.DayRank(b.Day); ra != rb {
			return ra < rb
		}
		if c := clock.Compare(a.StartTime, b.StartTime); c != 0 {
			return c < 0
		}
		if a.SlotID != b.SlotID {
			return a.SlotID < b.SlotID
		}
		if a.Type != b.Type {
			return conflictTypeRank[a.Type] < conflictTypeRank[b.Type]
		}
		if a.EntryA.ID != b.EntryA.ID {
			return a.EntryA.ID < b.EntryA.ID
		}
		return a.EntryB.ID < b.EntryB.ID
	})
	return conflicts
}

func newConflict(kind models.ConflictType, a, b models.ScheduleRow) models.Conflict {
	return models.Conflict{
		Type:         kind,
		EntryA:       conflictEntry(a),
		EntryB:       conflictEntry(b),
		SlotID:       a.SlotID,
		SlotName:     a.SlotName,
		Day:          a.DayOfWeek,
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
		TimeRange:    a.StartTime + "-" + a.EndTime,
		AcademicYear: a.AcademicYear,
		Semester:     a.Semester,
	}
}

func conflictEntry(row models.ScheduleRow) models.ConflictEntry {
	return models.ConflictEntry{
		ID:          row.ID,
		SubjectCode: row.SubjectCode,
		SubjectName: row.SubjectName,
		Section:     row.Section,
		FacultyName: row.FacultyName,
		RoomNumber:  row.RoomNumber,
	}
}

// ConflictService scans the timetable store for double bookings.
type ConflictService struct {
	timetables timetableLister
	cfg        ScheduleConfig
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewConflictService instantiates ConflictService.
func NewConflictService(timetables timetableLister, cfg ScheduleConfig, metrics *MetricsService, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{timetables: timetables, cfg: cfg, metrics: metrics, logger: logger}
}

// Scan reports the conflicts of one academic period, falling back to the configured default period.
func (s *ConflictService) Scan(ctx context.Context, period models.Period) (*dto.ConflictReport, error) {
	if period.AcademicYear == "" {
		period.AcademicYear = s.cfg.DefaultPeriod.AcademicYear
	}
	if period.Semester == "" {
		period.Semester = s.cfg.DefaultPeriod.Semester
	}
	conflicts, err := s.scan(ctx, period)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to scan conflicts")
	}
	return &dto.ConflictReport{Period: period, Total: len(conflicts), Conflicts: conflicts}, nil
}

// Refresh scans every period and publishes the result to the conflict gauge.
func (s *ConflictService) Refresh(ctx context.Context) error {
	start := time.Now()
	conflicts, err := s.scan(ctx, models.Period{})
	if err != nil {
		return err
	}
	s.metrics.SetActiveConflicts(conflicts, time.Since(start))
	if len(conflicts) > 0 {
		s.logger.Warn("active timetable conflicts", zap.Int("count", len(conflicts)))
	}
	return nil
}

func (s *ConflictService) scan(ctx context.Context, period models.Period) ([]models.Conflict, error) {
	rows, err := s.timetables.ListActive(ctx, models.TimetableFilter{AcademicYear: period.AcademicYear, Semester: period.Semester})
	if err != nil {
		return nil, err
	}
	return DetectConflicts(rows), nil
}

const conflictRescanKey = "conflict-rescan"

// ConflictMonitor rescans the timetable in the background after writes.
type ConflictMonitor struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewConflictMonitor wires a job queue to the conflict service.
func NewConflictMonitor(conflicts *ConflictService, cfg jobs.QueueConfig) *ConflictMonitor {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		return conflicts.Refresh(ctx)
	}
	return &ConflictMonitor{queue: jobs.NewQueue("conflict-monitor", handler, cfg), logger: cfg.Logger}
}

// Start launches the monitor workers and queues an initial scan.
func (m *ConflictMonitor) Start(ctx context.Context) {
	if m == nil {
		return
	}
	m.queue.Start(ctx)
	m.Notify("startup")
}

// Stop drains the monitor workers.
func (m *ConflictMonitor) Stop() {
	if m == nil {
		return
	}
	m.queue.Stop()
}

// Notify requests a rescan. Requests arriving while one is pending are coalesced.
func (m *ConflictMonitor) Notify(reason string) {
	if m == nil {
		return
	}
	if _, err := m.queue.Enqueue(jobs.Job{Key: conflictRescanKey, Type: reason}); err != nil {
		m.logger.Warn("conflict rescan not queued", zap.String("reason", reason), zap.Error(err))
	}
}
