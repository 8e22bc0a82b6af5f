package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/database"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type timetableStore interface {
	FindByID(ctx context.Context, id int64) (*models.ScheduleRow, error)
	LockActive(ctx context.Context, exec sqlx.ExtContext, id int64) error
	LockCollisions(ctx context.Context, exec sqlx.ExtContext, entry models.TimetableEntry, excludeID int64) ([]models.ScheduleRow, error)
	Create(ctx context.Context, exec sqlx.ExtContext, entry models.TimetableEntry) (int64, error)
	Update(ctx context.Context, exec sqlx.ExtContext, entry models.TimetableEntry) error
	Deactivate(ctx context.Context, id int64) error
}

type enrollmentLinker interface {
	CountByEntries(ctx context.Context, entryIDs []int64) (map[int64]int, error)
	Roster(ctx context.Context, entryID int64) ([]models.RosterEntry, error)
}

type activeFacultyFinder interface {
	FindActiveByID(ctx context.Context, id int64) (*models.Faculty, error)
	FindByUserID(ctx context.Context, userID int64) (*models.Faculty, error)
}

type classroomFinder interface {
	FindActiveByID(ctx context.Context, id int64) (*models.Classroom, error)
}

type slotFinder interface {
	FindByID(ctx context.Context, id int64) (*models.TimeSlot, error)
}

type serializableRunner interface {
	DoSerializable(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type conflictNotifier interface {
	Notify(reason string)
}

type noopNotifier struct{}

func (noopNotifier) Notify(string) {}

// TimetableService manages timetable entries. Writes check for collisions and insert inside one
// serializable transaction; store-level unique indexes back the same invariants.
type TimetableService struct {
	store       timetableStore
	enrollments enrollmentLinker
	subjects    subjectFinder
	faculty     activeFacultyFinder
	classrooms  classroomFinder
	slots       slotFinder
	tx          serializableRunner
	monitor     conflictNotifier
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// TimetableDeps groups the collaborators of TimetableService.
type TimetableDeps struct {
	Store       timetableStore
	Enrollments enrollmentLinker
	Subjects    subjectFinder
	Faculty     activeFacultyFinder
	Classrooms  classroomFinder
	Slots       slotFinder
	Tx          serializableRunner
	Monitor     conflictNotifier
	Metrics     *MetricsService
}

// NewTimetableService instantiates TimetableService.
func NewTimetableService(deps TimetableDeps, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Monitor == nil {
		deps.Monitor = noopNotifier{}
	}
	return &TimetableService{
		store:       deps.Store,
		enrollments: deps.Enrollments,
		subjects:    deps.Subjects,
		faculty:     deps.Faculty,
		classrooms:  deps.Classrooms,
		slots:       deps.Slots,
		tx:          deps.Tx,
		monitor:     deps.Monitor,
		metrics:     deps.Metrics,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// Get returns an entry with its enrolled headcount. Faculty callers may only read their own entries.
func (s *TimetableService) Get(ctx context.Context, caller models.Caller, id int64) (*dto.TimetableDetails, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid timetable id")
	}

	var (
		row    *models.ScheduleRow
		counts map[int64]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		row, err = s.store.FindByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.enrollments.CountByEntries(gctx, []int64{id})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, notFoundOr(err, "timetable entry not found", "failed to load timetable entry")
	}
	if err := s.authorizeEntry(ctx, caller, row); err != nil {
		return nil, err
	}
	return &dto.TimetableDetails{ScheduleRow: *row, EnrolledCount: counts[id]}, nil
}

// Roster lists the students enrolled in an entry.
func (s *TimetableService) Roster(ctx context.Context, caller models.Caller, id int64) (*dto.TimetableRoster, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid timetable id")
	}
	row, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "timetable entry not found", "failed to load timetable entry")
	}
	if err := s.authorizeEntry(ctx, caller, row); err != nil {
		return nil, err
	}
	students, err := s.enrollments.Roster(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load roster")
	}
	if students == nil {
		students = []models.RosterEntry{}
	}
	return &dto.TimetableRoster{EntryID: id, Total: len(students), Students: students}, nil
}

// Create validates and inserts a new active entry.
func (s *TimetableService) Create(ctx context.Context, caller models.Caller, req dto.TimetableRequest) (*models.ScheduleRow, error) {
	entry, err := s.prepare(ctx, caller, req)
	if err != nil {
		return nil, err
	}
	entry.CreatedBy = &caller.UserID
	entry.CreatedAt = entry.UpdatedAt

	var id int64
	err = s.tx.DoSerializable(ctx, func(tx *sqlx.Tx) error {
		if err := s.ensureNoCollisions(ctx, tx, entry, 0); err != nil {
			return err
		}
		var err error
		id, err = s.store.Create(ctx, tx, entry)
		return err
	})
	if err != nil {
		return nil, s.writeError(err, "failed to create timetable entry")
	}

	s.logger.Info("timetable entry created", zap.Int64("timetable_id", id), zap.Int64("user_id", caller.UserID))
	s.monitor.Notify("create")
	return s.reload(ctx, id, entry), nil
}

// Update replaces the assignment of an active entry.
func (s *TimetableService) Update(ctx context.Context, caller models.Caller, id int64, req dto.TimetableRequest) (*models.ScheduleRow, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid timetable id")
	}
	entry, err := s.prepare(ctx, caller, req)
	if err != nil {
		return nil, err
	}
	entry.ID = id

	err = s.tx.DoSerializable(ctx, func(tx *sqlx.Tx) error {
		if err := s.store.LockActive(ctx, tx, id); err != nil {
			return err
		}
		if err := s.ensureNoCollisions(ctx, tx, entry, id); err != nil {
			return err
		}
		return s.store.Update(ctx, tx, entry)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable entry not found")
		}
		return nil, s.writeError(err, "failed to update timetable entry")
	}

	s.logger.Info("timetable entry updated", zap.Int64("timetable_id", id), zap.Int64("user_id", caller.UserID))
	s.monitor.Notify("update")
	return s.reload(ctx, id, entry), nil
}

// Deactivate clears the active flag of an entry. Entries are never hard deleted.
func (s *TimetableService) Deactivate(ctx context.Context, caller models.Caller, id int64) error {
	if caller.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	if id <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "invalid timetable id")
	}
	if err := s.store.Deactivate(ctx, id); err != nil {
		return notFoundOr(err, "timetable entry not found", "failed to deactivate timetable entry")
	}
	s.logger.Info("timetable entry deactivated", zap.Int64("timetable_id", id), zap.Int64("user_id", caller.UserID))
	s.monitor.Notify("deactivate")
	return nil
}

// prepare validates the payload and the referenced records, returning the entry to persist.
func (s *TimetableService) prepare(ctx context.Context, caller models.Caller, req dto.TimetableRequest) (models.TimetableEntry, error) {
	if caller.Role != models.RoleAdmin {
		return models.TimetableEntry{}, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	req.Section = strings.TrimSpace(req.Section)
	req.AcademicYear = strings.TrimSpace(req.AcademicYear)
	req.Semester = strings.TrimSpace(req.Semester)
	if err := s.validator.Struct(req); err != nil {
		return models.TimetableEntry{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return models.TimetableEntry{}, err
	}
	return models.TimetableEntry{
		SubjectID:    req.SubjectID,
		FacultyID:    req.FacultyID,
		ClassroomID:  req.ClassroomID,
		SlotID:       req.SlotID,
		Section:      req.Section,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		IsActive:     true,
		Notes:        req.Notes,
		UpdatedAt:    s.now().UTC(),
	}, nil
}

// checkReferences verifies subject, faculty, classroom and slot exist and are active.
func (s *TimetableService) checkReferences(ctx context.Context, req dto.TimetableRequest) error {
	missing := func(kind string, id int64, err error) error {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s %d does not exist or is inactive", kind, id))
		}
		return appErrors.Internal(err, "failed to verify timetable references")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := s.subjects.FindActiveByID(gctx, req.SubjectID); err != nil {
			return missing("subject", req.SubjectID, err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := s.faculty.FindActiveByID(gctx, req.FacultyID); err != nil {
			return missing("faculty", req.FacultyID, err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := s.classrooms.FindActiveByID(gctx, req.ClassroomID); err != nil {
			return missing("classroom", req.ClassroomID, err)
		}
		return nil
	})
	g.Go(func() error {
		slot, err := s.slots.FindByID(gctx, req.SlotID)
		if err != nil {
			return missing("time slot", req.SlotID, err)
		}
		if !slot.IsActive {
			return missing("time slot", req.SlotID, sql.ErrNoRows)
		}
		return nil
	})
	return g.Wait()
}

// ensureNoCollisions locks active entries colliding with entry and fails with their details.
func (s *TimetableService) ensureNoCollisions(ctx context.Context, tx sqlx.ExtContext, entry models.TimetableEntry, excludeID int64) error {
	rows, err := s.store.LockCollisions(ctx, tx, entry, excludeID)
	if err != nil {
		return err
	}
	collisions := collisionsFor(entry, rows)
	if len(collisions) == 0 {
		return nil
	}
	s.metrics.RecordWriteConflict("precheck")
	return appErrors.WithDetails(
		appErrors.Clone(appErrors.ErrConflictDetected, fmt.Sprintf("entry collides with %d active assignment(s)", len(collisions))),
		collisions,
	)
}

// collisionsFor lists every invariant the candidate entry would break against existing rows.
func collisionsFor(entry models.TimetableEntry, rows []models.ScheduleRow) []models.Collision {
	var out []models.Collision
	for _, row := range rows {
		add := func(kind models.ConflictType) {
			out = append(out, models.Collision{Type: kind, Entry: conflictEntry(row), Day: row.DayOfWeek, Slot: row.SlotName})
		}
		if row.ClassroomID == entry.ClassroomID {
			add(models.ConflictClassroom)
		}
		if row.FacultyID == entry.FacultyID {
			add(models.ConflictFaculty)
		}
		if row.SubjectID == entry.SubjectID && row.Section == entry.Section {
			add(models.ConflictSection)
		}
	}
	return out
}

// writeError maps transaction failures. Constraint and serialization failures surface as conflicts and
// are not retried.
func (s *TimetableService) writeError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if database.IsWriteConflict(err) {
		s.metrics.RecordWriteConflict("constraint")
		conflict := appErrors.Clone(appErrors.ErrConflictDetected, "entry conflicts with a concurrent assignment")
		if name := database.ConstraintName(err); name != "" {
			conflict = appErrors.WithDetails(conflict, map[string]string{"constraint": name})
		}
		conflict.Err = err
		return conflict
	}
	return appErrors.Internal(err, message)
}

// reload re-reads a committed entry. The write already succeeded, so a failed read falls back to the
// persisted fields without the joined display columns.
func (s *TimetableService) reload(ctx context.Context, id int64, entry models.TimetableEntry) *models.ScheduleRow {
	row, err := s.store.FindByID(ctx, id)
	if err == nil {
		return row
	}
	s.logger.Warn("reload timetable entry after write failed", zap.Int64("timetable_id", id), zap.Error(err))
	return &models.ScheduleRow{
		ID:           id,
		SubjectID:    entry.SubjectID,
		FacultyID:    entry.FacultyID,
		ClassroomID:  entry.ClassroomID,
		SlotID:       entry.SlotID,
		Section:      entry.Section,
		AcademicYear: entry.AcademicYear,
		Semester:     entry.Semester,
		IsActive:     true,
		Notes:        entry.Notes,
	}
}

// authorizeEntry restricts faculty callers to entries they teach.
func (s *TimetableService) authorizeEntry(ctx context.Context, caller models.Caller, row *models.ScheduleRow) error {
	switch caller.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleFaculty:
		profile, err := s.faculty.FindByUserID(ctx, caller.UserID)
		if err != nil {
			return profileError(err, "faculty profile not found")
		}
		if profile.ID != row.FacultyID {
			return appErrors.Clone(appErrors.ErrUnauthorized, "entry is assigned to another faculty member")
		}
		return nil
	default:
		return appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
}

func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Internal(err, internal)
}
