package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type memoryTimetableStore struct {
	rows      map[int64]models.ScheduleRow
	nextID    int64
	created   []models.TimetableEntry
	updated   []models.TimetableEntry
	createErr error
	findErr   error
	excluded  []int64
	locked    []int64
}

func newMemoryTimetableStore(rows ...models.ScheduleRow) *memoryTimetableStore {
	store := &memoryTimetableStore{rows: make(map[int64]models.ScheduleRow), nextID: 100}
	for _, row := range rows {
		store.rows[row.ID] = row
	}
	return store
}

func (m *memoryTimetableStore) FindByID(_ context.Context, id int64) (*models.ScheduleRow, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &row, nil
}

func (m *memoryTimetableStore) LockActive(_ context.Context, _ sqlx.ExtContext, id int64) error {
	row, ok := m.rows[id]
	if !ok || !row.IsActive {
		return sql.ErrNoRows
	}
	m.locked = append(m.locked, id)
	return nil
}

func (m *memoryTimetableStore) LockCollisions(_ context.Context, _ sqlx.ExtContext, entry models.TimetableEntry, excludeID int64) ([]models.ScheduleRow, error) {
	m.excluded = append(m.excluded, excludeID)
	var out []models.ScheduleRow
	for _, row := range m.rows {
		if !row.IsActive || row.ID == excludeID || row.SlotID != entry.SlotID ||
			row.AcademicYear != entry.AcademicYear || row.Semester != entry.Semester {
			continue
		}
		if row.ClassroomID == entry.ClassroomID || row.FacultyID == entry.FacultyID ||
			(row.SubjectID == entry.SubjectID && row.Section == entry.Section) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memoryTimetableStore) Create(_ context.Context, _ sqlx.ExtContext, entry models.TimetableEntry) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.nextID++
	row := scheduleRow(m.nextID, entry.SubjectID, entry.FacultyID, entry.ClassroomID, entry.SlotID, entry.Section, "Monday", "09:00:00", "10:00:00")
	row.AcademicYear = entry.AcademicYear
	row.Semester = entry.Semester
	m.rows[m.nextID] = row
	m.created = append(m.created, entry)
	return m.nextID, nil
}

func (m *memoryTimetableStore) Update(_ context.Context, _ sqlx.ExtContext, entry models.TimetableEntry) error {
	row, ok := m.rows[entry.ID]
	if !ok || !row.IsActive {
		return sql.ErrNoRows
	}
	row.SubjectID, row.FacultyID, row.ClassroomID, row.SlotID = entry.SubjectID, entry.FacultyID, entry.ClassroomID, entry.SlotID
	row.Section = entry.Section
	m.rows[entry.ID] = row
	m.updated = append(m.updated, entry)
	return nil
}

func (m *memoryTimetableStore) Deactivate(_ context.Context, id int64) error {
	row, ok := m.rows[id]
	if !ok || !row.IsActive {
		return sql.ErrNoRows
	}
	row.IsActive = false
	m.rows[id] = row
	return nil
}

type stubEnrollmentLinker struct {
	counts map[int64]int
	roster []models.RosterEntry
}

func (s stubEnrollmentLinker) CountByEntries(_ context.Context, ids []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(ids))
	for _, id := range ids {
		out[id] = s.counts[id]
	}
	return out, nil
}

func (s stubEnrollmentLinker) Roster(context.Context, int64) ([]models.RosterEntry, error) {
	return s.roster, nil
}

type stubClassroomFinder map[int64]*models.Classroom

func (s stubClassroomFinder) FindActiveByID(_ context.Context, id int64) (*models.Classroom, error) {
	if room, ok := s[id]; ok {
		return room, nil
	}
	return nil, sql.ErrNoRows
}

type stubSlotFinder map[int64]*models.TimeSlot

func (s stubSlotFinder) FindByID(_ context.Context, id int64) (*models.TimeSlot, error) {
	if slot, ok := s[id]; ok {
		return slot, nil
	}
	return nil, sql.ErrNoRows
}

type timetableFixture struct {
	svc      *TimetableService
	store    *memoryTimetableStore
	tx       *fakeTx
	notifier *recordingNotifier
	metrics  *MetricsService
}

func newTimetableFixture(rows ...models.ScheduleRow) timetableFixture {
	store := newMemoryTimetableStore(rows...)
	tx := &fakeTx{}
	notifier := &recordingNotifier{}
	metrics := NewMetricsService()
	svc := NewTimetableService(TimetableDeps{
		Store:       store,
		Enrollments: stubEnrollmentLinker{counts: map[int64]int{1: 28}, roster: []models.RosterEntry{{StudentID: 50, StudentNumber: "S-050", Name: "Lin"}}},
		Subjects:    stubSubjectFinder{subject: &models.Subject{ID: 1, Code: "CS101", IsActive: true}},
		Faculty: &fakeFacultyDirectory{
			active: map[int64]*models.Faculty{7: {ID: 7}, 8: {ID: 8}},
			byUser: map[int64]*models.Faculty{100: {ID: 7, UserID: 100}, 200: {ID: 8, UserID: 200}},
		},
		Classrooms: stubClassroomFinder{101: {ID: 101, RoomNumber: "101", IsActive: true}, 102: {ID: 102, RoomNumber: "102", IsActive: true}},
		Slots: stubSlotFinder{
			1: {ID: 1, DayOfWeek: "Monday", StartTime: "09:00:00", EndTime: "10:00:00", IsActive: true},
			2: {ID: 2, DayOfWeek: "Monday", StartTime: "10:00:00", EndTime: "11:00:00", IsActive: true},
			9: {ID: 9, DayOfWeek: "Friday", StartTime: "16:00:00", EndTime: "17:00:00", IsActive: false},
		},
		Tx:      tx,
		Monitor: notifier,
		Metrics: metrics,
	}, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC) }
	return timetableFixture{svc: svc, store: store, tx: tx, notifier: notifier, metrics: metrics}
}

func timetableRequest(facultyID, classroomID, slotID int64, section string) dto.TimetableRequest {
	return dto.TimetableRequest{
		SubjectID:    1,
		FacultyID:    facultyID,
		ClassroomID:  classroomID,
		SlotID:       slotID,
		Section:      section,
		AcademicYear: "2025-26",
		Semester:     "S1",
	}
}

func TestTimetableCreateSucceeds(t *testing.T) {
	fx := newTimetableFixture(scheduleRow(1, 1, 7, 101, 1, "A", "Monday", "09:00:00", "10:00:00"))

	req := timetableRequest(8, 102, 2, " B ")
	row, err := fx.svc.Create(context.Background(), adminCaller, req)
	require.NoError(t, err)

	assert.Equal(t, int64(101), row.ID)
	require.Len(t, fx.store.created, 1)
	created := fx.store.created[0]
	assert.Equal(t, "B", created.Section)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, adminCaller.UserID, *created.CreatedBy)
	assert.Equal(t, time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC), created.CreatedAt)
	assert.Equal(t, 1, fx.tx.calls)
	assert.Equal(t, []string{"create"}, fx.notifier.reasons)
	assert.Equal(t, []int64{0}, fx.store.excluded)
}

func TestTimetableCreateRejectsDoubleBookedClassroom(t *testing.T) {
	fx := newTimetableFixture(scheduleRow(1, 1, 7, 101, 1, "A", "Monday", "09:00:00", "10:00:00"))

	_, err := fx.svc.Create(context.Background(), adminCaller, timetableRequest(8, 101, 1, "B"))
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflictDetected.Code, appErr.Code)
	collisions, ok := appErr.Details.([]models.Collision)
	require.True(t, ok)
	require.Len(t, collisions, 1)
	assert.Equal(t, models.ConflictClassroom, collisions[0].Type)
	assert.Equal(t, int64(1), collisions[0].Entry.ID)
	assert.Empty(t, fx.store.created)
	assert.Empty(t, fx.notifier.reasons)
}

func TestTimetableCreateReportsEveryCollision(t *testing.T) {
	fx := newTimetableFixture(scheduleRow(1, 1, 7, 101, 1, "A", "Monday", "09:00:00", "10:00:00"))

	_, err := fx.svc.Create(context.Background(), adminCaller, timetableRequest(7, 101, 1, "A"))
	require.Error(t, err)
	collisions := appErrors.FromError(err).Details.([]models.Collision)
	kinds := make([]models.ConflictType, 0, len(collisions))
	for _, c := range collisions {
		kinds = append(kinds, c.Type)
	}
	assert.Equal(t, []models.ConflictType{models.ConflictClassroom, models.ConflictFaculty, models.ConflictSection}, kinds)
}

func TestTimetableCreateAllowsDifferentPeriod(t *testing.T) {
	fx := newTimetableFixture(scheduleRow(1, 1, 7, 101, 1, "A", "Monday", "09:00:00", "10:00:00"))

	req := timetableRequest(7, 101, 1, "A")
	req.Semester = "S2"
	_, err := fx.svc.Create(context.Background(), adminCaller, req)
	require.NoError(t, err)
}

func TestTimetableCreateMapsConstraintViolation(t *testing.T) {
	fx := newTimetableFixture()
	fx.store.createErr = &pq.Error{Code: "23505", Constraint: "timetables_classroom_slot_active_key"}

	_, err := fx.svc.Create(context.Background(), adminCaller, timetableRequest(7, 101, 1, "A"))
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflictDetected.Code, appErr.Code)
	assert.Equal(t, map[string]string{"constraint": "timetables_classroom_slot_active_key"}, appErr.Details)
	assert.Empty(t, fx.notifier.reasons)
}

func TestTimetableCreateMapsSerializationFailure(t *testing.T) {
	fx := newTimetableFixture()
	fx.tx.err = &pq.Error{Code: "40001"}

	_, err := fx.svc.Create(context.Background(), adminCaller, timetableRequest(7, 101, 1, "A"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflictDetected))
}

func TestTimetableCreateUnexpectedFailureIsInternal(t *testing.T) {
	fx := newTimetableFixture()
	fx.store.createErr = errors.New("disk full")

	_, err := fx.svc.Create(context.Background(), adminCaller, timetableRequest(7, 101, 1, "A"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestTimetableCreateValidatesReferences(t *testing.T) {
	fx := newTimetableFixture()
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, adminCaller, timetableRequest(99, 101, 1, "A"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, "faculty 99 does not exist or is inactive", appErrors.FromError(err).Message)

	_, err = fx.svc.Create(ctx, adminCaller, timetableRequest(7, 101, 9, "A"))
	require.Error(t, err)
	assert.Equal(t, "time slot 9 does not exist or is inactive", appErrors.FromError(err).Message)

	_, err = fx.svc.Create(ctx, adminCaller, timetableRequest(7, 101, 1, ""))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, fx.tx.calls)
}

func TestTimetableWritesRequireAdmin(t *testing.T) {
	fx := newTimetableFixture(scheduleRow(1, 1, 7, 101, 1, "A", "Monday", "09:00:00", "10:00:00"))
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, facultyCaller, timetableRequest(7, 101, 1, "A"))
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	_, err = fx.svc.Update(ctx, studentCaller, 1, timetableRequest(7, 101, 1, "A"))
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	err = fx.svc.Deactivate(ctx, facultyCaller, 1)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestTimetableUpdateExcludesItself(t *testing.T) {
	fx := newTimetableFixture(scheduleRow(1, 1, 7, 101, 1, "A", "Monday", "09:00:00", "10:00:00"))

	row, err := fx.svc.Update(context.Background(), adminCaller, 1, timetableRequest(7, 102, 1, "A"))
	require.NoError(t, err)
	assert.Equal(t, int64(102), row.ClassroomID)
	assert.Equal(t, []int64{1}, fx.store.locked)
	assert.Equal(t, []int64{1}, fx.store.excluded)
	assert.Equal(t, []string{"update"}, fx.notifier.reasons)
}

func TestTimetableUpdateMissingEntry(t *testing.T) {
	fx := newTimetableFixture()

	_, err := fx.svc.Update(context.Background(), adminCaller, 5, timetableRequest(7, 101, 1, "A"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTimetableUpdateInactiveEntryIsNotFoundEvenWhenColliding(t *testing.T) {
	inactive := scheduleRow(2, 1, 8, 102, 2, "B", "Monday", "10:00:00", "11:00:00")
	inactive.IsActive = false
	fx := newTimetableFixture(scheduleRow(1, 1, 7, 101, 1, "A", "Monday", "09:00:00", "10:00:00"), inactive)

	_, err := fx.svc.Update(context.Background(), adminCaller, 2, timetableRequest(7, 101, 1, "A"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.False(t, errors.Is(err, appErrors.ErrConflictDetected))
	assert.Empty(t, fx.store.excluded)
	assert.Empty(t, fx.store.updated)
	assert.Empty(t, fx.notifier.reasons)
}

func TestTimetableCreateSurvivesFailedReload(t *testing.T) {
	fx := newTimetableFixture()
	core, logs := observer.New(zap.WarnLevel)
	fx.svc.logger = zap.New(core)
	fx.store.findErr = errors.New("replica lag")

	row, err := fx.svc.Create(context.Background(), adminCaller, timetableRequest(7, 101, 1, "A"))
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, int64(101), row.ID)
	assert.Equal(t, int64(7), row.FacultyID)
	assert.Equal(t, int64(101), row.ClassroomID)
	assert.Equal(t, "2025-26", row.AcademicYear)
	assert.True(t, row.IsActive)
	require.Len(t, fx.store.created, 1)
	assert.Equal(t, []string{"create"}, fx.notifier.reasons)

	entries := logs.FilterMessage("reload timetable entry after write failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(101), entries[0].ContextMap()["timetable_id"])
}

func TestTimetableDeactivate(t *testing.T) {
	fx := newTimetableFixture(scheduleRow(1, 1, 7, 101, 1, "A", "Monday", "09:00:00", "10:00:00"))
	ctx := context.Background()

	require.NoError(t, fx.svc.Deactivate(ctx, adminCaller, 1))
	assert.False(t, fx.store.rows[1].IsActive)
	assert.Equal(t, []string{"deactivate"}, fx.notifier.reasons)

	err := fx.svc.Deactivate(ctx, adminCaller, 1)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = fx.svc.Create(ctx, adminCaller, timetableRequest(8, 101, 1, "B"))
	assert.NoError(t, err, "inactive entries never block writes")
}

func TestTimetableGetIncludesHeadcount(t *testing.T) {
	fx := newTimetableFixture(scheduleRow(1, 1, 7, 101, 1, "A", "Monday", "09:00:00", "10:00:00"))

	details, err := fx.svc.Get(context.Background(), adminCaller, 1)
	require.NoError(t, err)
	assert.Equal(t, 28, details.EnrolledCount)
	assert.Equal(t, "CS101", details.SubjectCode)

	_, err = fx.svc.Get(context.Background(), adminCaller, 404)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTimetableFacultyReadsOnlyOwnEntries(t *testing.T) {
	fx := newTimetableFixture(scheduleRow(1, 1, 7, 101, 1, "A", "Monday", "09:00:00", "10:00:00"))
	ctx := context.Background()

	_, err := fx.svc.Get(ctx, facultyCaller, 1)
	require.NoError(t, err)

	other := models.Caller{UserID: 200, Role: models.RoleFaculty}
	_, err = fx.svc.Get(ctx, other, 1)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	_, err = fx.svc.Roster(ctx, other, 1)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	roster, err := fx.svc.Roster(ctx, facultyCaller, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, roster.Total)
	assert.Equal(t, "Lin", roster.Students[0].Name)
}
