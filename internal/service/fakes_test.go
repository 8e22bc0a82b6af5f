package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// fakeEnrollment mirrors an enrollments row for the in-memory store.
type fakeEnrollment struct {
	studentID    int64
	subjectID    int64
	section      string
	academicYear string
	semester     string
}

// fakeTimetable applies TimetableFilter semantics to an in-memory row set.
type fakeTimetable struct {
	mu          sync.Mutex
	rows        []models.ScheduleRow
	enrollments []fakeEnrollment
	filters     []models.TimetableFilter
	err         error
}

func (f *fakeTimetable) ListActive(_ context.Context, filter models.TimetableFilter) ([]models.ScheduleRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	var out []models.ScheduleRow
	for _, row := range f.rows {
		if !row.IsActive {
			continue
		}
		if filter.FacultyID != nil && row.FacultyID != *filter.FacultyID {
			continue
		}
		if filter.SubjectID != nil && row.SubjectID != *filter.SubjectID {
			continue
		}
		if filter.Department != "" && row.Department != filter.Department {
			continue
		}
		if filter.AcademicYear != "" && row.AcademicYear != filter.AcademicYear {
			continue
		}
		if filter.Semester != "" && row.Semester != filter.Semester {
			continue
		}
		if filter.StudentID != nil && !f.enrolled(*filter.StudentID, row) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeTimetable) enrolled(studentID int64, row models.ScheduleRow) bool {
	for _, e := range f.enrollments {
		if e.studentID == studentID && e.subjectID == row.SubjectID && e.section == row.Section &&
			e.academicYear == row.AcademicYear && e.semester == row.Semester {
			return true
		}
	}
	return false
}

func (f *fakeTimetable) lastFilter() models.TimetableFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filters[len(f.filters)-1]
}

type fakeFacultyDirectory struct {
	byUser map[int64]*models.Faculty
	active map[int64]*models.Faculty
	err    error
}

func (f *fakeFacultyDirectory) FindByUserID(_ context.Context, userID int64) (*models.Faculty, error) {
	if f.err != nil {
		return nil, f.err
	}
	if faculty, ok := f.byUser[userID]; ok {
		return faculty, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeFacultyDirectory) FindActiveByID(_ context.Context, id int64) (*models.Faculty, error) {
	if faculty, ok := f.active[id]; ok {
		return faculty, nil
	}
	return nil, sql.ErrNoRows
}

type fakeStudentDirectory struct {
	byUser map[int64]*models.Student
}

func (f *fakeStudentDirectory) FindByUserID(_ context.Context, userID int64) (*models.Student, error) {
	if student, ok := f.byUser[userID]; ok {
		return student, nil
	}
	return nil, sql.ErrNoRows
}

type fakeStudentCounter struct {
	total int
	ids   []int64
}

func (f *fakeStudentCounter) DistinctStudents(_ context.Context, ids []int64) (int, error) {
	f.ids = ids
	return f.total, nil
}

// fakeTx runs the unit of work without a database.
type fakeTx struct {
	calls int
	err   error
}

func (f *fakeTx) DoSerializable(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	f.calls++
	if err := fn(nil); err != nil {
		return err
	}
	return f.err
}

type recordingNotifier struct {
	reasons []string
}

func (n *recordingNotifier) Notify(reason string) {
	n.reasons = append(n.reasons, reason)
}

func scheduleRow(id, subjectID, facultyID, classroomID, slotID int64, section, day, start, end string) models.ScheduleRow {
	return models.ScheduleRow{
		ID:             id,
		SubjectID:      subjectID,
		FacultyID:      facultyID,
		ClassroomID:    classroomID,
		SlotID:         slotID,
		Section:        section,
		AcademicYear:   "2025-26",
		Semester:       "S1",
		IsActive:       true,
		SubjectCode:    "CS101",
		SubjectName:    "Data Structures",
		SubjectCredits: 4,
		Department:     "CS",
		FacultyName:    "Dr. Ada",
		RoomNumber:     "101",
		Building:       "Main",
		SlotName:       day + " " + start,
		DayOfWeek:      day,
		StartTime:      start,
		EndTime:        end,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
