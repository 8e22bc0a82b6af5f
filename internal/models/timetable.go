package models

import "time"

// TimetableEntry is one scheduled (subject, faculty, classroom, slot, section) assignment for an academic period.
type TimetableEntry struct {
	ID           int64     `db:"id" json:"id"`
	SubjectID    int64     `db:"subject_id" json:"subject_id"`
	FacultyID    int64     `db:"faculty_id" json:"faculty_id"`
	ClassroomID  int64     `db:"classroom_id" json:"classroom_id"`
	SlotID       int64     `db:"slot_id" json:"slot_id"`
	Section      string    `db:"section" json:"section"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Semester     string    `db:"semester" json:"semester"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	CreatedBy    *int64    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleRow is a timetable entry joined with its subject, faculty, classroom and slot display fields.
type ScheduleRow struct {
	ID           int64   `db:"id" json:"id"`
	SubjectID    int64   `db:"subject_id" json:"subject_id"`
	FacultyID    int64   `db:"faculty_id" json:"faculty_id"`
	ClassroomID  int64   `db:"classroom_id" json:"classroom_id"`
	SlotID       int64   `db:"slot_id" json:"slot_id"`
	Section      string  `db:"section" json:"section"`
	AcademicYear string  `db:"academic_year" json:"academic_year"`
	Semester     string  `db:"semester" json:"semester"`
	IsActive     bool    `db:"is_active" json:"is_active"`
	Notes        *string `db:"notes" json:"notes,omitempty"`

	SubjectCode    string `db:"subject_code" json:"subject_code"`
	SubjectName    string `db:"subject_name" json:"subject_name"`
	SubjectCredits int    `db:"subject_credits" json:"subject_credits"`
	SubjectType    string `db:"subject_type" json:"subject_type"`
	Department     string `db:"department" json:"department"`
	FacultyName    string `db:"faculty_name" json:"faculty_name"`
	RoomNumber     string `db:"room_number" json:"room_number"`
	Building       string `db:"building" json:"building"`
	SlotName       string `db:"slot_name" json:"slot_name"`
	DayOfWeek      string `db:"day_of_week" json:"day_of_week"`
	StartTime      string `db:"start_time" json:"start_time"`
	EndTime        string `db:"end_time" json:"end_time"`
}

// TimetableFilter is the set of optional predicates applied when listing active entries.
// Zero values are ignored.
type TimetableFilter struct {
	FacultyID    *int64
	SubjectID    *int64
	ClassroomID  *int64
	SlotID       *int64
	StudentID    *int64
	AcademicYear string
	Semester     string
	Department   string
	DayOfWeek    string
	Section      string
}

// Period narrows queries to one academic year and semester. Empty fields match everything.
type Period struct {
	AcademicYear string `json:"academic_year,omitempty"`
	Semester     string `json:"semester,omitempty"`
}
