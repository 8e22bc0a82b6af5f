package dto

import "github.com/noah-isme/timetable-api/internal/models"

// TimetableRequest is the payload for creating or replacing a timetable entry.
type TimetableRequest struct {
	SubjectID    int64   `json:"subject_id" validate:"required,min=1"`
	FacultyID    int64   `json:"faculty_id" validate:"required,min=1"`
	ClassroomID  int64   `json:"classroom_id" validate:"required,min=1"`
	SlotID       int64   `json:"slot_id" validate:"required,min=1"`
	Section      string  `json:"section" validate:"required,max=10"`
	AcademicYear string  `json:"academic_year" validate:"required,max=20"`
	Semester     string  `json:"semester" validate:"required,max=20"`
	Notes        *string `json:"notes" validate:"omitempty,max=500"`
}

// TimetableDetails is a single entry with its enrollment headcount.
type TimetableDetails struct {
	models.ScheduleRow
	EnrolledCount int `json:"enrolled_count"`
}

// TimetableRoster lists the students enrolled in an entry.
type TimetableRoster struct {
	EntryID  int64                `json:"entry_id"`
	Total    int                  `json:"total"`
	Students []models.RosterEntry `json:"students"`
}
