package models

import "time"

// EnrollmentStatusEnrolled marks an enrollment that counts towards headcounts and schedules.
const EnrollmentStatusEnrolled = "enrolled"

// Enrollment registers a student to a subject section for an academic period.
type Enrollment struct {
	ID             int64     `db:"id" json:"id"`
	StudentID      int64     `db:"student_id" json:"student_id"`
	SubjectID      int64     `db:"subject_id" json:"subject_id"`
	Section        string    `db:"section" json:"section"`
	Semester       string    `db:"semester" json:"semester"`
	AcademicYear   string    `db:"academic_year" json:"academic_year"`
	Status         string    `db:"status" json:"status"`
	EnrollmentDate time.Time `db:"enrollment_date" json:"enrollment_date"`
}

// RosterEntry is one enrolled student of a timetable entry.
type RosterEntry struct {
	StudentID      int64  `db:"student_id" json:"student_id"`
	StudentNumber  string `db:"student_number" json:"student_number"`
	Name           string `db:"name" json:"name"`
	EnrollmentDate string `db:"enrollment_date" json:"enrollment_date"`
}
