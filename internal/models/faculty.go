package models

// Faculty is a teaching staff member linked to exactly one user account.
type Faculty struct {
	ID              int64   `db:"id" json:"id"`
	UserID          int64   `db:"user_id" json:"user_id"`
	EmployeeID      string  `db:"employee_id" json:"employee_id"`
	Name            string  `db:"name" json:"name"`
	Department      string  `db:"department" json:"department"`
	Designation     string  `db:"designation" json:"designation"`
	Specialization  *string `db:"specialization" json:"specialization,omitempty"`
	ExperienceYears *int    `db:"experience_years" json:"experience_years,omitempty"`
}

// FacultyCandidate is a faculty member together with their current active assignment count.
type FacultyCandidate struct {
	Faculty
	ActiveAssignments int `db:"active_assignments" json:"active_assignments"`
}
