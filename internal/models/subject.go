package models

import "strings"

// Subject types.
const (
	SubjectTypeTheory    = "theory"
	SubjectTypePractical = "practical"
	SubjectTypeLab       = "lab"
)

// Subject represents a course offered by a department.
type Subject struct {
	ID            int64   `db:"id" json:"id"`
	Code          string  `db:"code" json:"code"`
	Name          string  `db:"name" json:"name"`
	Credits       int     `db:"credits" json:"credits"`
	DurationHours int     `db:"duration_hours" json:"duration_hours"`
	Type          string  `db:"type" json:"type"`
	Department    string  `db:"department" json:"department"`
	YearLevel     int     `db:"year_level" json:"year_level"`
	Semester      string  `db:"semester" json:"semester"`
	Prerequisites *string `db:"prerequisites" json:"prerequisites,omitempty"`
	IsActive      bool    `db:"is_active" json:"is_active"`
}

// PrerequisiteCodes splits the comma-separated prerequisite list.
func (s Subject) PrerequisiteCodes() []string {
	if s.Prerequisites == nil {
		return nil
	}
	var codes []string
	for _, part := range strings.Split(*s.Prerequisites, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
