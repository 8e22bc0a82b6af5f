package dto

import "github.com/noah-isme/timetable-api/internal/models"

// Schedule views.
const (
	ViewList   = "list"
	ViewWeekly = "weekly"
)

// Search types.
const (
	SearchAll       = "all"
	SearchSubject   = "subject"
	SearchFaculty   = "faculty"
	SearchClassroom = "classroom"
)

// ScheduleQuery captures the common schedule query parameters. Admin-only filters are ignored for other roles.
type ScheduleQuery struct {
	Week         string `form:"week" validate:"omitempty,datetime=2006-01-02"`
	View         string `form:"view" validate:"omitempty,oneof=list weekly"`
	AcademicYear string `form:"academic_year" validate:"omitempty,max=20"`
	Semester     string `form:"semester" validate:"omitempty,max=20"`
	Department   string `form:"department" validate:"omitempty,max=100"`
	FacultyID    *int64 `form:"faculty_id" validate:"omitempty,min=1"`
	SubjectID    *int64 `form:"subject_id" validate:"omitempty,min=1"`
	Day          string `form:"day"`
	Q            string `form:"q"`
	Type         string `form:"type" validate:"omitempty,oneof=subject faculty classroom all"`
}

// WeekRange is the Monday..Saturday window a schedule response is anchored to.
type WeekRange struct {
	Start string `json:"week_start"`
	End   string `json:"week_end"`
}

// ScheduleList is the flat role-scoped schedule.
type ScheduleList struct {
	Period models.Period        `json:"period"`
	Week   WeekRange            `json:"week"`
	Rows   []models.ScheduleRow `json:"rows"`
}

// WeeklySchedule groups rows by weekday. Days lists the keys of Grid in canonical order.
type WeeklySchedule struct {
	Period models.Period                   `json:"period"`
	Week   WeekRange                       `json:"week"`
	Days   []string                        `json:"days"`
	Dates  map[string]string               `json:"dates"`
	Grid   map[string][]models.ScheduleRow `json:"grid"`
}

// DailySchedule lists the rows of a single weekday.
type DailySchedule struct {
	Period models.Period        `json:"period"`
	Day    string               `json:"day"`
	Rows   []models.ScheduleRow `json:"rows"`
}

// ScheduleSearchResult lists rows matching a search term.
type ScheduleSearchResult struct {
	Query string               `json:"query"`
	Type  string               `json:"type"`
	Rows  []models.ScheduleRow `json:"rows"`
}

// ConflictReport lists every conflicting pair in the scanned period.
type ConflictReport struct {
	Period    models.Period     `json:"period"`
	Total     int               `json:"total"`
	Conflicts []models.Conflict `json:"conflicts"`
}
