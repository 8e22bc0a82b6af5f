package models

// ScheduleStats holds role-scoped summary figures derived from an assembled schedule.
// Pointer fields are only populated for roles that see them.
type ScheduleStats struct {
	TotalClasses       int            `json:"total_classes"`
	DistinctSubjects   int            `json:"distinct_subjects"`
	TotalHours         float64        `json:"total_hours"`
	ClassesPerDay      map[string]int `json:"classes_per_day"`
	DistinctFaculty    *int           `json:"distinct_faculty,omitempty"`
	DistinctClassrooms *int           `json:"distinct_classrooms,omitempty"`
	DistinctStudents   *int           `json:"distinct_students,omitempty"`
	TotalCredits       *int           `json:"total_credits,omitempty"`
}
