package models

// ConflictType names the invariant a pair of entries violates.
type ConflictType string

const (
	ConflictClassroom ConflictType = "classroom"
	ConflictFaculty   ConflictType = "faculty"
	ConflictSection   ConflictType = "section"
)

// ConflictEntry is the display summary of one side of a conflict.
type ConflictEntry struct {
	ID          int64  `json:"id"`
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	Section     string `json:"section"`
	FacultyName string `json:"faculty_name"`
	RoomNumber  string `json:"room_number"`
}

// Conflict records two active entries that illegally share a resource in the same slot and period.
type Conflict struct {
	Type         ConflictType  `json:"conflict_type"`
	EntryA       ConflictEntry `json:"entry_a"`
	EntryB       ConflictEntry `json:"entry_b"`
	SlotID       int64         `json:"slot_id"`
	SlotName     string        `json:"slot"`
	Day          string        `json:"day"`
	StartTime    string        `json:"start_time"`
	EndTime      string        `json:"end_time"`
	TimeRange    string        `json:"time_range"`
	AcademicYear string        `json:"academic_year"`
	Semester     string        `json:"semester"`
}

// Collision describes an existing active entry that blocks a timetable write.
type Collision struct {
	Type  ConflictType  `json:"conflict_type"`
	Entry ConflictEntry `json:"entry"`
	Day   string        `json:"day"`
	Slot  string        `json:"slot"`
}
