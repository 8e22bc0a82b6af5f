package models

// Workload classes by active assignment count.
const (
	WorkloadLight    = "light"
	WorkloadModerate = "moderate"
	WorkloadHeavy    = "heavy"
)

// Experience classes by years of experience.
const (
	ExperienceJunior  = "junior"
	ExperienceMid     = "mid"
	ExperienceSenior  = "senior"
	ExperienceUnknown = "unknown"
)

// FacultyAvailability is a ranked candidate for a subject assignment.
type FacultyAvailability struct {
	FacultyID         int64    `json:"faculty_id"`
	EmployeeID        string   `json:"employee_id"`
	Name              string   `json:"name"`
	Department        string   `json:"department"`
	Designation       string   `json:"designation"`
	Specialization    *string  `json:"specialization,omitempty"`
	ExperienceYears   *int     `json:"experience_years,omitempty"`
	ActiveAssignments int      `json:"active_assignments"`
	SameDepartment    bool     `json:"same_department"`
	Score             int      `json:"compatibility_score"`
	MatchedKeywords   []string `json:"matched_keywords,omitempty"`
	Workload          string   `json:"workload"`
	ExperienceLevel   string   `json:"experience_level"`
}

// AvailabilityStats aggregates the eligible pool.
type AvailabilityStats struct {
	TotalEligible  int     `json:"total_eligible"`
	SameDepartment int     `json:"same_department"`
	AverageLoad    float64 `json:"average_load"`
}

// Recommendation explains why a top candidate is suggested.
type Recommendation struct {
	FacultyID int64    `json:"faculty_id"`
	Name      string   `json:"name"`
	Score     int      `json:"compatibility_score"`
	Reasons   []string `json:"reasons"`
}

// AvailabilityReport is the ranked faculty pool for one subject.
type AvailabilityReport struct {
	Subject         Subject               `json:"subject"`
	Faculty         []FacultyAvailability `json:"faculty"`
	Stats           AvailabilityStats     `json:"stats"`
	Recommendations []Recommendation      `json:"recommendations"`
}
