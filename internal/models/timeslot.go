package models

// TimeSlot is a named recurring weekly window.
type TimeSlot struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	DayOfWeek string `db:"day_of_week" json:"day_of_week"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	IsActive  bool   `db:"is_active" json:"is_active"`
}

// TimeSlotFilter narrows the slot catalog.
type TimeSlotFilter struct {
	DayOfWeek  string
	ActiveOnly bool
}

// TimeSlotUsage summarises the active entries booked into a slot.
type TimeSlotUsage struct {
	ActiveEntries int `db:"active_entries" json:"active_entries"`
	Classrooms    int `db:"classrooms" json:"classrooms"`
	Faculty       int `db:"faculty" json:"faculty"`
	Subjects      int `db:"subjects" json:"subjects"`
	Students      int `db:"students" json:"students"`
}

// SlotBookingFilter selects slots on a weekday that a classroom and/or faculty member has free.
type SlotBookingFilter struct {
	DayOfWeek   string
	ClassroomID *int64
	FacultyID   *int64
	Period
}
