package dto

import "github.com/noah-isme/timetable-api/internal/models"

// TimeSlotQuery filters the slot catalog.
type TimeSlotQuery struct {
	Day             string `form:"day"`
	IncludeInactive bool   `form:"include_inactive"`
}

// TimeSlotDetails is a slot with usage and the other slots overlapping it.
type TimeSlotDetails struct {
	Slot        models.TimeSlot      `json:"slot"`
	Usage       models.TimeSlotUsage `json:"usage"`
	Overlapping []models.TimeSlot    `json:"overlapping_slots"`
}

// AvailableSlotsQuery requests the free slots of a date.
type AvailableSlotsQuery struct {
	Date         string `form:"date" validate:"required,datetime=2006-01-02"`
	ClassroomID  *int64 `form:"classroom_id" validate:"omitempty,min=1"`
	FacultyID    *int64 `form:"faculty_id" validate:"omitempty,min=1"`
	AcademicYear string `form:"academic_year" validate:"omitempty,max=20"`
	Semester     string `form:"semester" validate:"omitempty,max=20"`
}

// AvailableSlots lists slots of the weekday of Date not booked for the given classroom or faculty.
type AvailableSlots struct {
	Date        string            `json:"date"`
	Day         string            `json:"day"`
	ClassroomID *int64            `json:"classroom_id,omitempty"`
	FacultyID   *int64            `json:"faculty_id,omitempty"`
	Slots       []models.TimeSlot `json:"slots"`
}
