package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

var timeSlotColumns = []string{
	"ts.id", "ts.name", "ts.day_of_week",
	"TO_CHAR(ts.start_time, 'HH24:MI:SS') AS start_time",
	"TO_CHAR(ts.end_time, 'HH24:MI:SS') AS end_time",
	"ts.is_active",
}

// TimeSlotRepository reads the time slot catalog.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

func slotOrder(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	return q.OrderBy(dayRankExpr("ts.day_of_week"), "ts.start_time", "ts.id")
}

// List returns catalog slots in weekday/start order.
func (r *TimeSlotRepository) List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, error) {
	q := psql.Select(timeSlotColumns...).From("time_slots ts")
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"ts.is_active": true})
	}
	if filter.DayOfWeek != "" {
		q = q.Where(squirrel.Eq{"ts.day_of_week": filter.DayOfWeek})
	}
	query, args, err := slotOrder(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build time slot query: %w", err)
	}
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// FindByID loads a slot by id.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id int64) (*models.TimeSlot, error) {
	query, args, err := psql.Select(timeSlotColumns...).From("time_slots ts").Where(squirrel.Eq{"ts.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build time slot query: %w", err)
	}
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, args...); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Usage counts the active entries booked into a slot. Students are counted once across all entries.
func (r *TimeSlotRepository) Usage(ctx context.Context, slotID int64) (*models.TimeSlotUsage, error) {
	const query = `SELECT COUNT(*) AS active_entries,
	COUNT(DISTINCT t.classroom_id) AS classrooms,
	COUNT(DISTINCT t.faculty_id) AS faculty,
	COUNT(DISTINCT t.subject_id) AS subjects,
	(SELECT COUNT(DISTINCT e.student_id) FROM enrollments e
		WHERE e.status = $2 AND EXISTS (SELECT 1 FROM timetables t2 WHERE t2.slot_id = $1 AND t2.is_active = TRUE
			AND t2.subject_id = e.subject_id AND t2.section = e.section AND t2.semester = e.semester AND t2.academic_year = e.academic_year)) AS students
FROM timetables t WHERE t.slot_id = $1 AND t.is_active = TRUE`
	var usage models.TimeSlotUsage
	if err := r.db.GetContext(ctx, &usage, query, slotID, models.EnrollmentStatusEnrolled); err != nil {
		return nil, fmt.Errorf("time slot usage: %w", err)
	}
	return &usage, nil
}

// Overlapping returns other active slots on the same weekday whose interval intersects the slot's.
func (r *TimeSlotRepository) Overlapping(ctx context.Context, slotID int64) ([]models.TimeSlot, error) {
	query, args, err := slotOrder(psql.Select(timeSlotColumns...).
		From("time_slots ts").
		Join("time_slots ref ON ref.id = ?", slotID).
		Where("ts.id <> ref.id").
		Where(squirrel.Eq{"ts.is_active": true}).
		Where("ts.day_of_week = ref.day_of_week").
		Where("ts.start_time < ref.end_time").
		Where("ref.start_time < ts.end_time")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overlap query: %w", err)
	}
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list overlapping slots: %w", err)
	}
	return slots, nil
}

// bookedExpr matches slots holding an active entry for the given resource column.
func bookedExpr(column string, id int64, period models.Period) squirrel.Sqlizer {
	sql := "NOT EXISTS (SELECT 1 FROM timetables t WHERE t.slot_id = ts.id AND t.is_active = TRUE AND t." + column + " = ?"
	args := []interface{}{id}
	if period.AcademicYear != "" {
		sql += " AND t.academic_year = ?"
		args = append(args, period.AcademicYear)
	}
	if period.Semester != "" {
		sql += " AND t.semester = ?"
		args = append(args, period.Semester)
	}
	return squirrel.Expr(sql+")", args...)
}

// Available returns the active slots of a weekday not booked for the given classroom and/or faculty.
func (r *TimeSlotRepository) Available(ctx context.Context, filter models.SlotBookingFilter) ([]models.TimeSlot, error) {
	q := psql.Select(timeSlotColumns...).
		From("time_slots ts").
		Where(squirrel.Eq{"ts.is_active": true, "ts.day_of_week": filter.DayOfWeek})
	if filter.ClassroomID != nil {
		q = q.Where(bookedExpr("classroom_id", *filter.ClassroomID, filter.Period))
	}
	if filter.FacultyID != nil {
		q = q.Where(bookedExpr("faculty_id", *filter.FacultyID, filter.Period))
	}
	query, args, err := slotOrder(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build available slot query: %w", err)
	}
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	return slots, nil
}
