package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

var scheduleColumns = []string{
	"t.id", "t.subject_id", "t.faculty_id", "t.classroom_id", "t.slot_id",
	"t.section", "t.academic_year", "t.semester", "t.is_active", "t.notes",
	"s.code AS subject_code", "s.name AS subject_name", "s.credits AS subject_credits",
	"s.type AS subject_type", "s.department AS department",
	"f.name AS faculty_name",
	"c.room_number", "c.building",
	"ts.name AS slot_name", "ts.day_of_week",
	"TO_CHAR(ts.start_time, 'HH24:MI:SS') AS start_time",
	"TO_CHAR(ts.end_time, 'HH24:MI:SS') AS end_time",
}

// TimetableRepository reads and writes timetable entries.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func scheduleSelect() squirrel.SelectBuilder {
	return psql.Select(scheduleColumns...).
		From("timetables t").
		Join("subjects s ON s.id = t.subject_id").
		Join("faculty f ON f.id = t.faculty_id").
		Join("classrooms c ON c.id = t.classroom_id").
		Join("time_slots ts ON ts.id = t.slot_id")
}

// enrolledExpr matches entries reachable through one of the student's enrollments.
func enrolledExpr(studentID int64) squirrel.Sqlizer {
	return squirrel.Expr(`EXISTS (SELECT 1 FROM enrollments e WHERE e.student_id = ? AND e.subject_id = t.subject_id AND e.section = t.section AND e.semester = t.semester AND e.academic_year = t.academic_year AND e.status = ?)`,
		studentID, models.EnrollmentStatusEnrolled)
}

// buildListQuery translates a filter into a parameterized query over active entries.
func buildListQuery(filter models.TimetableFilter) (string, []interface{}, error) {
	q := scheduleSelect().Where(squirrel.Eq{"t.is_active": true})

	if filter.FacultyID != nil {
		q = q.Where(squirrel.Eq{"t.faculty_id": *filter.FacultyID})
	}
	if filter.SubjectID != nil {
		q = q.Where(squirrel.Eq{"t.subject_id": *filter.SubjectID})
	}
	if filter.ClassroomID != nil {
		q = q.Where(squirrel.Eq{"t.classroom_id": *filter.ClassroomID})
	}
	if filter.SlotID != nil {
		q = q.Where(squirrel.Eq{"t.slot_id": *filter.SlotID})
	}
	if filter.AcademicYear != "" {
		q = q.Where(squirrel.Eq{"t.academic_year": filter.AcademicYear})
	}
	if filter.Semester != "" {
		q = q.Where(squirrel.Eq{"t.semester": filter.Semester})
	}
	if filter.Department != "" {
		q = q.Where(squirrel.Eq{"s.department": filter.Department})
	}
	if filter.DayOfWeek != "" {
		q = q.Where(squirrel.Eq{"ts.day_of_week": filter.DayOfWeek})
	}
	if filter.Section != "" {
		q = q.Where(squirrel.Eq{"t.section": filter.Section})
	}
	if filter.StudentID != nil {
		q = q.Where(enrolledExpr(*filter.StudentID))
	}

	return q.OrderBy(dayRankExpr("ts.day_of_week"), "ts.start_time", "t.id").ToSql()
}

// ListActive returns active entries matching the filter, ordered by weekday then start time.
func (r *TimetableRepository) ListActive(ctx context.Context, filter models.TimetableFilter) ([]models.ScheduleRow, error) {
	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build timetable query: %w", err)
	}
	var rows []models.ScheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return rows, nil
}

// FindByID loads an entry, active or not.
func (r *TimetableRepository) FindByID(ctx context.Context, id int64) (*models.ScheduleRow, error) {
	query, args, err := scheduleSelect().Where(squirrel.Eq{"t.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build timetable query: %w", err)
	}
	var row models.ScheduleRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, err
	}
	return &row, nil
}

// LockCollisions returns and row-locks the active entries that would collide with entry in its slot and
// period: same classroom, same faculty, or same subject section. excludeID skips the entry being updated.
func (r *TimetableRepository) LockCollisions(ctx context.Context, exec sqlx.ExtContext, entry models.TimetableEntry, excludeID int64) ([]models.ScheduleRow, error) {
	query, args, err := scheduleSelect().
		Where(squirrel.Eq{"t.is_active": true}).
		Where(squirrel.Eq{"t.slot_id": entry.SlotID}).
		Where(squirrel.Eq{"t.academic_year": entry.AcademicYear}).
		Where(squirrel.Eq{"t.semester": entry.Semester}).
		Where(squirrel.NotEq{"t.id": excludeID}).
		Where(squirrel.Or{
			squirrel.Eq{"t.classroom_id": entry.ClassroomID},
			squirrel.Eq{"t.faculty_id": entry.FacultyID},
			squirrel.And{
				squirrel.Eq{"t.subject_id": entry.SubjectID},
				squirrel.Eq{"t.section": entry.Section},
			},
		}).
		OrderBy("t.id").
		Suffix("FOR UPDATE OF t").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build collision query: %w", err)
	}
	var rows []models.ScheduleRow
	if err := sqlx.SelectContext(ctx, exec, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("lock colliding entries: %w", err)
	}
	return rows, nil
}

// LockActive row-locks an active entry. It returns sql.ErrNoRows when the entry is missing or inactive.
func (r *TimetableRepository) LockActive(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	const query = `SELECT id FROM timetables WHERE id = $1 AND is_active = TRUE FOR UPDATE`
	var locked int64
	if err := sqlx.GetContext(ctx, exec, &locked, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("lock timetable entry: %w", err)
	}
	return nil
}

// Create inserts an active entry and returns its id.
func (r *TimetableRepository) Create(ctx context.Context, exec sqlx.ExtContext, entry models.TimetableEntry) (int64, error) {
	query, args, err := psql.Insert("timetables").
		Columns("subject_id", "faculty_id", "classroom_id", "slot_id", "section", "academic_year", "semester", "is_active", "notes", "created_by", "created_at", "updated_at").
		Values(entry.SubjectID, entry.FacultyID, entry.ClassroomID, entry.SlotID, entry.Section, entry.AcademicYear, entry.Semester, true, entry.Notes, entry.CreatedBy, entry.CreatedAt, entry.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build timetable insert: %w", err)
	}
	var id int64
	if err := sqlx.GetContext(ctx, exec, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert timetable entry: %w", err)
	}
	return id, nil
}

// Update replaces the assignment fields of an active entry. It returns sql.ErrNoRows when the entry is
// missing or inactive.
func (r *TimetableRepository) Update(ctx context.Context, exec sqlx.ExtContext, entry models.TimetableEntry) error {
	query, args, err := psql.Update("timetables").
		Set("subject_id", entry.SubjectID).
		Set("faculty_id", entry.FacultyID).
		Set("classroom_id", entry.ClassroomID).
		Set("slot_id", entry.SlotID).
		Set("section", entry.Section).
		Set("academic_year", entry.AcademicYear).
		Set("semester", entry.Semester).
		Set("notes", entry.Notes).
		Set("updated_at", entry.UpdatedAt).
		Where(squirrel.Eq{"id": entry.ID, "is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build timetable update: %w", err)
	}
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update timetable entry: %w", err)
	}
	return requireAffected(res)
}

// Deactivate clears the active flag. It returns sql.ErrNoRows when the entry is missing or already inactive.
func (r *TimetableRepository) Deactivate(ctx context.Context, id int64) error {
	const query = `UPDATE timetables SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate timetable entry: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
