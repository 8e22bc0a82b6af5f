package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-api/internal/models"
)

// EnrollmentRepository links timetable entries to enrolled students. Enrollments are matched on
// subject, section, semester and academic year; counts use correlated subqueries so joins never
// multiply rows.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

type entryCount struct {
	EntryID  int64 `db:"entry_id"`
	Enrolled int   `db:"enrolled"`
}

// CountByEntries returns the enrolled headcount per entry id. Entries without students map to 0.
func (r *EnrollmentRepository) CountByEntries(ctx context.Context, entryIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(entryIDs))
	if len(entryIDs) == 0 {
		return counts, nil
	}
	const query = `SELECT t.id AS entry_id,
	(SELECT COUNT(DISTINCT e.student_id) FROM enrollments e
		WHERE e.subject_id = t.subject_id AND e.section = t.section AND e.semester = t.semester
		AND e.academic_year = t.academic_year AND e.status = $2) AS enrolled
FROM timetables t WHERE t.id = ANY($1)`
	var rows []entryCount
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(entryIDs), models.EnrollmentStatusEnrolled); err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}
	for _, id := range entryIDs {
		counts[id] = 0
	}
	for _, row := range rows {
		counts[row.EntryID] = row.Enrolled
	}
	return counts, nil
}

// Roster lists the students enrolled in an entry ordered by name.
func (r *EnrollmentRepository) Roster(ctx context.Context, entryID int64) ([]models.RosterEntry, error) {
	const query = `SELECT st.id AS student_id, st.student_number, st.name, TO_CHAR(e.enrollment_date, 'YYYY-MM-DD') AS enrollment_date
FROM timetables t
JOIN enrollments e ON e.subject_id = t.subject_id AND e.section = t.section AND e.semester = t.semester
	AND e.academic_year = t.academic_year AND e.status = $2
JOIN students st ON st.id = e.student_id
WHERE t.id = $1
ORDER BY st.name ASC, st.id ASC`
	var roster []models.RosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, entryID, models.EnrollmentStatusEnrolled); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return roster, nil
}

// DistinctStudents counts students enrolled in any of the entries, each once.
func (r *EnrollmentRepository) DistinctStudents(ctx context.Context, entryIDs []int64) (int, error) {
	if len(entryIDs) == 0 {
		return 0, nil
	}
	const query = `SELECT COUNT(DISTINCT e.student_id) FROM enrollments e
WHERE e.status = $2 AND EXISTS (SELECT 1 FROM timetables t WHERE t.id = ANY($1)
	AND t.subject_id = e.subject_id AND t.section = e.section AND t.semester = e.semester AND t.academic_year = e.academic_year)`
	var total int
	if err := r.db.GetContext(ctx, &total, query, pq.Array(entryIDs), models.EnrollmentStatusEnrolled); err != nil {
		return 0, fmt.Errorf("count distinct students: %w", err)
	}
	return total, nil
}
