package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const facultyColumns = `f.id, f.user_id, f.employee_id, f.name, f.department, f.designation, f.specialization, f.experience_years`

// FacultyRepository reads the faculty directory.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository creates a new faculty repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// FindByUserID resolves the faculty profile of a user account.
func (r *FacultyRepository) FindByUserID(ctx context.Context, userID int64) (*models.Faculty, error) {
	const query = `SELECT ` + facultyColumns + ` FROM faculty f WHERE f.user_id = $1`
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, userID); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// FindActiveByID loads a faculty member whose user account is active.
func (r *FacultyRepository) FindActiveByID(ctx context.Context, id int64) (*models.Faculty, error) {
	const query = `SELECT ` + facultyColumns + ` FROM faculty f JOIN users u ON u.id = f.user_id WHERE f.id = $1 AND u.is_active = TRUE`
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// ListCandidates returns active faculty not already holding an active assignment to the subject, with
// their current active assignment count.
func (r *FacultyRepository) ListCandidates(ctx context.Context, subjectID int64) ([]models.FacultyCandidate, error) {
	const query = `SELECT ` + facultyColumns + `,
	(SELECT COUNT(*) FROM timetables t WHERE t.faculty_id = f.id AND t.is_active = TRUE) AS active_assignments
FROM faculty f
JOIN users u ON u.id = f.user_id
WHERE u.is_active = TRUE
	AND NOT EXISTS (SELECT 1 FROM timetables t WHERE t.faculty_id = f.id AND t.subject_id = $1 AND t.is_active = TRUE)
ORDER BY f.name ASC, f.id ASC`
	var candidates []models.FacultyCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, subjectID); err != nil {
		return nil, fmt.Errorf("list faculty candidates: %w", err)
	}
	return candidates, nil
}
