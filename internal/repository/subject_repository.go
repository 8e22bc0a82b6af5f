package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// SubjectRepository reads subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindActiveByID loads an active subject.
func (r *SubjectRepository) FindActiveByID(ctx context.Context, id int64) (*models.Subject, error) {
	const query = `SELECT id, code, name, credits, duration_hours, type, department, year_level, semester, prerequisites, is_active FROM subjects WHERE id = $1 AND is_active = TRUE`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}
