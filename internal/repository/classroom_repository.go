package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// ClassroomRepository reads classrooms.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository creates a new classroom repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// FindActiveByID loads an active classroom.
func (r *ClassroomRepository) FindActiveByID(ctx context.Context, id int64) (*models.Classroom, error) {
	const query = `SELECT id, room_number, building, capacity, type, department, is_active FROM classrooms WHERE id = $1 AND is_active = TRUE`
	var classroom models.Classroom
	if err := r.db.GetContext(ctx, &classroom, query, id); err != nil {
		return nil, err
	}
	return &classroom, nil
}
