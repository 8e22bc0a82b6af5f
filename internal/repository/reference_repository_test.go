package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectRepositoryFindActiveByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE id = $1 AND is_active = TRUE")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "credits", "duration_hours", "type", "department", "year_level", "semester", "prerequisites", "is_active"}).
			AddRow(5, "CS201", "Data Structures", 4, 4, "theory", "CS", 2, "S1", "CS101, MA101", true))

	subject, err := repo.FindActiveByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"CS101", "MA101"}, subject.PrerequisiteCodes())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByUserID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE user_id = $1")).
		WithArgs(int64(300)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "student_number", "name", "department"}))

	_, err := repo.FindByUserID(context.Background(), 300)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryFindActiveByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM classrooms WHERE id = $1 AND is_active = TRUE")).
		WithArgs(int64(101)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_number", "building", "capacity", "type", "department", "is_active"}).
			AddRow(101, "101", "Main", 40, "lecture", "CS", true))

	classroom, err := repo.FindActiveByID(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, 40, classroom.Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
