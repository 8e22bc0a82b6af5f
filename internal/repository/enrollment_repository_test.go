package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentRepositoryCountByEntries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables t WHERE t.id = ANY($1)")).
		WithArgs(sqlmock.AnyArg(), "enrolled").
		WillReturnRows(sqlmock.NewRows([]string{"entry_id", "enrolled"}).AddRow(1, 30))

	counts, err := repo.CountByEntries(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{1: 30, 2: 0}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCountByEntriesEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	counts, err := repo.CountByEntries(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryRoster(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN students st ON st.id = e.student_id")).
		WithArgs(int64(1), "enrolled").
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "student_number", "name", "enrollment_date"}).
			AddRow(10, "S-0010", "Alice", "2025-08-01").
			AddRow(11, "S-0011", "Bob", "2025-08-02"))

	roster, err := repo.Roster(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Alice", roster[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDistinctStudents(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT e.student_id) FROM enrollments e")).
		WithArgs(sqlmock.AnyArg(), "enrolled").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(45))

	total, err := repo.DistinctStudents(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 45, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
