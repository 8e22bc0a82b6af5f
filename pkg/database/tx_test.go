package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/pkg/config"
)

func newTxMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestDoSerializableCommits(t *testing.T) {
	db, mock, cleanup := newTxMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE timetables").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewTxManager(db).DoSerializable(context.Background(), func(tx *sqlx.Tx) error {
		_, err := tx.Exec("UPDATE timetables SET is_active = false")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializableRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newTxMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := NewTxManager(db).DoSerializable(context.Background(), func(tx *sqlx.Tx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsWriteConflict(t *testing.T) {
	assert.True(t, IsWriteConflict(fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "uq_timetables_classroom_slot"})))
	assert.True(t, IsWriteConflict(&pq.Error{Code: "40001"}))
	assert.False(t, IsWriteConflict(&pq.Error{Code: "42P01"}))
	assert.False(t, IsWriteConflict(errors.New("plain")))
	assert.Equal(t, "uq_timetables_classroom_slot", ConstraintName(&pq.Error{Code: "23505", Constraint: "uq_timetables_classroom_slot"}))
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "timetable", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=timetable sslmode=disable", dsn)
}
