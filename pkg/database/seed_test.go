package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: NewGormLogger(zap.NewNop(), time.Second),
	})
	require.NoError(t, err)
	return db, mock
}

func insertInto(table string) string {
	return "^" + regexp.QuoteMeta(`INSERT INTO "clinical"."`+table+`"`)
}

func TestSeed_InsertsEachModelIntoItsOwnTable(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(insertInto("doctors")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(insertInto("medicaments")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectQuery(insertInto("patients")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	for _, table := range []string{"clinical.doctors", "clinical.medicaments", "clinical.patients"} {
		mock.ExpectExec(regexp.QuoteMeta("SELECT setval(pg_get_serial_sequence('" + table + "', 'id')")).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, Seed(context.Background(), db, zap.NewNop()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_RollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(insertInto("doctors")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(insertInto("medicaments")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := Seed(context.Background(), db, zap.NewNop())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorContains(t, err, "seeding medicaments")
	require.NoError(t, mock.ExpectationsWereMet())
}
