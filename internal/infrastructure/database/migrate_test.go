package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/dialog-api/internal/infrastructure/database/entities"
)

func TestDialogsTableComparesPairInByteOrder(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	mock.MatchExpectationsInOrder(false)
	mock.ExpectExec(`CREATE TABLE "dialogs" .*"user_a" varchar\(64\) COLLATE "C" NOT NULL.*"user_b" varchar\(64\) COLLATE "C" NOT NULL.*CONSTRAINT "chk_dialogs_pair_order" CHECK \(user_a COLLATE "C" < user_b COLLATE "C"\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE UNIQUE INDEX .*"idx_dialogs_pair"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX .*"idx_dialogs_user_b"`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.Migrator().CreateTable(&entities.Dialog{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
