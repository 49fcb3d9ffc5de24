package database

import (
	"testing"

	"fintrack/config"
	"fintrack/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestEnsureTransferCategory_Existing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .* FROM `categories` WHERE user_id IS NULL AND is_system = .* AND name = .*").
		WithArgs(true, models.TransferCategoryName).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "is_system", "is_archived"}).
			AddRow(7, nil, models.TransferCategoryName, true, false))

	cat, err := EnsureTransferCategory(db)
	require.NoError(t, err)
	assert.Equal(t, uint(7), cat.ID)
	assert.True(t, cat.IsGlobal())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureTransferCategory_Creates(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `categories`").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	cat, err := EnsureTransferCategory(db)
	require.NoError(t, err)
	assert.Equal(t, uint(12), cat.ID)
	assert.Equal(t, models.TransferCategoryName, cat.Name)
	assert.True(t, cat.IsSystem)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDSN_UsesBusinessTimezone(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Timezone: "America/Sao_Paulo"},
		Database: config.DatabaseConfig{
			Host: "127.0.0.1", Port: "3306", Username: "root", Password: "secret",
			DBName: "fintrack", Charset: "utf8mb4",
		},
	}
	assert.Equal(t,
		"root:secret@tcp(127.0.0.1:3306)/fintrack?charset=utf8mb4&parseTime=True&loc=America%2FSao_Paulo",
		DSN(cfg))

	cfg.Server.Timezone = ""
	assert.Contains(t, DSN(cfg), "&loc=Local")
}
