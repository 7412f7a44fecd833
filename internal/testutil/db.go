// Package testutil provides shared helpers for database-backed tests.
// Tests run against an in-memory sqlite database so no external services
// are required.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/geocon-eng/pipeline-api/internal/domain"
)

// SetupTestDB opens a fresh in-memory sqlite database and migrates the
// full schema. Each call returns an isolated database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory test database")

	// sqlite only allows one writer; keep everything on a single connection
	// so concurrent-looking test code does not hit "database is locked"
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&domain.Proposal{},
		&domain.Project{},
		&domain.LegalStatusEvent{},
		&domain.ExecutedContract{},
		&domain.InsuranceRequest{},
		&domain.SubRequest{},
		&domain.PWDirQuestion{},
		&domain.NumberSequence{},
		&domain.DeletionLog{},
		&domain.ActivityLog{},
		&domain.EmailLog{},
		&domain.Notification{},
		&domain.MonthlyAnalytics{},
		&domain.OfficeMonthlyAnalytics{},
		&domain.PMAnalytics{},
		&domain.User{},
		&domain.File{},
	)
	require.NoError(t, err, "failed to migrate test schema")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
