// internal/services/service_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tradeforge/tradeforge-backend/internal/models"
)

// setupTestDB opens an isolated in-memory database per test. A single
// connection keeps SQLite from returning spurious lock errors under the
// concurrency tests; the atomic updates under test are SQL-level, so the
// serialized pool does not weaken them.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Artifact{},
		&models.LicenseAssignment{},
		&models.BotControl{},
		&models.TerminalAccount{},
		&models.Transaction{},
	))

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Name:   "Test Trader",
		Email:  fmt.Sprintf("%s@example.com", uuid.NewString()),
		Role:   role,
		Status: models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("TestPass123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestArtifact(t *testing.T, db *gorm.DB, ownerID uuid.UUID, licenseKey string) *models.Artifact {
	t.Helper()

	artifact := &models.Artifact{
		OwnerID:     ownerID,
		Type:        models.ArtifactTypeScript,
		Name:        "Breakout scalper",
		Description: "Scalping strategy for EURUSD M5 breakouts",
		Code:        "// generated",
		LicenseKey:  licenseKey,
	}
	require.NoError(t, db.Create(artifact).Error)
	return artifact
}

func createTestAssignment(t *testing.T, db *gorm.DB, artifact *models.Artifact, expiresAt *time.Time, amount *float64) *models.LicenseAssignment {
	t.Helper()

	assignment := &models.LicenseAssignment{
		ArtifactID:     artifact.ID,
		LicenseKey:     artifact.LicenseKey,
		CustomerName:   "Customer",
		CustomerEmail:  fmt.Sprintf("%s@customer.example.com", uuid.NewString()),
		ExpiresAt:      expiresAt,
		PurchaseAmount: amount,
	}
	require.NoError(t, db.Create(assignment).Error)
	return assignment
}

func timePtr(t time.Time) *time.Time { return &t }

func floatPtr(f float64) *float64 { return &f }
