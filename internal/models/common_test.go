// internal/models/common_test.go
package models

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

// The schema must migrate on SQLite as well as Postgres; the test databases
// depend on it.
func TestAutoMigrateAllModels(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.AutoMigrate(
		&User{},
		&Artifact{},
		&LicenseAssignment{},
		&BotControl{},
		&TerminalAccount{},
		&Transaction{},
		&AuditLog{},
	))
}

func TestBeforeCreateAssignsID(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&User{}))

	user := &User{
		Name:   "Test",
		Email:  "id-hook@example.com",
		Role:   UserRoleTrader,
		Status: UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Str0ngPass"))
	require.NoError(t, db.Create(user).Error)

	assert.NotEqual(t, uuid.Nil, user.ID)

	var stored User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, user.ID, stored.ID)
}

func TestBeforeCreateKeepsPresetID(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&User{}))

	preset := uuid.New()
	user := &User{
		BaseModel: BaseModel{ID: preset},
		Name:      "Preset",
		Email:     "preset-id@example.com",
		Role:      UserRoleTrader,
		Status:    UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Str0ngPass"))
	require.NoError(t, db.Create(user).Error)

	assert.Equal(t, preset, user.ID)
}
