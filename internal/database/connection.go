// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tradeforge/tradeforge-backend/internal/config"
	"github.com/tradeforge/tradeforge-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Artifact{},
		&models.LicenseAssignment{},
		&models.BotControl{},
		&models.TerminalAccount{},
		&models.Transaction{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Install column defaults
	if err := createColumnDefaults(db); err != nil {
		return fmt.Errorf("failed to create column defaults: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// createColumnDefaults gives every id column a server-side UUID default so
// rows inserted outside the application (seeds, manual fixes) get keys too.
// The application itself assigns IDs in BeforeCreate.
func createColumnDefaults(db *gorm.DB) error {
	tables := []string{
		"users",
		"artifacts",
		"license_assignments",
		"bot_controls",
		"terminal_accounts",
		"transactions",
		"audit_logs",
	}

	for _, table := range tables {
		stmt := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN id SET DEFAULT gen_random_uuid()", table)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to set id default on %s: %w", table, err)
		}
	}

	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_role_status ON users(role, status)",

		// Artifact indexes
		"CREATE INDEX IF NOT EXISTS idx_artifacts_owner ON artifacts(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_artifacts_license_key ON artifacts(license_key)",
		"CREATE INDEX IF NOT EXISTS idx_artifacts_created_at ON artifacts(created_at DESC)",

		// License assignment indexes
		"CREATE INDEX IF NOT EXISTS idx_license_assignments_artifact ON license_assignments(artifact_id)",
		"CREATE INDEX IF NOT EXISTS idx_license_assignments_key ON license_assignments(license_key)",
		"CREATE INDEX IF NOT EXISTS idx_license_assignments_email ON license_assignments(customer_email)",
		"CREATE INDEX IF NOT EXISTS idx_license_assignments_expires ON license_assignments(expires_at)",

		// Bot control indexes
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_bot_controls_artifact ON bot_controls(artifact_id)",

		// Terminal account indexes
		"CREATE INDEX IF NOT EXISTS idx_terminal_accounts_user ON terminal_accounts(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_terminal_accounts_user_number ON terminal_accounts(user_id, account_number)",

		// Transaction indexes
		"CREATE INDEX IF NOT EXISTS idx_transactions_seller ON transactions(seller_id)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_artifact ON transactions(artifact_id)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at DESC)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
