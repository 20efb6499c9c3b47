package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// NewSQLiteDB opens a single-file database for local and single-node runs
func NewSQLiteDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", cfg.Database.SQLitePath)
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}
	// sqlite serializes writers, one connection avoids SQLITE_BUSY under load
	sqlDB.SetMaxOpenConns(1)

	log.Printf("✅ SQLite database opened at %s", cfg.Database.SQLitePath)
	return db, nil
}
