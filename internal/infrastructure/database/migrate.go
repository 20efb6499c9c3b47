package database

import (
	"embed"
	"fmt"
	"log"

	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func migrationSource() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFS,
		Root:       "migrations",
	}
}

// AutoMigrate brings the schema up to date. Postgres applies the embedded
// sql-migrate files; sqlite is migrated from the GORM models.
func AutoMigrate(db *gorm.DB) error {
	if db.Dialector.Name() == "sqlite" {
		log.Println("🔄 Migrating sqlite schema from models ...")
		return db.AutoMigrate(&entities.Meeting{}, &entities.Action{})
	}

	log.Println("🔄 Applying embedded migrations using sql-migrate...")
	n, err := Migrate(db, migrate.Up, 0)
	if err != nil {
		return err
	}
	log.Printf("✅ Applied %d migrations!\n", n)
	return nil
}

// Migrate runs the embedded postgres migrations in the given direction.
// max limits the number of steps, 0 means all.
func Migrate(db *gorm.DB, dir migrate.MigrationDirection, max int) (int, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get db connection during migrate, error: %v", err)
	}

	n, err := migrate.ExecMax(sqlDB, "postgres", migrationSource(), dir, max)
	if err != nil {
		return n, fmt.Errorf("failed to apply migration, error: %v", err)
	}
	return n, nil
}

// PendingMigrations lists migrations not yet applied
func PendingMigrations(db *gorm.DB) ([]*migrate.PlannedMigration, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	planned, _, err := migrate.PlanMigration(sqlDB, "postgres", migrationSource(), migrate.Up, 0)
	return planned, err
}
