package main

import (
	"flag"
	"log"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/johnquangdev/meeting-insights/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

func main() {
	down := flag.Bool("down", false, "roll back instead of applying")
	steps := flag.Int("steps", 0, "maximum number of migrations to run (0 = all)")
	status := flag.Bool("status", false, "list pending migrations and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if cfg.Database.Driver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to migrate sqlite schema: %v", err)
		}
		log.Println("✅ SQLite schema is up to date")
		return
	}

	if *status {
		pending, err := database.PendingMigrations(db)
		if err != nil {
			log.Fatalf("Failed to plan migrations: %v", err)
		}
		for _, m := range pending {
			log.Printf("⏳ pending: %s", m.Id)
		}
		log.Printf("%d migration(s) pending", len(pending))
		return
	}

	dir := migrate.Up
	if *down {
		dir = migrate.Down
	}

	n, err := database.Migrate(db, dir, *steps)
	if err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	log.Printf("✅ Successfully applied %d migration(s)!\n", n)
}
