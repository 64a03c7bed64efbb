package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Rrens/chatbot-pro/internal/config"
	"github.com/Rrens/chatbot-pro/internal/repository/postgres"
	"github.com/joho/godotenv"
)

func main() {
	steps := flag.Int("steps", 1, "number of migrations to roll back with 'down'")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: migrate [-steps N] up|down|version\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fail("failed to load config: %v", err)
	}
	if cfg.Database.Driver == "sqlite" {
		fail("sqlite databases are migrated automatically on startup")
	}

	dsn := cfg.Database.DSN()
	fmt.Printf("Using database at %s:%d\n", cfg.Database.Host, cfg.Database.Port)

	switch flag.Arg(0) {
	case "up", "":
		if err := postgres.RunMigrations(dsn); err != nil {
			fail("%v", err)
		}
	case "down":
		if err := postgres.RollbackMigrations(dsn, *steps); err != nil {
			fail("%v", err)
		}
	case "version":
		version, dirty, err := postgres.MigrationVersion(dsn)
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return
	default:
		flag.Usage()
		os.Exit(2)
	}

	fmt.Println("Migrations completed successfully!")
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
