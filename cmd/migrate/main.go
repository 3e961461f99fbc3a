package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/config"
	"github.com/pageza/recipebook/backend/internal/database"
	"github.com/pageza/recipebook/backend/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file")
	dir := flag.String("dir", "migrations", "Directory holding the migration files")
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	steps := flag.Int("steps", 0, "Apply this many migrations instead of all of them")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat, Development: cfg.IsDevelopment()})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	if cfg.Database.Driver != config.DriverPostgres {
		zl.Fatal("Migrations only apply to the postgres driver", zap.String("driver", cfg.Database.Driver))
	}

	n := *steps
	if *rollback {
		n = -1
	}
	if err := database.RunMigrations(cfg.Database.URI, *dir, n, zl); err != nil {
		zl.Fatal("Migration failed", zap.Error(err))
	}
}
