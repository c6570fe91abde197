package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/marquee/marquee-go/internal/config"
	"github.com/marquee/marquee-go/internal/repository"
)

func main() {
	action := flag.String("action", "up", "migration action: up, down or version")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}
	cfg := config.Load()

	switch *action {
	case "up":
		if err := repository.RunMigrations(cfg.Database.DSN); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
	case "down":
		if err := repository.RollbackMigrations(cfg.Database.DSN); err != nil {
			slog.Error("rollback failed", "error", err)
			os.Exit(1)
		}
	case "version":
		version, dirty, err := repository.MigrationVersion(cfg.Database.DSN)
		if err != nil {
			slog.Error("version lookup failed", "error", err)
			os.Exit(1)
		}
		slog.Info("schema version", "version", version, "dirty", dirty)
		return
	default:
		slog.Error("unknown action", "action", *action)
		os.Exit(2)
	}

	slog.Info("migrations complete", "action", *action)
}
