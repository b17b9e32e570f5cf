package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/elskow/food-review/internal/migration"
	"github.com/elskow/food-review/internal/server"
)

func main() {
	command := flag.String("command", "up", "migration command (up/down/status/version/reset)")
	flag.Parse()

	_ = godotenv.Load()

	if os.Getenv("APP_ENV") == "" {
		os.Setenv("APP_ENV", server.EnvDevelopment)
	}

	log, err := server.NewLogger(os.Getenv("APP_ENV"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := server.LoadMigrationConfig()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	migrator, err := migration.NewMigrator(&cfg.Database)
	if err != nil {
		log.Fatal("failed to create migrator", zap.Error(err))
	}
	defer migrator.Close()

	ctx := context.Background()

	switch *command {
	case "up":
		if err := migrator.Up(ctx); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("users schema migrated")

	case "down":
		if err := migrator.Down(ctx); err != nil {
			log.Fatal("rollback failed", zap.Error(err))
		}
		log.Info("rolled back one migration")

	case "status":
		if err := migrator.Status(ctx); err != nil {
			log.Fatal("status failed", zap.Error(err))
		}

	case "version":
		current, latest, behind, err := migrator.Pending(ctx)
		if err != nil {
			log.Fatal("version lookup failed", zap.Error(err))
		}
		log.Info("schema version",
			zap.Int64("current", current),
			zap.Int64("latest", latest),
			zap.Bool("pending", behind))

	case "reset":
		if err := migrator.Reset(ctx); err != nil {
			log.Fatal("reset failed", zap.Error(err))
		}
		log.Info("users schema reset")

	default:
		log.Fatal("unknown command", zap.String("command", *command))
	}
}
