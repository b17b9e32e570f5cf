package migration

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/food-review/internal/config"
)

// Module brings the users schema up to date before the server accepts
// requests. Nothing runs unless database.auto_migrate is set.
func Module() fx.Option {
	return fx.Options(
		fx.Provide(func(config *config.AppConfig) (*Migrator, error) {
			return NewMigrator(&config.Database)
		}),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(lifecycle fx.Lifecycle, config *config.AppConfig, migrator *Migrator, log *zap.Logger) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !config.Database.AutoMigrate {
				log.Info("auto migration disabled")
				return nil
			}
			return autoMigrate(ctx, migrator, log)
		},
		OnStop: func(context.Context) error {
			return migrator.Close()
		},
	})
}

func autoMigrate(ctx context.Context, migrator *Migrator, log *zap.Logger) error {
	current, latest, behind, err := migrator.Pending(ctx)
	if err != nil {
		return err
	}

	if !behind {
		log.Info("users schema up to date", zap.Int64("version", current))
		return nil
	}

	log.Info("upgrading users schema",
		zap.Int64("from_version", current),
		zap.Int64("to_version", latest))

	return migrator.Up(ctx)
}
