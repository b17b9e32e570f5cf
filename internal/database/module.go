package database

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/food-review/internal/config"
)

func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			func(config *config.AppConfig, log *zap.Logger) (*Manager, error) {
				return NewManager(&config.Database, log)
			},
			(*Manager).DB,
		),
		fx.Invoke(registerHooks),
	)
}

// registerHooks fails startup when the database is unreachable instead of
// letting the first auth request find out.
func registerHooks(lifecycle fx.Lifecycle, manager *Manager, log *zap.Logger) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := manager.Ping(ctx); err != nil {
				return fmt.Errorf("database unreachable: %w", err)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			log.Info("closing database connections")
			return manager.Close()
		},
	})
}
