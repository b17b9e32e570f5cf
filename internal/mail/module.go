package mail

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/food-review/internal/config"
)

func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(config *config.AppConfig, log *zap.Logger) (Notifier, error) {
					return NewNotifier(&config.Mail, log)
				},
			),
		),
	)
}
