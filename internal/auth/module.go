package auth

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/food-review/internal/config"
	"github.com/elskow/food-review/internal/mail"
)

// NewModule wires the credential store, token service and orchestrator
// behind the HTTP handler and guards.
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			NewRepository,
			NewMetrics,
			NewHandler,
			NewAuthMiddleware,
			// Token secrets are checked here, so a missing secret aborts startup.
			func(config *config.AppConfig) (*TokenService, error) {
				return NewTokenService(&config.Auth)
			},
			func(
				config *config.AppConfig,
				log *zap.Logger,
				repo Repository,
				tokens *TokenService,
				notifier mail.Notifier,
				metrics *Metrics,
			) *Service {
				return NewService(&config.Auth, log.Named("auth"), Dependencies{
					Repository: repo,
					Tokens:     tokens,
					Notifier:   notifier,
					Metrics:    metrics,
				})
			},
		),
	)
}
