package auth

import (
	"github.com/smallbiznis/salesdesk/internal/auth/repository"
	"github.com/smallbiznis/salesdesk/internal/auth/service"
	"github.com/smallbiznis/salesdesk/internal/auth/token"
	"github.com/smallbiznis/salesdesk/internal/clock"
	"github.com/smallbiznis/salesdesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const devJWTSecret = "salesdesk-dev-secret"

var Module = fx.Module("auth.service",
	fx.Provide(provideTokenManager),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

func provideTokenManager(cfg config.Config, clk clock.Clock, log *zap.Logger) (*token.Manager, error) {
	secret := cfg.AuthJWTSecret
	if secret == "" && !cfg.IsProduction() {
		log.Warn("AUTH_JWT_SECRET not set, using development secret")
		secret = devJWTSecret
	}
	return token.NewManager(secret, cfg.AuthTokenTTL, clk)
}
