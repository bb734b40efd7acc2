// Package seed creates the records a fresh install needs to be usable.
package seed

import (
	"context"
	"errors"
	"strings"

	authdomain "github.com/smallbiznis/salesdesk/internal/auth/domain"
	"github.com/smallbiznis/salesdesk/internal/config"
	"go.uber.org/zap"
)

const defaultAdminName = "Administrator"

// EnsureAdmin creates the bootstrap admin once. Nothing happens when bootstrap is not configured.
func EnsureAdmin(ctx context.Context, svc authdomain.Service, cfg config.BootstrapConfig, log *zap.Logger) error {
	if !cfg.Enabled() {
		return nil
	}
	if svc == nil {
		return errors.New("seed auth service is required")
	}

	name := strings.TrimSpace(cfg.AdminName)
	if name == "" {
		name = defaultAdminName
	}

	user, err := svc.EnsureUser(ctx, authdomain.RegisterRequest{
		Name:     name,
		Login:    cfg.AdminLogin,
		Password: cfg.AdminPassword,
		Role:     authdomain.RoleAdmin,
	})
	if err != nil {
		return err
	}

	if log != nil {
		log.Info("bootstrap admin ready",
			zap.String("user_id", user.ID.String()),
			zap.String("login", user.Login),
			zap.String("role", user.Role),
		)
	}
	return nil
}
