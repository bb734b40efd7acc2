package migration

import (
	"context"

	authdomain "github.com/smallbiznis/salesdesk/internal/auth/domain"
	"github.com/smallbiznis/salesdesk/internal/config"
	"github.com/smallbiznis/salesdesk/internal/seed"
	"github.com/smallbiznis/salesdesk/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, authSvc authdomain.Service, log *zap.Logger) error {
		if err := Apply(conn, cfg.DBType); err != nil {
			return err
		}
		log.Info("database schema ready", zap.String("db_type", cfg.DBType))

		return seed.EnsureAdmin(context.Background(), authSvc, cfg.Bootstrap, log)
	}),
)

// Apply runs SQL migrations on postgres and AutoMigrate elsewhere.
func Apply(conn *gorm.DB, dbType string) error {
	if dbType == db.TypePostgres || dbType == "" {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}
	return AutoMigrate(conn)
}
