package migration

import (
	"github.com/smallbiznis/eventory/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module applies pending migrations on startup when DATABASE_AUTO_MIGRATE
// is set. The migrate command is the usual path.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !cfg.DBAutoMigrate {
			return nil
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := Up(sqlDB); err != nil {
			return err
		}
		log.Named("migration").Info("migrations applied")
		return nil
	}),
)
