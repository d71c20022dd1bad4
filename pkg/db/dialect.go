package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dialect picks the GORM driver. DATABASE_URL wins over discrete settings.
func Dialect(cfg Config) (gorm.Dialector, error) {
	dbType := strings.ToLower(strings.TrimSpace(cfg.Type))
	url := strings.TrimSpace(cfg.URL)
	if url != "" && (strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")) {
		dbType = "postgres"
	}

	switch dbType {
	case "mysql":
		if url != "" {
			return mysql.Open(url), nil
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Name,
		)), nil
	case "postgres", "postgresql":
		if url != "" {
			return postgres.Open(url), nil
		}
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.Host,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.Port,
			cfg.SSLMode,
		)), nil
	case "sqlite":
		if url != "" {
			return sqlite.Open(url), nil
		}
		return sqlite.Open("eventory.db"), nil
	default:
		return nil, fmt.Errorf("unsupported %s type", cfg.Type)
	}
}
