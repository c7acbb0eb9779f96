package db

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/smallbiznis/wxgate/internal/config"
)

var Module = fx.Module("db",
	fx.Provide(Open),
)

// Open connects to the configured database. Postgres is the production
// driver; sqlite exists for local runs and tests.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var (
		conn *gorm.DB
		err  error
	)
	switch cfg.DB.Driver {
	case "sqlite":
		dsn := cfg.DB.DSN
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		conn, err = gorm.Open(sqlite.Open(dsn), gormCfg)
	case "postgres":
		conn, err = gorm.Open(postgres.Open(cfg.DB.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DB.Driver, err)
	}

	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	return conn, nil
}
