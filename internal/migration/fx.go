package migration

import (
	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/config"
	"github.com/suryashakti/partner-crm/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoVendors(conn, node)
		}
		return nil
	}),
)
