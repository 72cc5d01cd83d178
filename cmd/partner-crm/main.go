package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/clock"
	"github.com/suryashakti/partner-crm/internal/config"
	"github.com/suryashakti/partner-crm/internal/migration"
	"github.com/suryashakti/partner-crm/internal/observability"
	"github.com/suryashakti/partner-crm/internal/server"
	"github.com/suryashakti/partner-crm/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
