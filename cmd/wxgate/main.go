package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/wxgate/internal/clock"
	"github.com/smallbiznis/wxgate/internal/config"
	"github.com/smallbiznis/wxgate/internal/gateway"
	"github.com/smallbiznis/wxgate/internal/migration"
	"github.com/smallbiznis/wxgate/internal/notify"
	"github.com/smallbiznis/wxgate/internal/observability"
	"github.com/smallbiznis/wxgate/internal/server"
	"github.com/smallbiznis/wxgate/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		notify.Module,
		gateway.Module,

		fx.Invoke(func(conn *gorm.DB) error {
			return migration.RunMigrations(conn)
		}),

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server) {
			s.RegisterRoutes()
		}),
		fx.Invoke(server.RunHTTP),
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
