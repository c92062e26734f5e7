package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/Kiranppatil21/glass/internal/clock"
	"github.com/Kiranppatil21/glass/internal/config"
	"github.com/Kiranppatil21/glass/internal/logger"
	"github.com/Kiranppatil21/glass/internal/migration"
	"github.com/Kiranppatil21/glass/internal/server"
	"github.com/Kiranppatil21/glass/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
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
