package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/billing"
	"github.com/kvartplata/kvartplata/internal/bot"
	"github.com/kvartplata/kvartplata/internal/config"
	"github.com/kvartplata/kvartplata/internal/logger"
	"github.com/kvartplata/kvartplata/internal/meterreading"
	"github.com/kvartplata/kvartplata/internal/migration"
	"github.com/kvartplata/kvartplata/internal/ratelimit"
	"github.com/kvartplata/kvartplata/internal/resident"
	"github.com/kvartplata/kvartplata/internal/server"
	"github.com/kvartplata/kvartplata/internal/session"
	"github.com/kvartplata/kvartplata/internal/tariff"
	"github.com/kvartplata/kvartplata/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		resident.Module,
		tariff.Module,
		meterreading.Module,
		billing.Module,
		session.Module,
		ratelimit.Module,

		server.Module,
		bot.Module,
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
