package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/lexorahq/lexora/internal/account"
	"github.com/lexorahq/lexora/internal/ai"
	"github.com/lexorahq/lexora/internal/cache"
	"github.com/lexorahq/lexora/internal/chat"
	"github.com/lexorahq/lexora/internal/clock"
	"github.com/lexorahq/lexora/internal/config"
	"github.com/lexorahq/lexora/internal/content"
	"github.com/lexorahq/lexora/internal/coupon"
	"github.com/lexorahq/lexora/internal/dashboard"
	"github.com/lexorahq/lexora/internal/document"
	"github.com/lexorahq/lexora/internal/migration"
	"github.com/lexorahq/lexora/internal/observability"
	"github.com/lexorahq/lexora/internal/payment"
	"github.com/lexorahq/lexora/internal/server"
	"github.com/lexorahq/lexora/pkg/db"
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

		account.Module,
		cache.Module,
		ai.Module,
		chat.Module,
		coupon.Module,
		payment.Module,
		document.Module,
		content.Module,
		dashboard.Module,

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
