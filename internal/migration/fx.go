package migration

import (
	"strings"

	accountdomain "github.com/lexorahq/lexora/internal/account/domain"
	chatdomain "github.com/lexorahq/lexora/internal/chat/domain"
	contentdomain "github.com/lexorahq/lexora/internal/content/domain"
	coupondomain "github.com/lexorahq/lexora/internal/coupon/domain"
	documentdomain "github.com/lexorahq/lexora/internal/document/domain"
	"github.com/lexorahq/lexora/internal/config"
	paymentdomain "github.com/lexorahq/lexora/internal/payment/domain"
	"github.com/lexorahq/lexora/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if strings.EqualFold(cfg.DBType, "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql deployments get the schema from the
			// models directly.
			if err := conn.AutoMigrate(
				&accountdomain.Account{},
				&chatdomain.ChatRecord{},
				&coupondomain.Coupon{},
				&paymentdomain.EventRecord{},
				&documentdomain.Document{},
				&contentdomain.Post{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData && cfg.IsDevelopment() {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)
