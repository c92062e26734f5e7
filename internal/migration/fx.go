package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Kiranppatil21/glass/internal/config"
	customerdomain "github.com/Kiranppatil21/glass/internal/customer/domain"
	ledgerdomain "github.com/Kiranppatil21/glass/internal/ledger/domain"
	orderdomain "github.com/Kiranppatil21/glass/internal/order/domain"
	settingsdomain "github.com/Kiranppatil21/glass/internal/settings/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Versioned SQL targets Postgres; other dialects are for local
			// development and get the schema from the models.
			return conn.AutoMigrate(
				&customerdomain.CustomerProfile{},
				&settingsdomain.Setting{},
				&orderdomain.Order{},
				&orderdomain.CashPayment{},
				&orderdomain.OrderCounter{},
				&ledgerdomain.Entry{},
				&ledgerdomain.EntryLine{},
				&ledgerdomain.OutboxRow{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
