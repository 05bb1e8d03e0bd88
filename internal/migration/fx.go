package migration

import (
	billingdomain "github.com/kvartplata/kvartplata/internal/billing/domain"
	"github.com/kvartplata/kvartplata/internal/config"
	readingdomain "github.com/kvartplata/kvartplata/internal/meterreading/domain"
	residentdomain "github.com/kvartplata/kvartplata/internal/resident/domain"
	"github.com/kvartplata/kvartplata/internal/seed"
	tariffdomain "github.com/kvartplata/kvartplata/internal/tariff/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Local sqlite runs have no migration driver; the models are
			// the schema.
			if err := conn.AutoMigrate(
				&residentdomain.Apartment{},
				&residentdomain.Resident{},
				&residentdomain.Residency{},
				&tariffdomain.Tariff{},
				&readingdomain.MeterReading{},
				&billingdomain.Charge{},
				&billingdomain.Payment{},
			); err != nil {
				return err
			}
		}

		if cfg.Seed.ApartmentName != "" {
			return seed.EnsureApartment(conn, cfg.Seed)
		}
		return nil
	}),
)
