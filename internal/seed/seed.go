// Package seed bootstraps the single apartment and its admin on startup,
// so a fresh deployment is usable without manual SQL.
package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/config"
	residentdomain "github.com/kvartplata/kvartplata/internal/resident/domain"
	"gorm.io/gorm"
)

// EnsureApartment creates the configured apartment, its admin resident and
// the admin residency when they do not exist. Safe to run on every boot.
func EnsureApartment(db *gorm.DB, cfg config.SeedConfig) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	name := strings.TrimSpace(cfg.ApartmentName)
	if name == "" {
		return errors.New("seed apartment name is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		apartment, err := ensureApartmentTx(ctx, tx, node, name)
		if err != nil {
			return err
		}
		if cfg.AdminTelegramID == 0 {
			return nil
		}

		admin, err := ensureResidentTx(ctx, tx, node, cfg)
		if err != nil {
			return err
		}
		return ensureAdminResidencyTx(ctx, tx, node, admin.ID, apartment.ID)
	})
}

func ensureApartmentTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, name string) (residentdomain.Apartment, error) {
	var apartment residentdomain.Apartment
	err := tx.WithContext(ctx).Where("name = ?", name).First(&apartment).Error
	if err == nil {
		return apartment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return residentdomain.Apartment{}, err
	}

	apartment = residentdomain.Apartment{
		ID:   node.Generate(),
		Name: name,
	}
	if err := tx.WithContext(ctx).Create(&apartment).Error; err != nil {
		return residentdomain.Apartment{}, err
	}
	return apartment, nil
}

func ensureResidentTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, cfg config.SeedConfig) (residentdomain.Resident, error) {
	var resident residentdomain.Resident
	err := tx.WithContext(ctx).Where("telegram_id = ?", cfg.AdminTelegramID).First(&resident).Error
	if err == nil {
		return resident, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return residentdomain.Resident{}, err
	}

	fullName := strings.TrimSpace(cfg.AdminFullName)
	if fullName == "" {
		fullName = "Администратор"
	}
	resident = residentdomain.Resident{
		ID:         node.Generate(),
		TelegramID: cfg.AdminTelegramID,
		FullName:   fullName,
	}
	if err := tx.WithContext(ctx).Create(&resident).Error; err != nil {
		return residentdomain.Resident{}, err
	}
	return resident, nil
}

func ensureAdminResidencyTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, residentID, apartmentID snowflake.ID) error {
	var residency residentdomain.Residency
	err := tx.WithContext(ctx).
		Where("resident_id = ? AND apartment_id = ?", residentID, apartmentID).
		First(&residency).Error
	if err == nil {
		if residency.IsAdmin {
			return nil
		}
		return tx.WithContext(ctx).
			Model(&residentdomain.Residency{}).
			Where("id = ?", residency.ID).
			Update("is_admin", true).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	residency = residentdomain.Residency{
		ID:          node.Generate(),
		ResidentID:  residentID,
		ApartmentID: apartmentID,
		IsAdmin:     true,
	}
	return tx.WithContext(ctx).Create(&residency).Error
}
