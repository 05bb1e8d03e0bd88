package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/tariff/domain"
	"github.com/kvartplata/kvartplata/internal/utility"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, tariff *domain.Tariff) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tariffs (id, apartment_id, utility_type, rate, valid_from)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (apartment_id, utility_type, valid_from)
		 DO UPDATE SET rate = excluded.rate`,
		tariff.ID,
		tariff.ApartmentID,
		tariff.UtilityType,
		tariff.Rate,
		tariff.ValidFrom,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID) ([]domain.Tariff, error) {
	var tariffs []domain.Tariff
	err := db.WithContext(ctx).
		Model(&domain.Tariff{}).
		Where("apartment_id = ?", apartmentID).
		Order("utility_type asc, valid_from desc").
		Find(&tariffs).Error
	if err != nil {
		return nil, err
	}
	return tariffs, nil
}

func (r *repo) FindEffective(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID, utilityType utility.Type, asOf time.Time) (*domain.Tariff, error) {
	var tariff domain.Tariff
	err := db.WithContext(ctx).Raw(
		`SELECT id, apartment_id, utility_type, rate, valid_from
		 FROM tariffs
		 WHERE apartment_id = ? AND utility_type = ? AND valid_from <= ?
		 ORDER BY valid_from DESC
		 LIMIT 1`,
		apartmentID,
		utilityType,
		asOf,
	).Scan(&tariff).Error
	if err != nil {
		return nil, err
	}
	if tariff.ID == 0 {
		return nil, nil
	}
	return &tariff, nil
}
