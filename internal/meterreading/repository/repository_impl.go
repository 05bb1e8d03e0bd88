package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/meterreading/domain"
	"github.com/kvartplata/kvartplata/internal/utility"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reading *domain.MeterReading) error {
	return db.WithContext(ctx).Create(reading).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID, utilityType utility.Type) ([]domain.MeterReading, error) {
	var readings []domain.MeterReading
	stmt := db.WithContext(ctx).
		Model(&domain.MeterReading{}).
		Where("apartment_id = ?", apartmentID)
	if utilityType != "" {
		stmt = stmt.Where("utility_type = ?", utilityType)
	}
	err := stmt.Order("reading_date asc").Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *repo) FindLatestBefore(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID, utilityType utility.Type, date time.Time) (*domain.MeterReading, error) {
	var reading domain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT id, apartment_id, utility_type, reading, reading_date, submitted_by
		 FROM meter_readings
		 WHERE apartment_id = ? AND utility_type = ? AND reading_date <= ?
		 ORDER BY reading_date DESC
		 LIMIT 1`,
		apartmentID,
		utilityType,
		date,
	).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) FindOnDate(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID, utilityType utility.Type, date time.Time) (*domain.MeterReading, error) {
	var reading domain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT id, apartment_id, utility_type, reading, reading_date, submitted_by
		 FROM meter_readings
		 WHERE apartment_id = ? AND utility_type = ? AND reading_date = ?`,
		apartmentID,
		utilityType,
		date,
	).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}
