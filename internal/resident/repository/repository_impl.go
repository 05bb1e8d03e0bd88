package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/resident/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertResident(ctx context.Context, db *gorm.DB, resident *domain.Resident) error {
	return db.WithContext(ctx).Create(resident).Error
}

func (r *repo) FindResidentByTelegramID(ctx context.Context, db *gorm.DB, telegramID int64) (*domain.Resident, error) {
	var resident domain.Resident
	err := db.WithContext(ctx).Raw(
		`SELECT id, telegram_id, full_name, created_at
		 FROM residents WHERE telegram_id = ?`,
		telegramID,
	).Scan(&resident).Error
	if err != nil {
		return nil, err
	}
	if resident.ID == 0 {
		return nil, nil
	}
	return &resident, nil
}

func (r *repo) FindApartmentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Apartment, error) {
	var apartment domain.Apartment
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, created_at FROM apartments WHERE id = ?`,
		id,
	).Scan(&apartment).Error
	if err != nil {
		return nil, err
	}
	if apartment.ID == 0 {
		return nil, nil
	}
	return &apartment, nil
}

func (r *repo) FindApartmentForTelegramID(ctx context.Context, db *gorm.DB, telegramID int64) (*domain.Apartment, error) {
	var apartment domain.Apartment
	err := db.WithContext(ctx).Raw(
		`SELECT a.id, a.name, a.created_at
		 FROM apartments a
		 JOIN residencies r ON a.id = r.apartment_id
		 JOIN residents res ON r.resident_id = res.id
		 WHERE res.telegram_id = ?`,
		telegramID,
	).Scan(&apartment).Error
	if err != nil {
		return nil, err
	}
	if apartment.ID == 0 {
		return nil, nil
	}
	return &apartment, nil
}

func (r *repo) HasAdminResidency(ctx context.Context, db *gorm.DB, telegramID int64, apartmentID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM residencies
		 WHERE resident_id = (SELECT id FROM residents WHERE telegram_id = ?)
		   AND apartment_id = ?
		   AND is_admin = ?`,
		telegramID,
		apartmentID,
		true,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) InsertResidency(ctx context.Context, db *gorm.DB, residency *domain.Residency) error {
	return db.WithContext(ctx).Create(residency).Error
}

func (r *repo) ListByApartment(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID) ([]domain.ApartmentResident, error) {
	var residents []domain.ApartmentResident
	err := db.WithContext(ctx).Raw(
		`SELECT r.id, r.telegram_id, r.full_name, res.is_admin
		 FROM residents r
		 JOIN residencies res ON r.id = res.resident_id
		 WHERE res.apartment_id = ?
		 ORDER BY r.full_name ASC`,
		apartmentID,
	).Scan(&residents).Error
	if err != nil {
		return nil, err
	}
	return residents, nil
}
