package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertResident(ctx context.Context, db *gorm.DB, resident *Resident) error
	FindResidentByTelegramID(ctx context.Context, db *gorm.DB, telegramID int64) (*Resident, error)
	FindApartmentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Apartment, error)
	FindApartmentForTelegramID(ctx context.Context, db *gorm.DB, telegramID int64) (*Apartment, error)
	HasAdminResidency(ctx context.Context, db *gorm.DB, telegramID int64, apartmentID snowflake.ID) (bool, error)
	InsertResidency(ctx context.Context, db *gorm.DB, residency *Residency) error
	ListByApartment(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID) ([]ApartmentResident, error)
}
