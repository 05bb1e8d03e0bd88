package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/utility"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, tariff *Tariff) error
	List(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID) ([]Tariff, error)
	// FindEffective returns the latest tariff with valid_from <= asOf.
	FindEffective(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID, utilityType utility.Type, asOf time.Time) (*Tariff, error)
}
