package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/utility"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reading *MeterReading) error
	List(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID, utilityType utility.Type) ([]MeterReading, error)
	// FindLatestBefore returns the newest reading with reading_date <= date.
	FindLatestBefore(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID, utilityType utility.Type, date time.Time) (*MeterReading, error)
	// FindOnDate returns the reading taken exactly on date, if any.
	FindOnDate(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID, utilityType utility.Type, date time.Time) (*MeterReading, error)
}
