package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/utility"
)

// MeterReading is a cumulative counter value submitted by a resident.
// Readings are append-only history; at most one per utility per day.
type MeterReading struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ApartmentID snowflake.ID `gorm:"not null;uniqueIndex:ux_meter_readings_apartment_utility_date" json:"apartment_id"`
	UtilityType utility.Type `gorm:"not null;uniqueIndex:ux_meter_readings_apartment_utility_date" json:"utility_type"`
	Reading     float64      `gorm:"not null" json:"reading"`
	ReadingDate time.Time    `gorm:"not null;type:date;uniqueIndex:ux_meter_readings_apartment_utility_date" json:"reading_date"`
	SubmittedBy snowflake.ID `gorm:"not null" json:"submitted_by"`
}
