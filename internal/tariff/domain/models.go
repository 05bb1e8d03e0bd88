package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/utility"
)

// Tariff is a rate for one utility type effective from a given date.
// Multiple tariffs per utility form an append-only history; the latest one
// with valid_from <= date is authoritative for that date.
type Tariff struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ApartmentID snowflake.ID `gorm:"not null;uniqueIndex:ux_tariffs_apartment_utility_from" json:"apartment_id"`
	UtilityType utility.Type `gorm:"not null;uniqueIndex:ux_tariffs_apartment_utility_from" json:"utility_type"`
	Rate        float64      `gorm:"not null" json:"rate"`
	ValidFrom   time.Time    `gorm:"not null;type:date;uniqueIndex:ux_tariffs_apartment_utility_from" json:"valid_from"`
}
