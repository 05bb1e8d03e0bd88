package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Apartment is the root of all billing data; one row per household.
type Apartment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// Resident is created lazily on first contact with the bot. TelegramID is
// the join key from chat identity to billing identity.
type Resident struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	TelegramID int64        `gorm:"not null;uniqueIndex" json:"telegram_id"`
	FullName   string       `gorm:"not null" json:"full_name"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// Residency links a resident to an apartment. IsAdmin is the sole
// authorization signal in the system.
type Residency struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ResidentID  snowflake.ID `gorm:"not null;uniqueIndex:ux_residencies_resident_apartment" json:"resident_id"`
	ApartmentID snowflake.ID `gorm:"not null;uniqueIndex:ux_residencies_resident_apartment;index" json:"apartment_id"`
	IsAdmin     bool         `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
