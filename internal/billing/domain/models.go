package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/utility"
)

// Charge is a billed amount for one utility over one period. Immutable
// once created; "paid" is never stored on it, always recomputed from
// payments at read time.
type Charge struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ApartmentID snowflake.ID `gorm:"not null;uniqueIndex:ux_charges_apartment_utility_period" json:"apartment_id"`
	UtilityType utility.Type `gorm:"not null;uniqueIndex:ux_charges_apartment_utility_period" json:"utility_type"`
	PeriodStart time.Time    `gorm:"not null;type:date;uniqueIndex:ux_charges_apartment_utility_period" json:"period_start"`
	PeriodEnd   time.Time    `gorm:"not null;type:date;uniqueIndex:ux_charges_apartment_utility_period" json:"period_end"`
	Consumption float64      `gorm:"not null" json:"consumption"`
	TariffUsed  float64      `gorm:"not null" json:"tariff_used"`
	Amount      float64      `gorm:"not null" json:"amount"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// Payment is an append-only record of money applied against a charge.
// ChargeID is nullable: unattributed payments are allowed.
type Payment struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	ApartmentID snowflake.ID  `gorm:"not null" json:"apartment_id"`
	ChargeID    *snowflake.ID `gorm:"index" json:"charge_id,omitempty"`
	Amount      float64       `gorm:"not null" json:"amount"`
	Date        time.Time     `gorm:"not null;type:date" json:"date"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	ConfirmedBy snowflake.ID  `gorm:"not null" json:"confirmed_by"`
	ReceiptPath *string       `json:"receipt_path,omitempty"`
}

// UnpaidCharge pairs a charge with the total paid against it so far.
type UnpaidCharge struct {
	Charge Charge  `json:"charge"`
	Paid   float64 `json:"paid"`
}

func (u UnpaidCharge) Debt() float64 {
	return u.Charge.Amount - u.Paid
}

// StatementRow is one line of the apartment statement export.
type StatementRow struct {
	UtilityType utility.Type `json:"utility_type"`
	PeriodStart time.Time    `json:"period_start"`
	PeriodEnd   time.Time    `json:"period_end"`
	Amount      float64      `json:"amount"`
	Paid        float64      `json:"paid"`
}

func (r StatementRow) Debt() float64 {
	return r.Amount - r.Paid
}
