package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertCharge(ctx context.Context, db *gorm.DB, charge *Charge) error
	FindChargeByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Charge, error)
	// FindChargeForUpdate locks the charge row for the duration of the
	// surrounding transaction so concurrent payment submissions serialize.
	FindChargeForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Charge, error)
	SumPayments(ctx context.Context, db *gorm.DB, chargeID snowflake.ID) (float64, error)
	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	ListUnpaid(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID) ([]UnpaidCharge, error)
	StatementRows(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID) ([]StatementRow, error)
}
