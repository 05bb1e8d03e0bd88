package domain

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/utility"
)

// Epsilon tolerates floating-point drift when reconciling payments against
// a charge: a charge is outstanding while amount - paid > Epsilon.
const Epsilon = 0.01

// ExceedsDebt reports whether a proposed amount overpays the debt.
// The overshoot is judged at cent granularity: paying one cent over a
// 1500.00 debt is an overpayment, but drift well below a cent in either
// operand never flips the decision.
func ExceedsDebt(amount, debt float64) bool {
	return math.Round((amount-debt)*100)/100 > 0
}

type RecordPaymentRequest struct {
	ChargeID    snowflake.ID
	ApartmentID snowflake.ID
	Amount      float64
	ConfirmedBy snowflake.ID
	ReceiptPath string
}

type GenerateChargeRequest struct {
	ApartmentID snowflake.ID
	UtilityType utility.Type
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// ChargeDebt reports the reconciliation state of a single charge.
type ChargeDebt struct {
	Charge Charge  `json:"charge"`
	Paid   float64 `json:"paid"`
	Debt   float64 `json:"debt"`
}

type Service interface {
	// ListUnpaidCharges returns charges with outstanding debt, oldest
	// period first.
	ListUnpaidCharges(ctx context.Context, apartmentID snowflake.ID) ([]UnpaidCharge, error)
	// Debt recomputes paid/debt for one charge. A nonzero apartmentID
	// scopes the lookup: a charge belonging elsewhere reads as not found.
	Debt(ctx context.Context, chargeID, apartmentID snowflake.ID) (ChargeDebt, error)
	// RecordPayment validates and inserts a payment atomically: the debt
	// check and the insert run in one transaction holding a lock on the
	// charge row.
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (Payment, error)
	// GenerateCharge bills a period from the meter readings at its
	// boundaries and the tariff in effect at period end.
	GenerateCharge(ctx context.Context, req GenerateChargeRequest) (Charge, error)
	StatementRows(ctx context.Context, apartmentID snowflake.ID) ([]StatementRow, error)
}

var (
	ErrInvalidApartment  = errors.New("invalid_apartment")
	ErrInvalidCharge     = errors.New("invalid_charge")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrAmountExceedsDebt = errors.New("amount_exceeds_debt")
	ErrInvalidConfirmer  = errors.New("invalid_confirmer")
	ErrInvalidPeriod     = errors.New("invalid_period")
	ErrMissingReading    = errors.New("missing_reading")
	ErrNegativeUsage     = errors.New("negative_usage")
	ErrNoTariff          = errors.New("no_tariff")
	ErrDuplicateCharge   = errors.New("duplicate_charge")
	ErrChargeNotFound    = errors.New("charge_not_found")
)
