package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/billing/domain"
	"github.com/kvartplata/kvartplata/internal/utility"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertCharge(ctx context.Context, db *gorm.DB, charge *domain.Charge) error {
	return db.WithContext(ctx).Create(charge).Error
}

func (r *repo) FindChargeByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Charge, error) {
	var charge domain.Charge
	err := db.WithContext(ctx).Raw(
		`SELECT id, apartment_id, utility_type, period_start, period_end, consumption, tariff_used, amount, created_at
		 FROM charges WHERE id = ?`,
		id,
	).Scan(&charge).Error
	if err != nil {
		return nil, err
	}
	if charge.ID == 0 {
		return nil, nil
	}
	return &charge, nil
}

func (r *repo) FindChargeForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Charge, error) {
	var charge domain.Charge
	err := db.WithContext(ctx).Raw(
		`SELECT id, apartment_id, utility_type, period_start, period_end, consumption, tariff_used, amount, created_at
		 FROM charges WHERE id = ?
		 FOR UPDATE`,
		id,
	).Scan(&charge).Error
	if err != nil {
		return nil, err
	}
	if charge.ID == 0 {
		return nil, nil
	}
	return &charge, nil
}

func (r *repo) SumPayments(ctx context.Context, db *gorm.DB, chargeID snowflake.ID) (float64, error) {
	var paid float64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE charge_id = ?`,
		chargeID,
	).Scan(&paid).Error
	if err != nil {
		return 0, err
	}
	return paid, nil
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) ListUnpaid(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID) ([]domain.UnpaidCharge, error) {
	rows, err := r.chargesWithPaid(ctx, db, apartmentID, true)
	if err != nil {
		return nil, err
	}
	unpaid := make([]domain.UnpaidCharge, 0, len(rows))
	for _, row := range rows {
		unpaid = append(unpaid, domain.UnpaidCharge{Charge: row.toCharge(), Paid: row.Paid})
	}
	return unpaid, nil
}

func (r *repo) StatementRows(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID) ([]domain.StatementRow, error) {
	rows, err := r.chargesWithPaid(ctx, db, apartmentID, false)
	if err != nil {
		return nil, err
	}
	statement := make([]domain.StatementRow, 0, len(rows))
	for _, row := range rows {
		statement = append(statement, domain.StatementRow{
			UtilityType: row.UtilityType,
			PeriodStart: row.PeriodStart,
			PeriodEnd:   row.PeriodEnd,
			Amount:      row.Amount,
			Paid:        row.Paid,
		})
	}
	return statement, nil
}

type chargePaidRow struct {
	ID          snowflake.ID
	ApartmentID snowflake.ID
	UtilityType utility.Type
	PeriodStart time.Time
	PeriodEnd   time.Time
	Consumption float64
	TariffUsed  float64
	Amount      float64
	CreatedAt   time.Time
	Paid        float64
}

func (row chargePaidRow) toCharge() domain.Charge {
	return domain.Charge{
		ID:          row.ID,
		ApartmentID: row.ApartmentID,
		UtilityType: row.UtilityType,
		PeriodStart: row.PeriodStart,
		PeriodEnd:   row.PeriodEnd,
		Consumption: row.Consumption,
		TariffUsed:  row.TariffUsed,
		Amount:      row.Amount,
		CreatedAt:   row.CreatedAt,
	}
}

func (r *repo) chargesWithPaid(ctx context.Context, db *gorm.DB, apartmentID snowflake.ID, unpaidOnly bool) ([]chargePaidRow, error) {
	query := `SELECT c.id, c.apartment_id, c.utility_type, c.period_start, c.period_end,
	                 c.consumption, c.tariff_used, c.amount, c.created_at,
	                 COALESCE(SUM(p.amount), 0) AS paid
	          FROM charges c
	          LEFT JOIN payments p ON c.id = p.charge_id
	          WHERE c.apartment_id = ?
	          GROUP BY c.id, c.apartment_id, c.utility_type, c.period_start, c.period_end,
	                   c.consumption, c.tariff_used, c.amount, c.created_at`
	if unpaidOnly {
		query += `
	          HAVING (c.amount - COALESCE(SUM(p.amount), 0)) > ?`
	}
	query += `
	          ORDER BY c.period_end ASC`

	args := []any{apartmentID}
	if unpaidOnly {
		args = append(args, domain.Epsilon)
	}

	var rows []chargePaidRow
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
