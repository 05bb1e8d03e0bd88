package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/kvartplata/kvartplata/internal/billing/domain"
	"github.com/kvartplata/kvartplata/internal/billing/repository"
	"github.com/kvartplata/kvartplata/internal/config"
	readingdomain "github.com/kvartplata/kvartplata/internal/meterreading/domain"
	readingrepo "github.com/kvartplata/kvartplata/internal/meterreading/repository"
	tariffdomain "github.com/kvartplata/kvartplata/internal/tariff/domain"
	tariffrepo "github.com/kvartplata/kvartplata/internal/tariff/repository"
	tariffservice "github.com/kvartplata/kvartplata/internal/tariff/service"
	"github.com/kvartplata/kvartplata/internal/utility"
	pkgdb "github.com/kvartplata/kvartplata/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, pkgdb.PrepareSQLite(db))

	require.NoError(t, db.AutoMigrate(
		&domain.Charge{},
		&domain.Payment{},
		&tariffdomain.Tariff{},
		&readingdomain.MeterReading{},
	))
	return db
}

func newBillingService(t *testing.T, db *gorm.DB, node *snowflake.Node) domain.Service {
	t.Helper()

	log := zap.NewNop()
	tariffs := tariffservice.New(tariffservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  tariffrepo.Provide(),
	})
	return New(Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Repo:     repository.Provide(),
		Tariffs:  tariffs,
		Readings: readingrepo.Provide(),
	})
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedCharge(t *testing.T, db *gorm.DB, node *snowflake.Node, apartmentID snowflake.ID, amount float64, periodEnd time.Time) domain.Charge {
	t.Helper()

	charge := domain.Charge{
		ID:          node.Generate(),
		ApartmentID: apartmentID,
		UtilityType: utility.Electricity,
		PeriodStart: periodEnd.AddDate(0, -1, 0),
		PeriodEnd:   periodEnd,
		Consumption: 100,
		TariffUsed:  amount / 100,
		Amount:      amount,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(&charge).Error)
	return charge
}

func TestRecordPayment_FullPaymentClearsCharge(t *testing.T) {
	db := setupDB(t)
	node, _ := snowflake.NewNode(1)
	svc := newBillingService(t, db, node)
	ctx := context.Background()

	apartmentID := node.Generate()
	confirmedBy := node.Generate()
	charge := seedCharge(t, db, node, apartmentID, 1500.00, date(2025, 1, 31))

	// One cent over the debt is rejected before anything is written.
	_, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ChargeID:    charge.ID,
		ApartmentID: apartmentID,
		Amount:      1500.01,
		ConfirmedBy: confirmedBy,
	})
	assert.ErrorIs(t, err, domain.ErrAmountExceedsDebt)

	payment, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ChargeID:    charge.ID,
		ApartmentID: apartmentID,
		Amount:      1500.00,
		ConfirmedBy: confirmedBy,
	})
	require.NoError(t, err)
	require.NotNil(t, payment.ChargeID)
	assert.Equal(t, charge.ID, *payment.ChargeID)

	unpaid, err := svc.ListUnpaidCharges(ctx, apartmentID)
	require.NoError(t, err)
	assert.Empty(t, unpaid)
}

func TestRecordPayment_PartialThenRemainder(t *testing.T) {
	db := setupDB(t)
	node, _ := snowflake.NewNode(1)
	svc := newBillingService(t, db, node)
	ctx := context.Background()

	apartmentID := node.Generate()
	confirmedBy := node.Generate()
	charge := seedCharge(t, db, node, apartmentID, 1000.00, date(2025, 2, 28))

	_, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ChargeID:    charge.ID,
		Amount:      800.00,
		ConfirmedBy: confirmedBy,
	})
	require.NoError(t, err)

	// Second 800 overshoots the remaining 200.
	_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ChargeID:    charge.ID,
		Amount:      800.00,
		ConfirmedBy: confirmedBy,
	})
	assert.ErrorIs(t, err, domain.ErrAmountExceedsDebt)

	debt, err := svc.Debt(ctx, charge.ID, apartmentID)
	require.NoError(t, err)
	assert.InDelta(t, 800.00, debt.Paid, 1e-9)
	assert.InDelta(t, 200.00, debt.Debt, 1e-9)

	_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ChargeID:    charge.ID,
		Amount:      200.00,
		ConfirmedBy: confirmedBy,
	})
	require.NoError(t, err)

	unpaid, err := svc.ListUnpaidCharges(ctx, apartmentID)
	require.NoError(t, err)
	assert.Empty(t, unpaid)
}

func TestRecordPayment_ConcurrentNeverOverpays(t *testing.T) {
	db := setupDB(t)
	node, _ := snowflake.NewNode(1)
	svc := newBillingService(t, db, node)
	ctx := context.Background()

	apartmentID := node.Generate()
	confirmedBy := node.Generate()
	charge := seedCharge(t, db, node, apartmentID, 1000.00, date(2025, 3, 31))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
				ChargeID:    charge.ID,
				Amount:      800.00,
				ConfirmedBy: confirmedBy,
			})
		}(i)
	}
	wg.Wait()

	var accepted, rejected int
	for _, err := range errs {
		if err == nil {
			accepted++
		} else {
			assert.ErrorIs(t, err, domain.ErrAmountExceedsDebt)
			rejected++
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, rejected)

	debt, err := svc.Debt(ctx, charge.ID, apartmentID)
	require.NoError(t, err)
	assert.LessOrEqual(t, debt.Paid, charge.Amount+domain.Epsilon)
}

func TestRecordPayment_Validation(t *testing.T) {
	db := setupDB(t)
	node, _ := snowflake.NewNode(1)
	svc := newBillingService(t, db, node)
	ctx := context.Background()

	apartmentID := node.Generate()
	confirmedBy := node.Generate()
	charge := seedCharge(t, db, node, apartmentID, 500.00, date(2025, 4, 30))

	_, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ChargeID:    charge.ID,
		Amount:      0,
		ConfirmedBy: confirmedBy,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ChargeID:    charge.ID,
		Amount:      -10,
		ConfirmedBy: confirmedBy,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ChargeID:    node.Generate(),
		Amount:      10,
		ConfirmedBy: confirmedBy,
	})
	assert.ErrorIs(t, err, domain.ErrChargeNotFound)

	// Charge belongs to another apartment.
	_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ChargeID:    charge.ID,
		ApartmentID: node.Generate(),
		Amount:      10,
		ConfirmedBy: confirmedBy,
	})
	assert.ErrorIs(t, err, domain.ErrChargeNotFound)
}

func TestRecordPayment_SQLiteDialect(t *testing.T) {
	// The runtime sqlite connection, as Open configures it, must accept
	// payments even though the charge lookup is written with FOR UPDATE.
	cfg := config.Config{
		DBType: "sqlite",
		DBName: filepath.Join(t.TempDir(), "kvartplata"),
	}
	db, err := pkgdb.Open(cfg)
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.Charge{},
		&domain.Payment{},
		&tariffdomain.Tariff{},
		&readingdomain.MeterReading{},
	))

	node, _ := snowflake.NewNode(1)
	svc := newBillingService(t, db, node)
	ctx := context.Background()

	apartmentID := node.Generate()
	confirmedBy := node.Generate()
	charge := seedCharge(t, db, node, apartmentID, 750.00, date(2025, 6, 30))

	_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ChargeID:    charge.ID,
		ApartmentID: apartmentID,
		Amount:      750.00,
		ConfirmedBy: confirmedBy,
	})
	require.NoError(t, err)

	debt, err := svc.Debt(ctx, charge.ID, apartmentID)
	require.NoError(t, err)
	assert.InDelta(t, 750.00, debt.Paid, 1e-9)
}

func TestDebt_ScopedToApartment(t *testing.T) {
	db := setupDB(t)
	node, _ := snowflake.NewNode(1)
	svc := newBillingService(t, db, node)
	ctx := context.Background()

	apartmentID := node.Generate()
	charge := seedCharge(t, db, node, apartmentID, 300.00, date(2025, 7, 31))

	debt, err := svc.Debt(ctx, charge.ID, apartmentID)
	require.NoError(t, err)
	assert.InDelta(t, 300.00, debt.Debt, 1e-9)

	// A charge from another apartment reads as not found.
	_, err = svc.Debt(ctx, charge.ID, node.Generate())
	assert.ErrorIs(t, err, domain.ErrChargeNotFound)
}

func TestListUnpaidCharges_FiltersAndOrders(t *testing.T) {
	db := setupDB(t)
	node, _ := snowflake.NewNode(1)
	svc := newBillingService(t, db, node)
	ctx := context.Background()

	apartmentID := node.Generate()
	confirmedBy := node.Generate()

	newer := seedCharge(t, db, node, apartmentID, 300.00, date(2025, 2, 28))
	older := seedCharge(t, db, node, apartmentID, 200.00, date(2025, 1, 31))
	settled := domain.Charge{
		ID:          node.Generate(),
		ApartmentID: apartmentID,
		UtilityType: utility.Gas,
		PeriodStart: date(2025, 1, 1),
		PeriodEnd:   date(2025, 1, 31),
		Consumption: 10,
		TariffUsed:  10,
		Amount:      100.00,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(&settled).Error)

	// Fully paid: no longer outstanding.
	_, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ChargeID:    settled.ID,
		Amount:      100.00,
		ConfirmedBy: confirmedBy,
	})
	require.NoError(t, err)

	unpaid, err := svc.ListUnpaidCharges(ctx, apartmentID)
	require.NoError(t, err)
	require.Len(t, unpaid, 2)
	assert.Equal(t, older.ID, unpaid[0].Charge.ID)
	assert.Equal(t, newer.ID, unpaid[1].Charge.ID)
	assert.InDelta(t, 200.00, unpaid[0].Debt(), 1e-9)
}

func TestGenerateCharge(t *testing.T) {
	db := setupDB(t)
	node, _ := snowflake.NewNode(1)
	svc := newBillingService(t, db, node)
	ctx := context.Background()

	apartmentID := node.Generate()
	submittedBy := node.Generate()
	periodStart := date(2025, 1, 1)
	periodEnd := date(2025, 2, 1)

	readings := readingrepo.Provide()
	require.NoError(t, readings.Insert(ctx, db, &readingdomain.MeterReading{
		ID:          node.Generate(),
		ApartmentID: apartmentID,
		UtilityType: utility.Electricity,
		Reading:     1000,
		ReadingDate: periodStart,
		SubmittedBy: submittedBy,
	}))
	require.NoError(t, readings.Insert(ctx, db, &readingdomain.MeterReading{
		ID:          node.Generate(),
		ApartmentID: apartmentID,
		UtilityType: utility.Electricity,
		Reading:     1150,
		ReadingDate: periodEnd,
		SubmittedBy: submittedBy,
	}))

	// No tariff yet.
	_, err := svc.GenerateCharge(ctx, domain.GenerateChargeRequest{
		ApartmentID: apartmentID,
		UtilityType: utility.Electricity,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	})
	assert.ErrorIs(t, err, domain.ErrNoTariff)

	tariffs := tariffservice.New(tariffservice.Params{
		DB: db, Log: zap.NewNop(), GenID: node, Repo: tariffrepo.Provide(),
	})
	_, err = tariffs.Upsert(ctx, tariffdomain.UpsertTariffRequest{
		ApartmentID: apartmentID,
		UtilityType: utility.Electricity,
		Rate:        5.50,
		ValidFrom:   periodStart,
	})
	require.NoError(t, err)

	charge, err := svc.GenerateCharge(ctx, domain.GenerateChargeRequest{
		ApartmentID: apartmentID,
		UtilityType: utility.Electricity,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	})
	require.NoError(t, err)
	assert.InDelta(t, 150, charge.Consumption, 1e-9)
	assert.InDelta(t, 5.50, charge.TariffUsed, 1e-9)
	assert.InDelta(t, 825.00, charge.Amount, 1e-9)

	// Same utility and period again is a conflict.
	_, err = svc.GenerateCharge(ctx, domain.GenerateChargeRequest{
		ApartmentID: apartmentID,
		UtilityType: utility.Electricity,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCharge)

	// No reading at the boundary for another utility.
	_, err = svc.GenerateCharge(ctx, domain.GenerateChargeRequest{
		ApartmentID: apartmentID,
		UtilityType: utility.Gas,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	})
	assert.ErrorIs(t, err, domain.ErrMissingReading)

	// Inverted period.
	_, err = svc.GenerateCharge(ctx, domain.GenerateChargeRequest{
		ApartmentID: apartmentID,
		UtilityType: utility.Electricity,
		PeriodStart: periodEnd,
		PeriodEnd:   periodStart,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestStatementRows_IncludesSettledCharges(t *testing.T) {
	db := setupDB(t)
	node, _ := snowflake.NewNode(1)
	svc := newBillingService(t, db, node)
	ctx := context.Background()

	apartmentID := node.Generate()
	confirmedBy := node.Generate()
	charge := seedCharge(t, db, node, apartmentID, 400.00, date(2025, 5, 31))

	_, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ChargeID:    charge.ID,
		Amount:      400.00,
		ConfirmedBy: confirmedBy,
	})
	require.NoError(t, err)

	rows, err := svc.StatementRows(ctx, apartmentID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 400.00, rows[0].Amount, 1e-9)
	assert.InDelta(t, 400.00, rows[0].Paid, 1e-9)
	assert.InDelta(t, 0, rows[0].Debt(), 1e-9)
}

func TestExceedsDebt(t *testing.T) {
	assert.False(t, domain.ExceedsDebt(1500.00, 1500.00))
	assert.True(t, domain.ExceedsDebt(1500.01, 1500.00))
	assert.False(t, domain.ExceedsDebt(1499.99, 1500.00))
	// Drift well below a cent never flips the decision.
	assert.False(t, domain.ExceedsDebt(500.00, 500.00000000001))
	assert.False(t, domain.ExceedsDebt(500.00000000001, 500.00))
}
