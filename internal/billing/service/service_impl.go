package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/billing/domain"
	readingdomain "github.com/kvartplata/kvartplata/internal/meterreading/domain"
	tariffdomain "github.com/kvartplata/kvartplata/internal/tariff/domain"
	"github.com/kvartplata/kvartplata/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Tariffs  tariffdomain.Service
	Readings readingdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	tariffs  tariffdomain.Service
	readings readingdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("billing.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		tariffs:  p.Tariffs,
		readings: p.Readings,
	}
}

func (s *Service) ListUnpaidCharges(ctx context.Context, apartmentID snowflake.ID) ([]domain.UnpaidCharge, error) {
	if apartmentID == 0 {
		return nil, domain.ErrInvalidApartment
	}
	return s.repo.ListUnpaid(ctx, s.db, apartmentID)
}

func (s *Service) Debt(ctx context.Context, chargeID, apartmentID snowflake.ID) (domain.ChargeDebt, error) {
	if chargeID == 0 {
		return domain.ChargeDebt{}, domain.ErrInvalidCharge
	}
	charge, err := s.repo.FindChargeByID(ctx, s.db, chargeID)
	if err != nil {
		return domain.ChargeDebt{}, err
	}
	if charge == nil {
		return domain.ChargeDebt{}, domain.ErrChargeNotFound
	}
	if apartmentID != 0 && charge.ApartmentID != apartmentID {
		return domain.ChargeDebt{}, domain.ErrChargeNotFound
	}
	paid, err := s.repo.SumPayments(ctx, s.db, chargeID)
	if err != nil {
		return domain.ChargeDebt{}, err
	}
	return domain.ChargeDebt{
		Charge: *charge,
		Paid:   paid,
		Debt:   charge.Amount - paid,
	}, nil
}

func (s *Service) RecordPayment(ctx context.Context, req domain.RecordPaymentRequest) (domain.Payment, error) {
	if req.ChargeID == 0 {
		return domain.Payment{}, domain.ErrInvalidCharge
	}
	if req.ConfirmedBy == 0 {
		return domain.Payment{}, domain.ErrInvalidConfirmer
	}
	if req.Amount <= 0 {
		return domain.Payment{}, domain.ErrInvalidAmount
	}

	var payment domain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		charge, err := s.repo.FindChargeForUpdate(ctx, tx, req.ChargeID)
		if err != nil {
			return err
		}
		if charge == nil {
			return domain.ErrChargeNotFound
		}
		if req.ApartmentID != 0 && charge.ApartmentID != req.ApartmentID {
			return domain.ErrChargeNotFound
		}

		paid, err := s.repo.SumPayments(ctx, tx, req.ChargeID)
		if err != nil {
			return err
		}
		debt := charge.Amount - paid
		if domain.ExceedsDebt(req.Amount, debt) {
			return domain.ErrAmountExceedsDebt
		}

		chargeID := req.ChargeID
		payment = domain.Payment{
			ID:          s.genID.Generate(),
			ApartmentID: charge.ApartmentID,
			ChargeID:    &chargeID,
			Amount:      req.Amount,
			Date:        truncateToDate(time.Now().UTC()),
			CreatedAt:   time.Now().UTC(),
			ConfirmedBy: req.ConfirmedBy,
		}
		if path := strings.TrimSpace(req.ReceiptPath); path != "" {
			payment.ReceiptPath = &path
		}
		return s.repo.InsertPayment(ctx, tx, &payment)
	})
	if err != nil {
		return domain.Payment{}, err
	}

	s.log.Info("payment recorded",
		zap.String("charge_id", req.ChargeID.String()),
		zap.Float64("amount", req.Amount),
		zap.Bool("has_receipt", payment.ReceiptPath != nil),
	)
	return payment, nil
}

func (s *Service) GenerateCharge(ctx context.Context, req domain.GenerateChargeRequest) (domain.Charge, error) {
	if req.ApartmentID == 0 {
		return domain.Charge{}, domain.ErrInvalidApartment
	}
	if !req.UtilityType.Valid() {
		return domain.Charge{}, tariffdomain.ErrInvalidUtility
	}
	periodStart := truncateToDate(req.PeriodStart)
	periodEnd := truncateToDate(req.PeriodEnd)
	if periodStart.IsZero() || periodEnd.IsZero() || !periodEnd.After(periodStart) {
		return domain.Charge{}, domain.ErrInvalidPeriod
	}

	startReading, err := s.readings.FindOnDate(ctx, s.db, req.ApartmentID, req.UtilityType, periodStart)
	if err != nil {
		return domain.Charge{}, err
	}
	endReading, err := s.readings.FindOnDate(ctx, s.db, req.ApartmentID, req.UtilityType, periodEnd)
	if err != nil {
		return domain.Charge{}, err
	}
	if startReading == nil || endReading == nil {
		return domain.Charge{}, domain.ErrMissingReading
	}

	consumption := endReading.Reading - startReading.Reading
	if consumption < 0 {
		return domain.Charge{}, domain.ErrNegativeUsage
	}

	// Rate in force at the end of the period: meters are read when the
	// period closes, so that is the tariff the supplier bills against.
	tariff, err := s.tariffs.ResolveRate(ctx, req.ApartmentID, req.UtilityType, periodEnd)
	if err != nil {
		if errors.Is(err, tariffdomain.ErrNotFound) {
			return domain.Charge{}, domain.ErrNoTariff
		}
		return domain.Charge{}, err
	}

	charge := domain.Charge{
		ID:          s.genID.Generate(),
		ApartmentID: req.ApartmentID,
		UtilityType: req.UtilityType,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Consumption: consumption,
		TariffUsed:  tariff.Rate,
		Amount:      round2(consumption * tariff.Rate),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.InsertCharge(ctx, s.db, &charge); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Charge{}, domain.ErrDuplicateCharge
		}
		return domain.Charge{}, err
	}

	s.log.Info("charge generated",
		zap.String("apartment_id", req.ApartmentID.String()),
		zap.String("utility_type", req.UtilityType.String()),
		zap.Float64("consumption", consumption),
		zap.Float64("amount", charge.Amount),
	)
	return charge, nil
}

func (s *Service) StatementRows(ctx context.Context, apartmentID snowflake.ID) ([]domain.StatementRow, error) {
	if apartmentID == 0 {
		return nil, domain.ErrInvalidApartment
	}
	return s.repo.StatementRows(ctx, s.db, apartmentID)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncateToDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
