package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/tariff/domain"
	"github.com/kvartplata/kvartplata/internal/utility"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tariff.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertTariffRequest) (domain.Tariff, error) {
	if req.ApartmentID == 0 {
		return domain.Tariff{}, domain.ErrInvalidApartment
	}
	if !req.UtilityType.Valid() {
		return domain.Tariff{}, domain.ErrInvalidUtility
	}
	if req.Rate <= 0 {
		return domain.Tariff{}, domain.ErrInvalidRate
	}
	if req.ValidFrom.IsZero() {
		return domain.Tariff{}, domain.ErrInvalidValidFrom
	}

	tariff := domain.Tariff{
		ID:          s.genID.Generate(),
		ApartmentID: req.ApartmentID,
		UtilityType: req.UtilityType,
		Rate:        req.Rate,
		ValidFrom:   truncateToDate(req.ValidFrom),
	}
	if err := s.repo.Upsert(ctx, s.db, &tariff); err != nil {
		return domain.Tariff{}, err
	}

	s.log.Info("tariff saved",
		zap.String("apartment_id", req.ApartmentID.String()),
		zap.String("utility_type", req.UtilityType.String()),
		zap.Float64("rate", req.Rate),
	)
	return tariff, nil
}

func (s *Service) List(ctx context.Context, apartmentID snowflake.ID) ([]domain.Tariff, error) {
	if apartmentID == 0 {
		return nil, domain.ErrInvalidApartment
	}
	return s.repo.List(ctx, s.db, apartmentID)
}

func (s *Service) ResolveRate(ctx context.Context, apartmentID snowflake.ID, utilityType utility.Type, asOf time.Time) (domain.Tariff, error) {
	if apartmentID == 0 {
		return domain.Tariff{}, domain.ErrInvalidApartment
	}
	if !utilityType.Valid() {
		return domain.Tariff{}, domain.ErrInvalidUtility
	}

	tariff, err := s.repo.FindEffective(ctx, s.db, apartmentID, utilityType, truncateToDate(asOf))
	if err != nil {
		return domain.Tariff{}, err
	}
	if tariff == nil {
		return domain.Tariff{}, domain.ErrNotFound
	}
	return *tariff, nil
}

func truncateToDate(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
