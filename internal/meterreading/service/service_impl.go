package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/meterreading/domain"
	"github.com/kvartplata/kvartplata/internal/utility"
	"github.com/kvartplata/kvartplata/pkg/db"
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
		log:   p.Log.Named("meterreading.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitReadingRequest) (domain.MeterReading, error) {
	if req.ApartmentID == 0 {
		return domain.MeterReading{}, domain.ErrInvalidApartment
	}
	if !req.UtilityType.Valid() {
		return domain.MeterReading{}, domain.ErrInvalidUtility
	}
	if req.Reading < 0 {
		return domain.MeterReading{}, domain.ErrInvalidReading
	}
	if req.SubmittedBy == 0 {
		return domain.MeterReading{}, domain.ErrInvalidSubmitter
	}

	readingDate := truncateToDate(req.ReadingDate)
	if readingDate.IsZero() {
		readingDate = truncateToDate(time.Now().UTC())
	}

	previous, err := s.repo.FindLatestBefore(ctx, s.db, req.ApartmentID, req.UtilityType, readingDate)
	if err != nil {
		return domain.MeterReading{}, err
	}
	if previous != nil && req.Reading < previous.Reading {
		return domain.MeterReading{}, domain.ErrReadingDecreased
	}

	reading := domain.MeterReading{
		ID:          s.genID.Generate(),
		ApartmentID: req.ApartmentID,
		UtilityType: req.UtilityType,
		Reading:     req.Reading,
		ReadingDate: readingDate,
		SubmittedBy: req.SubmittedBy,
	}
	if err := s.repo.Insert(ctx, s.db, &reading); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.MeterReading{}, domain.ErrDuplicateReading
		}
		return domain.MeterReading{}, err
	}

	s.log.Info("meter reading submitted",
		zap.String("apartment_id", req.ApartmentID.String()),
		zap.String("utility_type", req.UtilityType.String()),
		zap.Float64("reading", req.Reading),
	)
	return reading, nil
}

func (s *Service) List(ctx context.Context, apartmentID snowflake.ID, utilityType utility.Type) ([]domain.MeterReading, error) {
	if apartmentID == 0 {
		return nil, domain.ErrInvalidApartment
	}
	return s.repo.List(ctx, s.db, apartmentID, utilityType)
}

func truncateToDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
