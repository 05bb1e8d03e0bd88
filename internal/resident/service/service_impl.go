package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/resident/domain"
	"github.com/kvartplata/kvartplata/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultFullName = "Пользователь"

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
		log:   p.Log.Named("resident.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) EnsureResident(ctx context.Context, req domain.EnsureResidentRequest) (domain.Resident, error) {
	if req.TelegramID == 0 {
		return domain.Resident{}, domain.ErrInvalidTelegramID
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		fullName = defaultFullName
	}

	existing, err := s.repo.FindResidentByTelegramID(ctx, s.db, req.TelegramID)
	if err != nil {
		return domain.Resident{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	resident := domain.Resident{
		ID:         s.genID.Generate(),
		TelegramID: req.TelegramID,
		FullName:   fullName,
		CreatedAt:  time.Now().UTC(),
	}
	err = s.repo.InsertResident(ctx, s.db, &resident)
	if err == nil {
		return resident, nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return domain.Resident{}, err
	}

	// Lost the insert race on telegram_id; the winner's row is the answer.
	existing, rereadErr := s.repo.FindResidentByTelegramID(ctx, s.db, req.TelegramID)
	if rereadErr != nil {
		return domain.Resident{}, rereadErr
	}
	if existing == nil {
		return domain.Resident{}, err
	}
	return *existing, nil
}

func (s *Service) FindApartment(ctx context.Context, telegramID int64) (domain.Apartment, error) {
	if telegramID == 0 {
		return domain.Apartment{}, domain.ErrInvalidTelegramID
	}
	apartment, err := s.repo.FindApartmentForTelegramID(ctx, s.db, telegramID)
	if err != nil {
		return domain.Apartment{}, err
	}
	if apartment == nil {
		return domain.Apartment{}, domain.ErrNotFound
	}
	return *apartment, nil
}

func (s *Service) GetApartment(ctx context.Context, id snowflake.ID) (domain.Apartment, error) {
	if id == 0 {
		return domain.Apartment{}, domain.ErrInvalidApartment
	}
	apartment, err := s.repo.FindApartmentByID(ctx, s.db, id)
	if err != nil {
		return domain.Apartment{}, err
	}
	if apartment == nil {
		return domain.Apartment{}, domain.ErrNotFound
	}
	return *apartment, nil
}

func (s *Service) IsAdmin(ctx context.Context, telegramID int64, apartmentID snowflake.ID) (bool, error) {
	if telegramID == 0 || apartmentID == 0 {
		return false, nil
	}
	return s.repo.HasAdminResidency(ctx, s.db, telegramID, apartmentID)
}

func (s *Service) List(ctx context.Context, apartmentID snowflake.ID) ([]domain.ApartmentResident, error) {
	if apartmentID == 0 {
		return nil, domain.ErrInvalidApartment
	}
	return s.repo.ListByApartment(ctx, s.db, apartmentID)
}

func (s *Service) Add(ctx context.Context, req domain.AddResidentRequest) (domain.Resident, error) {
	if req.ApartmentID == 0 {
		return domain.Resident{}, domain.ErrInvalidApartment
	}
	if req.TelegramID == 0 {
		return domain.Resident{}, domain.ErrInvalidTelegramID
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return domain.Resident{}, domain.ErrInvalidFullName
	}

	var resident domain.Resident
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindResidentByTelegramID(ctx, tx, req.TelegramID)
		if err != nil {
			return err
		}
		if existing != nil {
			resident = *existing
		} else {
			resident = domain.Resident{
				ID:         s.genID.Generate(),
				TelegramID: req.TelegramID,
				FullName:   fullName,
				CreatedAt:  time.Now().UTC(),
			}
			if err := s.repo.InsertResident(ctx, tx, &resident); err != nil {
				return err
			}
		}

		residency := domain.Residency{
			ID:          s.genID.Generate(),
			ResidentID:  resident.ID,
			ApartmentID: req.ApartmentID,
			IsAdmin:     req.IsAdmin,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.repo.InsertResidency(ctx, tx, &residency); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrAlreadyResident
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Resident{}, err
	}

	s.log.Info("resident added",
		zap.Int64("telegram_id", req.TelegramID),
		zap.String("apartment_id", req.ApartmentID.String()),
		zap.Bool("is_admin", req.IsAdmin),
	)
	return resident, nil
}
