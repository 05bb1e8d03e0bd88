package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/session/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// 32 random bytes, well past the 128-bit floor for a bearer credential.
const tokenBytes = 32

type Params struct {
	fx.In

	Log   *zap.Logger
	Store domain.Store
}

type Service struct {
	log   *zap.Logger
	store domain.Store
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("session.service"),
		store: p.Store,
	}
}

func (s *Service) Issue(ctx context.Context, telegramID int64, apartmentID snowflake.ID) (string, error) {
	if telegramID == 0 {
		return "", domain.ErrInvalidTelegram
	}
	if apartmentID == 0 {
		return "", domain.ErrInvalidApartment
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	session := domain.Session{
		TelegramID:  telegramID,
		ApartmentID: apartmentID,
		Expires:     time.Now().UTC().Add(domain.TTL),
	}
	if err := s.store.Set(ctx, token, session, domain.TTL); err != nil {
		return "", err
	}

	s.log.Info("session issued",
		zap.Int64("telegram_id", telegramID),
		zap.String("apartment_id", apartmentID.String()),
	)
	return token, nil
}

func (s *Service) Validate(ctx context.Context, token string) (domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Session{}, domain.ErrInvalidSession
	}

	session, err := s.store.Get(ctx, token)
	if err != nil {
		return domain.Session{}, err
	}
	if session == nil {
		return domain.Session{}, domain.ErrInvalidSession
	}
	if time.Now().UTC().After(session.Expires) {
		// The store TTL should have removed it already.
		if err := s.store.Delete(ctx, token); err != nil {
			s.log.Warn("failed to delete expired session", zap.Error(err))
		}
		return domain.Session{}, domain.ErrInvalidSession
	}
	return *session, nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
