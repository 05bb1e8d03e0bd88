package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// TTL bounds every session: the store entry expires on its own and the
// payload carries the same deadline so validation can re-check it.
const TTL = 24 * time.Hour

// Session binds a telegram identity to one apartment for web access.
// Possession of the token is sufficient; there is no revocation list.
type Session struct {
	TelegramID  int64        `json:"telegram_id"`
	ApartmentID snowflake.ID `json:"apartment_id"`
	Expires     time.Time    `json:"expires"`
}

// Store is an expiring key-value store for session payloads. Each
// operation is atomic on its own; sessions are never partially updated.
type Store interface {
	Set(ctx context.Context, token string, session Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

type Service interface {
	// Issue generates an opaque bearer token for the pair and stores the
	// payload with the store-enforced TTL.
	Issue(ctx context.Context, telegramID int64, apartmentID snowflake.ID) (string, error)
	// Validate resolves a token to its payload. Expired entries are
	// deleted and reported invalid, indistinguishable from unknown tokens.
	Validate(ctx context.Context, token string) (Session, error)
}

var (
	ErrInvalidSession   = errors.New("invalid_session")
	ErrInvalidTelegram  = errors.New("invalid_telegram_id")
	ErrInvalidApartment = errors.New("invalid_apartment")
)
