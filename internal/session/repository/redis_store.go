package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/config"
	"github.com/kvartplata/kvartplata/internal/session/domain"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const keySession = "session:%s"

// sessionPayload is the stored wire form. snowflake.ID marshals itself as
// a JSON string, so the apartment ID is held as int64 to keep the payload
// numeric alongside telegram_id.
type sessionPayload struct {
	TelegramID  int64     `json:"telegram_id"`
	ApartmentID int64     `json:"apartment_id"`
	Expires     time.Time `json:"expires"`
}

func encodeSession(session domain.Session) ([]byte, error) {
	return json.Marshal(sessionPayload{
		TelegramID:  session.TelegramID,
		ApartmentID: int64(session.ApartmentID),
		Expires:     session.Expires,
	})
}

func decodeSession(data []byte) (*domain.Session, error) {
	var payload sessionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &domain.Session{
		TelegramID:  payload.TelegramID,
		ApartmentID: snowflake.ID(payload.ApartmentID),
		Expires:     payload.Expires,
	}, nil
}

type redisStore struct {
	client *redis.Client
}

func NewClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func Provide(client *redis.Client) domain.Store {
	return &redisStore{client: client}
}

func registerHooks(lc fx.Lifecycle, client *redis.Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = ctx
			return client.Close()
		},
	})
}

var Module = fx.Module("session.store",
	fx.Provide(NewClient),
	fx.Provide(Provide),
	fx.Invoke(registerHooks),
)

func (s *redisStore) Set(ctx context.Context, token string, session domain.Session, ttl time.Duration) error {
	payload, err := encodeSession(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, fmt.Sprintf(keySession, token), payload, ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(keySession, token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return decodeSession(data)
}

func (s *redisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, fmt.Sprintf(keySession, token)).Err()
}
