package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/session/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore keeps sessions in a map, honouring TTLs by timestamp.
type fakeStore struct {
	entries map[string]fakeEntry
}

type fakeEntry struct {
	session  domain.Session
	expireAt time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]fakeEntry)}
}

func (s *fakeStore) Set(_ context.Context, token string, session domain.Session, ttl time.Duration) error {
	s.entries[token] = fakeEntry{session: session, expireAt: time.Now().UTC().Add(ttl)}
	return nil
}

func (s *fakeStore) Get(_ context.Context, token string) (*domain.Session, error) {
	entry, ok := s.entries[token]
	if !ok || time.Now().UTC().After(entry.expireAt) {
		return nil, nil
	}
	session := entry.session
	return &session, nil
}

func (s *fakeStore) Delete(_ context.Context, token string) error {
	delete(s.entries, token)
	return nil
}

func newService(store domain.Store) domain.Service {
	return New(Params{Log: zap.NewNop(), Store: store})
}

func TestIssueThenValidate(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	ctx := context.Background()

	node, _ := snowflake.NewNode(1)
	apartmentID := node.Generate()
	telegramID := int64(100500)

	token, err := svc.Issue(ctx, telegramID, apartmentID)
	require.NoError(t, err)
	// 32 random bytes base64url-encoded, no padding.
	assert.Len(t, token, 43)

	session, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, telegramID, session.TelegramID)
	assert.Equal(t, apartmentID, session.ApartmentID)
	assert.WithinDuration(t, time.Now().UTC().Add(domain.TTL), session.Expires, time.Minute)
}

func TestIssue_TokensAreUnique(t *testing.T) {
	svc := newService(newFakeStore())
	ctx := context.Background()

	node, _ := snowflake.NewNode(1)
	apartmentID := node.Generate()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := svc.Issue(ctx, 1, apartmentID)
		require.NoError(t, err)
		require.False(t, seen[token])
		seen[token] = true
	}
}

func TestValidate_UnknownToken(t *testing.T) {
	svc := newService(newFakeStore())

	_, err := svc.Validate(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	_, err = svc.Validate(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestValidate_ExpiredSessionIsDeleted(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	ctx := context.Background()

	node, _ := snowflake.NewNode(1)
	apartmentID := node.Generate()

	token, err := svc.Issue(ctx, 42, apartmentID)
	require.NoError(t, err)

	// Age the payload past the deadline while the store entry survives.
	entry := store.entries[token]
	entry.session.Expires = time.Now().UTC().Add(-time.Hour)
	store.entries[token] = entry

	_, err = svc.Validate(ctx, token)
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
	_, ok := store.entries[token]
	assert.False(t, ok)
}

func TestIssue_Validation(t *testing.T) {
	svc := newService(newFakeStore())
	ctx := context.Background()

	node, _ := snowflake.NewNode(1)

	_, err := svc.Issue(ctx, 0, node.Generate())
	assert.ErrorIs(t, err, domain.ErrInvalidTelegram)

	_, err = svc.Issue(ctx, 1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidApartment)
}
