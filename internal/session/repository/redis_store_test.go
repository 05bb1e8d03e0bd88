package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kvartplata/kvartplata/internal/session/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionPayload_NumericIDs(t *testing.T) {
	expires := time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)
	data, err := encodeSession(domain.Session{
		TelegramID:  42,
		ApartmentID: 123456789,
		Expires:     expires,
	})
	require.NoError(t, err)

	// Both identities are stored as JSON numbers, not strings.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "42", string(raw["telegram_id"]))
	assert.Equal(t, "123456789", string(raw["apartment_id"]))

	session, err := decodeSession(data)
	require.NoError(t, err)
	assert.Equal(t, int64(42), session.TelegramID)
	assert.Equal(t, "123456789", session.ApartmentID.String())
	assert.True(t, session.Expires.Equal(expires))
}
