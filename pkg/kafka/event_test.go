package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func TestNewEvent_PopulatesEnvelope(t *testing.T) {
	ev, err := NewEvent("auth.user.registered", "user-1", "user", "auth-service", testPayload{
		UserID: "user-1",
		Email:  "alice@example.com",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "auth.user.registered", ev.EventType)
	assert.Equal(t, "user-1", ev.AggregateID)
	assert.Equal(t, "user", ev.AggregateType)
	assert.Equal(t, "auth-service", ev.Source)
	assert.Equal(t, 1, ev.Version)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestEvent_RoundTripData(t *testing.T) {
	ev, err := NewEvent("auth.user.registered", "user-1", "user", "auth-service", testPayload{
		UserID: "user-1",
		Email:  "alice@example.com",
	})
	require.NoError(t, err)

	raw, err := ev.WithCorrelationID("corr-9").Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "corr-9", decoded.CorrelationID)

	var payload testPayload
	require.NoError(t, decoded.UnmarshalData(&payload))
	assert.Equal(t, "alice@example.com", payload.Email)
}
