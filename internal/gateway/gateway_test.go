package gateway

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationKeyRoundTrip(t *testing.T) {
	key := CorrelationKey{UserID: uuid.New(), ProductID: uuid.New()}

	meta := key.Metadata()
	assert.Equal(t, key.UserID.String(), meta[MetaUserID])
	assert.Equal(t, key.ProductID.String(), meta[MetaProductID])

	parsed, err := ParseCorrelationKey(meta)
	require.NoError(t, err)
	assert.Equal(t, key, parsed)
}

func TestParseCorrelationKey_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
	}{
		{"empty map", map[string]string{}},
		{"missing product", map[string]string{MetaUserID: uuid.NewString()}},
		{"missing user", map[string]string{MetaProductID: uuid.NewString()}},
		{"garbage user id", map[string]string{MetaUserID: "abc", MetaProductID: uuid.NewString()}},
		{"garbage product id", map[string]string{MetaUserID: uuid.NewString(), MetaProductID: "42"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCorrelationKey(tt.metadata)
			assert.Error(t, err)
		})
	}
}

func TestEventTerminal(t *testing.T) {
	assert.True(t, Event{Type: EventPaymentSucceeded}.Terminal())
	assert.True(t, Event{Type: EventPaymentFailed}.Terminal())
	assert.False(t, Event{Type: "payment_intent.created"}.Terminal())
	assert.False(t, Event{Type: "charge.refunded"}.Terminal())
	assert.False(t, Event{}.Terminal())
}
