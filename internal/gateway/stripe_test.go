package gateway

import (
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test_secret"

func signedHeader(t *testing.T, payload []byte, secret string, at time.Time) string {
	t.Helper()
	sig := webhook.ComputeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}

func successPayload(userID, productID uuid.UUID) []byte {
	return []byte(fmt.Sprintf(`{
		"api_version": %q,
		"type": "payment_intent.succeeded",
		"data": {
			"object": {
				"id": "pi_test_1",
				"metadata": {"userId": %q, "productId": %q}
			}
		}
	}`, stripe.APIVersion, userID, productID))
}

func TestVerifyAndParse_ValidSignature(t *testing.T) {
	g := NewStripeGateway(zap.NewNop(), StripeConfig{
		SecretKey:     "sk_test",
		WebhookSecret: testWebhookSecret,
	})

	userID, productID := uuid.New(), uuid.New()
	payload := successPayload(userID, productID)
	header := signedHeader(t, payload, testWebhookSecret, time.Now())

	event, err := g.VerifyAndParse(payload, header)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, "pi_test_1", event.PaymentIntentID)
	assert.Equal(t, userID.String(), event.Metadata[MetaUserID])
	assert.Equal(t, productID.String(), event.Metadata[MetaProductID])
}

func TestVerifyAndParse_WrongSecret(t *testing.T) {
	g := NewStripeGateway(zap.NewNop(), StripeConfig{
		SecretKey:     "sk_test",
		WebhookSecret: testWebhookSecret,
	})

	payload := successPayload(uuid.New(), uuid.New())
	header := signedHeader(t, payload, "whsec_other_secret", time.Now())

	_, err := g.VerifyAndParse(payload, header)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifyAndParse_TamperedPayload(t *testing.T) {
	g := NewStripeGateway(zap.NewNop(), StripeConfig{
		SecretKey:     "sk_test",
		WebhookSecret: testWebhookSecret,
	})

	payload := successPayload(uuid.New(), uuid.New())
	header := signedHeader(t, payload, testWebhookSecret, time.Now())
	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = ' '

	_, err := g.VerifyAndParse(tampered, header)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifyAndParse_MissingHeader(t *testing.T) {
	g := NewStripeGateway(zap.NewNop(), StripeConfig{
		SecretKey:     "sk_test",
		WebhookSecret: testWebhookSecret,
	})

	_, err := g.VerifyAndParse(successPayload(uuid.New(), uuid.New()), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifyAndParse_NoSecretTrustsBody(t *testing.T) {
	g := NewStripeGateway(zap.NewNop(), StripeConfig{SecretKey: "sk_test"})

	userID, productID := uuid.New(), uuid.New()
	event, err := g.VerifyAndParse(successPayload(userID, productID), "")
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, userID.String(), event.Metadata[MetaUserID])
}

func TestVerifyAndParse_NonTerminalSkipsIntentDecode(t *testing.T) {
	g := NewStripeGateway(zap.NewNop(), StripeConfig{SecretKey: "sk_test"})

	payload := []byte(`{"type": "payment_intent.created", "data": {"object": {"id": "pi_x"}}}`)
	event, err := g.VerifyAndParse(payload, "")
	require.NoError(t, err)
	assert.False(t, event.Terminal())
	assert.Empty(t, event.Metadata)
}

func TestVerifyAndParse_GarbageBody(t *testing.T) {
	g := NewStripeGateway(zap.NewNop(), StripeConfig{SecretKey: "sk_test"})

	_, err := g.VerifyAndParse([]byte("not json"), "")
	assert.Error(t, err)
}
