package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Metadata keys embedded on every outbound gateway object. The same keys
// come back on webhook events and are the only channel correlating an
// external payment to internal entities, so they are written exactly as
// stored and never transformed.
const (
	MetaUserID    = "userId"
	MetaProductID = "productId"
)

// Terminal event types. Anything else is accepted and ignored.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// ErrSignatureInvalid rejects a webhook whose signature does not verify
// against the shared secret. No business logic runs after this error.
var ErrSignatureInvalid = errors.New("webhook signature invalid")

// CorrelationKey identifies the internal entities behind an external event.
type CorrelationKey struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
}

func (k CorrelationKey) String() string {
	return k.UserID.String() + "/" + k.ProductID.String()
}

// Metadata renders the key back into the outbound wire form.
func (k CorrelationKey) Metadata() map[string]string {
	return map[string]string{
		MetaUserID:    k.UserID.String(),
		MetaProductID: k.ProductID.String(),
	}
}

// ParseCorrelationKey converts the untyped provider metadata into a typed
// key at the boundary. The raw map never travels deeper into the service.
func ParseCorrelationKey(metadata map[string]string) (CorrelationKey, error) {
	userID, err := uuid.Parse(metadata[MetaUserID])
	if err != nil {
		return CorrelationKey{}, fmt.Errorf("metadata %s: %w", MetaUserID, err)
	}
	productID, err := uuid.Parse(metadata[MetaProductID])
	if err != nil {
		return CorrelationKey{}, fmt.Errorf("metadata %s: %w", MetaProductID, err)
	}
	return CorrelationKey{UserID: userID, ProductID: productID}, nil
}

// Event is a verified, deserialized webhook event.
type Event struct {
	Type string
	// PaymentIntentID is the provider-side charge attempt identifier.
	PaymentIntentID string
	// Metadata is the raw string map from the payment intent. Populated
	// only for terminal payment events.
	Metadata map[string]string
}

// Terminal reports whether the event carries a final payment outcome.
func (e Event) Terminal() bool {
	return e.Type == EventPaymentSucceeded || e.Type == EventPaymentFailed
}

// PaymentGateway is the outbound provider surface plus inbound event
// verification. Implemented by the Stripe client; faked in tests.
type PaymentGateway interface {
	// VerifyAndParse authenticates the raw, unparsed body against the
	// signature header and deserializes it. When no webhook secret is
	// configured the body is trusted as-is (non-production only).
	VerifyAndParse(payload []byte, sigHeader string) (Event, error)

	// CreateCustomer registers an external payer identity for a user.
	CreateCustomer(ctx context.Context, email, fullName string, userID uuid.UUID) (string, error)

	// CreateProduct registers a catalog product with the provider.
	CreateProduct(ctx context.Context, title, image string, key CorrelationKey) (string, error)
	// CreatePrice registers a price (USD cents) for a provider product.
	CreatePrice(ctx context.Context, productRef string, unitAmount int64, key CorrelationKey) (string, error)
	DeactivateProduct(ctx context.Context, productRef string) error
	DeactivatePrice(ctx context.Context, priceRef string) error

	// CreateCheckoutSession builds a one-time purchase-initiation request
	// and returns the hosted payment page URL.
	CreateCheckoutSession(ctx context.Context, customerID, priceRef string, key CorrelationKey) (string, error)
}
