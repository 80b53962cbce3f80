package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopuz/payments-service/pkg/utils"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// StripeConfig holds the gateway credentials and checkout redirect targets.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string // empty disables verification (non-production only)
	ClientURL     string // success/cancel redirect base
}

// StripeGateway implements PaymentGateway on stripe-go. It is constructed
// once at process start and injected; no package-level client state.
type StripeGateway struct {
	logger *zap.Logger
	cfg    StripeConfig
	sc     *client.API
}

func NewStripeGateway(logger *zap.Logger, cfg StripeConfig) *StripeGateway {
	sc := &client.API{}
	// Route all Stripe calls through the shared tuned transport.
	httpClient := utils.NewHTTPClient()
	sc.Init(cfg.SecretKey, stripe.NewBackends(httpClient))

	if utils.IsEmpty(cfg.WebhookSecret) {
		logger.Warn("stripe webhook secret not configured; inbound events will NOT be verified (insecure, dev only)")
	}
	return &StripeGateway{logger: logger, cfg: cfg, sc: sc}
}

// VerifyAndParse authenticates the exact bytes received. The body must not
// be re-serialized before verification or the signature breaks.
func (g *StripeGateway) VerifyAndParse(payload []byte, sigHeader string) (Event, error) {
	var event stripe.Event

	if !utils.IsEmpty(g.cfg.WebhookSecret) {
		verified, err := webhook.ConstructEvent(payload, sigHeader, g.cfg.WebhookSecret)
		if err != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
		event = verified
	} else {
		// Trust-the-caller fallback, flagged at construction time.
		if err := json.Unmarshal(payload, &event); err != nil {
			return Event{}, fmt.Errorf("decode webhook body: %w", err)
		}
	}

	out := Event{Type: string(event.Type)}
	if !out.Terminal() {
		return out, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return Event{}, fmt.Errorf("decode payment intent: %w", err)
	}
	out.PaymentIntentID = intent.ID
	out.Metadata = intent.Metadata
	return out, nil
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, email, fullName string, userID uuid.UUID) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(fullName),
	}
	params.Context = ctx
	params.AddMetadata(MetaUserID, userID.String())

	customer, err := g.sc.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	g.logger.Info("stripe customer created",
		zap.String("user_id", userID.String()),
		zap.String("customer_id", customer.ID))
	return customer.ID, nil
}

func (g *StripeGateway) CreateProduct(ctx context.Context, title, image string, key CorrelationKey) (string, error) {
	params := &stripe.ProductParams{
		Name: stripe.String(title),
	}
	params.Context = ctx
	if !utils.IsEmpty(image) {
		params.Images = stripe.StringSlice([]string{image})
	}
	for k, v := range key.Metadata() {
		params.AddMetadata(k, v)
	}

	product, err := g.sc.Products.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe product: %w", err)
	}
	return product.ID, nil
}

func (g *StripeGateway) CreatePrice(ctx context.Context, productRef string, unitAmount int64, key CorrelationKey) (string, error) {
	params := &stripe.PriceParams{
		Product:    stripe.String(productRef),
		UnitAmount: stripe.Int64(unitAmount),
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
	}
	params.Context = ctx
	for k, v := range key.Metadata() {
		params.AddMetadata(k, v)
	}

	price, err := g.sc.Prices.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe price: %w", err)
	}
	return price.ID, nil
}

func (g *StripeGateway) DeactivateProduct(ctx context.Context, productRef string) error {
	params := &stripe.ProductParams{Active: stripe.Bool(false)}
	params.Context = ctx
	if _, err := g.sc.Products.Update(productRef, params); err != nil {
		return fmt.Errorf("deactivate stripe product: %w", err)
	}
	return nil
}

func (g *StripeGateway) DeactivatePrice(ctx context.Context, priceRef string) error {
	params := &stripe.PriceParams{Active: stripe.Bool(false)}
	params.Context = ctx
	if _, err := g.sc.Prices.Update(priceRef, params); err != nil {
		return fmt.Errorf("deactivate stripe price: %w", err)
	}
	return nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, customerID, priceRef string, key CorrelationKey) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceRef), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s/success?productId=%s&userId=%s", g.cfg.ClientURL, key.ProductID, key.UserID)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/cancel?productId=%s&userId=%s", g.cfg.ClientURL, key.ProductID, key.UserID)),
		// The payment-intent metadata is what webhook events echo back, so
		// the correlation key goes on both the session and the intent.
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: key.Metadata(),
		},
	}
	params.Context = ctx
	for k, v := range key.Metadata() {
		params.AddMetadata(k, v)
	}

	session, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return session.URL, nil
}
