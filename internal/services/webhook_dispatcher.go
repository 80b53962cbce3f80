package services

import (
	"context"

	"github.com/shopuz/payments-service/internal/gateway"
	"github.com/shopuz/payments-service/pkg"
	middleware "github.com/shopuz/payments-service/pkg/middlewares"
	"go.uber.org/zap"
)

// WebhookDispatcher verifies an inbound provider event and routes it to the
// reconciliation path for its type. Dispatch is synchronous within the HTTP
// request: the response is only written after the transition is durable, so
// a handler error propagates as non-2xx and the provider's redelivery acts
// as the retry mechanism.
type WebhookDispatcher interface {
	Dispatch(ctx context.Context, traceID string, payload []byte, sigHeader string) error
}

type WebhookDispatcherImpl struct {
	logger     *zap.Logger
	gateway    gateway.PaymentGateway
	reconciler ReconcileService
}

func NewWebhookDispatcher(logger *zap.Logger, gw gateway.PaymentGateway, reconciler ReconcileService) WebhookDispatcher {
	return &WebhookDispatcherImpl{logger: logger, gateway: gw, reconciler: reconciler}
}

func (d *WebhookDispatcherImpl) Dispatch(ctx context.Context, traceID string, payload []byte, sigHeader string) error {
	event, err := d.gateway.VerifyAndParse(payload, sigHeader)
	if err != nil {
		middleware.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		return pkg.NewAppError(pkg.ErrSignatureInvalidCode, "webhook verification failed", err)
	}

	if !event.Terminal() {
		// Non-terminal lifecycle events are acknowledged without work;
		// anything else would trigger an infinite provider retry storm.
		middleware.WebhookEvents.WithLabelValues(event.Type, "ignored").Inc()
		d.logger.Debug("ignoring webhook event",
			zap.String(pkg.TraceId, traceID),
			zap.String("event_type", event.Type))
		return nil
	}

	key, err := gateway.ParseCorrelationKey(event.Metadata)
	if err != nil {
		middleware.WebhookEvents.WithLabelValues(event.Type, "failed").Inc()
		return pkg.NewAppError(pkg.ErrCorrelationNotFoundCode, "malformed correlation metadata", err)
	}

	d.logger.Info("dispatching webhook event",
		zap.String(pkg.TraceId, traceID),
		zap.String("event_type", event.Type),
		zap.String("payment_intent", event.PaymentIntentID),
		zap.String("correlation_key", key.String()))

	switch event.Type {
	case gateway.EventPaymentSucceeded:
		err = d.reconciler.CommitSuccess(ctx, traceID, key)
	case gateway.EventPaymentFailed:
		err = d.reconciler.CommitFailure(ctx, traceID, key)
	}
	if err != nil {
		middleware.WebhookEvents.WithLabelValues(event.Type, "failed").Inc()
		return err
	}
	middleware.WebhookEvents.WithLabelValues(event.Type, "reconciled").Inc()
	return nil
}
