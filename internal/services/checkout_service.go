package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopuz/payments-service/internal/gateway"
	"github.com/shopuz/payments-service/pkg"
	"github.com/shopuz/payments-service/pkg/database"
	"github.com/shopuz/payments-service/pkg/repositories"
	"go.uber.org/zap"
)

// CheckoutService builds the outbound purchase-initiation request for a
// user/product pair. The correlation key embedded in the session metadata
// is the only channel by which later webhook events map back to internal
// entities, so both ids go in verbatim.
type CheckoutService interface {
	BuildCheckoutURL(ctx context.Context, traceID string, userID, productID uuid.UUID) (string, error)
}

type CheckoutServiceImpl struct {
	logger      *zap.Logger
	db          *database.DB
	productRepo repositories.ProductRepository
	resolver    CustomerResolver
	gateway     gateway.PaymentGateway
}

func NewCheckoutService(logger *zap.Logger, db *database.DB, productRepo repositories.ProductRepository, resolver CustomerResolver, gw gateway.PaymentGateway) CheckoutService {
	return &CheckoutServiceImpl{
		logger:      logger,
		db:          db,
		productRepo: productRepo,
		resolver:    resolver,
		gateway:     gw,
	}
}

func (s *CheckoutServiceImpl) BuildCheckoutURL(ctx context.Context, traceID string, userID, productID uuid.UUID) (string, error) {
	customerID, err := s.resolver.Resolve(ctx, traceID, userID)
	if err != nil {
		return "", err
	}

	product, err := s.productRepo.FindByIdRead(ctx, s.db, productID)
	if err != nil {
		return "", pkg.HandleSQLError(traceID, s.logger, err)
	}
	if product.StripePriceID == nil {
		return "", pkg.NewAppError(pkg.ErrBusinessRuleCode, "product is not purchasable", pkg.ErrMissingPriceRef)
	}

	key := gateway.CorrelationKey{UserID: userID, ProductID: productID}
	url, err := s.gateway.CreateCheckoutSession(ctx, customerID, *product.StripePriceID, key)
	if err != nil {
		return "", pkg.NewAppError(pkg.ErrServerCode, "failed to create checkout session", err)
	}

	s.logger.Info("checkout session created",
		zap.String(pkg.TraceId, traceID),
		zap.String("correlation_key", key.String()))
	return url, nil
}
