package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopuz/payments-service/internal/gateway"
	"github.com/shopuz/payments-service/pkg"
	"github.com/shopuz/payments-service/pkg/database"
	"github.com/shopuz/payments-service/pkg/repositories"
	"go.uber.org/zap"
)

// CustomerResolver maps an internal user to its external payer identity,
// creating one lazily on first use. A user has at most one identity; the
// compare-and-swap on the user row keeps that true under concurrent calls
// across process instances.
type CustomerResolver interface {
	Resolve(ctx context.Context, traceID string, userID uuid.UUID) (string, error)
}

type CustomerResolverImpl struct {
	logger   *zap.Logger
	db       *database.DB
	userRepo repositories.UserRepository
	gateway  gateway.PaymentGateway
}

func NewCustomerResolver(logger *zap.Logger, db *database.DB, userRepo repositories.UserRepository, gw gateway.PaymentGateway) CustomerResolver {
	return &CustomerResolverImpl{logger: logger, db: db, userRepo: userRepo, gateway: gw}
}

func (r *CustomerResolverImpl) Resolve(ctx context.Context, traceID string, userID uuid.UUID) (string, error) {
	user, err := r.userRepo.FindByIdRead(ctx, r.db, userID)
	if err != nil {
		return "", pkg.HandleSQLError(traceID, r.logger, err)
	}
	if user.StripeCustomerID != nil {
		return *user.StripeCustomerID, nil
	}

	customerID, err := r.gateway.CreateCustomer(ctx, user.Email, user.FullName, user.ID)
	if err != nil {
		return "", pkg.NewAppError(pkg.ErrServerCode, "failed to create gateway customer", err)
	}

	won, err := r.userRepo.SetStripeCustomerID(ctx, r.db, userID, customerID)
	if err != nil {
		return "", pkg.HandleSQLError(traceID, r.logger, err)
	}
	if won {
		return customerID, nil
	}

	// An identity appeared between our read and the swap: another request
	// created it first. That is success, not an error; return the winner.
	user, err = r.userRepo.FindByIdRead(ctx, r.db, userID)
	if err != nil {
		return "", pkg.HandleSQLError(traceID, r.logger, err)
	}
	if user.StripeCustomerID == nil {
		return "", pkg.NewAppError(pkg.ErrServerCode, "customer identity missing after concurrent creation", errors.New("stripe_customer_id is null"))
	}
	r.logger.Warn("concurrent customer creation; using existing identity",
		zap.String(pkg.TraceId, traceID),
		zap.String("user_id", userID.String()),
		zap.String("orphaned_customer_id", customerID))
	return *user.StripeCustomerID, nil
}
