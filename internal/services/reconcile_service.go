package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopuz/payments-service/internal/gateway"
	"github.com/shopuz/payments-service/pkg"
	"github.com/shopuz/payments-service/pkg/database"
	"github.com/shopuz/payments-service/pkg/models"
	"github.com/shopuz/payments-service/pkg/repositories"
	"go.uber.org/zap"
)

// ReconcileService converts a verified terminal payment event into durable
// internal state: an Order plus a Paid transaction on success, a
// PaidCanceled transaction on failure. Both operations are idempotent
// against redelivery through the storage-level uniqueness constraint on the
// correlation key; no in-process lock is involved, so any number of
// instances may run behind a load balancer.
type ReconcileService interface {
	CommitSuccess(ctx context.Context, traceID string, key gateway.CorrelationKey) error
	CommitFailure(ctx context.Context, traceID string, key gateway.CorrelationKey) error
}

type ReconcileServiceImpl struct {
	logger      *zap.Logger
	db          database.TxRunner
	userRepo    repositories.UserRepository
	productRepo repositories.ProductRepository
	orderRepo   repositories.OrderRepository
	txnRepo     repositories.TransactionRepository
	notifier    Notifier
}

func NewReconcileService(
	logger *zap.Logger,
	db database.TxRunner,
	userRepo repositories.UserRepository,
	productRepo repositories.ProductRepository,
	orderRepo repositories.OrderRepository,
	txnRepo repositories.TransactionRepository,
	notifier Notifier,
) ReconcileService {
	return &ReconcileServiceImpl{
		logger:      logger,
		db:          db,
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		txnRepo:     txnRepo,
		notifier:    notifier,
	}
}

func (s *ReconcileServiceImpl) CommitSuccess(ctx context.Context, traceID string, key gateway.CorrelationKey) error {
	var user models.User
	var product models.Product
	applied := false

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		user, product, err = s.loadCorrelation(ctx, tx, traceID, key)
		if err != nil {
			return err
		}

		// Ledger first: the transactions uniqueness constraint is the
		// idempotency gate for the whole transition. Zero rows affected
		// means a terminal event for this key was already reconciled.
		tag, err := s.txnRepo.Create(ctx, tx, models.Transaction{
			UserID:    key.UserID,
			ProductID: key.ProductID,
			State:     pkg.TransactionPaid,
			Amount:    product.Price, // authoritative catalog price, never the event's
			Provider:  pkg.PaymentProvider,
		})
		if err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		if tag.RowsAffected() == 0 {
			s.logger.Warn("duplicate terminal event; keeping first outcome",
				zap.String(pkg.TraceId, traceID),
				zap.String("correlation_key", key.String()))
			return nil
		}

		if _, err = s.orderRepo.Create(ctx, tx, models.Order{
			UserID:    key.UserID,
			ProductID: key.ProductID,
			Price:     product.Price,
			Status:    pkg.OrderStatusCreated,
		}); err != nil {
			// Surfacing the error keeps the transaction atomic: the ledger
			// insert rolls back and the provider redelivers.
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return err
	}

	if applied {
		s.logger.Info("payment reconciled",
			zap.String(pkg.TraceId, traceID),
			zap.String("correlation_key", key.String()),
			zap.Int64("amount", product.Price))
		s.notifier.NotifySuccess(user, product, product.Price)
	}
	return nil
}

func (s *ReconcileServiceImpl) CommitFailure(ctx context.Context, traceID string, key gateway.CorrelationKey) error {
	var user models.User
	var product models.Product
	applied := false

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		user, product, err = s.loadCorrelation(ctx, tx, traceID, key)
		if err != nil {
			return err
		}

		tag, err := s.txnRepo.Create(ctx, tx, models.Transaction{
			UserID:    key.UserID,
			ProductID: key.ProductID,
			State:     pkg.TransactionPaidCanceled,
			Amount:    product.Price,
			Provider:  pkg.PaymentProvider,
		})
		if err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		if tag.RowsAffected() == 0 {
			s.logger.Warn("duplicate terminal event; keeping first outcome",
				zap.String(pkg.TraceId, traceID),
				zap.String("correlation_key", key.String()))
			return nil
		}
		applied = true
		return nil
	})
	if err != nil {
		return err
	}

	if applied {
		s.logger.Info("failed payment recorded",
			zap.String(pkg.TraceId, traceID),
			zap.String("correlation_key", key.String()))
		s.notifier.NotifyFailure(user, product, product.Price)
	}
	return nil
}

// loadCorrelation resolves the event's correlation key against the user and
// catalog stores. A missing record is a data-integrity alert: a checkout was
// created for an entity that no longer exists, and silently accepting the
// event would permanently lose the payment record.
func (s *ReconcileServiceImpl) loadCorrelation(ctx context.Context, tx pgx.Tx, traceID string, key gateway.CorrelationKey) (models.User, models.Product, error) {
	user, err := s.userRepo.FindById(ctx, tx, key.UserID)
	if err != nil {
		return models.User{}, models.Product{}, s.correlationError(traceID, key, "user", err)
	}
	product, err := s.productRepo.FindById(ctx, tx, key.ProductID)
	if err != nil {
		return models.User{}, models.Product{}, s.correlationError(traceID, key, "product", err)
	}
	return user, product, nil
}

func (s *ReconcileServiceImpl) correlationError(traceID string, key gateway.CorrelationKey, entity string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Error("data integrity alert: payment event references missing record",
			zap.String(pkg.TraceId, traceID),
			zap.String("entity", entity),
			zap.String("correlation_key", key.String()))
		return pkg.NewAppError(pkg.ErrCorrelationNotFoundCode, "event references unknown "+entity, err)
	}
	return pkg.HandleSQLError(traceID, s.logger, err)
}
