package services

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/shopuz/payments-service/internal/gateway"
	"github.com/shopuz/payments-service/pkg"
	"github.com/shopuz/payments-service/pkg/database"
	"github.com/shopuz/payments-service/pkg/models"
	"github.com/shopuz/payments-service/pkg/repositories"
	"github.com/shopuz/payments-service/pkg/views"
	"go.uber.org/zap"
)

// AdminService owns catalog mutations (with provider-side product/price
// registration), order status updates, and the back-office listings.
type AdminService interface {
	CreateProduct(ctx context.Context, traceID string, adminID uuid.UUID, req views.ProductRequest) (uuid.UUID, error)
	UpdateProduct(ctx context.Context, traceID string, adminID, productID uuid.UUID, req views.ProductRequest) error
	DeleteProduct(ctx context.Context, traceID string, productID uuid.UUID) error
	UpdateOrderStatus(ctx context.Context, traceID string, orderID uuid.UUID, status pkg.OrderStatus) error

	ListProducts(ctx context.Context, traceID string, q views.ListQuery) (views.Page[models.Product], error)
	ListCustomers(ctx context.Context, traceID string, q views.ListQuery) (views.Page[views.CustomerView], error)
	ListOrders(ctx context.Context, traceID string, q views.ListQuery) (views.Page[views.OrderView], error)
	ListTransactions(ctx context.Context, traceID string, q views.ListQuery) (views.Page[views.TransactionView], error)
}

type AdminServiceImpl struct {
	logger       *zap.Logger
	db           *database.DB
	exchangeRate int64
	productRepo  repositories.ProductRepository
	userRepo     repositories.UserRepository
	orderRepo    repositories.OrderRepository
	txnRepo      repositories.TransactionRepository
	gateway      gateway.PaymentGateway
	catalog      CatalogService
	notifier     Notifier
}

func NewAdminService(
	logger *zap.Logger,
	db *database.DB,
	exchangeRate int64,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	orderRepo repositories.OrderRepository,
	txnRepo repositories.TransactionRepository,
	gw gateway.PaymentGateway,
	catalog CatalogService,
	notifier Notifier,
) AdminService {
	return &AdminServiceImpl{
		logger:       logger,
		db:           db,
		exchangeRate: exchangeRate,
		productRepo:  productRepo,
		userRepo:     userRepo,
		orderRepo:    orderRepo,
		txnRepo:      txnRepo,
		gateway:      gw,
		catalog:      catalog,
		notifier:     notifier,
	}
}

// toUSDCents converts a local minor-unit price into USD cents through the
// configured exchange rate, rounding to the nearest cent.
func toUSDCents(price, exchangeRate int64) int64 {
	usd := float64(price) / float64(exchangeRate)
	return int64(math.Round(usd * 100))
}

func (s *AdminServiceImpl) CreateProduct(ctx context.Context, traceID string, adminID uuid.UUID, req views.ProductRequest) (uuid.UUID, error) {
	productID, err := s.productRepo.Create(ctx, s.db, models.Product{
		Title:    req.Title,
		Image:    req.Image,
		Category: req.Category,
		Price:    req.Price,
	})
	if err != nil {
		return uuid.Nil, pkg.HandleSQLError(traceID, s.logger, err)
	}

	key := gateway.CorrelationKey{UserID: adminID, ProductID: productID}
	productRef, err := s.gateway.CreateProduct(ctx, req.Title, req.Image, key)
	if err != nil {
		return uuid.Nil, pkg.NewAppError(pkg.ErrServerCode, "failed to register product with gateway", err)
	}
	priceRef, err := s.gateway.CreatePrice(ctx, productRef, toUSDCents(req.Price, s.exchangeRate), key)
	if err != nil {
		return uuid.Nil, pkg.NewAppError(pkg.ErrServerCode, "failed to register price with gateway", err)
	}

	if err = s.productRepo.SetStripeRefs(ctx, s.db, productID, productRef, priceRef); err != nil {
		return uuid.Nil, pkg.HandleSQLError(traceID, s.logger, err)
	}

	s.logger.Info("product created",
		zap.String(pkg.TraceId, traceID),
		zap.String("product_id", productID.String()),
		zap.String("price_ref", priceRef))
	return productID, nil
}

func (s *AdminServiceImpl) UpdateProduct(ctx context.Context, traceID string, adminID, productID uuid.UUID, req views.ProductRequest) error {
	product, err := s.productRepo.Update(ctx, s.db, productID, req)
	if err != nil {
		return pkg.HandleSQLError(traceID, s.logger, err)
	}
	s.catalog.InvalidateProduct(ctx, productID)

	if product.StripeProductID == nil {
		// Never registered; nothing provider-side to refresh.
		return nil
	}

	// Stripe prices are immutable: a price change means a new price object.
	key := gateway.CorrelationKey{UserID: adminID, ProductID: productID}
	priceRef, err := s.gateway.CreatePrice(ctx, *product.StripeProductID, toUSDCents(req.Price, s.exchangeRate), key)
	if err != nil {
		return pkg.NewAppError(pkg.ErrServerCode, "failed to register price with gateway", err)
	}
	if err = s.productRepo.SetStripePriceRef(ctx, s.db, productID, priceRef); err != nil {
		return pkg.HandleSQLError(traceID, s.logger, err)
	}
	return nil
}

func (s *AdminServiceImpl) DeleteProduct(ctx context.Context, traceID string, productID uuid.UUID) error {
	product, err := s.productRepo.FindByIdRead(ctx, s.db, productID)
	if err != nil {
		return pkg.HandleSQLError(traceID, s.logger, err)
	}

	if product.StripePriceID != nil {
		if err = s.gateway.DeactivatePrice(ctx, *product.StripePriceID); err != nil {
			return pkg.NewAppError(pkg.ErrServerCode, "failed to deactivate gateway price", err)
		}
	}
	if product.StripeProductID != nil {
		if err = s.gateway.DeactivateProduct(ctx, *product.StripeProductID); err != nil {
			return pkg.NewAppError(pkg.ErrServerCode, "failed to deactivate gateway product", err)
		}
	}

	if err = s.productRepo.Delete(ctx, s.db, productID); err != nil {
		return pkg.HandleSQLError(traceID, s.logger, err)
	}
	s.catalog.InvalidateProduct(ctx, productID)
	return nil
}

func (s *AdminServiceImpl) UpdateOrderStatus(ctx context.Context, traceID string, orderID uuid.UUID, status pkg.OrderStatus) error {
	if !status.Valid() {
		return pkg.NewAppError(pkg.ErrInvalidInputCode, "unknown order status", nil)
	}

	order, err := s.orderRepo.UpdateStatus(ctx, s.db, orderID, status)
	if err != nil {
		return pkg.HandleSQLError(traceID, s.logger, err)
	}

	user, err := s.userRepo.FindByIdRead(ctx, s.db, order.UserID)
	if err != nil {
		return pkg.HandleSQLError(traceID, s.logger, err)
	}
	product, err := s.productRepo.FindByIdRead(ctx, s.db, order.ProductID)
	if err != nil {
		return pkg.HandleSQLError(traceID, s.logger, err)
	}

	s.notifier.NotifyStatusChange(user, product, string(status))
	return nil
}

func (s *AdminServiceImpl) ListProducts(ctx context.Context, traceID string, q views.ListQuery) (views.Page[models.Product], error) {
	q.Normalize()
	products, isNext, err := s.productRepo.List(ctx, s.db, q)
	if err != nil {
		return views.Page[models.Product]{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	return views.Page[models.Product]{Items: products, IsNext: isNext}, nil
}

func (s *AdminServiceImpl) ListCustomers(ctx context.Context, traceID string, q views.ListQuery) (views.Page[views.CustomerView], error) {
	q.Normalize()
	customers, isNext, err := s.userRepo.ListCustomers(ctx, s.db, q)
	if err != nil {
		return views.Page[views.CustomerView]{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	return views.Page[views.CustomerView]{Items: customers, IsNext: isNext}, nil
}

func (s *AdminServiceImpl) ListOrders(ctx context.Context, traceID string, q views.ListQuery) (views.Page[views.OrderView], error) {
	q.Normalize()
	orders, isNext, err := s.orderRepo.ListAll(ctx, s.db, q)
	if err != nil {
		return views.Page[views.OrderView]{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	return views.Page[views.OrderView]{Items: orders, IsNext: isNext}, nil
}

func (s *AdminServiceImpl) ListTransactions(ctx context.Context, traceID string, q views.ListQuery) (views.Page[views.TransactionView], error) {
	q.Normalize()
	txns, isNext, err := s.txnRepo.ListAll(ctx, s.db, q)
	if err != nil {
		return views.Page[views.TransactionView]{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	return views.Page[views.TransactionView]{Items: txns, IsNext: isNext}, nil
}
