package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopuz/payments-service/pkg"
	"github.com/shopuz/payments-service/pkg/database"
	"github.com/shopuz/payments-service/pkg/models"
	"github.com/shopuz/payments-service/pkg/repositories"
	"github.com/shopuz/payments-service/pkg/views"
	"go.uber.org/zap"
)

// UserService serves a customer's own profile data: orders, ledger,
// favorites, and summary statistics.
type UserService interface {
	GetProfile(ctx context.Context, traceID string, userID uuid.UUID) (models.User, error)
	GetOrders(ctx context.Context, traceID string, userID uuid.UUID, q views.ListQuery) (views.Page[views.OrderView], error)
	GetTransactions(ctx context.Context, traceID string, userID uuid.UUID, q views.ListQuery) (views.Page[views.TransactionView], error)
	GetFavorites(ctx context.Context, traceID string, userID uuid.UUID, q views.ListQuery) (views.Page[models.Product], error)
	AddFavorite(ctx context.Context, traceID string, userID, productID uuid.UUID) error
	RemoveFavorite(ctx context.Context, traceID string, userID, productID uuid.UUID) error
	GetStatistics(ctx context.Context, traceID string, userID uuid.UUID) (views.StatisticsView, error)
}

type UserServiceImpl struct {
	logger       *zap.Logger
	db           *database.DB
	userRepo     repositories.UserRepository
	orderRepo    repositories.OrderRepository
	txnRepo      repositories.TransactionRepository
	favoriteRepo repositories.FavoriteRepository
	productRepo  repositories.ProductRepository
}

func NewUserService(
	logger *zap.Logger,
	db *database.DB,
	userRepo repositories.UserRepository,
	orderRepo repositories.OrderRepository,
	txnRepo repositories.TransactionRepository,
	favoriteRepo repositories.FavoriteRepository,
	productRepo repositories.ProductRepository,
) UserService {
	return &UserServiceImpl{
		logger:       logger,
		db:           db,
		userRepo:     userRepo,
		orderRepo:    orderRepo,
		txnRepo:      txnRepo,
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
	}
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, traceID string, userID uuid.UUID) (models.User, error) {
	user, err := s.userRepo.FindByIdRead(ctx, s.db, userID)
	if err != nil {
		return models.User{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	return user, nil
}

func (s *UserServiceImpl) GetOrders(ctx context.Context, traceID string, userID uuid.UUID, q views.ListQuery) (views.Page[views.OrderView], error) {
	q.Normalize()
	orders, isNext, err := s.orderRepo.ListByUser(ctx, s.db, userID, q)
	if err != nil {
		return views.Page[views.OrderView]{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	return views.Page[views.OrderView]{Items: orders, IsNext: isNext}, nil
}

func (s *UserServiceImpl) GetTransactions(ctx context.Context, traceID string, userID uuid.UUID, q views.ListQuery) (views.Page[views.TransactionView], error) {
	q.Normalize()
	txns, isNext, err := s.txnRepo.ListByUser(ctx, s.db, userID, q)
	if err != nil {
		return views.Page[views.TransactionView]{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	return views.Page[views.TransactionView]{Items: txns, IsNext: isNext}, nil
}

func (s *UserServiceImpl) GetFavorites(ctx context.Context, traceID string, userID uuid.UUID, q views.ListQuery) (views.Page[models.Product], error) {
	q.Normalize()
	products, isNext, err := s.productRepo.ListFavorites(ctx, s.db, userID, q)
	if err != nil {
		return views.Page[models.Product]{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	return views.Page[models.Product]{Items: products, IsNext: isNext}, nil
}

func (s *UserServiceImpl) AddFavorite(ctx context.Context, traceID string, userID, productID uuid.UUID) error {
	added, err := s.favoriteRepo.Add(ctx, s.db, userID, productID)
	if err != nil {
		return pkg.HandleSQLError(traceID, s.logger, err)
	}
	if !added {
		return pkg.NewAppError(pkg.ErrBusinessRuleCode, "product already in favorites", nil)
	}
	return nil
}

func (s *UserServiceImpl) RemoveFavorite(ctx context.Context, traceID string, userID, productID uuid.UUID) error {
	removed, err := s.favoriteRepo.Remove(ctx, s.db, userID, productID)
	if err != nil {
		return pkg.HandleSQLError(traceID, s.logger, err)
	}
	if !removed {
		return pkg.NewAppError(pkg.ErrRecordNotFoundCode, "product not in favorites", nil)
	}
	return nil
}

func (s *UserServiceImpl) GetStatistics(ctx context.Context, traceID string, userID uuid.UUID) (views.StatisticsView, error) {
	orders, err := s.orderRepo.CountByUser(ctx, s.db, userID)
	if err != nil {
		return views.StatisticsView{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	txns, err := s.txnRepo.CountByUser(ctx, s.db, userID)
	if err != nil {
		return views.StatisticsView{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	favorites, err := s.favoriteRepo.CountByUser(ctx, s.db, userID)
	if err != nil {
		return views.StatisticsView{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	return views.StatisticsView{
		TotalOrders:       orders,
		TotalTransactions: txns,
		TotalFavorites:    favorites,
	}, nil
}
