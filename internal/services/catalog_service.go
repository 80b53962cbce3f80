package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopuz/payments-service/pkg"
	"github.com/shopuz/payments-service/pkg/database"
	"github.com/shopuz/payments-service/pkg/models"
	"github.com/shopuz/payments-service/pkg/repositories"
	"github.com/shopuz/payments-service/pkg/views"
	"go.uber.org/zap"
)

const (
	productCacheKeyPrefix = "product:"
	productCacheTTL       = 5 * time.Minute
)

// CatalogService serves the read-only storefront catalog. Single-product
// reads go through a Redis cache-aside layer; admin mutations invalidate.
type CatalogService interface {
	GetProducts(ctx context.Context, traceID string, q views.ListQuery) (views.Page[models.Product], error)
	GetProduct(ctx context.Context, traceID string, productID uuid.UUID) (models.Product, error)
	// InvalidateProduct drops the cached entry after an admin mutation.
	InvalidateProduct(ctx context.Context, productID uuid.UUID)
}

type CatalogServiceImpl struct {
	logger      *zap.Logger
	db          *database.DB
	redisClient *redis.Client
	productRepo repositories.ProductRepository
}

func NewCatalogService(logger *zap.Logger, db *database.DB, redisClient *redis.Client, productRepo repositories.ProductRepository) CatalogService {
	return &CatalogServiceImpl{
		logger:      logger,
		db:          db,
		redisClient: redisClient,
		productRepo: productRepo,
	}
}

func (s *CatalogServiceImpl) GetProducts(ctx context.Context, traceID string, q views.ListQuery) (views.Page[models.Product], error) {
	q.Normalize()
	products, isNext, err := s.productRepo.List(ctx, s.db, q)
	if err != nil {
		return views.Page[models.Product]{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	return views.Page[models.Product]{Items: products, IsNext: isNext}, nil
}

func (s *CatalogServiceImpl) GetProduct(ctx context.Context, traceID string, productID uuid.UUID) (models.Product, error) {
	cacheKey := productCacheKeyPrefix + productID.String()

	if s.redisClient != nil {
		if raw, err := s.redisClient.Get(ctx, cacheKey).Bytes(); err == nil {
			var product models.Product
			if err = json.Unmarshal(raw, &product); err == nil {
				return product, nil
			}
			// Corrupt entry: fall through to the database.
			s.redisClient.Del(ctx, cacheKey)
		}
	}

	product, err := s.productRepo.FindByIdRead(ctx, s.db, productID)
	if err != nil {
		return models.Product{}, pkg.HandleSQLError(traceID, s.logger, err)
	}

	if s.redisClient != nil {
		if raw, err := json.Marshal(product); err == nil {
			if err = s.redisClient.Set(ctx, cacheKey, raw, productCacheTTL).Err(); err != nil {
				s.logger.Warn("product cache write failed", zap.String(pkg.TraceId, traceID), zap.Error(err))
			}
		}
	}
	return product, nil
}

func (s *CatalogServiceImpl) InvalidateProduct(ctx context.Context, productID uuid.UUID) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, productCacheKeyPrefix+productID.String()).Err(); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.String("product_id", productID.String()), zap.Error(err))
	}
}
