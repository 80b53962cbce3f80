package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopuz/payments-service/configs"
	"github.com/shopuz/payments-service/internal/gateway"
	"github.com/shopuz/payments-service/internal/handlers"
	"github.com/shopuz/payments-service/internal/services"
	"github.com/shopuz/payments-service/pkg"
	"github.com/shopuz/payments-service/pkg/cache"
	"github.com/shopuz/payments-service/pkg/database"
	kafkautils "github.com/shopuz/payments-service/pkg/kafka"
	middleware "github.com/shopuz/payments-service/pkg/middlewares"
	"github.com/shopuz/payments-service/pkg/repositories"
	"go.uber.org/zap"
)

// NewApp wires dependencies, builds the Gin engine, and returns an *http.Server and a cleanup func.
// It reads configuration from environment variables via configs.Load.
func NewApp(ctx context.Context, logger *zap.Logger) (*http.Server, func(), error) {
	// Load config
	cfg, err := configs.Load(logger)
	if err != nil {
		return nil, nil, err
	}

	// Initialize postgres db
	dbConfig := database.Config{
		PrimaryDSN:  cfg.PrimaryDbAddr,
		ReplicaDSNs: []string{cfg.ReplicaDbAddr},
		MaxConns:    cfg.MaxDbCons,
		MinConns:    cfg.MinDbCons,
	}
	db, disconnect, err := database.New(ctx, logger, dbConfig)
	if err != nil {
		return nil, nil, err
	}

	// Run migrations on primary
	if err = database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
		disconnect()
		return nil, nil, err
	}

	// Redis for catalog cache and the distributed checkout limiter
	redisClient, closeRedis, err := cache.New(ctx, cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		disconnect()
		return nil, nil, err
	}

	// Ensure the notification topic exists before producing to it
	err = kafkautils.InitKafkaTopics(logger, ctx, kafkautils.KafkaConfig{
		BootstrapServers: cfg.KafkaBrokers,
		Topics: []kafkautils.TopicConfig{{
			Topic:             cfg.NotificationTopic,
			NumPartitions:     cfg.NotificationPartitions,
			ReplicationFactor: 1,
		}},
	})
	if err != nil {
		closeRedis()
		disconnect()
		return nil, nil, err
	}

	notifier, err := services.NewKafkaNotifier(logger, services.KafkaNotifierConfig{
		Brokers:   cfg.KafkaBrokers,
		Topic:     cfg.NotificationTopic,
		Partition: uint32(cfg.NotificationPartitions),
	})
	if err != nil {
		closeRedis()
		disconnect()
		return nil, nil, err
	}

	// Payment gateway
	gw := gateway.NewStripeGateway(logger, gateway.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		ClientURL:     cfg.ClientURL,
	})

	// Repositories
	userRepo := repositories.NewUserRepository()
	productRepo := repositories.NewProductRepository()
	orderRepo := repositories.NewOrderRepository()
	txnRepo := repositories.NewTransactionRepository()
	favoriteRepo := repositories.NewFavoriteRepository()

	// Services
	reconciler := services.NewReconcileService(logger, db, userRepo, productRepo, orderRepo, txnRepo, notifier)
	dispatcher := services.NewWebhookDispatcher(logger, gw, reconciler)
	resolver := services.NewCustomerResolver(logger, db, userRepo, gw)
	checkoutService := services.NewCheckoutService(logger, db, productRepo, resolver, gw)
	catalogService := services.NewCatalogService(logger, db, redisClient, productRepo)
	userService := services.NewUserService(logger, db, userRepo, orderRepo, txnRepo, favoriteRepo, productRepo)
	adminService := services.NewAdminService(logger, db, cfg.ExchangeRate, productRepo, userRepo, orderRepo, txnRepo, gw, catalogService, notifier)

	limiter := pkg.NewDistributedLimiter(redisClient, "checkout:rate", cfg.CheckoutRatePerSec, cfg.CheckoutRateBurst, time.Second, logger)

	// Handlers
	baseHandler := handlers.NewBaseHandler(logger)
	webhookHandler := handlers.NewWebhookHandler(logger, dispatcher)
	checkoutHandler := handlers.NewCheckoutHandler(logger, checkoutService, limiter)
	catalogHandler := handlers.NewCatalogHandler(logger, catalogService)
	userHandler := handlers.NewUserHandler(logger, userService)
	adminHandler := handlers.NewAdminHandler(logger, adminService, userService)

	// Router
	r := gin.Default()

	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	api.Use(middleware.Metrics())

	webhookHandler.RegisterRoutes(api)
	checkoutHandler.RegisterRoutes(api)
	catalogHandler.RegisterRoutes(api)
	userHandler.RegisterRoutes(api)
	adminHandler.RegisterRoutes(api)
	baseHandler.RegisterRoutes(r)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	cleanup := func() {
		// flush pending notifications, then close connections
		notifier.Close()
		closeRedis()
		disconnect()
	}

	return srv, cleanup, nil
}
