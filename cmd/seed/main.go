// Demo data seeder: inserts users and products directly through the
// repositories so a fresh environment has something to browse and buy.
//
// Example:
//
//	go run ./cmd/seed -noOfUsers=50 -noOfProducts=200
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopuz/payments-service/configs"
	"github.com/shopuz/payments-service/pkg"
	"github.com/shopuz/payments-service/pkg/database"
	"github.com/shopuz/payments-service/pkg/models"
	"github.com/shopuz/payments-service/pkg/repositories"
	"go.uber.org/zap"
)

var (
	noOfUsers    = flag.Int("noOfUsers", 20, "Number of demo users to seed")
	noOfProducts = flag.Int("noOfProducts", 100, "Number of demo products to seed")
	adminEmail   = flag.String("adminEmail", "admin@shopuz.dev", "Email for the seeded admin user")
)

var categories = []string{"phones", "laptops", "tablets", "watches", "accessories"}

func main() {
	flag.Parse()

	logger := pkg.NewLogger()
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := configs.Load(logger)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, closer, err := database.New(ctx, logger, database.Config{
		PrimaryDSN: cfg.PrimaryDbAddr,
		MaxConns:   cfg.MaxDbCons,
		MinConns:   cfg.MinDbCons,
	})
	if err != nil {
		logger.Fatal("failed to init db", zap.Error(err))
	}
	defer closer()

	if err = database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	userRepo := repositories.NewUserRepository()
	productRepo := repositories.NewProductRepository()

	adminID, err := userRepo.Create(ctx, db, models.User{
		Email:    *adminEmail,
		FullName: "Shop Admin",
		Role:     pkg.RoleAdmin,
	})
	if err != nil {
		logger.Fatal("failed to seed admin", zap.Error(err))
	}
	logger.Info("admin seeded", zap.String("user_id", adminID.String()), zap.String("email", *adminEmail))

	for i := 0; i < *noOfUsers; i++ {
		email := fmt.Sprintf("user%03d@example.com", i)
		id, err := userRepo.Create(ctx, db, models.User{
			Email:    email,
			FullName: fmt.Sprintf("Demo User %03d", i),
			Role:     pkg.RoleUser,
		})
		if err != nil {
			logger.Fatal("failed to seed user", zap.String("email", email), zap.Error(err))
		}
		logger.Debug("user seeded", zap.String("user_id", id.String()))
	}

	for i := 0; i < *noOfProducts; i++ {
		category := categories[rand.Intn(len(categories))]
		id, err := productRepo.Create(ctx, db, models.Product{
			Title:    fmt.Sprintf("%s item %03d", category, i),
			Image:    fmt.Sprintf("https://cdn.shopuz.dev/%s/%03d.png", category, i),
			Category: category,
			// local minor units; 100k..5M keeps prices in a plausible range
			Price: int64(100_000 + rand.Intn(4_900_000)),
		})
		if err != nil {
			logger.Fatal("failed to seed product", zap.Error(err))
		}
		logger.Debug("product seeded", zap.String("product_id", id.String()))
	}

	logger.Info("seeding completed",
		zap.Int("users", *noOfUsers+1),
		zap.Int("products", *noOfProducts))
}
