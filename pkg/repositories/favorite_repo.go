package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopuz/payments-service/pkg/database"
)

// FavoriteRepository defines the interface for user favorites.
type FavoriteRepository interface {
	// Add marks a product as favorite; returns false if it already was.
	Add(ctx context.Context, db *database.DB, userID, productID uuid.UUID) (bool, error)
	// Remove unmarks a product; returns false if it was not a favorite.
	Remove(ctx context.Context, db *database.DB, userID, productID uuid.UUID) (bool, error)
	CountByUser(ctx context.Context, db *database.DB, userID uuid.UUID) (int64, error)
}

type FavoriteRepositoryImpl struct {
}

func NewFavoriteRepository() FavoriteRepository {
	return &FavoriteRepositoryImpl{}
}

func (f FavoriteRepositoryImpl) Add(ctx context.Context, db *database.DB, userID, productID uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx, `
					INSERT INTO favorites (user_id, product_id, created_at)
					VALUES ($1, $2, NOW())
					ON CONFLICT DO NOTHING`,
		userID, productID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (f FavoriteRepositoryImpl) Remove(ctx context.Context, db *database.DB, userID, productID uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (f FavoriteRepositoryImpl) CountByUser(ctx context.Context, db *database.DB, userID uuid.UUID) (int64, error) {
	var count int64
	err := db.QueryRow(ctx, `SELECT COUNT(*) FROM favorites WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}
