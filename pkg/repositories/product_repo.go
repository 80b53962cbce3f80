package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopuz/payments-service/pkg/database"
	"github.com/shopuz/payments-service/pkg/models"
	"github.com/shopuz/payments-service/pkg/views"
)

// ProductRepository defines the interface for catalog storage. The price
// column is the single authoritative price for reconciliation.
type ProductRepository interface {
	// FindById reads a product inside a transaction (reconciliation price re-read).
	FindById(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (models.Product, error)
	// FindByIdRead reads a product on the read path.
	FindByIdRead(ctx context.Context, db *database.DB, productID uuid.UUID) (models.Product, error)
	Create(ctx context.Context, db *database.DB, product models.Product) (uuid.UUID, error)
	Update(ctx context.Context, db *database.DB, productID uuid.UUID, req views.ProductRequest) (models.Product, error)
	// SetStripeRefs stores the provider-side product and price references.
	SetStripeRefs(ctx context.Context, db *database.DB, productID uuid.UUID, productRef, priceRef string) error
	// SetStripePriceRef replaces only the price reference (price updates).
	SetStripePriceRef(ctx context.Context, db *database.DB, productID uuid.UUID, priceRef string) error
	Delete(ctx context.Context, db *database.DB, productID uuid.UUID) error
	List(ctx context.Context, db *database.DB, q views.ListQuery) ([]models.Product, bool, error)
	// ListFavorites lists the products a user has marked as favorite.
	ListFavorites(ctx context.Context, db *database.DB, userID uuid.UUID, q views.ListQuery) ([]models.Product, bool, error)
}

type ProductRepositoryImpl struct {
}

func NewProductRepository() ProductRepository {
	return &ProductRepositoryImpl{}
}

const productColumns = `id, title, image, category, price, stripe_product_id, stripe_price_id, created_at, updated_at`

func (p ProductRepositoryImpl) FindById(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (models.Product, error) {
	if productID == uuid.Nil {
		return models.Product{}, fmt.Errorf("invalid product ID: %s", productID.String())
	}
	row := tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, productID)
	return scanProduct(row)
}

func (p ProductRepositoryImpl) FindByIdRead(ctx context.Context, db *database.DB, productID uuid.UUID) (models.Product, error) {
	if productID == uuid.Nil {
		return models.Product{}, fmt.Errorf("invalid product ID: %s", productID.String())
	}
	row := db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, productID)
	return scanProduct(row)
}

func scanProduct(row pgx.Row) (models.Product, error) {
	var product models.Product
	err := row.Scan(
		&product.ID, &product.Title, &product.Image, &product.Category, &product.Price,
		&product.StripeProductID, &product.StripePriceID, &product.CreatedAt, &product.UpdatedAt)
	return product, err
}

func (p ProductRepositoryImpl) Create(ctx context.Context, db *database.DB, product models.Product) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRowWrite(ctx, `
					INSERT INTO products (title, image, category, price, created_at, updated_at)
					VALUES ($1, $2, $3, $4, NOW(), NOW())
					RETURNING id`,
		product.Title, product.Image, product.Category, product.Price,
	).Scan(&id)
	return id, err
}

func (p ProductRepositoryImpl) Update(ctx context.Context, db *database.DB, productID uuid.UUID, req views.ProductRequest) (models.Product, error) {
	row := db.QueryRowWrite(ctx, `
					UPDATE products
					SET title = $2, image = $3, category = $4, price = $5, updated_at = NOW()
					WHERE id = $1
					RETURNING `+productColumns,
		productID, req.Title, req.Image, req.Category, req.Price)
	return scanProduct(row)
}

func (p ProductRepositoryImpl) SetStripeRefs(ctx context.Context, db *database.DB, productID uuid.UUID, productRef, priceRef string) error {
	_, err := db.Exec(ctx, `
					UPDATE products SET stripe_product_id = $2, stripe_price_id = $3, updated_at = NOW()
					WHERE id = $1`,
		productID, productRef, priceRef)
	return err
}

func (p ProductRepositoryImpl) SetStripePriceRef(ctx context.Context, db *database.DB, productID uuid.UUID, priceRef string) error {
	_, err := db.Exec(ctx, `UPDATE products SET stripe_price_id = $2, updated_at = NOW() WHERE id = $1`,
		productID, priceRef)
	return err
}

func (p ProductRepositoryImpl) Delete(ctx context.Context, db *database.DB, productID uuid.UUID) error {
	_, err := db.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	return err
}

func (p ProductRepositoryImpl) List(ctx context.Context, db *database.DB, q views.ListQuery) ([]models.Product, bool, error) {
	rows, err := db.Query(ctx, fmt.Sprintf(`
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = '' OR title ILIKE $2)
		  AND ($3 = '' OR $3 = 'All' OR category = $3)
		ORDER BY created_at %s
		LIMIT $4 OFFSET $5`, q.SortOrder()),
		q.SearchQuery, q.LikePattern(), q.Category, q.PageSize+1, q.Offset())
	if err != nil {
		return nil, false, err
	}
	return collectProducts(rows, q.PageSize)
}

func (p ProductRepositoryImpl) ListFavorites(ctx context.Context, db *database.DB, userID uuid.UUID, q views.ListQuery) ([]models.Product, bool, error) {
	rows, err := db.Query(ctx, fmt.Sprintf(`
		SELECT p.id, p.title, p.image, p.category, p.price, p.stripe_product_id, p.stripe_price_id, p.created_at, p.updated_at
		FROM products p
		JOIN favorites f ON f.product_id = p.id
		WHERE f.user_id = $1
		  AND ($2 = '' OR p.title ILIKE $3)
		  AND ($4 = '' OR $4 = 'All' OR p.category = $4)
		ORDER BY p.created_at %s
		LIMIT $5 OFFSET $6`, q.SortOrder()),
		userID, q.SearchQuery, q.LikePattern(), q.Category, q.PageSize+1, q.Offset())
	if err != nil {
		return nil, false, err
	}
	return collectProducts(rows, q.PageSize)
}

func collectProducts(rows pgx.Rows, pageSize int) ([]models.Product, bool, error) {
	defer rows.Close()
	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, false, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return trimPage(products, pageSize)
}
