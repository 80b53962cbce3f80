package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopuz/payments-service/pkg"
	"github.com/shopuz/payments-service/pkg/database"
	"github.com/shopuz/payments-service/pkg/models"
	"github.com/shopuz/payments-service/pkg/views"
)

// OrderRepository defines the interface for order storage.
type OrderRepository interface {
	// Create inserts an order for a correlation key. The insert is a no-op
	// when an order for (user_id, product_id) already exists; callers read
	// RowsAffected to distinguish fresh creation from redelivery.
	Create(ctx context.Context, tx pgx.Tx, order models.Order) (pgconn.CommandTag, error)
	// ExistsByCorrelation reports whether an order exists for the key.
	ExistsByCorrelation(ctx context.Context, tx pgx.Tx, userID, productID uuid.UUID) (bool, error)
	// UpdateStatus sets the admin-owned status and returns the updated row.
	UpdateStatus(ctx context.Context, db *database.DB, orderID uuid.UUID, status pkg.OrderStatus) (models.Order, error)
	ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID, q views.ListQuery) ([]views.OrderView, bool, error)
	ListAll(ctx context.Context, db *database.DB, q views.ListQuery) ([]views.OrderView, bool, error)
	CountByUser(ctx context.Context, db *database.DB, userID uuid.UUID) (int64, error)
}

type OrderRepositoryImpl struct {
}

func NewOrderRepository() OrderRepository {
	return &OrderRepositoryImpl{}
}

func (o OrderRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, order models.Order) (pgconn.CommandTag, error) {
	return tx.Exec(ctx, `
					INSERT INTO orders (user_id, product_id, price, status, created_at, updated_at)
					VALUES ($1, $2, $3, $4, NOW(), NOW())
					ON CONFLICT ON CONSTRAINT orders_correlation_key DO NOTHING`,
		order.UserID,
		order.ProductID,
		order.Price,
		order.Status,
	)
}

func (o OrderRepositoryImpl) ExistsByCorrelation(ctx context.Context, tx pgx.Tx, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
					SELECT EXISTS(SELECT 1 FROM orders WHERE user_id = $1 AND product_id = $2)`,
		userID, productID,
	).Scan(&exists)
	return exists, err
}

func (o OrderRepositoryImpl) UpdateStatus(ctx context.Context, db *database.DB, orderID uuid.UUID, status pkg.OrderStatus) (models.Order, error) {
	var order models.Order
	err := db.QueryRowWrite(ctx, `
					UPDATE orders SET status = $2, updated_at = NOW()
					WHERE id = $1
					RETURNING id, user_id, product_id, price, status, created_at, updated_at`,
		orderID, status,
	).Scan(&order.ID, &order.UserID, &order.ProductID, &order.Price, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	return order, err
}

func (o OrderRepositoryImpl) ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID, q views.ListQuery) ([]views.OrderView, bool, error) {
	rows, err := db.Query(ctx, fmt.Sprintf(`
		SELECT o.id, '', '', p.title, p.image, o.price, o.status, o.created_at
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.user_id = $1
		  AND ($2 = '' OR p.title ILIKE $3)
		ORDER BY o.created_at %s
		LIMIT $4 OFFSET $5`, q.SortOrder()),
		userID, q.SearchQuery, q.LikePattern(), q.PageSize+1, q.Offset())
	if err != nil {
		return nil, false, err
	}
	return collectOrders(rows, q.PageSize)
}

func (o OrderRepositoryImpl) ListAll(ctx context.Context, db *database.DB, q views.ListQuery) ([]views.OrderView, bool, error) {
	rows, err := db.Query(ctx, fmt.Sprintf(`
		SELECT o.id, u.email, u.full_name, p.title, p.image, o.price, o.status, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		JOIN products p ON p.id = o.product_id
		WHERE ($1 = '' OR u.full_name ILIKE $2 OR u.email ILIKE $2 OR p.title ILIKE $2)
		ORDER BY o.created_at %s
		LIMIT $3 OFFSET $4`, q.SortOrder()),
		q.SearchQuery, q.LikePattern(), q.PageSize+1, q.Offset())
	if err != nil {
		return nil, false, err
	}
	return collectOrders(rows, q.PageSize)
}

func (o OrderRepositoryImpl) CountByUser(ctx context.Context, db *database.DB, userID uuid.UUID) (int64, error) {
	var count int64
	err := db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

func collectOrders(rows pgx.Rows, pageSize int) ([]views.OrderView, bool, error) {
	defer rows.Close()
	var orders []views.OrderView
	for rows.Next() {
		var v views.OrderView
		var id uuid.UUID
		if err := rows.Scan(&id, &v.UserEmail, &v.UserFullName, &v.ProductTitle, &v.ProductImage, &v.Price, &v.Status, &v.CreatedAt); err != nil {
			return nil, false, err
		}
		v.ID = id.String()
		orders = append(orders, v)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return trimPage(orders, pageSize)
}
