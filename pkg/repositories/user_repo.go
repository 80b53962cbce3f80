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

// UserRepository defines the interface for user storage.
type UserRepository interface {
	// FindById finds a user by ID inside a transaction.
	FindById(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (models.User, error)
	// FindByIdRead finds a user by ID on the read path.
	FindByIdRead(ctx context.Context, db *database.DB, userID uuid.UUID) (models.User, error)
	// SetStripeCustomerID persists the external payer identity with a
	// compare-and-swap; returns false when another writer already set one.
	SetStripeCustomerID(ctx context.Context, db *database.DB, userID uuid.UUID, customerID string) (bool, error)
	// ListCustomers returns the admin customer listing with order aggregates.
	ListCustomers(ctx context.Context, db *database.DB, q views.ListQuery) ([]views.CustomerView, bool, error)
	// Create inserts a user; registration itself lives in the auth
	// collaborator, this exists for seeding demo data.
	Create(ctx context.Context, db *database.DB, user models.User) (uuid.UUID, error)
}

type UserRepositoryImpl struct {
}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

const userColumns = `id, email, full_name, role, stripe_customer_id, created_at, updated_at`

func (u UserRepositoryImpl) FindById(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (models.User, error) {
	if userID == uuid.Nil {
		return models.User{}, fmt.Errorf("invalid user ID: %s", userID.String())
	}
	row := tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

func (u UserRepositoryImpl) FindByIdRead(ctx context.Context, db *database.DB, userID uuid.UUID) (models.User, error) {
	if userID == uuid.Nil {
		return models.User{}, fmt.Errorf("invalid user ID: %s", userID.String())
	}
	row := db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.FullName, &user.Role,
		&user.StripeCustomerID, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func (u UserRepositoryImpl) SetStripeCustomerID(ctx context.Context, db *database.DB, userID uuid.UUID, customerID string) (bool, error) {
	tag, err := db.Exec(ctx, `
						UPDATE users SET stripe_customer_id = $2, updated_at = NOW()
						WHERE id = $1 AND stripe_customer_id IS NULL`,
		userID, customerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (u UserRepositoryImpl) ListCustomers(ctx context.Context, db *database.DB, q views.ListQuery) ([]views.CustomerView, bool, error) {
	rows, err := db.Query(ctx, fmt.Sprintf(`
		SELECT u.id, u.email, u.full_name, u.role,
		       COUNT(o.id) AS order_count,
		       COALESCE(SUM(o.price), 0) AS total_price,
		       u.created_at
		FROM users u
		LEFT JOIN orders o ON o.user_id = u.id
		WHERE ($1 = '' OR u.full_name ILIKE $2 OR u.email ILIKE $2)
		GROUP BY u.id
		ORDER BY u.created_at %s
		LIMIT $3 OFFSET $4`, q.SortOrder()),
		q.SearchQuery, q.LikePattern(), q.PageSize+1, q.Offset())
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var customers []views.CustomerView
	for rows.Next() {
		var c views.CustomerView
		var id uuid.UUID
		if err = rows.Scan(&id, &c.Email, &c.FullName, &c.Role, &c.OrderCount, &c.TotalPrice, &c.CreatedAt); err != nil {
			return nil, false, err
		}
		c.ID = id.String()
		customers = append(customers, c)
	}
	if err = rows.Err(); err != nil {
		return nil, false, err
	}
	return trimPage(customers, q.PageSize)
}

func (u UserRepositoryImpl) Create(ctx context.Context, db *database.DB, user models.User) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRowWrite(ctx, `
						INSERT INTO users (email, full_name, role)
						VALUES ($1, $2, $3)
						RETURNING id`,
		user.Email, user.FullName, user.Role).Scan(&id)
	return id, err
}

// trimPage implements the fetch-one-extra-row pagination used by every
// listing query: the extra row only signals that a next page exists.
func trimPage[T any](items []T, pageSize int) ([]T, bool, error) {
	if len(items) > pageSize {
		return items[:pageSize], true, nil
	}
	return items, false, nil
}
