package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopuz/payments-service/pkg/database"
	"github.com/shopuz/payments-service/pkg/models"
	"github.com/shopuz/payments-service/pkg/views"
)

// TransactionRepository defines the interface for the append-only payment
// ledger. There is no update or delete.
type TransactionRepository interface {
	// Create appends a ledger entry for a correlation key. The insert is a
	// no-op when an entry for (user_id, product_id) already exists: the
	// first terminal event wins.
	Create(ctx context.Context, tx pgx.Tx, txn models.Transaction) (pgconn.CommandTag, error)
	ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID, q views.ListQuery) ([]views.TransactionView, bool, error)
	ListAll(ctx context.Context, db *database.DB, q views.ListQuery) ([]views.TransactionView, bool, error)
	CountByUser(ctx context.Context, db *database.DB, userID uuid.UUID) (int64, error)
}

type TransactionRepositoryImpl struct {
}

func NewTransactionRepository() TransactionRepository {
	return &TransactionRepositoryImpl{}
}

func (t TransactionRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, txn models.Transaction) (pgconn.CommandTag, error) {
	return tx.Exec(ctx, `
					INSERT INTO transactions (user_id, product_id, state, amount, provider, created_at)
					VALUES ($1, $2, $3, $4, $5, NOW())
					ON CONFLICT ON CONSTRAINT transactions_correlation_key DO NOTHING`,
		txn.UserID,
		txn.ProductID,
		txn.State,
		txn.Amount,
		txn.Provider,
	)
}

func (t TransactionRepositoryImpl) ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID, q views.ListQuery) ([]views.TransactionView, bool, error) {
	rows, err := db.Query(ctx, fmt.Sprintf(`
		SELECT t.id, '', '', p.title, t.state, t.amount, t.provider, t.created_at
		FROM transactions t
		JOIN products p ON p.id = t.product_id
		WHERE t.user_id = $1
		  AND ($2 = '' OR p.title ILIKE $3)
		ORDER BY t.created_at %s
		LIMIT $4 OFFSET $5`, q.SortOrder()),
		userID, q.SearchQuery, q.LikePattern(), q.PageSize+1, q.Offset())
	if err != nil {
		return nil, false, err
	}
	return collectTransactions(rows, q.PageSize)
}

func (t TransactionRepositoryImpl) ListAll(ctx context.Context, db *database.DB, q views.ListQuery) ([]views.TransactionView, bool, error) {
	rows, err := db.Query(ctx, fmt.Sprintf(`
		SELECT t.id, u.email, u.full_name, p.title, t.state, t.amount, t.provider, t.created_at
		FROM transactions t
		JOIN users u ON u.id = t.user_id
		JOIN products p ON p.id = t.product_id
		WHERE ($1 = '' OR u.full_name ILIKE $2 OR u.email ILIKE $2 OR p.title ILIKE $2)
		ORDER BY t.created_at %s
		LIMIT $3 OFFSET $4`, q.SortOrder()),
		q.SearchQuery, q.LikePattern(), q.PageSize+1, q.Offset())
	if err != nil {
		return nil, false, err
	}
	return collectTransactions(rows, q.PageSize)
}

func (t TransactionRepositoryImpl) CountByUser(ctx context.Context, db *database.DB, userID uuid.UUID) (int64, error) {
	var count int64
	err := db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

func collectTransactions(rows pgx.Rows, pageSize int) ([]views.TransactionView, bool, error) {
	defer rows.Close()
	var txns []views.TransactionView
	for rows.Next() {
		var v views.TransactionView
		var id uuid.UUID
		if err := rows.Scan(&id, &v.UserEmail, &v.UserFullName, &v.ProductTitle, &v.State, &v.Amount, &v.Provider, &v.CreatedAt); err != nil {
			return nil, false, err
		}
		v.ID = id.String()
		txns = append(txns, v)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return trimPage(txns, pageSize)
}
