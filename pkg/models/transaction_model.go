package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopuz/payments-service/pkg"
)

// Transaction maps to table `transactions`. Rows are append-only ledger
// entries; one per terminal payment event.
type Transaction struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	State     pkg.TransactionState
	Amount    int64
	Provider  string
	CreatedAt time.Time
}
