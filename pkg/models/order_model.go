package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopuz/payments-service/pkg"
)

// Order maps to table `orders`. Price snapshots the product price at
// reconciliation time; status is owned by the admin workflow afterwards.
type Order struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Price     int64
	Status    pkg.OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
