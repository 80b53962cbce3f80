package models

import (
	"time"

	"github.com/google/uuid"
)

// Product maps to table `products`. Price is in local minor units; the
// catalog value is authoritative for every reconciliation.
type Product struct {
	ID              uuid.UUID
	Title           string
	Image           string
	Category        string
	Price           int64
	StripeProductID *string
	StripePriceID   *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
