package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopuz/payments-service/pkg"
)

// User maps to table `users`.
type User struct {
	ID       uuid.UUID
	Email    string
	FullName string
	Role     pkg.UserRole
	// StripeCustomerID is the external payer identity, created lazily
	// at most once per user.
	StripeCustomerID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
