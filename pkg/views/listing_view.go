package views

import (
	"strings"
	"time"

	"github.com/shopuz/payments-service/pkg"
)

// ListQuery carries the shared pagination/search parameters of every
// listing endpoint.
type ListQuery struct {
	SearchQuery string `form:"searchQuery"`
	Filter      string `form:"filter"` // newest | oldest
	Category    string `form:"category"`
	Page        int    `form:"page"`
	PageSize    int    `form:"pageSize"`
}

// Normalize applies defaults and caps the page size.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
}

// Offset returns the row offset for the normalized query.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// SortOrder maps the filter value onto a SQL sort direction.
func (q ListQuery) SortOrder() string {
	if q.Filter == "oldest" {
		return "ASC"
	}
	return "DESC"
}

// LikePattern escapes LIKE metacharacters in the search query and wraps it
// for a contains match.
func (q ListQuery) LikePattern() string {
	s := q.SearchQuery
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return "%" + s + "%"
}

// Page is a single page of a listing plus a has-more marker.
type Page[T any] struct {
	Items  []T  `json:"items"`
	IsNext bool `json:"isNext"`
}

// OrderView joins an order with its product title for listings.
type OrderView struct {
	ID           string          `json:"id"`
	UserEmail    string          `json:"userEmail,omitempty"`
	UserFullName string          `json:"userFullName,omitempty"`
	ProductTitle string          `json:"productTitle"`
	ProductImage string          `json:"productImage,omitempty"`
	Price        int64           `json:"price"`
	Status       pkg.OrderStatus `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// TransactionView joins a ledger entry with its product title for listings.
type TransactionView struct {
	ID           string               `json:"id"`
	UserEmail    string               `json:"userEmail,omitempty"`
	UserFullName string               `json:"userFullName,omitempty"`
	ProductTitle string               `json:"productTitle"`
	State        pkg.TransactionState `json:"state"`
	Amount       int64                `json:"amount"`
	Provider     string               `json:"provider"`
	CreatedAt    time.Time            `json:"createdAt"`
}

// CustomerView is the admin customer listing row with order aggregates.
type CustomerView struct {
	ID         string       `json:"id"`
	Email      string       `json:"email"`
	FullName   string       `json:"fullName"`
	Role       pkg.UserRole `json:"role"`
	OrderCount int64        `json:"orderCount"`
	TotalPrice int64        `json:"totalPrice"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// StatisticsView is the per-user profile summary.
type StatisticsView struct {
	TotalOrders       int64 `json:"totalOrders"`
	TotalTransactions int64 `json:"totalTransactions"`
	TotalFavorites    int64 `json:"totalFavorites"`
}
