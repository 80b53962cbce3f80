package views

// CheckoutRequest initiates a one-time purchase for a user/product pair.
type CheckoutRequest struct {
	UserID    string `json:"userId" binding:"required,uuid"`
	ProductID string `json:"productId" binding:"required,uuid"`
}

// CheckoutResponse carries the provider-hosted payment page URL.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// ProductRequest is the admin create/update payload.
type ProductRequest struct {
	Title    string `json:"title" binding:"required"`
	Image    string `json:"image"`
	Category string `json:"category"`
	Price    int64  `json:"price" binding:"required,gt=0"` // local minor units
}

// OrderStatusRequest is the admin order-status update payload.
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// FavoriteRequest adds a product to the caller's favorites.
type FavoriteRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
}
