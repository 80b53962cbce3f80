package pkg

const (
	HeaderTraceId   string = "X-Trace-Id"
	HeaderSignature string = "Stripe-Signature"
)

const (
	TraceId string = "trace_id"
)

// PaymentProvider is the gateway name recorded on every transaction row.
const PaymentProvider = "stripe"

// OrderStatus is admin-mutable after the order is created by reconciliation.
type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "created"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCanceled   OrderStatus = "canceled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// TransactionState is terminal; transaction rows are never updated.
type TransactionState string

const (
	TransactionPaid         TransactionState = "Paid"
	TransactionPaidCanceled TransactionState = "PaidCanceled"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)
