package views

import "time"

// NotificationKind discriminates customer notification events on the
// notifications topic. The mail collaborator consumes these.
type NotificationKind string

const (
	NotifyPaymentSuccess     NotificationKind = "payment_success"
	NotifyPaymentCanceled    NotificationKind = "payment_canceled"
	NotifyOrderStatusChanged NotificationKind = "order_status_changed"
)

// NotificationEvent is the message published after a state transition
// commits. Publishing is fire-and-forget relative to the transition.
type NotificationEvent struct {
	Kind         NotificationKind `json:"kind"`
	UserID       string           `json:"userId"`
	Email        string           `json:"email"`
	FullName     string           `json:"fullName"`
	ProductTitle string           `json:"productTitle"`
	Amount       int64            `json:"amount,omitempty"`
	OrderStatus  string           `json:"orderStatus,omitempty"`
	OccurredAt   time.Time        `json:"occurredAt"`
}
