// Package payment holds the payment entities.
package payment

import "time"

// Method is how the buyer paid.
type Method string

const (
	MethodTransfer Method = "transfer"
	MethodCash     Method = "cash"
)

// Valid reports whether m is a known payment method.
func (m Method) Valid() bool {
	return m == MethodTransfer || m == MethodCash
}

// Status is the payment review state. Only pending payments may transition,
// and only to confirmed or rejected, by an admin action.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the client may request the given
// transition. Anything except pending→confirmed and pending→rejected is
// refused before a request is built.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && (next == StatusConfirmed || next == StatusRejected)
}

// Payment records a buyer's payment against an order.
type Payment struct {
	ID                   string    `json:"id"`
	OrderID              string    `json:"orderId"`
	Amount               float64   `json:"amount"`
	Method               Method    `json:"paymentMethod"`
	TransactionReference string    `json:"transactionReference,omitempty"`
	Status               Status    `json:"status"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}
