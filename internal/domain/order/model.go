// Package order holds the purchase order entities.
package order

import "time"

// Status is the server-owned order lifecycle state. The client only reads
// and displays it; the only transitions it may request are create and cancel.
type Status string

const (
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether the client may still request cancellation.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusPaid
}

// Order is a purchase of a service by a buyer.
type Order struct {
	ID          string          `json:"id"`
	ServiceID   string          `json:"serviceId"`
	Service     *ServiceSummary `json:"service,omitempty"`
	BuyerID     string          `json:"buyerId"`
	SellerID    string          `json:"sellerId"`
	Status      Status          `json:"status"`
	TotalAmount float64         `json:"totalAmount"`
	Message     string          `json:"message,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ServiceSummary is the denormalized service view attached to an order:
// what the listing looked like at purchase time.
type ServiceSummary struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	SellerID   string  `json:"sellerId"`
	SellerName string  `json:"sellerName"`
}
