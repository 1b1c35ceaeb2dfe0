package models

import "time"

const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Order is a customer's purchase. Orders are written by the checkout
// system; the gateway only reads them to hand out downloads.
type Order struct {
	ID        string
	UserID    string
	Status    string
	CreatedAt time.Time
}
