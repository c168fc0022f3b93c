package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every valid order status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderPending, OrderConfirmed, OrderPreparing, OrderCompleted, OrderCancelled,
}

func ValidOrderStatus(s OrderStatus) bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Customer is deduplicated by email: the first order with a new email
// creates the customer, later orders with the same email reuse it.
type Customer struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
}

type Order struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	EventDate     time.Time
	EventTime     string
	GuestCount    int
	VenueAddress  string
	SpecialNotes  string
	Subtotal      float64
	TaxAmount     float64
	TotalAmount   float64
	PaymentStatus PaymentStatus
	PaymentRef    string
	OrderStatus   OrderStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Items         []OrderItem
}

// OrderItem snapshots the catalog name and unit price at order time.
// Later menu price changes never alter historical orders.
type OrderItem struct {
	MenuItemID string
	Name       string
	Quantity   int
	UnitPrice  float64
	TotalPrice float64
}

type MenuCategory struct {
	ID           uuid.UUID
	Name         string
	Description  string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MenuItem struct {
	ID           uuid.UUID
	CategoryID   uuid.UUID
	Name         string
	Description  string
	Price        float64
	Available    bool
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ItemSales is an analytics row: a menu item with its summed ordered
// quantity and revenue across all order items.
type ItemSales struct {
	MenuItemID string
	Name       string
	Quantity   int
	Revenue    float64
}

// Stats is the read-only analytics summary over the order store. It is
// derived state, recomputable at any time from the orders alone.
type Stats struct {
	TotalRevenue      float64
	OrderCounts       map[OrderStatus]int
	AverageOrderValue float64
}
