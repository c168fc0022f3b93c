package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventDetails carries the when/where of a booked event.
type EventDetails struct {
	Date         time.Time
	Time         string
	GuestCount   int
	VenueAddress string
	SpecialNotes string
}

// NewOrder builds a pending order for the given customer, pricing every
// line item and the order totals. Item totals and order totals are
// rounded to cents; the item unit prices are stored as given.
func NewOrder(customerID uuid.UUID, event EventDetails, items []OrderItem, now time.Time) Order {
	priced := make([]OrderItem, len(items))
	for i, it := range items {
		it.TotalPrice = Round2(it.UnitPrice * float64(it.Quantity))
		priced[i] = it
	}

	subtotal := Round2(Subtotal(items))
	tax := Tax(subtotal)

	return Order{
		ID:            uuid.New(),
		CustomerID:    customerID,
		EventDate:     event.Date,
		EventTime:     event.Time,
		GuestCount:    event.GuestCount,
		VenueAddress:  event.VenueAddress,
		SpecialNotes:  event.SpecialNotes,
		Subtotal:      subtotal,
		TaxAmount:     tax,
		TotalAmount:   Round2(subtotal + tax),
		PaymentStatus: PaymentPending,
		OrderStatus:   OrderPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         priced,
	}
}
