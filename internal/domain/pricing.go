package domain

import "math"

// GSTRate is the flat 8% goods-and-services tax applied to every
// order subtotal.
const GSTRate = 0.08

// Round2 rounds to two decimal places, half away from zero. Totals are
// rounded here, at the persistence boundary; intermediate arithmetic
// keeps full float precision.
func Round2(v float64) float64 {
	if v < 0 {
		return -math.Floor(-v*100+0.5) / 100
	}
	return math.Floor(v*100+0.5) / 100
}

// Subtotal sums unit price times quantity over all line items.
func Subtotal(items []OrderItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.UnitPrice * float64(it.Quantity)
	}
	return sum
}

// Tax computes the GST charge on a subtotal, rounded to cents.
func Tax(subtotal float64) float64 {
	return Round2(subtotal * GSTRate)
}
