package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
)

var standardRules = Rules{
	FreeShippingThreshold: 99900, // Rs. 999
	ShippingFee:           5000,  // Rs. 50
}

func TestShippingThresholdBoundary(t *testing.T) {
	assert.Equal(t, int64(5000), ShippingFor(99899, standardRules))
	assert.Equal(t, int64(0), ShippingFor(99900, standardRules))
	assert.Equal(t, int64(0), ShippingFor(150000, standardRules))
	assert.Equal(t, int64(0), ShippingFor(0, standardRules), "empty cart ships nothing")
}

func TestComputeTotalsWithCoupon(t *testing.T) {
	// Rs. 800 order with a Rs. 110 discount: discount does not push the
	// subtotal past the free shipping threshold decision
	lines := []PricedLine{
		{UnitPrice: 40000, Quantity: 2}, // Rs. 800 total
	}

	totals := ComputeTotals(lines, 11000, standardRules)

	assert.Equal(t, int64(80000), totals.Subtotal)
	assert.Equal(t, int64(11000), totals.DiscountAmount)
	assert.Equal(t, int64(5000), totals.ShippingCost)
	assert.Equal(t, int64(74000), totals.TotalAmount)
}

func TestComputeTotalsWithPercentageCoupon(t *testing.T) {
	// Two units at a discounted Rs. 400 each with an uncapped 20% code:
	// Rs. 800 subtotal, Rs. 160 off, Rs. 50 shipping, Rs. 690 to pay
	lines := []PricedLine{
		{UnitPrice: 40000, Quantity: 2},
	}
	save20 := coupon.Coupon{
		Code:          "SAVE20",
		DiscountType:  coupon.DiscountTypePercentage,
		DiscountValue: 20,
	}

	subtotal := Subtotal(lines)
	totals := ComputeTotals(lines, save20.DiscountFor(subtotal), standardRules)

	assert.Equal(t, int64(80000), totals.Subtotal)
	assert.Equal(t, int64(16000), totals.DiscountAmount)
	assert.Equal(t, int64(5000), totals.ShippingCost)
	assert.Equal(t, int64(69000), totals.TotalAmount)
}

func TestComputeTotalsFreeShippingFromSubtotal(t *testing.T) {
	// Subtotal crosses the threshold before the discount is applied, so
	// shipping stays free even though the discounted amount is below it
	lines := []PricedLine{
		{UnitPrice: 99900, Quantity: 1},
	}

	totals := ComputeTotals(lines, 50000, standardRules)

	assert.Equal(t, int64(0), totals.ShippingCost)
	assert.Equal(t, int64(49900), totals.TotalAmount)
}

func TestComputeTotalsDiscountClamped(t *testing.T) {
	lines := []PricedLine{
		{UnitPrice: 30000, Quantity: 1},
	}

	totals := ComputeTotals(lines, 500000, standardRules)

	assert.Equal(t, int64(30000), totals.DiscountAmount)
	assert.Equal(t, int64(5000), totals.TotalAmount, "total is shipping only, never negative")
	assert.GreaterOrEqual(t, totals.TotalAmount, int64(0))
}

func TestComputeTotalsNegativeDiscountIgnored(t *testing.T) {
	lines := []PricedLine{{UnitPrice: 10000, Quantity: 1}}

	totals := ComputeTotals(lines, -500, standardRules)

	assert.Equal(t, int64(0), totals.DiscountAmount)
	assert.Equal(t, int64(15000), totals.TotalAmount)
}

func TestComputeTotalsIdempotent(t *testing.T) {
	lines := []PricedLine{
		{UnitPrice: 25000, Quantity: 3},
		{UnitPrice: 19900, Quantity: 1},
	}

	first := ComputeTotals(lines, 10000, standardRules)
	second := ComputeTotals(lines, 10000, standardRules)

	assert.Equal(t, first, second)
}

func TestSubtotalSkipsDegenerateLines(t *testing.T) {
	lines := []PricedLine{
		{UnitPrice: 10000, Quantity: 2},
		{UnitPrice: 10000, Quantity: 0},
		{UnitPrice: -100, Quantity: 5},
	}

	assert.Equal(t, int64(20000), Subtotal(lines))
}
