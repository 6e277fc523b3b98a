// internal/domain/checkout/pricing.go
package checkout

// PricedLine is the minimal line input for pricing. UnitPrice is the
// effective per-unit price in paise after any product-level discount.
type PricedLine struct {
	UnitPrice int64
	Quantity  int
}

// Rules holds the shipping policy used when pricing a cart
type Rules struct {
	FreeShippingThreshold int64
	ShippingFee           int64
}

// Totals is the full money breakdown for a cart or order, in paise
type Totals struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	ShippingCost   int64 `json:"shipping_cost"`
	TotalAmount    int64 `json:"total_amount"`
}

// Subtotal sums the line totals. Lines with non-positive quantity or price
// contribute nothing.
func Subtotal(lines []PricedLine) int64 {
	var sum int64
	for _, line := range lines {
		if line.Quantity > 0 && line.UnitPrice > 0 {
			sum += line.UnitPrice * int64(line.Quantity)
		}
	}
	return sum
}

// ShippingFor returns the shipping cost for an item subtotal. Shipping is
// free at or above the threshold and for empty carts; coupon discounts do
// not affect the shipping decision.
func ShippingFor(subtotal int64, rules Rules) int64 {
	if subtotal <= 0 || subtotal >= rules.FreeShippingThreshold {
		return 0
	}
	return rules.ShippingFee
}

// ComputeTotals prices a cart. The discount is clamped to the subtotal so
// the grand total can never go negative.
func ComputeTotals(lines []PricedLine, discount int64, rules Rules) Totals {
	subtotal := Subtotal(lines)

	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}

	shipping := ShippingFor(subtotal, rules)
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		ShippingCost:   shipping,
		TotalAmount:    subtotal - discount + shipping,
	}
}
