package cart

import "github.com/shopspring/decimal"

// Pricing is the derived price breakdown for a cart snapshot.
type Pricing struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// DerivePricing computes the displayed price breakdown from a cart snapshot
// and a shipping fee. It is a pure function and the only place totals are
// derived, so the cart view and the checkout summary can never disagree.
//
// Discount is Subtotal - FinalTotal: the coupon amount is whatever the
// server already folded into FinalTotal, never a locally computed
// percentage. The grand total is rounded up to the whole currency unit so a
// fractional-unit discount can never charge less than the displayed amount.
func DerivePricing(c Cart, shippingFee decimal.Decimal) Pricing {
	discount := c.Subtotal.Sub(c.FinalTotal)
	if discount.IsNegative() {
		// The backend guarantees FinalTotal <= Subtotal; clamp anyway so a
		// misbehaving response can not render a negative savings row.
		discount = decimal.Zero
	}
	return Pricing{
		Subtotal: c.Subtotal,
		Discount: discount,
		Shipping: shippingFee,
		Total:    CeilAmount(c.FinalTotal.Add(shippingFee)),
	}
}

// CeilAmount rounds a money amount up to the nearest whole currency unit.
// Both the checkout summary and the order confirmation use this same rule.
func CeilAmount(d decimal.Decimal) decimal.Decimal {
	return d.Ceil()
}
