package cart

import "github.com/shopspring/decimal"

// ProductInfo carries the display attributes of the product behind a cart
// line. Prices here are informational; line and cart totals are always the
// server-computed values.
type ProductInfo struct {
	ID          string
	Title       string
	Description string
	ImageURL    string
	UnitPrice   decimal.Decimal
}

// Line is one product+quantity entry within the cart. The ID is assigned by
// the backend when the line is created and is the key for per-line pending
// tracking.
type Line struct {
	ID        string
	ProductID string
	Quantity  int
	Total     decimal.Decimal
	Product   ProductInfo
}

// Cart is a snapshot of the server-held cart. Subtotal and FinalTotal are
// server-computed; FinalTotal already reflects any applied coupon and is
// never recomputed on this side. Invariant: FinalTotal <= Subtotal.
type Cart struct {
	Lines      []Line
	Subtotal   decimal.Decimal
	FinalTotal decimal.Decimal
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Line returns the line with the given ID, if present.
func (c Cart) Line(id string) (Line, bool) {
	for _, l := range c.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return Line{}, false
}

// LineByProduct returns the line holding the given product, if present.
// Used to decide whether an add becomes an update of an existing line.
func (c Cart) LineByProduct(productID string) (Line, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return Line{}, false
}
