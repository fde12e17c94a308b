package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumea/checkout-bff/internal/domain/cart"
)

// Line is one product entry of a persisted order: the quantity snapshotted
// at submission time plus the server-computed amount for that line.
type Line struct {
	ID        string
	ProductID string
	Quantity  int
	// FinalTotal is the line amount after any coupon, as persisted by the
	// backend.
	FinalTotal decimal.Decimal
	Product    cart.ProductInfo
}

// Contact is the buyer information attached to an order.
type Contact struct {
	Name    string
	Email   string
	Tel     string
	Address string
}

// Order is the immutable server-side record of a completed checkout. It is
// only ever read on this side; the confirmation view renders it independent
// of the live cart, which may already have been cleared.
type Order struct {
	ID        string
	Lines     []Line
	Total     decimal.Decimal
	Contact   Contact
	Message   string
	Paid      bool
	CreatedAt time.Time
}
