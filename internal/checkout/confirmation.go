package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/lumea/checkout-bff/internal/domain/cart"
	"github.com/lumea/checkout-bff/internal/domain/order"
	"github.com/lumea/checkout-bff/internal/upstream"
)

// Confirmation is the order-confirmation view: the persisted order plus the
// charged amount, rendered independent of the live cart (which the backend
// may already have cleared).
type Confirmation struct {
	Order    *order.Order
	Shipping decimal.Decimal
	// Charged is Ceil(order.Total + Shipping), the same ceiling rule the
	// checkout summary uses, applied to the persisted total.
	Charged decimal.Decimal
}

// LineAmount returns the displayed amount for one order line, rounded up
// the way the storefront renders it.
func (c *Confirmation) LineAmount(l order.Line) decimal.Decimal {
	return cart.CeilAmount(l.FinalTotal)
}

// ConfirmationLoader fetches persisted orders for the confirmation view.
type ConfirmationLoader struct {
	client upstream.Client
}

func NewConfirmationLoader(client upstream.Client) *ConfirmationLoader {
	return &ConfirmationLoader{client: client}
}

// Load fetches the order exactly once. Orders are immutable, so a failed
// fetch is surfaced as an error page material, never silently retried.
// shipping is the fee carried over from checkout, or the configured default
// when the confirmation page was reached by direct link.
func (l *ConfirmationLoader) Load(ctx context.Context, orderID string, shipping decimal.Decimal) (*Confirmation, error) {
	o, err := l.client.FetchOrder(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "fetch order")
	}
	return &Confirmation{
		Order:    o,
		Shipping: shipping,
		Charged:  cart.CeilAmount(o.Total.Add(shipping)),
	}, nil
}
