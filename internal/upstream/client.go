package upstream

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/lumea/checkout-bff/internal/domain/cart"
	"github.com/lumea/checkout-bff/internal/domain/order"
)

// ErrUnavailable is returned when the storefront API cannot be reached at
// all: connection failure, timeout, or an open circuit breaker.
var ErrUnavailable = errors.New("storefront api unavailable")

// APIError is a response the storefront API rejected. Message is the
// backend-provided text and is safe to relay to the shopper.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront api: %d %s", e.StatusCode, e.Message)
}

// AsAPIError unwraps err into an APIError when it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// OrderItem is a product reference + quantity pair of an order request,
// snapshotted from the cart at submission time.
type OrderItem struct {
	ProductID string
	Quantity  int
}

// OrderRequest is the payload for placing an order.
type OrderRequest struct {
	Contact order.Contact
	Message string
	Items   []OrderItem
}

// Client is the storefront REST API as consumed by the checkout layer. The
// backend owns all pricing: every mutation is followed by a cart re-fetch
// rather than a local patch, so implementations never need to return
// updated carts from mutating calls.
type Client interface {
	FetchCart(ctx context.Context) (cart.Cart, error)
	AddCartItem(ctx context.Context, productID string, qty int) error
	UpdateCartItem(ctx context.Context, itemID, productID string, qty int) error
	RemoveCartItem(ctx context.Context, itemID string) error
	// ApplyCoupon submits a discount code for server-side validation. The
	// returned message is the backend's success text, when it sends one.
	ApplyCoupon(ctx context.Context, code string) (string, error)
	// PlaceOrder creates an order and returns its identifier.
	PlaceOrder(ctx context.Context, req OrderRequest) (string, error)
	FetchOrder(ctx context.Context, orderID string) (*order.Order, error)
}
