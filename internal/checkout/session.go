package checkout

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/lumea/checkout-bff/internal/domain/cart"
	"github.com/lumea/checkout-bff/internal/upstream"
)

// MaxQuantity is the upper bound of the quantity selector the storefront
// offers. The backend does not enforce it; this layer does, like the UI.
const MaxQuantity = 20

var (
	// ErrLinePending rejects a second mutation for a line that already has
	// a request in flight.
	ErrLinePending = errors.New("line mutation already in flight")
	// ErrCouponPending rejects a coupon apply while one is outstanding.
	ErrCouponPending = errors.New("coupon request already in flight")
	// ErrEmptyCode rejects coupon application with a blank code.
	ErrEmptyCode = errors.New("coupon code is required")
	// ErrQuantityRange rejects quantities outside 1..MaxQuantity.
	ErrQuantityRange = errors.New("quantity must be between 1 and 20")
)

// CouponError is a coupon the backend rejected. Message is what the shopper
// sees; the cart is left untouched.
type CouponError struct {
	Message string
}

func (e *CouponError) Error() string {
	return "coupon rejected: " + e.Message
}

// Config carries the per-session constants.
type Config struct {
	// ShippingFee is the flat shipping fee in whole currency units. It is
	// configured, not fetched; the checkout and confirmation views share it.
	ShippingFee decimal.Decimal
}

// Session owns the authoritative client-side view of one shopper's cart and
// brokers every mutation against the storefront API. All state a React
// context used to hold globally lives here, injected at construction and
// scoped to the checkout session.
//
// The server computes all totals: every successful mutation ends in a full
// cart reload instead of a local patch, so the view can never drift from
// server pricing. A reload finishing after a newer mutation may briefly
// show older server state; the next reload reconciles.
type Session struct {
	client   upstream.Client
	lg       *zap.Logger
	shipping decimal.Decimal

	pending    *PendingSet
	couponBusy atomic.Bool
	submit     atomic.Int32 // submitState

	loads singleflight.Group

	mu   sync.RWMutex
	cart cart.Cart
}

// NewSession builds a Session around the given storefront client.
func NewSession(client upstream.Client, cfg Config, lg *zap.Logger) *Session {
	return &Session{
		client:   client,
		lg:       lg,
		shipping: cfg.ShippingFee,
		pending:  NewPendingSet(),
	}
}

// Snapshot returns the current cart view.
func (s *Session) Snapshot() cart.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

// Pricing derives the displayed price breakdown for the current snapshot.
// The cart view and the checkout summary both read this, never their own
// arithmetic.
func (s *Session) Pricing() cart.Pricing {
	return cart.DerivePricing(s.Snapshot(), s.shipping)
}

// ShippingFee returns the configured flat fee.
func (s *Session) ShippingFee() decimal.Decimal {
	return s.shipping
}

// Pending reports whether the given line has a mutation in flight.
func (s *Session) Pending(lineID string) bool {
	return s.pending.Has(lineID)
}

// PendingIDs lists lines with in-flight mutations, for disabling controls.
func (s *Session) PendingIDs() []string {
	return s.pending.IDs()
}

// Load fetches the cart and replaces the whole snapshot. On failure the
// previous snapshot stays in place and the error is reported; the operation
// is idempotent and safe to call after every mutation. Concurrent loads are
// coalesced into a single upstream request.
func (s *Session) Load(ctx context.Context) (cart.Cart, error) {
	// The fetch runs detached from the winning caller's cancellation so a
	// coalesced caller never inherits a context.Canceled it did not own.
	// The client bounds the request with its own timeout.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := s.loads.Do("cart", func() (interface{}, error) {
		c, err := s.client.FetchCart(fetchCtx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cart = c
		s.mu.Unlock()
		return c, nil
	})
	if err != nil {
		s.lg.Warn("cart load failed", zap.Error(err))
		return s.Snapshot(), errors.Wrap(err, "load cart")
	}
	return v.(cart.Cart), nil
}

// AddOrUpdate sets the quantity for a product. An existing line is updated
// in place; a product not yet in the cart is added, tracked under the
// PendingNewLine sentinel until the backend assigns an ID. The pending mark
// covers the full request span and is cleared exactly once.
func (s *Session) AddOrUpdate(ctx context.Context, productID string, qty int) error {
	if qty < 1 || qty > MaxQuantity {
		return ErrQuantityRange
	}

	key := PendingNewLine
	line, exists := s.Snapshot().LineByProduct(productID)
	if exists {
		key = line.ID
	}

	if !s.pending.Add(key) {
		return ErrLinePending
	}
	defer s.pending.Remove(key)

	var err error
	if exists {
		err = s.client.UpdateCartItem(ctx, line.ID, productID, qty)
	} else {
		err = s.client.AddCartItem(ctx, productID, qty)
	}
	if err != nil {
		s.lg.Warn("cart mutation failed",
			zap.String("product_id", productID),
			zap.Error(err))
		return errors.Wrap(err, "update cart")
	}

	// Server response is authoritative: re-fetch, never patch locally.
	if _, err := s.Load(ctx); err != nil {
		return errors.Wrap(err, "reload after update")
	}
	return nil
}

// Remove deletes a cart line. While the request is in flight the line is
// pending and a second Remove for it is a no-op returning ErrLinePending.
func (s *Session) Remove(ctx context.Context, lineID string) error {
	if !s.pending.Add(lineID) {
		return ErrLinePending
	}
	defer s.pending.Remove(lineID)

	if err := s.client.RemoveCartItem(ctx, lineID); err != nil {
		s.lg.Warn("cart remove failed", zap.String("line_id", lineID), zap.Error(err))
		return errors.Wrap(err, "remove line")
	}

	if _, err := s.Load(ctx); err != nil {
		return errors.Wrap(err, "reload after remove")
	}
	return nil
}

// ApplyCoupon submits a discount code. At most one coupon request is in
// flight per session; a second call while one is pending is a no-op. On
// success the cart is reloaded so FinalTotal reflects the discount — the
// discount amount itself is never computed here. On rejection the cart is
// untouched and the returned CouponError carries the shopper-facing text.
func (s *Session) ApplyCoupon(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrEmptyCode
	}

	if !s.couponBusy.CompareAndSwap(false, true) {
		return "", ErrCouponPending
	}
	defer s.couponBusy.Store(false)

	msg, err := s.client.ApplyCoupon(ctx, code)
	if err != nil {
		s.lg.Info("coupon rejected", zap.Error(err))
		return "", &CouponError{Message: couponFailureMessage(err)}
	}

	if _, err := s.Load(ctx); err != nil {
		return msg, errors.Wrap(err, "reload after coupon")
	}
	if msg == "" {
		msg = "coupon applied"
	}
	return msg, nil
}

func couponFailureMessage(err error) string {
	if apiErr, ok := upstream.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return "coupon code invalid or expired"
}
