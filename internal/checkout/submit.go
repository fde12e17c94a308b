package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lumea/checkout-bff/internal/domain/order"
	"github.com/lumea/checkout-bff/internal/upstream"
)

// SubmitState is the order submission workflow state.
type SubmitState int32

const (
	// StateEditing: form open, no request outstanding.
	StateEditing SubmitState = iota
	// StateSubmitting: request in flight, duplicate submits suppressed.
	StateSubmitting
	// StateSucceeded: an order exists; the session's checkout is done.
	StateSucceeded
)

func (s SubmitState) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	}
	return "unknown"
}

var (
	// ErrSubmitting rejects a duplicate submit while one is in flight.
	// Concurrent duplicate submission is impossible, not just discouraged.
	ErrSubmitting = errors.New("order submission already in flight")
	// ErrOrderPlaced rejects submits after this session already succeeded.
	ErrOrderPlaced = errors.New("order already placed for this session")
	// ErrEmptyCart rejects checkout of an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// SubmitError is a submission the backend rejected; the shopper stays on
// the form with their input intact and no partial order is assumed.
type SubmitError struct {
	Message string
}

func (e *SubmitError) Error() string {
	return "order rejected: " + e.Message
}

// SubmitResult is the hand-off to the confirmation view: the new order ID
// plus the shipping fee carried as transient navigation state.
type SubmitResult struct {
	OrderID  string
	Shipping decimal.Decimal
}

// State returns the submission workflow state.
func (s *Session) State() SubmitState {
	return SubmitState(s.submit.Load())
}

// Submit validates the contact form, snapshots the current cart into an
// order request, and places the order.
//
// Validation runs before any network call; failures surface as field-scoped
// ValidationErrors and never reach the server. The order lines are taken
// from the snapshot at the moment of submission — exactly what the shopper
// saw — not from a re-fetch. On failure the workflow returns to Editing; on
// success it transitions to Succeeded and returns the confirmation hand-off.
func (s *Session) Submit(ctx context.Context, contact ContactInfo, payment PaymentMethod) (*SubmitResult, error) {
	contact = contact.Normalize()
	if err := contact.Validate(payment); err != nil {
		return nil, err
	}

	snapshot := s.Snapshot()
	if snapshot.Empty() {
		return nil, ErrEmptyCart
	}

	if !s.submit.CompareAndSwap(int32(StateEditing), int32(StateSubmitting)) {
		if s.State() == StateSucceeded {
			return nil, ErrOrderPlaced
		}
		return nil, ErrSubmitting
	}

	items := make([]upstream.OrderItem, len(snapshot.Lines))
	for i, l := range snapshot.Lines {
		items[i] = upstream.OrderItem{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	orderID, err := s.client.PlaceOrder(ctx, upstream.OrderRequest{
		Contact: order.Contact{
			Name:    contact.Name,
			Email:   contact.Email,
			Tel:     contact.Tel,
			Address: contact.Address,
		},
		Message: contact.Message,
		Items:   items,
	})
	if err != nil {
		s.submit.Store(int32(StateEditing))
		s.lg.Warn("order submission failed", zap.Error(err))
		return nil, &SubmitError{Message: submitFailureMessage(err)}
	}

	s.submit.Store(int32(StateSucceeded))
	s.lg.Info("order placed", zap.String("order_id", orderID))

	return &SubmitResult{OrderID: orderID, Shipping: s.shipping}, nil
}

func submitFailureMessage(err error) string {
	if apiErr, ok := upstream.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return "failed to create order"
}
