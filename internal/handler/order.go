package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lumea/checkout-bff/internal/checkout"
)

type contactRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Tel     string `json:"tel"`
	Address string `json:"address"`
}

type submitRequest struct {
	Contact contactRequest `json:"contact"`
	Message string         `json:"message,omitempty"`
	Payment string         `json:"payment"`
}

type submitResponse struct {
	OrderID string `json:"order_id"`
	// Shipping is the fee used at checkout, handed to the confirmation view
	// as transient state. A direct link to the confirmation falls back to
	// the configured default.
	Shipping decimal.Decimal `json:"shipping"`
}

// SubmitOrder validates the contact form and places the order from the cart
// snapshot the shopper last saw. Duplicate submits while one is in flight
// get 409; validation failures get field-scoped 422s without touching the
// network.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := s.Submit(r.Context(), checkout.ContactInfo{
		Email:   req.Contact.Email,
		Name:    req.Contact.Name,
		Tel:     req.Contact.Tel,
		Address: req.Contact.Address,
		Message: req.Message,
	}, checkout.PaymentMethod(req.Payment))
	if err != nil {
		respondOpError(r, w, err)
		return
	}

	respondJSON(w, http.StatusCreated, submitResponse{
		OrderID:  res.OrderID,
		Shipping: res.Shipping,
	})
}

type orderLineDTO struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	Amount    decimal.Decimal `json:"amount"`
	Product   productDTO      `json:"product"`
}

type confirmationDTO struct {
	OrderID   string          `json:"order_id"`
	CreatedAt time.Time       `json:"created_at,omitzero"`
	Paid      bool            `json:"paid"`
	Lines     []orderLineDTO  `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	Shipping  decimal.Decimal `json:"shipping"`
	Charged   decimal.Decimal `json:"charged"`
}

// GetOrderConfirmation fetches the persisted order once and renders the
// confirmation breakdown. It needs no checkout session: the confirmation
// URL must work as a direct link. The shipping query parameter carries the
// fee handed off at submit time; absent, the configured default applies.
func (h *Handler) GetOrderConfirmation(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	shipping := h.shipping
	if raw := r.URL.Query().Get("shipping"); raw != "" {
		if fee, err := decimal.NewFromString(raw); err == nil && !fee.IsNegative() {
			shipping = fee
		}
	}

	conf, err := h.confirm.Load(r.Context(), orderID, shipping)
	if err != nil {
		// A dedicated error state: never fabricate an order.
		respondOpError(r, w, err)
		return
	}

	o := conf.Order
	lines := make([]orderLineDTO, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = orderLineDTO{
			ID:        l.ID,
			ProductID: l.ProductID,
			Qty:       l.Quantity,
			Amount:    conf.LineAmount(l),
			Product: productDTO{
				ID:        l.Product.ID,
				Title:     l.Product.Title,
				ImageURL:  l.Product.ImageURL,
				UnitPrice: l.Product.UnitPrice,
			},
		}
	}

	respondJSON(w, http.StatusOK, confirmationDTO{
		OrderID:   o.ID,
		CreatedAt: o.CreatedAt,
		Paid:      o.Paid,
		Lines:     lines,
		Total:     o.Total,
		Shipping:  conf.Shipping,
		Charged:   conf.Charged,
	})
}
