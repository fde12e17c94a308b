package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lumea/checkout-bff/internal/checkout"
)

type productDTO struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type cartLineDTO struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	Total     decimal.Decimal `json:"total"`
	Pending   bool            `json:"pending"`
	Product   productDTO      `json:"product"`
}

type pricingDTO struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type cartViewDTO struct {
	Lines      []cartLineDTO `json:"lines"`
	PendingNew bool          `json:"pending_new"`
	Pricing    pricingDTO    `json:"pricing"`
	State      string        `json:"state"`
	Message    string        `json:"message,omitempty"`
}

func cartView(s *checkout.Session, msg string) cartViewDTO {
	snapshot := s.Snapshot()
	p := s.Pricing()

	lines := make([]cartLineDTO, len(snapshot.Lines))
	for i, l := range snapshot.Lines {
		lines[i] = cartLineDTO{
			ID:        l.ID,
			ProductID: l.ProductID,
			Qty:       l.Quantity,
			Total:     l.Total,
			Pending:   s.Pending(l.ID),
			Product: productDTO{
				ID:          l.Product.ID,
				Title:       l.Product.Title,
				Description: l.Product.Description,
				ImageURL:    l.Product.ImageURL,
				UnitPrice:   l.Product.UnitPrice,
			},
		}
	}

	return cartViewDTO{
		Lines:      lines,
		PendingNew: s.Pending(checkout.PendingNewLine),
		Pricing: pricingDTO{
			Subtotal: p.Subtotal,
			Discount: p.Discount,
			Shipping: p.Shipping,
			Total:    p.Total,
		},
		State:   s.State().String(),
		Message: msg,
	}
}

// GetCart reloads the cart from the storefront and renders the view. The
// reload is idempotent; on failure the session keeps its previous snapshot
// and the error is surfaced.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, err := s.Load(r.Context()); err != nil {
		respondOpError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartView(s, ""))
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// AddCartItem adds a product to the cart (or bumps its quantity line).
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusUnprocessableEntity, "product_id is required")
		return
	}

	if err := s.AddOrUpdate(r.Context(), req.ProductID, req.Qty); err != nil {
		respondOpError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartView(s, ""))
}

// UpdateCartItem sets the quantity of an existing cart line.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	itemID := chi.URLParam(r, "itemID")
	line, found := s.Snapshot().Line(itemID)
	if !found {
		respondError(w, http.StatusNotFound, "cart line not found")
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	productID := req.ProductID
	if productID == "" {
		productID = line.ProductID
	}

	if err := s.AddOrUpdate(r.Context(), productID, req.Qty); err != nil {
		respondOpError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartView(s, ""))
}

// RemoveCartItem deletes a cart line.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.Remove(r.Context(), chi.URLParam(r, "itemID")); err != nil {
		respondOpError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartView(s, ""))
}

type couponRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon submits a coupon code and, on success, renders the reloaded
// cart so the discount row reflects the server-computed totals.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg, err := s.ApplyCoupon(r.Context(), req.Code)
	if err != nil {
		respondOpError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartView(s, msg))
}
