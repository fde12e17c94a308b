package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lumea/checkout-bff/internal/checkout"
	"github.com/lumea/checkout-bff/internal/session"
)

// sessionCookie names the cookie holding the checkout session token. The
// X-Session-Token header is accepted as a fallback for non-browser clients.
const sessionCookie = "checkout_session"

// Handler exposes the checkout session operations over HTTP. It owns no
// state of its own: sessions live in the registry, pricing lives in the
// domain, and the upstream API owns the truth.
type Handler struct {
	sessions *session.Registry
	confirm  *checkout.ConfirmationLoader
	shipping decimal.Decimal
}

// New constructs a Handler.
func New(sessions *session.Registry, confirm *checkout.ConfirmationLoader, shippingFee decimal.Decimal) *Handler {
	return &Handler{
		sessions: sessions,
		confirm:  confirm,
		shipping: shippingFee,
	}
}

// Register mounts all checkout routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/sessions", h.CreateSession)
	r.Get("/cart", h.GetCart)
	r.Post("/cart/items", h.AddCartItem)
	r.Put("/cart/items/{itemID}", h.UpdateCartItem)
	r.Delete("/cart/items/{itemID}", h.RemoveCartItem)
	r.Post("/coupon", h.ApplyCoupon)
	r.Post("/order", h.SubmitOrder)
	r.Get("/orders/{orderID}", h.GetOrderConfirmation)
}

// CreateSession opens a fresh checkout session and hands back its token,
// both as a cookie and in the body.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	token, _ := h.sessions.Create()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusCreated, map[string]string{"session_id": token})
}

// session resolves the shopper's session from cookie or header. On failure
// it has already written a 401 response and returns ok=false.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*checkout.Session, bool) {
	token := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		token = r.Header.Get("X-Session-Token")
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "checkout session required")
		return nil, false
	}

	s, ok := h.sessions.Get(token)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unknown or expired checkout session")
		return nil, false
	}
	return s, true
}
