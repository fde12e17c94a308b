package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/lumea/checkout-bff/internal/checkout"
	"github.com/lumea/checkout-bff/internal/upstream"
)

type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// respondOpError maps checkout operation errors to HTTP responses. Errors
// are converted to shopper-facing notifications here, at the operation
// boundary; nothing propagates further up.
func respondOpError(r *http.Request, w http.ResponseWriter, err error) {
	var verrs checkout.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]fieldError, len(verrs))
		for i, fe := range verrs {
			fields[i] = fieldError{Field: fe.Field, Reason: fe.Reason}
		}
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Fields: fields,
		})
		return
	}

	switch {
	case errors.Is(err, checkout.ErrEmptyCode),
		errors.Is(err, checkout.ErrQuantityRange),
		errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, unwrapMessage(err))
		return
	case errors.Is(err, checkout.ErrLinePending),
		errors.Is(err, checkout.ErrCouponPending),
		errors.Is(err, checkout.ErrSubmitting),
		errors.Is(err, checkout.ErrOrderPlaced):
		respondError(w, http.StatusConflict, unwrapMessage(err))
		return
	}

	var cerr *checkout.CouponError
	if errors.As(err, &cerr) {
		respondError(w, http.StatusUnprocessableEntity, cerr.Message)
		return
	}
	var serr *checkout.SubmitError
	if errors.As(err, &serr) {
		respondError(w, http.StatusUnprocessableEntity, serr.Message)
		return
	}

	if apiErr, ok := upstream.AsAPIError(err); ok {
		msg := apiErr.Message
		if msg == "" {
			msg = "storefront request failed"
		}
		status := http.StatusBadGateway
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = http.StatusUnprocessableEntity
		}
		respondError(w, status, msg)
		return
	}

	if errors.Is(err, upstream.ErrUnavailable) {
		respondError(w, http.StatusBadGateway, "storefront is temporarily unavailable")
		return
	}

	zctx.From(r.Context()).Error("unhandled operation error", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal error")
}

// unwrapMessage strips wrap prefixes down to the sentinel's text.
func unwrapMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}
