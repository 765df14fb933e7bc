package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/cart"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/catalog"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/checkout"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/orders"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/pricing"
	"go.uber.org/zap"
)

// CatalogPath is where users are sent when there is nothing to check out or
// confirm.
const CatalogPath = "/api/v1/products"

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondErrorDetails(w, status, code, message, "")
}

func respondErrorDetails(w http.ResponseWriter, status int, code, message, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// redirectToCatalog answers with 303 See Other so clients land back on the
// product list.
func redirectToCatalog(w http.ResponseWriter, code, message string) {
	w.Header().Set("Location", CatalogPath)
	respondErrorDetails(w, http.StatusSeeOther, code, message, CatalogPath)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// handleServiceError maps domain errors to HTTP status codes.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	var validationErr *checkout.ValidationError

	switch {
	case errors.As(err, &validationErr):
		respondErrorDetails(w, http.StatusUnprocessableEntity, "validation_failed",
			err.Error(), strings.Join(validationErr.Fields, ","))
	case errors.Is(err, checkout.ErrEmptyCart):
		redirectToCatalog(w, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		respondError(w, http.StatusConflict, "checkout_in_progress", err.Error())
	case errors.Is(err, checkout.ErrPaymentUnavailable):
		respondError(w, http.StatusServiceUnavailable, "payment_unavailable", err.Error())
	case errors.Is(err, checkout.ErrPaymentFailed):
		respondError(w, http.StatusPaymentRequired, "payment_failed", err.Error())
	case errors.Is(err, orders.ErrDuplicateOrder):
		respondError(w, http.StatusConflict, "duplicate_order", err.Error())
	case errors.Is(err, catalog.ErrProductNotFound):
		respondErrorDetails(w, http.StatusNotFound, "not_found", err.Error(), CatalogPath)
	case errors.Is(err, cart.ErrItemNotFound), errors.Is(err, orders.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, pricing.ErrUnknownOption), errors.Is(err, pricing.ErrInvalidSugar):
		respondError(w, http.StatusUnprocessableEntity, "invalid_customization", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	case errors.Is(err, context.Canceled):
		// client went away; nobody reads this
		respondError(w, http.StatusRequestTimeout, "cancelled", "request cancelled")
	default:
		log.Error("unhandled service error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
