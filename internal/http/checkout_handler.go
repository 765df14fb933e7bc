package http

import (
	"context"
	"net/http"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/checkout"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"go.uber.org/zap"
)

type CheckoutService interface {
	Flow(ctx context.Context, sessionID string) (*checkout.Flow, error)
	Reset(sessionID string)
}

// CheckoutHandler drives the per-session checkout flow. Payment requests run
// on the request context, so a client that disconnects mid-payment abandons
// the checkout and no order is written.
type CheckoutHandler struct {
	checkouts CheckoutService
	log       *zap.Logger
}

func NewCheckoutHandler(checkouts CheckoutService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkouts: checkouts, log: log}
}

type OrderTypeRequestDTO struct {
	OrderType domain.OrderType `json:"order_type"`
}

func (h *CheckoutHandler) flow(w http.ResponseWriter, r *http.Request) (*checkout.Flow, bool) {
	f, err := h.checkouts.Flow(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.log, err)
		return nil, false
	}
	return f, true
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	f, ok := h.flow(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, f.State())
}

// POST /api/v1/checkout/order-type
func (h *CheckoutHandler) SelectOrderType(w http.ResponseWriter, r *http.Request) {
	var req OrderTypeRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	f, ok := h.flow(w, r)
	if !ok {
		return
	}
	if err := f.SelectOrderType(req.OrderType); err != nil {
		handleServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, f.State())
}

// POST /api/v1/checkout/contact
func (h *CheckoutHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req domain.ContactDetails
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	f, ok := h.flow(w, r)
	if !ok {
		return
	}
	if err := f.SubmitContact(req); err != nil {
		handleServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, f.State())
}

// POST /api/v1/checkout/back
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	f, ok := h.flow(w, r)
	if !ok {
		return
	}
	if err := f.Back(); err != nil {
		handleServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, f.State())
}

// POST /api/v1/checkout/payment
func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentDetails
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	f, ok := h.flow(w, r)
	if !ok {
		return
	}
	order, err := f.SubmitPayment(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// DELETE /api/v1/checkout
func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.checkouts.Reset(SessionIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
