package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/orders"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrdersService interface {
	LastOrder(ctx context.Context, sessionID string) (*domain.OrderRecord, error)
	History(ctx context.Context, sessionID string) ([]*domain.OrderRecord, error)
	Get(ctx context.Context, sessionID, orderNumber string) (*domain.OrderRecord, error)
}

type OrdersHandler struct {
	orders  OrdersService
	timeout time.Duration
	log     *zap.Logger
}

func NewOrdersHandler(orders OrdersService, timeout time.Duration, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{orders: orders, timeout: timeout, log: log}
}

type OrdersResponse struct {
	Orders []*domain.OrderRecord `json:"orders"`
}

// GET /api/v1/orders/last
// The confirmation view: without a readable record the user is sent back to
// the catalog.
func (h *OrdersHandler) LastOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.LastOrder(ctx, SessionIDFromContext(r.Context()))
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		redirectToCatalog(w, "no_order", err.Error())
		return
	case errors.Is(err, orders.ErrUnsupportedVersion):
		h.log.Warn("unreadable last order", zap.Error(err))
		redirectToCatalog(w, "no_order", "order record is no longer readable")
		return
	case err != nil:
		handleServiceError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// GET /api/v1/orders
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	records, err := h.orders.History(ctx, SessionIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, OrdersResponse{Orders: records})
}

// GET /api/v1/orders/{number}
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.Get(ctx, SessionIDFromContext(r.Context()), chi.URLParam(r, "number"))
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}
