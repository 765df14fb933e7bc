package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/cart"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/pricing"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const MaxQuantity = 99

type CartService interface {
	AddItem(ctx context.Context, sessionID string, item domain.LineItem) domain.LineItem
	UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (domain.LineItem, error)
	RemoveItem(ctx context.Context, sessionID, itemID string)
	ClearCart(ctx context.Context, sessionID string)
	View(ctx context.Context, sessionID string, orderType domain.OrderType) cart.View
}

type CartHandler struct {
	carts   CartService
	catalog Catalog
	menu    *pricing.Menu
	timeout time.Duration
	log     *zap.Logger
}

func NewCartHandler(carts CartService, catalog Catalog, menu *pricing.Menu, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog, menu: menu, timeout: timeout, log: log}
}

type CustomizationDTO struct {
	Size   string   `json:"size"`
	Milk   string   `json:"milk"`
	Sugar  *int     `json:"sugar"`
	Extras []string `json:"extras"`
}

type AddItemRequestDTO struct {
	ProductID     string            `json:"product_id"`
	Quantity      int               `json:"quantity"`
	Customization *CustomizationDTO `json:"customization"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// toCustomization applies the menu's default sugar level when none was sent;
// an explicit 0 means no sugar.
func (h *CartHandler) toCustomization(dto *CustomizationDTO) domain.Customization {
	c := domain.Customization{Sugar: h.menu.DefaultSugar}
	if dto == nil {
		return c
	}
	c.Size = domain.Size(dto.Size)
	c.Milk = dto.Milk
	c.Extras = dto.Extras
	if dto.Sugar != nil {
		c.Sugar = *dto.Sugar
	}
	return c
}

// GET /api/v1/cart?order_type=
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderType := domain.OrderType(r.URL.Query().Get("order_type"))
	view := h.carts.View(ctx, SessionIDFromContext(r.Context()), orderType)
	if view.Items == nil {
		view.Items = []domain.LineItem{}
	}

	respondJSON(w, http.StatusOK, view)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 || req.Quantity > MaxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	customization, unitPrice, err := h.menu.Resolve(product, h.toCustomization(req.Customization))
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	added := h.carts.AddItem(ctx, SessionIDFromContext(r.Context()), domain.LineItem{
		Product:       product.Ref(),
		Quantity:      req.Quantity,
		Customization: customization,
		UnitPrice:     unitPrice,
	})

	respondJSON(w, http.StatusCreated, added)
}

// PUT /api/v1/cart/items/{id}
// Quantities below one are clamped to one; use DELETE to remove an item.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > MaxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not exceed 99")
		return
	}

	updated, err := h.carts.UpdateQuantity(ctx, SessionIDFromContext(r.Context()), chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.carts.RemoveItem(ctx, SessionIDFromContext(r.Context()), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.carts.ClearCart(ctx, SessionIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
