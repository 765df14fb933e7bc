package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/pricing"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Catalog is the read side of the product repository.
type Catalog interface {
	GetProductsByCategory(ctx context.Context, category string) ([]*domain.Product, error)
	GetFeaturedProducts(ctx context.Context) ([]*domain.Product, error)
	SearchProducts(ctx context.Context, category, query string) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type ProductHandler struct {
	catalog Catalog
	menu    *pricing.Menu
	timeout time.Duration
	log     *zap.Logger
}

func NewProductHandler(catalog Catalog, menu *pricing.Menu, timeout time.Duration, log *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, menu: menu, timeout: timeout, log: log}
}

type ProductsResponse struct {
	Products []*domain.Product `json:"products"`
	Category string            `json:"category,omitempty"`
	Query    string            `json:"query,omitempty"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// GET /api/v1/products?category=&q=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	category := r.URL.Query().Get("category")
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	products, err := h.catalog.SearchProducts(ctx, category, query)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}

	respondJSON(w, http.StatusOK, ProductsResponse{Products: products, Category: category, Query: query})
}

// GET /api/v1/products/featured
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.GetFeaturedProducts(ctx)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}

	respondJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

// GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// GET /api/v1/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

// GET /api/v1/menu
func (h *ProductHandler) Menu(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.menu)
}
