package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const DefaultServiceName = "storefront"

type Handlers struct {
	Products *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
}

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64

	// Tracing falls back to the otel globals when these are nil.
	ServiceName    string
	TracerProvider trace.TracerProvider
	Propagator     propagation.TextMapPropagator
}

func (c RouterConfig) tracing() func(http.Handler) http.Handler {
	name := c.ServiceName
	if name == "" {
		name = DefaultServiceName
	}
	var opts []otelhttp.Option
	if c.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(c.TracerProvider))
	}
	if c.Propagator != nil {
		opts = append(opts, otelhttp.WithPropagators(c.Propagator))
	}
	return otelhttp.NewMiddleware(name, opts...)
}

func NewRouter(h Handlers, cfg RouterConfig, log *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(cfg.tracing())
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", h.Products.List)
		r.Get("/products/featured", h.Products.Featured)
		r.Get("/products/{id}", h.Products.Get)
		r.Get("/categories", h.Products.Categories)
		r.Get("/menu", h.Products.Menu)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Delete("/", h.Cart.ClearCart)
				r.Post("/items", h.Cart.AddItem)
				r.Put("/items/{id}", h.Cart.UpdateQuantity)
				r.Delete("/items/{id}", h.Cart.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", h.Checkout.GetState)
				r.Delete("/", h.Checkout.Reset)
				r.Post("/order-type", h.Checkout.SelectOrderType)
				r.Post("/contact", h.Checkout.SubmitContact)
				r.Post("/back", h.Checkout.Back)
				r.Post("/payment", h.Checkout.SubmitPayment)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.Orders.List)
				r.Get("/last", h.Orders.LastOrder)
				r.Get("/{number}", h.Orders.Get)
			})
		})
	})

	return r
}
