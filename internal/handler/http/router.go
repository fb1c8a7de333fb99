package http

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vetty/storefront/pkg/health"
	"github.com/vetty/storefront/pkg/middleware"
)

const serviceName = "storefront"

// RouterDeps bundles everything the router mounts.
type RouterDeps struct {
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Booking  *BookingHandler
	Health   *health.Handler
	Logger   *slog.Logger
	CORS     middleware.CORSConfig
}

// NewRouter builds the HTTP router with the full middleware chain and all
// API routes mounted under /api/v1.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(deps.Logger))

	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/catalog/{kind}", func(r chi.Router) {
			r.Get("/", deps.Catalog.List)
			r.Get("/{id}", deps.Catalog.Get)
			r.Post("/refresh", deps.Catalog.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireUserID)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", deps.Cart.Get)
				r.Delete("/", deps.Cart.Clear)
				r.Post("/items", deps.Cart.AddItem)
				r.Put("/items/{kind}/{id}", deps.Cart.UpdateQuantity)
				r.Delete("/items/{kind}/{id}", deps.Cart.RemoveItem)
			})

			r.Post("/checkout", deps.Checkout.Submit)
			r.Post("/appointments", deps.Booking.Request)
		})
	})

	return r
}
