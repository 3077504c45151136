package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brightgoods/storefront-backend/api/controllers"
	"github.com/brightgoods/storefront-backend/api/middleware"
	"github.com/brightgoods/storefront-backend/internal/bus"
	"github.com/brightgoods/storefront-backend/internal/cart"
	checkoutsvc "github.com/brightgoods/storefront-backend/internal/checkout"
	"github.com/brightgoods/storefront-backend/internal/orders"
	"github.com/brightgoods/storefront-backend/internal/remote"
	"github.com/brightgoods/storefront-backend/pkg/config"
	"github.com/brightgoods/storefront-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	pingers map[string]controllers.Pinger,
	events *bus.Bus,
	cartService cart.Service,
	ordersService orders.Service,
	checkoutService checkoutsvc.Service,
	mirror *remote.Mirror,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ClientIdentity(logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, events, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(cartService, events, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, events, logg))
			r.Delete("/", controllers.CartClear(cartService, events, logg))
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.AdminLogin(cfg, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderList(ordersService, logg))
				r.Get("/stats", controllers.AdminOrderStats(ordersService, logg))
				r.Get("/{orderId}", controllers.AdminOrderDetail(ordersService, logg))
				r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(ordersService, mirror, logg))
				r.Patch("/{orderId}", controllers.AdminOrderPatch(ordersService, logg))
				r.Delete("/{orderId}", controllers.AdminOrderDelete(ordersService, logg))
			})
		})
	})

	return r
}
