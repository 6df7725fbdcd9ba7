package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires all storefront routes. The webhook route sits outside the
// session-scoped API group: the payment provider carries no session.
func NewRouter(products *ProductHandler, carts *CartHandler, checkouts *CheckoutHandler, webhooks *WebhookHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/webhooks/payment", webhooks.Receive)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Get("/{id}", products.Get)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.Get)
			r.Delete("/", carts.Clear)
			r.Post("/lines", carts.AddLine)
			r.Put("/lines/{lineID}", carts.UpdateLine)
			r.Delete("/lines/{lineID}", carts.RemoveLine)
			r.Post("/open", carts.SetOpen)
		})

		r.Post("/checkout", checkouts.Submit)
	})

	return r
}
