package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bbqaffair/catering-booking-and-orders/internal/auth"
	"github.com/bbqaffair/catering-booking-and-orders/internal/observability"
	"github.com/bbqaffair/catering-booking-and-orders/internal/rateLimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter, sessions *auth.Manager) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(RateLimitMiddleware(rl))

	r.Post("/v1/auth/login", h.Login)

	r.Get("/v1/catalog/packages", h.ListPackages)
	r.Get("/v1/catalog/categories", h.ListCategories)
	r.Get("/v1/catalog/items", h.ListMenuItems)
	r.Get("/v1/catalog/items/{id}", h.GetMenuItem)

	r.Post("/v1/drafts", h.CreateDraft)
	r.Get("/v1/drafts/{id}", h.GetDraft)
	r.Patch("/v1/drafts/{id}", h.UpdateDraft)
	r.Post("/v1/drafts/{id}/next", h.DraftNext)
	r.Post("/v1/drafts/{id}/prev", h.DraftPrev)
	r.Get("/v1/drafts/{id}/quote", h.DraftQuote)

	// Order-creating routes require an Idempotency-Key.
	r.Group(func(r chi.Router) {
		r.Use(IdempotencyMiddleware)
		r.Post("/v1/drafts/{id}/submit", h.SubmitDraft)
		r.Post("/v1/orders", h.CreateOrder)
	})

	r.Get("/v1/orders/{id}", h.GetOrder)
	r.Post("/v1/payments/callback", h.PaymentCallback)

	// Admin surface: order management, menu management, analytics.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(sessions))
		r.Use(UserRateLimitMiddleware(rl))
		r.Get("/v1/orders", h.ListOrders)
		r.Post("/v1/orders/{id}/status", h.UpdateOrderStatus)
		r.Post("/v1/catalog/items", h.CreateMenuItem)
		r.Patch("/v1/catalog/items/{id}/availability", h.SetItemAvailability)
		r.Get("/v1/analytics/summary", h.AnalyticsSummary)
		r.Get("/v1/analytics/top-items", h.AnalyticsTopItems)
	})

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
