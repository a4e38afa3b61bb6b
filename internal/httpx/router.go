package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/bakeryspot/internal/domain/user"
	"github.com/jcmexdev/bakeryspot/internal/httpx/middlewares"
)

// NewRouter mounts the public, authenticated, and admin route groups.
func NewRouter(handler *Handler, parser middlewares.TokenParser) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Healthz)
	r.Post("/auth/login", handler.Login)

	authenticate := middlewares.Authenticate(parser, writeError)

	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/orders", handler.CreateOrder)
		r.Get("/orders/{id}", handler.GetOrder)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middlewares.RequireRoles(writeError, user.RoleAdmin, user.RoleStaff))

		r.Get("/orders", handler.ListOrders)
		r.Get("/orders/{id}", handler.AdminGetOrder)
		r.Patch("/orders/{id}/status", handler.UpdateOrderStatus)

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireRoles(writeError, user.RoleAdmin))
			r.Get("/payments/circuit", handler.CircuitStats)
		})
	})

	return otelhttp.NewHandler(r, "bakeryspot-http")
}
