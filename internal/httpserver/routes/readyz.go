package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/deps"
	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/mw"
)

func init() { Register(registerProbes) }

func registerProbes(r chi.Router, d deps.Deps) {
	r.With(timeout(d)).Get("/healthz", handlers.Healthz(d))

	admin := r.With(timeout(d), mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	admin.Get("/readyz", handlers.Readyz(d))
	admin.Get("/infra", handlers.Infra(d))
}
