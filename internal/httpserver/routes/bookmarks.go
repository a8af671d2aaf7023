package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/deps"
	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/api/profiles/{profile}/bookmarks", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))

		// No timeout: the stream lives as long as the client.
		r.Get("/events", handlers.BookmarkEvents(d))

		r.Group(func(r chi.Router) {
			r.Use(timeout(d))
			r.Get("/", handlers.ListBookmarks(d))
			r.Post("/status", handlers.BookmarkStatus(d))
			r.With(mw.RateLimit(mw.RateLimitConfig{
				Burst:             d.ToggleBurst,
				RefillPerIPPerMin: d.ToggleRefill,
				MaxEntries:        10000,
				TrustProxy:        d.TrustProxy,
				OnReject: func(*http.Request) {
					d.Metrics.ObserveToggle("", "rate_limited")
				},
			})).Post("/toggle", handlers.ToggleBookmark(d))
		})
	})
}
