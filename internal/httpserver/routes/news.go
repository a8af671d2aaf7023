package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/deps"
	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/mw"
)

func init() { Register(registerNews) }

func registerNews(r chi.Router, d deps.Deps) {
	api := r.With(timeout(d), mw.EnforceHost(d.AllowedHosts, d.Logger))
	api.Get("/api/news", handlers.News(d))
	api.Get("/api/categories", handlers.Categories(d))
	api.Get("/api/sentiment", handlers.Sentiment(d))
}
