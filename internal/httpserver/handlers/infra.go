package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/deps"
)

type componentStatus struct {
	OK             bool   `json:"ok"`
	Backend        string `json:"backend,omitempty"`
	ArticlesLoaded *int   `json:"articles_loaded,omitempty"`
	Categories     *int   `json:"categories,omitempty"`
	Subscribers    *int   `json:"subscribers,omitempty"`
	LastReload     string `json:"last_reload,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Error          string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		articles := d.NewsIndex.Count()
		lastReload := d.NewsIndex.LastReload()
		lastReloadStr := "never"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format("2006-01-02 15:04:05")
		}
		categories := d.Catalog.Get().Len()
		subscribers := d.Broker.ClientCount()

		components := map[string]componentStatus{
			"bookmarks": checkBackend(r.Context(), d),
			"redis":     checkRedis(r.Context(), d),
			"news": {
				OK:             articles > 0,
				ArticlesLoaded: &articles,
				Categories:     &categories,
				LastReload:     lastReloadStr,
			},
			"events": {
				OK:          true,
				Subscribers: &subscribers,
			},
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	// Bookmarks are the core feature.
	if c, ok := components["bookmarks"]; ok && !c.OK {
		return "critical"
	}
	for _, name := range []string{"news", "redis"} {
		if c, ok := components[name]; ok && !c.OK && c.Mode != "disabled" {
			return "degraded"
		}
	}
	return "ok"
}

func checkBackend(ctx context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Backend.Ping(ctx); err != nil {
		return componentStatus{
			OK:      false,
			Backend: d.Backend.Name(),
			Impact:  "bookmarks-unavailable",
			Error:   err.Error(),
		}
	}
	return componentStatus{OK: true, Backend: d.Backend.Name()}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "single-instance-events,no-listing-cache",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "cross-instance-events-disabled",
			Error:  "timeout",
		}
	}

	return componentStatus{OK: true, Mode: "optimal"}
}
