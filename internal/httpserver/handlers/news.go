package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/brightfeed/internal/domain"
	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/deps"
	"github.com/MrSnakeDoc/brightfeed/internal/sources/catalog"
)

// News serves the active listing filtered by ?category=, ?q= and ?sentiment=.
// The body is a JSON array, as upstream serves it.
func News(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		cat := d.Catalog.Get()

		slug, ok := resolveCategory(cat, q.Get("category"))
		if !ok {
			writeError(w, http.StatusNotFound, "unknown category")
			return
		}

		var bucket domain.Bucket
		if s := strings.TrimSpace(q.Get("sentiment")); s != "" {
			b, ok := domain.ParseBucket(strings.ToLower(s))
			if !ok {
				writeError(w, http.StatusBadRequest, "sentiment must be positive, neutral or negative")
				return
			}
			bucket = b
		}

		if !newsAvailable(w, d) {
			return
		}

		articles := inCategory(cat, d.NewsIndex.Articles(), slug)
		articles = domain.FilterArticles(articles, domain.Filter{
			Query:     q.Get("q"),
			Sentiment: bucket,
		})

		writeJSON(w, http.StatusOK, articles)
	}
}

type sentimentResponse struct {
	domain.SentimentBreakdown
	PositivePct float64 `json:"positive_pct"`
	NeutralPct  float64 `json:"neutral_pct"`
	NegativePct float64 `json:"negative_pct"`
}

// Sentiment serves the bucket breakdown of one category, or of every
// category with ?category=all.
func Sentiment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat := d.Catalog.Get()

		slug, ok := resolveCategory(cat, r.URL.Query().Get("category"))
		if !ok {
			writeError(w, http.StatusNotFound, "unknown category")
			return
		}
		if !newsAvailable(w, d) {
			return
		}

		b := domain.Breakdown(slug, inCategory(cat, d.NewsIndex.Articles(), slug))
		writeJSON(w, http.StatusOK, sentimentResponse{
			SentimentBreakdown: b,
			PositivePct:        b.Percentage(domain.BucketPositive),
			NeutralPct:         b.Percentage(domain.BucketNeutral),
			NegativePct:        b.Percentage(domain.BucketNegative),
		})
	}
}

// Categories serves the catalog
func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Catalog.Get().Categories())
	}
}

// resolveCategory maps a requested category to its slug. An empty value or
// "all" selects everything.
func resolveCategory(cat *catalog.Catalog, requested string) (string, bool) {
	requested = strings.TrimSpace(requested)
	if requested == "" || strings.EqualFold(requested, domain.CategoryAll) {
		return domain.CategoryAll, true
	}
	c, ok := cat.Lookup(requested)
	if !ok {
		return "", false
	}
	return c.Slug, true
}

// inCategory keeps articles whose category, or one of its aliases, is slug.
func inCategory(cat *catalog.Catalog, list []domain.Article, slug string) []domain.Article {
	if slug == domain.CategoryAll {
		return list
	}
	out := make([]domain.Article, 0, len(list))
	for _, a := range list {
		if domain.MatchesCategory(a, slug) {
			out = append(out, a)
			continue
		}
		if c, ok := cat.Lookup(a.Category); ok && c.Slug == slug {
			out = append(out, a)
		}
	}
	return out
}

// newsAvailable writes 502 when upstream has never been reached and nothing
// is cached.
func newsAvailable(w http.ResponseWriter, d deps.Deps) bool {
	last := d.NewsIndex.LastReload()
	if last.IsZero() && d.NewsIndex.Total() == 0 {
		writeError(w, http.StatusBadGateway, "news listing not available yet")
		return false
	}
	w.Header().Set("Last-Modified", last.UTC().Format(http.TimeFormat))
	return true
}
