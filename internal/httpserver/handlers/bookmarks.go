package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
	"github.com/MrSnakeDoc/brightfeed/internal/domain"
	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/deps"
)

// articleRequest is an article as the frontend holds it. When only id is
// sent, the article is resolved from the news index, then from the
// profile's own collection.
type articleRequest struct {
	domain.Article
	ID string `json:"id,omitempty"`
}

type statusResponse struct {
	ArticleID  string `json:"article_id"`
	Bookmarked bool   `json:"bookmarked"`
}

type listResponse struct {
	Profile   string                `json:"profile"`
	Version   int64                 `json:"version"`
	Count     int                   `json:"count"`
	Bookmarks []domain.SavedArticle `json:"bookmarks"`
}

var errArticleNotFound = errors.New("article not found")

// ListBookmarks serves the profile's collection in insertion order
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := chi.URLParam(r, "profile")

		list, version, err := d.Bookmarks.Snapshot(r.Context(), profile)
		if err != nil {
			writeBookmarkError(w, d, profile, err)
			return
		}
		if list == nil {
			list = []domain.SavedArticle{}
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, listResponse{
			Profile:   profile,
			Version:   version,
			Count:     len(list),
			Bookmarks: list,
		})
	}
}

// BookmarkStatus answers whether the posted article is bookmarked
func BookmarkStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := chi.URLParam(r, "profile")
		if err := domain.ValidateProfileID(profile); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		article, ok := readArticle(w, r, d, profile)
		if !ok {
			return
		}

		bookmarked, err := d.Bookmarks.IsBookmarked(r.Context(), profile, article)
		if err != nil {
			writeBookmarkError(w, d, profile, err)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, statusResponse{
			ArticleID:  domain.ArticleID(article),
			Bookmarked: bookmarked,
		})
	}
}

// ToggleBookmark flips the posted article in or out of the collection
func ToggleBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := chi.URLParam(r, "profile")
		if err := domain.ValidateProfileID(profile); err != nil {
			d.Metrics.ObserveToggle("", "invalid")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		article, ok := readArticle(w, r, d, profile)
		if !ok {
			d.Metrics.ObserveToggle("", "invalid")
			return
		}

		res, err := d.Bookmarks.Toggle(r.Context(), profile, article)
		if err != nil {
			d.Metrics.ObserveToggle("", toggleOutcome(err))
			writeBookmarkError(w, d, profile, err)
			return
		}

		action := bookmarks.ActionRemoved
		if res.Bookmarked {
			action = bookmarks.ActionAdded
		}
		d.Metrics.ObserveToggle(string(action), "ok")

		writeJSON(w, http.StatusOK, res)
	}
}

func toggleOutcome(err error) string {
	switch {
	case errors.Is(err, bookmarks.ErrVersionConflict):
		return "conflict"
	case errors.Is(err, bookmarks.ErrWriteFailed):
		return "write_failed"
	case errors.Is(err, bookmarks.ErrReadFailed):
		return "read_failed"
	default:
		return "error"
	}
}

// readArticle decodes the body and resolves a bare id. It writes the error
// response itself and returns false on failure.
func readArticle(w http.ResponseWriter, r *http.Request, d deps.Deps, profile string) (domain.Article, bool) {
	var req articleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.Article{}, false
	}

	if strings.TrimSpace(req.Headline) != "" || strings.TrimSpace(req.SourceLink) != "" {
		return req.Article, true
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "article needs a headline, a sourceLink or an id")
		return domain.Article{}, false
	}

	article, err := lookupArticle(r, d, profile, req.ID)
	if err != nil {
		if errors.Is(err, errArticleNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
		} else {
			writeBookmarkError(w, d, profile, err)
		}
		return domain.Article{}, false
	}
	return article, true
}

func lookupArticle(r *http.Request, d deps.Deps, profile, id string) (domain.Article, error) {
	if e, ok := d.NewsIndex.Get(id); ok {
		return e.Article, nil
	}
	saved, err := d.Bookmarks.List(r.Context(), profile)
	if err != nil {
		return domain.Article{}, err
	}
	for _, s := range saved {
		if s.ID == id {
			return s.Article(), nil
		}
	}
	return domain.Article{}, errArticleNotFound
}
