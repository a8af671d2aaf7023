package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
	"github.com/MrSnakeDoc/brightfeed/internal/domain"
	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/deps"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeBody reads a single JSON value from a size-limited body.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

// writeBookmarkError maps bookmark store errors to HTTP statuses.
func writeBookmarkError(w http.ResponseWriter, d deps.Deps, profile string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidProfile):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bookmarks.ErrVersionConflict):
		writeError(w, http.StatusConflict, "bookmarks changed in another view, re-check and retry")
	case errors.Is(err, bookmarks.ErrWriteFailed):
		writeError(w, http.StatusServiceUnavailable, "could not save bookmarks, storage unavailable or full")
	case errors.Is(err, bookmarks.ErrReadFailed):
		writeError(w, http.StatusServiceUnavailable, "could not read bookmarks")
	default:
		d.Logger.Error("unexpected bookmark error",
			logger.String("profile", profile),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
