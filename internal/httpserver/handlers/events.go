package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/brightfeed/internal/domain"
	"github.com/MrSnakeDoc/brightfeed/internal/events"
	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/deps"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
)

const sseContentType = "text/event-stream"

type connectedData struct {
	Profile string    `json:"profile"`
	Version int64     `json:"version"`
	At      time.Time `json:"at"`
}

// BookmarkEvents streams bookmark signals of one profile over SSE:
// a connected event carrying the current version, every bookmarks.changed,
// and a bookmarks.resync hint each ResyncInterval.
func BookmarkEvents(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := chi.URLParam(r, "profile")
		if err := domain.ValidateProfileID(profile); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		rc := http.NewResponseController(w)
		// The server write timeout would cut the stream.
		if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
			d.Logger.Warn("could not clear write deadline", logger.Error(err))
		}

		stream, cancel, err := d.Broker.Subscribe(r.Context(), events.WithFilter(events.ForProfile(profile)))
		if err != nil {
			if errors.Is(err, events.ErrTooManyClients) {
				writeError(w, http.StatusServiceUnavailable, "too many connections")
				return
			}
			writeError(w, http.StatusServiceUnavailable, "event stream unavailable")
			return
		}
		defer cancel()

		version, err := d.Bookmarks.Version(r.Context(), profile)
		if err != nil {
			// Streaming still works; the first resync carries the version.
			d.Logger.Warn("could not read bookmark version for stream",
				logger.String("profile", profile),
				logger.Error(err))
		}

		w.Header().Set("Content-Type", sseContentType)
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		connected := events.Event{
			Type:    events.EventTypeConnected,
			ID:      uuid.NewString(),
			Profile: profile,
			Data:    connectedData{Profile: profile, Version: version, At: d.Now().UTC()},
		}
		if err := writeEvent(w, rc, connected); err != nil {
			return
		}

		d.Logger.Debug("bookmark stream opened", logger.String("profile", profile))
		defer d.Logger.Debug("bookmark stream closed", logger.String("profile", profile))

		interval := d.ResyncInterval
		if interval <= 0 {
			interval = 30 * time.Second
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case ev, ok := <-stream:
				if !ok {
					return
				}
				if err := writeEvent(w, rc, ev); err != nil {
					d.Logger.Debug("bookmark stream write failed", logger.Error(err))
					return
				}
			case <-ticker.C:
				v, err := d.Bookmarks.Version(r.Context(), profile)
				if err != nil {
					d.Logger.Warn("resync version read failed",
						logger.String("profile", profile),
						logger.Error(err))
					continue
				}
				if err := writeEvent(w, rc, events.ResyncEvent(profile, v)); err != nil {
					return
				}
			case <-r.Context().Done():
				return
			}
		}
	}
}

// writeEvent writes one SSE frame and flushes it.
func writeEvent(w io.Writer, rc *http.ResponseController, ev events.Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\nid: %s\ndata: %s\n\n", ev.Type, ev.ID, data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return rc.Flush()
}
