// Package events fans bookmark signals out to every open view of a profile.
//
// Broker is the in-process fan-out. RedisRelay carries the same signals
// between service instances over Redis pub/sub and feeds them into the
// local Broker.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
)

// Event types sent on a bookmark stream.
const (
	EventTypeBookmarksChanged = "bookmarks.changed"
	EventTypeBookmarksResync  = "bookmarks.resync"
	EventTypeConnected        = "connected"
)

// Event is one message delivered to subscribers.
// On the wire: event: <Type>\nid: <ID>\ndata: <JSON Data>\n\n
type Event struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Profile string `json:"-"`
	Data    any    `json:"data"`
}

// ResyncData is the payload of a bookmarks.resync event. A view whose last
// known version differs should re-read its collection.
type ResyncData struct {
	Profile string    `json:"profile"`
	Version int64     `json:"version"`
	At      time.Time `json:"at"`
}

// ChangedEvent wraps a bookmark change.
func ChangedEvent(change bookmarks.Change) Event {
	return Event{
		Type:    EventTypeBookmarksChanged,
		ID:      uuid.NewString(),
		Profile: change.Profile,
		Data:    change,
	}
}

// ResyncEvent builds the periodic re-check hint for profile.
func ResyncEvent(profile string, version int64) Event {
	return Event{
		Type:    EventTypeBookmarksResync,
		ID:      uuid.NewString(),
		Profile: profile,
		Data:    ResyncData{Profile: profile, Version: version, At: time.Now().UTC()},
	}
}

// Filter decides whether a subscriber receives an event.
type Filter func(Event) bool

// ForProfile passes only events of one profile.
func ForProfile(profile string) Filter {
	return func(e Event) bool { return e.Profile == profile }
}

// Local publishes bookmark changes to this instance's Broker only.
// It is the Notifier used when no Redis relay is configured.
type Local struct {
	Broker *Broker
}

var _ bookmarks.Notifier = Local{}

func (l Local) Publish(ctx context.Context, change bookmarks.Change) error {
	return l.Broker.Publish(ctx, ChangedEvent(change))
}
