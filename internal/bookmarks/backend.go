package bookmarks

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/brightfeed/internal/domain"
)

var (
	// ErrVersionConflict is returned by Backend.Save when the stored version
	// no longer matches the one the caller read.
	ErrVersionConflict = errors.New("bookmark collection was modified concurrently")

	// ErrWriteFailed wraps any other failure to persist a collection.
	// The previously stored collection is left untouched.
	ErrWriteFailed = errors.New("bookmark write failed")

	// ErrReadFailed wraps backend failures while loading a collection.
	// It is never used for undecodable data, which reads as empty.
	ErrReadFailed = errors.New("bookmark read failed")
)

// Snapshot is the raw stored collection of one profile and its version.
// A profile that never saved anything has a nil Data and Version 0.
type Snapshot struct {
	Data    []byte
	Version int64
}

// Backend persists one serialized collection per profile.
//
// Save is compare-and-set: it must write data only if the stored version is
// still expectedVersion, and must write it whole or not at all. On success it
// returns the new version.
type Backend interface {
	Load(ctx context.Context, profile string) (Snapshot, error)
	Save(ctx context.Context, profile string, data []byte, expectedVersion int64) (int64, error)
	Ping(ctx context.Context) error
	Name() string
}

// Action describes what a toggle did.
type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
)

// Change is the broadcast signal emitted after a successful toggle.
type Change struct {
	Profile   string                `json:"profile"`
	Action    Action                `json:"action"`
	ArticleID string                `json:"article_id"`
	Version   int64                 `json:"version"`
	Bookmarks []domain.SavedArticle `json:"bookmarks,omitempty"`
	At        time.Time             `json:"at"`
}

// Notifier delivers Change signals to every view of the profile.
type Notifier interface {
	Publish(ctx context.Context, change Change) error
}
