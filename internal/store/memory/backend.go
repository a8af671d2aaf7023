// Package memory is an in-process bookmark backend. Collections live only as
// long as the process; it is used for local runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
)

type entry struct {
	data    []byte
	version int64
}

var _ bookmarks.Backend = (*Backend)(nil)

// Backend implements bookmarks.Backend on a mutex-guarded map.
type Backend struct {
	mu         sync.RWMutex
	entries    map[string]entry
	writeError error
}

// New creates an empty memory backend.
func New() *Backend {
	return &Backend{entries: make(map[string]entry)}
}

func (b *Backend) Name() string { return "memory" }

func (b *Backend) Ping(context.Context) error { return nil }

// Load returns a copy of the stored collection.
func (b *Backend) Load(ctx context.Context, profile string) (bookmarks.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return bookmarks.Snapshot{}, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.entries[profile]
	if !ok {
		return bookmarks.Snapshot{}, nil
	}
	return bookmarks.Snapshot{Data: clone(e.data), Version: e.version}, nil
}

// Save stores data if the current version equals expectedVersion.
func (b *Backend) Save(ctx context.Context, profile string, data []byte, expectedVersion int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.writeError != nil {
		return 0, b.writeError
	}

	current := b.entries[profile]
	if current.version != expectedVersion {
		return 0, bookmarks.ErrVersionConflict
	}

	next := entry{data: clone(data), version: current.version + 1}
	b.entries[profile] = next
	return next.version, nil
}

// SetWriteError makes every following Save fail with err (nil restores).
// It simulates an unavailable or full storage.
func (b *Backend) SetWriteError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writeError = err
}

// Put overwrites the raw stored value of profile and bumps its version,
// bypassing any check. It stands in for a foreign writer.
func (b *Backend) Put(profile string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	current := b.entries[profile]
	b.entries[profile] = entry{data: clone(data), version: current.version + 1}
}

func clone(data []byte) []byte {
	if data == nil {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
