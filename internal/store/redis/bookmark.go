package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
)

var _ bookmarks.Backend = (*Store)(nil)

// Load reads a profile's collection and its version in one MULTI block so
// both values come from the same point in time.
func (s *Store) Load(ctx context.Context, profile string) (bookmarks.Snapshot, error) {
	var dataCmd *redis.StringCmd
	var versionCmd *redis.StringCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		dataCmd = pipe.Get(ctx, BookmarkCollectionKey(profile))
		versionCmd = pipe.Get(ctx, BookmarkVersionKey(profile))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return bookmarks.Snapshot{}, fmt.Errorf("failed to load bookmarks: %w", err)
	}

	var snap bookmarks.Snapshot

	data, err := dataCmd.Bytes()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return bookmarks.Snapshot{}, fmt.Errorf("failed to read bookmarks: %w", err)
	default:
		snap.Data = data
	}

	version, err := versionCmd.Int64()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return bookmarks.Snapshot{}, fmt.Errorf("failed to read bookmarks version: %w", err)
	default:
		snap.Version = version
	}

	return snap, nil
}

// Save writes the collection if its version is still expectedVersion.
// The version key is WATCHed; SET and INCR run in one MULTI/EXEC, so the
// collection and its version change together or not at all.
func (s *Store) Save(ctx context.Context, profile string, data []byte, expectedVersion int64) (int64, error) {
	collectionKey := BookmarkCollectionKey(profile)
	versionKey := BookmarkVersionKey(profile)

	var incr *redis.IntCmd

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to read bookmarks version: %w", err)
		}
		if current != expectedVersion {
			return bookmarks.ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, collectionKey, data, 0)
			incr = pipe.Incr(ctx, versionKey)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, versionKey)
	switch {
	case err == nil:
		return incr.Val(), nil
	case errors.Is(err, redis.TxFailedErr), errors.Is(err, bookmarks.ErrVersionConflict):
		return 0, bookmarks.ErrVersionConflict
	default:
		return 0, fmt.Errorf("failed to save bookmarks: %w", err)
	}
}
