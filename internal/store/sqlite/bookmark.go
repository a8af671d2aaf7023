package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
)

var _ bookmarks.Backend = (*Store)(nil)

// Load returns the stored collection of profile, or an empty snapshot.
func (s *Store) Load(ctx context.Context, profile string) (bookmarks.Snapshot, error) {
	var snap bookmarks.Snapshot
	err := s.conn.QueryRowContext(ctx,
		"SELECT data, version FROM bookmark_collections WHERE profile = ?", profile,
	).Scan(&snap.Data, &snap.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return bookmarks.Snapshot{}, nil
	}
	if err != nil {
		return bookmarks.Snapshot{}, fmt.Errorf("load bookmarks: %w", err)
	}
	return snap, nil
}

// Save is a single conditional statement: an INSERT for a profile that has
// never been written, an UPDATE guarded by the version otherwise. No affected
// row means another writer got there first.
func (s *Store) Save(ctx context.Context, profile string, data []byte, expectedVersion int64) (int64, error) {
	now := time.Now().UTC()
	next := expectedVersion + 1

	var (
		res sql.Result
		err error
	)
	if expectedVersion == 0 {
		res, err = s.conn.ExecContext(ctx,
			`INSERT INTO bookmark_collections (profile, data, version, updated_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(profile) DO NOTHING`,
			profile, data, next, now)
	} else {
		res, err = s.conn.ExecContext(ctx,
			`UPDATE bookmark_collections SET data = ?, version = ?, updated_at = ?
			 WHERE profile = ? AND version = ?`,
			data, next, now, profile, expectedVersion)
	}
	if err != nil {
		return 0, fmt.Errorf("save bookmarks: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("save bookmarks: %w", err)
	}
	if n == 0 {
		return 0, bookmarks.ErrVersionConflict
	}
	return next, nil
}

// Profiles returns the number of stored collections.
func (s *Store) Profiles(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookmark_collections").Scan(&n); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}
