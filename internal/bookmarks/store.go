package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/brightfeed/internal/domain"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
)

// Store is the only owner of bookmark collections. Views ask it whether an
// article is bookmarked, toggle it, or list the collection; none of them read
// the backend directly.
//
// Every operation is a full read (and for Toggle, a full rewrite) of the
// profile's collection. Concurrent writers are detected through the backend
// version and rejected with ErrVersionConflict instead of clobbering.
type Store struct {
	backend  Backend
	notifier Notifier
	logger   logger.Logger
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store. notifier may be nil, in which case toggles are
// not broadcast.
func NewStore(backend Backend, notifier Notifier, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		notifier: notifier,
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ToggleResult is the outcome of a successful Toggle.
type ToggleResult struct {
	Bookmarked bool                `json:"bookmarked"`
	ArticleID  string              `json:"article_id"`
	Count      int                 `json:"count"`
	Version    int64               `json:"version"`
	Article    domain.SavedArticle `json:"article"`
}

// IsBookmarked reports whether article is in the profile's collection.
func (s *Store) IsBookmarked(ctx context.Context, profile string, article domain.Article) (bool, error) {
	records, _, err := s.load(ctx, profile)
	if err != nil {
		return false, err
	}
	return indexOf(records, domain.ArticleID(article)) >= 0, nil
}

// List returns the profile's collection in insertion order.
func (s *Store) List(ctx context.Context, profile string) ([]domain.SavedArticle, error) {
	records, _, err := s.load(ctx, profile)
	return records, err
}

// Snapshot returns the collection and the version it was stored under, both
// from a single read.
func (s *Store) Snapshot(ctx context.Context, profile string) ([]domain.SavedArticle, int64, error) {
	return s.load(ctx, profile)
}

// Version returns the current stored version of the profile's collection.
func (s *Store) Version(ctx context.Context, profile string) (int64, error) {
	if err := domain.ValidateProfileID(profile); err != nil {
		return 0, err
	}
	snap, err := s.backend.Load(ctx, profile)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	return snap.Version, nil
}

// Toggle removes article from the collection if present (first match only),
// otherwise appends a snapshot of it. The whole collection is written back in
// one compare-and-set; on any failure nothing is broadcast and the stored
// collection is unchanged.
func (s *Store) Toggle(ctx context.Context, profile string, article domain.Article) (ToggleResult, error) {
	records, version, err := s.load(ctx, profile)
	if err != nil {
		return ToggleResult{}, err
	}

	id := domain.ArticleID(article)
	result := ToggleResult{ArticleID: id}
	action := ActionAdded

	if i := indexOf(records, id); i >= 0 {
		result.Article = records[i]
		records = append(records[:i:i], records[i+1:]...)
		action = ActionRemoved
	} else {
		saved := domain.Snapshot(article, s.now())
		result.Article = saved
		result.Bookmarked = true
		records = append(records, saved)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return ToggleResult{}, fmt.Errorf("%w: encode collection: %w", ErrWriteFailed, err)
	}

	newVersion, err := s.backend.Save(ctx, profile, data, version)
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			s.logger.Warn("bookmark toggle rejected, collection changed concurrently",
				logger.String("profile", profile),
				logger.String("article_id", id),
				logger.Int64("read_version", version))
			return ToggleResult{}, err
		}
		s.logger.Error("failed to persist bookmark collection",
			logger.String("profile", profile),
			logger.String("backend", s.backend.Name()),
			logger.Error(err))
		return ToggleResult{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	result.Count = len(records)
	result.Version = newVersion

	s.logger.Info("bookmark toggled",
		logger.String("profile", profile),
		logger.String("article_id", id),
		logger.String("action", string(action)),
		logger.Int("count", result.Count),
		logger.Int64("version", newVersion))

	s.publish(ctx, Change{
		Profile:   profile,
		Action:    action,
		ArticleID: id,
		Version:   newVersion,
		Bookmarks: records,
		At:        s.now().UTC(),
	})

	return result, nil
}

// publish is best effort: the write has already committed.
func (s *Store) publish(ctx context.Context, change Change) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, change); err != nil {
		s.logger.Warn("failed to broadcast bookmark change",
			logger.String("profile", change.Profile),
			logger.Int64("version", change.Version),
			logger.Error(err))
	}
}

// load reads and decodes a collection. Undecodable data is logged and read
// as an empty collection; only backend failures are returned.
func (s *Store) load(ctx context.Context, profile string) ([]domain.SavedArticle, int64, error) {
	if err := domain.ValidateProfileID(profile); err != nil {
		return nil, 0, err
	}

	snap, err := s.backend.Load(ctx, profile)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	records := []domain.SavedArticle{}
	if len(snap.Data) == 0 {
		return records, snap.Version, nil
	}
	if err := json.Unmarshal(snap.Data, &records); err != nil {
		s.logger.Warn("stored bookmark collection is corrupt, treating as empty",
			logger.String("profile", profile),
			logger.Int64("version", snap.Version),
			logger.Int("bytes", len(snap.Data)),
			logger.Error(err))
		return []domain.SavedArticle{}, snap.Version, nil
	}
	if records == nil {
		// "null" decodes to a nil slice.
		records = []domain.SavedArticle{}
	}
	for i := range records {
		// Records imported without an identity get the derived one.
		if records[i].ID == "" {
			records[i].ID = domain.ArticleID(records[i].Article())
		}
	}
	return records, snap.Version, nil
}

func indexOf(records []domain.SavedArticle, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
