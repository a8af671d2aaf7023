package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/brightfeed/internal/index"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
	redisstore "github.com/MrSnakeDoc/brightfeed/internal/store/redis"
)

// ListingSource returns the cached listing, or nil when there is none
type ListingSource interface {
	GetListing(ctx context.Context) (*redisstore.CachedListing, error)
}

// CacheSyncer warms the news index from the Redis listing cache on startup
type CacheSyncer struct {
	source ListingSource
	index  *index.NewsIndex
	logger logger.Logger
}

// NewCacheSyncer creates a new cache syncer
func NewCacheSyncer(source ListingSource, idx *index.NewsIndex, log logger.Logger) *CacheSyncer {
	return &CacheSyncer{
		source: source,
		index:  idx,
		logger: log,
	}
}

// Sync loads the cached listing into an empty index. It does nothing when
// the index already holds articles.
func (cs *CacheSyncer) Sync(ctx context.Context) error {
	if cs.index.Total() > 0 {
		return nil
	}

	listing, err := cs.source.GetListing(ctx)
	if err != nil {
		return err
	}
	if listing == nil || len(listing.Articles) == 0 {
		cs.logger.Info("no cached news listing found in redis")
		return nil
	}

	res := cs.index.Update(listing.Articles, listing.FetchedAt)

	cs.logger.Info("warmed news index from redis",
		logger.Int("count", res.Active),
		logger.Duration("age", time.Since(listing.FetchedAt)))
	return nil
}
