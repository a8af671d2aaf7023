package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/brightfeed/internal/domain"
	"github.com/MrSnakeDoc/brightfeed/internal/index"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
	"github.com/MrSnakeDoc/brightfeed/internal/metrics"
)

// Fetcher returns the current upstream listing
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.Article, error)
}

// ListingCache persists the last good listing so a restart can serve it
// before upstream answers
type ListingCache interface {
	SaveListing(ctx context.Context, articles []domain.Article, fetchedAt time.Time, ttl time.Duration) error
}

// NewsReloader handles periodic reloading of the upstream news listing
type NewsReloader struct {
	fetcher       Fetcher
	cache         ListingCache
	cacheTTL      time.Duration
	index         *index.NewsIndex
	metrics       *metrics.Metrics
	logger        logger.Logger
	interval      time.Duration
	now           func() time.Time
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewNewsReloader creates a new news reloader. cache may be nil.
func NewNewsReloader(
	fetcher Fetcher,
	cache ListingCache,
	cacheTTL time.Duration,
	idx *index.NewsIndex,
	m *metrics.Metrics,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *NewsReloader {
	return &NewsReloader{
		fetcher:       fetcher,
		cache:         cache,
		cacheTTL:      cacheTTL,
		index:         idx,
		metrics:       m,
		logger:        log,
		interval:      interval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads once, then keeps reloading on the interval and on manual
// triggers. A failed first load is logged, not fatal: the index may already
// be warm from the listing cache, and the next tick retries.
func (nr *NewsReloader) Start(ctx context.Context) error {
	if err := nr.Reload(ctx); err != nil {
		nr.logger.Warn("initial news reload failed",
			logger.Int("cached_articles", nr.index.Count()),
			logger.Error(err))
	}

	ticker := time.NewTicker(nr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := nr.Reload(ctx); err != nil {
					nr.logger.Error("failed to reload news", logger.Error(err))
				}
			case <-nr.manualTrigger:
				nr.logger.Info("manual reload triggered")
				if err := nr.Reload(ctx); err != nil {
					nr.logger.Error("failed to reload news", logger.Error(err))
				}
			case <-nr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (nr *NewsReloader) Stop() {
	close(nr.stopCh)
}

// Reload fetches the listing and updates the index and cache
func (nr *NewsReloader) Reload(ctx context.Context) (err error) {
	start := nr.now()
	defer func() { nr.metrics.ObserveReload(err, time.Since(start)) }()

	nr.logger.Debug("reloading news from upstream")

	articles, err := nr.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch news: %w", err)
	}

	now := nr.now()
	res := nr.index.Update(articles, now)

	nr.logger.Info("news reloaded",
		logger.Int("active", res.Active),
		logger.Int("added", res.Added),
		logger.Int("disabled", res.Disabled))

	// Best effort: the memory index is the primary source.
	if nr.cache != nil {
		if err := nr.cache.SaveListing(ctx, articles, now, nr.cacheTTL); err != nil {
			nr.logger.Warn("failed to cache news listing", logger.Error(err))
		}
	}

	return nil
}
