package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/brightfeed/internal/index"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
	"github.com/MrSnakeDoc/brightfeed/internal/metrics"
)

const (
	// DefaultGCThreshold is how long an article stays disabled before it is deleted
	DefaultGCThreshold = 7 * 24 * time.Hour
)

// GarbageCollector removes articles that left the upstream listing long ago
type GarbageCollector struct {
	index     *index.NewsIndex
	metrics   *metrics.Metrics
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(
	idx *index.NewsIndex,
	m *metrics.Metrics,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *GarbageCollector {
	if threshold == 0 {
		threshold = DefaultGCThreshold
	}

	return &GarbageCollector{
		index:     idx,
		metrics:   m,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	gc.Collect(ctx)

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gc.Collect(ctx)
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect deletes disabled articles older than the threshold and returns
// how many were removed
func (gc *GarbageCollector) Collect(ctx context.Context) int {
	now := gc.now()
	deleted := 0

	for _, e := range gc.index.Entries() {
		if ctx.Err() != nil {
			break
		}
		if !e.Disabled || e.UpdatedAt.IsZero() {
			continue
		}

		disabledFor := now.Sub(e.UpdatedAt)
		if disabledFor < gc.threshold {
			continue
		}

		gc.index.Delete(e.ID)
		gc.logger.Debug("garbage collected disabled article",
			logger.String("article_id", e.ID),
			logger.String("headline", e.Article.Headline),
			logger.String("disabled_for", disabledFor.String()))
		deleted++
	}

	gc.metrics.ObserveGC(deleted)
	if deleted > 0 {
		gc.logger.Info("garbage collection completed", logger.Int("deleted", deleted))
	} else {
		gc.logger.Debug("no articles to garbage collect")
	}
	return deleted
}
