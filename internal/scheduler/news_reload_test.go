package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/brightfeed/internal/domain"
	"github.com/MrSnakeDoc/brightfeed/internal/index"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
)

type stubFetcher struct {
	mu       sync.Mutex
	articles []domain.Article
	err      error
	calls    int
}

func (f *stubFetcher) Fetch(context.Context) ([]domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.articles, f.err
}

func (f *stubFetcher) set(articles []domain.Article, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.articles, f.err = articles, err
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type stubCache struct {
	saved []domain.Article
	err   error
}

func (c *stubCache) SaveListing(_ context.Context, articles []domain.Article, _ time.Time, _ time.Duration) error {
	c.saved = articles
	return c.err
}

func TestReloadUpdatesIndexAndCache(t *testing.T) {
	fetcher := &stubFetcher{articles: []domain.Article{article("a"), article("b")}}
	cache := &stubCache{}
	idx := index.NewNewsIndex()

	nr := NewNewsReloader(fetcher, cache, time.Hour, idx, nil, logger.NewNop(), time.Hour, nil)
	if err := nr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if idx.Count() != 2 || len(cache.saved) != 2 {
		t.Errorf("index count = %d, cached = %d, want 2 and 2", idx.Count(), len(cache.saved))
	}

	fetcher.set([]domain.Article{article("b")}, nil)
	if err := nr.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if idx.Count() != 1 || idx.Total() != 2 {
		t.Errorf("after second reload: Count() = %d, Total() = %d, want 1, 2", idx.Count(), idx.Total())
	}
}

func TestReloadKeepsIndexOnUpstreamError(t *testing.T) {
	fetcher := &stubFetcher{articles: []domain.Article{article("a")}}
	idx := index.NewNewsIndex()
	nr := NewNewsReloader(fetcher, nil, time.Hour, idx, nil, logger.NewNop(), time.Hour, nil)

	if err := nr.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	fetcher.set(nil, errors.New("upstream down"))
	if err := nr.Reload(context.Background()); err == nil {
		t.Fatal("Reload() should return the fetch error")
	}
	if idx.Count() != 1 {
		t.Errorf("index was modified by a failed reload, Count() = %d", idx.Count())
	}
}

func TestReloadCacheFailureIsNotFatal(t *testing.T) {
	fetcher := &stubFetcher{articles: []domain.Article{article("a")}}
	cache := &stubCache{err: errors.New("redis down")}
	nr := NewNewsReloader(fetcher, cache, time.Hour, index.NewNewsIndex(), nil, logger.NewNop(), time.Hour, nil)

	if err := nr.Reload(context.Background()); err != nil {
		t.Errorf("Reload() error = %v, want nil", err)
	}
}

func TestManualTrigger(t *testing.T) {
	fetcher := &stubFetcher{articles: []domain.Article{article("a")}}
	trigger := make(chan struct{}, 1)
	nr := NewNewsReloader(fetcher, nil, time.Hour, index.NewNewsIndex(), nil, logger.NewNop(), time.Hour, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := nr.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer nr.Stop()

	trigger <- struct{}{}

	deadline := time.After(time.Second)
	for fetcher.callCount() < 2 {
		select {
		case <-deadline:
			t.Fatalf("manual trigger not handled, calls = %d", fetcher.callCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
}
