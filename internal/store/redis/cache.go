package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/brightfeed/internal/domain"
)

// CachedListing is the news listing as stored in Redis
type CachedListing struct {
	FetchedAt time.Time        `json:"fetched_at"`
	Articles  []domain.Article `json:"articles"`
}

// SaveListing caches the latest upstream listing
func (s *Store) SaveListing(ctx context.Context, articles []domain.Article, fetchedAt time.Time, ttl time.Duration) error {
	data, err := json.Marshal(CachedListing{FetchedAt: fetchedAt.UTC(), Articles: articles})
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}
	if err := s.client.Set(ctx, NewsListingKey(), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache listing: %w", err)
	}
	return nil
}

// GetListing retrieves the cached listing; a miss returns nil without error
func (s *Store) GetListing(ctx context.Context) (*CachedListing, error) {
	data, err := s.client.Get(ctx, NewsListingKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get cached listing: %w", err)
	}

	var listing CachedListing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached listing: %w", err)
	}
	return &listing, nil
}

// InvalidateListing removes the cached listing
func (s *Store) InvalidateListing(ctx context.Context) error {
	if err := s.client.Del(ctx, NewsListingKey()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate listing: %w", err)
	}
	return nil
}
