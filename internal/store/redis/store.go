package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultListingTTL is how long a cached news listing stays usable (6 hours)
	DefaultListingTTL = 6 * time.Hour
)

// Store handles Redis operations for bookmark collections and the news cache
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Name identifies the backend in logs and status output
func (s *Store) Name() string {
	return "redis"
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
