package app

import (
	"fmt"
	"io"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
	"github.com/MrSnakeDoc/brightfeed/internal/config"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
	"github.com/MrSnakeDoc/brightfeed/internal/redis"
	"github.com/MrSnakeDoc/brightfeed/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/brightfeed/internal/store/redis"
	"github.com/MrSnakeDoc/brightfeed/internal/store/sqlite"
	"github.com/MrSnakeDoc/brightfeed/internal/utils"
)

// Storage is the bookmark backend selected by BRIGHTFEED_STORE and the
// connections it owns.
type Storage struct {
	Backend     bookmarks.Backend
	RedisClient *goredis.Client   // nil when redis is not configured
	RedisStore  *redisstore.Store // nil when redis is not configured
	closers     []namedCloser
}

type namedCloser struct {
	name string
	c    io.Closer
}

// OpenStorage connects redis when configured and opens the bookmark backend.
// Redis is connected first: fail fast if it is required and unavailable.
func OpenStorage(cfg *config.Config, log logger.Logger) (*Storage, error) {
	s := &Storage{}

	if cfg.RedisEnabled {
		client, err := redis.New(redisOptions(cfg), log)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.RedisClient = client
		s.RedisStore = redisstore.NewStore(client)
		s.closers = append(s.closers, namedCloser{"redis", client})
	}

	switch cfg.Store {
	case config.StoreRedis:
		s.Backend = s.RedisStore
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			s.Close(log)
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		s.Backend = db
		s.closers = append(s.closers, namedCloser{"sqlite", db})
	case config.StoreMemory:
		log.Warn("bookmarks are kept in memory and lost on restart")
		s.Backend = memory.New()
	default:
		s.Close(log)
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	log.Info("bookmark storage ready",
		logger.String("backend", s.Backend.Name()),
		logger.Bool("redis", s.RedisClient != nil))
	return s, nil
}

// Close releases connections in reverse opening order.
func (s *Storage) Close(log logger.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		utils.CloseLogged(s.closers[i].c, s.closers[i].name, log)
	}
	s.closers = nil
}

func redisOptions(cfg *config.Config) redis.ConnectOptions {
	return redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}
}
