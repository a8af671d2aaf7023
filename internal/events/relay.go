package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
	store "github.com/MrSnakeDoc/brightfeed/internal/store/redis"
)

// RedisRelay publishes bookmark changes on a Redis channel and forwards every
// change received on it, including this instance's own, into the local
// Broker. Every instance sharing the Redis server therefore reaches every
// open stream.
type RedisRelay struct {
	client  *redis.Client
	broker  *Broker
	channel string
	logger  logger.Logger

	mu       sync.Mutex
	pubsub   *redis.PubSub
	cancelFn context.CancelFunc
	wg       sync.WaitGroup
	running  bool
}

var _ bookmarks.Notifier = (*RedisRelay)(nil)

func NewRedisRelay(client *redis.Client, broker *Broker, log logger.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		broker:  broker,
		channel: store.ChannelEvents,
		logger:  log,
	}
}

// Start subscribes and returns once Redis has confirmed the subscription.
func (r *RedisRelay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	listenerCtx, cancel := context.WithCancel(ctx)
	pubsub := r.client.Subscribe(listenerCtx, r.channel)
	if _, err := pubsub.Receive(listenerCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}

	r.pubsub = pubsub
	r.cancelFn = cancel
	r.running = true

	r.wg.Add(1)
	go r.processMessages(listenerCtx, pubsub.Channel())

	r.logger.Info("event relay started", logger.String("channel", r.channel))
	return nil
}

// Stop closes the subscription and waits for the listener to exit.
func (r *RedisRelay) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.cancelFn()
	err := r.pubsub.Close()
	r.running = false
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Info("event relay stopped")
	return err
}

// Publish sends change to every instance. If Redis rejects it the change is
// still delivered to local subscribers and the Redis error is returned.
func (r *RedisRelay) Publish(ctx context.Context, change bookmarks.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}

	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		if localErr := r.broker.Publish(ctx, ChangedEvent(change)); localErr != nil {
			return fmt.Errorf("relay publish: %w (local delivery: %v)", err, localErr)
		}
		return fmt.Errorf("relay publish, delivered locally only: %w", err)
	}
	return nil
}

func (r *RedisRelay) processMessages(ctx context.Context, ch <-chan *redis.Message) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.forward(ctx, msg)
		}
	}
}

func (r *RedisRelay) forward(ctx context.Context, msg *redis.Message) {
	var change bookmarks.Change
	if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
		r.logger.Warn("dropping undecodable relay message",
			logger.String("channel", msg.Channel),
			logger.Error(err))
		return
	}
	if change.Profile == "" {
		r.logger.Warn("dropping relay message without profile", logger.String("channel", msg.Channel))
		return
	}
	if err := r.broker.Publish(ctx, ChangedEvent(change)); err != nil {
		r.logger.Warn("failed to forward relayed change",
			logger.String("profile", change.Profile),
			logger.Error(err))
	}
}
