package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/brightfeed/internal/logger"
)

var (
	ErrTooManyClients   = errors.New("too many subscribers")
	ErrBrokerNotRunning = errors.New("broker is not running")
)

// Broker distributes events to subscribers. Publish only enqueues; a single
// loop delivers to every subscriber whose filter accepts the event. A
// subscriber whose buffer is full is disconnected rather than slowing the
// others down.
type Broker struct {
	logger  logger.Logger
	clients map[string]*client
	mu      sync.RWMutex

	publish chan Event

	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup

	eventBufferSize  int
	clientBufferSize int
	shutdownTimeout  time.Duration
	maxClients       int
}

func NewBroker(log logger.Logger, opts ...BrokerOption) *Broker {
	b := &Broker{
		logger:           log,
		clients:          make(map[string]*client),
		eventBufferSize:  DefaultEventBufferSize,
		clientBufferSize: DefaultClientBufferSize,
		shutdownTimeout:  DefaultShutdownTimeout,
		maxClients:       DefaultMaxClients,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.publish = make(chan Event, b.eventBufferSize)
	return b
}

// Start launches the delivery loop.
func (b *Broker) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return nil
	}
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.running = true
	b.mu.Unlock()

	b.wg.Add(1)
	go b.broadcastLoop()

	b.logger.Info("event broker started",
		logger.Int("event_buffer_size", b.eventBufferSize),
		logger.Int("client_buffer_size", b.clientBufferSize),
		logger.Int("max_clients", b.maxClients))
	return nil
}

// Stop disconnects every subscriber and waits for the loop to exit.
func (b *Broker) Stop() error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	b.cancel()
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event broker stopped")
		return nil
	case <-time.After(b.shutdownTimeout):
		b.logger.Warn("event broker shutdown timeout exceeded")
		return fmt.Errorf("event broker did not stop within %v", b.shutdownTimeout)
	}
}

// Publish enqueues an event without blocking. It fails when the queue is full.
func (b *Broker) Publish(ctx context.Context, event Event) error {
	select {
	case b.publish <- event:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publish cancelled: %w", ctx.Err())
	default:
		return fmt.Errorf("publish buffer full (dropped event: %s)", event.Type)
	}
}

// Subscribe registers a subscriber. The returned channel is closed when ctx
// ends, when the subscriber is evicted, or when the broker stops. cancel
// must be called once the caller stops reading.
func (b *Broker) Subscribe(ctx context.Context, opts ...SubscribeOption) (events <-chan Event, cancel func(), err error) {
	o := subscribeOptions{bufferSize: b.clientBufferSize}
	for _, opt := range opts {
		opt(&o)
	}

	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil, nil, ErrBrokerNotRunning
	}
	if b.maxClients > 0 && len(b.clients) >= b.maxClients {
		current := len(b.clients)
		b.mu.Unlock()
		b.logger.Warn("max subscribers reached, rejecting",
			logger.Int("max_clients", b.maxClients),
			logger.Int("current_clients", current))
		return nil, nil, ErrTooManyClients
	}
	c := newClient(ctx, o.bufferSize, o.filter)
	b.clients[c.id] = c
	total := len(b.clients)
	// Registered under the lock so Stop's Wait cannot miss it.
	b.wg.Add(1)
	b.mu.Unlock()

	b.logger.Debug("client subscribed",
		logger.String("client_id", c.id),
		logger.Int("total_clients", total))

	go b.cleanupClient(c)

	return c.events, func() { b.removeClient(c.id) }, nil
}

// ClientCount returns the number of subscribers.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broker) broadcastLoop() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.publish:
			b.broadcast(event)
		case <-b.ctx.Done():
			b.disconnectAllClients()
			return
		}
	}
}

func (b *Broker) broadcast(event Event) {
	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for _, c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	var slow []string
	for _, c := range clients {
		if !c.send(event) {
			slow = append(slow, c.id)
		}
	}

	for _, id := range slow {
		b.logger.Warn("client buffer full, closing slow subscriber",
			logger.String("client_id", id),
			logger.String("event_type", event.Type))
		b.removeClient(id)
	}
}

func (b *Broker) cleanupClient(c *client) {
	defer b.wg.Done()
	<-c.ctx.Done()
	b.removeClient(c.id)
}

func (b *Broker) removeClient(id string) {
	b.mu.Lock()
	c, ok := b.clients[id]
	if ok {
		delete(b.clients, id)
	}
	total := len(b.clients)
	b.mu.Unlock()

	if ok {
		c.close()
		b.logger.Debug("client disconnected",
			logger.String("client_id", id),
			logger.Int("total_clients", total))
	}
}

func (b *Broker) disconnectAllClients() {
	b.mu.Lock()
	clients := make([]*client, 0, len(b.clients))
	for _, c := range b.clients {
		clients = append(clients, c)
	}
	b.clients = make(map[string]*client)
	b.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	if len(clients) > 0 {
		b.logger.Info("all subscribers disconnected", logger.Int("count", len(clients)))
	}
}
