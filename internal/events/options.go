package events

import "time"

// Default configuration values.
const (
	DefaultEventBufferSize  = 1000
	DefaultClientBufferSize = 64
	DefaultShutdownTimeout  = 5 * time.Second
	DefaultMaxClients       = 1000
)

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithEventBufferSize sets the size of the publish queue.
func WithEventBufferSize(size int) BrokerOption {
	return func(b *Broker) {
		if size > 0 {
			b.eventBufferSize = size
		}
	}
}

// WithClientBufferSize sets the default per-subscriber buffer.
func WithClientBufferSize(size int) BrokerOption {
	return func(b *Broker) {
		if size > 0 {
			b.clientBufferSize = size
		}
	}
}

// WithShutdownTimeout bounds how long Stop waits.
func WithShutdownTimeout(timeout time.Duration) BrokerOption {
	return func(b *Broker) {
		if timeout > 0 {
			b.shutdownTimeout = timeout
		}
	}
}

// WithMaxClients caps concurrent subscribers (0 = unlimited).
func WithMaxClients(n int) BrokerOption {
	return func(b *Broker) {
		b.maxClients = n
	}
}

// SubscribeOption configures one subscription.
type SubscribeOption func(*subscribeOptions)

type subscribeOptions struct {
	filter     Filter
	bufferSize int
}

// WithFilter restricts the events delivered to the subscriber.
func WithFilter(f Filter) SubscribeOption {
	return func(o *subscribeOptions) { o.filter = f }
}

// WithBufferSize overrides the subscriber's buffer size.
func WithBufferSize(size int) SubscribeOption {
	return func(o *subscribeOptions) {
		if size > 0 {
			o.bufferSize = size
		}
	}
}
