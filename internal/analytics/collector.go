// Package analytics collects suggest and index events and publishes them to
// Kafka asynchronously. Tracking never blocks the request path: events are
// buffered and dropped when the buffer is full.
package analytics

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/logger"
)

const defaultBufferSize = 10000

// Collector buffers events and publishes them on a background goroutine.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan any
	done     chan struct{}
	logger   *slog.Logger
}

// NewCollector creates a Collector publishing through the given producer.
func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan any, bufferSize),
		done:     make(chan struct{}),
		logger:   logger.WithComponent("analytics-collector"),
	}
}

// Start launches the publish loop. It runs until the context is cancelled or
// Close is called, draining any buffered events on the way out.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drain()
				return
			}
		}
	}()
	c.logger.Info("collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event without blocking. Events are dropped when the
// buffer is full.
func (c *Collector) Track(event any) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("event dropped, buffer full")
	}
}

// Close stops accepting events and waits for the publish loop to finish.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event any) {
	if err := c.producer.Publish(ctx, kafka.Event{Key: "typeahead", Value: event}); err != nil {
		c.logger.Error("failed to publish event", "error", err)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}
