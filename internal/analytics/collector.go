package analytics

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/kafka"
)

// ErrDropped is reported to OnPublish for events lost to a full buffer.
var ErrDropped = errors.New("analytics event dropped: buffer full")

// Publisher writes a batch of events to the analytics topic.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector buffers events and publishes them in batches, either when a
// batch fills up or on every flush tick. Track never blocks: when the buffer
// is full the event is dropped.
type Collector struct {
	publisher     Publisher
	eventCh       chan kafka.Event
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
	done          chan struct{}
	closeOnce     sync.Once

	// OnPublish, if set, is called after each batch with its size and error.
	OnPublish func(n int, err error)
}

func NewCollector(publisher Publisher, bufferSize int, flushInterval time.Duration) *Collector {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	batchSize := bufferSize / 10
	if batchSize < 1 {
		batchSize = 1
	}
	return &Collector{
		publisher:     publisher,
		eventCh:       make(chan kafka.Event, bufferSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start launches the publishing loop. It runs until ctx is cancelled or
// Close is called, then publishes what is left.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()

		batch := make([]kafka.Event, 0, c.batchSize)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					c.flush(context.Background(), batch)
					return
				}
				batch = append(batch, event)
				if len(batch) >= c.batchSize {
					c.flush(ctx, batch)
					batch = make([]kafka.Event, 0, c.batchSize)
				}
			case <-ticker.C:
				if len(batch) > 0 {
					c.flush(ctx, batch)
					batch = make([]kafka.Event, 0, c.batchSize)
				}
			case <-ctx.Done():
				batch = c.drainRemaining(batch)
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				c.flush(flushCtx, batch)
				cancel()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

// Track queues a lookup event keyed by its query.
func (c *Collector) Track(event LookupEvent) {
	c.enqueue(kafka.Event{Key: event.Query, Value: event})
}

// TrackWords queues a dictionary update event.
func (c *Collector) TrackWords(event WordsEvent) {
	c.enqueue(kafka.Event{Key: "words", Value: event})
}

func (c *Collector) enqueue(event kafka.Event) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
		if c.OnPublish != nil {
			c.OnPublish(1, ErrDropped)
		}
	}
}

// Close stops accepting events and waits for the final flush. Track must not
// be called after Close.
func (c *Collector) Close() {
	c.closeOnce.Do(func() { close(c.eventCh) })
	<-c.done
}

func (c *Collector) drainRemaining(batch []kafka.Event) []kafka.Event {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return batch
			}
			batch = append(batch, event)
		default:
			return batch
		}
	}
}

func (c *Collector) flush(ctx context.Context, batch []kafka.Event) {
	if len(batch) == 0 {
		return
	}
	err := c.publisher.PublishBatch(ctx, batch)
	if err != nil {
		c.logger.Error("failed to publish analytics batch", "events", len(batch), "error", err)
	} else {
		c.logger.Debug("analytics batch published", "events", len(batch))
	}
	if c.OnPublish != nil {
		c.OnPublish(len(batch), err)
	}
}
