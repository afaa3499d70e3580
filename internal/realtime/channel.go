// Package realtime bundles, per event type, the subscriber registry and the
// replay history that stream sessions share.
package realtime

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/snaketips/pkg/broadcast"
	"github.com/dmitrymomot/snaketips/pkg/logger"
	"github.com/dmitrymomot/snaketips/pkg/replay"
	"github.com/dmitrymomot/snaketips/pkg/stream"
)

// Config sizes one channel.
type Config struct {
	Name     string
	Capacity int // per-subscriber mailbox slots
	History  int // retained replay items
	Retry    time.Duration
}

// Channel is the realtime fan-out point for one event type.
type Channel[T any] struct {
	cfg      Config
	log      *slog.Logger
	registry *broadcast.Registry[T]
	history  *replay.Buffer[T]
}

// NewChannel builds a channel and registers its subscriber gauge on m.
// m may be nil.
func NewChannel[T any](cfg Config, m *Metrics, log *slog.Logger) (*Channel[T], error) {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = broadcast.DefaultCapacity
	}

	c := &Channel[T]{
		cfg: cfg,
		log: log,
		registry: broadcast.New[T](
			broadcast.WithCapacity(cfg.Capacity),
			broadcast.WithName(cfg.Name),
			broadcast.WithLogger(log),
			broadcast.WithDropHook(m.dropHook(cfg.Name)),
		),
		history: replay.New[T](cfg.History),
	}

	if err := m.trackSubscribers(cfg.Name, c.registry.SubscriberCount); err != nil {
		return nil, fmt.Errorf("register %s subscriber gauge: %w", cfg.Name, err)
	}
	return c, nil
}

// Name returns the channel label.
func (c *Channel[T]) Name() string { return c.cfg.Name }

// Registry exposes the subscriber set for producers.
func (c *Channel[T]) Registry() *broadcast.Registry[T] { return c.registry }

// History exposes the replay buffer.
func (c *Channel[T]) History() *replay.Buffer[T] { return c.history }

// Publish records ev in history and broadcasts it, but only when at least
// one subscriber is connected. It reports whether anything happened.
// Sessions stamp what they emit too, so a reconnecting client can replay
// the same event more than once under different, ascending ids.
func (c *Channel[T]) Publish(ev T) bool {
	if c.registry.SubscriberCount() == 0 {
		return false
	}

	item := c.history.Add(ev)
	delivered := c.registry.Broadcast(ev)

	c.log.Debug("event published",
		logger.Stream(c.cfg.Name),
		logger.EventID(item.ID),
		logger.Subscribers(delivered),
	)
	return true
}

// Open starts a stream session on this channel.
func (c *Channel[T]) Open(lastEventID string, match func(T) bool) *stream.Session[T] {
	return stream.Open[T](c.registry, c.history, lastEventID, match,
		stream.WithName(c.cfg.Name),
		stream.WithRetry(c.cfg.Retry),
		stream.WithLogger(c.log),
	)
}

// Close disconnects every subscriber.
func (c *Channel[T]) Close() { c.registry.Close() }
