package publisher

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/snaketips/pkg/logger"
)

// DefaultInterval is the pause between ticks.
const DefaultInterval = 8 * time.Second

// Target is where a periodic publisher sends items.
type Target[T any] interface {
	Broadcast(event T) int
	SubscriberCount() int
}

// Option configures a Periodic publisher.
type Option func(*options)

type options struct {
	name     string
	interval time.Duration
	shuffle  func(n int, swap func(i, j int))
	logger   *slog.Logger
}

// WithInterval sets the pause between ticks. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithRand makes shuffling deterministic, for tests.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		if r != nil {
			o.shuffle = r.Shuffle
		}
	}
}

// WithName labels the publisher in log records.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger supplies a logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Periodic broadcasts one deck item per interval.
type Periodic[T any] struct {
	opts   options
	target Target[T]
	deck   []T

	mu          sync.Mutex
	queue       []T
	onBroadcast func(item T, delivered int)
}

// NewPeriodic creates a publisher over a private copy of deck.
func NewPeriodic[T any](target Target[T], deck []T, opts ...Option) (*Periodic[T], error) {
	if len(deck) == 0 {
		return nil, ErrEmptyDeck
	}

	o := options{
		name:     "periodic",
		interval: DefaultInterval,
		shuffle:  rand.Shuffle,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Periodic[T]{
		opts:   o,
		target: target,
		deck:   slices.Clone(deck),
	}, nil
}

// OnBroadcast registers fn to run after every tick that actually published.
// Must be called before Run.
func (p *Periodic[T]) OnBroadcast(fn func(item T, delivered int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onBroadcast = fn
}

// Interval returns the pause between ticks.
func (p *Periodic[T]) Interval() time.Duration { return p.opts.interval }

// Tick draws the next item and broadcasts it unless nobody is subscribed.
// It reports the drawn item, how many subscribers received it and whether
// a broadcast happened.
func (p *Periodic[T]) Tick() (item T, delivered int, published bool) {
	p.mu.Lock()
	item = p.draw()
	hook := p.onBroadcast
	p.mu.Unlock()

	if p.target.SubscriberCount() == 0 {
		p.opts.logger.Debug("no subscribers, skipping tick", logger.Component(p.opts.name))
		return item, 0, false
	}

	delivered = p.target.Broadcast(item)
	if hook != nil {
		hook(item, delivered)
	}
	p.opts.logger.Debug("item broadcast",
		logger.Component(p.opts.name),
		logger.Subscribers(delivered),
	)
	return item, delivered, true
}

// draw pops the head of the working queue, refilling it first if empty.
// Caller holds mu.
func (p *Periodic[T]) draw() T {
	if len(p.queue) == 0 {
		p.queue = slices.Clone(p.deck)
		p.opts.shuffle(len(p.queue), func(i, j int) {
			p.queue[i], p.queue[j] = p.queue[j], p.queue[i]
		})
	}
	item := p.queue[0]
	p.queue = p.queue[1:]
	return item
}

// Run ticks until ctx is done. Cancellation is a normal stop and returns nil;
// nothing is published after it is observed.
func (p *Periodic[T]) Run(ctx context.Context) error {
	p.opts.logger.Info("publisher started",
		logger.Component(p.opts.name),
		logger.Duration(p.opts.interval),
		slog.Int("deck_size", len(p.deck)),
	)
	defer p.opts.logger.Info("publisher stopped", logger.Component(p.opts.name))

	timer := time.NewTimer(p.opts.interval)
	timer.Stop()
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		p.Tick()

		timer.Reset(p.opts.interval)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}
