package broadcast

import (
	"log/slog"

	"github.com/dmitrymomot/snaketips/pkg/logger"
)

// DefaultCapacity is the mailbox size used when WithCapacity is not supplied.
const DefaultCapacity = 20

// Option configures a Registry.
type Option func(*options)

type options struct {
	name     string
	capacity int
	logger   *slog.Logger
	onDrop   func(connectionID string)
}

func defaultOptions() *options {
	return &options{
		name:     "broadcast",
		capacity: DefaultCapacity,
		logger:   logger.Discard(),
	}
}

// WithCapacity sets the number of events each mailbox can hold.
// Panics for non-positive values.
func WithCapacity(n int) Option {
	if n <= 0 {
		panic(ErrInvalidCapacity)
	}
	return func(o *options) { o.capacity = n }
}

// WithName labels the registry in log records.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger supplies a logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDropHook registers a callback invoked every time a full mailbox discards
// its oldest event. The hook runs on the broadcasting goroutine and must not block.
func WithDropHook(fn func(connectionID string)) Option {
	return func(o *options) { o.onDrop = fn }
}
