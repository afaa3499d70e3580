package stream

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/snaketips/pkg/logger"
	"github.com/dmitrymomot/snaketips/pkg/replay"
)

// DefaultRetry is the reconnect hint sent in the control record.
const DefaultRetry = 5 * time.Second

// Registry is the subscription side a session consumes.
type Registry[T any] interface {
	Subscribe() (string, <-chan T)
	Unsubscribe(id string)
}

// History is the replay side a session consumes.
type History[T any] interface {
	Add(event T) replay.Item[T]
	GetEventsAfter(lastID string) []replay.Item[T]
}

// Record is one unit of session output. The control record has Control set,
// carries Retry and has no id or data.
type Record[T any] struct {
	Control bool
	Retry   time.Duration
	ID      string
	Data    T
}

func controlRecord[T any](retry time.Duration) Record[T] {
	return Record[T]{Control: true, Retry: retry}
}

func dataRecord[T any](item replay.Item[T]) Record[T] {
	return Record[T]{ID: item.EventID(), Data: item.Data}
}

// Option configures a Session.
type Option func(*options)

type options struct {
	name   string
	retry  time.Duration
	logger *slog.Logger
}

// WithRetry overrides DefaultRetry. Non-positive values are ignored.
func WithRetry(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.retry = d
		}
	}
}

// WithName labels the session in log records.
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

// Session is the per-connection state machine. Next must be called from one
// goroutine; Close and State may be called from any.
type Session[T any] struct {
	opts     options
	registry Registry[T]
	history  History[T]
	match    func(T) bool
	lastID   string

	id      string
	mailbox <-chan T
	pending []replay.Item[T]

	state     atomic.Int32
	closeOnce sync.Once
}

// Open subscribes to registry and returns a session in the Connecting state.
// lastEventID may be empty. A nil match accepts every event.
func Open[T any](registry Registry[T], history History[T], lastEventID string, match func(T) bool, opts ...Option) *Session[T] {
	o := options{
		name:   "stream",
		retry:  DefaultRetry,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if match == nil {
		match = func(T) bool { return true }
	}

	s := &Session[T]{
		opts:     o,
		registry: registry,
		history:  history,
		match:    match,
		lastID:   lastEventID,
	}
	s.id, s.mailbox = registry.Subscribe()
	return s
}

// ID returns the connection id issued by the registry.
func (s *Session[T]) ID() string { return s.id }

// State returns the current lifecycle phase.
func (s *Session[T]) State() State { return State(s.state.Load()) }

// advance moves from one state to the next. It fails once Close has won.
func (s *Session[T]) advance(from, to State) bool {
	return s.state.CompareAndSwap(int32(from), int32(to))
}

// Next returns the next record to send. It blocks only while tailing, until a
// matching live event arrives, ctx is done or the mailbox is closed; the last
// two end the session and return ErrClosed.
func (s *Session[T]) Next(ctx context.Context) (Record[T], error) {
	for {
		if ctx.Err() != nil {
			s.Close()
		}

		switch s.State() {
		case Connecting:
			s.pending = s.loadHistory()
			if !s.advance(Connecting, Replaying) {
				continue
			}
			return controlRecord[T](s.opts.retry), nil

		case Replaying:
			if len(s.pending) > 0 {
				item := s.pending[0]
				s.pending = s.pending[1:]
				return dataRecord(item), nil
			}
			s.pending = nil
			s.advance(Replaying, Tailing)

		case Tailing:
			select {
			case <-ctx.Done():
				s.Close()
			case ev, ok := <-s.mailbox:
				if !ok {
					s.Close()
					var zero Record[T]
					return zero, ErrClosed
				}
				if !s.match(ev) {
					continue
				}
				return dataRecord(s.history.Add(ev)), nil
			}

		default:
			var zero Record[T]
			return zero, ErrClosed
		}
	}
}

// loadHistory fetches and filters the items the client missed.
func (s *Session[T]) loadHistory() []replay.Item[T] {
	if s.lastID == "" {
		return nil
	}

	items := s.history.GetEventsAfter(s.lastID)
	total := len(items)
	kept := make([]replay.Item[T], 0, len(items))
	for _, it := range items {
		if s.match(it.Data) {
			kept = append(kept, it)
		}
	}

	s.opts.logger.Debug("replaying missed events",
		logger.Stream(s.opts.name),
		logger.ConnectionID(s.id),
		slog.String("last_event_id", s.lastID),
		logger.Count(len(kept)),
		slog.Int("filtered_out", total-len(kept)),
	)
	return kept
}

// Close ends the session and unsubscribes. Only the first call has an effect.
func (s *Session[T]) Close() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(Closed))
		s.registry.Unsubscribe(s.id)
	})
}

// Run drives the session, passing each record to emit, until ctx is done, the
// mailbox closes or emit fails. The session is always closed on return; an
// emit error is returned as is, normal termination returns nil.
func (s *Session[T]) Run(ctx context.Context, emit func(Record[T]) error) error {
	defer s.Close()

	for {
		rec, err := s.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}
		if err := emit(rec); err != nil {
			return err
		}
	}
}
