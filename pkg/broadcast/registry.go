package broadcast

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/snaketips/pkg/logger"
)

// Registry owns the live subscriber set for one event type.
// All methods are safe for concurrent use.
type Registry[T any] struct {
	opts        *options
	mu          sync.RWMutex
	subscribers map[string]*mailbox[T]
	closed      bool
}

// New creates an empty registry.
func New[T any](opts ...Option) *Registry[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Registry[T]{
		opts:        o,
		subscribers: make(map[string]*mailbox[T]),
	}
}

// Subscribe registers a new mailbox and returns its connection id together with
// the receive side. The channel is closed by Unsubscribe or Close.
// After Close the returned channel is already closed.
func (r *Registry[T]) Subscribe() (string, <-chan T) {
	id := newConnectionID()
	mb := newMailbox[T](r.opts.capacity)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		mb.close()
		return id, mb.ch
	}
	r.subscribers[id] = mb
	total := len(r.subscribers)
	r.mu.Unlock()

	r.opts.logger.Info("subscriber connected",
		logger.Stream(r.opts.name),
		logger.ConnectionID(id),
		logger.Subscribers(total),
	)

	return id, mb.ch
}

// Unsubscribe removes and closes the mailbox registered under id.
// Unknown ids are ignored.
func (r *Registry[T]) Unsubscribe(id string) {
	r.mu.Lock()
	mb, ok := r.subscribers[id]
	if ok {
		delete(r.subscribers, id)
	}
	total := len(r.subscribers)
	r.mu.Unlock()

	if !ok {
		return
	}
	mb.close()

	r.opts.logger.Info("subscriber disconnected",
		logger.Stream(r.opts.name),
		logger.ConnectionID(id),
		logger.Subscribers(total),
	)
}

// Broadcast offers event to every registered mailbox and reports how many
// accepted it. It never blocks: a full mailbox drops its oldest event first,
// and that mailbox still counts as delivered.
func (r *Registry[T]) Broadcast(event T) int {
	type target struct {
		id string
		mb *mailbox[T]
	}

	// Snapshot membership so the registry lock is not held while enqueueing.
	r.mu.RLock()
	targets := make([]target, 0, len(r.subscribers))
	for id, mb := range r.subscribers {
		targets = append(targets, target{id: id, mb: mb})
	}
	r.mu.RUnlock()

	delivered := 0
	for _, t := range targets {
		ok, dropped := t.mb.push(event)
		if !ok {
			// Unsubscribed after the snapshot was taken.
			continue
		}
		delivered++

		if dropped {
			r.opts.logger.Debug("mailbox full, oldest event dropped",
				logger.Stream(r.opts.name),
				logger.ConnectionID(t.id),
			)
			if r.opts.onDrop != nil {
				r.opts.onDrop(t.id)
			}
		}
	}

	return delivered
}

// SubscriberCount returns the number of live subscribers.
func (r *Registry[T]) SubscriberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers)
}

// Close unregisters and closes every mailbox. Safe to call more than once.
func (r *Registry[T]) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	mailboxes := make([]*mailbox[T], 0, len(r.subscribers))
	for _, mb := range r.subscribers {
		mailboxes = append(mailboxes, mb)
	}
	clear(r.subscribers)
	r.mu.Unlock()

	for _, mb := range mailboxes {
		mb.close()
	}

	r.opts.logger.Debug("registry closed",
		logger.Stream(r.opts.name),
		slog.Int("closed_mailboxes", len(mailboxes)),
	)
}

// newConnectionID returns a 32-character hex UUID.
func newConnectionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
