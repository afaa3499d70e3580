package broadcast

import "sync"

// mailbox is a bounded FIFO with many writers and a single reader.
// Writers serialize on mu; the reader only ever drains ch.
type mailbox[T any] struct {
	mu     sync.Mutex
	ch     chan T
	closed bool
}

func newMailbox[T any](capacity int) *mailbox[T] {
	return &mailbox[T]{ch: make(chan T, capacity)}
}

// push enqueues v without blocking. A full mailbox loses its oldest event.
// ok is false only when the mailbox has already been closed.
func (m *mailbox[T]) push(v T) (ok, dropped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false, false
	}

	for {
		select {
		case m.ch <- v:
			return true, dropped
		default:
		}

		// Full: evict the head. The reader may have drained it first, in which
		// case the next send attempt succeeds.
		select {
		case <-m.ch:
			dropped = true
		default:
		}
	}
}

func (m *mailbox[T]) close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.ch)
	}
}
