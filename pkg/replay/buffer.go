package replay

import (
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// NoEvents is what CurrentID reports before the first Add.
const NoEvents int64 = -1

// DefaultSize is the retention used when New is given a non-positive size.
const DefaultSize = 50

// Item is an event stamped with its buffer id.
type Item[T any] struct {
	ID   int64
	Data T
}

// EventID renders the id the way clients echo it back in Last-Event-ID.
func (i Item[T]) EventID() string {
	return strconv.FormatInt(i.ID, 10)
}

// Buffer retains the most recent items, oldest first.
// All methods are safe for concurrent use.
type Buffer[T any] struct {
	mu    sync.Mutex
	items []Item[T]
	size  int
	next  int64
}

// New creates a buffer retaining at most size items.
func New[T any](size int) *Buffer[T] {
	if size <= 0 {
		size = DefaultSize
	}
	return &Buffer[T]{
		items: make([]Item[T], 0, size),
		size:  size,
	}
}

// Add stamps data with the next id, appends it and evicts from the head
// until at most Size items remain.
func (b *Buffer[T]) Add(data T) Item[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	item := Item[T]{ID: b.next, Data: data}
	b.next++

	if len(b.items) == b.size {
		// Shift left in place so the backing array never grows past size.
		n := copy(b.items, b.items[1:])
		clear(b.items[n:])
		b.items = b.items[:n]
	}
	b.items = append(b.items, item)

	return item
}

// GetEventsAfter returns retained items with an id strictly greater than
// lastID, in ascending order. Empty, blank or non-numeric input yields nil.
func (b *Buffer[T]) GetEventsAfter(lastID string) []Item[T] {
	last, ok := ParseID(lastID)
	if !ok {
		return nil
	}
	return b.After(last)
}

// After is GetEventsAfter for an already parsed id.
func (b *Buffer[T]) After(last int64) []Item[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Items are sorted by id, so the first match starts the result.
	i := sort.Search(len(b.items), func(i int) bool { return b.items[i].ID > last })
	if i == len(b.items) {
		return nil
	}
	return slices.Clone(b.items[i:])
}

// CurrentID returns the most recently assigned id or NoEvents.
func (b *Buffer[T]) CurrentID() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.next - 1
}

// Len returns the number of retained items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Size returns the retention limit.
func (b *Buffer[T]) Size() int { return b.size }

// ParseID parses a client supplied event id. Surrounding whitespace is ignored.
func ParseID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
