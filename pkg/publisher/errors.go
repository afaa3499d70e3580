package publisher

import "errors"

// ErrEmptyDeck is returned when a periodic publisher is created without items.
var ErrEmptyDeck = errors.New("publisher: deck is empty")
