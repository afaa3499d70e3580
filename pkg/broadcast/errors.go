package broadcast

import "errors"

// ErrInvalidCapacity is the panic value for a non-positive mailbox capacity.
var ErrInvalidCapacity = errors.New("broadcast: mailbox capacity must be positive")
