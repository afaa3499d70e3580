package stream

import "errors"

// ErrClosed is returned by Next once the session has ended, either because the
// caller cancelled or because the mailbox was closed.
var ErrClosed = errors.New("stream: session closed")
