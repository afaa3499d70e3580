// Package stream sequences what one connected subscriber observes.
//
// A Session moves through Connecting, Replaying, Tailing and Closed. It
// subscribes when opened, so nothing published while history is being replayed
// is lost. The first record is a control record carrying the reconnect hint;
// then come retained history items after the client's last seen id, then live
// events. Every live event that passes the filter is stamped through the
// history before it is emitted, so a later reconnect can resume from it.
//
// Sessions are pull based:
//
//	s := stream.Open(registry, history, r.Header.Get("Last-Event-ID"), filter)
//	defer s.Close()
//	for {
//		rec, err := s.Next(ctx)
//		if errors.Is(err, stream.ErrClosed) {
//			return nil
//		}
//		// write rec to the transport
//	}
//
// Run wraps that loop and guarantees Close on every exit path.
package stream
