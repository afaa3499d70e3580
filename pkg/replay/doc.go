// Package replay keeps a bounded, ordered history of recently published events
// so a reconnecting client can catch up on what it missed.
//
// Buffer is the single place ids are assigned. Ids start at 0, grow by one per
// Add, and are never reused even after the item holding them is evicted.
// A client resumes with GetEventsAfter(lastSeenID); ids that are missing,
// malformed or already evicted are not errors, the client simply receives
// whatever is still retained after that point.
package replay
