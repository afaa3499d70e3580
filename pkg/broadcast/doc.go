// Package broadcast provides a type-safe subscription registry that fans events
// out to many independent subscribers without ever blocking the producer.
//
// Every subscriber owns exactly one bounded mailbox. Broadcast performs a
// non-blocking enqueue into each mailbox; when a mailbox is full its oldest
// queued event is discarded to make room (drop-oldest), so a slow reader loses
// history but always sees the most recent events.
//
// Basic usage:
//
//	registry := broadcast.New[string](broadcast.WithCapacity(20))
//	defer registry.Close()
//
//	id, mailbox := registry.Subscribe()
//	defer registry.Unsubscribe(id)
//
//	registry.Broadcast("hello")
//
//	for msg := range mailbox {
//		fmt.Println(msg)
//	}
//
// Unsubscribe is idempotent and safe to call concurrently with Broadcast.
// Membership changes take the registry lock; enqueueing only takes the lock of
// the target mailbox, so unrelated subscribers never serialize on each other.
package broadcast
