package broadcast_test

import (
	"fmt"

	"github.com/dmitrymomot/snaketips/pkg/broadcast"
)

func ExampleRegistry() {
	registry := broadcast.New[string](broadcast.WithCapacity(2))
	defer registry.Close()

	id, mailbox := registry.Subscribe()

	registry.Broadcast("first")
	registry.Broadcast("second")
	registry.Broadcast("third")

	registry.Unsubscribe(id)

	for msg := range mailbox {
		fmt.Println(msg)
	}
	// Output:
	// second
	// third
}
