// Package publisher runs time-driven producers.
//
// Periodic cycles through a fixed deck of items. Each tick it takes the next
// item from a shuffled working copy of the deck, reshuffling a fresh copy once
// the copy is exhausted, and broadcasts it if anyone is listening. Ticks with
// no subscribers still advance the deck but publish nothing.
//
//	p, err := publisher.NewPeriodic[Tip](registry, catalogue.All(),
//		publisher.WithInterval(8*time.Second),
//		publisher.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//	go p.Run(ctx)
package publisher
