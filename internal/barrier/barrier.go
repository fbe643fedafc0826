// Package barrier provides a reusable (cyclic) barrier for a fixed set of goroutines.
package barrier

import "sync"

// Barrier blocks each caller of Wait until all parties have arrived, then
// releases them together and resets for the next cycle.
//
// Everything a party writes before Wait happens-before anything any party
// reads after the same cycle's Wait returns.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	waiting    int
	generation uint64
}

// New creates a Barrier for the given number of parties. parties < 1 is treated as 1.
func New(parties int) *Barrier {
	if parties < 1 {
		parties = 1
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Parties returns the number of goroutines the barrier waits for.
func (b *Barrier) Parties() int {
	return b.parties
}

// Wait blocks until all parties have called Wait in the current cycle.
// Exactly one caller per cycle, the last to arrive, receives true.
func (b *Barrier) Wait() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return true
	}

	for gen == b.generation {
		b.cond.Wait()
	}
	return false
}
