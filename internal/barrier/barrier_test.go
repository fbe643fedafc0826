package barrier

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarrier_SingleParty(t *testing.T) {
	b := New(1)
	for i := 0; i < 3; i++ {
		assert.True(t, b.Wait())
	}

	assert.Equal(t, 1, New(0).Parties())
}

func TestBarrier_OneLeaderPerCycle(t *testing.T) {
	const (
		parties = 8
		cycles  = 200
	)
	b := New(parties)

	var leaders [cycles]atomic.Int32
	var wg sync.WaitGroup
	for p := 0; p < parties; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := 0; c < cycles; c++ {
				if b.Wait() {
					leaders[c].Add(1)
				}
			}
		}()
	}
	wg.Wait()

	for c := 0; c < cycles; c++ {
		require.Equal(t, int32(1), leaders[c].Load(), "cycle %d", c)
	}
}

func TestBarrier_PhaseOrdering(t *testing.T) {
	// Every party increments a shared slot before the first Wait; the leader
	// checks that all increments are visible, then publishes a value that every
	// party must observe after the second Wait.
	const (
		parties = 6
		rounds  = 100
	)
	b := New(parties)

	counts := make([]int, parties)
	var published int
	var mismatches atomic.Int32

	var wg sync.WaitGroup
	for p := 0; p < parties; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for r := 1; r <= rounds; r++ {
				counts[id]++
				if b.Wait() {
					for _, c := range counts {
						if c != r {
							mismatches.Add(1)
						}
					}
					published = r
				}
				b.Wait()
				if published != r {
					mismatches.Add(1)
				}
			}
		}(p)
	}
	wg.Wait()

	assert.Zero(t, mismatches.Load())
}
