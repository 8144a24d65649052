package bstats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersIncAccumulates(t *testing.T) {
	c := NewCounters()

	c.Inc("frame_drops", 1)
	c.Inc("frame_drops", 2)

	assert.Equal(t, int64(3), c.Get("frame_drops"))
}

func TestCountersGetUnknownIsZero(t *testing.T) {
	c := NewCounters()
	assert.Equal(t, int64(0), c.Get("never_set"))
}

func TestCountersSetOverwrites(t *testing.T) {
	c := NewCounters()
	c.Inc("gtk_rotations", 5)

	c.Set("gtk_rotations", 1)

	assert.Equal(t, int64(1), c.Get("gtk_rotations"))
}

func TestCountersSnapshotIsIndependentCopy(t *testing.T) {
	c := NewCounters()
	c.Inc("dao_ingests", 4)

	snap := c.Snapshot()
	c.Inc("dao_ingests", 100)

	assert.Equal(t, int64(4), snap["dao_ingests"])
	assert.Equal(t, int64(104), c.Get("dao_ingests"))
}

func TestCountersResetZeroesButKeepsNames(t *testing.T) {
	c := NewCounters()
	c.Inc("relay_drops", 7)

	c.Reset()

	snap := c.Snapshot()
	assert.Contains(t, snap, "relay_drops")
	assert.Equal(t, int64(0), snap["relay_drops"])
}

func TestCountersIncIsConcurrencySafe(t *testing.T) {
	c := NewCounters()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc("concurrent", 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), c.Get("concurrent"))
}
