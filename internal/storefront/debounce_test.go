package storefront

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer(t *testing.T) {
	d := newDebouncer(15 * time.Millisecond)
	var last atomic.Int32
	var runs atomic.Int32

	for i := int32(1); i <= 5; i++ {
		i := i
		d.schedule(func(uint64) {
			last.Store(i)
			runs.Add(1)
		})
	}

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, int32(5), last.Load())

	d.schedule(func(uint64) { runs.Add(1) })
	d.cancel()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestDebouncerGeneration(t *testing.T) {
	d := newDebouncer(time.Millisecond)
	gens := make(chan uint64, 1)
	d.schedule(func(gen uint64) { gens <- gen })

	var gen uint64
	select {
	case gen = <-gens:
	case <-time.After(time.Second):
		t.Fatal("scheduled call never ran")
	}
	assert.True(t, d.current(gen))

	d.cancel()
	assert.False(t, d.current(gen))
}
