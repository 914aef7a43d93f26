package storefront

import (
	"sync"
	"time"
)

// debouncer runs only the latest scheduled function once the delay passes
// without a newer call
type debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

// schedule replaces any pending call with fn. fn receives its generation;
// a cancel or a newer schedule can land after fn starts, so fn must check
// current(gen) again under whatever lock guards the state it changes.
func (d *debouncer) schedule(fn func(gen uint64)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		if d.current(gen) {
			fn(gen)
		}
	})
}

// current reports whether gen is still the latest scheduled call
func (d *debouncer) current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen == d.gen
}

// cancel drops any pending call
func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *debouncer) stopLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
