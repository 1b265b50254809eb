package fs

import (
	"sync"
	"time"

	"github.com/jnalv414/my-second-brain/pkg/core"
)

// debouncer coalesces bursts of events on the same path. The first event
// for a path schedules a flush after delay; later events before the flush
// only update what will be delivered.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]core.Event
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]core.Event),
		timers:  make(map[string]*time.Timer),
	}
}

func (d *debouncer) add(event core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending[event.Path] = merge(d.pending[event.Path], event)
	if _, scheduled := d.timers[event.Path]; scheduled {
		return
	}

	path := event.Path
	d.wg.Add(1)
	d.timers[path] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		e, ok := d.pending[path]
		delete(d.pending, path)
		delete(d.timers, path)
		d.mu.Unlock()

		if ok {
			fire(e)
		}
	})
}

// merge keeps a create that is immediately followed by writes a create.
func merge(prev, next core.Event) core.Event {
	if prev.Type == core.EventCreate && next.Type == core.EventModify {
		next.Type = core.EventCreate
	}
	return next
}

// stopAndWait drops pending events and waits up to timeout for flushes that
// are already running.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for path, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, path)
		delete(d.pending, path)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}
}
