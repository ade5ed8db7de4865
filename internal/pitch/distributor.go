// SPDX-License-Identifier: MIT
package pitch

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	applog "voicebird/internal/log"
)

// FreshnessWindow is how recent the latest sample must be for a
// consumer to treat the pipeline as live. Older samples mean silence or
// disconnection and must not keep driving displays.
const FreshnessWindow = 2 * time.Second

// Listener receives every published sample. A returned error is
// recorded and logged but never interrupts delivery to other
// listeners.
type Listener func(Sample) error

// Distributor holds the single latest Sample plus the streaming flag
// and fans updates out to subscribers. One writer (the pipeline), many
// readers; listener registration and removal are safe during an active
// publish because the listener set is snapshotted before iterating.
type Distributor struct {
	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
	latest    Sample
	streaming bool

	failures atomic.Uint64 // listener errors and recovered panics
}

// NewDistributor creates an empty distributor.
func NewDistributor() *Distributor {
	return &Distributor{listeners: make(map[int]Listener)}
}

// Subscribe registers l and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (d *Distributor) Subscribe(l Listener) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = l
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}
}

// Publish atomically replaces the latest sample and invokes every
// current subscriber. A sample whose WindowID equals the last published
// one is dropped (duplicate async resolution), returning false. One
// faulty consumer cannot block the others: errors and panics are
// recorded per listener.
func (d *Distributor) Publish(s Sample) bool {
	d.mu.Lock()
	if s.WindowID != 0 && s.WindowID == d.latest.WindowID {
		d.mu.Unlock()
		return false
	}
	d.latest = s

	snapshot := make([]Listener, 0, len(d.listeners))
	for _, l := range d.listeners {
		snapshot = append(snapshot, l)
	}
	d.mu.Unlock()

	for _, l := range snapshot {
		if err := d.invoke(l, s); err != nil {
			d.failures.Add(1)
			applog.Warnf("distributor: listener failed for window %d: %v", s.WindowID, err)
		}
	}
	return true
}

// invoke runs one listener, converting a panic into an error.
func (d *Distributor) invoke(l Listener, s Sample) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	return l(s)
}

// Latest returns the most recently published sample. The zero Sample
// (WindowID 0) means nothing has been published yet.
func (d *Distributor) Latest() Sample {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest
}

// SetStreaming records whether the capture pipeline is running.
func (d *Distributor) SetStreaming(on bool) {
	d.mu.Lock()
	d.streaming = on
	d.mu.Unlock()
}

// Streaming reports the capture pipeline state.
func (d *Distributor) Streaming() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.streaming
}

// Active reports whether consumers should treat the pitch feed as
// live: streaming is on, at least one sample has been produced, and
// the latest sample is within the freshness window. Derived, never
// stored; stopping the stream does not destructively clear the last
// sample.
func (d *Distributor) Active(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.streaming && d.latest.FreshWithin(FreshnessWindow, now)
}

// Failures returns the count of listener errors and recovered panics.
func (d *Distributor) Failures() uint64 {
	return d.failures.Load()
}
