package main

import (
	"sync/atomic"
	"time"
)

// Heartbeat records the last activity instant of a background component.
// Writers call Mark from their own goroutine; readers derive liveness
// without taking any lock shared with collection.
type Heartbeat struct {
	last atomic.Int64 // unix nanoseconds, 0 = never
}

// Mark records now as the component's last activity
func (h *Heartbeat) Mark() {
	h.last.Store(time.Now().UnixNano())
}

// Last returns the last activity instant and whether any activity happened yet
func (h *Heartbeat) Last() (time.Time, bool) {
	v := h.last.Load()
	if v == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, v), true
}

// AliveWithin reports whether the component showed activity within d.
// A component that never marked at all is not alive.
func (h *Heartbeat) AliveWithin(d time.Duration) bool {
	last, ok := h.Last()
	if !ok {
		return false
	}
	return time.Since(last) <= d
}
