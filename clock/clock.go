// Package clock provides the millisecond time source consumed by the
// settlement engine. Time never advances on its own inside Paywall;
// every observed timestamp comes from an explicit NowMS call made
// during a caller-invoked operation.
package clock

import (
	"sync/atomic"
	"time"
)

// Clock supplies the current time in milliseconds since the Unix epoch.
// It is only required to be monotonic within the causal chain of calls
// affecting one session; the engine rejects regressions rather than
// clamping them.
type Clock interface {
	NowMS() uint64
}

// System is the wall-clock implementation backed by time.Now.
type System struct{}

// NowMS implements Clock.
func (System) NowMS() uint64 {
	return uint64(time.Now().UnixMilli())
}

// Manual is a test clock whose time advances only when told to.
// Safe for concurrent use.
type Manual struct {
	now atomic.Uint64
}

// NewManual creates a Manual clock starting at the given millisecond
// timestamp.
func NewManual(startMS uint64) *Manual {
	m := &Manual{}
	m.now.Store(startMS)
	return m
}

// NowMS implements Clock.
func (m *Manual) NowMS() uint64 {
	return m.now.Load()
}

// Set moves the clock to an absolute millisecond timestamp.
func (m *Manual) Set(ms uint64) {
	m.now.Store(ms)
}

// Advance moves the clock forward by the given number of milliseconds.
func (m *Manual) Advance(ms uint64) {
	m.now.Add(ms)
}
