// Package clock supplies the monotonic millisecond source the VM's SLP gate
// and the wallclock built-in both consult, per SPEC_FULL.md §4.9. It is kept
// out of internal/vm on purpose: the core only ever sees the vm.Clock
// interface, never time.Now itself.
package clock

import (
	"time"

	"github.com/ma5ter/pvm/internal/vm"
)

// Clock is an alias of vm.Clock so callers can depend on this package
// without importing internal/vm directly for the type name alone.
type Clock = vm.Clock

// Monotonic wraps time.Since against a fixed start instant, truncated to
// milliseconds and wrapped into uint32 the way spec.md §6's "overflow
// tolerant" now_ms() is defined — internal/vm's Step already does the
// wraparound-safe subtraction (the same one ElapsedMs performs), so Monotonic itself only
// needs to report a non-decreasing (until it wraps) counter.
type Monotonic struct {
	start time.Time
}

// NewMonotonic starts the clock at the instant of the call.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// NowMs implements vm.Clock.
func (m *Monotonic) NowMs() uint32 {
	return uint32(time.Since(m.start).Milliseconds())
}

// ElapsedMs computes now-then with uint32 wraparound tolerance, the same
// subtraction internal/vm.Step performs inline; exported here so host code
// (metrics, tracing) can reason about elapsed sleep time the same way.
func ElapsedMs(now, then uint32) uint32 {
	return now - then
}
