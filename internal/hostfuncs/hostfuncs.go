// Package hostfuncs implements the handful of built-in functions every
// image's functions table can reference by index, per SPEC_FULL.md §4.8.
// Grounded on the device table in vm/devices.go: a small table of
// independent handlers, each a thin wrapper around one external resource
// (stdout, the wall clock), registered once and indexed by the VM's CAL.
package hostfuncs

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ma5ter/pvm/internal/clock"
	"github.com/ma5ter/pvm/internal/vm"
)

// Index assignments. A fixed host image binds these at the same built-in
// indices spec.md §4.8 describes; a custom image may reorder or omit them
// freely since the functions table carries its own descriptors.
const (
	IndexPrint          = 0
	IndexWallclock      = 1
	IndexSleepRemaining = 2
)

// Print implements the "print" built-in: one argument, no return value.
// It writes the argument as decimal text followed by a newline and flushes
// immediately, mirroring devices.go's consoleIO.TrySend write-then-flush
// pattern rather than buffering across calls.
func Print(w io.Writer) vm.BuiltinFunc {
	bw := bufio.NewWriter(w)
	return func(_ *vm.VM, window []int32) {
		fmt.Fprintf(bw, "%d\n", window[0])
		bw.Flush()
	}
}

// Wallclock implements the "wallclock" built-in: no arguments, one return
// value — the clock's current now_ms() reading, the same source the VM's
// own SLP gate consults.
func Wallclock(c clock.Clock) vm.BuiltinFunc {
	return func(_ *vm.VM, window []int32) {
		window[0] = int32(c.NowMs())
	}
}

// SleepRemaining implements the "sleep_remaining" built-in: no arguments,
// one return value — milliseconds left on a pending SLP, or 0 if none is
// pending. Lets a program poll its own sleep state without a dedicated
// opcode.
func SleepRemaining() vm.BuiltinFunc {
	return func(v *vm.VM, window []int32) {
		window[0] = int32(v.SleepRemaining())
	}
}

// Table builds the standard built-in table in index order, suitable for
// passing straight to vm.New.
func Table(w io.Writer, c clock.Clock) []vm.BuiltinFunc {
	table := make([]vm.BuiltinFunc, IndexSleepRemaining+1)
	table[IndexPrint] = Print(w)
	table[IndexWallclock] = Wallclock(c)
	table[IndexSleepRemaining] = SleepRemaining()
	return table
}
