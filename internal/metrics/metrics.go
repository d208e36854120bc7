// Package metrics implements vm.Observer on top of client_golang, per
// SPEC_FULL.md §4.11: every step is counted, every non-ok non-main_return
// outcome is counted by kind, and every armed sleep gate is counted, so an
// operator watching a fleet of embedded-target simulations can see
// error-kind distributions and sleep-gate pressure the same way they'd
// watch any other Go service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ma5ter/pvm/internal/vm"
)

// Recorder implements vm.Observer and registers its own collectors against
// the supplied registry. A fresh Recorder per VM instance (or one shared
// across many, the kind label disambiguates) both work.
type Recorder struct {
	steps        prometheus.Counter
	errorsByKind *prometheus.CounterVec
	sleepsArmed  prometheus.Counter
}

// NewRecorder constructs and registers a Recorder against reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pvm_steps_total",
			Help: "Total VM Step calls not held by the sleep gate (gated steps are not counted).",
		}),
		errorsByKind: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pvm_errors_total",
			Help: "Non-ok, non-main_return step outcomes by error-taxonomy kind.",
		}, []string{"kind"}),
		sleepsArmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pvm_sleep_gate_total",
			Help: "Total times SLP armed the cooperative sleep gate.",
		}),
	}
	reg.MustRegister(r.steps, r.errorsByKind, r.sleepsArmed)
	return r
}

// OnStep implements vm.Observer. It fires once per Step call that got past
// the sleep gate, including one that stops at pc_overrun or at a failed
// decode before any instruction executes — a gated step (pending SLP timeout
// not yet elapsed) never reaches here at all, so steps and sleep-gated ticks don't
// double count. pvm_errors_total only counts non-ok, non-main_return kinds;
// a clean run never moves it.
func (r *Recorder) OnStep(kind vm.ErrorKind) {
	r.steps.Inc()
	if kind != vm.NoError && kind != vm.MainReturn {
		r.errorsByKind.WithLabelValues(kind.String()).Inc()
	}
}

// OnSleepArmed implements vm.Observer.
func (r *Recorder) OnSleepArmed(uint32) {
	r.sleepsArmed.Inc()
}
