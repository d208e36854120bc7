// Package vm implements the packed-image stack machine described in
// spec.md: a self-describing executable format, a bit-structured opcode
// decoder, and the arithmetic/branch/call/return semantics that operate on
// a pair of fixed-size stacks. The package depends on nothing beyond the
// standard library — see SPEC_FULL.md §2 for why that boundary is load
// bearing rather than incidental.
package vm

// Register is the VM's program counter width, matching the 16-bit code
// offsets used throughout the image format.
type Register = uint16

// BuiltinFunc is the host built-in calling convention from spec.md §4.5
// step 6. window aliases the argument/return region of the data stack
// directly: the callee reads its arguments from window[:argsCount] and
// writes up to returns_count result cells back into window, exactly as a
// resource-constrained host would via a borrowed slice rather than a copy.
type BuiltinFunc func(vm *VM, window []int32)

// Observer lets an external collaborator (internal/metrics) watch step
// outcomes without the core importing anything beyond this interface.
type Observer interface {
	OnStep(ErrorKind)
	OnSleepArmed(timeoutMs uint32)
}

// Clock supplies now_ms() from spec.md §6. Only a monotonic, non-decreasing
// source satisfies the SLP gate's semantics; see internal/clock.
type Clock interface {
	NowMs() uint32
}

// Tracer receives one fully-formatted line per executed instruction. It is
// only ever invoked after a step actually executes (never on a gated,
// state-unchanged step), matching spec.md §6's debug-trace contract.
type Tracer interface {
	Trace(line string)
}

type frame struct {
	returnAddress  Register
	variablesStart uint16
	argumentsCount uint8
	functionIndex  int
}

// VM is one instance of the machine's mutable runtime state. It owns no
// globals; multiple VMs may run concurrently on separate goroutines
// provided each is driven by a single goroutine at a time (spec.md §5).
type VM struct {
	cfg   Config
	image *Image

	builtins []BuiltinFunc

	clock    Clock
	tracer   Tracer
	observer Observer

	// persist survives Reset.
	persist struct {
		binding byte
	}

	timer   uint32
	timeout uint32

	dataStack []int32
	dataTop   int

	callStack []frame
	callTop   int

	pc Register
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithClock overrides the default clock, whose reading never changes (see
// defaultClock). Embedders supply a monotonic clock here; tests supply one
// with deterministic now_ms() readings.
func WithClock(c Clock) Option {
	return func(vm *VM) { vm.clock = c }
}

// WithTracer installs a debug trace sink. Nil (the default) disables
// tracing entirely, at the cost of a single nil-check per step.
func WithTracer(t Tracer) Option {
	return func(vm *VM) { vm.tracer = t }
}

// WithObserver installs a step/sleep observer, typically internal/metrics.
func WithObserver(o Observer) Option {
	return func(vm *VM) { vm.observer = o }
}

// WithBinding sets the persistent user-defined binding byte (spec.md §3)
// that survives Reset.
func WithBinding(b byte) Option {
	return func(vm *VM) { vm.persist.binding = b }
}

// New constructs a VM bound to image and the given host built-in table, and
// immediately resets it to a runnable state. The image and the built-in
// table are the "persist" of spec.md §3: New binds them once, and Reset
// never touches them again.
func New(image *Image, builtins []BuiltinFunc, cfg Config, opts ...Option) *VM {
	vm := &VM{
		cfg:       cfg,
		image:     image,
		builtins:  builtins,
		clock:     defaultClock{},
		dataStack: make([]int32, cfg.DataStackSize),
		callStack: make([]frame, cfg.CallStackSize),
	}
	for _, opt := range opts {
		opt(vm)
	}
	vm.Reset()
	return vm
}

// Binding returns the persistent user-defined binding byte.
func (vm *VM) Binding() byte { return vm.persist.binding }

// SetBinding updates the persistent binding byte without otherwise
// disturbing VM state.
func (vm *VM) SetBinding(b byte) { vm.persist.binding = b }

// Reset zeros all transient state — stacks, frames, pc, sleep timer — and
// reseeds data_top to reserve main's locals, per spec.md §3's lifecycle.
// The bound image, built-in table, and persistent binding are untouched.
func (vm *VM) Reset() {
	for i := range vm.dataStack {
		vm.dataStack[i] = 0
	}
	for i := range vm.callStack {
		vm.callStack[i] = frame{}
	}
	vm.callTop = 0
	vm.pc = 0
	vm.timer = 0
	vm.timeout = 0
	vm.dataTop = int(vm.image.MainVariablesCount())
}

// DataTop, CallTop and PC expose structural invariants (spec.md §3) for
// tests and embedders; they never permit mutation of VM internals.
func (vm *VM) DataTop() int  { return vm.dataTop }
func (vm *VM) CallTop() int  { return vm.callTop }
func (vm *VM) PC() Register  { return vm.pc }
func (vm *VM) Image() *Image { return vm.image }

// DataCell returns the cell at absolute data-stack index i, for tests and
// embedders. It does not participate in push/pop discipline.
func (vm *VM) DataCell(i int) int32 { return vm.dataStack[i] }

// SleepRemaining reports how many milliseconds remain on a pending SLP, or 0
// if none is pending. Exposed for the host's sleep_remaining built-in
// (internal/hostfuncs); the core itself never calls this.
func (vm *VM) SleepRemaining() uint32 {
	if vm.timer == 0 {
		return 0
	}
	elapsed := vm.clock.NowMs() - vm.timer
	if elapsed >= vm.timeout {
		return 0
	}
	return vm.timeout - elapsed
}

// defaultClock is the fallback when no WithClock option is given. Its reading
// never changes, so an armed SLP observes no elapsed time and keeps gating.
// The reading is nonzero so that execSleep's zero-timestamp nudge never
// applies and the gate's subtraction yields exactly zero.
type defaultClock struct{}

func (defaultClock) NowMs() uint32 { return 1 }
