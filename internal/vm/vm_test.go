package vm

import "testing"

func newTestVM(t *testing.T, b *imageBuilder, cfg Config, builtins []BuiltinFunc, opts ...Option) *VM {
	t.Helper()
	img, err := NewImage(b.build(), cfg)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	return New(img, builtins, cfg, opts...)
}

func stepUntilDone(t *testing.T, v *VM, maxSteps int) ErrorKind {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		if e := v.Step(); e != NoError {
			return e
		}
	}
	t.Fatalf("program did not terminate within %d steps", maxSteps)
	return NoError
}

// --- scenario 1: Hello literal ---------------------------------------------

func TestHelloLiteral(t *testing.T) {
	cfg := DefaultConfig()
	b := newImageBuilder(cfg).withMainVariables(0)
	printIdx := b.function(FunctionDescriptor{Address: 0, ArgumentsCount: 1, ReturnsCount: 0, IsBuiltIn: true})
	b.emit(opPSH(7), opCAL(byte(printIdx)), opRET())

	var captured int32 = -1
	builtins := []BuiltinFunc{
		func(_ *VM, window []int32) { captured = window[0] },
	}

	v := newTestVM(t, b, cfg, builtins)
	e := stepUntilDone(t, v, 10)
	if e != MainReturn {
		t.Fatalf("expected main_return, got %s", e)
	}
	if captured != 7 {
		t.Fatalf("built-in observed %d, want 7", captured)
	}
}

// --- scenario 2: Add loop ----------------------------------------------------

func TestAddLoop(t *testing.T) {
	cfg := DefaultConfig()
	b := newImageBuilder(cfg).withMainVariables(1)
	b.emit(
		opPSH(3), opPSH(4), opArith(arithAdd),
		opSTV(0),
		opLDV(0),
		opRET(),
	)

	v := newTestVM(t, b, cfg, nil)
	if e := v.Step(); e != NoError { // PSH 3
		t.Fatalf("step1: %s", e)
	}
	if e := v.Step(); e != NoError { // PSH 4
		t.Fatalf("step2: %s", e)
	}
	if e := v.Step(); e != NoError { // ADD
		t.Fatalf("step3: %s", e)
	}
	if e := v.Step(); e != NoError { // STV 0
		t.Fatalf("step4: %s", e)
	}
	if got := v.DataCell(0); got != 7 {
		t.Fatalf("main variable 0 = %d, want 7", got)
	}
	if e := v.Step(); e != NoError { // LDV 0
		t.Fatalf("step5: %s", e)
	}
	if top, e := v.peekCell(); e != NoError || top != 7 {
		t.Fatalf("LDV result = %d (%s), want 7", top, e)
	}
	if e := v.Step(); e != MainReturn { // RET
		t.Fatalf("step6: expected main_return, got %s", e)
	}
}

// --- scenario 3: Stack smash --------------------------------------------

func TestCallReturnOutOfStack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataStackSize = 1
	b := newImageBuilder(cfg).withMainVariables(0)
	fn := b.function(FunctionDescriptor{Address: 10, ArgumentsCount: 0, ReturnsCount: 1})
	b.emit(opPSH(0), opCAL(byte(fn)))

	v := newTestVM(t, b, cfg, nil)
	if e := v.Step(); e != NoError { // PSH fills the only data cell
		t.Fatalf("step1: %s", e)
	}
	if e := v.Step(); e != ReturnOutOfStack {
		t.Fatalf("expected return_out_of_stack, got %s", e)
	}
}

func TestReturnDataStackSmashed(t *testing.T) {
	cfg := DefaultConfig()
	b := newImageBuilder(cfg).withMainVariables(0)
	fn := b.function(FunctionDescriptor{ArgumentsCount: 0, VariablesCount: 0, ReturnsCount: 1})
	call := []byte{opCAL(byte(fn))}
	// Body of the declared function: pushes two cells of scratch instead of
	// leaving exactly one return value, then RET.
	fnBody := []byte{opPSH(1), opPSH(2), opRET()}
	b.functions[fn].Address = uint16(len(call))
	b.code = append(call, fnBody...)

	v := newTestVM(t, b, cfg, nil)
	if e := v.Step(); e != NoError { // CAL
		t.Fatalf("step1 (CAL): %s", e)
	}
	e := stepUntilDone(t, v, 10)
	if e != DataStackSmashed {
		t.Fatalf("expected data_stack_smashed, got %s", e)
	}
}

// --- scenario 4: Sleep ------------------------------------------------------

type fakeClock struct{ ms uint32 }

func (c *fakeClock) NowMs() uint32 { return c.ms }

func TestSleepGate(t *testing.T) {
	cfg := DefaultConfig()
	b := newImageBuilder(cfg).withMainVariables(0)
	b.emit(opPSH(50), opSLP())

	clock := &fakeClock{ms: 1000}
	v := newTestVM(t, b, cfg, nil, WithClock(clock))

	if e := v.Step(); e != NoError { // PSH 50
		t.Fatalf("step1: %s", e)
	}
	if e := v.Step(); e != NoError { // SLP arms the gate
		t.Fatalf("step2: %s", e)
	}
	pcAfterArm := v.PC()

	clock.ms += 10 // well short of the 50ms timeout
	if e := v.Step(); e != NoError {
		t.Fatalf("gated step: expected no_error, got %s", e)
	}
	if v.PC() != pcAfterArm {
		t.Fatalf("gated step must not advance pc: got %d, want %d", v.PC(), pcAfterArm)
	}

	clock.ms += 50 // timeout has now elapsed
	e := v.Step()
	if e != PCOverrun {
		t.Fatalf("expected pc_overrun once the program falls off the end, got %s", e)
	}
}

// --- scenario 5: Wide-literal via PSC ---------------------------------------

func TestPushCompose(t *testing.T) {
	cfg := DefaultConfig()
	b := newImageBuilder(cfg).withMainVariables(0)
	b.emit(opPSH(1), opPSC(5))

	v := newTestVM(t, b, cfg, nil)
	if e := v.Step(); e != NoError {
		t.Fatalf("step1: %s", e)
	}
	if e := v.Step(); e != NoError {
		t.Fatalf("step2: %s", e)
	}
	got, e := v.peekCell()
	if e != NoError {
		t.Fatalf("peekCell: %s", e)
	}
	if got != 37 {
		t.Fatalf("PSC result = %d, want 37", got)
	}
}

// --- scenario 6: Branch ------------------------------------------------------

func TestConditionalBranch(t *testing.T) {
	cfg := DefaultConfig()
	b := newImageBuilder(cfg).withMainVariables(0)
	b.emit(opBranch(branchBNZ))

	v := newTestVM(t, b, cfg, nil)
	// PSH only carries a non-negative 7-bit literal (spec.md §4.1); a real
	// compiler synthesises a negative displacement via PSC. This test
	// isolates the branch formula itself by seeding the operands directly.
	if e := v.pushCell(5); e != NoError { // second
		t.Fatalf("pushCell(second): %s", e)
	}
	if e := v.pushCell(-3); e != NoError { // displacement
		t.Fatalf("pushCell(disp): %s", e)
	}

	want := branchTarget(v.PC()+1, -3)
	if e := v.Step(); e != NoError {
		t.Fatalf("BNZ: %s", e)
	}
	if v.PC() != want {
		t.Fatalf("branch pc = %d, want %d", v.PC(), want)
	}
}
