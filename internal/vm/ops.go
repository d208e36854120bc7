package vm

// execPush implements PSH: push the literal immediate as a non-negative
// value (spec.md §4.1).
func (vm *VM) execPush(literal int32) ErrorKind {
	return vm.pushCell(literal)
}

// execPushCompose implements PSC (spec.md §4.4): pop a value, shift it left
// 5, OR in the opcode's low 5 bits, push the result.
func (vm *VM) execPushCompose(low5 int32) ErrorKind {
	v, errk := vm.popCell()
	if errk != NoError {
		return errk
	}
	return vm.pushCell((v << 5) | low5)
}

// execPop implements POP-n: remove exactly n+1 cells, n = opcode&3.
func (vm *VM) execPop(n int32) ErrorKind {
	count := int(n) + 1
	for i := 0; i < count; i++ {
		if _, errk := vm.popCell(); errk != NoError {
			return errk
		}
	}
	return NoError
}

// execLoadVar implements LDV (spec.md §4.3): push the value of local
// variable #param of the current frame.
func (vm *VM) execLoadVar(param int32) ErrorKind {
	idx, errk := vm.variableIndex(param)
	if errk != NoError {
		return errk
	}
	return vm.pushCell(vm.dataStack[idx])
}

// execStoreVar implements STV: pop the top of stack into local variable #param.
func (vm *VM) execStoreVar(param int32) ErrorKind {
	idx, errk := vm.variableIndex(param)
	if errk != NoError {
		return errk
	}
	v, errk := vm.popCell()
	if errk != NoError {
		return errk
	}
	vm.dataStack[idx] = v
	return NoError
}

// variableIndex resolves a local-variable parameter to an absolute
// data-stack index, applying both bounds checks from spec.md §4.3.
func (vm *VM) variableIndex(param int32) (int, ErrorKind) {
	f := vm.activeFrame()
	if param < 0 || int(param) >= f.limit {
		return 0, NoVariable
	}
	idx := int(f.variablesStart) + int(param)
	if idx >= len(vm.dataStack) {
		return 0, VarOutOfStack
	}
	return idx, NoError
}

// execLoadConst implements LDC: pop the constant index off the stack,
// bounds-check it, fetch, and push the already-sign-extended constant
// (extension applied once at image parse time in image.go, equivalent to
// applying it here per spec.md §4.6).
func (vm *VM) execLoadConst() ErrorKind {
	idx, errk := vm.popCell()
	if errk != NoError {
		return errk
	}
	if idx < 0 || int(idx) >= vm.image.ConstantsCount() {
		return NoConstant
	}
	return vm.pushCell(vm.image.Constant(int(idx)))
}

// execJump implements JMP: apply the §4.2 displacement convention to the
// given (already saturation-resolved) signed parameter.
func (vm *VM) execJump(d int32) ErrorKind {
	vm.pc = branchTarget(vm.pc, d)
	return NoError
}

// execJumpBack implements JMB: pop a value, negate it, and apply §4.2 —
// the mirror-image convenience for backward jumps synthesised from a
// positive literal.
func (vm *VM) execJumpBack() ErrorKind {
	v, errk := vm.popCell()
	if errk != NoError {
		return errk
	}
	vm.pc = branchTarget(vm.pc, -v)
	return NoError
}

// execSleep implements SLP: pop a value, arm the timer gate.
func (vm *VM) execSleep() ErrorKind {
	v, errk := vm.popCell()
	if errk != NoError {
		return errk
	}
	vm.timer = vm.clock.NowMs()
	if vm.timer == 0 {
		// now_ms()==0 would be indistinguishable from "no pending sleep"
		// (spec.md §3: timer != 0 means pending). Nudge forward one tick;
		// negligible against any real timeout and never observed once the
		// clock has run for any length of time.
		vm.timer = 1
	}
	if v < 0 {
		v = 0
	}
	vm.timeout = uint32(v)
	if vm.observer != nil {
		vm.observer.OnSleepArmed(vm.timeout)
	}
	return NoError
}
