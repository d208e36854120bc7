package vm

// Step executes at most one instruction, per spec.md §6. It returns NoError
// to mean "continue calling Step", MainReturn to mean normal termination,
// or one of the other ErrorKind values to report a failure. No state is
// rolled back on failure (spec.md §4.7): a pop that precedes an overflow
// remains popped.
func (vm *VM) Step() ErrorKind {
	if vm.timer != 0 {
		elapsed := vm.clock.NowMs() - vm.timer // overflow-tolerant (uint32 wraparound)
		if elapsed < vm.timeout {
			return NoError
		}
		vm.timer = 0
	}

	if int(vm.pc) >= vm.image.CodeSize() {
		vm.notify(PCOverrun)
		return PCOverrun
	}

	fetchPC := vm.pc
	raw := vm.image.CodeByte(vm.pc)
	vm.pc++

	instr, errk := decode(vm, raw)
	if errk != NoError {
		vm.notify(errk)
		return errk
	}

	result := vm.execute(instr)

	if vm.tracer != nil {
		vm.tracer.Trace(vm.formatTrace(fetchPC, raw, instr))
	}
	vm.notify(result)
	return result
}

func (vm *VM) notify(e ErrorKind) {
	if vm.observer != nil {
		vm.observer.OnStep(e)
	}
}

// execute interprets one decoded instruction. This is the second half of
// the decode/execute split spec.md §9 calls for.
func (vm *VM) execute(instr instruction) ErrorKind {
	switch instr.class {
	case classPSH:
		return vm.execPush(instr.param)
	case classPSC:
		return vm.execPushCompose(instr.param)
	case classJMP:
		return vm.execJump(instr.param)
	case classCAL:
		return vm.execCall(instr.param)
	case classLDV:
		return vm.execLoadVar(instr.param)
	case classSTV:
		return vm.execStoreVar(instr.param)
	case classArith:
		return vm.execArith(instr.param)
	case classBranch:
		return vm.execBranch(instr.param)
	case classUnary:
		return vm.execUnary(instr.param)
	case classPop:
		return vm.execPop(instr.param)
	case classSLP:
		return vm.execSleep()
	case classRET:
		return vm.execReturn()
	case classLDC:
		return vm.execLoadConst()
	case classJMB:
		return vm.execJumpBack()
	case classSkip:
		return NoError
	default:
		return NoError
	}
}
