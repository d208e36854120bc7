package vm

// frameView reports the currently active frame regardless of whether it is
// a real call-stack entry or the implicit main frame (spec.md §3 invariant
// 2). variablesStart and limit are what LDV/STV bounds-check against.
type frameView struct {
	isMain         bool
	variablesStart uint16
	limit          int // arguments_count + variables_count, or main_variables_count
	functionIndex  int
}

func (vm *VM) activeFrame() frameView {
	if vm.callTop == 0 {
		return frameView{
			isMain:         true,
			variablesStart: 0,
			limit:          int(vm.image.MainVariablesCount()),
		}
	}
	f := vm.callStack[vm.callTop-1]
	fd := vm.image.Function(f.functionIndex)
	return frameView{
		variablesStart: f.variablesStart,
		limit:          int(f.argumentsCount) + int(fd.VariablesCount),
		functionIndex:  f.functionIndex,
	}
}

// CurrentFunctionIndex and VariablesBase report the frame accessor's public
// surface from spec.md §2's component table. CurrentFunctionIndex returns
// -1 for the implicit main frame.
func (vm *VM) CurrentFunctionIndex() int {
	if vm.callTop == 0 {
		return -1
	}
	return vm.callStack[vm.callTop-1].functionIndex
}

func (vm *VM) VariablesBase() uint16 {
	return vm.activeFrame().variablesStart
}
