package vm

// Binary arithmetic/logic selectors, bits 2..0 of the classArith instruction
// (spec.md §4.4).
const (
	arithAdd = iota
	arithSub
	arithMul
	arithDiv
	arithPwr
	arithAnd
	arithIor
	arithXor
)

// Unary selectors, bits 1..0 of the classUnary instruction.
const (
	unaryNeg = iota
	unaryInv
	unaryInc
	unaryDec
)

// execArith pops value then second (spec.md §4.4) and pushes op(second, value).
func (vm *VM) execArith(op int32) ErrorKind {
	value, errk := vm.popCell()
	if errk != NoError {
		return errk
	}
	second, errk := vm.popCell()
	if errk != NoError {
		return errk
	}

	var result int32
	switch op {
	case arithAdd:
		result = second + value
	case arithSub:
		result = second - value
	case arithMul:
		result = second * value
	case arithDiv:
		// The taxonomy has no division_by_zero ordinal (see DESIGN.md);
		// dividing by zero yields zero rather than trapping, preserving
		// "every failure reported by value, nothing recovered inside step".
		if value == 0 {
			result = 0
		} else {
			result = second / value
		}
	case arithPwr:
		result = intPow(second, value)
	case arithAnd:
		result = second & value
	case arithIor:
		result = second | value
	case arithXor:
		result = second ^ value
	}
	return vm.pushCell(result)
}

// intPow implements spec.md §4.4's PWR: exponent <= 0 yields 1, otherwise
// repeated multiplication. Negative or very large exponents are the
// programmer's responsibility, per spec.
func intPow(base, exp int32) int32 {
	if exp <= 0 {
		return 1
	}
	result := int32(1)
	for i := int32(0); i < exp; i++ {
		result *= base
	}
	return result
}

func (vm *VM) execUnary(op int32) ErrorKind {
	v, errk := vm.popCell()
	if errk != NoError {
		return errk
	}

	var result int32
	switch op {
	case unaryNeg:
		result = -v
	case unaryInv:
		result = ^v
	case unaryInc:
		result = v + 1
	case unaryDec:
		result = v - 1
	}
	return vm.pushCell(result)
}
