package ir

// digits returns the number of digits a node's value may have. Binary
// values are bounded by their type.
func digits(n *Node) int {
	t := n.Type()
	if t.IsBCD() || t.IsDFP() {
		return n.prec
	}
	return t.MaxPrecision()
}

// sourceDigits returns the number of digits a unary node reads from its
// first child.
func sourceDigits(n *Node) int {
	if n.HasSourcePrecision() {
		return n.srcPrec
	}
	return digits(n.Child(0))
}

// roundBump is the digit a rounding right shift may carry into.
func roundBump(n *Node) int {
	if n.DecimalRound() != 0 {
		return 1
	}
	return 0
}

// SurvivingDigits returns how many digits of a shift's child remain in
// its result, counting from the units digit of the child.
func SurvivingDigits(n *Node) int {
	childP := digits(n.Child(0))
	return childP - (childP + n.DecimalAdjust() - n.prec)
}

// resultDigits returns how many digits the operation would produce from
// its first child without truncation.
func resultDigits(n *Node) int {
	return sourceDigits(n) + n.DecimalAdjust() + roundBump(n)
}

// IsTruncating returns whether the precision of a unary decimal node,
// shift, or conversion drops digits its first child may have.
func IsTruncating(n *Node) bool {
	op := n.op
	t := op.Type()
	if !t.IsBCD() && !t.IsDFP() || n.NumChildren() == 0 {
		return false
	}
	if op.IsArithmetic() && !op.IsNeg() || op.IsCompare() || op.IsClear() {
		return false
	}
	src := n.Child(0).Type()
	if op.IsConversion() && t.IsBCD() && !src.IsBCD() && !src.IsDFP() {
		return !n.HasSourcePrecision() || n.prec < n.srcPrec
	}
	return n.prec < resultDigits(n)
}

// IsSimpleTruncation returns whether the node only truncates its child:
// a modify precision or shift by zero with a smaller precision.
func IsSimpleTruncation(n *Node) bool {
	return isPrecisionOnly(n) && n.prec < digits(n.Child(0))
}

// IsSimpleWidening returns whether the node only pads its child with
// leading zeros: a modify precision or shift by zero with at least the
// child's precision.
func IsSimpleWidening(n *Node) bool {
	return isPrecisionOnly(n) && n.prec >= digits(n.Child(0))
}

func isPrecisionOnly(n *Node) bool {
	if n.op.IsModifyPrecision() {
		return n.Type().IsBCD()
	}
	if n.op == Pdshl || n.op == Pdshr {
		k, ok := n.ShiftAmount()
		return ok && k == 0 && n.DecimalRound() == 0
	}
	return false
}

// HasIntermediateTruncation returns whether the first child of n drops
// digits of its own child that n would otherwise see.
func HasIntermediateTruncation(n *Node) bool {
	if n.NumChildren() == 0 {
		return false
	}
	child := n.Child(0)
	if !child.Type().IsBCD() && !child.Type().IsDFP() || child.NumChildren() == 0 {
		return false
	}
	if !IsTruncating(child) {
		return false
	}
	needed := digits(n) - n.DecimalAdjust()
	if n.op.IsConversion() && !n.Type().IsBCD() && !n.Type().IsDFP() {
		needed = child.prec + 1
	}
	return child.prec < needed
}

// IsTruncatingBCDShift returns whether a packed shift drops high digits.
func IsTruncatingBCDShift(n *Node) bool {
	return n.op.IsPackedShift() && IsTruncating(n)
}

// IsWideningBCDShift returns whether a packed shift has room for more
// digits than its shifted child can have.
func IsWideningBCDShift(n *Node) bool {
	return n.op.IsPackedShift() && n.prec > resultDigits(n)
}

// CanRemoveArithmeticOperand returns whether a packed arithmetic operand
// only changes the sign encoding of its child, which arithmetic ignores:
// a clean, or a set sign agreeing with the polarity of its child.
func CanRemoveArithmeticOperand(operand *Node, keepWidening bool) bool {
	switch operand.op {
	case Pdclean:
		return !keepWidening
	case PdSetSign:
		c := operand.Child(0)
		return operand.IsNonNegative() && c.IsNonNegative() ||
			operand.IsNonPositive() && c.IsNonPositive()
	}
	return false
}

// ArithmeticPrecision returns the number of digits a packed arithmetic
// result can need given the precisions of its operands.
func ArithmeticPrecision(n *Node) int {
	switch {
	case n.op.IsAdd(), n.op.IsSub():
		return max(digits(n.Child(0)), digits(n.Child(1))) + 1
	case n.op.IsMul():
		return digits(n.Child(0)) + digits(n.Child(1))
	case n.op.IsDiv():
		return digits(n.Child(0))
	case n.op.IsNeg():
		return digits(n.Child(0))
	}
	return n.prec
}
