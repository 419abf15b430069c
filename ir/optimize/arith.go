package optimize

import "github.com/andrewarchi/decsimp/ir"

// simplifyPackedArithmeticOperand removes widening and sign changes that
// arithmetic ignores from the ith operand.
func (s *Simplifier) simplifyPackedArithmeticOperand(n *ir.Node, i int) {
	child := s.removeOperandWidening(n, i)
	if !ir.CanRemoveArithmeticOperand(child, s.caps.KeepBCDWidening) || !canReplaceWithChild(child, child.Child(0), true) {
		return
	}
	if !s.allow("removeArithmeticOperandSign", "remove %v under %v", s.ref(child), s.ref(n)) {
		return
	}
	n.SetChild(i, s.replaceWithChild(child, child.Child(0), true))
}

// reducePackedArithmeticPrecision computes arithmetic in the digits its
// operands can produce and widens the result to the original precision.
//
//	pdadd p=15                   pdModifyPrecision p=15
//	  x p=3             =>         pdadd p=4
//	  y p=3                          x p=3
//	                                 y p=3
func (s *Simplifier) reducePackedArithmeticPrecision(n *ir.Node, max int) *ir.Node {
	if max >= n.Precision() {
		return nil
	}
	if !s.allow("reducePackedArithmeticPrecision", "reduce precision of %v to %d", s.ref(n), max) {
		return nil
	}
	arith := ir.NewNode(n.Op(), n.Children()...)
	arith.SetPrecision(max)
	if n.IsNonNegative() {
		arith.SetNonNegative()
	}
	if n.IsNonPositive() {
		arith.SetNonPositive()
	}
	n.Recreate(ir.PdModifyPrecision, arith)
	n.ResetSignState()
	return n
}

// propagateNonNegativeForArithmetic derives the polarity of an
// arithmetic result from the polarity of its operands. It reports
// whether anything was recorded.
func (s *Simplifier) propagateNonNegativeForArithmetic(n *ir.Node) bool {
	a, b := n.Child(0), n.Child(1)
	pos := func(x *ir.Node) bool { return x.IsNonNegative() }
	neg := func(x *ir.Node) bool { return x.IsNonPositive() }
	var nonNeg, nonPos bool
	op := n.Op()
	switch {
	case op.IsAdd():
		nonNeg = pos(a) && pos(b)
		nonPos = neg(a) && neg(b)
	case op.IsSub():
		nonNeg = pos(a) && neg(b)
		nonPos = neg(a) && pos(b)
	case op.IsMul(), op.IsDiv():
		nonNeg = pos(a) && pos(b) || neg(a) && neg(b)
		nonPos = pos(a) && neg(b) || neg(a) && pos(b)
	}
	nonNeg = nonNeg && !n.IsNonNegative()
	nonPos = nonPos && !n.IsNonPositive()
	if !nonNeg && !nonPos {
		return false
	}
	if !s.allow("propagateNonNegative", "record polarity of %v from its operands", s.ref(n)) {
		return false
	}
	if nonNeg {
		n.SetNonNegative()
	}
	if nonPos {
		n.SetNonPositive()
	}
	return true
}

func (s *Simplifier) pdadd(n *ir.Node) *ir.Node {
	s.simplifyPackedArithmeticOperand(n, 0)
	s.simplifyPackedArithmeticOperand(n, 1)
	if s.propagateNonNegativeForArithmetic(n) {
		return n
	}
	if r := s.reducePackedArithmeticPrecision(n, ir.ArithmeticPrecision(n)); r != nil {
		return r
	}
	return n
}

func (s *Simplifier) pdsub(n *ir.Node) *ir.Node {
	s.simplifyPackedArithmeticOperand(n, 0)
	s.simplifyPackedArithmeticOperand(n, 1)
	a, b := n.Child(0), n.Child(1)
	if isZeroPackedConst(b) && canReplaceWithChild(n, a, true) &&
		s.allow("removeSubtractZero", "replace %v of zero with %v", s.ref(n), s.ref(a)) {
		return s.replaceWithChild(n, a, true)
	}
	if isZeroPackedConst(a) &&
		s.allow("subtractFromZero", "replace %v from zero with negation", s.ref(n)) {
		n.Recreate(ir.Pdneg, b)
		n.ResetSignState()
		return s.simplify(n)
	}
	if s.propagateNonNegativeForArithmetic(n) {
		return n
	}
	if r := s.reducePackedArithmeticPrecision(n, ir.ArithmeticPrecision(n)); r != nil {
		return r
	}
	return n
}

func isZeroPackedConst(n *ir.Node) bool {
	return n.Op() == ir.Pdconst && n.Decimal().IsZero()
}

func (s *Simplifier) pdmul(n *ir.Node) *ir.Node {
	s.simplifyPackedArithmeticOperand(n, 0)
	s.simplifyPackedArithmeticOperand(n, 1)

	// The larger operand goes first, and a load goes second when the
	// sizes are equal.
	a, b := n.Child(0), n.Child(1)
	if (b.Size() > a.Size() || b.Size() == a.Size() && a.Op().IsLoad() && !b.Op().IsLoad()) &&
		s.allow("swapMultiplyOperands", "swap operands of %v", s.ref(n)) {
		n.Recreate(n.Op(), b, a)
	}
	if r := s.reducePackedArithmeticPrecision(n, ir.ArithmeticPrecision(n)); r != nil {
		return r
	}
	s.propagateNonNegativeForArithmetic(n)
	return n
}

func (s *Simplifier) pddiv(n *ir.Node) *ir.Node {
	s.simplifyPackedArithmeticOperand(n, 0)
	s.simplifyPackedArithmeticOperand(n, 1)
	if s.propagateNonNegativeForArithmetic(n) {
		return n
	}
	if r := s.reducePackedArithmeticPrecision(n, ir.ArithmeticPrecision(n)); r != nil {
		return r
	}
	return n
}
