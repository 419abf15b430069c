package optimize

import "github.com/andrewarchi/decsimp/ir"

// pdshl handles pdshl and pdModifyPrecision.
func (s *Simplifier) pdshl(n *ir.Node) *ir.Node {
	child := s.removeOperandWidening(n, 0)
	if n.Op() == ir.Pdshl {
		if r := s.lowerPackedShiftOrSetSignBelowDFPConv(n); r != n {
			return r
		}
	}

	k, constShift := 0, true
	if n.Op().IsShift() {
		k, constShift = n.ShiftAmount()
	}
	byZero := constShift && k == 0
	if byZero {
		switch {
		case n.Precision() >= child.Precision() && n.Size() == child.Size():
			// An even precision has a zero top nibble, so widening by one
			// digit to the same size changes nothing.
			if s.allow("removeSameSizeWidening", "replace %v with same size child %v", s.ref(n), s.ref(child)) {
				return child
			}
		case n.Precision() <= child.Precision() && ir.IsSimpleTruncation(child):
			if s.allow("removeTruncationOfTruncation", "remove truncation %v under truncation %v", s.ref(child), s.ref(n)) {
				n.SetChild(0, child.Child(0))
				return s.simplify(n)
			}
		case n.Precision() < child.Precision() && child.IsExclusive() && takesTruncation(child.Op()):
			if s.allow("truncateChild", "set precision of %v to %d and remove %v", s.ref(child), n.Precision(), s.ref(n)) {
				child.SetPrecision(n.Precision())
				child.ResetSignState()
				return s.simplify(child)
			}
		}
	}

	if !byZero {
		op := n.Op()
		s.reduceShiftLeftOverShiftRight(n)
		if n.Op() != op {
			return s.simplify(n)
		}
	}
	child = n.Child(0)

	if !n.IsNonNegative() && child.IsNonNegative() &&
		s.allow("propagateNonNegative", "mark %v non-negative with non-negative child", s.ref(n)) {
		n.SetNonNegative()
		return n
	}

	if !byZero && child.Op() == ir.PdSetSign {
		if r := s.foldSetSignIntoNode(child, true, n, true); r != n {
			return r
		}
	}
	if constShift && k >= 0 && s.propagateSignStateLeftShift(n) {
		return n
	}
	s.propagateTruncationToConversionChild(n)
	if r := s.createSetSignForKnownSignChild(n); r != n {
		return r
	}
	s.removeOperandWidening(n, 0)
	return n
}

// takesTruncation returns whether an op can produce a truncated result
// directly when its precision is lowered.
func takesTruncation(op ir.Op) bool {
	switch op {
	case ir.Zd2pd, ir.Zdsle2pd, ir.Zdsls2pd, ir.Zdsts2pd, ir.Ud2pd, ir.Udsl2pd, ir.Udst2pd,
		ir.PdSetSign, ir.Pdclear, ir.PdclearSetSign, ir.Pdneg:
		return true
	}
	return isDFPFamily(op, ir.Df2pd)
}

func (s *Simplifier) pdshr(n *ir.Node) *ir.Node {
	if r := s.lowerPackedShiftOrSetSignBelowDFPConv(n); r != n {
		return r
	}
	if child := n.Child(0); child.Op() == ir.PdSetSign {
		if r := s.foldSetSignIntoNode(child, true, n, true); r != n {
			return r
		}
	}
	s.propagateTruncationToConversionChild(n)
	s.reduceShiftRightOverShiftRight(n)
	op := n.Op()
	s.reduceShiftRightOverShiftLeft(n)
	if n.Op() != op {
		return s.simplify(n)
	}
	if r := s.createSetSignForKnownSignChild(n); r != n {
		return r
	}
	if !n.IsNonNegative() && n.Child(0).IsNonNegative() &&
		s.allow("propagateNonNegative", "mark %v non-negative with non-negative child", s.ref(n)) {
		n.SetNonNegative()
	}
	s.removeOperandWidening(n, 0)
	return n
}

func (s *Simplifier) pdshlSetSign(n *ir.Node) *ir.Node {
	s.removeOperandWidening(n, 0)
	child := s.propagateTruncationToConversionChild(n)

	// The sign of a set sign child is dominated when both set the same
	// sign.
	if child.Op() == ir.PdSetSign && child.IsExclusive() && !ir.HasIntermediateTruncation(n) {
		inner, innerOK := child.SetSign()
		outer, outerOK := n.SetSign()
		if innerOK && outerOK && inner == outer && canReplaceWithChild(child, child.Child(0), true) &&
			s.allow("removeDominatedSetSign", "remove %v dominated by %v", s.ref(child), s.ref(n)) {
			n.SetChild(0, s.replaceWithChild(child, child.Child(0), true))
			child = n.Child(0)
		}
	}

	if r := s.lowerPackedShiftOrSetSignBelowDFPConv(n); r != n {
		return r
	}

	if k, ok := n.ShiftAmount(); ok && k == 0 {
		if r, ok := s.removeMatchingSetSign(n); ok {
			return r
		}
	}

	op := n.Op()
	s.reduceShiftLeftOverShiftRight(n)
	if n.Op() != op {
		return s.simplify(n)
	}

	if r := s.foldAndReplaceDominatedSetSign(n, false, n.Child(0)); r != n {
		return r
	}
	if r := s.foldSetSignIntoGrandChild(n); r != n {
		return r
	}
	s.trackSetSignValue(n)
	return n
}

func (s *Simplifier) pdshrSetSign(n *ir.Node) *ir.Node {
	s.removeOperandWidening(n, 0)
	s.propagateTruncationToConversionChild(n)
	if r := s.lowerPackedShiftOrSetSignBelowDFPConv(n); r != n {
		return r
	}

	if child := n.Child(0); child.Op() == ir.PdSetSign && child.HasKnownOrAssumedSignCode() {
		if sign, ok := n.SetSign(); ok && sign == child.KnownOrAssumedSignCode() &&
			canReplaceWithChild(child, child.Child(0), true) &&
			s.allow("removeMatchingSetSign", "remove %v with sign 0x%x matching %v", s.ref(child), sign, s.ref(n)) {
			n.SetChild(0, s.replaceWithChild(child, child.Child(0), true))
		}
	}

	s.reduceShiftRightOverShiftRight(n)
	op := n.Op()
	s.reduceShiftRightOverShiftLeft(n)
	if n.Op() != op {
		return s.simplify(n)
	}

	if r := s.foldAndReplaceDominatedSetSign(n, false, n.Child(0)); r != n {
		return r
	}
	if r := s.foldSetSignIntoGrandChild(n); r != n {
		return r
	}
	s.trackSetSignValue(n)
	return n
}

// removeMatchingSetSign replaces a set sign with its child when the
// child already has the sign being set.
func (s *Simplifier) removeMatchingSetSign(n *ir.Node) (*ir.Node, bool) {
	child := n.Child(0)
	if !child.HasKnownOrAssumedSignCode() {
		return n, false
	}
	sign, ok := n.SetSign()
	if !ok || sign != child.KnownOrAssumedSignCode() || !canReplaceWithChild(n, child, true) {
		return n, false
	}
	state := "assumed"
	if child.HasKnownSignCode() {
		state = "known"
	}
	if !s.allow("removeMatchingSetSign", "replace %v with child %v of %s sign 0x%x", s.ref(n), s.ref(child), state, sign) {
		return n, false
	}
	return s.replaceWithChild(n, child, true), true
}

// lowerPackedShiftOrSetSignBelowDFPConv moves a packed shift or set sign
// of a DFP to packed conversion into DFP, where shifts are cheaper. The
// DFP type is widened to hold every digit the shift can produce.
//
//	pdshr p=5                    dd2pd p=5
//	  dd2pd p=9                    ddshrRounded
//	    x               =>           x
//	  2                              2
//	  5                              5
func (s *Simplifier) lowerPackedShiftOrSetSignBelowDFPConv(n *ir.Node) *ir.Node {
	op := n.Op()
	switch op {
	case ir.Pdshl, ir.Pdshr, ir.PdshlSetSign, ir.PdshrSetSign, ir.PdSetSign:
	default:
		return n
	}
	conv := n.Child(0)
	if !isDFPFamily(conv.Op(), ir.Df2pd, ir.Df2pdSetSign, ir.Df2pdClean) {
		return n
	}
	setSign := op.IsSetSign()
	if !setSign && !isDFPFamily(conv.Op(), ir.Df2pd) {
		return n
	}
	if conv.Fraction() != 0 || ir.HasIntermediateTruncation(n) {
		return n
	}
	sign := ir.IgnoredSignCode
	if setSign {
		code, ok := n.SetSign()
		if !ok || !ir.IsSupportedRawSign(code) {
			return n
		}
		sign = code
	}
	shift := op.IsShift()
	adjust, round := 0, 0
	if shift {
		if _, ok := n.ShiftAmount(); !ok {
			return n
		}
		adjust = n.DecimalAdjust()
		if op.IsRightShift() {
			r, ok := n.ConstInt(2)
			if !ok || r != 0 && r != 5 {
				return n
			}
			round = r
		}
	}
	bump := 0
	if round != 0 {
		bump = 1
	}

	convType := conv.Child(0).Type()
	srcP := convType.MaxPrecision()
	if conv.HasSourcePrecision() {
		srcP = conv.SourcePrecision()
	}
	maxP := max(n.Precision(), srcP)
	if shift {
		maxP = max(maxP, conv.Precision()+adjust+bump, srcP+adjust+bump)
	}
	if maxP > ir.MaxExtendedDFPPrecision {
		return n
	}
	resultType := ir.DFPTypeForPrecision(maxP)
	if resultType == ir.DecimalFloat && convType != ir.DecimalFloat {
		resultType = ir.DecimalDouble
	}
	if !s.allow("lowerPackedShiftOrSetSignBelowDFPConv", "move %v below %v into %v", s.ref(n), s.ref(conv), resultType) {
		return n
	}

	x := conv.Child(0)
	if resultType != convType {
		x = ir.NewNode(ir.ConversionOp(convType, resultType, false), x)
	}
	if shift {
		if round == 0 {
			x = ir.NewNode(ir.DFPShiftOp(resultType, op.IsLeftShift()), x, n.Child(1))
		} else {
			x = ir.NewNode(ir.DFPShiftRightRoundedOp(resultType), x, n.Child(1), ir.NewIconst(round))
		}
	}
	var r *ir.Node
	if setSign {
		r = ir.NewNode(ir.DFPToPackedSetSignOp(resultType), x)
		r.SetNodeSign(sign)
	} else {
		r = ir.NewNode(ir.ConversionOp(resultType, ir.PackedDecimal, false), x)
	}
	r.SetPrecision(n.Precision())
	if conv.HasSourcePrecision() && srcP+adjust+bump > 0 {
		r.SetSourcePrecision(srcP + adjust + bump)
	}
	return s.simplify(r)
}

// reduceShiftRightOverShiftLeft combines a packed right shift of a
// packed left shift into one shift, a set sign, or a modify precision.
// A round of the right shift only reads digits the left shift zeroed
// when the left shift is at least as long, so it is dropped then.
//
//	pdshr p=5                    pdshl p=5
//	  pdshl p=9                    x p=5
//	    x p=5           =>         1
//	    3
//	  2
//	  0
func (s *Simplifier) reduceShiftRightOverShiftLeft(n *ir.Node) {
	child := n.Child(0)
	if !n.Op().IsPackedRightShift() || !child.Op().IsPackedLeftShift() || child.Op().IsOverflowShift() {
		return
	}
	if ir.HasIntermediateTruncation(n) {
		return
	}
	if _, ok := n.ShiftAmount(); !ok {
		return
	}
	if _, ok := child.ShiftAmount(); !ok {
		return
	}
	combined := n.DecimalAdjust() + child.DecimalAdjust()

	var sign *ir.Node
	switch {
	case n.Op().IsSetSign():
		sign = n.Child(n.Op().SetSignValueIndex())
	case child.Op().IsSetSign():
		sign = child.Child(child.Op().SetSignValueIndex())
	}
	var op ir.Op
	switch {
	case combined == 0 && sign != nil:
		op = ir.PdSetSign
	case combined == 0:
		op = ir.PdModifyPrecision
	case combined < 0 && sign != nil:
		op = ir.PdshrSetSign
	case combined < 0:
		op = ir.Pdshr
	case sign != nil:
		op = ir.PdshlSetSign
	default:
		op = ir.Pdshl
	}
	if !s.allow("reduceShiftRightOverShiftLeft", "combine %v and %v into %v by %d", s.ref(n), s.ref(child), op, combined) {
		return
	}

	children := []*ir.Node{child.Child(0)}
	if combined != 0 {
		children = append(children, ir.NewIconst(abs(combined)))
	}
	if combined < 0 {
		children = append(children, n.Child(2))
	}
	if sign != nil {
		children = append(children, sign)
	}
	n.Recreate(op, children...)
}

// reduceShiftRightOverShiftRight combines a packed right shift of a
// plain packed right shift into one shift. The inner shift must not
// round, and its truncation must not be visible through a widening
// outer shift.
func (s *Simplifier) reduceShiftRightOverShiftRight(n *ir.Node) {
	child := n.Child(0)
	if !n.Op().IsPackedRightShift() || child.Op() != ir.Pdshr {
		return
	}
	nodeShift, ok := n.ShiftAmount()
	if !ok {
		return
	}
	childShift, ok := child.ShiftAmount()
	if !ok {
		return
	}
	nodeRound, ok := n.ConstInt(2)
	if !ok {
		return
	}
	childRound, ok := child.ConstInt(2)
	if !ok || childRound != 0 {
		return
	}
	grand := child.Child(0)
	childTruncates := child.Precision() < grand.Precision()-childShift
	nodeWidens := n.Precision() > child.Precision()-nodeShift
	if childTruncates && nodeWidens {
		return
	}
	if nodeRound != 0 && grand.Precision() > ir.MaxPackedPrecision {
		return
	}
	if !s.allow("reduceShiftRightOverShiftRight", "combine %v and %v into a shift by %d",
		s.ref(n), s.ref(child), nodeShift+childShift) {
		return
	}
	n.SetChild(0, grand)
	n.SetChild(1, ir.NewIconst(nodeShift+childShift))
	if nodeShift == 0 && nodeRound != 0 {
		// A shift by zero drops no digit to round on.
		n.SetChild(2, ir.NewIconst(0))
	}
}

// reduceShiftLeftOverShiftRight replaces a packed left shift of a packed
// right shift by the same amount with a clear of the shifted digits. It
// only applies on the last run, after other shift folds had their
// chance.
//
//	pdshl p=7                    pdclear p=7
//	  pdshr p=5                    x p=7
//	    x p=7           =>         2
//	    2                          2
//	    0
//	  2
func (s *Simplifier) reduceShiftLeftOverShiftRight(n *ir.Node) {
	if !s.caps.LastRun || !n.Op().IsPackedLeftShift() || n.Op().IsOverflowShift() {
		return
	}
	child := n.Child(0)
	if !child.Op().IsPackedRightShift() || ir.HasIntermediateTruncation(n) {
		return
	}
	k, ok := n.ShiftAmount()
	if !ok || k <= 0 {
		return
	}
	childK, ok := child.ShiftAmount()
	if !ok || childK != k {
		return
	}
	if round, ok := child.ConstInt(2); !ok || round != 0 {
		return
	}

	sign := ir.IgnoredSignCode
	var setSign *ir.Node
	switch {
	case n.Op().IsSetSign():
		setSign = n
	case child.Op().IsSetSign():
		setSign = child
	}
	if setSign != nil {
		code, ok := setSign.SetSign()
		if !ok || !ir.IsSupportedRawSign(code) {
			return
		}
		sign = code
	}
	if !s.allow("reduceShiftLeftOverShiftRight", "replace %v and %v with a clear of %d digits", s.ref(n), s.ref(child), k) {
		return
	}
	x := child.Child(0)
	if setSign != nil {
		n.Recreate(ir.PdclearSetSign, x, ir.NewIconst(k), ir.NewIconst(k))
		n.SetNodeSign(sign)
	} else {
		n.Recreate(ir.Pdclear, x, ir.NewIconst(k), ir.NewIconst(k))
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
