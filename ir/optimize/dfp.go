package optimize

import "github.com/andrewarchi/decsimp/ir"

// removeUnnecessaryDFPClean removes a DFP clean from the ith child of a
// node that overwrites or ignores the sign of zero.
func (s *Simplifier) removeUnnecessaryDFPClean(n *ir.Node, i int) {
	child := n.Child(i)
	if !child.Type().IsDFP() || child.Op() != ir.CleanOp(child.Type()) {
		return
	}
	if !s.allow("removeUnnecessaryDFPClean", "remove %v under %v", s.ref(child), s.ref(n)) {
		return
	}
	n.SetChild(i, child.Child(0))
}

// pd2dfp handles the packed to DFP conversions and their abs versions.
func (s *Simplifier) pd2dfp(n *ir.Node) *ir.Node {
	child := s.removeOperandWidening(n, 0)
	abs := n.Op().IsAbs()
	if !abs {
		if r := s.unaryCancel(n, n.Op().InverseOp()); r != nil {
			return r
		}
	}
	if r := s.convertBetweenDFPTypes(n); r != nil {
		return r
	}
	nt := n.Type()

	if s.caps.zonedDFP() && child.Op() == ir.Zd2pd && n.Fraction() == 0 && child.Fraction() == 0 &&
		canReplaceWithChild(child, child.Child(0), true) {
		op := ir.ConversionOp(ir.ZonedDecimal, nt, false)
		if abs {
			op = ir.ZonedToDFPAbsOp(ir.ZonedDecimal, nt)
		}
		if s.allow("foldZonedToDFP", "fold %v and %v into %v", s.ref(n), s.ref(child), op) {
			n.Recreate(op, s.replaceWithChild(child, child.Child(0), true))
			n.ResetSignState()
			return n
		}
	}

	if child.Op() != ir.PdSetSign || n.Fraction() != 0 {
		return n
	}
	sign, ok := child.SetSign()
	if !ok {
		return n
	}
	if p := ir.EmbeddedPolarity(sign); p != ir.Plus && p != ir.Unsigned {
		return n
	}

	// A plus sign set before the conversion is an abs conversion.
	if conv := child.Child(0); s.caps.zonedDFP() && conv.Op() == ir.Zd2pd && conv.Fraction() == 0 &&
		conv.Precision() >= child.Precision() {
		op := ir.ZonedToDFPAbsOp(ir.ZonedDecimal, nt)
		if s.allow("foldZonedToDFPAbs", "fold %v, %v, and %v into %v", s.ref(n), s.ref(child), s.ref(conv), op) {
			z := conv.Child(0)
			if z.Precision() > child.Precision() {
				z = ir.NewNode(ir.ZdModifyPrecision, z)
				z.SetPrecision(child.Precision())
			}
			n.Recreate(op, z)
			n.ResetSignState()
			n.SetNonNegative()
			return n
		}
		return n
	}
	op := ir.PackedToDFPAbsOp(ir.PackedDecimal, nt)
	if !s.allow("foldPackedToDFPAbs", "fold %v and %v into %v", s.ref(n), s.ref(child), op) {
		return n
	}
	x := child.Child(0)
	if x.Precision() > child.Precision() {
		x = ir.NewNode(ir.PdModifyPrecision, x)
		x.SetPrecision(child.Precision())
	}
	n.Recreate(op, x)
	n.ResetSignState()
	n.SetNonNegative()
	return n
}

// convertBetweenDFPTypes replaces a conversion to DFP of a conversion
// from another DFP type to packed with a conversion between the DFP
// types, when packed holds every digit.
//
//	pd2dd                        df2dd
//	  df2pd p=7         =>         x
//	    x
func (s *Simplifier) convertBetweenDFPTypes(n *ir.Node) *ir.Node {
	child := n.Child(0)
	if !isDFPFamily(child.Op(), ir.Df2pd) || ir.IsTruncating(child) ||
		n.Fraction() != 0 || child.Fraction() != 0 {
		return nil
	}
	x := child.Child(0)
	nt, xt := n.Type(), x.Type()
	fits := false
	switch nt {
	case ir.DecimalLongDouble:
		fits = xt == ir.DecimalFloat || xt == ir.DecimalDouble
	case ir.DecimalDouble:
		fits = xt == ir.DecimalFloat || xt == ir.DecimalLongDouble && child.Precision() <= ir.DecimalDouble.MaxPrecision()
	case ir.DecimalFloat:
		fits = xt != ir.DecimalFloat && child.Precision() <= ir.DecimalFloat.MaxPrecision()
	}
	if !fits {
		return nil
	}
	op := ir.ConversionOp(xt, nt, false)
	if !s.allow("convertBetweenDFPTypes", "replace %v of %v with %v", s.ref(n), s.ref(child), op) {
		return nil
	}
	if n.Op().IsAbs() {
		conv := ir.NewNode(op, x)
		n.Recreate(ir.AbsOp(nt), conv)
		n.ResetSignState()
		n.SetNonNegative()
		return n
	}
	n.Recreate(op, x)
	n.ResetSignState()
	return n
}

// dfp2pd handles the plain and cleaning DFP to packed conversions.
func (s *Simplifier) dfp2pd(n *ir.Node) *ir.Node {
	if r := s.unaryCancel(n, n.Op().InverseOp()); r != nil {
		return r
	}
	return n
}

// dfp2bcdSetSign handles the DFP to packed and zoned conversions that
// set the sign.
func (s *Simplifier) dfp2bcdSetSign(n *ir.Node) *ir.Node {
	s.removeUnnecessaryDFPClean(n, 0)
	s.trackSetSignValue(n)
	return n
}

func (s *Simplifier) zd2dfp(n *ir.Node) *ir.Node {
	if r := s.unaryCancel(n, n.Op().InverseOp()); r != nil {
		return r
	}
	return n
}

func (s *Simplifier) dfp2zd(n *ir.Node) *ir.Node {
	if r := s.unaryCancel(n, n.Op().InverseOp()); r != nil {
		return r
	}
	return n
}

func (s *Simplifier) dfp2integral(n *ir.Node) *ir.Node {
	if r := s.unaryCancel(n, n.Op().InverseOp()); r != nil {
		return r
	}
	return n
}

func (s *Simplifier) integral2dfp(n *ir.Node) *ir.Node {
	if r := s.unaryCancel(n, n.Op().InverseOp()); r != nil {
		return r
	}
	return n
}

// dfpSetSign handles the DFP abs and set negative ops.
//
//	ddabs                        ddabs
//	  ddshl                        ddshl
//	    ddSetNegative   =>           x
//	      x                        2
//	    2
func (s *Simplifier) dfpSetSign(n *ir.Node) *ir.Node {
	if parent := redundantDFPSetSignDescendant(n); parent != nil {
		c := parent.Child(0)
		if s.allow("removeDominatedDFPSign", "remove %v dominated by %v", s.ref(c), s.ref(n)) {
			parent.SetChild(0, c.Child(0))
			return s.simplify(n)
		}
	}

	if n.Op().IsAbs() {
		if !n.IsNonNegative() && s.allow("propagateNonNegative", "mark %v non-negative", s.ref(n)) {
			n.SetNonNegative()
		}
	} else if !n.IsNonPositive() && s.allow("propagateNonPositive", "mark %v non-positive", s.ref(n)) {
		n.SetNonPositive()
	}
	return n
}

// redundantDFPSetSignDescendant returns the parent of a DFP sign
// operation whose sign n overwrites, or nil. The search passes through
// exclusive DFP nodes that keep the magnitude and stops at conversions,
// arithmetic, and floor.
func redundantDFPSetSignDescendant(n *ir.Node) *ir.Node {
	for parent := n; ; {
		c := parent.Child(0)
		op := c.Op()
		if !c.Type().IsDFP() || !c.IsExclusive() || c.NumChildren() == 0 ||
			op.IsConversion() || op.IsArithmetic() || op.IsFloor() {
			return nil
		}
		if isDFPFamily(op, ir.Dfabs, ir.DfSetNegative, ir.Dfclean) {
			return parent
		}
		parent = c
	}
}

func (s *Simplifier) dfpFloor(n *ir.Node) *ir.Node {
	if !n.IsNonNegative() && n.Child(0).IsNonNegative() &&
		s.allow("propagateNonNegative", "mark %v non-negative with non-negative child", s.ref(n)) {
		n.SetNonNegative()
	}
	return n
}

// dfpArith handles DFP add, mul, and div.
func (s *Simplifier) dfpArith(n *ir.Node) *ir.Node {
	s.propagateNonNegativeForArithmetic(n)
	return n
}

// dfpModifyPrecision collapses nested precision changes into the
// smaller one.
func (s *Simplifier) dfpModifyPrecision(n *ir.Node) *ir.Node {
	child := n.Child(0)
	if child.Op() != n.Op() {
		return n
	}
	if child.Precision() < n.Precision() {
		if s.allow("collapseModifyPrecision", "replace %v with narrower child %v", s.ref(n), s.ref(child)) {
			return child
		}
		return n
	}
	if s.allow("collapseModifyPrecision", "remove %v under narrower %v", s.ref(child), s.ref(n)) {
		n.SetChild(0, child.Child(0))
	}
	return n
}

// dfpCompare handles DFP compares, which treat zeros of either sign as
// equal.
func (s *Simplifier) dfpCompare(n *ir.Node) *ir.Node {
	s.removeUnnecessaryDFPClean(n, 0)
	s.removeUnnecessaryDFPClean(n, 1)
	return n
}
