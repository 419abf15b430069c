package optimize

import "github.com/andrewarchi/decsimp/ir"

// zonedStore handles zdslestore and zdstsstore.
func (s *Simplifier) zonedStore(n *ir.Node) *ir.Node {
	s.removeOperandWidening(n, 0)
	return n
}

func (s *Simplifier) zd2zdsle(n *ir.Node) *ir.Node {
	s.removeOperandWidening(n, 0)
	s.propagateSignState(n)
	if child := n.Child(0); child.Op().IsSetSign() {
		if r := s.foldSetSignIntoNode(child, true, n, true); r != n {
			return r
		}
	}
	if n.Precision() >= n.Child(0).Precision() {
		if r := s.unaryCancel(n, ir.Zdsle2zd); r != nil {
			return r
		}
	}
	return n
}

func (s *Simplifier) zdsle2zd(n *ir.Node) *ir.Node {
	s.propagateSignState(n)
	if n.Precision() == n.Child(0).Precision() {
		if r := s.unaryCancel(n, ir.Zd2zdsle); r != nil {
			return r
		}
	}
	return n
}

// separateSignToEmbedded handles zdsle2pd, udsl2ud, udst2ud, zdsls2zd, and
// zdsts2zd.
func (s *Simplifier) separateSignToEmbedded(n *ir.Node) *ir.Node {
	s.removeShiftTruncationForConversionParent(n)
	s.removeOperandWidening(n, 0)
	return n
}

func (s *Simplifier) zd2pd(n *ir.Node) *ir.Node {
	s.propagateSignState(n)
	if r := s.unaryCancel(n, ir.Pd2zd); r != nil {
		return r
	}
	child := n.Child(0)
	if child.Op() == ir.Zdsle2zd && child.IsExclusive() && n.Precision() < child.Precision() &&
		s.allow("truncateConversionChild", "reduce %v precision to %d under truncating %v", s.ref(child), n.Precision(), s.ref(n)) {
		child.SetPrecision(n.Precision())
		child.ResetSignState()
	}
	s.removeOperandWidening(n, 0)
	return n
}

func (s *Simplifier) pd2zd(n *ir.Node) *ir.Node {
	child := n.Child(0)
	if n.Precision() == child.Precision() && ir.IsSimpleTruncation(child) &&
		s.allow("removeSimpleTruncation", "remove %v under %v of the same precision", s.ref(child), s.ref(n)) {
		n.SetChild(0, child.Child(0))
	}
	s.propagateSignState(n)
	if r := s.unaryCancel(n, ir.Zd2pd); r != nil {
		return r
	}
	n.SetChild(0, s.flipCleanAndShift(n.Child(0)))
	child = n.Child(0)

	if n.IsExclusive() && child.IsExclusive() && n.Precision() == child.Precision() {
		if r := s.foldSeparateSignConversion(n, child); r != nil {
			return r
		}
	}

	child = s.removeOperandWidening(n, 0)
	if !s.caps.zonedDFP() {
		return n
	}

	if child.Op() == ir.Pdclean {
		conv := child.Child(0)
		if isDFPFamily(conv.Op(), ir.Df2pd, ir.Df2pdClean) && conv.Fraction() == 0 &&
			!ir.HasIntermediateTruncation(n) && n.Precision() <= conv.Precision() &&
			s.allow("foldDFPToZonedClean", "fold %v, %v, and %v into a cleaning conversion", s.ref(n), s.ref(child), s.ref(conv)) {
			x := conv.Child(0)
			n.Recreate(ir.DFPToZonedCleanOp(x.Type()), x)
			n.ResetSignState()
			n.SetCleanState(ir.CleanKnown)
			n.SetFraction(conv.Fraction())
			n.SetSourcePrecision(conv.SourcePrecision())
			return n
		}
	}

	if !isDFPFamily(child.Op(), ir.Df2pd, ir.Df2pdSetSign, ir.Df2pdClean) || child.Fraction() != 0 ||
		n.Precision() > child.Precision() {
		return n
	}
	x := child.Child(0)
	op := ir.ConversionOp(x.Type(), ir.ZonedDecimal, false)
	sign := ir.IgnoredSignCode
	switch {
	case child.Op().IsSetSignOnNode():
		code, _ := child.SetSign()
		if !ir.IsSupportedRawSign(code) {
			return n
		}
		op, sign = ir.DFPToZonedSetSignOp(x.Type()), code
	case child.Op().IsClean():
		op = ir.DFPToZonedCleanOp(x.Type())
	}
	if !s.allow("foldDFPToZoned", "fold %v and %v into %v", s.ref(n), s.ref(child), op) {
		return n
	}
	n.Recreate(op, x)
	n.ResetSignState()
	if sign != ir.IgnoredSignCode {
		n.SetNodeSign(sign)
	}
	n.SetFraction(child.Fraction())
	n.SetSourcePrecision(child.SourcePrecision())
	return n
}

// foldSeparateSignConversion replaces a conversion to zoned of a
// conversion from a separate or leading sign type to packed with one
// conversion to zoned.
//
//	pd2zd p=5                    zdsls2zd p=5
//	  zdsls2pd p=5      =>         x p=5
//	    x p=5
func (s *Simplifier) foldSeparateSignConversion(n, child *ir.Node) *ir.Node {
	base := child.Op()
	setSign := base.IsSetSign()
	switch base {
	case ir.Zdsle2pd, ir.Zdsls2pd, ir.Zdsts2pd:
	case ir.Zdsls2pdSetSign:
		base = ir.Zdsls2pd
	case ir.Zdsts2pdSetSign:
		base = ir.Zdsts2pd
	default:
		return nil
	}
	op := ir.ConversionOp(base.SourceType(), ir.ZonedDecimal, false)
	if setSign {
		op = op.SetSignVersion()
	}
	if op == ir.BadOp {
		return nil
	}
	if !s.allow("foldSeparateSignConversion", "fold %v and %v into %v", s.ref(n), s.ref(child), op) {
		return nil
	}
	var r *ir.Node
	if setSign {
		r = ir.NewNode(op, child.Child(0), child.Child(1))
	} else {
		r = ir.NewNode(op, child.Child(0))
	}
	r.SetPrecision(n.Precision())
	r.SetSourcePrecision(child.SourcePrecision())
	return r
}

// zd2zdsls handles zd2zdsls and zd2zdsts.
func (s *Simplifier) zd2zdsls(n *ir.Node) *ir.Node {
	s.propagateSignState(n)
	if n.Op() == ir.Zd2zdsts {
		s.removeOperandWidening(n, 0)
	}
	if r := s.foldSetSignFromGrandChild(n); r != n {
		return r
	}
	if n.Precision() == n.Child(0).Precision() {
		if r := s.unaryCancel(n, n.Op().InverseOp()); r != nil {
			return r
		}
	}
	return n
}

// zdsls2pd handles zdsls2pd and zdsts2pd.
func (s *Simplifier) zdsls2pd(n *ir.Node) *ir.Node {
	s.propagateSignState(n)
	return n
}

// pd2zdsls handles pd2zdsls and pd2zdsts.
func (s *Simplifier) pd2zdsls(n *ir.Node) *ir.Node {
	s.propagateSignState(n)
	child := s.removeOperandWidening(n, 0)
	if n.Precision() >= child.Precision() {
		if r := s.unaryCancel(n, n.Op().InverseOp()); r != nil {
			return r
		}
	}

	if child := n.Child(0); child.Op() == ir.PdSetSign {
		if r := s.foldSetSignIntoNode(child, true, n, true); r != n {
			return r
		}
	}
	if child := n.Child(0); child.Op().IsSetSign() {
		if r := s.foldAndReplaceDominatedSetSign(child, true, n); r != n {
			return r
		}
	}

	if n.Child(0).Op() == ir.Zd2pd {
		if x := s.unaryCancel(n, ir.Zd2pd); x != nil {
			op := ir.Zd2zdsls
			if n.Op() == ir.Pd2zdsts {
				op = ir.Zd2zdsts
			}
			r := ir.NewNode(op, x)
			r.SetPrecision(n.Precision())
			return r
		}
	}

	n.SetChild(0, s.flipCleanAndShift(n.Child(0)))
	s.removeOperandWidening(n, 0)
	return n
}

// setSignConversion handles the conversions that set the sign, which
// have no rules of their own.
func (s *Simplifier) setSignConversion(n *ir.Node) *ir.Node {
	return n
}

func (s *Simplifier) pd2ud(n *ir.Node) *ir.Node {
	s.removeShiftTruncationForConversionParent(n)
	child := n.Child(0)
	if n.Precision() == child.Precision() && ir.IsSimpleTruncation(child) &&
		s.allow("removeSimpleTruncation", "remove %v under %v of the same precision", s.ref(child), s.ref(n)) {
		n.SetChild(0, child.Child(0))
	}
	if r := s.unaryCancel(n, ir.Ud2pd); r != nil {
		return r
	}
	child = s.removeOperandWidening(n, 0)

	// An unsigned result ignores the sign, so operations that only set it
	// are not needed.
	if (child.Op() == ir.Pdclean || child.Op() == ir.PdSetSign) && canReplaceWithChild(child, child.Child(0), true) &&
		s.allow("removeUnsignedSign", "remove %v under unsigned %v", s.ref(child), s.ref(n)) {
		n.SetChild(0, s.replaceWithChild(child, child.Child(0), true))
		return s.simplify(n)
	}
	if !child.IsExclusive() {
		return n
	}
	if child.Op().IsSetSign() {
		i := child.Op().SetSignValueIndex()
		if old, ok := child.ConstInt(i); ok && old != ir.IgnoredSignCode &&
			s.allow("ignoreDominatedSign", "ignore sign 0x%x of %v under unsigned %v", old, s.ref(child), s.ref(n)) {
			child.SetChild(i, ir.NewIconst(ir.IgnoredSignCode))
			child.ResetSignState()
		}
		return n
	}
	if op := child.Op().SetSignVersion(); op != ir.BadOp && canBuildSetSignVersion(op, child, ir.IgnoredSignCode) &&
		s.allow("ignoreDominatedSign", "replace %v under unsigned %v with %v ignoring the sign", s.ref(child), s.ref(n), op) {
		r := newSetSignVersion(op, child, child.Child(0), ir.IgnoredSignCode)
		r.SetPrecision(child.Precision())
		n.SetChild(0, s.simplify(r))
	}
	return n
}

func (s *Simplifier) ud2pd(n *ir.Node) *ir.Node {
	if !n.HasKnownOrAssumedSignCode() {
		if sign := n.Op().AlwaysGeneratedSign(); sign != ir.IgnoredSignCode &&
			s.allow("alwaysGeneratedSign", "record known sign 0x%x of %v", sign, s.ref(n)) {
			n.SetKnownSignCode(sign)
		}
	}
	if r := s.unaryCancel(n, ir.Pd2ud); r != nil {
		return r
	}
	return n
}

// udsx2pd handles udsl2pd and udst2pd.
func (s *Simplifier) udsx2pd(n *ir.Node) *ir.Node {
	s.propagateSignState(n)
	if r := s.unaryCancel(n, n.Op().InverseOp()); r != nil {
		return r
	}
	return n
}

// pd2udsl handles pd2udsl and pd2udst.
func (s *Simplifier) pd2udsl(n *ir.Node) *ir.Node {
	s.removeShiftTruncationForConversionParent(n)
	s.removeOperandWidening(n, 0)
	if child := n.Child(0); child.Op() == ir.PdSetSign {
		if r := s.foldSetSignIntoNode(child, true, n, true); r != n {
			return r
		}
	}
	if child := n.Child(0); child.Op().IsSetSign() {
		if r := s.foldAndReplaceDominatedSetSign(child, true, n); r != n {
			return r
		}
	}
	if r := s.createSetSignForKnownSignChild(n); r != n {
		return r
	}
	return s.foldSetSignFromGrandChild(n)
}

// pd2integral handles pd2i, pd2iu, pd2l, and pd2lu.
func (s *Simplifier) pd2integral(n *ir.Node) *ir.Node {
	s.simplifyPackedArithmeticOperand(n, 0)
	reverse := ir.I2pd
	if n.Type() == ir.Int64 {
		reverse = ir.L2pd
	}
	if r := s.cancelPackedToIntegralConversion(n, reverse); r != nil {
		return r
	}
	if r := s.cancelDFPtoBCDtoBinaryConversion(n); r != nil {
		return r
	}
	if child := n.Child(0); child.Op() == ir.Pdclean && canReplaceWithChild(child, child.Child(0), true) &&
		s.allow("removeClean", "remove %v under binary %v", s.ref(child), s.ref(n)) {
		n.SetChild(0, s.replaceWithChild(child, child.Child(0), true))
	}
	s.removeGrandChildClean(n)
	s.removeOperandWidening(n, 0)
	if !n.IsNonNegative() && n.Child(0).IsNonNegative() &&
		s.allow("propagateNonNegative", "mark %v non-negative with non-negative child", s.ref(n)) {
		n.SetNonNegative()
	}
	return n
}

// integral2pd handles i2pd, iu2pd, l2pd, and lu2pd.
func (s *Simplifier) integral2pd(n *ir.Node) *ir.Node {
	if r := s.unaryCancel(n, n.Op().InverseOp()); r != nil {
		return r
	}
	if !n.IsNonNegative() && (n.Child(0).IsNonNegative() || n.Op().IsUnsigned()) &&
		s.allow("propagateNonNegative", "mark %v non-negative with non-negative child", s.ref(n)) {
		n.SetNonNegative()
	}
	return n
}

// pd2float handles pd2f and pd2d.
func (s *Simplifier) pd2float(n *ir.Node) *ir.Node {
	s.removeOperandWidening(n, 0)
	return n
}
