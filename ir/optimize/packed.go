package optimize

import "github.com/andrewarchi/decsimp/ir"

// setSign handles pdSetSign and zdSetSign.
func (s *Simplifier) setSign(n *ir.Node) *ir.Node {
	child := s.removeOperandWidening(n, 0)
	sign, constSign := n.SetSign()

	if constSign && child.HasKnownOrAssumedSignCode() && child.KnownOrAssumedSignCode() == sign &&
		canReplaceWithChild(n, child, true) &&
		s.allow("removeMatchingSetSign", "replace %v with child %v already of sign 0x%x", s.ref(n), s.ref(child), sign) {
		return s.replaceWithChild(n, child, true)
	}
	if !constSign || sign == ir.IgnoredSignCode {
		return n
	}

	// Children that only change the sign or truncate to the same
	// precision are not needed under a constant sign.
	switch {
	case n.Precision() == child.Precision() && ir.IsSimpleTruncation(child):
		if s.allow("removeSimpleTruncation", "remove %v under %v of the same precision", s.ref(child), s.ref(n)) {
			n.SetChild(0, child.Child(0))
			return s.simplify(n)
		}
	case child.Op() == ir.Pdneg, child.Op() == n.Op(), child.Op() == ir.Pdclean:
		if canReplaceWithChild(child, child.Child(0), true) &&
			s.allow("removeDominatedSign", "remove %v dominated by %v", s.ref(child), s.ref(n)) {
			n.SetChild(0, s.replaceWithChild(child, child.Child(0), true))
			return s.simplify(n)
		}
	}

	if child.IsExclusive() && canReplaceWithChild(n, child, true) {
		switch {
		case child.Op().IsSetSign():
			if s.allow("foldSetSignIntoSetSignChild", "set sign 0x%x in %v instead of %v", sign, s.ref(child), s.ref(n)) {
				child.SetChild(child.Op().SetSignValueIndex(), n.Child(1))
				child.ResetSignState()
				return s.replaceWithChild(n, child, true)
			}
			return n
		case child.Op().IsSetSignOnNode() && ir.IsSupportedRawSign(sign):
			if s.allow("foldSetSignIntoSetSignChild", "set sign 0x%x in %v instead of %v", sign, s.ref(child), s.ref(n)) {
				child.SetNodeSign(sign)
				child.ResetSignState()
				return s.replaceWithChild(n, child, true)
			}
			return n
		}
	}

	if child.Op().SetSignVersion() != ir.BadOp {
		if r := s.foldSetSignIntoNode(n, false, child, true); r != n {
			return r
		}
	}
	if r := s.foldSetSignIntoGrandChild(n); r != n {
		return r
	}
	if n.Op() == ir.PdSetSign {
		if r := s.lowerPackedShiftOrSetSignBelowDFPConv(n); r != n {
			return r
		}
	}
	s.trackSetSignValue(n)
	return n
}

func (s *Simplifier) pdclean(n *ir.Node) *ir.Node {
	child := s.removeOperandWidening(n, 0)

	if (child.Op() == ir.Pdclean || child.HasKnownOrAssumedCleanSign()) && canReplaceWithChild(n, child, true) &&
		s.allow("removeClean", "replace %v with already clean child %v", s.ref(n), s.ref(child)) {
		return s.replaceWithChild(n, child, true)
	}

	// A plus sign set by the child is made preferred in place.
	if child.IsExclusive() && child.Op().IsSetSign() && canReplaceWithChild(n, child, true) {
		i := child.Op().SetSignValueIndex()
		if code, ok := child.ConstInt(i); ok {
			if p := ir.EmbeddedPolarity(code); (p == ir.Plus || p == ir.Unsigned) &&
				s.allow("cleanSetSign", "set clean sign in %v instead of %v", s.ref(child), s.ref(n)) {
				child.SetChild(i, ir.NewIconst(ir.PreferredPlusCode))
				child.ResetSignState()
				child.SetCleanState(ir.CleanKnown)
				return s.replaceWithChild(n, child, true)
			}
		}
	}

	if s.caps.FastPackedDFP && isDFPFamily(child.Op(), ir.Df2pd) && child.Fraction() == 0 &&
		!ir.HasIntermediateTruncation(n) &&
		s.allow("foldDFPToPackedClean", "fold %v and %v into a cleaning conversion", s.ref(n), s.ref(child)) {
		x := child.Child(0)
		src := child.SourcePrecision()
		n.Recreate(ir.DFPToPackedCleanOp(x.Type()), x)
		n.SetSourcePrecision(src)
		n.SetCleanState(ir.CleanKnown)
		return n
	}

	if (child.Op() == ir.Dd2pd || child.Op() == ir.De2pd) && child.IsExclusive() &&
		!child.Child(0).IsNonNegative() && !ir.IsTruncating(child) && !ir.IsTruncating(n) &&
		canReplaceWithChild(n, child, true) &&
		s.allow("cleanInDFP", "clean %v in DFP instead of with %v", s.ref(child), s.ref(n)) {
		x := child.Child(0)
		child.SetChild(0, ir.NewNode(ir.CleanOp(x.Type()), x))
		child.SetCleanState(ir.CleanKnown)
		return s.replaceWithChild(n, child, true)
	}

	switch child.KnownOrAssumedSignCode() {
	case ir.PreferredPlusCode:
		if canReplaceWithChild(n, child, true) &&
			s.allow("removeClean", "replace %v with child %v of preferred plus sign", s.ref(n), s.ref(child)) {
			return s.replaceWithChild(n, child, true)
		}
	case ir.ZonedValue:
		if !(child.Op().IsLoad() && s.isCurrentStoreValue(n)) &&
			s.allow("cleanUnsignedSign", "replace %v of unsigned %v with a plus sign", s.ref(n), s.ref(child)) {
			r := ir.NewNode(ir.PdSetSign, child, ir.NewIconst(ir.PreferredPlusCode))
			r.SetPrecision(n.Precision())
			return s.simplify(r)
		}
	}

	child = s.removeOperandWidening(n, 0)
	if child.IsExclusive() && ir.IsSimpleTruncation(child) && child.Child(0).Op() == ir.Pdclean {
		inner := child.Child(0)
		if canReplaceWithChild(inner, inner.Child(0), true) &&
			s.allow("removeClean", "remove %v under %v", s.ref(inner), s.ref(n)) {
			child.SetChild(0, s.replaceWithChild(inner, inner.Child(0), true))
		}
	}

	if !n.HasKnownCleanSign() &&
		s.allow("trackClean", "record clean sign of %v", s.ref(n)) {
		n.SetCleanState(ir.CleanKnown)
	}
	return n
}

// isCurrentStoreValue returns whether n is the value stored by the
// statement being simplified.
func (s *Simplifier) isCurrentStoreValue(n *ir.Node) bool {
	if s.block == nil || s.stmt >= len(s.block.Stmts) {
		return false
	}
	root := s.block.Stmts[s.stmt].Root()
	return root.Op() == ir.Pdstore && root.Child(0) == n
}

func (s *Simplifier) pdclear(n *ir.Node) *ir.Node {
	child := n.Child(0)
	if child.Op() != ir.PdSetSign || !child.IsExclusive() || !canReplaceWithChild(child, child.Child(0), true) {
		return n
	}
	code, ok := child.SetSign()
	if !ok || !ir.IsSupportedRawSign(code) {
		return n
	}
	if !s.allow("foldSetSignIntoClear", "fold sign 0x%x of %v into %v", code, s.ref(child), s.ref(n)) {
		return n
	}
	x := s.replaceWithChild(child, child.Child(0), true)
	n.Recreate(ir.PdclearSetSign, x, n.Child(1), n.Child(2))
	n.ResetSignState()
	n.SetNodeSign(code)
	return s.simplify(n)
}

func (s *Simplifier) pdclearSetSign(n *ir.Node) *ir.Node {
	s.removeOperandWidening(n, 0)
	s.trackSetSignValue(n)
	return n
}

func (s *Simplifier) pdneg(n *ir.Node) *ir.Node {
	child := s.removeOperandWidening(n, 0)
	if r := s.unaryCancel(n, ir.Pdneg); r != nil {
		return r
	}

	// Negating a known sign sets the opposite preferred sign.
	code := ir.IgnoredSignCode
	switch child.KnownOrAssumedSignCode() {
	case ir.PreferredPlusCode, ir.ZonedValue:
		code = ir.PreferredMinusCode
	case ir.PreferredMinusCode:
		code = ir.PreferredPlusCode
	}
	if code != ir.IgnoredSignCode &&
		s.allow("negateKnownSign", "replace %v of child %v of known sign with sign 0x%x", s.ref(n), s.ref(child), code) {
		x := child
		if child.Op() == ir.PdSetSign && canReplaceWithChild(child, child.Child(0), true) {
			x = s.replaceWithChild(child, child.Child(0), true)
		}
		n.Recreate(ir.PdSetSign, x, ir.NewIconst(code))
		n.ResetSignState()
		return s.simplify(n)
	}

	if !n.IsNonNegative() && child.IsNonPositive() &&
		s.allow("propagateNonNegative", "mark %v non-negative with non-positive child", s.ref(n)) {
		n.SetNonNegative()
	}
	return n
}

// pdstore handles pdstore and zdstore.
func (s *Simplifier) pdstore(n *ir.Node) *ir.Node {
	value := n.Child(0)
	packed := n.Op() == ir.Pdstore
	if packed && !n.CleanSignInStore() && !s.caps.KeepBCDWidening && n.Precision() <= ir.MaxPackedPrecision {
		switch {
		case value.Op() == ir.Pdclean && value.IsExclusive() && canReplaceWithChild(value, value.Child(0), true):
			if s.allow("cleanInStore", "clean in %v instead of with %v", s.ref(n), s.ref(value)) {
				n.SetCleanSignInStore()
				n.SetChild(0, s.replaceWithChild(value, value.Child(0), true))
			}
		case value.Op() == ir.PdSetSign && value.IsExclusive() && value.Child(0).Op().IsLoad() &&
			value.Child(0).KnownOrAssumedSignCode() == ir.ZonedValue &&
			value.Precision() >= value.Child(0).Precision():
			if sign, ok := value.SetSign(); ok && sign == ir.PreferredPlusCode &&
				s.allow("cleanInStore", "clean unsigned %v in %v instead of with %v", s.ref(value.Child(0)), s.ref(n), s.ref(value)) {
				n.SetCleanSignInStore()
				n.SetChild(0, value.Child(0))
			}
		}
	}

	value = s.removeOperandWidening(n, 0)
	if n.CleanSignInStore() {
		if value.IsExclusive() && ir.IsSimpleTruncation(value) && value.Child(0).Op() == ir.Pdclean {
			clean := value.Child(0)
			if canReplaceWithChild(clean, clean.Child(0), true) &&
				s.allow("removeClean", "remove %v under %v of %v", s.ref(clean), s.ref(value), s.ref(n)) {
				value.SetChild(0, s.replaceWithChild(clean, clean.Child(0), true))
			}
		}
		s.removeGrandChildClean(n)
	}

	// The store truncates to its own precision, except that an even
	// packed precision is only zeroed in the top nibble by the truncation.
	value = n.Child(0)
	keep := packed && (n.CleanSignInStore() || n.IsEvenPrecision())
	if !keep && ir.IsSimpleTruncation(value) && value.Precision() == n.Precision() &&
		s.allow("removeSimpleTruncation", "remove %v under %v of the same precision", s.ref(value), s.ref(n)) {
		n.SetChild(0, value.Child(0))
	}
	s.removeOperandWidening(n, 0)
	return n
}
