package optimize

import "github.com/andrewarchi/decsimp/ir"

// propagateSignState copies what is known about the sign of the first
// child of a unary BCD conversion or precision change to the node. A
// clean sign only survives when no digits are dropped, since truncation
// may leave a negative zero. It reports whether the state changed.
func (s *Simplifier) propagateSignState(n *ir.Node) bool {
	child := n.Child(0)
	nt, ct := n.Type(), child.Type()
	if !nt.IsBCD() || !ct.IsBCD() || !child.HasSignState() {
		return false
	}
	embedded := nt.IsEmbeddedSign() && ct.IsEmbeddedSign()

	code, known := ir.IgnoredSignCode, false
	if embedded && child.HasKnownOrAssumedSignCode() {
		known = child.HasKnownSignCode()
		if !n.HasKnownOrAssumedSignCode() || known && !n.HasKnownSignCode() {
			code = child.KnownOrAssumedSignCode()
		}
	}
	clean := ir.CleanUnknown
	if embedded && !ir.IsTruncating(n) && child.CleanState() > n.CleanState() {
		clean = child.CleanState()
	}
	nonNeg := child.IsNonNegative() && !n.IsNonNegative()
	nonPos := child.IsNonPositive() && !n.IsNonPositive()
	if code == ir.IgnoredSignCode && clean == ir.CleanUnknown && !nonNeg && !nonPos {
		return false
	}
	if !s.allow("propagateSignState", "propagate sign state of %v to %v", s.ref(child), s.ref(n)) {
		return false
	}
	if code != ir.IgnoredSignCode {
		n.SetKnownOrAssumedSignCode(code, known)
	}
	n.SetCleanState(clean)
	if nonNeg {
		n.SetNonNegative()
	}
	if nonPos {
		n.SetNonPositive()
	}
	return true
}

// propagateSignStateLeftShift propagates sign state through a modify
// precision, and through a left shift when the target keeps the sign
// nibble in place while shifting.
func (s *Simplifier) propagateSignStateLeftShift(n *ir.Node) bool {
	op := n.Op()
	if !n.Type().IsBCD() || op.IsSetSign() {
		return false
	}
	if !op.IsModifyPrecision() && !(op.IsLeftShift() && s.caps.SignThroughBCDLeftShift) {
		return false
	}
	return s.propagateSignState(n)
}

// trackSetSignValue records the constant sign of a set sign operation
// as its known sign code.
func (s *Simplifier) trackSetSignValue(n *ir.Node) {
	op := n.Op()
	if !op.IsSetSign() && !op.IsSetSignOnNode() || !n.Type().IsEmbeddedSign() || n.HasKnownSignCode() {
		return
	}
	code, ok := n.SetSign()
	if !ok || !ir.IsSupportedRawSign(code) {
		return
	}
	if !s.allow("trackSetSignValue", "record known sign 0x%x of %v", code, s.ref(n)) {
		return
	}
	n.ResetSignState()
	n.SetKnownSignCode(code)
}

// newSetSignVersion builds op, the set sign version of other, over src.
// The remaining children other than the sign come from other. It returns
// nil when op holds its sign in a child other cannot supply, or holds it
// on the node and the code is not a tracked raw code.
func newSetSignVersion(op ir.Op, other, src *ir.Node, code int) *ir.Node {
	var r *ir.Node
	if op.IsSetSignOnNode() {
		if !ir.IsSupportedRawSign(code) || other.NumChildren() != op.Arity() {
			return nil
		}
		children := append([]*ir.Node{src}, other.Children()[1:]...)
		r = ir.NewNode(op, children...)
		r.SetNodeSign(code)
	} else {
		i := op.SetSignValueIndex()
		if i < 1 || other.NumChildren() < i {
			return nil
		}
		children := []*ir.Node{src}
		children = append(children, other.Children()[1:i]...)
		children = append(children, ir.NewIconst(code))
		r = ir.NewNode(op, children...)
	}
	r.SetSourcePrecision(other.SourcePrecision())
	r.SetFraction(other.Fraction())
	return r
}

// canBuildSetSignVersion reports whether newSetSignVersion succeeds.
func canBuildSetSignVersion(op ir.Op, other *ir.Node, code int) bool {
	if op.IsSetSignOnNode() {
		return ir.IsSupportedRawSign(code) && other.NumChildren() == op.Arity()
	}
	i := op.SetSignValueIndex()
	return i >= 1 && other.NumChildren() >= i
}

// foldSetSignIntoNode folds the sign of a set sign into the set sign
// version of other, which is its parent when setSignIsChild and its
// child otherwise. With remove, the set sign disappears and the new node
// replaces the parent. Otherwise the set sign stays and the new node
// replaces other. It returns the node that replaces the parent.
//
//	pd2zdsls p=5                 pd2zdslsSetSign p=5
//	  pdSetSign p=5     =>         x p=5
//	    x p=5                      0x60
//	    0xd
func (s *Simplifier) foldSetSignIntoNode(setSign *ir.Node, setSignIsChild bool, other *ir.Node, remove bool) *ir.Node {
	parent := setSign
	if setSignIsChild {
		parent = other
	}
	if remove {
		if setSign.Op() != ir.SetSignOp(setSign.Type()) ||
			setSign.Op().IsShift() && other.Op().IsShift() ||
			ir.HasIntermediateTruncation(parent) {
			return parent
		}
	}
	op := other.Op().SetSignVersion()
	if op == ir.BadOp || !setSign.IsExclusive() || !other.IsExclusive() {
		return parent
	}
	code, ok := setSign.SetSign()
	if !ok || code == ir.IgnoredSignCode {
		return parent
	}
	if code, ok = ir.ConvertSignEncoding(setSign.Type(), other.Type(), code); !ok || !canBuildSetSignVersion(op, other, code) {
		return parent
	}
	if !s.allow("foldSetSignIntoNode", "fold sign 0x%x of %v into %v", code, s.ref(setSign), op) {
		return parent
	}

	src := other.Child(0)
	if setSignIsChild {
		src = setSign
		if remove {
			src = setSign.Child(0)
		}
	}
	r := newSetSignVersion(op, other, src, code)
	if remove {
		r.SetPrecision(parent.Precision())
		return s.simplify(r)
	}
	r.SetPrecision(other.Precision())
	if setSignIsChild {
		return r
	}
	parent.SetChild(0, s.simplify(r))
	return parent
}

// foldAndReplaceDominatedSetSign folds a set sign into the set sign
// version of other while keeping it, then makes the dominated sign of
// the child ignored so it is cheaper to evaluate.
//
//	pd2zdsls p=5                 pd2zdslsSetSign p=5
//	  pdshlSetSign p=5             pdshlSetSign p=5
//	    x p=3           =>           x p=3
//	    2                            2
//	    0xd                          -1
//	                               0x60
func (s *Simplifier) foldAndReplaceDominatedSetSign(setSign *ir.Node, setSignIsChild bool, other *ir.Node) *ir.Node {
	parent := setSign
	if setSignIsChild {
		parent = other
	}
	child := parent.Child(0)

	// An odd right shift that sets the sign over a left shift by one
	// lets the left shift set the sign in the digit it clears.
	newChildSign := ir.IgnoredSignCode
	if parent.Op().IsSetSign() && parent.Op().IsRightShift() && child.Op().IsLeftShift() {
		sign, signOK := parent.SetSign()
		k, kOK := parent.ShiftAmount()
		ck, ckOK := child.ShiftAmount()
		if signOK && kOK && ckOK && k%2 != 0 && ck == 1 {
			newChildSign = sign
		}
	}

	if !setSignIsChild && child.Op().SetSignVersion() == ir.BadOp && !child.Op().IsSetSign() {
		return parent
	}
	if setSignIsChild || child.Op().SetSignVersion() != ir.BadOp {
		parent = s.foldSetSignIntoNode(setSign, setSignIsChild, other, false)
		child = parent.Child(0)
	}
	if !parent.Op().IsSetSign() || !child.Op().IsSetSign() {
		return parent
	}
	if child.Op().IsConversion() && child.Child(0).Type().IsZonedSeparateSign() {
		// An ignored sign from a separate sign type still verifies the
		// input sign, which the folded sign lets it skip.
		return parent
	}
	if sign, ok := parent.SetSign(); !ok || sign == ir.IgnoredSignCode {
		return parent
	}
	i := child.Op().SetSignValueIndex()
	old, ok := child.ConstInt(i)
	if !child.IsExclusive() || !ok || old == newChildSign {
		return parent
	}
	if !s.allow("foldAndReplaceDominatedSetSign", "replace sign 0x%x of %v dominated by %v with %d",
		old, s.ref(child), s.ref(parent), newChildSign) {
		return parent
	}
	child.SetChild(i, ir.NewIconst(newChildSign))
	child.ResetSignState()
	return parent
}

// createSetSignForKnownSignChild makes a node over a child that always
// generates a clean plus sign into its set sign version, so the sign is
// set as part of the operation.
//
//	pdshl p=7                    pdshlSetSign p=7
//	  ud2pd p=5         =>         ud2pd p=5
//	    x p=5                        x p=5
//	  2                            2
//	                               0xc
func (s *Simplifier) createSetSignForKnownSignChild(n *ir.Node) *ir.Node {
	child := n.Child(0)
	if !n.IsExclusive() || !child.IsExclusive() || !child.Op().AlwaysGeneratesKnownPositiveCleanSign() {
		return n
	}
	if n.Op().IsShift() && child.Op().IsShift() {
		return n
	}
	op := n.Op().SetSignVersion()
	if op == ir.BadOp {
		return n
	}
	code, ok := ir.ConvertSignEncoding(child.Type(), n.Type(), ir.PreferredPlusCode)
	if !ok || !canBuildSetSignVersion(op, n, code) {
		return n
	}
	if !s.allow("createSetSignForKnownSignChild", "fold known plus sign of %v into %v", s.ref(child), op) {
		return n
	}
	r := newSetSignVersion(op, n, child, code)
	r.SetPrecision(n.Precision())
	return r
}

// foldSetSignIntoGrandChild moves the sign of a set sign into the set
// sign version of its grandchild, through a conversion between zoned and
// packed that keeps the sign nibble. A zone sign of 0xf is set entirely
// by the grandchild and the set sign is removed. Otherwise the
// grandchild is told its sign is ignored.
//
//	pdSetSign p=5                zd2pd p=5
//	  zd2pd p=5                    zdsle2zdSetSign p=5
//	    zdsle2zd p=5    =>           x p=5
//	      x p=5                      0xf
//	  0xf
func (s *Simplifier) foldSetSignIntoGrandChild(setSign *ir.Node) *ir.Node {
	child := setSign.Child(0)
	if !setSign.IsExclusive() || !child.IsExclusive() || child.Op() != ir.Zd2pd && child.Op() != ir.Pd2zd {
		return setSign
	}
	sign, ok := setSign.SetSign()
	if !ok || sign == ir.IgnoredSignCode {
		return setSign
	}
	grand := child.Child(0)
	op := grand.Op().SetSignVersion()
	if !grand.IsExclusive() || op == ir.BadOp || op.IsSetSignOnNode() {
		return setSign
	}
	newSign, remove := ir.IgnoredSignCode, false
	if setSign.Op() == ir.PdSetSign && sign == ir.ZonedValue {
		newSign, remove = ir.ZonedValue, true
	}
	if !canBuildSetSignVersion(op, grand, newSign) {
		return setSign
	}
	if !s.allow("foldSetSignIntoGrandChild", "fold sign of %v into grandchild %v", s.ref(setSign), s.ref(grand)) {
		return setSign
	}
	r := newSetSignVersion(op, grand, grand.Child(0), newSign)
	r.SetPrecision(grand.Precision())
	child.SetChild(0, s.simplify(r))
	child.ResetSignState()
	if !remove {
		return setSign
	}
	if setSign.Precision() < child.Precision() {
		child.SetPrecision(setSign.Precision())
	}
	return s.simplify(child)
}

// foldSetSignFromGrandChild moves the sign of a set sign grandchild up
// through a conversion between zoned and packed into the set sign
// version of the node.
//
//	pd2udsl p=5                  pd2udslSetSign p=5
//	  zd2pd p=5                    zd2pd p=5
//	    zdSetSign p=5   =>           zdSetSign p=5
//	      x p=5                        x p=5
//	      0xd                          -1
//	                               0x2d
func (s *Simplifier) foldSetSignFromGrandChild(n *ir.Node) *ir.Node {
	op := n.Op().SetSignVersion()
	if !n.IsExclusive() || op == ir.BadOp || op.SetSignValueIndex() != 1 {
		return n
	}
	child := n.Child(0)
	if !child.IsExclusive() || child.Op() != ir.Zd2pd && child.Op() != ir.Pd2zd {
		return n
	}
	grand := child.Child(0)
	if !grand.IsExclusive() || !grand.Op().IsSetSign() {
		return n
	}
	sign, ok := grand.SetSign()
	if !ok || sign == ir.IgnoredSignCode {
		return n
	}
	code, ok := ir.ConvertSignEncoding(grand.Type(), n.Type(), sign)
	if !ok {
		return n
	}
	remove := grand.Op() == ir.SetSignOp(grand.Type())
	if remove && !canReplaceWithChild(grand, grand.Child(0), true) {
		return n
	}
	if !s.allow("foldSetSignFromGrandChild", "fold sign 0x%x of grandchild %v into %v", sign, s.ref(grand), op) {
		return n
	}
	if remove {
		child.SetChild(0, s.replaceWithChild(grand, grand.Child(0), true))
	} else {
		grand.SetChild(grand.Op().SetSignValueIndex(), ir.NewIconst(ir.IgnoredSignCode))
		grand.ResetSignState()
	}
	child.ResetSignState()
	r := ir.NewNode(op, child, ir.NewIconst(code))
	r.SetPrecision(n.Precision())
	r.SetSourcePrecision(n.SourcePrecision())
	r.SetFraction(n.Fraction())
	return r
}
