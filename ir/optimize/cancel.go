package optimize

import (
	"math"

	"github.com/andrewarchi/decsimp/ir"
)

// unaryCancel replaces a conversion of the inverse conversion of x with x
// and returns the replacement, or nil when the pair cannot cancel. The
// replacement keeps the precision and any sign the outer conversion
// always generates.
func (s *Simplifier) unaryCancel(n *ir.Node, inverse ir.Op) *ir.Node {
	child := n.Child(0)
	if inverse == ir.BadOp || child.Op() != inverse || !isLegalToUnaryCancel(n, child) {
		return nil
	}
	grand := child.Child(0)
	nt, gt := n.Type(), grand.Type()

	modPrec, dfpPrec := false, 0
	sign := ir.IgnoredSignCode
	if nt.IsBCD() && gt.IsBCD() {
		if n.Precision() != grand.Precision() {
			if ir.ModifyPrecisionOp(gt) == ir.BadOp {
				return nil
			}
			modPrec = true
		}
		if sign = n.Op().AlwaysGeneratedSign(); sign != ir.IgnoredSignCode && ir.SetSignOp(gt) == ir.BadOp {
			return nil
		}
	} else if nt.IsDFP() && child.Type().IsBCD() {
		nodeP := nt.MaxPrecision()
		grandP := nodeP
		if child.HasSourcePrecision() {
			grandP = child.SourcePrecision()
		}
		if childP := child.Precision(); childP < nodeP && childP < grandP {
			dfpPrec = childP
		}
	}

	if !s.allow("unaryCancel", "cancel %v with child %v", s.ref(n), s.ref(child)) {
		return nil
	}
	r := grand
	if modPrec {
		r = ir.NewNode(ir.ModifyPrecisionOp(gt), r)
		r.SetPrecision(n.Precision())
	}
	if sign != ir.IgnoredSignCode {
		prec := r.Precision()
		r = ir.NewNode(ir.SetSignOp(gt), r, ir.NewIconst(sign))
		r.SetPrecision(prec)
	}
	if dfpPrec != 0 {
		r = ir.NewNode(ir.ModifyPrecisionOp(gt), r)
		r.SetPrecision(dfpPrec)
	}
	return r
}

// isLegalToUnaryCancel returns whether cancelling n with its inverse
// child would keep every truncation of the pair.
func isLegalToUnaryCancel(n, child *ir.Node) bool {
	if n.Op().IsConversion() && child.Op().IsConversion() && n.Fraction() != child.Fraction() {
		// The digits the outer fraction introduces would be lost.
		return false
	}
	grand := child.Child(0)
	nt, ct, gt := n.Type(), child.Type(), grand.Type()
	switch {
	case nt.IsBCD() && ct.IsBCD() && gt.IsBCD():
		return !ir.HasIntermediateTruncation(n)
	case nt.IsBCD() && !ct.IsBCD():
		childP := ct.MaxPrecision()
		if n.HasSourcePrecision() {
			childP = n.SourcePrecision()
		}
		return !(childP < n.Precision() && childP < grand.Precision())
	case !nt.IsBCD() && !ct.IsBCD():
		return nt.MaxPrecision() <= ct.MaxPrecision()
	}
	return true
}

// cancelPackedToIntegralConversion cancels a packed to integer conversion
// of an integer to packed conversion. A conversion to fewer digits than
// the integer holds leaves a remainder by a power of ten.
func (s *Simplifier) cancelPackedToIntegralConversion(n *ir.Node, reverse ir.Op) *ir.Node {
	child := n.Child(0)
	if child.Op() != reverse {
		return nil
	}
	prec := child.Precision()
	r := s.unaryCancel(n, reverse)
	if r == nil || prec >= n.Type().MaxPrecision() {
		return r
	}
	return ir.NewNode(ir.RemOp(n.Type()), r, powerOfTenConst(n.Type(), prec))
}

// cancelDFPtoBCDtoBinaryConversion replaces a packed to integer
// conversion of DFP converted through one or two BCD conversions with a
// conversion straight from DFP. Set signs become abs and negate, and
// truncations become a remainder, all in binary except for a positive
// sign without truncation, which is done in DFP.
func (s *Simplifier) cancelDFPtoBCDtoBinaryConversion(n *ir.Node) *ir.Node {
	first := n.Child(0)
	if !first.Op().IsConversion() || !first.Type().IsBCD() {
		return nil
	}
	targetPrec := min(n.Type().MaxPrecision()-1, first.Precision())
	sourcePrec := math.MaxInt32
	var setSign *ir.Node
	if first.Op().IsSetSign() || first.Op().IsSetSignOnNode() {
		setSign = first
	}
	if first.HasSourcePrecision() {
		targetPrec = min(targetPrec, first.SourcePrecision())
		sourcePrec = first.SourcePrecision()
	}
	conv := first
	if c := first.Child(0); c.Op().IsConversion() && c.Type().IsBCD() {
		conv = c
		targetPrec = min(targetPrec, conv.Precision())
		// Without a source precision the inner conversion may truncate
		// any digit of its DFP source.
		sourcePrec = c.Child(0).Type().MaxPrecision()
		if conv.HasSourcePrecision() {
			targetPrec = min(targetPrec, conv.SourcePrecision())
			sourcePrec = conv.SourcePrecision()
		}
		if setSign == nil && (conv.Op().IsSetSign() || conv.Op().IsSetSignOnNode()) {
			setSign = conv
		}
	}
	src := conv.Child(0)
	if !src.Type().IsDFP() || conv.Fraction() != 0 {
		return nil
	}

	sign := ir.IgnoredSignCode
	if setSign != nil {
		code, ok := setSign.SetSign()
		if !ok || code == ir.IgnoredSignCode {
			return nil
		}
		if code, ok = ir.ConvertSignEncoding(setSign.Type(), ir.PackedDecimal, code); !ok || !ir.IsSupportedRawSign(code) {
			return nil
		}
		sign = code
	}
	truncating := sourcePrec > targetPrec
	intermediate := n.Type()
	if truncating {
		if intermediate = ir.IntegralTypeForPrecision(sourcePrec); intermediate == ir.NoType {
			return nil
		}
	}
	if !s.allow("cancelDFPtoBCDtoBinaryConversion", "fold %v with %v over DFP", s.ref(n), s.ref(conv)) {
		return nil
	}

	useDFPAbs := !(truncating && setSign != nil) && !s.caps.FastPackedDFP
	unsigned := n.Op().IsUnsigned()
	convert := func(x *ir.Node, t ir.DataType) *ir.Node {
		if x.Type() == t {
			return x
		}
		c := ir.NewNode(ir.ConversionOp(x.Type(), t, unsigned), x)
		if x.IsNonNegative() {
			c.SetNonNegative()
		}
		return c
	}
	r := src
	if setSign != nil {
		if useDFPAbs && sign != ir.PreferredMinusCode {
			r = ir.NewNode(ir.AbsOp(r.Type()), r)
		} else {
			r = convert(r, intermediate)
			r = ir.NewNode(ir.AbsOp(intermediate), r)
		}
		r.SetNonNegative()
	}
	if truncating {
		r = convert(r, intermediate)
		r = ir.NewNode(ir.RemOp(intermediate), r, powerOfTenConst(intermediate, targetPrec))
	}
	r = convert(r, n.Type())
	if sign == ir.PreferredMinusCode {
		r = ir.NewNode(ir.NegOp(r.Type()), r)
		r.SetNonPositive()
	}
	return r
}

// removeGrandChildClean removes a clean under a packed shift or modify
// precision child of a node that does not read the sign encoding.
func (s *Simplifier) removeGrandChildClean(n *ir.Node) {
	child := n.Child(0)
	if !child.IsExclusive() || !child.Op().IsPackedShift() && !child.Op().IsPackedModifyPrecision() {
		return
	}
	clean := child.Child(0)
	if clean.Op() != ir.Pdclean || !canReplaceWithChild(clean, clean.Child(0), true) {
		return
	}
	if !s.allow("removeGrandChildClean", "remove %v under %v and %v", s.ref(clean), s.ref(n), s.ref(child)) {
		return
	}
	child.SetChild(0, s.replaceWithChild(clean, clean.Child(0), true))
}

// powerOfTenConst returns 10^k as a constant of an integral type.
func powerOfTenConst(t ir.DataType, k int) *ir.Node {
	p := int64(1)
	for i := 0; i < k; i++ {
		p *= 10
	}
	if t == ir.Int64 {
		return ir.NewLconst(p)
	}
	return ir.NewIconst(int(p))
}
