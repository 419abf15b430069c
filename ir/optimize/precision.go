package optimize

import "github.com/andrewarchi/decsimp/ir"

// removeOperandWidening removes a child of n that only pads its own
// child with leading zeros and returns the new child.
func (s *Simplifier) removeOperandWidening(n *ir.Node, i int) *ir.Node {
	child := n.Child(i)
	if s.caps.KeepBCDWidening || !child.Type().IsBCD() || !ir.IsSimpleWidening(child) {
		return child
	}
	if !s.allow("removeOperandWidening", "remove widening %v under %v", s.ref(child), s.ref(n)) {
		return child
	}
	n.SetChild(i, child.Child(0))
	return n.Child(i)
}

// removeShiftTruncationForConversionParent delays the truncation of a
// packed shift, possibly below a clean, to the conversion above it that
// truncates to the same precision anyway.
//
//	pd2zd p=3                    pd2zd p=3
//	  pdshl p=3         =>         pdshl p=7
//	    x p=5                        x p=5
//	    2                            2
func (s *Simplifier) removeShiftTruncationForConversionParent(conv *ir.Node) *ir.Node {
	child := conv.Child(0)
	if !child.IsExclusive() {
		return child
	}
	var clean, shift *ir.Node
	switch {
	case child.Op() == ir.Pdclean && child.Child(0).IsExclusive() && child.Child(0).Op().IsPackedShift():
		clean, shift = child, child.Child(0)
	case child.Op().IsPackedShift():
		shift = child
	default:
		return child
	}
	if conv.Precision() != shift.Precision() || clean != nil && clean.Precision() < shift.Precision() {
		return child
	}
	if _, ok := shift.ShiftAmount(); !ok {
		return child
	}
	shifted := shift.Child(0).Precision() + shift.DecimalAdjust()
	if shifted > ir.MaxPackedPrecision || shifted <= conv.Precision() {
		return child
	}
	if !s.allow("removeShiftTruncationForConversionParent", "delay truncation of %v until %v by raising precision %d to %d",
		s.ref(shift), s.ref(conv), shift.Precision(), shifted) {
		return child
	}
	if clean != nil {
		clean.SetPrecision(shifted)
	}
	shift.SetPrecision(shifted)
	conv.SetChild(0, s.simplify(child))
	return conv.Child(0)
}

// propagateTruncationToConversionChild reduces the precision of a zoned
// or Unicode conversion child to the digits that survive a truncating
// shift or modify precision above it. The full byte types truncate more
// cheaply than packed.
func (s *Simplifier) propagateTruncationToConversionChild(n *ir.Node) *ir.Node {
	child := n.Child(0)
	shift := 0
	if n.Op().IsShift() {
		if _, ok := n.ShiftAmount(); !ok {
			return child
		}
		shift = n.DecimalAdjust()
	}
	if !child.IsExclusive() || !child.Op().IsConversion() {
		return child
	}
	src := child.Child(0).Type()
	if !src.IsAnyZoned() && !src.IsAnyUnicode() {
		return child
	}
	if n.Precision() >= child.Precision()+shift {
		return child
	}
	surviving := ir.SurvivingDigits(n)
	if surviving <= 0 {
		return child
	}
	if !s.allow("propagateTruncationToConversionChild", "reduce %v precision to %d under truncating %v",
		s.ref(child), surviving, s.ref(n)) {
		return child
	}
	child.SetPrecision(surviving)
	child.ResetSignState()
	n.SetChild(0, s.simplify(child))
	return n.Child(0)
}

// flipCleanAndShift moves a clean below the even left shift it cleans,
// where it may initialize and clean in one step.
//
//	pdclean p=9                  pdshl p=9
//	  pdshl p=9         =>         pdclean p=9
//	    x p=5                        x p=5
//	    4                          4
func (s *Simplifier) flipCleanAndShift(clean *ir.Node) *ir.Node {
	if clean.Op() != ir.Pdclean || clean.Child(0).Op() != ir.Pdshl {
		return clean
	}
	shl := clean.Child(0)
	x := shl.Child(0)
	k, ok := shl.ShiftAmount()
	if !ok || x.Op().IsConversion() || k%2 != 0 {
		return clean
	}
	shifted := k + x.Precision()
	if shl.Precision() < shifted || clean.Precision() < shifted {
		return clean
	}
	if !s.allow("flipCleanAndShift", "move %v below %v", s.ref(clean), s.ref(shl)) {
		return clean
	}
	newClean := ir.NewNode(ir.Pdclean, x)
	newClean.SetPrecision(clean.Precision())
	clean.Recreate(ir.Pdshl, newClean, shl.Child(1))
	clean.SetChild(0, s.simplify(newClean))
	return s.simplify(clean)
}
