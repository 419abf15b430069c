// Package ir implements the decimal expression tree: reference counted
// nodes, the opcode table, decimal precision, and sign state.
//
// Nodes are shared among all parents that refer to them. A node may be
// changed in place only while it has at most one use; otherwise a new
// node is built and the old one released by its user.
package ir // import "github.com/andrewarchi/decsimp/ir"

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Node is an operation in an expression tree.
type Node struct {
	op       Op
	uses     []*Use
	released bool
	userBase

	prec    int
	srcPrec int
	frac    int
	setSign int // sign of set sign on node ops

	sym string
	val int64
	dec decimal.Decimal

	sign signState
}

// CleanState is how much is known about a node having a clean sign.
type CleanState uint8

// Clean sign states.
const (
	CleanUnknown CleanState = iota
	CleanAssumed
	CleanKnown
)

type signState struct {
	raw        RawSign
	known      bool
	clean      CleanState
	nonNeg     bool
	nonPos     bool
	cleanStore bool
}

// NewNode constructs a node with the given children. The number of
// children must match the arity of the op.
func NewNode(op Op, children ...*Node) *Node {
	if op <= BadOp || op >= numOps {
		panic(fmt.Sprintf("ir: invalid op %d", op))
	}
	if len(children) != op.Arity() {
		panic(fmt.Sprintf("ir: %v takes %d children, got %d", op, op.Arity(), len(children)))
	}
	n := &Node{op: op, setSign: IgnoredSignCode}
	t := op.Type()
	if op.IsStore() {
		t = op.SourceType()
	}
	if t.IsDFP() {
		n.prec = t.MaxPrecision()
	}
	n.initOperands(n, children...)
	return n
}

// NewIconst constructs a 32-bit integer constant.
func NewIconst(v int) *Node {
	n := NewNode(Iconst)
	n.val = int64(v)
	return n
}

// NewLconst constructs a 64-bit integer constant.
func NewLconst(v int64) *Node {
	n := NewNode(Lconst)
	n.val = v
	return n
}

// NewDecimalConst constructs a packed or DFP constant. A packed constant
// has the precision of its digits and a DFP constant that of its type.
func NewDecimalConst(op Op, d decimal.Decimal) *Node {
	if !op.IsLoadConst() || op.Type().IsIntegral() {
		panic(fmt.Sprintf("ir: %v is not a decimal constant", op))
	}
	n := NewNode(op)
	n.dec = d
	if op == Pdconst {
		n.prec = DigitCount(d)
	}
	return n
}

// NewLoad constructs a load of a symbol. A zero precision keeps the
// default of the type.
func NewLoad(op Op, sym string, prec int) *Node {
	if !op.IsLoad() {
		panic(fmt.Sprintf("ir: %v is not a load", op))
	}
	n := NewNode(op)
	n.sym = sym
	if prec > 0 {
		n.prec = prec
	}
	return n
}

// NewStore constructs a store of value to a symbol.
func NewStore(op Op, sym string, prec int, value *Node) *Node {
	if !op.IsStore() {
		panic(fmt.Sprintf("ir: %v is not a store", op))
	}
	n := NewNode(op, value)
	n.sym = sym
	if prec > 0 {
		n.prec = prec
	}
	return n
}

// DigitCount returns the number of significant digits of d: the digits
// of its coefficient and the zeros of a positive exponent.
func DigitCount(d decimal.Decimal) int {
	c := d.Coefficient()
	c.Abs(c)
	digits := len(c.String())
	if exp := int(d.Exponent()); exp > 0 && c.Sign() != 0 {
		digits += exp
	}
	return digits
}

// Clone constructs an exclusive copy of the node that shares its
// children.
func (n *Node) Clone() *Node {
	c := NewNode(n.op, n.Children()...)
	c.prec, c.srcPrec, c.frac, c.setSign = n.prec, n.srcPrec, n.frac, n.setSign
	c.sym, c.val, c.dec = n.sym, n.val, n.dec
	c.sign = n.sign
	return c
}

// MakeMutable returns the node when it may be changed in place and an
// exclusive clone otherwise. The caller stores the clone in place of the
// node, which releases the original's use.
func MakeMutable(n *Node) *Node {
	if n.IsExclusive() {
		return n
	}
	return n.Clone()
}

// Recreate changes the op and children of the node in place, keeping
// its precision and sign state. It is legal on a shared node only when
// the new operation computes the same value.
func (n *Node) Recreate(op Op, children ...*Node) {
	if len(children) != op.Arity() {
		panic(fmt.Sprintf("ir: %v takes %d children, got %d", op, op.Arity(), len(children)))
	}
	old := n.operands
	n.op = op
	if n.released {
		n.operands = make([]*Use, len(children))
		for i, c := range children {
			n.operands[i] = &Use{c, n, i}
		}
		return
	}
	n.initOperands(n, children...)
	for _, operand := range old {
		operand.setDef(nil)
	}
}

// Op returns the operation of the node.
func (n *Node) Op() Op { return n.op }

// Type returns the result type of the node.
func (n *Node) Type() DataType { return n.op.Type() }

// Uses returns the operand slots referring to this node.
func (n *Node) Uses() []*Use { return n.uses }

// RefCount returns the number of tree positions referring to the node.
func (n *Node) RefCount() int { return len(n.uses) }

// IsExclusive returns whether the node may be changed in place: it has at
// most one user.
func (n *Node) IsExclusive() bool { return len(n.uses) <= 1 }

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.operands) }

// Child returns the ith child.
func (n *Node) Child(i int) *Node { return n.operands[i].def }

// Children returns the children in order.
func (n *Node) Children() []*Node {
	children := make([]*Node, len(n.operands))
	for i, operand := range n.operands {
		children[i] = operand.def
	}
	return children
}

// SetChild stores c as the ith child and releases the previous child.
func (n *Node) SetChild(i int, c *Node) { n.SetOperand(i, c) }

// SetOperand sets the specified operand. A released node refers to its
// new child without holding a use of it.
func (n *Node) SetOperand(i int, c *Node) {
	if n.released {
		n.operands[i].def = c
		return
	}
	n.userBase.SetOperand(i, c)
}

// UsesNode returns whether a child of the node is def.
func (n *Node) UsesNode(def *Node) bool { return n.usesNode(def) }

// Precision returns the decimal precision.
func (n *Node) Precision() int { return n.prec }

// SetPrecision sets the decimal precision. Changing the precision of a
// node shared by multiple users would change the value seen by the
// others and is fatal.
func (n *Node) SetPrecision(p int) {
	if p == n.prec {
		return
	}
	if !n.IsExclusive() {
		panic(fmt.Sprintf("ir: set precision of %v with %d uses", n.op, len(n.uses)))
	}
	n.prec = p
}

// SourcePrecision returns the precision of the binary source of a
// conversion, or 0 when none is recorded.
func (n *Node) SourcePrecision() int { return n.srcPrec }

// HasSourcePrecision returns whether a source precision is recorded.
func (n *Node) HasSourcePrecision() bool { return n.srcPrec > 0 }

// SetSourcePrecision sets the source precision.
func (n *Node) SetSourcePrecision(p int) { n.srcPrec = p }

// Fraction returns the number of fractional digits.
func (n *Node) Fraction() int { return n.frac }

// SetFraction sets the number of fractional digits.
func (n *Node) SetFraction(f int) { n.frac = f }

// Symbol returns the symbol of a load or store.
func (n *Node) Symbol() string { return n.sym }

// Int returns the value of an integer constant.
func (n *Node) Int() int64 { return n.val }

// Decimal returns the value of a decimal constant.
func (n *Node) Decimal() decimal.Decimal { return n.dec }

// IsIntConst returns whether the node is an integer constant.
func (n *Node) IsIntConst() bool { return n.op == Iconst || n.op == Lconst }

// ConstInt returns the value of the ith child when it is an integer
// constant.
func (n *Node) ConstInt(i int) (int, bool) {
	c := n.Child(i)
	if !c.IsIntConst() {
		return 0, false
	}
	return int(c.val), true
}

// SetSign returns the sign code set by the node. ok is false when the
// op does not set the sign or the sign is not a constant.
func (n *Node) SetSign() (code int, ok bool) {
	if n.op.IsSetSignOnNode() {
		return n.setSign, true
	}
	if i := n.op.SetSignValueIndex(); i >= 0 {
		return n.ConstInt(i)
	}
	return IgnoredSignCode, false
}

// SetNodeSign sets the sign of a set sign on node op.
func (n *Node) SetNodeSign(code int) {
	if !n.op.IsSetSignOnNode() {
		panic(fmt.Sprintf("ir: %v does not hold a sign", n.op))
	}
	n.setSign = code
}

// ShiftAmount returns the constant shift amount of a shift.
func (n *Node) ShiftAmount() (int, bool) {
	if !n.op.IsShift() {
		return 0, false
	}
	return n.ConstInt(1)
}

// DecimalAdjust returns the number of digits a constant shift moves the
// value: positive for left shifts and negative for right shifts.
func (n *Node) DecimalAdjust() int {
	k, ok := n.ShiftAmount()
	if !ok {
		return 0
	}
	if n.op.IsRightShift() {
		return -k
	}
	return k
}

// DecimalRound returns the constant round amount of a right shift.
func (n *Node) DecimalRound() int {
	if !n.op.IsRightShift() || n.NumChildren() < 3 {
		return 0
	}
	r, _ := n.ConstInt(2)
	return r
}

// Size returns the number of bytes the value occupies.
func (n *Node) Size() int {
	t := n.Type()
	switch {
	case t == PackedDecimal:
		return n.prec/2 + 1
	case t.IsAnyZoned():
		if t.IsZonedSeparateSign() {
			return n.prec + 1
		}
		return n.prec
	case t.IsAnyUnicode():
		if t.IsUnicodeSeparateSign() {
			return 2*n.prec + 2
		}
		return 2 * n.prec
	case t == Int32, t == Float, t == DecimalFloat:
		return 4
	case t == Int64, t == Double, t == DecimalDouble:
		return 8
	case t == DecimalLongDouble:
		return 16
	}
	return 0
}

// IsEvenPrecision returns whether a packed node has an even precision,
// leaving a spare high nibble.
func (n *Node) IsEvenPrecision() bool { return n.prec%2 == 0 }

// KnownSignCode returns the known raw sign code, or IgnoredSignCode.
func (n *Node) KnownSignCode() int {
	if !n.sign.known {
		return IgnoredSignCode
	}
	return n.sign.raw.Value()
}

// AssumedSignCode returns the assumed raw sign code, or IgnoredSignCode.
func (n *Node) AssumedSignCode() int {
	if n.sign.known {
		return IgnoredSignCode
	}
	return n.sign.raw.Value()
}

// KnownOrAssumedSignCode returns the known or assumed raw sign code, or
// IgnoredSignCode.
func (n *Node) KnownOrAssumedSignCode() int { return n.sign.raw.Value() }

// HasKnownSignCode returns whether the raw sign code is known.
func (n *Node) HasKnownSignCode() bool { return n.KnownSignCode() != IgnoredSignCode }

// HasKnownOrAssumedSignCode returns whether a raw sign code is known or
// assumed.
func (n *Node) HasKnownOrAssumedSignCode() bool { return n.sign.raw != SignUnknown }

// SetKnownSignCode records that every value of the node has the code.
func (n *Node) SetKnownSignCode(code int) { n.SetKnownOrAssumedSignCode(code, true) }

// SetAssumedSignCode records that the node may be treated as having the
// code.
func (n *Node) SetAssumedSignCode(code int) { n.SetKnownOrAssumedSignCode(code, false) }

// SetKnownOrAssumedSignCode records a known or assumed raw sign code. An
// assumed code never replaces a known one.
func (n *Node) SetKnownOrAssumedSignCode(code int, known bool) {
	if !n.Type().IsEmbeddedSign() {
		panic(fmt.Sprintf("ir: %v has no embedded sign", n.op))
	}
	raw := SupportedRawSign(code)
	if raw == SignUnknown {
		panic(fmt.Sprintf("ir: unsupported raw sign 0x%x", code))
	}
	if n.sign.known && !known {
		return
	}
	n.sign.raw = raw
	n.sign.known = known
	if raw == Sign0xC {
		if known {
			n.sign.clean = CleanKnown
		} else if n.sign.clean == CleanUnknown {
			n.sign.clean = CleanAssumed
		}
	}
	if known {
		switch EmbeddedPolarity(code) {
		case Plus, Unsigned:
			n.sign.nonNeg = true
		case Minus:
			n.sign.nonPos = true
		}
	}
}

// CleanState returns what is known about the sign being clean.
func (n *Node) CleanState() CleanState { return n.sign.clean }

// HasKnownCleanSign returns whether the sign is known to be clean.
func (n *Node) HasKnownCleanSign() bool { return n.sign.clean == CleanKnown }

// HasAssumedCleanSign returns whether the sign is assumed to be clean.
func (n *Node) HasAssumedCleanSign() bool { return n.sign.clean == CleanAssumed }

// HasKnownOrAssumedCleanSign returns whether the sign is known or
// assumed to be clean.
func (n *Node) HasKnownOrAssumedCleanSign() bool { return n.sign.clean != CleanUnknown }

// SetCleanState raises the clean sign state. It never lowers it.
func (n *Node) SetCleanState(s CleanState) {
	if s > n.sign.clean {
		n.sign.clean = s
	}
}

// IsNonNegative returns whether the value is never negative.
func (n *Node) IsNonNegative() bool { return n.sign.nonNeg }

// SetNonNegative records that the value is never negative.
func (n *Node) SetNonNegative() { n.sign.nonNeg = true }

// IsNonPositive returns whether the value is never positive.
func (n *Node) IsNonPositive() bool { return n.sign.nonPos }

// SetNonPositive records that the value is never positive.
func (n *Node) SetNonPositive() { n.sign.nonPos = true }

// CleanSignInStore returns whether a store cleans the sign of the value
// it writes.
func (n *Node) CleanSignInStore() bool { return n.sign.cleanStore }

// SetCleanSignInStore marks a store as cleaning the sign.
func (n *Node) SetCleanSignInStore() {
	if !n.op.IsStore() {
		panic(fmt.Sprintf("ir: %v is not a store", n.op))
	}
	n.sign.cleanStore = true
}

// ResetSignState forgets all sign state of the node. It is only for
// nodes whose own operation or precision changed.
func (n *Node) ResetSignState() {
	cleanStore := n.sign.cleanStore
	n.sign = signState{cleanStore: cleanStore}
}

// HasSignState returns whether any sign state is recorded.
func (n *Node) HasSignState() bool {
	s := n.sign
	s.cleanStore = false
	return s != signState{}
}

func (n *Node) String() string {
	return NewFormatter().FormatNode(n)
}
