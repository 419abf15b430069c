package ir

import "testing"

func shift(op Op, prec int, child *Node, k int, rest ...*Node) *Node {
	n := NewNode(op, append([]*Node{child, NewIconst(k)}, rest...)...)
	n.SetPrecision(prec)
	return n
}

func TestPrecisionQueries(t *testing.T) {
	x := func() *Node { return NewLoad(Pdload, "x", 5) }
	mod := func(p int) *Node {
		n := NewNode(PdModifyPrecision, x())
		n.SetPrecision(p)
		return n
	}
	for i, test := range []struct {
		Node               *Node
		Truncating         bool
		SimpleTrunc, Widen bool
		Surviving          int
	}{
		{shift(Pdshl, 8, x(), 3), false, false, false, 5},
		{shift(Pdshl, 7, x(), 3), true, false, false, 4},
		{shift(Pdshr, 2, x(), 3, NewIconst(0)), false, false, false, 5},
		{shift(Pdshr, 2, x(), 3, NewIconst(5)), true, false, false, 5},
		{shift(Pdshr, 1, x(), 3, NewIconst(0)), true, false, false, 4},
		{shift(Pdshl, 4, x(), 0), true, true, false, 4},
		{mod(3), true, true, false, 3},
		{mod(5), false, false, true, 5},
		{mod(9), false, false, true, 9},
	} {
		n := test.Node
		if got := IsTruncating(n); got != test.Truncating {
			t.Errorf("test %d: IsTruncating got %t", i, got)
		}
		if got := IsSimpleTruncation(n); got != test.SimpleTrunc {
			t.Errorf("test %d: IsSimpleTruncation got %t", i, got)
		}
		if got := IsSimpleWidening(n); got != test.Widen {
			t.Errorf("test %d: IsSimpleWidening got %t", i, got)
		}
		if n.Op().IsShift() {
			if got := SurvivingDigits(n); got != test.Surviving {
				t.Errorf("test %d: SurvivingDigits got %d, want %d", i, got, test.Surviving)
			}
		}
	}
}

func TestConversionTruncation(t *testing.T) {
	i2pd := NewNode(I2pd, NewLoad(Iload, "i", 0))
	i2pd.SetPrecision(10)
	if !IsTruncating(i2pd) {
		t.Error("i2pd without source precision is not truncating")
	}
	i2pd.SetSourcePrecision(8)
	if IsTruncating(i2pd) {
		t.Error("i2pd wider than its source precision is truncating")
	}

	dd2pd := NewNode(Dd2pd, NewLoad(Ddload, "d", 16))
	dd2pd.SetPrecision(16)
	if IsTruncating(dd2pd) {
		t.Error("dd2pd of full precision is truncating")
	}
	dd2pd.SetPrecision(9)
	if !IsTruncating(dd2pd) {
		t.Error("dd2pd to 9 digits is not truncating")
	}

	trunc := NewNode(PdModifyPrecision, NewLoad(Pdload, "x", 9))
	trunc.SetPrecision(4)
	outer := NewNode(PdModifyPrecision, trunc)
	outer.SetPrecision(9)
	if !HasIntermediateTruncation(outer) {
		t.Error("widening over a truncation has no intermediate truncation")
	}
	outer.SetPrecision(3)
	if HasIntermediateTruncation(outer) {
		t.Error("narrower truncation over a truncation has an intermediate truncation")
	}
}

func TestArithmeticPrecision(t *testing.T) {
	a, b := NewLoad(Pdload, "a", 3), NewLoad(Pdload, "b", 4)
	for i, test := range []struct {
		Op   Op
		Want int
	}{
		{Pdadd, 5},
		{Pdsub, 5},
		{Pdmul, 7},
		{Pddiv, 3},
	} {
		n := NewNode(test.Op, a, b)
		n.SetPrecision(14)
		if got := ArithmeticPrecision(n); got != test.Want {
			t.Errorf("test %d: got %d, want %d", i, got, test.Want)
		}
	}
}

func TestCanRemoveArithmeticOperand(t *testing.T) {
	x := NewLoad(Pdload, "x", 5)
	x.SetNonNegative()
	clean := NewNode(Pdclean, x)
	clean.SetPrecision(5)
	plus := NewNode(PdSetSign, x, NewIconst(0xc))
	plus.SetPrecision(5)
	plus.SetNonNegative()
	minus := NewNode(PdSetSign, x, NewIconst(0xd))
	minus.SetPrecision(5)
	minus.SetNonPositive()
	for i, test := range []struct {
		Operand      *Node
		KeepWidening bool
		Want         bool
	}{
		{clean, false, true},
		{clean, true, false},
		{plus, false, true},
		{minus, false, false},
		{x, false, false},
	} {
		if got := CanRemoveArithmeticOperand(test.Operand, test.KeepWidening); got != test.Want {
			t.Errorf("test %d: got %t, want %t", i, got, test.Want)
		}
	}
}
