package ir

import "testing"

func TestReleaseAndRevive(t *testing.T) {
	x := NewLoad(Pdload, "x", 5)
	clean := NewNode(Pdclean, x)
	clean.SetPrecision(5)
	store := NewStore(Pdstore, "y", 5, clean)
	b := NewBlock(store)

	if x.RefCount() != 1 || clean.RefCount() != 1 || store.RefCount() != 1 {
		t.Fatalf("got ref counts %d %d %d, want 1 1 1", x.RefCount(), clean.RefCount(), store.RefCount())
	}

	// Moving the grandchild up releases the clean and its use of x.
	store.SetChild(0, x)
	if clean.RefCount() != 0 || x.RefCount() != 1 {
		t.Errorf("got ref counts clean=%d x=%d, want 0 1", clean.RefCount(), x.RefCount())
	}
	if !clean.released {
		t.Error("clean is not released")
	}

	// Referring to the clean again restores its use of x.
	store.SetChild(0, clean)
	if clean.RefCount() != 1 || x.RefCount() != 1 || clean.released {
		t.Errorf("got ref counts clean=%d x=%d released=%t, want 1 1 false", clean.RefCount(), x.RefCount(), clean.released)
	}
	if err := Verify(b); err != nil {
		t.Error(err)
	}
}

func TestReleaseRecursive(t *testing.T) {
	x := NewLoad(Zdload, "x", 5)
	conv := NewNode(Zd2pd, x)
	conv.SetPrecision(5)
	shl := NewNode(Pdshl, conv, NewIconst(2))
	shl.SetPrecision(7)
	b := NewBlock(NewStore(Pdstore, "y", 7, shl), NewStore(Zdstore, "z", 5, x))

	if x.RefCount() != 2 {
		t.Fatalf("got x ref count %d, want 2", x.RefCount())
	}
	b.Stmts[0].Root().SetChild(0, NewNode(Pdconst))
	if shl.RefCount() != 0 || conv.RefCount() != 0 || x.RefCount() != 1 {
		t.Errorf("got ref counts shl=%d conv=%d x=%d, want 0 0 1", shl.RefCount(), conv.RefCount(), x.RefCount())
	}
}

func TestMakeMutable(t *testing.T) {
	x := NewLoad(Pdload, "x", 5)
	neg := NewNode(Pdneg, x)
	neg.SetPrecision(5)
	NewBlock(NewStore(Pdstore, "a", 5, neg), NewStore(Pdstore, "b", 5, neg))

	if MakeMutable(x) != x {
		t.Error("exclusive node was cloned")
	}
	clone := MakeMutable(neg)
	if clone == neg {
		t.Fatal("shared node was not cloned")
	}
	if clone.Child(0) != x || x.RefCount() != 2 || clone.Precision() != 5 {
		t.Errorf("got clone child %v with x ref count %d and precision %d", clone.Child(0), x.RefCount(), clone.Precision())
	}
}

func TestSetPrecisionShared(t *testing.T) {
	x := NewLoad(Pdload, "x", 5)
	NewBlock(NewStore(Pdstore, "a", 5, x), NewStore(Pdstore, "b", 5, x))
	defer func() {
		if recover() == nil {
			t.Error("setting the precision of a shared node did not panic")
		}
	}()
	x.SetPrecision(4)
}

func TestRecreate(t *testing.T) {
	a := NewLoad(Pdload, "a", 3)
	b := NewLoad(Pdload, "b", 4)
	add := NewNode(Pdadd, a, b)
	add.SetPrecision(14)
	add.SetNonNegative()
	NewBlock(NewStore(Pdstore, "c", 14, add))

	inner := NewNode(Pdadd, a, b)
	inner.SetPrecision(5)
	add.Recreate(PdModifyPrecision, inner)
	if add.Op() != PdModifyPrecision || add.Child(0) != inner || add.Precision() != 14 || !add.IsNonNegative() {
		t.Errorf("got %v", add)
	}
	if a.RefCount() != 1 || b.RefCount() != 1 || inner.RefCount() != 1 {
		t.Errorf("got ref counts a=%d b=%d inner=%d, want 1 1 1", a.RefCount(), b.RefCount(), inner.RefCount())
	}
}

func TestSignState(t *testing.T) {
	n := NewLoad(Pdload, "x", 5)
	n.SetAssumedSignCode(0xf)
	if n.AssumedSignCode() != 0xf || n.HasKnownSignCode() || n.IsNonNegative() {
		t.Errorf("assumed 0xf: got %v", n.sign)
	}
	n.SetKnownSignCode(0xc)
	if n.KnownSignCode() != 0xc || !n.HasKnownCleanSign() || !n.IsNonNegative() {
		t.Errorf("known 0xc: got %v", n.sign)
	}
	n.SetAssumedSignCode(0xd)
	if n.KnownSignCode() != 0xc {
		t.Errorf("assumed code replaced known code: got %v", n.sign)
	}
	n.SetCleanState(CleanAssumed)
	if !n.HasKnownCleanSign() {
		t.Error("clean state was lowered")
	}
	n.ResetSignState()
	if n.HasSignState() {
		t.Errorf("reset: got %v", n.sign)
	}

	m := NewLoad(Dload, "d", 0)
	defer func() {
		if recover() == nil {
			t.Error("setting a sign code on a binary node did not panic")
		}
	}()
	m.SetKnownSignCode(0xc)
}

func TestSize(t *testing.T) {
	for i, test := range []struct {
		Op   Op
		Prec int
		Want int
	}{
		{Pdload, 5, 3},
		{Pdload, 6, 4},
		{Zdload, 5, 5},
		{Zdslsload, 5, 6},
		{Udload, 5, 10},
		{Udstload, 5, 12},
		{Ddload, 16, 8},
	} {
		n := NewLoad(test.Op, "x", test.Prec)
		if got := n.Size(); got != test.Want {
			t.Errorf("test %d: got size %d, want %d", i, got, test.Want)
		}
	}
}
