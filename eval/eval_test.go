package eval

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/shopspring/decimal"

	"github.com/andrewarchi/decsimp/ir"
	"github.com/andrewarchi/decsimp/syntax"
)

func run(t *testing.T, src string, mem *Memory) *Memory {
	t.Helper()
	b, err := syntax.ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := New(mem).Run(b); err != nil {
		t.Fatal(err)
	}
	return mem
}

func TestEvalStores(t *testing.T) {
	for i, test := range []struct {
		Src  string
		Set  map[string]string
		Sym  string
		Want string
	}{
		{`(pdstore y p=5 (pdshr p=5 (pdload x p=5) 2 5))`, map[string]string{"x": "12345"}, "y", "123"},
		{`(pdstore y p=5 (pdshr p=5 (pdload x p=5) 2 5))`, map[string]string{"x": "-12355"}, "y", "-124"},
		{`(pdstore y p=4 (pdshl p=4 (pdload x p=3) 2))`, map[string]string{"x": "123"}, "y", "2300"},
		{`(pdstore y p=6 (pdclear p=6 (pdload x p=6) 4 2))`, map[string]string{"x": "987654"}, "y", "980054"},
		{`(pdstore y p=3 (pdSetSign p=3 (pdload x p=3) 0xd))`, map[string]string{"x": "42"}, "y", "-42"},
		{`(pdstore y p=3 (pdneg p=3 (pdload x p=3)))`, map[string]string{"x": "-42"}, "y", "42"},
		{`(pdstore y p=5 (zdsls2pd p=5 (pd2zdsls p=5 (pdload x p=5))))`, map[string]string{"x": "-42"}, "y", "-42"},
		{`(pdstore y p=5 (zd2pd p=5 (zdsle2zd p=5 (zdsleload x p=5))))`, map[string]string{"x": "-7"}, "y", "-7"},
		{`(pdstore y p=4 (pdadd p=4 (pdload a p=3) (pdload b p=3)))`, map[string]string{"a": "999", "b": "2"}, "y", "1001"},
		{`(pdstore y p=2 (pdmul p=2 (pdload a p=3) (pdload b p=3)))`, map[string]string{"a": "-123", "b": "2"}, "y", "-46"},
		{`(pdstore y p=3 (pddiv p=3 (pdload a p=3) (pdload b p=3)))`, map[string]string{"a": "-7", "b": "2"}, "y", "-3"},
		{`(istore y (pd2i (i2pd p=3 (iload x))))`, map[string]string{"x": "-12345"}, "y", "-345"},
		{`(istore y (irem (iload x) 1000))`, map[string]string{"x": "-12345"}, "y", "-345"},
		{`(pdstore y p=5 (dd2pd p=5 (ddshrRounded (ddload a) 1 5)))`, map[string]string{"a": "125.7"}, "y", "13"},
		{`(pdstore y p=5 (dd2pd p=5 frac=2 (ddload a)))`, map[string]string{"a": "1.25"}, "y", "125"},
		{`(ddstore y (pd2dd frac=2 (pdload a p=5)))`, map[string]string{"a": "-125"}, "y", "-1.25"},
		{`(ddstore y (ddabs (pd2dd (pdload a p=5))))`, map[string]string{"a": "-125"}, "y", "125"},
		{`(ddstore y (ddModifyPrecision p=2 (ddload a)))`, map[string]string{"a": "-125"}, "y", "-25"},
		{`(pdstore y p=3 (ud2pd p=3 (pd2ud p=3 (pdload a p=3))))`, map[string]string{"a": "-125"}, "y", "125"},
		{`(istore y (ddcmplt (ddload a) (ddload b)))`, map[string]string{"a": "1", "b": "2"}, "y", "1"},
	} {
		mem := NewMemory()
		for sym, v := range test.Set {
			mem.Set(sym, decimal.RequireFromString(v))
		}
		run(t, test.Src, mem)
		got, err := mem.Number(test.Sym)
		if err != nil {
			t.Errorf("test %d: %v", i, err)
			continue
		}
		if want := decimal.RequireFromString(test.Want); !got.Equal(want) {
			t.Errorf("test %d: %s\ngot:  %v\nwant: %v", i, test.Src, got, want)
		}
	}
}

func TestCleanNegativeZero(t *testing.T) {
	mem := NewMemory()
	mem.Set("x", decimal.NewFromInt(-12000))
	run(t, `(pdstore y p=3 (pdclean p=3 (pdload x p=5)))
(pdstore z p=3 (pdModifyPrecision p=3 (pdload x p=5)))
(pdstore w p=3 cleanstore (pdModifyPrecision p=3 (pdload x p=5)))
`, mem)
	for i, test := range []struct {
		Sym  string
		Sign int
	}{
		{"y", ir.PreferredPlusCode},
		{"z", ir.PreferredMinusCode},
		{"w", ir.PreferredPlusCode},
	} {
		v, err := mem.Load(test.Sym, ir.PackedDecimal, 3)
		if err != nil {
			t.Fatal(err)
		}
		if !v.Num.IsZero() || v.Sign != test.Sign {
			t.Errorf("test %d: got %v, want zero with sign 0x%x", i, v, test.Sign)
		}
	}
}

func TestSharedNodeEvaluatedOnce(t *testing.T) {
	mem := NewMemory()
	mem.Set("x", decimal.NewFromInt(7))
	run(t, `(pdstore y p=3 @x(pdload x p=3))
(pdstore x p=3 (pdconst 5))
(pdstore z p=3 @x)
`, mem)
	for i, test := range []struct {
		Sym  string
		Want int64
	}{
		{"x", 5},
		{"y", 7},
		{"z", 7},
	} {
		got, err := mem.Number(test.Sym)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(decimal.NewFromInt(test.Want)) {
			t.Errorf("test %d: %s = %v, want %d", i, test.Sym, got, test.Want)
		}
	}
}

func TestSetBCD(t *testing.T) {
	mem := NewMemory()
	if err := mem.SetBCD("x", ir.PackedDecimal, 3, decimal.NewFromInt(42), 0xf); err != nil {
		t.Fatal(err)
	}
	v, err := mem.Load("x", ir.PackedDecimal, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := Value{Type: ir.PackedDecimal, Num: decimal.NewFromInt(42), Sign: 0xf}
	if !v.Num.Equal(want.Num) || v.Sign != want.Sign || v.Type != want.Type {
		t.Errorf("got %s\nwant %s", spew.Sdump(v), spew.Sdump(want))
	}
	if _, err := mem.Load("x", ir.ZonedDecimal, 3); err == nil {
		t.Error("loading a packed cell as zoned succeeded")
	}
}

func TestEvalErrors(t *testing.T) {
	for i, test := range []struct {
		Src, Err string
	}{
		{`(pdstore y p=3 (pdload x p=3))`, `unbound symbol "x"`},
		{`(pdstore y p=3 (pddiv p=3 (pdconst 1) (pdconst 0)))`, "division by zero"},
		{`(pdstore y p=3 (pdshl p=3 (pdconst 1) (iload k)))`, `unbound symbol "k"`},
		{`(istore y (iload x))`, `unbound symbol "x"`},
	} {
		b, err := syntax.ParseString(test.Src)
		if err != nil {
			t.Fatalf("test %d: %v", i, err)
		}
		err = New(NewMemory()).Run(b)
		if err == nil || !strings.Contains(err.Error(), test.Err) {
			t.Errorf("test %d: got error %v, want %q", i, err, test.Err)
		}
	}
}
