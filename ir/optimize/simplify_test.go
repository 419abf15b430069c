package optimize

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/andrewarchi/decsimp/eval"
	"github.com/andrewarchi/decsimp/ir"
	"github.com/andrewarchi/decsimp/syntax"
)

type simplifyTest struct {
	Src, Want string
	Caps      Capabilities
	State     bool
}

// runSimplify parses src, simplifies it, verifies the result, and
// returns the simplified block with its formatting including sign state.
func runSimplify(t *testing.T, src string, opts ...Option) (*ir.Block, string, *Simplifier) {
	t.Helper()
	b, err := syntax.ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	s := New(opts...)
	s.SimplifyBlock(b)
	if err := ir.Verify(b); err != nil {
		t.Fatalf("simplified block: %v\n%s", err, ir.NewFormatter().FormatBlock(b))
	}
	f := ir.NewFormatter()
	f.State = true
	return b, f.FormatBlock(b), s
}

func checkSimplify(t *testing.T, tests []simplifyTest) {
	t.Helper()
	for i, test := range tests {
		b, err := syntax.ParseString(test.Src)
		if err != nil {
			t.Fatalf("test %d: %v", i, err)
		}
		New(WithCapabilities(test.Caps)).SimplifyBlock(b)
		if err := ir.Verify(b); err != nil {
			t.Errorf("test %d: %v", i, err)
			continue
		}
		f := ir.NewFormatter()
		f.State = test.State
		if got := f.FormatBlock(b); got != test.Want {
			diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        difflib.SplitLines(test.Want),
				B:        difflib.SplitLines(got),
				FromFile: "want",
				ToFile:   "got",
				Context:  2,
			})
			t.Errorf("test %d: simplify %s\n%s", i, test.Src, diff)
		}
	}
}

// checkSameStores evaluates src before and after simplification and
// compares the stored values.
func checkSameStores(t *testing.T, src string, caps Capabilities, inputs map[string]int64) {
	t.Helper()
	mem := eval.NewMemory()
	for sym, v := range inputs {
		mem.Set(sym, decimal.NewFromInt(v))
	}
	orig, err := syntax.ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	before := mem.Clone()
	if err := eval.New(before).Run(orig); err != nil {
		t.Fatal(err)
	}
	b, err := syntax.ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	New(WithCapabilities(caps)).SimplifyBlock(b)
	after := mem.Clone()
	if err := eval.New(after).Run(b); err != nil {
		t.Fatalf("%v\n%s", err, ir.NewFormatter().FormatBlock(b))
	}
	for _, sym := range before.Symbols() {
		x, errx := before.Number(sym)
		y, erry := after.Number(sym)
		if errx != nil || erry != nil || !x.Equal(y) {
			t.Errorf("%s with %v: %s = %v before and %v after\n%s", src, inputs, sym, x, y,
				ir.NewFormatter().FormatBlock(b))
		}
	}
}

func TestSimplifyConversions(t *testing.T) {
	checkSimplify(t, []simplifyTest{
		{
			Src:  `(pdstore y p=5 (zd2pd p=5 (pd2zd p=5 (pdload x p=5))))`,
			Want: "(pdstore y p=5 (pdload x p=5))\n",
		},
		{
			Src:  `(istore y (pd2i (i2pd p=5 (iload x))))`,
			Want: "(istore y (irem (iload x) 100000))\n",
		},
		{
			// Converting with a fraction scales the value, so the pair
			// does not cancel.
			Src:  `(pdstore y p=5 (zd2pd p=5 frac=1 (pd2zd p=5 (pdload x p=5))))`,
			Want: "(pdstore y p=5 (zd2pd p=5 frac=1 (pd2zd p=5 (pdload x p=5))))\n",
		},
	})
}

func TestSimplifyShifts(t *testing.T) {
	checkSimplify(t, []simplifyTest{
		{
			Src:  `(pdstore y p=3 (pdshr p=3 (pdshr p=5 (pdload x p=7) 2 0) 2 0))`,
			Want: "(pdstore y p=3 (pdshr p=3 (pdload x p=7) 4 0))\n",
		},
		{
			Src:  `(pdstore y p=7 (pdshl p=7 (pdshr p=5 (pdload x p=7) 2 0) 2))`,
			Want: "(pdstore y p=7 (pdshl p=7 (pdshr p=5 (pdload x p=7) 2 0) 2))\n",
		},
		{
			Src:  `(pdstore y p=7 (pdshl p=7 (pdshr p=5 (pdload x p=7) 2 0) 2))`,
			Want: "(pdstore y p=7 (pdclear p=7 (pdload x p=7) 2 2))\n",
			Caps: Capabilities{LastRun: true},
		},
		{
			Src:  `(pdstore y p=5 (pdSetSign p=5 (pdshl p=5 (pdload x p=3) 2) 0xd))`,
			Want: "(pdstore y p=5 (pdshlSetSign p=5 (pdload x p=3) 2 13))\n",
		},
	})
}

func TestSimplifySigns(t *testing.T) {
	checkSimplify(t, []simplifyTest{
		{
			Src:   `(pdstore y p=5 (pdclean p=5 (pdclean p=5 (pdload x p=5))))`,
			Want:  "(pdstore y p=5 cleanstore (pdload x p=5))\n",
			State: true,
		},
		{
			Src:  `(pdstore y p=5 (pdneg p=5 (pdneg p=5 (pdload x p=5))))`,
			Want: "(pdstore y p=5 (pdload x p=5))\n",
		},
		{
			Src:  `(pdstore y p=5 (pdneg p=5 (pdload x p=5 known=0xc)))`,
			Want: "(pdstore y p=5 (pdSetSign p=5 (pdload x p=5) 13))\n",
		},
		{
			Src:  `(ddstore y (ddabs (ddshl (ddSetNegative (ddload a)) 2)))`,
			Want: "(ddstore y (ddabs (ddshl (ddload a) 2)))\n",
		},
	})
}

func TestSimplifyPreservesValues(t *testing.T) {
	for i, test := range []struct {
		Src    string
		Caps   Capabilities
		Inputs []map[string]int64
	}{
		{
			Src:    `(pdstore y p=7 (pdshl p=7 (pdshr p=5 (pdload x p=7) 2 0) 2))`,
			Caps:   Capabilities{LastRun: true},
			Inputs: []map[string]int64{{"x": 1234567}, {"x": -1234567}, {"x": 99}},
		},
		{
			Src:    `(pdstore y p=3 (pdshr p=3 (pdshr p=5 (pdload x p=7) 2 0) 2 0))`,
			Inputs: []map[string]int64{{"x": 9876543}, {"x": -9876543}},
		},
		{
			Src:    `(istore y (pd2i (i2pd p=5 (iload x))))`,
			Inputs: []map[string]int64{{"x": 1234567}, {"x": -1234567}, {"x": 42}},
		},
		{
			Src:    `(pdstore y p=15 (pdadd p=15 (pdload a p=3) (pdload b p=3)))`,
			Inputs: []map[string]int64{{"a": 999, "b": 999}, {"a": -999, "b": 1}},
		},
		{
			Src:    `(pdstore y p=5 (pdSetSign p=5 (pdshl p=5 (pdload x p=3) 2) 0xd))`,
			Inputs: []map[string]int64{{"x": 123}, {"x": -5}},
		},
	} {
		for _, in := range test.Inputs {
			t.Logf("test %d", i)
			checkSameStores(t, test.Src, test.Caps, in)
		}
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	for i, src := range []string{
		`(pdstore y p=5 (pdclean p=5 (pdclean p=5 (pdload x p=5))))`,
		`(pdstore y p=15 (pdadd p=15 (pdload a p=3) (pdload b p=3)))`,
		`(pdstore y p=3 (pdshr p=3 (pdshr p=5 (pdload x p=7) 2 0) 2 0))`,
		`(pdstore y p=5 (pdSetSign p=5 (pdshl p=5 (pdload x p=3) 2) 0xd))`,
	} {
		_, first, _ := runSimplify(t, src)
		_, second, s := runSimplify(t, first)
		if second != first {
			t.Errorf("test %d: second simplification changed\n%s\nto\n%s", i, first, second)
		}
		if s.Seq() != 0 {
			t.Errorf("test %d: second simplification offered %d transformations", i, s.Seq())
		}
	}
}

func TestAnchorRemovedSharedNode(t *testing.T) {
	src := `(pdstore y p=5 (zd2pd p=5 @z(pd2zd p=5 (pdload x p=5))))
(zdstore w p=5 @z)
`
	want := `@1(pd2zd p=5 @2(pdload x p=5))
(pdstore y p=5 @2)
(zdstore w p=5 @1)
`
	b, got, _ := runSimplify(t, src)
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if len(b.Stmts) != 3 {
		t.Errorf("got %d statements, want 3", len(b.Stmts))
	}
	checkSameStores(t, src, Capabilities{}, map[string]int64{"x": -31})
}

func TestBisectGate(t *testing.T) {
	src := `(pdstore y p=5 (pdclean p=5 (pdclean p=5 (pdload x p=5))))`
	_, all, s := runSimplify(t, src)
	total := s.Seq()
	if total < 2 {
		t.Fatalf("got %d transformations, want at least 2", total)
	}

	_, none, _ := runSimplify(t, src, WithGate(BisectGate{Limit: 1}))
	if want := src + "\n"; none != want {
		t.Errorf("limit 1 changed the block:\n%s", none)
	}
	_, unlimited, _ := runSimplify(t, src, WithGate(BisectGate{Limit: -1}))
	if unlimited != all {
		t.Errorf("unlimited gate got:\n%s\nwant:\n%s", unlimited, all)
	}
	for limit := 1; limit <= total+1; limit++ {
		checkSameStoresGate(t, src, BisectGate{Limit: limit})
	}
}

func checkSameStoresGate(t *testing.T, src string, gate Gate) {
	t.Helper()
	b, err := syntax.ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	New(WithGate(gate)).SimplifyBlock(b)
	if err := ir.Verify(b); err != nil {
		t.Errorf("gate %+v: %v", gate, err)
	}
	mem := eval.NewMemory()
	mem.Set("x", decimal.NewFromInt(-120))
	if err := eval.New(mem).Run(b); err != nil {
		t.Fatal(err)
	}
	if y, err := mem.Number("y"); err != nil || !y.Equal(decimal.NewFromInt(-120)) {
		t.Errorf("gate %+v: y = %v, %v, want -120", gate, y, err)
	}
}

func TestTraceGate(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	gate := TraceGate{Gate: BisectGate{Limit: 2}, Logger: zap.New(core)}
	_, _, s := runSimplify(t, `(pdstore y p=5 (pdclean p=5 (pdclean p=5 (pdload x p=5))))`, WithGate(gate))

	entries := logs.FilterMessage("transformation").All()
	if len(entries) != s.Seq() {
		t.Fatalf("got %d entries, want %d", len(entries), s.Seq())
	}
	for i, e := range entries {
		fields := e.ContextMap()
		if seq := fields["seq"]; seq != int64(i+1) {
			t.Errorf("entry %d: got seq %v", i, seq)
		}
		if want := i+1 < 2; fields["allowed"] != want {
			t.Errorf("entry %d: got allowed %v, want %t", i, fields["allowed"], want)
		}
		if desc, _ := fields["desc"].(string); desc == "" {
			t.Errorf("entry %d: empty description", i)
		}
	}
}

func TestDebugLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	runSimplify(t, `(pdstore y p=5 (pdclean p=5 (pdclean p=5 (pdload x p=5))))`,
		WithLogger(zap.New(core)), WithGate(BisectGate{Limit: 2}))

	entries := logs.FilterMessage("transform").All()
	if len(entries) == 0 {
		t.Fatal("no transform entries")
	}
	refused := 0
	for _, e := range entries {
		fields := e.ContextMap()
		if rule, _ := fields["rule"].(string); rule == "" {
			t.Errorf("entry without rule: %v", fields)
		}
		if fields["refused"] == true {
			refused++
		}
	}
	if refused != len(entries)-1 {
		t.Errorf("got %d refused of %d entries, want all but the first", refused, len(entries))
	}
	for _, e := range logs.All() {
		if e.Level != zapcore.DebugLevel {
			t.Errorf("got %v entry %q", e.Level, e.Message)
		}
	}
}
