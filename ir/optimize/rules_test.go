package optimize

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/andrewarchi/decsimp/ir"
	"github.com/andrewarchi/decsimp/syntax"
)

type ruleTest struct {
	Rule   string
	Src    string
	Want   string // empty to only check the rule and values
	Caps   Capabilities
	Inputs []map[string]int64
}

// checkRule simplifies src with debug logging, checks that rule was
// committed and that the result matches Want, then compares the stored
// values before and after for each input.
func checkRule(t *testing.T, i int, test ruleTest) {
	t.Helper()
	b, err := syntax.ParseString(test.Src)
	if err != nil {
		t.Fatalf("test %d: %v", i, err)
	}
	core, logs := observer.New(zapcore.DebugLevel)
	New(WithCapabilities(test.Caps), WithLogger(zap.New(core))).SimplifyBlock(b)
	got := ir.NewFormatter().FormatBlock(b)
	if err := ir.Verify(b); err != nil {
		t.Errorf("test %d: %v\n%s", i, err, got)
		return
	}
	applied := false
	for _, e := range logs.FilterMessage("transform").All() {
		fields := e.ContextMap()
		if fields["rule"] == test.Rule && fields["refused"] == nil {
			applied = true
			break
		}
	}
	if !applied {
		t.Errorf("test %d: %s not applied to %s\n%s", i, test.Rule, test.Src, got)
	}
	if test.Want != "" && got != test.Want {
		t.Errorf("test %d: %s\ngot:  %swant: %s", i, test.Rule, got, test.Want)
	}
	for _, in := range test.Inputs {
		checkSameStores(t, test.Src, test.Caps, in)
	}
}

func TestSimplifyRules(t *testing.T) {
	for i, test := range []ruleTest{
		{
			Rule:   "unaryCancel",
			Src:    `(zdstore y p=5 (pd2zd p=5 (zd2pd p=5 (zdload x p=5))))`,
			Want:   "(zdstore y p=5 (zdload x p=5))\n",
			Inputs: []map[string]int64{{"x": 12345}, {"x": -678}},
		},
		{
			Rule:   "reduceShiftRightOverShiftRight",
			Src:    `(pdstore y p=5 (pdshr p=5 (pdshr p=6 (pdload x p=9) 3 0) 0 5))`,
			Want:   "(pdstore y p=5 (pdshr p=5 (pdload x p=9) 3 0))\n",
			Inputs: []map[string]int64{{"x": 123456789}, {"x": -999999999}, {"x": 555}},
		},
		{
			Rule:   "removeDominatedSign",
			Src:    `(pdstore y p=5 (pdSetSign p=5 (pdSetSign p=5 (pdload x p=5) 15) 12))`,
			Want:   "(pdstore y p=5 (pdSetSign p=5 (pdload x p=5) 12))\n",
			Inputs: []map[string]int64{{"x": 12345}, {"x": -12345}},
		},
		{
			Rule:   "reducePackedArithmeticPrecision",
			Src:    `(pdstore y p=14 (pdadd p=14 (pdload a p=3) (pdload b p=4)))`,
			Want:   "(pdstore y p=14 (pdadd p=5 (pdload a p=3) (pdload b p=4)))\n",
			Inputs: []map[string]int64{{"a": 999, "b": 9999}, {"a": -999, "b": 9999}},
		},
		{
			Rule:   "reducePackedArithmeticPrecision",
			Src:    `(pdstore y p=14 (pdadd p=14 (pdload a p=3) (pdload b p=4)))`,
			Want:   "(pdstore y p=14 (pdModifyPrecision p=14 (pdadd p=5 (pdload a p=3) (pdload b p=4))))\n",
			Caps:   Capabilities{KeepBCDWidening: true},
			Inputs: []map[string]int64{{"a": 999, "b": 9999}},
		},
		{
			Rule:   "cancelDFPtoBCDtoBinaryConversion",
			Src:    `(istore y (pd2i (zd2pd p=7 (dd2zd p=1 (ddload c)))))`,
			Inputs: []map[string]int64{{"c": -690114257}, {"c": 12345}, {"c": 0}},
		},
		{
			Rule:   "cancelDFPtoBCDtoBinaryConversion",
			Src:    `(istore y (pd2i (zd2pd p=7 (dd2zd p=5 srcp=5 (ddload c)))))`,
			Inputs: []map[string]int64{{"c": 12345}, {"c": -99999}},
		},
		{
			Rule:   "lowerPackedShiftOrSetSignBelowDFPConv",
			Src:    `(pdstore y p=5 (pdshr p=5 (dd2pd p=9 (ddload c)) 2 5))`,
			Inputs: []map[string]int64{{"c": 123456789}, {"c": -987654350}, {"c": 1999999999}},
		},
		{
			Rule:   "lowerPackedShiftOrSetSignBelowDFPConv",
			Src:    `(pdstore y p=7 (pdshl p=7 (dd2pd p=5 (ddload c)) 2))`,
			Inputs: []map[string]int64{{"c": 12345678}, {"c": -321}},
		},
		{
			Rule:   "propagateTruncationToConversionChild",
			Src:    `(pdstore y p=4 (pdshl p=4 (zd2pd p=5 (zdload x p=5)) 1))`,
			Want:   "(pdstore y p=4 (pdshl p=4 (zd2pd p=3 (zdload x p=5)) 1))\n",
			Inputs: []map[string]int64{{"x": 12345}, {"x": -98765}},
		},
		{
			Rule:   "removeShiftTruncationForConversionParent",
			Src:    `(udstore y p=3 (pd2ud p=3 (pdshl p=3 (pdload x p=5) 2)))`,
			Inputs: []map[string]int64{{"x": 12345}, {"x": 7}},
		},
		{
			Rule:   "flipCleanAndShift",
			Src:    `(zdstore y p=9 (pd2zd p=9 (pdclean p=9 (pdshl p=9 (pdload x p=5) 4))))`,
			Want:   "(zdstore y p=9 (pd2zd p=9 (pdshl p=9 (pdclean p=9 (pdload x p=5)) 4)))\n",
			Inputs: []map[string]int64{{"x": -12345}, {"x": 600}},
		},
		{
			Rule:   "foldSetSignIntoGrandChild",
			Src:    `(pdstore y p=5 (pdSetSign p=5 (zd2pd p=5 (zdsle2zd p=5 (zdsleload x p=5))) 15))`,
			Want:   "(pdstore y p=5 (zd2pd p=5 (zdsle2zdSetSign p=5 (zdsleload x p=5) 15)))\n",
			Inputs: []map[string]int64{{"x": 12345}, {"x": -42}},
		},
		{
			Rule:   "foldSetSignIntoGrandChild",
			Src:    `(pdstore y p=5 (pdSetSign p=5 (zd2pd p=5 (zdsle2zd p=5 (zdsleload x p=5))) 13))`,
			Want:   "(pdstore y p=5 (pdSetSign p=5 (zd2pd p=5 (zdsle2zdSetSign p=5 (zdsleload x p=5) -1)) 13))\n",
			Inputs: []map[string]int64{{"x": 12345}, {"x": -42}},
		},
		{
			Rule:   "foldSetSignFromGrandChild",
			Src:    `(udslstore y p=5 (pd2udsl p=5 (zd2pd p=5 (zdSetSign p=5 (zdload x p=5) 13))))`,
			Want:   "(udslstore y p=5 (pd2udslSetSign p=5 (zd2pd p=5 (zdload x p=5)) 45))\n",
			Inputs: []map[string]int64{{"x": 12345}, {"x": -42}},
		},
		{
			Rule: "createSetSignForKnownSignChild",
			Src:  `(pdstore y p=7 (pdshl p=7 (ud2pd p=5 (udload x p=5)) 2))`,
			Want: "(pdstore y p=7 (pdshlSetSign p=7 (ud2pd p=5 (udload x p=5)) 2 12))\n",
		},
		{
			Rule:   "foldSetSignIntoNode",
			Src:    `(zdslsstore y p=5 (pd2zdsls p=5 (pdSetSign p=5 (pdload x p=5) 13)))`,
			Want:   "(zdslsstore y p=5 (pd2zdslsSetSign p=5 (pdload x p=5) 96))\n",
			Inputs: []map[string]int64{{"x": 123}, {"x": -123}},
		},
		{
			Rule:   "unaryCancel",
			Src:    `(zdslsstore y p=5 (pd2zdsls p=5 (zdsls2pd p=5 (zdslsload x p=5))))`,
			Want:   "(zdslsstore y p=5 (zdslsload x p=5))\n",
			Inputs: []map[string]int64{{"x": 123}, {"x": -123}},
		},
		{
			Rule:   "removeDominatedDFPSign",
			Src:    `(ddstore y (ddabs (ddSetNegative (ddload c))))`,
			Want:   "(ddstore y (ddabs (ddload c)))\n",
			Inputs: []map[string]int64{{"c": 12345}, {"c": -12345}},
		},
		{
			Rule:   "removeDominatedDFPSign",
			Src:    `(ddstore y (ddSetNegative (ddabs (ddload c))))`,
			Want:   "(ddstore y (ddSetNegative (ddload c)))\n",
			Inputs: []map[string]int64{{"c": 12345}, {"c": -12345}},
		},
		{
			Rule:   "collapseModifyPrecision",
			Src:    `(ddstore y (ddModifyPrecision p=3 (ddModifyPrecision p=5 (ddload c))))`,
			Want:   "(ddstore y (ddModifyPrecision p=3 (ddload c)))\n",
			Inputs: []map[string]int64{{"c": 123456}, {"c": -98765}},
		},
		{
			Rule:   "collapseModifyPrecision",
			Src:    `(ddstore y (ddModifyPrecision p=4 (ddModifyPrecision p=2 (ddload c))))`,
			Want:   "(ddstore y (ddModifyPrecision p=2 (ddload c)))\n",
			Inputs: []map[string]int64{{"c": 123456}, {"c": -98765}},
		},
	} {
		checkRule(t, i, test)
	}
}

func TestSetSignConversionUnchanged(t *testing.T) {
	src := `(zdslsstore y p=5 (pd2zdslsSetSign p=5 (pdload x p=5) 78))`
	_, got, s := runSimplify(t, src)
	if want := src + "\n"; got != want {
		t.Errorf("got:\n%swant:\n%s", got, want)
	}
	if s.Seq() != 0 {
		t.Errorf("got %d transformations, want 0", s.Seq())
	}
}
