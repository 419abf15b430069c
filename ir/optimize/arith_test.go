package optimize

import "testing"

func TestSimplifyArithmetic(t *testing.T) {
	checkSimplify(t, []simplifyTest{
		{
			// The sum of two 3 digit operands needs at most 4 digits.
			Src:  `(pdstore y p=15 (pdadd p=15 (pdload a p=3) (pdload b p=3)))`,
			Want: "(pdstore y p=15 (pdadd p=4 (pdload a p=3) (pdload b p=3)))\n",
		},
		{
			Src:  `(pdstore y p=8 (pdmul p=8 (pdload a p=3) (pdload b p=5)))`,
			Want: "(pdstore y p=8 (pdmul p=8 (pdload b p=5) (pdload a p=3)))\n",
		},
		{
			Src:  `(pdstore y p=3 (pdsub p=4 (pdload x p=3) (pdconst 0)))`,
			Want: "(pdstore y p=3 (pdload x p=3))\n",
		},
		{
			Src:  `(pdstore y p=3 (pdsub p=4 (pdconst 0) (pdload x p=3)))`,
			Want: "(pdstore y p=3 (pdneg p=4 (pdload x p=3)))\n",
		},
		{
			Src:  `(pdstore y p=4 (pdadd p=4 (pdclean p=3 (pdload a p=3)) (pdload b p=3)))`,
			Want: "(pdstore y p=4 (pdadd p=4 (pdload a p=3) (pdload b p=3)))\n",
		},
		{
			Src:  `(pdstore y p=4 (pdadd p=4 (pdclean p=3 (pdload a p=3)) (pdload b p=3)))`,
			Want: "(pdstore y p=4 (pdadd p=4 (pdclean p=3 (pdload a p=3)) (pdload b p=3)))\n",
			Caps: Capabilities{KeepBCDWidening: true},
		},
		{
			Src:   `(pdstore y p=7 (pdmul p=7 (pdload a p=3 nonneg) (pdload b p=4 nonneg)))`,
			Want:  "(pdstore y p=7 (pdmul p=7 nonneg (pdload b p=4 nonneg) (pdload a p=3 nonneg)))\n",
			State: true,
		},
		{
			Src:   `(ddstore y (ddadd (ddabs (ddload a)) (ddabs (ddload b))))`,
			Want:  "(ddstore y (ddadd nonneg (ddabs nonneg (ddload a)) (ddabs nonneg (ddload b))))\n",
			State: true,
		},
	})
}

func TestArithmeticPreservesValues(t *testing.T) {
	for i, test := range []struct {
		Src    string
		Inputs []map[string]int64
	}{
		{`(pdstore y p=3 (pdsub p=4 (pdconst 0) (pdload x p=3)))`, []map[string]int64{{"x": 5}, {"x": -999}, {"x": 0}}},
		{`(pdstore y p=3 (pdsub p=4 (pdload x p=3) (pdconst 0)))`, []map[string]int64{{"x": 5}, {"x": -999}}},
		{`(pdstore y p=8 (pdmul p=8 (pdload a p=3) (pdload b p=5)))`, []map[string]int64{{"a": -999, "b": 99999}}},
		{`(pdstore y p=2 (pddiv p=5 (pdload a p=5) (pdload b p=2)))`, []map[string]int64{{"a": 12345, "b": -7}}},
		{`(pdstore y p=4 (pdadd p=4 (pdclean p=3 (pdload a p=3)) (pdload b p=3)))`, []map[string]int64{{"a": -1, "b": 1}}},
	} {
		for _, in := range test.Inputs {
			t.Logf("test %d", i)
			checkSameStores(t, test.Src, Capabilities{}, in)
		}
	}
}
