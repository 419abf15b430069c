package syntax

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/andrewarchi/decsimp/ir"
)

func TestParseFormat(t *testing.T) {
	src := `; shared load
(pdstore y p=5 (pdshr p=5 @x(pdload x p=8) 3 0))
(zdstore z p=8 (pd2zd p=8 @x))
(pdstore w p=3 cleanstore (pdSetSign p=3 (pdload v p=3 assumed=0xf) 0xc))
(dfstore d (dfabs (dd2df (ddconst 1.25))))
(pdstore c p=3 (pdconst -123))
(lstore i (lconst 7))
`
	want := `(pdstore y p=5 (pdshr p=5 @1(pdload x p=8) 3 0))
(zdstore z p=8 (pd2zd p=8 @1))
(pdstore w p=3 cleanstore (pdSetSign p=3 (pdload v p=3 assumed=0xf) 12))
(dfstore d (dfabs (dd2df (ddconst 1.25))))
(pdstore c p=3 (pdconst -123 p=3))
(lstore i (lconst 7))
`
	b, err := ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := ir.Verify(b); err != nil {
		t.Fatal(err)
	}
	f := ir.NewFormatter()
	f.State = true
	got := f.FormatBlock(b)
	if got != want {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(want),
			B:        difflib.SplitLines(got),
			FromFile: "want",
			ToFile:   "got",
			Context:  2,
		})
		t.Errorf("format mismatch:\n%s", diff)
	}

	x := b.Stmts[0].Root().Child(0).Child(0)
	if x.RefCount() != 2 || b.Stmts[1].Root().Child(0).Child(0) != x {
		t.Errorf("labeled load is not shared: ref count %d", x.RefCount())
	}
}

func TestParseErrors(t *testing.T) {
	for i, test := range []struct {
		Src, Err string
	}{
		{"(pdload x p=5", "<input>:1:14: unterminated pdload"},
		{"(pdfoo 1)", `<input>:1:2: unknown op "pdfoo"`},
		{"(pdneg p=5)", "<input>:1:2: pdneg takes 1 children, got 0"},
		{"(pdstore y p=5\n  @a)", "<input>:2:3: undefined label @a"},
		{"(pdload x p=5 known=0xa)", "<input>:1:21: untracked sign code 0xa"},
		{"(dload x known=0xc)", "<input>:1:16: dload has no embedded sign"},
		{"(pdload x q=1)", `<input>:1:13: unknown attribute "q"`},
		{"(pdload x p=5) $", "<input>:1:16: unexpected character $"},
	} {
		_, err := ParseString(test.Src)
		if err == nil {
			t.Errorf("test %d: no error, want %q", i, test.Err)
			continue
		}
		if !strings.Contains(err.Error(), test.Err) {
			t.Errorf("test %d: got error %q, want %q", i, err, test.Err)
		}
	}
}
