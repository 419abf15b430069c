// Package eval evaluates decimal IR blocks over a symbol memory. It is
// the reference for what a tree computes, so simplified and original
// blocks can be compared.
//
// DFP shifts operate on the integral part of their operand, as the
// conversions between DFP and packed without a fraction do.
package eval // import "github.com/andrewarchi/decsimp/eval"

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/andrewarchi/decsimp/ir"
)

// divPrecision is the number of fraction digits kept by DFP division.
const divPrecision = ir.MaxExtendedDFPPrecision

// Evaluator evaluates nodes. A node is evaluated at its first reference
// and its value is reused for later references.
type Evaluator struct {
	mem    *Memory
	values map[*ir.Node]Value
}

// New constructs an Evaluator over a memory.
func New(mem *Memory) *Evaluator {
	return &Evaluator{mem: mem, values: make(map[*ir.Node]Value)}
}

// Memory returns the memory the evaluator reads and writes.
func (e *Evaluator) Memory() *Memory { return e.mem }

// Run evaluates every statement of a block in order.
func (e *Evaluator) Run(b *ir.Block) error {
	for i, stmt := range b.Stmts {
		if _, err := e.Eval(stmt.Root()); err != nil {
			return errors.Wrapf(err, "statement %d", i)
		}
	}
	return nil
}

// Eval evaluates a tree.
func (e *Evaluator) Eval(n *ir.Node) (Value, error) {
	if v, ok := e.values[n]; ok {
		return v, nil
	}
	args := make([]Value, n.NumChildren())
	for i, c := range n.Children() {
		v, err := e.Eval(c)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	v, err := e.eval(n, args)
	if err != nil {
		return Value{}, errors.Wrapf(err, "%v", n.Op())
	}
	e.values[n] = v
	return v, nil
}

func (e *Evaluator) eval(n *ir.Node, args []Value) (Value, error) {
	op := n.Op()
	t := n.Type()
	switch {
	case op == ir.Iconst, op == ir.Lconst:
		return Value{Type: t, Num: decimal.NewFromInt(n.Int()), Sign: ir.IgnoredSignCode}, nil
	case op.IsLoadConst():
		if t.IsBCD() {
			return bcdValue(t, n.Decimal(), n.Precision()), nil
		}
		return Value{Type: t, Num: n.Decimal(), Sign: ir.IgnoredSignCode}, nil
	case op.IsLoad():
		return e.mem.Load(n.Symbol(), t, n.Precision())
	case op.IsStore():
		return Value{}, e.mem.Store(n.Symbol(), args[0], n.Precision(), n.CleanSignInStore())
	case op.IsCompare():
		return compare(op, args[0].Num, args[1].Num), nil
	case t.IsBCD():
		return e.evalBCD(n, args)
	case t.IsDFP():
		return evalDFP(n, args)
	}
	return evalBinary(n, args)
}

// setSign applies the sign set by a node to a BCD value. The ignored
// code keeps the value's sign.
func setSign(n *ir.Node, v Value) (Value, error) {
	code, ok := n.SetSign()
	if !ok {
		return Value{}, errors.Errorf("non-constant sign of %v", n.Op())
	}
	if code != ir.IgnoredSignCode {
		v.Sign = code
	}
	return v, nil
}

func (e *Evaluator) evalBCD(n *ir.Node, args []Value) (Value, error) {
	op := n.Op()
	t := n.Type()
	p := n.Precision()
	var v Value
	switch {
	case op.IsConversion():
		x := args[0]
		switch src := op.SourceType(); {
		case src.IsBCD():
			v = Value{Type: t, Num: truncate(x.Num, p), Sign: convertSign(src, t, x.Sign)}
		case src.IsDFP():
			scaled := x.Num.Mul(pow10(n.Fraction()))
			v = bcdValue(t, scaled, p)
		case op.IsUnsigned():
			d := x.Num
			if d.Sign() < 0 {
				d = unsigned(src, d)
			}
			v = bcdValue(t, d, p)
		default:
			v = bcdValue(t, x.Num, p)
		}
	case op.IsShift():
		k, ok := n.ShiftAmount()
		if !ok {
			return Value{}, errors.New("non-constant shift")
		}
		x := args[0]
		mag := x.Num
		if op.IsLeftShift() {
			mag = mag.Mul(pow10(k))
		} else {
			if r := n.DecimalRound(); r != 0 && k > 0 {
				mag = mag.Add(decimal.NewFromInt(int64(r)).Mul(pow10(k - 1)))
			}
			mag = mag.Div(pow10(k)).Truncate(0)
		}
		v = Value{Type: t, Num: truncate(mag, p), Sign: x.Sign}
	case op.IsClean():
		x := args[0]
		mag := truncate(x.Num, p)
		v = Value{Type: t, Num: mag, Sign: cleanSign(t, mag, x.Sign)}
	case op.IsClear():
		x := args[0]
		left, lok := n.ConstInt(1)
		count, cok := n.ConstInt(2)
		if !lok || !cok {
			return Value{}, errors.New("non-constant clear range")
		}
		v = Value{Type: t, Num: clearDigits(truncate(x.Num, p), left, count), Sign: x.Sign}
	case op.IsModifyPrecision(), op.IsSetSign() && !op.IsShift():
		x := args[0]
		v = Value{Type: t, Num: truncate(x.Num, p), Sign: x.Sign}
	case op.IsNeg():
		x := args[0]
		v = Value{Type: t, Num: truncate(x.Num, p), Sign: preferredSign(t, !x.isMinus())}
	case op.IsArithmetic():
		a, err := args[0].Signed()
		if err != nil {
			return Value{}, err
		}
		b, err := args[1].Signed()
		if err != nil {
			return Value{}, err
		}
		r, err := arith(op, a, b, 0)
		if err != nil {
			return Value{}, err
		}
		v = bcdValue(t, r, p)
	default:
		return Value{}, errors.Errorf("unsupported op %v", op)
	}
	if op.IsSetSign() || op.IsSetSignOnNode() {
		return setSign(n, v)
	}
	return v, nil
}

// unsigned reads a negative binary integer as unsigned.
func unsigned(t ir.DataType, d decimal.Decimal) decimal.Decimal {
	bits := int64(32)
	if t == ir.Int64 {
		bits = 64
	}
	return d.Add(decimal.NewFromInt(2).Pow(decimal.NewFromInt(bits)))
}

// clearDigits zeroes count digits ending at digit position left, where
// the units digit is position 1.
func clearDigits(mag decimal.Decimal, left, count int) decimal.Decimal {
	if count <= 0 || left <= 0 {
		return mag
	}
	low := left - count
	if low < 0 {
		low = 0
	}
	high := mag.Div(pow10(left)).Truncate(0).Mul(pow10(left))
	keep := mag.Mod(pow10(low))
	return high.Add(keep)
}

// arith computes packed or DFP arithmetic. Packed division truncates
// to an integer, DFP division keeps divPrecision fraction digits.
func arith(op ir.Op, a, b decimal.Decimal, fracDigits int32) (decimal.Decimal, error) {
	switch {
	case op.IsAdd():
		return a.Add(b), nil
	case op.IsSub():
		return a.Sub(b), nil
	case op.IsMul():
		return a.Mul(b), nil
	case op.IsDiv():
		if b.IsZero() {
			return decimal.Decimal{}, errors.New("division by zero")
		}
		if fracDigits == 0 {
			q, _ := a.QuoRem(b, 0)
			return q, nil
		}
		return a.DivRound(b, fracDigits), nil
	case op.IsNeg():
		return a.Neg(), nil
	}
	return decimal.Decimal{}, errors.Errorf("unsupported op %v", op)
}

func evalDFP(n *ir.Node, args []Value) (Value, error) {
	op := n.Op()
	t := n.Type()
	result := func(d decimal.Decimal) (Value, error) {
		return Value{Type: t, Num: d, Sign: ir.IgnoredSignCode}, nil
	}
	switch {
	case op.IsConversion():
		x := args[0]
		d, err := x.Signed()
		if err != nil {
			return Value{}, err
		}
		if op.SourceType().IsBCD() {
			d = d.Div(pow10(n.Fraction()))
		}
		if op.IsAbs() {
			d = d.Abs()
		}
		return result(d)
	case op.IsAbs():
		return result(args[0].Num.Abs())
	case op.IsSetSignOnNode():
		return result(args[0].Num.Abs().Neg())
	case op.IsClean():
		return result(args[0].Num)
	case op.IsShift():
		k, ok := n.ShiftAmount()
		if !ok {
			return Value{}, errors.New("non-constant shift")
		}
		x := args[0].Num.Truncate(0)
		if op.IsLeftShift() {
			return result(x.Mul(pow10(k)))
		}
		mag := x.Abs()
		if r := n.DecimalRound(); r != 0 && k > 0 {
			mag = mag.Add(decimal.NewFromInt(int64(r)).Mul(pow10(k - 1)))
		}
		mag = mag.Div(pow10(k)).Truncate(0)
		if x.Sign() < 0 {
			mag = mag.Neg()
		}
		return result(mag)
	case op.IsModifyPrecision():
		x := args[0].Num
		mag := x.Abs().Mod(pow10(n.Precision()))
		if x.Sign() < 0 {
			mag = mag.Neg()
		}
		return result(mag)
	case op.IsFloor():
		return result(args[0].Num.Floor())
	case op.IsArithmetic():
		r, err := arith(op, args[0].Num, args[1].Num, int32(divPrecision))
		if err != nil {
			return Value{}, err
		}
		return result(r)
	}
	return Value{}, errors.Errorf("unsupported op %v", op)
}

func evalBinary(n *ir.Node, args []Value) (Value, error) {
	op := n.Op()
	t := n.Type()
	result := func(d decimal.Decimal) (Value, error) {
		return Value{Type: t, Num: d, Sign: ir.IgnoredSignCode}, nil
	}
	switch {
	case op.IsConversion():
		d, err := args[0].Signed()
		if err != nil {
			return Value{}, err
		}
		src := op.SourceType()
		if src.IsBCD() {
			d = d.Div(pow10(n.Fraction()))
		}
		if t.IsIntegral() {
			d = d.Truncate(0)
		}
		return result(d)
	case op.IsRem():
		if args[1].Num.IsZero() {
			return Value{}, errors.New("division by zero")
		}
		return result(args[0].Num.Mod(args[1].Num))
	case op.IsAbs():
		return result(args[0].Num.Abs())
	case op.IsArithmetic():
		var b decimal.Decimal
		if len(args) > 1 {
			b = args[1].Num
		}
		r, err := arith(op, args[0].Num, b, 0)
		if err != nil {
			return Value{}, err
		}
		return result(r)
	}
	return Value{}, errors.Errorf("unsupported op %v", op)
}

func compare(op ir.Op, a, b decimal.Decimal) Value {
	c := a.Cmp(b)
	var ok bool
	switch ir.DFPCompareOp(op, ir.DecimalFloat) {
	case ir.Dfcmpeq:
		ok = c == 0
	case ir.Dfcmpne:
		ok = c != 0
	case ir.Dfcmplt:
		ok = c < 0
	case ir.Dfcmpge:
		ok = c >= 0
	case ir.Dfcmpgt:
		ok = c > 0
	case ir.Dfcmple:
		ok = c <= 0
	}
	v := int64(0)
	if ok {
		v = 1
	}
	return Value{Type: ir.Int32, Num: decimal.NewFromInt(v), Sign: ir.IgnoredSignCode}
}
