package eval

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/andrewarchi/decsimp/ir"
)

// Value is the result of evaluating a node. A decimal value of a BCD
// type is an integer magnitude with a sign code in the encoding of its
// type. Other values are signed numbers and have no sign code. DFP
// values do not distinguish negative zero.
type Value struct {
	Type ir.DataType
	Num  decimal.Decimal
	Sign int
}

// Signed returns the numeric value, applying the polarity of the sign
// code of a BCD value.
func (v Value) Signed() (decimal.Decimal, error) {
	if !v.Type.IsBCD() || v.Sign == ir.IgnoredSignCode {
		return v.Num, nil
	}
	switch ir.SignPolarity(v.Type, v.Sign) {
	case ir.Plus, ir.Unsigned:
		return v.Num, nil
	case ir.Minus:
		return v.Num.Neg(), nil
	}
	return decimal.Decimal{}, errors.Errorf("invalid %v sign 0x%x", v.Type, v.Sign)
}

func (v Value) String() string {
	if v.Type.IsBCD() {
		return fmt.Sprintf("%v %v sign=0x%x", v.Type, v.Num, v.Sign)
	}
	return fmt.Sprintf("%v %v", v.Type, v.Num)
}

func (v Value) isMinus() bool {
	return v.Type.IsBCD() && ir.SignPolarity(v.Type, v.Sign) == ir.Minus
}

func pow10(k int) decimal.Decimal {
	return decimal.New(1, int32(k))
}

// truncate keeps the low p digits of a magnitude.
func truncate(mag decimal.Decimal, p int) decimal.Decimal {
	return mag.Mod(pow10(p))
}

// preferredSign returns the preferred sign code of a polarity in the
// encoding of t.
func preferredSign(t ir.DataType, minus bool) int {
	code := ir.PreferredPlusCode
	if minus {
		code = ir.PreferredMinusCode
	}
	if c, ok := ir.ConvertSignEncoding(ir.PackedDecimal, t, code); ok {
		return c
	}
	return ir.IgnoredSignCode
}

// cleanSign returns the preferred sign for a magnitude and sign code,
// with zero always plus.
func cleanSign(t ir.DataType, mag decimal.Decimal, sign int) int {
	minus := ir.SignPolarity(t, sign) == ir.Minus && !mag.IsZero()
	return preferredSign(t, minus)
}

// bcdValue builds a BCD value of a signed number truncated to p digits
// with the preferred sign.
func bcdValue(t ir.DataType, d decimal.Decimal, p int) Value {
	return Value{Type: t, Num: truncate(d.Abs().Truncate(0), p), Sign: preferredSign(t, d.Sign() < 0)}
}

// convertSign converts a sign code between the encodings of two decimal
// types. A type without a sign reads as preferred plus and writes no
// sign.
func convertSign(from, to ir.DataType, sign int) int {
	if ir.SignCodeSizeOf(to) == ir.UnknownSignCodeSize {
		return ir.IgnoredSignCode
	}
	if sign == ir.IgnoredSignCode || ir.SignCodeSizeOf(from) == ir.UnknownSignCodeSize {
		return preferredSign(to, false)
	}
	if c, ok := ir.ConvertSignEncoding(from, to, sign); ok {
		return c
	}
	return sign
}
