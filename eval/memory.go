package eval

import (
	"sort"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/andrewarchi/decsimp/internal/bcd"
	"github.com/andrewarchi/decsimp/ir"
)

// Memory maps symbols to cells. A cell set with Set holds a number and
// takes the layout of whatever type loads it. A cell written by a store
// or SetBCD holds bytes in the layout of its type.
type Memory struct {
	cells map[string]cell
}

type cell struct {
	typ  ir.DataType // NoType for an untyped number
	prec int
	raw  []byte
	num  decimal.Decimal
}

// NewMemory constructs an empty memory.
func NewMemory() *Memory {
	return &Memory{cells: make(map[string]cell)}
}

// Clone returns an independent copy of the memory.
func (m *Memory) Clone() *Memory {
	c := NewMemory()
	for sym, v := range m.cells {
		v.raw = append([]byte(nil), v.raw...)
		c.cells[sym] = v
	}
	return c
}

// Set binds a symbol to an untyped number.
func (m *Memory) Set(sym string, d decimal.Decimal) {
	m.cells[sym] = cell{num: d}
}

// SetBCD binds a symbol to a decimal value in the layout of t with an
// explicit sign code in the encoding of t.
func (m *Memory) SetBCD(sym string, t ir.DataType, prec int, magnitude decimal.Decimal, sign int) error {
	raw, err := encode(t, prec, magnitude, sign)
	if err != nil {
		return errors.Wrapf(err, "set %s", sym)
	}
	m.cells[sym] = cell{typ: t, prec: prec, raw: raw}
	return nil
}

// Symbols returns the bound symbols in sorted order.
func (m *Memory) Symbols() []string {
	syms := make([]string, 0, len(m.cells))
	for sym := range m.cells {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}

// Number returns the numeric value of a symbol, with the polarity of its
// sign code applied.
func (m *Memory) Number(sym string) (decimal.Decimal, error) {
	c, ok := m.cells[sym]
	if !ok {
		return decimal.Decimal{}, errors.Errorf("unbound symbol %q", sym)
	}
	if !c.typ.IsBCD() {
		return c.num, nil
	}
	v, err := decodeCell(c, c.prec)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "read %s", sym)
	}
	return v.Signed()
}

// Load reads a symbol as a value of type t and precision prec.
func (m *Memory) Load(sym string, t ir.DataType, prec int) (Value, error) {
	c, ok := m.cells[sym]
	if !ok {
		return Value{}, errors.Errorf("unbound symbol %q", sym)
	}
	if c.typ == ir.NoType {
		return fromNumber(t, prec, c.num)
	}
	if c.typ != t {
		return Value{}, errors.Errorf("symbol %q holds %v, loaded as %v", sym, c.typ, t)
	}
	if t.IsBCD() {
		v, err := decodeCell(c, c.prec)
		if err != nil {
			return Value{}, errors.Wrapf(err, "load %s", sym)
		}
		v.Num = truncate(v.Num, prec)
		return v, nil
	}
	return Value{Type: t, Num: c.num, Sign: ir.IgnoredSignCode}, nil
}

// Store writes a value of precision prec to a symbol. A cleaning store
// writes the preferred sign of the value.
func (m *Memory) Store(sym string, v Value, prec int, clean bool) error {
	if !v.Type.IsBCD() {
		m.cells[sym] = cell{typ: v.Type, num: v.Num}
		return nil
	}
	mag := truncate(v.Num, prec)
	sign := v.Sign
	if clean {
		sign = cleanSign(v.Type, mag, sign)
	}
	raw, err := encode(v.Type, prec, mag, sign)
	if err != nil {
		return errors.Wrapf(err, "store %s", sym)
	}
	m.cells[sym] = cell{typ: v.Type, prec: prec, raw: raw}
	return nil
}

// fromNumber lays out an untyped number as a value of type t, through
// the byte encoding of t for decimal types.
func fromNumber(t ir.DataType, prec int, d decimal.Decimal) (Value, error) {
	switch {
	case t.IsBCD():
		if !d.Equal(d.Truncate(0)) {
			return Value{}, errors.Errorf("%v value %v is not an integer", t, d)
		}
		mag := truncate(d.Abs(), prec)
		raw, err := encode(t, prec, mag, preferredSign(t, d.Sign() < 0))
		if err != nil {
			return Value{}, err
		}
		return decodeCell(cell{typ: t, prec: prec, raw: raw}, prec)
	case t.IsIntegral():
		return Value{Type: t, Num: d.Truncate(0), Sign: ir.IgnoredSignCode}, nil
	}
	return Value{Type: t, Num: d, Sign: ir.IgnoredSignCode}, nil
}

func encode(t ir.DataType, prec int, magnitude decimal.Decimal, sign int) ([]byte, error) {
	digits := magnitude.String()
	if magnitude.Sign() < 0 || strings.ContainsRune(digits, '.') {
		return nil, errors.Errorf("invalid magnitude %v", magnitude)
	}
	if len(digits) > prec {
		return nil, errors.Errorf("magnitude %v exceeds precision %d", magnitude, prec)
	}
	digits = strings.Repeat("0", prec-len(digits)) + digits
	return bcd.Encode(t, digits, sign)
}

func decodeCell(c cell, prec int) (Value, error) {
	digits, sign, err := bcd.Decode(c.typ, c.raw, prec)
	if err != nil {
		return Value{}, err
	}
	mag, err := decimal.NewFromString(digits)
	if err != nil {
		return Value{}, errors.Wrap(err, "decode digits")
	}
	return Value{Type: c.typ, Num: mag, Sign: sign}, nil
}
