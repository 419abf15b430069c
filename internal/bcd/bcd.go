// Package bcd encodes decimal digit strings in the byte layouts of the
// packed, zoned, and Unicode decimal types.
package bcd // import "github.com/andrewarchi/decsimp/internal/bcd"

import (
	"bytes"

	"github.com/go-faster/errors"
	"github.com/icza/bitio"

	"github.com/andrewarchi/decsimp/ir"
)

const zone = 0xf

// Encode lays out a digit string with a sign code in the format of t.
// The sign code is in the encoding of t. The digit string holds exactly
// the precision of the value, most significant digit first.
func Encode(t ir.DataType, digits string, sign int) ([]byte, error) {
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return nil, errors.Errorf("bcd: invalid digit %q", digits[i])
		}
	}
	if !ir.IsValidSignCode(t, sign) && t != ir.UnicodeDecimal {
		return nil, errors.Errorf("bcd: invalid %v sign 0x%x", t, sign)
	}
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	switch t {
	case ir.PackedDecimal:
		if len(digits)%2 == 0 {
			w.TryWriteBits(0, 4)
		}
		for i := 0; i < len(digits); i++ {
			w.TryWriteBits(uint64(digits[i]-'0'), 4)
		}
		w.TryWriteBits(uint64(sign), 4)
	case ir.ZonedDecimal, ir.ZonedDecimalSignLeadingEmbedded:
		leading := t == ir.ZonedDecimalSignLeadingEmbedded
		for i := 0; i < len(digits); i++ {
			z := uint64(zone)
			if leading && i == 0 || !leading && i == len(digits)-1 {
				z = uint64(sign)
			}
			w.TryWriteBits(z, 4)
			w.TryWriteBits(uint64(digits[i]-'0'), 4)
		}
	case ir.ZonedDecimalSignLeadingSeparate, ir.ZonedDecimalSignTrailingSeparate:
		leading := t == ir.ZonedDecimalSignLeadingSeparate
		if leading {
			w.TryWriteBits(uint64(sign), 8)
		}
		for i := 0; i < len(digits); i++ {
			w.TryWriteBits(zone, 4)
			w.TryWriteBits(uint64(digits[i]-'0'), 4)
		}
		if !leading {
			w.TryWriteBits(uint64(sign), 8)
		}
	case ir.UnicodeDecimal, ir.UnicodeDecimalSignLeading, ir.UnicodeDecimalSignTrailing:
		if t == ir.UnicodeDecimalSignLeading {
			w.TryWriteBits(uint64(sign), 16)
		}
		for i := 0; i < len(digits); i++ {
			w.TryWriteBits(uint64(digits[i]), 16)
		}
		if t == ir.UnicodeDecimalSignTrailing {
			w.TryWriteBits(uint64(sign), 16)
		}
	default:
		return nil, errors.Errorf("bcd: %v is not a decimal type", t)
	}
	if w.TryError != nil {
		return nil, errors.Wrap(w.TryError, "bcd: encode")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "bcd: encode")
	}
	return buf.Bytes(), nil
}

// Decode reads a value of the given precision in the format of t and
// returns its digit string and sign code. Unsigned Unicode values have
// the sign ir.IgnoredSignCode.
func Decode(t ir.DataType, b []byte, prec int) (digits string, sign int, err error) {
	r := bitio.NewReader(bytes.NewReader(b))
	out := make([]byte, prec)
	digit := func(i int, v uint64) {
		if v > 9 && err == nil {
			err = errors.Errorf("bcd: invalid digit 0x%x at %d", v, i)
		}
		out[i] = '0' + byte(v)
	}
	sign = ir.IgnoredSignCode
	switch t {
	case ir.PackedDecimal:
		if prec%2 == 0 {
			if pad := r.TryReadBits(4); pad != 0 {
				err = errors.Errorf("bcd: nonzero pad nibble 0x%x", pad)
			}
		}
		for i := range out {
			digit(i, r.TryReadBits(4))
		}
		sign = int(r.TryReadBits(4))
	case ir.ZonedDecimal, ir.ZonedDecimalSignLeadingEmbedded:
		leading := t == ir.ZonedDecimalSignLeadingEmbedded
		for i := range out {
			z := int(r.TryReadBits(4))
			if leading && i == 0 || !leading && i == prec-1 {
				sign = z
			}
			digit(i, r.TryReadBits(4))
		}
	case ir.ZonedDecimalSignLeadingSeparate, ir.ZonedDecimalSignTrailingSeparate:
		leading := t == ir.ZonedDecimalSignLeadingSeparate
		if leading {
			sign = int(r.TryReadBits(8))
		}
		for i := range out {
			r.TryReadBits(4)
			digit(i, r.TryReadBits(4))
		}
		if !leading {
			sign = int(r.TryReadBits(8))
		}
	case ir.UnicodeDecimal, ir.UnicodeDecimalSignLeading, ir.UnicodeDecimalSignTrailing:
		if t == ir.UnicodeDecimalSignLeading {
			sign = int(r.TryReadBits(16))
		}
		for i := range out {
			digit(i, r.TryReadBits(16)-'0')
		}
		if t == ir.UnicodeDecimalSignTrailing {
			sign = int(r.TryReadBits(16))
		}
	default:
		return "", ir.IgnoredSignCode, errors.Errorf("bcd: %v is not a decimal type", t)
	}
	if r.TryError != nil {
		return "", ir.IgnoredSignCode, errors.Wrap(r.TryError, "bcd: decode")
	}
	if err != nil {
		return "", ir.IgnoredSignCode, err
	}
	return string(out), sign, nil
}
