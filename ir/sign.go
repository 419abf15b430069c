package ir

import "fmt"

// Sign code values.
const (
	IgnoredSignCode       = -1
	FirstValidSignCode    = 0xa
	LastValidSignCode     = 0xf
	PreferredPlusCode     = 0xc
	PreferredMinusCode    = 0xd
	ZonedValue            = 0xf
	ZonedSeparatePlus     = 0x4e
	ZonedSeparateMinus    = 0x60
	NationalSeparatePlus  = 0x2b
	NationalSeparateMinus = 0x2d
)

// SignCodeSize is the storage size of a sign code for a data type.
type SignCodeSize uint8

// Sign code sizes.
const (
	UnknownSignCodeSize SignCodeSize = iota
	EmbeddedHalfByte
	SeparateOneByte
	SeparateTwoByte
)

// SignCodeSizeOf returns the sign code size of a type.
func SignCodeSizeOf(t DataType) SignCodeSize {
	switch t {
	case PackedDecimal, ZonedDecimal, ZonedDecimalSignLeadingEmbedded:
		return EmbeddedHalfByte
	case ZonedDecimalSignLeadingSeparate, ZonedDecimalSignTrailingSeparate:
		return SeparateOneByte
	case UnicodeDecimalSignLeading, UnicodeDecimalSignTrailing:
		return SeparateTwoByte
	}
	return UnknownSignCodeSize
}

// RawSign is a sign code tracked in node sign state.
type RawSign uint8

// Tracked raw sign codes.
const (
	SignUnknown RawSign = iota
	Sign0xC
	Sign0xD
	Sign0xF
)

// Value returns the sign nibble of a raw sign, or IgnoredSignCode when
// unknown.
func (s RawSign) Value() int {
	switch s {
	case Sign0xC:
		return 0xc
	case Sign0xD:
		return 0xd
	case Sign0xF:
		return 0xf
	}
	return IgnoredSignCode
}

func (s RawSign) String() string {
	if s == SignUnknown {
		return "unknown"
	}
	return fmt.Sprintf("0x%x", s.Value())
}

// SupportedRawSign maps a sign nibble to a tracked raw sign.
func SupportedRawSign(code int) RawSign {
	switch code {
	case 0xc:
		return Sign0xC
	case 0xd:
		return Sign0xD
	case 0xf:
		return Sign0xF
	}
	return SignUnknown
}

// IsSupportedRawSign returns whether the code is tracked as a raw sign.
func IsSupportedRawSign(code int) bool { return SupportedRawSign(code) != SignUnknown }

// IsValidEmbeddedSign returns whether a sign nibble is in 0xa..0xf.
func IsValidEmbeddedSign(code int) bool {
	return FirstValidSignCode <= code && code <= LastValidSignCode
}

// Polarity classifies a sign code.
type Polarity uint8

// Sign polarities.
const (
	InvalidPolarity Polarity = iota
	Plus
	Minus
	Unsigned
)

// EmbeddedPolarity classifies an embedded sign nibble.
func EmbeddedPolarity(code int) Polarity {
	switch code {
	case 0xa, 0xc, 0xe:
		return Plus
	case 0xb, 0xd:
		return Minus
	case 0xf:
		return Unsigned
	}
	return InvalidPolarity
}

// SignPolarity classifies a sign code in the encoding of t.
func SignPolarity(t DataType, code int) Polarity {
	switch SignCodeSizeOf(t) {
	case EmbeddedHalfByte:
		return EmbeddedPolarity(code)
	case SeparateOneByte:
		switch code {
		case ZonedSeparatePlus:
			return Plus
		case ZonedSeparateMinus:
			return Minus
		}
	case SeparateTwoByte:
		switch code {
		case NationalSeparatePlus:
			return Plus
		case NationalSeparateMinus:
			return Minus
		}
	}
	return InvalidPolarity
}

// IsValidSignCode returns whether code is a valid sign in the encoding
// of t.
func IsValidSignCode(t DataType, code int) bool {
	return SignPolarity(t, code) != InvalidPolarity
}

// ConvertSignEncoding converts a sign code from the encoding of one type
// to another. The ignored sign code converts to itself.
func ConvertSignEncoding(from, to DataType, code int) (int, bool) {
	if code == IgnoredSignCode || from == to {
		return code, true
	}
	fromSize, toSize := SignCodeSizeOf(from), SignCodeSizeOf(to)
	if fromSize == UnknownSignCodeSize || toSize == UnknownSignCodeSize {
		return IgnoredSignCode, false
	}
	var pol Polarity
	switch fromSize {
	case EmbeddedHalfByte:
		pol = EmbeddedPolarity(code)
		if pol == Unsigned {
			pol = Plus
		}
	default:
		pol = SignPolarity(from, code)
	}
	if pol == InvalidPolarity {
		return IgnoredSignCode, false
	}
	if fromSize == toSize {
		return code, true
	}
	minus := pol == Minus
	switch toSize {
	case EmbeddedHalfByte:
		if minus {
			return PreferredMinusCode, true
		}
		return PreferredPlusCode, true
	case SeparateOneByte:
		if minus {
			return ZonedSeparateMinus, true
		}
		return ZonedSeparatePlus, true
	case SeparateTwoByte:
		if minus {
			return NationalSeparateMinus, true
		}
		return NationalSeparatePlus, true
	}
	return IgnoredSignCode, false
}

// MustConvertSignEncoding is ConvertSignEncoding that panics when the
// code cannot be converted.
func MustConvertSignEncoding(from, to DataType, code int) int {
	sign, ok := ConvertSignEncoding(from, to, code)
	if !ok {
		panic(fmt.Sprintf("ir: cannot convert sign 0x%x from %v to %v", code, from, to))
	}
	return sign
}
