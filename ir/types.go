package ir

// DataType is the result type of a node.
type DataType uint8

// Data types of the decimal IR subset.
const (
	NoType DataType = iota

	Int32
	Int64
	Float
	Double

	bcdBeg
	PackedDecimal
	ZonedDecimal
	ZonedDecimalSignLeadingEmbedded
	ZonedDecimalSignLeadingSeparate
	ZonedDecimalSignTrailingSeparate
	UnicodeDecimal
	UnicodeDecimalSignLeading
	UnicodeDecimalSignTrailing
	bcdEnd

	dfpBeg
	DecimalFloat
	DecimalDouble
	DecimalLongDouble
	dfpEnd
)

// Maximum precisions of the decimal types.
const (
	MaxPackedPrecision      = 31
	MaxShortDFPPrecision    = 7
	MaxLongDFPPrecision     = 16
	MaxExtendedDFPPrecision = 34
	maxInt32SignedPrecision = 10
	maxInt64SignedPrecision = 19
	maxFloatPrecision       = 7
	maxDoublePrecision      = 16
)

// IsBCD returns whether the type is a binary coded decimal type.
func (t DataType) IsBCD() bool { return bcdBeg < t && t < bcdEnd }

// IsDFP returns whether the type is a decimal floating point type.
func (t DataType) IsDFP() bool { return dfpBeg < t && t < dfpEnd }

// IsIntegral returns whether the type is a binary integer type.
func (t DataType) IsIntegral() bool { return t == Int32 || t == Int64 }

// IsFloatingPoint returns whether the type is a binary floating point
// type.
func (t DataType) IsFloatingPoint() bool { return t == Float || t == Double }

// IsAnyPacked returns whether the type is packed decimal.
func (t DataType) IsAnyPacked() bool { return t == PackedDecimal }

// IsAnyZoned returns whether the type is any zoned decimal variant.
func (t DataType) IsAnyZoned() bool {
	switch t {
	case ZonedDecimal, ZonedDecimalSignLeadingEmbedded,
		ZonedDecimalSignLeadingSeparate, ZonedDecimalSignTrailingSeparate:
		return true
	}
	return false
}

// IsZonedSeparateSign returns whether the type is zoned decimal with a
// separate sign byte.
func (t DataType) IsZonedSeparateSign() bool {
	return t == ZonedDecimalSignLeadingSeparate || t == ZonedDecimalSignTrailingSeparate
}

// IsAnyUnicode returns whether the type is any Unicode decimal variant.
func (t DataType) IsAnyUnicode() bool {
	return t == UnicodeDecimal || t == UnicodeDecimalSignLeading || t == UnicodeDecimalSignTrailing
}

// IsUnicodeSeparateSign returns whether the type is Unicode decimal
// with a separate sign character.
func (t DataType) IsUnicodeSeparateSign() bool {
	return t == UnicodeDecimalSignLeading || t == UnicodeDecimalSignTrailing
}

// IsEmbeddedSign returns whether the sign is encoded in a half byte
// alongside the digits.
func (t DataType) IsEmbeddedSign() bool { return SignCodeSizeOf(t) == EmbeddedHalfByte }

// MaxPrecision returns the largest number of digits representable in
// the type, or 0 when the type has no decimal precision.
func (t DataType) MaxPrecision() int {
	switch {
	case t == Int32:
		return maxInt32SignedPrecision
	case t == Int64:
		return maxInt64SignedPrecision
	case t == Float:
		return maxFloatPrecision
	case t == Double:
		return maxDoublePrecision
	case t == DecimalFloat:
		return MaxShortDFPPrecision
	case t == DecimalDouble:
		return MaxLongDFPPrecision
	case t == DecimalLongDouble:
		return MaxExtendedDFPPrecision
	case t.IsBCD():
		return MaxPackedPrecision
	}
	return 0
}

// DFPTypeForPrecision returns the narrowest DFP type that holds p
// digits.
func DFPTypeForPrecision(p int) DataType {
	switch {
	case p <= MaxShortDFPPrecision:
		return DecimalFloat
	case p <= MaxLongDFPPrecision:
		return DecimalDouble
	case p <= MaxExtendedDFPPrecision:
		return DecimalLongDouble
	}
	return NoType
}

// IntegralTypeForPrecision returns the narrowest binary integer type
// that holds any p digit value.
func IntegralTypeForPrecision(p int) DataType {
	switch {
	case p <= 9:
		return Int32
	case p <= 18:
		return Int64
	}
	return NoType
}

func (t DataType) String() string {
	switch t {
	case NoType:
		return "notype"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float:
		return "float"
	case Double:
		return "double"
	case PackedDecimal:
		return "pd"
	case ZonedDecimal:
		return "zd"
	case ZonedDecimalSignLeadingEmbedded:
		return "zdsle"
	case ZonedDecimalSignLeadingSeparate:
		return "zdsls"
	case ZonedDecimalSignTrailingSeparate:
		return "zdsts"
	case UnicodeDecimal:
		return "ud"
	case UnicodeDecimalSignLeading:
		return "udsl"
	case UnicodeDecimalSignTrailing:
		return "udst"
	case DecimalFloat:
		return "df"
	case DecimalDouble:
		return "dd"
	case DecimalLongDouble:
		return "de"
	}
	return "illegal"
}
