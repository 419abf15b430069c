package ir

import "fmt"

// Op is the operation kind of a node.
type Op uint16

// Operations of the decimal IR subset. Each DFP family is declared in
// df, dd, de order so that the family member for a DFP type is found by
// offset.
const (
	BadOp Op = iota

	// Constants
	Iconst
	Lconst
	Pdconst
	Dfconst
	Ddconst
	Deconst

	// Loads
	Iload
	Lload
	Fload
	Dload
	Pdload
	Zdload
	Zdsleload
	Zdslsload
	Zdstsload
	Udload
	Udslload
	Udstload
	Dfload
	Ddload
	Deload

	// Stores
	Istore
	Lstore
	Fstore
	Dstore
	Pdstore
	Zdstore
	Zdslestore
	Zdslsstore
	Zdstsstore
	Udstore
	Udslstore
	Udststore
	Dfstore
	Ddstore
	Destore

	// BCD conversions
	Pd2zd
	Zd2pd
	Pd2ud
	Ud2pd
	Pd2udsl
	Pd2udst
	Udsl2pd
	Udst2pd
	Udsl2ud
	Udst2ud
	Pd2zdsls
	Pd2zdsts
	Zdsls2pd
	Zdsts2pd
	Zd2zdsle
	Zdsle2zd
	Zdsle2pd
	Zd2zdsls
	Zd2zdsts
	Zdsls2zd
	Zdsts2zd

	// BCD conversions that also set the sign
	Pd2zdslsSetSign
	Pd2zdstsSetSign
	Zd2zdslsSetSign
	Zd2zdstsSetSign
	Pd2udslSetSign
	Pd2udstSetSign
	Zdsls2pdSetSign
	Zdsts2pdSetSign
	Udsl2pdSetSign
	Udst2pdSetSign
	Zdsle2zdSetSign

	// Binary and BCD conversions
	I2pd
	L2pd
	Iu2pd
	Lu2pd
	Pd2i
	Pd2l
	Pd2iu
	Pd2lu
	F2pd
	D2pd
	Pd2f
	Pd2d

	// Packed operations
	Pdshl
	Pdshr
	PdshlSetSign
	PdshrSetSign
	PdshlOverflow
	PdSetSign
	ZdSetSign
	Pdclean
	Pdclear
	PdclearSetSign
	PdModifyPrecision
	ZdModifyPrecision
	Pdadd
	Pdsub
	Pdmul
	Pddiv
	Pdneg

	// DFP conversions
	Df2pd
	Dd2pd
	De2pd
	Df2pdSetSign
	Dd2pdSetSign
	De2pdSetSign
	Df2pdClean
	Dd2pdClean
	De2pdClean
	Pd2df
	Pd2dd
	Pd2de
	Pd2dfAbs
	Pd2ddAbs
	Pd2deAbs
	Zd2df
	Zd2dd
	Zd2de
	Zd2dfAbs
	Zd2ddAbs
	Zd2deAbs
	Df2zd
	Dd2zd
	De2zd
	Df2zdSetSign
	Dd2zdSetSign
	De2zdSetSign
	Df2zdClean
	Dd2zdClean
	De2zdClean
	Df2i
	Dd2i
	De2i
	Df2l
	Dd2l
	De2l
	I2df
	I2dd
	I2de
	L2df
	L2dd
	L2de
	Df2dd
	Df2de
	Dd2df
	Dd2de
	De2df
	De2dd

	// DFP operations
	Dfabs
	Ddabs
	Deabs
	DfSetNegative
	DdSetNegative
	DeSetNegative
	Dfclean
	Ddclean
	Declean
	Dfshl
	Ddshl
	Deshl
	Dfshr
	Ddshr
	Deshr
	DfshrRounded
	DdshrRounded
	DeshrRounded
	DfModifyPrecision
	DdModifyPrecision
	DeModifyPrecision
	Dfadd
	Ddadd
	Deadd
	Dfsub
	Ddsub
	Desub
	Dfmul
	Ddmul
	Demul
	Dfdiv
	Dddiv
	Dediv
	Dffloor
	Ddfloor
	Defloor
	Dfcmpeq
	Ddcmpeq
	Decmpeq
	Dfcmpne
	Ddcmpne
	Decmpne
	Dfcmplt
	Ddcmplt
	Decmplt
	Dfcmpge
	Ddcmpge
	Decmpge
	Dfcmpgt
	Ddcmpgt
	Decmpgt
	Dfcmple
	Ddcmple
	Decmple

	// Binary operations
	Iadd
	Isub
	Irem
	Lrem
	Ineg
	Lneg
	Iabs
	Labs
	I2l
	L2i

	numOps
)

type opProps uint32

const (
	propConversion opProps = 1 << iota
	propLeftShift
	propRightShift
	propSetSign
	propSetSignOnNode
	propModifyPrecision
	propClean
	propAdd
	propSub
	propMul
	propDiv
	propNeg
	propAbs
	propRem
	propFloor
	propLoad
	propLoadConst
	propStore
	propCompare
	propUnsigned
	propClear
	propOverflow
)

type opInfo struct {
	name  string
	typ   DataType // result type
	src   DataType // operand type of conversions
	arity int
	props opProps
	sign  int // set sign value child index
}

var opTable [numOps]opInfo

var opNames = make(map[string]Op)

// dfpTypes is indexed by the offset of a DFP family member.
var dfpTypes = [3]DataType{DecimalFloat, DecimalDouble, DecimalLongDouble}

func def(op Op, name string, typ, src DataType, arity int, props opProps) {
	sign := -1
	switch {
	case props&propSetSign == 0:
	case props&propRightShift != 0:
		sign = 3
	case props&propLeftShift != 0:
		sign = 2
	default:
		sign = 1
	}
	opTable[op] = opInfo{name, typ, src, arity, props, sign}
	opNames[name] = op
}

func dfpOffset(t DataType) Op {
	for k, dt := range dfpTypes {
		if dt == t {
			return Op(k)
		}
	}
	panic(fmt.Sprintf("ir: %v is not a DFP type", t))
}

func init() {
	def(Iconst, "iconst", Int32, NoType, 0, propLoadConst)
	def(Lconst, "lconst", Int64, NoType, 0, propLoadConst)
	def(Pdconst, "pdconst", PackedDecimal, NoType, 0, propLoadConst)

	memTypes := []struct {
		load, store Op
		t           DataType
	}{
		{Iload, Istore, Int32},
		{Lload, Lstore, Int64},
		{Fload, Fstore, Float},
		{Dload, Dstore, Double},
		{Pdload, Pdstore, PackedDecimal},
		{Zdload, Zdstore, ZonedDecimal},
		{Zdsleload, Zdslestore, ZonedDecimalSignLeadingEmbedded},
		{Zdslsload, Zdslsstore, ZonedDecimalSignLeadingSeparate},
		{Zdstsload, Zdstsstore, ZonedDecimalSignTrailingSeparate},
		{Udload, Udstore, UnicodeDecimal},
		{Udslload, Udslstore, UnicodeDecimalSignLeading},
		{Udstload, Udststore, UnicodeDecimalSignTrailing},
		{Dfload, Dfstore, DecimalFloat},
		{Ddload, Ddstore, DecimalDouble},
		{Deload, Destore, DecimalLongDouble},
	}
	for _, m := range memTypes {
		def(m.load, typePrefix(m.t)+"load", m.t, NoType, 0, propLoad)
		def(m.store, typePrefix(m.t)+"store", NoType, m.t, 1, propStore)
	}

	convs := []struct {
		op       Op
		src, dst DataType
		props    opProps
	}{
		{Pd2zd, PackedDecimal, ZonedDecimal, 0},
		{Zd2pd, ZonedDecimal, PackedDecimal, 0},
		{Pd2ud, PackedDecimal, UnicodeDecimal, 0},
		{Ud2pd, UnicodeDecimal, PackedDecimal, 0},
		{Pd2udsl, PackedDecimal, UnicodeDecimalSignLeading, 0},
		{Pd2udst, PackedDecimal, UnicodeDecimalSignTrailing, 0},
		{Udsl2pd, UnicodeDecimalSignLeading, PackedDecimal, 0},
		{Udst2pd, UnicodeDecimalSignTrailing, PackedDecimal, 0},
		{Udsl2ud, UnicodeDecimalSignLeading, UnicodeDecimal, 0},
		{Udst2ud, UnicodeDecimalSignTrailing, UnicodeDecimal, 0},
		{Pd2zdsls, PackedDecimal, ZonedDecimalSignLeadingSeparate, 0},
		{Pd2zdsts, PackedDecimal, ZonedDecimalSignTrailingSeparate, 0},
		{Zdsls2pd, ZonedDecimalSignLeadingSeparate, PackedDecimal, 0},
		{Zdsts2pd, ZonedDecimalSignTrailingSeparate, PackedDecimal, 0},
		{Zd2zdsle, ZonedDecimal, ZonedDecimalSignLeadingEmbedded, 0},
		{Zdsle2zd, ZonedDecimalSignLeadingEmbedded, ZonedDecimal, 0},
		{Zdsle2pd, ZonedDecimalSignLeadingEmbedded, PackedDecimal, 0},
		{Zd2zdsls, ZonedDecimal, ZonedDecimalSignLeadingSeparate, 0},
		{Zd2zdsts, ZonedDecimal, ZonedDecimalSignTrailingSeparate, 0},
		{Zdsls2zd, ZonedDecimalSignLeadingSeparate, ZonedDecimal, 0},
		{Zdsts2zd, ZonedDecimalSignTrailingSeparate, ZonedDecimal, 0},

		{I2pd, Int32, PackedDecimal, 0},
		{L2pd, Int64, PackedDecimal, 0},
		{Iu2pd, Int32, PackedDecimal, propUnsigned},
		{Lu2pd, Int64, PackedDecimal, propUnsigned},
		{Pd2i, PackedDecimal, Int32, 0},
		{Pd2l, PackedDecimal, Int64, 0},
		{Pd2iu, PackedDecimal, Int32, propUnsigned},
		{Pd2lu, PackedDecimal, Int64, propUnsigned},
		{F2pd, Float, PackedDecimal, 0},
		{D2pd, Double, PackedDecimal, 0},
		{Pd2f, PackedDecimal, Float, 0},
		{Pd2d, PackedDecimal, Double, 0},
		{I2l, Int32, Int64, 0},
		{L2i, Int64, Int32, 0},
	}
	for _, c := range convs {
		name := typePrefix(c.src) + "2" + typePrefix(c.dst)
		if c.props&propUnsigned != 0 {
			name = unsignedName(c.src, c.dst)
		}
		def(c.op, name, c.dst, c.src, 1, propConversion|c.props)
	}
	setSignConvs := []struct{ op, plain Op }{
		{Pd2zdslsSetSign, Pd2zdsls},
		{Pd2zdstsSetSign, Pd2zdsts},
		{Zd2zdslsSetSign, Zd2zdsls},
		{Zd2zdstsSetSign, Zd2zdsts},
		{Pd2udslSetSign, Pd2udsl},
		{Pd2udstSetSign, Pd2udst},
		{Zdsls2pdSetSign, Zdsls2pd},
		{Zdsts2pdSetSign, Zdsts2pd},
		{Udsl2pdSetSign, Udsl2pd},
		{Udst2pdSetSign, Udst2pd},
		{Zdsle2zdSetSign, Zdsle2zd},
	}
	for _, c := range setSignConvs {
		plain := opTable[c.plain]
		def(c.op, plain.name+"SetSign", plain.typ, plain.src, 2, propConversion|propSetSign)
		setSignVersions[c.plain] = c.op
	}

	pd := PackedDecimal
	def(Pdshl, "pdshl", pd, NoType, 2, propLeftShift)
	def(Pdshr, "pdshr", pd, NoType, 3, propRightShift)
	def(PdshlSetSign, "pdshlSetSign", pd, NoType, 3, propLeftShift|propSetSign)
	def(PdshrSetSign, "pdshrSetSign", pd, NoType, 4, propRightShift|propSetSign)
	def(PdshlOverflow, "pdshlOverflow", pd, NoType, 2, propLeftShift|propOverflow)
	def(PdSetSign, "pdSetSign", pd, NoType, 2, propSetSign)
	def(ZdSetSign, "zdSetSign", ZonedDecimal, NoType, 2, propSetSign)
	def(Pdclean, "pdclean", pd, NoType, 1, propClean)
	def(Pdclear, "pdclear", pd, NoType, 3, propClear)
	def(PdclearSetSign, "pdclearSetSign", pd, NoType, 3, propClear|propSetSignOnNode)
	def(PdModifyPrecision, "pdModifyPrecision", pd, NoType, 1, propModifyPrecision)
	def(ZdModifyPrecision, "zdModifyPrecision", ZonedDecimal, NoType, 1, propModifyPrecision)
	def(Pdadd, "pdadd", pd, NoType, 2, propAdd)
	def(Pdsub, "pdsub", pd, NoType, 2, propSub)
	def(Pdmul, "pdmul", pd, NoType, 2, propMul)
	def(Pddiv, "pddiv", pd, NoType, 2, propDiv)
	def(Pdneg, "pdneg", pd, NoType, 1, propNeg)
	setSignVersions[Pdshl] = PdshlSetSign
	setSignVersions[Pdshr] = PdshrSetSign
	setSignVersions[Pdclear] = PdclearSetSign

	for k, t := range dfpTypes {
		off := Op(k)
		x := typePrefix(t)
		def(Dfconst+off, x+"const", t, NoType, 0, propLoadConst)
		def(Df2pd+off, x+"2pd", pd, t, 1, propConversion)
		def(Df2pdSetSign+off, x+"2pdSetSign", pd, t, 1, propConversion|propSetSignOnNode)
		def(Df2pdClean+off, x+"2pdClean", pd, t, 1, propConversion|propClean)
		def(Pd2df+off, "pd2"+x, t, pd, 1, propConversion)
		def(Pd2dfAbs+off, "pd2"+x+"Abs", t, pd, 1, propConversion|propAbs)
		def(Zd2df+off, "zd2"+x, t, ZonedDecimal, 1, propConversion)
		def(Zd2dfAbs+off, "zd2"+x+"Abs", t, ZonedDecimal, 1, propConversion|propAbs)
		def(Df2zd+off, x+"2zd", ZonedDecimal, t, 1, propConversion)
		def(Df2zdSetSign+off, x+"2zdSetSign", ZonedDecimal, t, 1, propConversion|propSetSignOnNode)
		def(Df2zdClean+off, x+"2zdClean", ZonedDecimal, t, 1, propConversion|propClean)
		def(Df2i+off, x+"2i", Int32, t, 1, propConversion)
		def(Df2l+off, x+"2l", Int64, t, 1, propConversion)
		def(I2df+off, "i2"+x, t, Int32, 1, propConversion)
		def(L2df+off, "l2"+x, t, Int64, 1, propConversion)
		def(Dfabs+off, x+"abs", t, NoType, 1, propAbs)
		def(DfSetNegative+off, x+"SetNegative", t, NoType, 1, propSetSignOnNode)
		def(Dfclean+off, x+"clean", t, NoType, 1, propClean)
		def(Dfshl+off, x+"shl", t, NoType, 2, propLeftShift)
		def(Dfshr+off, x+"shr", t, NoType, 2, propRightShift)
		def(DfshrRounded+off, x+"shrRounded", t, NoType, 3, propRightShift)
		def(DfModifyPrecision+off, x+"ModifyPrecision", t, NoType, 1, propModifyPrecision)
		def(Dfadd+off, x+"add", t, NoType, 2, propAdd)
		def(Dfsub+off, x+"sub", t, NoType, 2, propSub)
		def(Dfmul+off, x+"mul", t, NoType, 2, propMul)
		def(Dfdiv+off, x+"div", t, NoType, 2, propDiv)
		def(Dffloor+off, x+"floor", t, NoType, 1, propFloor)
		def(Dfcmpeq+off, x+"cmpeq", Int32, t, 2, propCompare)
		def(Dfcmpne+off, x+"cmpne", Int32, t, 2, propCompare)
		def(Dfcmplt+off, x+"cmplt", Int32, t, 2, propCompare)
		def(Dfcmpge+off, x+"cmpge", Int32, t, 2, propCompare)
		def(Dfcmpgt+off, x+"cmpgt", Int32, t, 2, propCompare)
		def(Dfcmple+off, x+"cmple", Int32, t, 2, propCompare)
		setSignVersions[Df2pd+off] = Df2pdSetSign + off
		setSignVersions[Df2zd+off] = Df2zdSetSign + off
	}
	dfp2dfp := []struct {
		op       Op
		src, dst DataType
	}{
		{Df2dd, DecimalFloat, DecimalDouble},
		{Df2de, DecimalFloat, DecimalLongDouble},
		{Dd2df, DecimalDouble, DecimalFloat},
		{Dd2de, DecimalDouble, DecimalLongDouble},
		{De2df, DecimalLongDouble, DecimalFloat},
		{De2dd, DecimalLongDouble, DecimalDouble},
	}
	for _, c := range dfp2dfp {
		def(c.op, typePrefix(c.src)+"2"+typePrefix(c.dst), c.dst, c.src, 1, propConversion)
	}

	def(Iadd, "iadd", Int32, NoType, 2, propAdd)
	def(Isub, "isub", Int32, NoType, 2, propSub)
	def(Irem, "irem", Int32, NoType, 2, propRem)
	def(Lrem, "lrem", Int64, NoType, 2, propRem)
	def(Ineg, "ineg", Int32, NoType, 1, propNeg)
	def(Lneg, "lneg", Int64, NoType, 1, propNeg)
	def(Iabs, "iabs", Int32, NoType, 1, propAbs)
	def(Labs, "labs", Int64, NoType, 1, propAbs)

	for op := BadOp + 1; op < numOps; op++ {
		info := opTable[op]
		if info.name == "" {
			panic(fmt.Sprintf("ir: op %d has no table entry", op))
		}
		if info.props&propConversion != 0 && info.props&(propSetSign|propSetSignOnNode|propClean|propAbs) == 0 {
			conversions[convKey{info.src, info.typ, info.props&propUnsigned != 0}] = op
		}
	}
}

var setSignVersions = make(map[Op]Op)

type convKey struct {
	src, dst DataType
	unsigned bool
}

var conversions = make(map[convKey]Op)

func typePrefix(t DataType) string {
	switch t {
	case Int32:
		return "i"
	case Int64:
		return "l"
	case Float:
		return "f"
	case Double:
		return "d"
	}
	return t.String()
}

// unsignedName names an unsigned binary conversion, with the u after
// the binary type.
func unsignedName(src, dst DataType) string {
	if src.IsIntegral() {
		return typePrefix(src) + "u2" + typePrefix(dst)
	}
	return typePrefix(src) + "2" + typePrefix(dst) + "u"
}

// LookupOp returns the op with the given mnemonic.
func LookupOp(name string) (Op, bool) {
	op, ok := opNames[name]
	return op, ok
}

func (op Op) String() string {
	if op > BadOp && op < numOps {
		return opTable[op].name
	}
	return "illegal"
}

// Type returns the result type of the op.
func (op Op) Type() DataType { return opTable[op].typ }

// SourceType returns the operand type of a conversion, compare, or
// store.
func (op Op) SourceType() DataType { return opTable[op].src }

// Arity returns the number of children of a node with the op.
func (op Op) Arity() int { return opTable[op].arity }

func (op Op) has(p opProps) bool { return opTable[op].props&p != 0 }

func (op Op) IsConversion() bool { return op.has(propConversion) }
func (op Op) IsShift() bool { return op.has(propLeftShift | propRightShift) }
func (op Op) IsLeftShift() bool { return op.has(propLeftShift) }
func (op Op) IsRightShift() bool { return op.has(propRightShift) }
func (op Op) IsSetSign() bool { return op.has(propSetSign) }
func (op Op) IsSetSignOnNode() bool { return op.has(propSetSignOnNode) }
func (op Op) IsModifyPrecision() bool { return op.has(propModifyPrecision) }
func (op Op) IsClean() bool { return op.has(propClean) }
func (op Op) IsAdd() bool { return op.has(propAdd) }
func (op Op) IsSub() bool { return op.has(propSub) }
func (op Op) IsMul() bool { return op.has(propMul) }
func (op Op) IsDiv() bool { return op.has(propDiv) }
func (op Op) IsNeg() bool { return op.has(propNeg) }
func (op Op) IsAbs() bool { return op.has(propAbs) }
func (op Op) IsRem() bool { return op.has(propRem) }
func (op Op) IsFloor() bool { return op.has(propFloor) }
func (op Op) IsLoad() bool { return op.has(propLoad) }
func (op Op) IsLoadConst() bool { return op.has(propLoadConst) }
func (op Op) IsStore() bool { return op.has(propStore) }
func (op Op) IsCompare() bool { return op.has(propCompare) }
func (op Op) IsUnsigned() bool { return op.has(propUnsigned) }
func (op Op) IsClear() bool { return op.has(propClear) }

// IsArithmetic returns whether the op is add, sub, mul, div, or neg.
func (op Op) IsArithmetic() bool {
	return op.has(propAdd | propSub | propMul | propDiv | propNeg)
}

// IsPackedShift returns whether the op is a packed decimal shift.
func (op Op) IsPackedShift() bool { return op.IsShift() && op.Type() == PackedDecimal }

// IsPackedLeftShift returns whether the op is a packed left shift.
func (op Op) IsPackedLeftShift() bool { return op.IsLeftShift() && op.Type() == PackedDecimal }

// IsPackedRightShift returns whether the op is a packed right shift.
func (op Op) IsPackedRightShift() bool { return op.IsRightShift() && op.Type() == PackedDecimal }

// IsPackedModifyPrecision returns whether the op is pdModifyPrecision.
func (op Op) IsPackedModifyPrecision() bool { return op == PdModifyPrecision }

// IsOverflowShift returns whether the op is a shift that traps on
// overflow.
func (op Op) IsOverflowShift() bool { return op.has(propOverflow) }

// SetSignValueIndex returns the index of the set sign value child, or
// -1 when the op does not take one.
func (op Op) SetSignValueIndex() int { return opTable[op].sign }

// SetSignVersion returns the op that additionally sets the sign, or
// BadOp.
func (op Op) SetSignVersion() Op { return setSignVersions[op] }

// ConversionOp returns the plain conversion from src to dst, or BadOp.
func ConversionOp(src, dst DataType, unsigned bool) Op {
	if op, ok := conversions[convKey{src, dst, unsigned}]; ok {
		return op
	}
	if unsigned {
		return conversions[convKey{src, dst, false}]
	}
	return BadOp
}

// InverseOp returns the conversion that undoes op, or BadOp.
func (op Op) InverseOp() Op {
	if !op.IsConversion() || op.has(propSetSign|propSetSignOnNode|propClean|propAbs) {
		return BadOp
	}
	return ConversionOp(op.Type(), op.SourceType(), op.IsUnsigned())
}

// CleanOp returns the sign cleaning op of a type, or BadOp.
func CleanOp(t DataType) Op {
	switch {
	case t == PackedDecimal:
		return Pdclean
	case t.IsDFP():
		return Dfclean + dfpOffset(t)
	}
	return BadOp
}

// ModifyPrecisionOp returns the precision changing op of a type, or
// BadOp.
func ModifyPrecisionOp(t DataType) Op {
	switch {
	case t == PackedDecimal:
		return PdModifyPrecision
	case t == ZonedDecimal:
		return ZdModifyPrecision
	case t.IsDFP():
		return DfModifyPrecision + dfpOffset(t)
	}
	return BadOp
}

// SetSignOp returns the basic set sign op of a type, or BadOp.
func SetSignOp(t DataType) Op {
	switch t {
	case PackedDecimal:
		return PdSetSign
	case ZonedDecimal:
		return ZdSetSign
	}
	return BadOp
}

// AbsOp returns the absolute value op of a type, or BadOp.
func AbsOp(t DataType) Op {
	switch {
	case t == Int32:
		return Iabs
	case t == Int64:
		return Labs
	case t.IsDFP():
		return Dfabs + dfpOffset(t)
	}
	return BadOp
}

// NegOp returns the negation op of a type, or BadOp.
func NegOp(t DataType) Op {
	switch t {
	case Int32:
		return Ineg
	case Int64:
		return Lneg
	case PackedDecimal:
		return Pdneg
	}
	return BadOp
}

// RemOp returns the remainder op of a type, or BadOp.
func RemOp(t DataType) Op {
	switch t {
	case Int32:
		return Irem
	case Int64:
		return Lrem
	}
	return BadOp
}

// ConstOp returns the constant op of a type, or BadOp.
func ConstOp(t DataType) Op {
	switch {
	case t == Int32:
		return Iconst
	case t == Int64:
		return Lconst
	case t == PackedDecimal:
		return Pdconst
	case t.IsDFP():
		return Dfconst + dfpOffset(t)
	}
	return BadOp
}

// DFPShiftOp returns the DFP left or right shift of a type.
func DFPShiftOp(t DataType, left bool) Op {
	if left {
		return Dfshl + dfpOffset(t)
	}
	return Dfshr + dfpOffset(t)
}

// DFPShiftRightRoundedOp returns the rounding DFP right shift of a type.
func DFPShiftRightRoundedOp(t DataType) Op { return DfshrRounded + dfpOffset(t) }

// DFPToPackedSetSignOp returns the DFP to packed conversion that sets
// the sign.
func DFPToPackedSetSignOp(t DataType) Op { return Df2pdSetSign + dfpOffset(t) }

// DFPToPackedCleanOp returns the DFP to packed conversion that cleans
// the sign.
func DFPToPackedCleanOp(t DataType) Op { return Df2pdClean + dfpOffset(t) }

// DFPToZonedSetSignOp returns the DFP to zoned conversion that sets the
// sign.
func DFPToZonedSetSignOp(t DataType) Op { return Df2zdSetSign + dfpOffset(t) }

// DFPToZonedCleanOp returns the DFP to zoned conversion that cleans the
// sign.
func DFPToZonedCleanOp(t DataType) Op { return Df2zdClean + dfpOffset(t) }

// PackedToDFPAbsOp returns the packed to DFP conversion that drops the
// sign, or BadOp.
func PackedToDFPAbsOp(src, dst DataType) Op {
	if src != PackedDecimal || !dst.IsDFP() {
		return BadOp
	}
	return Pd2dfAbs + dfpOffset(dst)
}

// ZonedToDFPAbsOp returns the zoned to DFP conversion that drops the
// sign, or BadOp.
func ZonedToDFPAbsOp(src, dst DataType) Op {
	if src != ZonedDecimal || !dst.IsDFP() {
		return BadOp
	}
	return Zd2dfAbs + dfpOffset(dst)
}

// DFPCompareOp returns the compare family member of a DFP type.
func DFPCompareOp(cmp Op, t DataType) Op {
	if !cmp.IsCompare() {
		return BadOp
	}
	return cmp - dfpOffset(cmp.SourceType()) + dfpOffset(t)
}

// AlwaysGeneratedSign returns the sign code every result of op carries,
// or IgnoredSignCode.
func (op Op) AlwaysGeneratedSign() int {
	if op == Ud2pd {
		return PreferredPlusCode
	}
	return IgnoredSignCode
}

// AlwaysGeneratesKnownPositiveCleanSign returns whether every result of
// op has the preferred plus sign.
func (op Op) AlwaysGeneratesKnownPositiveCleanSign() bool {
	return op.AlwaysGeneratedSign() == PreferredPlusCode
}
