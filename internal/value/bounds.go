package value

import "math"

// MinValue and MaxValue give the domain edges for a numeric Type, used by
// the PossibleValue range algebra's complement to bound an unbounded tail
// at the type's actual representable range instead of true infinity.
func MinValue(t Type) Value {
	switch t.Kind {
	case KindUnsigned8, KindUnsigned16, KindUnsigned32, KindUnsigned64, KindUnsigned128:
		return Default(t)
	case KindSigned8:
		return I8(math.MinInt8)
	case KindSigned16:
		return I16(math.MinInt16)
	case KindSigned32:
		return I32(math.MinInt32)
	case KindSigned64:
		return I64(math.MinInt64)
	case KindFloat32:
		return F32(-math.MaxFloat32)
	case KindFloat64:
		return F64(-math.MaxFloat64)
	default:
		return Default(t)
	}
}

func MaxValue(t Type) Value {
	switch t.Kind {
	case KindUnsigned8:
		return U8(math.MaxUint8)
	case KindUnsigned16:
		return U16(math.MaxUint16)
	case KindUnsigned32:
		return U32(math.MaxUint32)
	case KindUnsigned64:
		return U64(math.MaxUint64)
	case KindSigned8:
		return I8(math.MaxInt8)
	case KindSigned16:
		return I16(math.MaxInt16)
	case KindSigned32:
		return I32(math.MaxInt32)
	case KindSigned64:
		return I64(math.MaxInt64)
	case KindFloat32:
		return F32(math.MaxFloat32)
	case KindFloat64:
		return F64(math.MaxFloat64)
	default:
		return Default(t)
	}
}
