package value

import (
	"fmt"
	"math"
)

// typeMismatch mirrors the stack-arity/type-mismatch message style the
// original source panics with, turned into ordinary Go errors so the
// executor can fold them into a VM Exception instead of crashing the
// process.
func typeMismatch(op string, a, b Value) error {
	return fmt.Errorf("TypeMismatch: operator %q is not defined for %s and %s", op, a.Kind, b.Kind)
}

func typeMismatch1(op string, a Value) error {
	return fmt.Errorf("TypeMismatch: operator %q is not defined for %s", op, a.Kind)
}

// promote widens a and b to a common Kind using Widen, then re-expresses
// both values at that Kind. Character/String concatenation and the boolean
// operators bypass this and are handled before promote is ever called.
func promote(a, b Value) (Value, Value, Kind, bool) {
	k, ok := Widen(a.Kind, b.Kind)
	if !ok {
		return a, b, k, false
	}
	return cast(a, k), cast(b, k), k, true
}

// cast re-expresses a numeric Value at a wider Kind; it is only ever used
// internally by promote and never exposed as a user-facing conversion
// instruction (Hydro has none).
func cast(v Value, k Kind) Value {
	if v.Kind == k {
		return v
	}
	f := asFloat64(v)
	i := asInt64(v)
	u := asUint64(v)
	switch k {
	case KindUnsigned8:
		return U8(uint8(u))
	case KindUnsigned16:
		return U16(uint16(u))
	case KindUnsigned32:
		return U32(uint32(u))
	case KindUnsigned64:
		return U64(u)
	case KindSigned8:
		return I8(int8(i))
	case KindSigned16:
		return I16(int16(i))
	case KindSigned32:
		return I32(int32(i))
	case KindSigned64:
		return I64(i)
	case KindFloat32:
		return F32(float32(f))
	case KindFloat64:
		return F64(f)
	case KindUnsigned128:
		return Value{Kind: KindUnsigned128, U128: widenToU128(v)}
	case KindSigned128:
		return Value{Kind: KindSigned128, I128: widenToI128(v)}
	default:
		return v
	}
}

// widenToU128/widenToI128 handle the only direction cast ever needs for
// 128-bit kinds: Widen always names Unsigned128/Signed128 as the wider of
// two operand kinds, so cast only ever widens *up* into one, never narrows
// one down. A negative narrower signed value sign-extends into Hi so its
// magnitude is preserved once widened.
func widenToU128(v Value) U128 {
	if isSignedKind(v.Kind) {
		i := asInt64(v)
		if i < 0 {
			return U128{Hi: ^uint64(0), Lo: uint64(i)}
		}
		return U128{Lo: uint64(i)}
	}
	return U128{Lo: asUint64(v)}
}

func widenToI128(v Value) I128 {
	u := widenToU128(v)
	return I128{Hi: u.Hi, Lo: u.Lo}
}

func asFloat64(v Value) float64 {
	switch v.Kind {
	case KindUnsigned8:
		return float64(v.U8)
	case KindUnsigned16:
		return float64(v.U16)
	case KindUnsigned32:
		return float64(v.U32)
	case KindUnsigned64:
		return float64(v.U64)
	case KindSigned8:
		return float64(v.I8)
	case KindSigned16:
		return float64(v.I16)
	case KindSigned32:
		return float64(v.I32)
	case KindSigned64:
		return float64(v.I64)
	case KindFloat32:
		return float64(v.F32)
	case KindFloat64:
		return v.F64
	default:
		return 0
	}
}

// asInt64/asUint64 take the low 64 bits of a 128-bit operand. No literal
// path constructs a 128-bit value with a nonzero Hi half (see widenToU128),
// so this is exact today; it stays a documented truncation for whenever one
// does exist, matching the narrowing every other case here already performs.
func asInt64(v Value) int64 {
	switch v.Kind {
	case KindUnsigned8:
		return int64(v.U8)
	case KindUnsigned16:
		return int64(v.U16)
	case KindUnsigned32:
		return int64(v.U32)
	case KindUnsigned64:
		return int64(v.U64)
	case KindUnsigned128:
		return int64(v.U128.Lo)
	case KindSigned8:
		return int64(v.I8)
	case KindSigned16:
		return int64(v.I16)
	case KindSigned32:
		return int64(v.I32)
	case KindSigned64:
		return v.I64
	case KindSigned128:
		return int64(v.I128.Lo)
	case KindFloat32:
		return int64(v.F32)
	case KindFloat64:
		return int64(v.F64)
	default:
		return 0
	}
}

func asUint64(v Value) uint64 {
	switch v.Kind {
	case KindUnsigned8:
		return uint64(v.U8)
	case KindUnsigned16:
		return uint64(v.U16)
	case KindUnsigned32:
		return uint64(v.U32)
	case KindUnsigned64:
		return v.U64
	case KindUnsigned128:
		return v.U128.Lo
	case KindSigned128:
		return v.I128.Lo
	case KindSigned8:
		return uint64(v.I8)
	case KindSigned16:
		return uint64(v.I16)
	case KindSigned32:
		return uint64(v.I32)
	case KindSigned64:
		return uint64(v.I64)
	default:
		return uint64(asInt64(v))
	}
}

// Add implements spec section 4.1's Add, including Character/String
// concatenation alongside numeric addition.
func Add(a, b Value) (Value, error) {
	switch {
	case a.Kind == KindCharacter && b.Kind == KindCharacter:
		return Str(string(a.Char) + string(b.Char)), nil
	case a.Kind == KindCharacter && b.Kind == KindString:
		return Str(string(a.Char) + b.Str), nil
	case a.Kind == KindString && b.Kind == KindCharacter:
		return Str(a.Str + string(b.Char)), nil
	case a.Kind == KindString && b.Kind == KindString:
		return Str(a.Str + b.Str), nil
	}
	return numericOp("+", a, b, func(x, y Value, k Kind) Value { return floatOrWrapping(k, x, y, wrapAdd, func(p, q float64) float64 { return p + q }) })
}

func Sub(a, b Value) (Value, error) {
	return numericOp("-", a, b, func(x, y Value, k Kind) Value { return floatOrWrapping(k, x, y, wrapSub, func(p, q float64) float64 { return p - q }) })
}

func Mul(a, b Value) (Value, error) {
	return numericOp("*", a, b, func(x, y Value, k Kind) Value { return floatOrWrapping(k, x, y, wrapMul, func(p, q float64) float64 { return p * q }) })
}

func Div(a, b Value) (Value, error) {
	if isZero(b) {
		return Value{}, fmt.Errorf("DivisionByZero: cannot divide %s by zero", a.Kind)
	}
	return numericOp("/", a, b, divOp)
}

func Mod(a, b Value) (Value, error) {
	if isZero(b) {
		return Value{}, fmt.Errorf("DivisionByZero: cannot compute remainder of %s modulo zero", a.Kind)
	}
	return numericOp("%", a, b, modOp)
}

func isZero(v Value) bool {
	switch v.Kind {
	case KindFloat32:
		return v.F32 == 0
	case KindFloat64:
		return v.F64 == 0
	case KindUnsigned128:
		return v.U128 == U128{}
	case KindSigned128:
		return v.I128 == I128{}
	default:
		return asUint64(v) == 0 && asInt64(v) == 0
	}
}

func numericOp(op string, a, b Value, f func(a, b Value, k Kind) Value) (Value, error) {
	pa, pb, k, ok := promote(a, b)
	if !ok {
		return Value{}, typeMismatch(op, a, b)
	}
	return f(pa, pb, k), nil
}

func divOp(a, b Value, k Kind) Value {
	if k == KindFloat32 {
		return F32(a.F32 / b.F32)
	}
	if k == KindFloat64 {
		return F64(a.F64 / b.F64)
	}
	if isSignedKind(k) {
		return castFromInt64(k, asInt64(a)/asInt64(b))
	}
	return castFromUint64(k, asUint64(a)/asUint64(b))
}

func modOp(a, b Value, k Kind) Value {
	if k == KindFloat32 {
		return F32(float32(math.Mod(float64(a.F32), float64(b.F32))))
	}
	if k == KindFloat64 {
		return F64(math.Mod(a.F64, b.F64))
	}
	if isSignedKind(k) {
		return castFromInt64(k, asInt64(a)%asInt64(b))
	}
	return castFromUint64(k, asUint64(a)%asUint64(b))
}

type wrapFn func(k Kind, a, b uint64) uint64

func wrapAdd(k Kind, a, b uint64) uint64 { return maskTo(k, a+b) }
func wrapSub(k Kind, a, b uint64) uint64 { return maskTo(k, a-b) }
func wrapMul(k Kind, a, b uint64) uint64 { return maskTo(k, a*b) }

func maskTo(k Kind, v uint64) uint64 {
	switch widthOf(k) {
	case 8:
		return v & 0xff
	case 16:
		return v & 0xffff
	case 32:
		return v & 0xffffffff
	default:
		return v
	}
}

func floatOrWrapping(k Kind, a, b Value, f wrapFn, ff func(a, b float64) float64) Value {
	switch k {
	case KindFloat32:
		return F32(float32(ff(float64(a.F32), float64(b.F32))))
	case KindFloat64:
		return F64(ff(a.F64, b.F64))
	}
	if isSignedKind(k) {
		r := f(k, asUint64(a), asUint64(b))
		return castFromInt64(k, signExtend(k, r))
	}
	return castFromUint64(k, f(k, asUint64(a), asUint64(b)))
}

func signExtend(k Kind, v uint64) int64 {
	switch widthOf(k) {
	case 8:
		return int64(int8(v))
	case 16:
		return int64(int16(v))
	case 32:
		return int64(int32(v))
	default:
		return int64(v)
	}
}

func castFromInt64(k Kind, v int64) Value {
	switch k {
	case KindSigned8:
		return I8(int8(v))
	case KindSigned16:
		return I16(int16(v))
	case KindSigned32:
		return I32(int32(v))
	case KindSigned64:
		return I64(v)
	default:
		return I64(v)
	}
}

func castFromUint64(k Kind, v uint64) Value {
	switch k {
	case KindUnsigned8:
		return U8(uint8(v))
	case KindUnsigned16:
		return U16(uint16(v))
	case KindUnsigned32:
		return U32(uint32(v))
	case KindUnsigned64:
		return U64(v)
	default:
		return U64(v)
	}
}

// ShiftLeft/ShiftRight/BitAnd/BitOr/BitXor only accept an Unsigned8 shift
// amount / same-kind RHS, matching the original source's explicit pairing.
func ShiftLeft(a, b Value) (Value, error) {
	if b.Kind != KindUnsigned8 {
		return Value{}, typeMismatch("<<", a, b)
	}
	return shiftOp(a, b.U8, func(v uint64, n uint8) uint64 { return v << n })
}

func ShiftRight(a, b Value) (Value, error) {
	if b.Kind != KindUnsigned8 {
		return Value{}, typeMismatch(">>", a, b)
	}
	return shiftOp(a, b.U8, func(v uint64, n uint8) uint64 { return v >> n })
}

func shiftOp(a Value, n uint8, f func(uint64, uint8) uint64) (Value, error) {
	if !isSignedKind(a.Kind) && !isUnsignedKind(a.Kind) {
		return Value{}, typeMismatch1("shift", a)
	}
	if isSignedKind(a.Kind) {
		r := f(maskTo(a.Kind, uint64(asInt64(a))), n)
		return castFromInt64(a.Kind, signExtend(a.Kind, r)), nil
	}
	return castFromUint64(a.Kind, maskTo(a.Kind, f(asUint64(a), n))), nil
}

func BitAnd(a, b Value) (Value, error) { return bitOp("&", a, b, func(x, y uint64) uint64 { return x & y }) }
func BitOr(a, b Value) (Value, error)  { return bitOp("|", a, b, func(x, y uint64) uint64 { return x | y }) }
func BitXor(a, b Value) (Value, error) { return bitOp("^", a, b, func(x, y uint64) uint64 { return x ^ y }) }

func bitOp(op string, a, b Value, f func(x, y uint64) uint64) (Value, error) {
	pa, pb, k, ok := promote(a, b)
	if !ok || isFloatKind(k) {
		return Value{}, typeMismatch(op, a, b)
	}
	r := maskTo(k, f(asUint64(pa), asUint64(pb)))
	if isSignedKind(k) {
		return castFromInt64(k, signExtend(k, r)), nil
	}
	return castFromUint64(k, r), nil
}

func BitNot(a Value) (Value, error) {
	if !isSignedKind(a.Kind) && !isUnsignedKind(a.Kind) {
		return Value{}, typeMismatch1("~", a)
	}
	r := maskTo(a.Kind, ^asUint64(a))
	if isSignedKind(a.Kind) {
		return castFromInt64(a.Kind, signExtend(a.Kind, r)), nil
	}
	return castFromUint64(a.Kind, r), nil
}

func And(a, b Value) (Value, error) {
	if a.Kind != KindBoolean || b.Kind != KindBoolean {
		return Value{}, typeMismatch("&&", a, b)
	}
	return Bool(a.Bool && b.Bool), nil
}

func Or(a, b Value) (Value, error) {
	if a.Kind != KindBoolean || b.Kind != KindBoolean {
		return Value{}, typeMismatch("||", a, b)
	}
	return Bool(a.Bool || b.Bool), nil
}

func Xor(a, b Value) (Value, error) {
	if a.Kind != KindBoolean || b.Kind != KindBoolean {
		return Value{}, typeMismatch("^^", a, b)
	}
	return Bool(a.Bool != b.Bool), nil
}

func Not(a Value) (Value, error) {
	if a.Kind != KindBoolean {
		return Value{}, typeMismatch1("!", a)
	}
	return Bool(!a.Bool), nil
}

// compareNumeric orders two numeric values after widening them to a common
// kind, returning -1/0/1. Boolean equality and Character/String comparison
// are handled by its callers before it is reached.
func compareNumeric(a, b Value) (int, error) {
	pa, pb, k, ok := promote(a, b)
	if !ok {
		return 0, typeMismatch("compare", a, b)
	}
	if k == KindFloat32 {
		return cmpFloat(float64(pa.F32), float64(pb.F32)), nil
	}
	if k == KindFloat64 {
		return cmpFloat(pa.F64, pb.F64), nil
	}
	if isSignedKind(k) {
		return cmpInt(asInt64(pa), asInt64(pb)), nil
	}
	return cmpUint(asUint64(pa), asUint64(pb)), nil
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func EqualValues(a, b Value) (Value, error) {
	if a.Kind == KindBoolean && b.Kind == KindBoolean {
		return Bool(a.Bool == b.Bool), nil
	}
	if (a.Kind == KindCharacter || a.Kind == KindString) && (b.Kind == KindCharacter || b.Kind == KindString) {
		return Bool(stringOf(a) == stringOf(b)), nil
	}
	c, err := compareNumeric(a, b)
	if err != nil {
		return Value{}, err
	}
	return Bool(c == 0), nil
}

func NotEqualValues(a, b Value) (Value, error) {
	v, err := EqualValues(a, b)
	if err != nil {
		return Value{}, err
	}
	return Bool(!v.Bool), nil
}

func stringOf(v Value) string {
	if v.Kind == KindCharacter {
		return string(v.Char)
	}
	return v.Str
}

func LessThan(a, b Value) (Value, error)         { return relOp(a, b, func(c int) bool { return c < 0 }) }
func GreaterThan(a, b Value) (Value, error)      { return relOp(a, b, func(c int) bool { return c > 0 }) }
func LessThanEqual(a, b Value) (Value, error)    { return relOp(a, b, func(c int) bool { return c <= 0 }) }
func GreaterThanEqual(a, b Value) (Value, error) { return relOp(a, b, func(c int) bool { return c >= 0 }) }

func relOp(a, b Value, pred func(int) bool) (Value, error) {
	if (a.Kind == KindCharacter || a.Kind == KindString) && (b.Kind == KindCharacter || b.Kind == KindString) {
		return Bool(pred(stringCompare(stringOf(a), stringOf(b)))), nil
	}
	c, err := compareNumeric(a, b)
	if err != nil {
		return Value{}, err
	}
	return Bool(pred(c)), nil
}

// Compare gives a total order over two values of compatible kind, used by
// the PossibleValue range algebra to sort and intersect range endpoints.
func Compare(a, b Value) (int, error) {
	if (a.Kind == KindCharacter || a.Kind == KindString) && (b.Kind == KindCharacter || b.Kind == KindString) {
		return stringCompare(stringOf(a), stringOf(b)), nil
	}
	return compareNumeric(a, b)
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
