package value

import "golang.org/x/exp/constraints"

// Widen implements the widening lattice chosen in SPEC_FULL.md section 3,
// resolving the source's contradictory dual-macro widening definitions in
// favor of a single, documented rule:
//
//   - unsigned widens to a wider unsigned, a wider signed (one width up),
//     or a wider float (one width up); 128-bit and Float64 are maximal.
//   - signed widens to a wider signed or a wider float (one width up).
//   - float widens to a wider float; Float64 is maximal.
//   - character widens to string under '+' and comparisons only.
//   - mixing signed and unsigned at the same bit width widens to the next
//     wider signed kind so the sign is never silently dropped.
//
// Widen returns the Kind both operands should be promoted to before the
// operation executes, or ok=false if the pair has no defined widening.
func Widen(a, b Kind) (Kind, bool) {
	if a == b {
		return a, true
	}
	if !isNumeric(a) || !isNumeric(b) {
		return a, false
	}

	aFloat, bFloat := isFloatKind(a), isFloatKind(b)
	aWidth, bWidth := widthOf(a), widthOf(b)

	switch {
	case aFloat && bFloat:
		return widerFloat(a, b), true
	case aFloat && !bFloat:
		return widenFloatAgainstInt(a, bWidth)
	case !aFloat && bFloat:
		return widenFloatAgainstInt(b, aWidth)
	}

	// both integers
	aIsSigned := isSignedKind(a)
	bIsSigned := isSignedKind(b)

	if aIsSigned == bIsSigned {
		// same signedness, different width: widen to the wider width, same signedness
		if aWidth >= bWidth {
			return a, true
		}
		return b, true
	}

	// mixed signed/unsigned
	unsignedWidth, signedWidth := aWidth, bWidth
	if aIsSigned {
		unsignedWidth, signedWidth = bWidth, aWidth
	}

	target := signedWidth
	if unsignedWidth >= signedWidth {
		target = nextWidth(unsignedWidth)
	}
	k, ok := signedKindForWidth(target)
	return k, ok
}

func isNumeric(k Kind) bool {
	return isSignedKind(k) || isUnsignedKind(k) || isFloatKind(k)
}

func isUnsignedKind(k Kind) bool {
	switch k {
	case KindUnsigned8, KindUnsigned16, KindUnsigned32, KindUnsigned64, KindUnsigned128:
		return true
	default:
		return false
	}
}

func isSignedKind(k Kind) bool {
	switch k {
	case KindSigned8, KindSigned16, KindSigned32, KindSigned64, KindSigned128:
		return true
	default:
		return false
	}
}

func isFloatKind(k Kind) bool {
	return k == KindFloat32 || k == KindFloat64
}

func widthOf(k Kind) int {
	switch k {
	case KindUnsigned8, KindSigned8:
		return 8
	case KindUnsigned16, KindSigned16:
		return 16
	case KindUnsigned32, KindSigned32, KindFloat32:
		return 32
	case KindUnsigned64, KindSigned64, KindFloat64:
		return 64
	case KindUnsigned128, KindSigned128:
		return 128
	}
	return 0
}

func nextWidth(w int) int {
	switch w {
	case 8:
		return 16
	case 16:
		return 32
	case 32:
		return 64
	case 64:
		return 128
	default:
		return w
	}
}

func signedKindForWidth(w int) (Kind, bool) {
	switch w {
	case 8:
		return KindSigned8, true
	case 16:
		return KindSigned16, true
	case 32:
		return KindSigned32, true
	case 64:
		return KindSigned64, true
	case 128:
		return KindSigned128, true
	default:
		return KindAny, false
	}
}

func widerFloat(a, b Kind) Kind {
	if a == KindFloat64 || b == KindFloat64 {
		return KindFloat64
	}
	return KindFloat32
}

// widenFloatAgainstInt widens an integer of the given width against a float
// kind: an integer narrower than or equal to Float32 widens to Float32
// unless the float side is already Float64, in which case the result is
// Float64. An Unsigned128/Signed128 operand against any float widens to
// Float64 (there is no wider float to reach for).
func widenFloatAgainstInt(floatKind Kind, intWidth int) (Kind, bool) {
	if floatKind == KindFloat64 || intWidth >= 64 {
		return KindFloat64, true
	}
	return KindFloat32, true
}

// Ordered is re-exported so callers elsewhere in the module can build
// generic numeric helpers without reaching into golang.org/x/exp directly.
type Ordered = constraints.Ordered

// MaxOrdered and MinOrdered fold over any constraints.Ordered type,
// grounded on the same widening concern this file already reaches
// golang.org/x/exp/constraints for. internal/hydro's metric summaries use
// these instead of hand-rolling the sorted[0]/sorted[len-1] comparisons
// package time.Duration would otherwise need twice over.
func MaxOrdered[T Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func MinOrdered[T Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
