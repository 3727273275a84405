// Package value implements the Hydro value and type model: the sum of
// primitive, aggregate, and reference kinds described in spec section 3,
// along with the subtyping lattice and numeric widening rules that the
// executor dispatches on.
package value

import "fmt"

// Kind tags a Type's shape. Array/Layout/Reference/FunctionPointer carry
// additional payload fields on Type itself rather than through a separate
// hierarchy, matching how the original Rust source keeps Type as one enum.
type Kind int

const (
	KindAny Kind = iota
	KindUnsigned8
	KindUnsigned16
	KindUnsigned32
	KindUnsigned64
	KindUnsigned128
	KindSigned8
	KindSigned16
	KindSigned32
	KindSigned64
	KindSigned128
	KindFloat32
	KindFloat64
	KindBoolean
	KindCharacter
	KindString
	KindArray
	KindLayout
	KindReference
	KindFunctionPointer
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindUnsigned8:
		return "u8"
	case KindUnsigned16:
		return "u16"
	case KindUnsigned32:
		return "u32"
	case KindUnsigned64:
		return "u64"
	case KindUnsigned128:
		return "u128"
	case KindSigned8:
		return "i8"
	case KindSigned16:
		return "i16"
	case KindSigned32:
		return "i32"
	case KindSigned64:
		return "i64"
	case KindSigned128:
		return "i128"
	case KindFloat32:
		return "f32"
	case KindFloat64:
		return "f64"
	case KindBoolean:
		return "bool"
	case KindCharacter:
		return "char"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindLayout:
		return "layout"
	case KindReference:
		return "ref"
	case KindFunctionPointer:
		return "fnptr"
	default:
		return "unknown"
	}
}

// Type is the Hydro type lattice element. Only the fields relevant to Kind
// are populated; this mirrors the Rust enum's per-variant payload without
// needing a tagged-union encoding trick in Go.
type Type struct {
	Kind Kind

	// KindArray
	ArrayLength  *uint64 // nil means unbound ("no static length constraint")
	ArrayElement *Type

	// KindLayout
	LayoutModule  string
	LayoutName    string
	LayoutMembers map[string]Type // nil until resolved

	// KindReference
	ReferenceTarget *Type

	// KindFunctionPointer
	ParamTypes  []Type
	ReturnTypes []Type
}

func Any() Type                { return Type{Kind: KindAny} }
func Unsigned8() Type          { return Type{Kind: KindUnsigned8} }
func Unsigned16() Type         { return Type{Kind: KindUnsigned16} }
func Unsigned32() Type         { return Type{Kind: KindUnsigned32} }
func Unsigned64() Type         { return Type{Kind: KindUnsigned64} }
func Unsigned128() Type        { return Type{Kind: KindUnsigned128} }
func Signed8() Type            { return Type{Kind: KindSigned8} }
func Signed16() Type           { return Type{Kind: KindSigned16} }
func Signed32() Type           { return Type{Kind: KindSigned32} }
func Signed64() Type           { return Type{Kind: KindSigned64} }
func Signed128() Type          { return Type{Kind: KindSigned128} }
func Float32Type() Type        { return Type{Kind: KindFloat32} }
func Float64Type() Type        { return Type{Kind: KindFloat64} }
func Boolean() Type            { return Type{Kind: KindBoolean} }
func Character() Type          { return Type{Kind: KindCharacter} }
func StringType() Type         { return Type{Kind: KindString} }

func Array(length *uint64, elem Type) Type {
	return Type{Kind: KindArray, ArrayLength: length, ArrayElement: &elem}
}

func Layout(module, name string) Type {
	return Type{Kind: KindLayout, LayoutModule: module, LayoutName: name}
}

func ResolvedLayout(module, name string, members map[string]Type) Type {
	return Type{Kind: KindLayout, LayoutModule: module, LayoutName: name, LayoutMembers: members}
}

func Reference(target Type) Type {
	return Type{Kind: KindReference, ReferenceTarget: &target}
}

func FunctionPointer(params, returns []Type) Type {
	return Type{Kind: KindFunctionPointer, ParamTypes: params, ReturnTypes: returns}
}

func (t Type) String() string {
	switch t.Kind {
	case KindArray:
		if t.ArrayLength != nil {
			return fmt.Sprintf("[%d]%s", *t.ArrayLength, t.ArrayElement.String())
		}
		return fmt.Sprintf("[]%s", t.ArrayElement.String())
	case KindLayout:
		return fmt.Sprintf("%s.%s", t.LayoutModule, t.LayoutName)
	case KindReference:
		return "&" + t.ReferenceTarget.String()
	case KindFunctionPointer:
		return "fnptr(...)"
	default:
		return t.Kind.String()
	}
}

// IsInteger reports whether the type is one of the fixed-width integer kinds.
func (t Type) IsInteger() bool {
	switch t.Kind {
	case KindUnsigned8, KindUnsigned16, KindUnsigned32, KindUnsigned64, KindUnsigned128,
		KindSigned8, KindSigned16, KindSigned32, KindSigned64, KindSigned128:
		return true
	default:
		return false
	}
}

func (t Type) IsUnsigned() bool {
	switch t.Kind {
	case KindUnsigned8, KindUnsigned16, KindUnsigned32, KindUnsigned64, KindUnsigned128:
		return true
	default:
		return false
	}
}

func (t Type) IsSigned() bool {
	switch t.Kind {
	case KindSigned8, KindSigned16, KindSigned32, KindSigned64, KindSigned128:
		return true
	default:
		return false
	}
}

func (t Type) IsFloat() bool {
	return t.Kind == KindFloat32 || t.Kind == KindFloat64
}

// bitWidth returns the width in bits of a fixed-width numeric kind, used by
// the widening lattice below.
func (t Type) bitWidth() int {
	switch t.Kind {
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
	default:
		return 0
	}
}

// Subtype implements spec section 3's subtype(a, b) relation.
func Subtype(a, b Type) bool {
	if b.Kind == KindAny {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindArray:
		if (a.ArrayLength == nil) != (b.ArrayLength == nil) {
			return false
		}
		if a.ArrayLength != nil && *a.ArrayLength != *b.ArrayLength {
			return false
		}
		return Subtype(*a.ArrayElement, *b.ArrayElement)
	case KindReference:
		return Subtype(*a.ReferenceTarget, *b.ReferenceTarget)
	case KindLayout:
		return a.LayoutModule == b.LayoutModule && a.LayoutName == b.LayoutName
	default:
		return true
	}
}
