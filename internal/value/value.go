package value

import (
	"fmt"
	"math"
)

// Value is the tagged union described in spec section 3. Exactly one field
// group is meaningful for a given Kind; Kind is authoritative, not the zero
// values of the unused fields.
type Value struct {
	Kind Kind

	Bool bool
	Char rune
	Str  string

	U8   uint8
	U16  uint16
	U32  uint32
	U64  uint64
	U128 U128

	I8   int8
	I16  int16
	I32  int32
	I64  int64
	I128 I128

	F32 float32
	F64 float64

	Array *ArrayValue
	Layout *LayoutValue
	Ref    Reference
	Fn     *FunctionPointer
}

// U128/I128 are represented as a pair of 64-bit halves since Go has no
// native 128-bit integer; arithmetic on them is defined in arithmetic.go.
type U128 struct {
	Hi, Lo uint64
}

type I128 struct {
	Hi uint64 // sign-extended high half
	Lo uint64
}

type ArrayValue struct {
	Element Type
	Default Value
	Items   []Value
}

type LayoutValue struct {
	Module  string
	Name    string
	Members map[string]Value
}

// Reference is one of Variable, LayoutIndex, or ArrayIndex, a symbolic path
// resolved against an owning frame's variable map on each access (spec
// section 3 "Reference chain").
type Reference struct {
	Kind ReferenceKind

	VariableName string

	ParentRef    *Reference
	MemberName   string // LayoutIndex
	IndexValue   *Value // ArrayIndex
}

type ReferenceKind int

const (
	RefVariable ReferenceKind = iota
	RefLayoutIndex
	RefArrayIndex
)

func VariableRef(name string) Reference {
	return Reference{Kind: RefVariable, VariableName: name}
}

func LayoutIndexRef(parent Reference, member string) Reference {
	return Reference{Kind: RefLayoutIndex, ParentRef: &parent, MemberName: member}
}

func ArrayIndexRef(parent Reference, index Value) Reference {
	return Reference{Kind: RefArrayIndex, ParentRef: &parent, IndexValue: &index}
}

type FunctionPointer struct {
	Module   string // empty means "caller's current module"
	Function string
}

// Constructors for the primitive kinds.
func Bool(v bool) Value   { return Value{Kind: KindBoolean, Bool: v} }
func Char(v rune) Value   { return Value{Kind: KindCharacter, Char: v} }
func Str(v string) Value  { return Value{Kind: KindString, Str: v} }
func U8(v uint8) Value    { return Value{Kind: KindUnsigned8, U8: v} }
func U16(v uint16) Value  { return Value{Kind: KindUnsigned16, U16: v} }
func U32(v uint32) Value  { return Value{Kind: KindUnsigned32, U32: v} }
func U64(v uint64) Value  { return Value{Kind: KindUnsigned64, U64: v} }
func I8(v int8) Value     { return Value{Kind: KindSigned8, I8: v} }
func I16(v int16) Value   { return Value{Kind: KindSigned16, I16: v} }
func I32(v int32) Value   { return Value{Kind: KindSigned32, I32: v} }
func I64(v int64) Value   { return Value{Kind: KindSigned64, I64: v} }
func F32(v float32) Value { return Value{Kind: KindFloat32, F32: v} }
func F64(v float64) Value { return Value{Kind: KindFloat64, F64: v} }

func RefValue(r Reference) Value       { return Value{Kind: KindReference, Ref: r} }
func FnPtr(module, fn string) Value    { return Value{Kind: KindFunctionPointer, Fn: &FunctionPointer{Module: module, Function: fn}} }

// TypeOf implements spec section 3's "A Value's type (via type_of) is total
// and cheap" invariant.
func (v Value) TypeOf() Type {
	switch v.Kind {
	case KindArray:
		return Array(arrayLength(v.Array), v.Array.Element)
	case KindLayout:
		return Layout(v.Layout.Module, v.Layout.Name)
	case KindReference:
		return Reference0()
	case KindFunctionPointer:
		return FunctionPointer(nil, nil)
	default:
		return Type{Kind: v.Kind}
	}
}

// Reference0 returns the bare Reference(Any) type; the executor only ever
// needs to know a stack slot holds *some* reference, never its target type,
// since Load/Store resolve dynamically.
func Reference0() Type {
	any := Any()
	return Reference(any)
}

func arrayLength(a *ArrayValue) *uint64 {
	n := uint64(len(a.Items))
	return &n
}

// Default constructs the zero value for a Type (spec section 4.1 `default`).
func Default(t Type) Value {
	switch t.Kind {
	case KindUnsigned8:
		return U8(0)
	case KindUnsigned16:
		return U16(0)
	case KindUnsigned32:
		return U32(0)
	case KindUnsigned64:
		return U64(0)
	case KindUnsigned128:
		return Value{Kind: KindUnsigned128}
	case KindSigned8:
		return I8(0)
	case KindSigned16:
		return I16(0)
	case KindSigned32:
		return I32(0)
	case KindSigned64:
		return I64(0)
	case KindSigned128:
		return Value{Kind: KindSigned128}
	case KindFloat32:
		return F32(0)
	case KindFloat64:
		return F64(0)
	case KindBoolean:
		return Bool(false)
	case KindCharacter:
		return Char(0)
	case KindString:
		return Str("")
	case KindArray:
		elemDefault := Default(*t.ArrayElement)
		n := 0
		if t.ArrayLength != nil {
			n = int(*t.ArrayLength)
		}
		items := make([]Value, n)
		for i := range items {
			items[i] = elemDefault
		}
		return Value{Kind: KindArray, Array: &ArrayValue{Element: *t.ArrayElement, Default: elemDefault, Items: items}}
	case KindLayout:
		members := make(map[string]Value, len(t.LayoutMembers))
		for name, mt := range t.LayoutMembers {
			members[name] = Default(mt)
		}
		return Value{Kind: KindLayout, Layout: &LayoutValue{Module: t.LayoutModule, Name: t.LayoutName, Members: members}}
	default:
		return Value{Kind: KindAny}
	}
}

// ToBool implements spec section 4.1 to_bool.
func (v Value) ToBool() (bool, error) {
	if v.Kind != KindBoolean {
		return false, fmt.Errorf("cannot convert %s to bool", v.Kind)
	}
	return v.Bool, nil
}

// ToU64 implements spec section 4.1 to_u64, used by array indexing and the
// implicit-size form of AllocateArray.
func (v Value) ToU64() (uint64, error) {
	switch v.Kind {
	case KindUnsigned8:
		return uint64(v.U8), nil
	case KindUnsigned16:
		return uint64(v.U16), nil
	case KindUnsigned32:
		return uint64(v.U32), nil
	case KindUnsigned64:
		return v.U64, nil
	case KindSigned8:
		if v.I8 < 0 {
			return 0, fmt.Errorf("cannot convert negative value to u64")
		}
		return uint64(v.I8), nil
	case KindSigned16:
		if v.I16 < 0 {
			return 0, fmt.Errorf("cannot convert negative value to u64")
		}
		return uint64(v.I16), nil
	case KindSigned32:
		if v.I32 < 0 {
			return 0, fmt.Errorf("cannot convert negative value to u64")
		}
		return uint64(v.I32), nil
	case KindSigned64:
		if v.I64 < 0 {
			return 0, fmt.Errorf("cannot convert negative value to u64")
		}
		return uint64(v.I64), nil
	default:
		return 0, fmt.Errorf("cannot convert %s to u64", v.Kind)
	}
}

// GoString renders a debugger/stacktrace-friendly representation; this is
// intentionally close to Rust's "{:#?}" derived Debug output the original
// source prints in DebugContext.console and Exception.print_stacktrace.
func (v Value) GoString() string {
	switch v.Kind {
	case KindBoolean:
		return fmt.Sprintf("%t", v.Bool)
	case KindCharacter:
		return fmt.Sprintf("%q", v.Char)
	case KindString:
		return fmt.Sprintf("%q", v.Str)
	case KindUnsigned8:
		return fmt.Sprintf("%du8", v.U8)
	case KindUnsigned16:
		return fmt.Sprintf("%du16", v.U16)
	case KindUnsigned32:
		return fmt.Sprintf("%du32", v.U32)
	case KindUnsigned64:
		return fmt.Sprintf("%du64", v.U64)
	case KindUnsigned128:
		return fmt.Sprintf("%s u128", v.U128.String())
	case KindSigned8:
		return fmt.Sprintf("%di8", v.I8)
	case KindSigned16:
		return fmt.Sprintf("%di16", v.I16)
	case KindSigned32:
		return fmt.Sprintf("%di32", v.I32)
	case KindSigned64:
		return fmt.Sprintf("%di64", v.I64)
	case KindSigned128:
		return fmt.Sprintf("%s i128", v.I128.String())
	case KindFloat32:
		return fmt.Sprintf("%gf32", v.F32)
	case KindFloat64:
		return fmt.Sprintf("%gf64", v.F64)
	case KindArray:
		return fmt.Sprintf("array[%d]", len(v.Array.Items))
	case KindLayout:
		return fmt.Sprintf("%s.%s{...}", v.Layout.Module, v.Layout.Name)
	case KindReference:
		return "&" + v.Ref.String()
	case KindFunctionPointer:
		return fmt.Sprintf("fn(%s:%s)", v.Fn.Module, v.Fn.Function)
	default:
		return "<any>"
	}
}

func (r Reference) String() string {
	switch r.Kind {
	case RefVariable:
		return r.VariableName
	case RefLayoutIndex:
		return r.ParentRef.String() + "." + r.MemberName
	case RefArrayIndex:
		return fmt.Sprintf("%s[%s]", r.ParentRef.String(), r.IndexValue.GoString())
	default:
		return "?"
	}
}

func (u U128) String() string {
	if u.Hi == 0 {
		return fmt.Sprintf("%d", u.Lo)
	}
	return fmt.Sprintf("0x%016x%016x", u.Hi, u.Lo)
}

func (i I128) String() string {
	return fmt.Sprintf("0x%016x%016x", i.Hi, i.Lo)
}

// Index implements spec section 4.1 index(u64) -> Value for Array values.
func (v Value) Index(i uint64) (Value, error) {
	if v.Kind != KindArray {
		return Value{}, fmt.Errorf("cannot index into non-array value")
	}
	if i >= uint64(len(v.Array.Items)) {
		return Value{}, indexOutOfBounds(i, len(v.Array.Items))
	}
	return v.Array.Items[i], nil
}

// SetIndex implements spec section 4.1 set_index(u64, Value).
func (v Value) SetIndex(i uint64, newValue Value) error {
	if v.Kind != KindArray {
		return fmt.Errorf("cannot index into non-array value")
	}
	if i >= uint64(len(v.Array.Items)) {
		return indexOutOfBounds(i, len(v.Array.Items))
	}
	v.Array.Items[i] = newValue
	return nil
}

func indexOutOfBounds(i uint64, length int) error {
	return fmt.Errorf("IndexOutOfBounds: index %d is out of bounds for array of length %d", i, length)
}

// GetMember implements spec section 4.1 get_member(name) -> Value.
func (v Value) GetMember(name string) (Value, error) {
	if v.Kind != KindLayout {
		return Value{}, fmt.Errorf("cannot access member of non-layout value")
	}
	val, ok := v.Layout.Members[name]
	if !ok {
		return Value{}, unknownMember(name, v.Layout.Name)
	}
	return val, nil
}

// SetMember implements spec section 4.1 set_member(name, Value).
func (v Value) SetMember(name string, newValue Value) error {
	if v.Kind != KindLayout {
		return fmt.Errorf("cannot access member of non-layout value")
	}
	if _, ok := v.Layout.Members[name]; !ok {
		return unknownMember(name, v.Layout.Name)
	}
	v.Layout.Members[name] = newValue
	return nil
}

func unknownMember(name, layout string) error {
	return fmt.Errorf("UnknownMember: layout %q has no member %q", layout, name)
}

// Equal is a structural equality helper used by tests; it is not the VM's
// Equal instruction (that
// dispatches through the executor's numeric widening and lives in
// internal/hydro).
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindBoolean:
		return a.Bool == b.Bool
	case KindCharacter:
		return a.Char == b.Char
	case KindString:
		return a.Str == b.Str
	case KindUnsigned8:
		return a.U8 == b.U8
	case KindUnsigned16:
		return a.U16 == b.U16
	case KindUnsigned32:
		return a.U32 == b.U32
	case KindUnsigned64:
		return a.U64 == b.U64
	case KindUnsigned128:
		return a.U128 == b.U128
	case KindSigned8:
		return a.I8 == b.I8
	case KindSigned16:
		return a.I16 == b.I16
	case KindSigned32:
		return a.I32 == b.I32
	case KindSigned64:
		return a.I64 == b.I64
	case KindSigned128:
		return a.I128 == b.I128
	case KindFloat32:
		return a.F32 == b.F32 || (math.IsNaN(float64(a.F32)) && math.IsNaN(float64(b.F32)))
	case KindFloat64:
		return a.F64 == b.F64 || (math.IsNaN(a.F64) && math.IsNaN(b.F64))
	case KindArray:
		if len(a.Array.Items) != len(b.Array.Items) {
			return false
		}
		for i := range a.Array.Items {
			if !Equal(a.Array.Items[i], b.Array.Items[i]) {
				return false
			}
		}
		return true
	case KindLayout:
		if len(a.Layout.Members) != len(b.Layout.Members) {
			return false
		}
		for k, av := range a.Layout.Members {
			bv, ok := b.Layout.Members[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Clone deep-copies a Value so frames never alias array/layout storage
// across a PushValue/Duplicate boundary (spec section 9 "concrete Layout
// values owned by frames are cloned on copy").
func (v Value) Clone() Value {
	switch v.Kind {
	case KindArray:
		items := make([]Value, len(v.Array.Items))
		for i, it := range v.Array.Items {
			items[i] = it.Clone()
		}
		return Value{Kind: KindArray, Array: &ArrayValue{Element: v.Array.Element, Default: v.Array.Default.Clone(), Items: items}}
	case KindLayout:
		members := make(map[string]Value, len(v.Layout.Members))
		for k, mv := range v.Layout.Members {
			members[k] = mv.Clone()
		}
		return Value{Kind: KindLayout, Layout: &LayoutValue{Module: v.Layout.Module, Name: v.Layout.Name, Members: members}}
	default:
		return v
	}
}
