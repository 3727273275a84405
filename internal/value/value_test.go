package value

import "testing"

func TestSubtypeAnyAcceptsAnything(t *testing.T) {
	if !Subtype(Unsigned32(), Any()) {
		t.Fatal("every type should be a subtype of Any")
	}
}

func TestSubtypeRequiresMatchingKind(t *testing.T) {
	if Subtype(Unsigned32(), Signed32()) {
		t.Fatal("Unsigned32 should not be a subtype of Signed32")
	}
	if !Subtype(Unsigned32(), Unsigned32()) {
		t.Fatal("a type should be a subtype of itself")
	}
}

func TestSubtypeArrayRequiresMatchingLengthAndElement(t *testing.T) {
	four := uint64(4)
	five := uint64(5)
	if Subtype(Array(&four, Unsigned8()), Array(&five, Unsigned8())) {
		t.Fatal("arrays of different fixed length should not be subtypes")
	}
	if !Subtype(Array(&four, Unsigned8()), Array(&four, Unsigned8())) {
		t.Fatal("arrays of equal length and element type should be subtypes")
	}
	if Subtype(Array(&four, Unsigned8()), Array(&four, Signed8())) {
		t.Fatal("arrays with differing element types should not be subtypes")
	}
}

func TestWidenSameSignednessPicksWiderWidth(t *testing.T) {
	k, ok := Widen(KindUnsigned8, KindUnsigned32)
	if !ok || k != KindUnsigned32 {
		t.Fatalf("expected Unsigned32, got %v ok=%v", k, ok)
	}
}

func TestWidenMixedSignednessPrefersSigned(t *testing.T) {
	k, ok := Widen(KindUnsigned32, KindSigned32)
	if !ok {
		t.Fatal("expected a defined widening for mixed signed/unsigned at equal width")
	}
	if !isSignedKind(k) {
		t.Fatalf("expected the mixed-width case to widen to a signed kind, got %v", k)
	}
}

func TestWidenFloatDominatesInt(t *testing.T) {
	k, ok := Widen(KindUnsigned32, KindFloat32)
	if !ok || k != KindFloat32 {
		t.Fatalf("expected Float32, got %v ok=%v", k, ok)
	}
}

func TestAddWidensOperands(t *testing.T) {
	result, err := Add(U8(1), U32(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != KindUnsigned32 || result.U32 != 3 {
		t.Fatalf("expected Unsigned32(3), got %#v", result)
	}
}

func TestDivideByZero(t *testing.T) {
	if _, err := Div(U32(1), U32(0)); err == nil {
		t.Fatal("expected a division-by-zero error")
	}
}

func TestArrayIndexRoundTrip(t *testing.T) {
	arr := Value{Kind: KindArray, Array: &ArrayValue{Element: Unsigned32(), Items: []Value{U32(1), U32(2), U32(3)}}}

	original, err := arr.Index(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if original.U32 != 2 {
		t.Fatalf("expected element 2, got %#v", original)
	}

	if err := arr.SetIndex(1, U32(99)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updated, err := arr.Index(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.U32 != 99 {
		t.Fatalf("expected element 99 after SetIndex, got %#v", updated)
	}

	if err := arr.SetIndex(1, U32(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	restored, err := arr.Index(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(restored, original) {
		t.Fatalf("restoring the original value should produce an equal array element, got %#v vs %#v", restored, original)
	}
}

func TestIndexOutOfBounds(t *testing.T) {
	arr := Value{Kind: KindArray, Array: &ArrayValue{Element: Unsigned32(), Items: []Value{U32(1)}}}
	if _, err := arr.Index(5); err == nil {
		t.Fatal("expected IndexOutOfBounds error")
	}
}

func TestLayoutMemberRoundTrip(t *testing.T) {
	layout := Value{Kind: KindLayout, Layout: &LayoutValue{
		Module: "main", Name: "point",
		Members: map[string]Value{"x": I32(1), "y": I32(2)},
	}}

	x, err := layout.GetMember("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x.I32 != 1 {
		t.Fatalf("expected member x = 1, got %#v", x)
	}

	if err := layout.SetMember("x", I32(42)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	x, err = layout.GetMember("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x.I32 != 42 {
		t.Fatalf("expected member x = 42 after SetMember, got %#v", x)
	}

	if _, err := layout.GetMember("z"); err == nil {
		t.Fatal("expected UnknownMember error")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	arr := Value{Kind: KindArray, Array: &ArrayValue{Element: Unsigned32(), Items: []Value{U32(1), U32(2)}}}
	clone := arr.Clone()

	if err := clone.SetIndex(0, U32(99)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	original, _ := arr.Index(0)
	if original.U32 != 1 {
		t.Fatal("mutating a clone should not affect the original array")
	}
}
