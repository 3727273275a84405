package buildpipeline

import (
	"testing"

	"hydro/internal/hydro"
	"hydro/internal/value"
)

func sampleModule() *hydro.Module {
	mod := hydro.NewModule("main")

	point := hydro.NewLayoutTemplate("main", "point")
	point.Member("x", value.Signed32())
	point.Member("y", value.Signed32())
	mod.Layouts["point"] = point

	mod.Intrinsics["sqrt"] = hydro.NewIntrinsic("sqrt", []value.Type{value.Float64Type()}, "math.sqrt")

	fn := hydro.NewFunction("main")
	fn.Parameters = []hydro.Param{{Name: "funnyNumber", Type: value.Unsigned32()}}
	fn.AddLabel("start", 0)
	fn.Body = []hydro.Instruction{
		hydro.PushValue{Value: value.U32(1)},
		hydro.PushValue{Value: value.RefValue(value.VariableRef("funnyNumber"))},
		hydro.Add{},
		hydro.Jump{Target: hydro.LabelTarget("start")},
		hydro.Return{},
	}
	mod.Functions["main"] = fn

	return mod
}

func TestBinaryRoundTripsAModule(t *testing.T) {
	mod := sampleModule()

	data, err := Encode(mod)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	restored, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if restored.Name != mod.Name {
		t.Fatalf("expected module name %q, got %q", mod.Name, restored.Name)
	}
	if len(restored.Layouts["point"].Members) != 2 {
		t.Fatalf("expected 2 layout members, got %d", len(restored.Layouts["point"].Members))
	}
	if _, ok := restored.Intrinsics["sqrt"]; !ok {
		t.Fatal("expected the sqrt intrinsic to survive the round trip")
	}
	fn, ok := restored.Functions["main"]
	if !ok {
		t.Fatal("expected a main function")
	}
	if len(fn.Body) != 5 {
		t.Fatalf("expected 5 instructions, got %d", len(fn.Body))
	}
	push, ok := fn.Body[0].(hydro.PushValue)
	if !ok || push.Value.Kind != value.KindUnsigned32 || push.Value.U32 != 1 {
		t.Fatalf("expected the first instruction to be PushValue Unsigned32(1), got %#v", fn.Body[0])
	}
	jump, ok := fn.Body[3].(hydro.Jump)
	if !ok || jump.Target.Kind != hydro.TargetLabel || jump.Target.Label != "start" {
		t.Fatalf("expected a jump to label start, got %#v", fn.Body[3])
	}
	if idx, ok := fn.JumpLabels["start"]; !ok || idx != 0 {
		t.Fatalf("expected label start at index 0, got %d (ok=%v)", idx, ok)
	}
}

func TestBinaryRoundTripsArrayAndLayoutValues(t *testing.T) {
	mod := hydro.NewModule("main")
	fn := hydro.NewFunction("main")
	arr := value.Value{Kind: value.KindArray, Array: &value.ArrayValue{
		Element: value.Unsigned8(),
		Default: value.U8(0),
		Items:   []value.Value{value.U8(1), value.U8(2), value.U8(3)},
	}}
	layout := value.Value{Kind: value.KindLayout, Layout: &value.LayoutValue{
		Module: "main", Name: "point",
		Members: map[string]value.Value{"x": value.I32(1), "y": value.I32(2)},
	}}
	fn.Body = []hydro.Instruction{
		hydro.PushValue{Value: arr},
		hydro.PushValue{Value: layout},
		hydro.Return{},
	}
	mod.Functions["main"] = fn

	data, err := Encode(mod)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	restored, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	got := restored.Functions["main"].Body[0].(hydro.PushValue).Value
	if got.Kind != value.KindArray || len(got.Array.Items) != 3 || got.Array.Items[1].U8 != 2 {
		t.Fatalf("expected a 3-element array round trip, got %#v", got)
	}
	gotLayout := restored.Functions["main"].Body[1].(hydro.PushValue).Value
	if gotLayout.Kind != value.KindLayout || gotLayout.Layout.Members["y"].I32 != 2 {
		t.Fatalf("expected the layout member y=2 to survive, got %#v", gotLayout)
	}
}

func TestBinaryRoundTripsLinkedImports(t *testing.T) {
	dep := hydro.NewModule("shapes")
	point := hydro.NewLayoutTemplate("shapes", "point")
	point.Member("x", value.Signed32())
	dep.Layouts["point"] = point

	main := hydro.NewModule("main")
	main.Imports = []string{"shapes"}
	main.Modules["shapes"] = dep
	main.Functions["main"] = hydro.NewFunction("main")

	data, err := Encode(main)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	restored, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(restored.Imports) != 1 || restored.Imports[0] != "shapes" {
		t.Fatalf("expected one import shapes, got %v", restored.Imports)
	}
	linkedDep, ok := restored.Modules["shapes"]
	if !ok {
		t.Fatal("expected shapes to be relinked into Modules")
	}
	if _, ok := linkedDep.Layouts["point"]; !ok {
		t.Fatal("expected the linked shapes module to carry its point layout")
	}
}
