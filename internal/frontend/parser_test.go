package frontend

import (
	"testing"

	"hydro/internal/hydro"
	"hydro/internal/value"
)

func TestParseMinimalMainModule(t *testing.T) {
	src := `
module main {
	function main() {
		PushValue 420u32
		Return
	}
}
`
	mod, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if mod.Name != "main" {
		t.Fatalf("expected module name main, got %q", mod.Name)
	}
	fn, ok := mod.Functions["main"]
	if !ok {
		t.Fatal("expected a main function")
	}
	if len(fn.Body) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(fn.Body))
	}
	push, ok := fn.Body[0].(hydro.PushValue)
	if !ok {
		t.Fatalf("expected first instruction to be PushValue, got %#v", fn.Body[0])
	}
	if push.Value.Kind != value.KindUnsigned32 || push.Value.U32 != 420 {
		t.Fatalf("expected PushValue Unsigned32(420), got %#v", push.Value)
	}
	if _, ok := fn.Body[1].(hydro.Return); !ok {
		t.Fatalf("expected second instruction to be Return, got %#v", fn.Body[1])
	}
}

func TestParseUsingLayoutIntrinsicAndFunction(t *testing.T) {
	src := `
module geometry {
	using shapes

	layout point {
		x: i32,
		y: i32
	}

	intrinsic sqrt(f64) -> "math.sqrt"

	function distance(a: geometry.point, b: geometry.point) {
		Return
	}
}
`
	mod, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if len(mod.Imports) != 1 || mod.Imports[0] != "shapes" {
		t.Fatalf("expected one import \"shapes\", got %v", mod.Imports)
	}
	layout, ok := mod.Layouts["point"]
	if !ok {
		t.Fatal("expected a point layout")
	}
	if len(layout.Members) != 2 {
		t.Fatalf("expected 2 layout members, got %d", len(layout.Members))
	}
	intr, ok := mod.Intrinsics["sqrt"]
	if !ok {
		t.Fatal("expected a sqrt intrinsic")
	}
	code, err := intr.CodeFor("vm")
	if err != nil || code != "math.sqrt" {
		t.Fatalf("expected host code math.sqrt, got %q (err=%v)", code, err)
	}
	fn, ok := mod.Functions["distance"]
	if !ok {
		t.Fatal("expected a distance function")
	}
	if len(fn.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(fn.Parameters))
	}
}

func TestParseLabelsAndJumpTargets(t *testing.T) {
	src := `
module main {
	function main() {
		label start:
		PushValue 1u32
		Jump label start
		Return
	}
}
`
	mod, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	fn := mod.Functions["main"]
	if len(fn.Body) != 3 {
		t.Fatalf("expected 3 instructions (label declarations don't emit one), got %d", len(fn.Body))
	}
	jump, ok := fn.Body[1].(hydro.Jump)
	if !ok {
		t.Fatalf("expected second instruction to be Jump, got %#v", fn.Body[1])
	}
	if jump.Target.Kind != hydro.TargetLabel || jump.Target.Label != "start" {
		t.Fatalf("expected a label target \"start\", got %#v", jump.Target)
	}
}

func TestParseArithmeticAndCompareMnemonics(t *testing.T) {
	src := `
module main {
	function main() {
		Add
		Subtract
		Multiply
		Divide
		Modulo
		Equal
		LessThan
		Return
	}
}
`
	mod, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	fn := mod.Functions["main"]
	want := []hydro.Instruction{
		hydro.Add{}, hydro.Subtract{}, hydro.Multiply{}, hydro.Divide{}, hydro.Modulo{},
		hydro.Equal{}, hydro.LessThan{}, hydro.Return{},
	}
	if len(fn.Body) != len(want) {
		t.Fatalf("expected %d instructions, got %d", len(want), len(fn.Body))
	}
	for i, w := range want {
		if fn.Body[i] != w {
			t.Fatalf("instruction %d: expected %#v, got %#v", i, w, fn.Body[i])
		}
	}
}

func TestParseArrayAndReferenceTypes(t *testing.T) {
	src := `
module main {
	function main(values: [5]u32, ref: &u32) {
		Return
	}
}
`
	mod, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	fn := mod.Functions["main"]
	if len(fn.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(fn.Parameters))
	}
	if fn.Parameters[0].Type.Kind != value.KindArray {
		t.Fatalf("expected an array type, got %#v", fn.Parameters[0].Type)
	}
	if fn.Parameters[1].Type.Kind != value.KindReference {
		t.Fatalf("expected a reference type, got %#v", fn.Parameters[1].Type)
	}
}

func TestParseUnknownInstructionRecordsAnError(t *testing.T) {
	src := `
module main {
	function main() {
		Frobnicate
	}
}
`
	_, errs := Parse(src)
	if len(errs) == 0 {
		t.Fatal("expected an error for an unknown mnemonic")
	}
}

func TestParseSectionEightScenarioOne(t *testing.T) {
	src := `
module main {
	function main() {
		PushValue 420u32
		Return
	}
}
`
	mod, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	result, exc := mod.Execute("main", nil, nil)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if result == nil || result.Kind != value.KindUnsigned32 || result.U32 != 420 {
		t.Fatalf("expected Some(Unsigned32(420)), got %#v", result)
	}
}
