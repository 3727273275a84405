package hydro

import (
	"testing"

	"hydro/internal/value"
)

func TestExecutePushReturn(t *testing.T) {
	fn := NewFunction("main")
	fn.Body = []Instruction{PushValue{Value: value.U32(420)}, Return{}}

	mod := NewModule("main")
	mod.Functions["main"] = fn

	result, exc := mod.Execute("main", nil, nil)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if result == nil || result.Kind != value.KindUnsigned32 || result.U32 != 420 {
		t.Fatalf("expected Unsigned32(420), got %#v", result)
	}
}

func TestExecuteNoReturnIsNil(t *testing.T) {
	fn := NewFunction("main")
	fn.Body = []Instruction{PushValue{Value: value.U32(1)}, PopValue{}}

	mod := NewModule("main")
	mod.Functions["main"] = fn

	result, exc := mod.Execute("main", nil, nil)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if result != nil {
		t.Fatalf("expected nil return value, got %#v", result)
	}
}

func TestExecuteUnresolvedCall(t *testing.T) {
	mod := NewModule("main")
	if _, exc := mod.Execute("missing", nil, nil); exc == nil {
		t.Fatal("expected UnresolvedCall exception")
	}
}

func TestExecutePopUnderflow(t *testing.T) {
	fn := NewFunction("main")
	fn.Body = []Instruction{PopValue{}}

	mod := NewModule("main")
	mod.Functions["main"] = fn

	_, exc := mod.Execute("main", nil, nil)
	if exc == nil {
		t.Fatal("expected StackUnderflow exception")
	}
}

func TestSwapIsSelfInverse(t *testing.T) {
	fn := NewFunction("main")
	fn.Body = []Instruction{
		PushValue{Value: value.U32(1)},
		PushValue{Value: value.U32(2)},
		Swap{},
		Swap{},
		Return{},
	}
	mod := NewModule("main")
	mod.Functions["main"] = fn

	result, exc := mod.Execute("main", nil, nil)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if result.U32 != 2 {
		t.Fatalf("Swap;Swap should be the identity, got %#v", result)
	}
}

func TestAddWidensToTheWiderOperand(t *testing.T) {
	fn := NewFunction("main")
	fn.Body = []Instruction{
		PushValue{Value: value.U8(0)},
		PushValue{Value: value.U32(0)},
		Add{},
		Return{},
	}
	mod := NewModule("main")
	mod.Functions["main"] = fn

	result, exc := mod.Execute("main", nil, nil)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if result.Kind != value.KindUnsigned32 {
		t.Fatalf("expected Add to widen to Unsigned32, got kind %v", result.Kind)
	}
}

func TestCallArgumentsBindVariables(t *testing.T) {
	callee := NewFunction("callee")
	callee.Parameters = []Param{{Name: "x", Type: value.Unsigned32()}}
	callee.Body = []Instruction{
		PushValue{Value: value.RefValue(value.VariableRef("x"))},
		Load{},
		Return{},
	}

	mod := NewModule("main")
	mod.Functions["callee"] = callee

	result, exc := mod.Execute("callee", []Argument{{Name: "x", Value: value.U32(7)}}, nil)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if result.U32 != 7 {
		t.Fatalf("expected argument value 7 to be loadable, got %#v", result)
	}
}
