package buildpipeline

import (
	"strings"
	"testing"

	"hydro/internal/frontend"
	"hydro/internal/hydro"
	"hydro/internal/value"
)

func TestPrintRendersAParsableModule(t *testing.T) {
	mod := hydro.NewModule("main")
	fn := hydro.NewFunction("main")
	fn.Body = []hydro.Instruction{
		hydro.PushValue{Value: value.U32(1)},
		hydro.PushValue{Value: value.U32(2)},
		hydro.Add{},
		hydro.Return{},
	}
	mod.Functions["main"] = fn

	source := Print(mod)
	if !strings.Contains(source, "module main") {
		t.Fatalf("expected printed source to declare module main, got %q", source)
	}

	reparsed, errs := frontend.Parse(source)
	if len(errs) != 0 {
		t.Fatalf("expected the printed source to reparse cleanly, got errors: %v", errs)
	}
	if reparsed.Name != "main" {
		t.Fatalf("expected reparsed module name main, got %q", reparsed.Name)
	}
	reparsedFn, ok := reparsed.Functions["main"]
	if !ok {
		t.Fatal("expected a reparsed main function")
	}
	if len(reparsedFn.Body) != 4 {
		t.Fatalf("expected 4 reparsed instructions, got %d", len(reparsedFn.Body))
	}

	result, exc := reparsed.Execute("main", nil, nil)
	if exc != nil {
		t.Fatalf("unexpected exception executing the reparsed module: %v", exc)
	}
	if result == nil || result.U32 != 3 {
		t.Fatalf("expected Unsigned32(3), got %#v", result)
	}
}

func TestPrintIncludesLayoutsAndIntrinsics(t *testing.T) {
	mod := hydro.NewModule("main")
	point := hydro.NewLayoutTemplate("main", "point")
	point.Member("x", value.Signed32())
	mod.Layouts["point"] = point
	mod.Intrinsics["sqrt"] = hydro.NewIntrinsic("sqrt", []value.Type{value.Float64Type()}, "math.sqrt")
	mod.Functions["main"] = hydro.NewFunction("main")

	source := Print(mod)
	if !strings.Contains(source, "layout point") {
		t.Fatalf("expected the printed source to declare layout point, got %q", source)
	}
	if !strings.Contains(source, "intrinsic sqrt") {
		t.Fatalf("expected the printed source to declare intrinsic sqrt, got %q", source)
	}

	_, errs := frontend.Parse(source)
	if len(errs) != 0 {
		t.Fatalf("expected the printed source to reparse cleanly, got errors: %v", errs)
	}
}

func TestPrintEmitsDependenciesBeforeTheDependent(t *testing.T) {
	dep := hydro.NewModule("shapes")
	dep.Functions["noop"] = hydro.NewFunction("noop")

	main := hydro.NewModule("main")
	main.Imports = []string{"shapes"}
	main.Modules["shapes"] = dep
	main.Functions["main"] = hydro.NewFunction("main")

	source := Print(main)
	shapesIdx := strings.Index(source, "module shapes")
	mainIdx := strings.Index(source, "module main")
	if shapesIdx == -1 || mainIdx == -1 {
		t.Fatalf("expected both module declarations in output, got %q", source)
	}
	if shapesIdx > mainIdx {
		t.Fatal("expected the shapes dependency to be printed before main")
	}
}
