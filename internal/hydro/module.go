package hydro

import (
	"hydro/internal/value"
)

// Argument is one (name, value) parameter binding passed into Module.Execute,
// mirroring the original source's Vec<(String, Value)> calling convention.
type Argument struct {
	Name  string
	Value value.Value
}

// Module is a named bundle of nested modules, functions, intrinsics, and
// layout templates — the unit the loader produces and the unit Call
// resolves a FunctionPointer's target against.
type Module struct {
	Name string

	// Imports lists the names this module declared via `using`, in source
	// order. The loader resolves each against its search path and attaches
	// the result under Modules before linking; the name alone is not
	// enough to locate a file, so ResolveType/Call only ever look a nested
	// module up by the name it was attached under.
	Imports []string

	Modules    map[string]*Module
	Functions  map[string]*Function
	Intrinsics map[string]*Intrinsic
	Layouts    map[string]*LayoutTemplate

	intrinsicManager *IntrinsicManager
}

func NewModule(name string) *Module {
	return &Module{
		Name:       name,
		Modules:    make(map[string]*Module),
		Functions:  make(map[string]*Function),
		Intrinsics: make(map[string]*Intrinsic),
		Layouts:    make(map[string]*LayoutTemplate),
	}
}

// IntrinsicManager returns the manager Call dispatches intrinsics through,
// defaulting to the package-wide DefaultIntrinsicManager so modules built
// outside of a driver still have working print/println.
func (m *Module) IntrinsicManager() *IntrinsicManager {
	if m.intrinsicManager != nil {
		return m.intrinsicManager
	}
	return DefaultIntrinsicManager
}

func (m *Module) SetIntrinsicManager(mgr *IntrinsicManager) {
	m.intrinsicManager = mgr
}

// Execute runs function_name from the start of its body to either a Return
// or falling off the end, exactly as Module::execute in the original
// source's instruction loop does, and returns its ReturnValue (nil if the
// function never executed Return).
func (m *Module) Execute(functionName string, arguments []Argument, parent *ExecutionContext) (*value.Value, *Exception) {
	fn, ok := m.Functions[functionName]
	if !ok {
		return nil, newException(parent, "UnresolvedCall: function %q not found in module %q", functionName, m.Name)
	}

	ctx := newFrame(m.Name, functionName, parent)
	for _, arg := range arguments {
		ctx.Variables[arg.Name] = arg.Value
	}

	for ctx.ProgramCounter < len(fn.Body) {
		inst := fn.Body[ctx.ProgramCounter]
		cont, exc := inst.Execute(m, ctx)
		if exc != nil {
			return nil, exc
		}
		if !cont {
			break
		}
	}

	return ctx.ReturnValue, nil
}

// Debug is Execute's debugger-instrumented twin: before each instruction it
// gives the Debugger a chance to open the console (breakpoint hit, pending
// step) and to sample per-instruction metrics.
func (m *Module) Debug(functionName string, arguments []Argument, parent *ExecutionContext, dbg *Debugger) (*value.Value, *Exception) {
	fn, ok := m.Functions[functionName]
	if !ok {
		return nil, newException(parent, "UnresolvedCall: function %q not found in module %q", functionName, m.Name)
	}

	ctx := newFrame(m.Name, functionName, parent)
	ctx.dbg = dbg
	for _, arg := range arguments {
		ctx.Variables[arg.Name] = arg.Value
	}

	dbg.metrics.start(ctx.Fingerprint(), "total")
	defer dbg.metrics.stop(ctx.Fingerprint(), "total")

	for ctx.ProgramCounter < len(fn.Body) {
		inst := fn.Body[ctx.ProgramCounter]
		dbg.beforeInstruction(m, ctx, inst)

		metricName := inst.Tag()
		dbg.metrics.start(ctx.Fingerprint(), metricName)
		cont, exc := inst.Execute(m, ctx)
		dbg.metrics.stop(ctx.Fingerprint(), metricName)

		if exc != nil {
			dbg.onException(exc)
			return nil, exc
		}
		if !cont {
			break
		}
	}

	return ctx.ReturnValue, nil
}

// ResolveType fills in a Layout type's member map by looking up its
// LayoutTemplate (own module first, then nested modules by name), and
// recurses into Array element types. Primitive kinds resolve to themselves.
func (m *Module) ResolveType(t value.Type, ctx *ExecutionContext) (value.Type, *Exception) {
	switch t.Kind {
	case value.KindLayout:
		template, owner := m.findLayout(t.LayoutModule, t.LayoutName)
		if template == nil {
			return value.Type{}, newException(ctx, "UnresolvedType: layout %q not found", t.LayoutName)
		}
		resolvedMembers := make(map[string]value.Type, len(template.Members))
		for name, mt := range template.Members {
			resolved, exc := owner.ResolveType(mt, ctx)
			if exc != nil {
				return value.Type{}, exc
			}
			resolvedMembers[name] = resolved
		}
		return value.ResolvedLayout(owner.Name, template.Name, resolvedMembers), nil
	case value.KindArray:
		elem, exc := m.ResolveType(*t.ArrayElement, ctx)
		if exc != nil {
			return value.Type{}, exc
		}
		return value.Array(t.ArrayLength, elem), nil
	default:
		return t, nil
	}
}

func (m *Module) findLayout(moduleName, layoutName string) (*LayoutTemplate, *Module) {
	owner := m
	if moduleName != "" && moduleName != m.Name {
		if sub, ok := m.Modules[moduleName]; ok {
			owner = sub
		}
	}
	if template, ok := owner.Layouts[layoutName]; ok {
		return template, owner
	}
	return nil, nil
}
