package hydro

import (
	"hydro/internal/value"
)

// Instruction is one bytecode op. Tag names the metric key the debugger
// keys its per-instruction timing samples on (spec section 4.4's "a metric
// named after the instruction kind, lowercased").
type Instruction interface {
	Execute(module *Module, ctx *ExecutionContext) (bool, *Exception)
	Tag() string
}

// --- stack manipulation -----------------------------------------------

type PushValue struct{ Value value.Value }

func (i PushValue) Tag() string { return "pushvalue" }
func (i PushValue) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	ctx.push(i.Value.Clone())
	ctx.ProgramCounter++
	return true, nil
}

type PopValue struct{}

func (i PopValue) Tag() string { return "popvalue" }
func (i PopValue) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	if _, ok := ctx.pop(); !ok {
		return false, newException(ctx, "StackUnderflow: expected 1 and got none")
	}
	ctx.ProgramCounter++
	return true, nil
}

type Duplicate struct{ Offset int }

func (i Duplicate) Tag() string { return "duplicate" }
func (i Duplicate) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	if len(ctx.Stack) < 1+i.Offset {
		return false, newException(ctx, "StackUnderflow: expected 1 + %d but got %d", i.Offset, len(ctx.Stack))
	}
	top, _ := ctx.pop()
	at := len(ctx.Stack) - i.Offset
	ctx.Stack = append(ctx.Stack[:at], append([]value.Value{top.Clone()}, ctx.Stack[at:]...)...)
	ctx.push(top)
	ctx.ProgramCounter++
	return true, nil
}

type Swap struct{}

func (i Swap) Tag() string { return "swap" }
func (i Swap) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	if len(ctx.Stack) < 2 {
		return false, newException(ctx, "StackUnderflow: expected 2 but got %d", len(ctx.Stack))
	}
	a, _ := ctx.pop()
	b, _ := ctx.pop()
	ctx.push(a)
	ctx.push(b)
	ctx.ProgramCounter++
	return true, nil
}

type Rotate struct{ Size int }

func (i Rotate) Tag() string { return "rotate" }
func (i Rotate) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	if len(ctx.Stack) < i.Size {
		return false, newException(ctx, "StackUnderflow: expected at least %d but got %d", i.Size, len(ctx.Stack))
	}
	if i.Size == 0 {
		ctx.ProgramCounter++
		return true, nil
	}
	at := len(ctx.Stack) - i.Size
	v := ctx.Stack[at]
	ctx.Stack = append(ctx.Stack[:at], ctx.Stack[at+1:]...)
	ctx.push(v)
	ctx.ProgramCounter++
	return true, nil
}

// --- binary/unary arithmetic & logic ------------------------------------

type binaryOp func(a, b value.Value) (value.Value, error)

func executeBinary(tag string, op binaryOp, ctx *ExecutionContext) (bool, *Exception) {
	if len(ctx.Stack) < 2 {
		return false, newException(ctx, "StackUnderflow: expected 2 and got %d", len(ctx.Stack))
	}
	b, _ := ctx.pop()
	a, _ := ctx.pop()
	av, err := resolve(ctx, a)
	if err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	bv, err := resolve(ctx, b)
	if err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	result, err := op(av, bv)
	if err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	ctx.push(result)
	ctx.ProgramCounter++
	return true, nil
}

func executeUnary(ctx *ExecutionContext, op func(value.Value) (value.Value, error)) (bool, *Exception) {
	if len(ctx.Stack) < 1 {
		return false, newException(ctx, "StackUnderflow: expected 1 and got none")
	}
	a, _ := ctx.pop()
	av, err := resolve(ctx, a)
	if err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	result, err := op(av)
	if err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	ctx.push(result)
	ctx.ProgramCounter++
	return true, nil
}

type Add struct{}

func (i Add) Tag() string { return "add" }
func (i Add) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("add", value.Add, ctx)
}

type Subtract struct{}

func (i Subtract) Tag() string { return "subtract" }
func (i Subtract) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("subtract", value.Sub, ctx)
}

type Multiply struct{}

func (i Multiply) Tag() string { return "multiply" }
func (i Multiply) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("multiply", value.Mul, ctx)
}

type Divide struct{}

func (i Divide) Tag() string { return "divide" }
func (i Divide) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("divide", value.Div, ctx)
}

type Modulo struct{}

func (i Modulo) Tag() string { return "modulo" }
func (i Modulo) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("modulo", value.Mod, ctx)
}

type LeftShift struct{}

func (i LeftShift) Tag() string { return "leftshift" }
func (i LeftShift) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("leftshift", value.ShiftLeft, ctx)
}

type RightShift struct{}

func (i RightShift) Tag() string { return "rightshift" }
func (i RightShift) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("rightshift", value.ShiftRight, ctx)
}

type BitwiseAnd struct{}

func (i BitwiseAnd) Tag() string { return "bitwiseand" }
func (i BitwiseAnd) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("bitwiseand", value.BitAnd, ctx)
}

type BitwiseOr struct{}

func (i BitwiseOr) Tag() string { return "bitwiseor" }
func (i BitwiseOr) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("bitwiseor", value.BitOr, ctx)
}

type BitwiseXor struct{}

func (i BitwiseXor) Tag() string { return "bitwisexor" }
func (i BitwiseXor) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("bitwisexor", value.BitXor, ctx)
}

type BitwiseNot struct{}

func (i BitwiseNot) Tag() string { return "bitwisenot" }
func (i BitwiseNot) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeUnary(ctx, value.BitNot)
}

type And struct{}

func (i And) Tag() string { return "and" }
func (i And) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("and", value.And, ctx)
}

type Or struct{}

func (i Or) Tag() string { return "or" }
func (i Or) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("or", value.Or, ctx)
}

type Xor struct{}

func (i Xor) Tag() string { return "xor" }
func (i Xor) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("xor", value.Xor, ctx)
}

type Not struct{}

func (i Not) Tag() string { return "not" }
func (i Not) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeUnary(ctx, value.Not)
}

type Equal struct{}

func (i Equal) Tag() string { return "equal" }
func (i Equal) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("equal", value.EqualValues, ctx)
}

type NotEqual struct{}

func (i NotEqual) Tag() string { return "notequal" }
func (i NotEqual) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("notequal", value.NotEqualValues, ctx)
}

type LessThan struct{}

func (i LessThan) Tag() string { return "lessthan" }
func (i LessThan) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("lessthan", value.LessThan, ctx)
}

type GreaterThan struct{}

func (i GreaterThan) Tag() string { return "greaterthan" }
func (i GreaterThan) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("greaterthan", value.GreaterThan, ctx)
}

type LessThanEqual struct{}

func (i LessThanEqual) Tag() string { return "lessthanequal" }
func (i LessThanEqual) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("lessthanequal", value.LessThanEqual, ctx)
}

type GreaterThanEqual struct{}

func (i GreaterThanEqual) Tag() string { return "greaterthanequal" }
func (i GreaterThanEqual) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	return executeBinary("greaterthanequal", value.GreaterThanEqual, ctx)
}

// --- control flow --------------------------------------------------------

type Jump struct{ Target Target }

func (i Jump) Tag() string { return "jump" }
func (i Jump) Execute(module *Module, ctx *ExecutionContext) (bool, *Exception) {
	fn := module.Functions[ctx.CurrentFunction]
	idx, err := fn.TargetPointer(i.Target)
	if err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	ctx.ProgramCounter = idx
	return true, nil
}

type Branch struct {
	TrueTarget, FalseTarget Target
}

func (i Branch) Tag() string { return "branch" }
func (i Branch) Execute(module *Module, ctx *ExecutionContext) (bool, *Exception) {
	if len(ctx.Stack) < 1 {
		return false, newException(ctx, "StackUnderflow: expected 1 and got none")
	}
	a, _ := ctx.pop()
	resolved, err := resolve(ctx, a)
	if err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	cond, err := resolved.ToBool()
	if err != nil {
		return false, newException(ctx, "%s", err.Error())
	}

	fn := module.Functions[ctx.CurrentFunction]
	target := i.FalseTarget
	if cond {
		target = i.TrueTarget
	}
	idx, err := fn.TargetPointer(target)
	if err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	ctx.ProgramCounter = idx
	return true, nil
}

type Call struct{}

func (i Call) Tag() string { return "call" }
func (i Call) Execute(module *Module, ctx *ExecutionContext) (bool, *Exception) {
	if len(ctx.Stack) < 1 {
		return false, newException(ctx, "StackUnderflow: expected 1 and got none")
	}
	fnVal, _ := ctx.pop()
	if fnVal.Kind != value.KindFunctionPointer {
		return false, newException(ctx, "Non-invokable value was attempted to be invoked")
	}
	ptr := fnVal.Fn

	targetModule := module
	if ptr.Module != "" && ptr.Module != module.Name {
		sub, ok := module.Modules[ptr.Module]
		if !ok {
			return false, newException(ctx, "UnresolvedCall: could not find module %q", ptr.Module)
		}
		targetModule = sub
	}

	if targetFunction, ok := targetModule.Functions[ptr.Function]; ok {
		if len(ctx.Stack) < len(targetFunction.Parameters) {
			return false, newException(ctx, "StackUnderflow: expected %d and got %d", len(targetFunction.Parameters), len(ctx.Stack))
		}
		args := make([]Argument, len(targetFunction.Parameters))
		popped := make([]value.Value, len(targetFunction.Parameters))
		for idx := len(targetFunction.Parameters) - 1; idx >= 0; idx-- {
			v, _ := ctx.pop()
			popped[idx] = v
		}
		for idx, param := range targetFunction.Parameters {
			if !value.Subtype(popped[idx].TypeOf(), param.Type) {
				return false, newException(ctx, "TypeMismatch: parameter %q expected %s but got %s", param.Name, param.Type, popped[idx].TypeOf())
			}
			args[idx] = Argument{Name: param.Name, Value: popped[idx]}
		}
		var ret *value.Value
		var exc *Exception
		if ctx.dbg != nil {
			ret, exc = targetModule.Debug(ptr.Function, args, ctx, ctx.dbg)
		} else {
			ret, exc = targetModule.Execute(ptr.Function, args, ctx)
		}
		if exc != nil {
			return false, exc
		}
		if ret != nil {
			ctx.push(*ret)
		}
		ctx.ProgramCounter++
		return true, nil
	}

	if targetIntrinsic, ok := targetModule.Intrinsics[ptr.Function]; ok {
		if len(ctx.Stack) < len(targetIntrinsic.Parameters) {
			return false, newException(ctx, "StackUnderflow: expected %d and got %d", len(targetIntrinsic.Parameters), len(ctx.Stack))
		}
		args := make([]value.Value, len(targetIntrinsic.Parameters))
		for idx := len(targetIntrinsic.Parameters) - 1; idx >= 0; idx-- {
			v, _ := ctx.pop()
			args[idx] = v
		}
		code, err := targetIntrinsic.CodeFor("vm")
		if err != nil {
			return false, newException(ctx, "%s", err.Error())
		}
		results, err := targetModule.IntrinsicManager().Call(code, ctx, args)
		if err != nil {
			return false, newException(ctx, "%s", err.Error())
		}
		for _, r := range results {
			ctx.push(r)
		}
		ctx.ProgramCounter++
		return true, nil
	}

	return false, newException(ctx, "UnresolvedCall: could not find function %q in module %q", ptr.Function, targetModule.Name)
}

type Return struct{}

func (i Return) Tag() string { return "return" }
func (i Return) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	if len(ctx.Stack) < 1 {
		return false, newException(ctx, "StackUnderflow: expected 1 and got none")
	}
	result, _ := ctx.pop()
	ctx.ReturnValue = &result
	ctx.ProgramCounter++
	return false, nil
}

// --- references, arrays, layouts -----------------------------------------

type Load struct{}

func (i Load) Tag() string { return "load" }
func (i Load) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	if len(ctx.Stack) < 1 {
		return false, newException(ctx, "StackUnderflow: expected 1 and got none")
	}
	ref, _ := ctx.pop()
	result, err := resolve(ctx, ref)
	if err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	ctx.push(result)
	ctx.ProgramCounter++
	return true, nil
}

type Store struct{}

func (i Store) Tag() string { return "store" }
func (i Store) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	if len(ctx.Stack) < 2 {
		return false, newException(ctx, "StackUnderflow: expected 2 and got %d", len(ctx.Stack))
	}
	newValue, _ := ctx.pop()
	refValue, _ := ctx.pop()
	if refValue.Kind != value.KindReference {
		return false, newException(ctx, "TypeMismatch: cannot store value into non-reference value")
	}
	if err := modify(ctx, refValue.Ref, newValue); err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	ctx.push(refValue)
	ctx.ProgramCounter++
	return true, nil
}

type GetArrayIndex struct{}

func (i GetArrayIndex) Tag() string { return "getarrayindex" }
func (i GetArrayIndex) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	if len(ctx.Stack) < 2 {
		return false, newException(ctx, "StackUnderflow: expected 2 and got %d", len(ctx.Stack))
	}
	indexVal, _ := ctx.pop()
	array, _ := ctx.pop()
	idx, err := indexVal.ToU64()
	if err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	result, err := array.Index(idx)
	if err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	ctx.push(array)
	ctx.push(result)
	ctx.ProgramCounter++
	return true, nil
}

type SetArrayIndex struct{}

func (i SetArrayIndex) Tag() string { return "setarrayindex" }
func (i SetArrayIndex) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	if len(ctx.Stack) < 3 {
		return false, newException(ctx, "StackUnderflow: expected 3 and got %d", len(ctx.Stack))
	}
	newValue, _ := ctx.pop()
	indexVal, _ := ctx.pop()
	array, _ := ctx.pop()
	idx, err := indexVal.ToU64()
	if err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	if err := array.SetIndex(idx, newValue); err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	ctx.push(array)
	ctx.ProgramCounter++
	return true, nil
}

type GetLayoutIndex struct{ Member string }

func (i GetLayoutIndex) Tag() string { return "getlayoutindex" }
func (i GetLayoutIndex) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	if len(ctx.Stack) < 1 {
		return false, newException(ctx, "StackUnderflow: expected 1 and got none")
	}
	layout, _ := ctx.pop()
	result, err := layout.GetMember(i.Member)
	if err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	ctx.push(layout)
	ctx.push(result)
	ctx.ProgramCounter++
	return true, nil
}

type SetLayoutIndex struct{ Member string }

func (i SetLayoutIndex) Tag() string { return "setlayoutindex" }
func (i SetLayoutIndex) Execute(_ *Module, ctx *ExecutionContext) (bool, *Exception) {
	if len(ctx.Stack) < 2 {
		return false, newException(ctx, "StackUnderflow: expected 2 and got %d", len(ctx.Stack))
	}
	newValue, _ := ctx.pop()
	layout, _ := ctx.pop()
	if err := layout.SetMember(i.Member, newValue); err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	ctx.push(layout)
	ctx.ProgramCounter++
	return true, nil
}

type Allocate struct{ AllocatedType value.Type }

func (i Allocate) Tag() string { return "allocate" }
func (i Allocate) Execute(module *Module, ctx *ExecutionContext) (bool, *Exception) {
	if len(ctx.Stack) < 1 {
		return false, newException(ctx, "StackUnderflow: expected 1 and got none")
	}
	resolved, exc := module.ResolveType(i.AllocatedType, ctx)
	if exc != nil {
		return false, exc
	}
	allocated := value.Default(resolved)

	refValue, _ := ctx.pop()
	if refValue.Kind != value.KindReference {
		return false, newException(ctx, "TypeMismatch: could not allocate layout into a non-reference value")
	}
	if err := initVariable(ctx, refValue.Ref, allocated); err != nil {
		return false, newException(ctx, "%s", err.Error())
	}
	ctx.push(refValue)
	ctx.ProgramCounter++
	return true, nil
}

type AllocateArray struct {
	ArraySize    *uint64 // nil means "pop the size off the stack"
	ArraySubType value.Type
}

func (i AllocateArray) Tag() string { return "allocatearray" }
func (i AllocateArray) Execute(module *Module, ctx *ExecutionContext) (bool, *Exception) {
	if i.ArraySize == nil && len(ctx.Stack) < 1 {
		return false, newException(ctx, "StackUnderflow: expected 1 and got none")
	}

	arraySize := uint64(0)
	if i.ArraySize != nil {
		arraySize = *i.ArraySize
	} else {
		sizeVal, _ := ctx.pop()
		n, err := sizeVal.ToU64()
		if err != nil {
			return false, newException(ctx, "%s", err.Error())
		}
		arraySize = n
	}

	resolved, exc := module.ResolveType(value.Array(&arraySize, i.ArraySubType), ctx)
	if exc != nil {
		return false, exc
	}
	ctx.push(value.Default(resolved))
	ctx.ProgramCounter++
	return true, nil
}
