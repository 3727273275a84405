package hydro

import (
	"fmt"

	"hydro/internal/value"
)

// resolve walks a Reference chain down to a concrete Value, searching the
// current frame's variables and then each parent frame in turn (spec
// section 3's "a Reference resolves against the nearest enclosing frame
// that defines the named variable"). This replaces the original source's
// unimplemented `resolve` stub with an actual chain walk.
func resolve(ctx *ExecutionContext, v value.Value) (value.Value, error) {
	if v.Kind != value.KindReference {
		return v, nil
	}
	return resolveReference(ctx, v.Ref)
}

func resolveReference(ctx *ExecutionContext, ref value.Reference) (value.Value, error) {
	switch ref.Kind {
	case value.RefVariable:
		frame, ok := lookupOwner(ctx, ref.VariableName)
		if !ok {
			return value.Value{}, fmt.Errorf("InvalidReference: variable %q is not defined", ref.VariableName)
		}
		return frame.Variables[ref.VariableName], nil
	case value.RefLayoutIndex:
		parent, err := resolveReference(ctx, *ref.ParentRef)
		if err != nil {
			return value.Value{}, err
		}
		return parent.GetMember(ref.MemberName)
	case value.RefArrayIndex:
		parent, err := resolveReference(ctx, *ref.ParentRef)
		if err != nil {
			return value.Value{}, err
		}
		idxVal, err := resolve(ctx, *ref.IndexValue)
		if err != nil {
			return value.Value{}, err
		}
		idx, err := idxVal.ToU64()
		if err != nil {
			return value.Value{}, err
		}
		return parent.Index(idx)
	default:
		return value.Value{}, fmt.Errorf("InvalidReference: malformed reference")
	}
}

// modify implements Store's target-assignment semantics, and initVariable implements
// Allocate's "define this variable for the first time" semantics. Both walk
// the same frame chain resolve does.
func modify(ctx *ExecutionContext, ref value.Reference, newValue value.Value) error {
	switch ref.Kind {
	case value.RefVariable:
		frame, ok := lookupOwner(ctx, ref.VariableName)
		if !ok {
			return fmt.Errorf("InvalidReference: variable %q is not defined", ref.VariableName)
		}
		frame.Variables[ref.VariableName] = newValue
		return nil
	case value.RefLayoutIndex:
		parent, err := resolveReference(ctx, *ref.ParentRef)
		if err != nil {
			return err
		}
		return parent.SetMember(ref.MemberName, newValue)
	case value.RefArrayIndex:
		parent, err := resolveReference(ctx, *ref.ParentRef)
		if err != nil {
			return err
		}
		idxVal, err := resolve(ctx, *ref.IndexValue)
		if err != nil {
			return err
		}
		idx, err := idxVal.ToU64()
		if err != nil {
			return err
		}
		return parent.SetIndex(idx, newValue)
	default:
		return fmt.Errorf("InvalidReference: malformed reference")
	}
}

func initVariable(ctx *ExecutionContext, ref value.Reference, newValue value.Value) error {
	if ref.Kind != value.RefVariable {
		return modify(ctx, ref, newValue)
	}
	ctx.Variables[ref.VariableName] = newValue
	return nil
}

// lookupOwner returns the nearest frame in the parent chain (self first)
// whose Variables map already has an entry for name.
func lookupOwner(ctx *ExecutionContext, name string) (*ExecutionContext, bool) {
	for frame := ctx; frame != nil; frame = frame.Parent {
		if _, ok := frame.Variables[name]; ok {
			return frame, true
		}
	}
	return nil, false
}
