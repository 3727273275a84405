package hydro

import (
	"fmt"
	"strings"

	"hydro/internal/value"
)

// ExecutionContext is one call frame: the instruction pointer, operand
// stack, locally bound variables, and a link to the caller's frame. Module
// and Function name the code this frame is executing, used both by
// Jump/Branch (to look up jump labels on the right Function) and by the
// debugger/metrics subsystem as the frame's fingerprint component.
type ExecutionContext struct {
	Parent *ExecutionContext

	Stack     []value.Value
	ProgramCounter int
	Variables map[string]value.Value
	ReturnValue *value.Value

	CurrentModule   string
	CurrentFunction string

	Depth int

	// dbg is non-nil when this frame (and the call chain it roots) is
	// running under Module.Debug rather than Module.Execute. Call inherits
	// it from the parent frame so a callee started several frames below the
	// debugged entry point still opens the console and records metrics.
	dbg *Debugger
}

func newFrame(moduleName, functionName string, parent *ExecutionContext) *ExecutionContext {
	depth := 0
	var dbg *Debugger
	if parent != nil {
		depth = parent.Depth + 1
		dbg = parent.dbg
	}
	return &ExecutionContext{
		Parent:          parent,
		Variables:       make(map[string]value.Value),
		CurrentModule:   moduleName,
		CurrentFunction: functionName,
		Depth:           depth,
		dbg:             dbg,
	}
}

func (c *ExecutionContext) push(v value.Value) { c.Stack = append(c.Stack, v) }

func (c *ExecutionContext) pop() (value.Value, bool) {
	if len(c.Stack) == 0 {
		return value.Value{}, false
	}
	top := len(c.Stack) - 1
	v := c.Stack[top]
	c.Stack = c.Stack[:top]
	return v, true
}

// Fingerprint is the path from the root frame down to this one, the key the
// metric tracker and the remote debugger both use to distinguish identical
// (module, function) pairs reached via different call chains.
func (c *ExecutionContext) Fingerprint() string {
	parts := make([]string, 0, c.Depth+1)
	for f := c; f != nil; f = f.Parent {
		parts = append(parts, f.CurrentModule+"."+f.CurrentFunction)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "->")
}

// StackTrace renders the same top-to-bottom "EXCEPTION:" frame listing the
// original source prints via Exception.print_stacktrace/print_stacktrace_internal.
func (c *ExecutionContext) StackTrace() string {
	var b strings.Builder
	for f := c; f != nil; f = f.Parent {
		fmt.Fprintf(&b, "  at %s.%s (pc=%d)\n", f.CurrentModule, f.CurrentFunction, f.ProgramCounter)
	}
	return b.String()
}
