package hydro

import (
	"fmt"
	"io"
	"os"
)

// Exception is the VM's runtime error type (spec section 7): every failure
// raised once an ExecutionContext exists is one of these, carrying a frame
// snapshot for stack-trace printing rather than a bare Go error.
type Exception struct {
	Context *ExecutionContext
	Message string
}

func newException(ctx *ExecutionContext, format string, args ...interface{}) *Exception {
	return &Exception{Context: ctx, Message: fmt.Sprintf(format, args...)}
}

func (e *Exception) Error() string {
	return e.Message
}

// PrintStacktrace matches the original source's Exception::print_stacktrace:
// an "EXCEPTION: <message>" line followed by the frame chain, innermost
// first.
func (e *Exception) PrintStacktrace() {
	e.FprintStacktrace(os.Stdout)
}

func (e *Exception) FprintStacktrace(w io.Writer) {
	fmt.Fprintf(w, "EXCEPTION: %s\n", e.Message)
	if e.Context != nil {
		fmt.Fprint(w, e.Context.StackTrace())
	}
}
