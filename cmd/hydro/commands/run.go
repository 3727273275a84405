// cmd/hydro/commands/run.go
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"hydro/internal/hydro"
	"hydro/internal/loader"
	"hydro/internal/value"
)

// funnyNumber is the default argument section 6.2's run and debug commands
// pass to main: an Unsigned32 literal 69, named for the variable a program
// reads it back under.
func funnyNumber() []hydro.Argument {
	return []hydro.Argument{{Name: "funnyNumber", Value: value.U32(69)}}
}

// RunCommand loads a root module and calls its main.main function,
// rendering the returned value (if any) to standard output.
func RunCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("run requires a file argument")
	}
	path := args[0]

	main, err := loadEntry(path)
	if err != nil {
		return err
	}

	result, exc := main.Execute("main", funnyNumber(), nil)
	if exc != nil {
		fmt.Fprintln(os.Stderr, exc.Error())
		exc.FprintStacktrace(os.Stderr)
		os.Exit(1)
	}
	if result != nil {
		fmt.Println(result.GoString())
	}
	return nil
}

// loadEntry resolves path and every module it transitively uses, searching
// the file's own directory and the current directory for `using` targets,
// and confirms the file's top-level module is named main as section 6.2
// requires.
func loadEntry(path string) (*hydro.Module, error) {
	l := loader.New(filepath.Dir(path), ".")
	root, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	if root.Name != "main" {
		return nil, fmt.Errorf("%s: top-level module is %q, not \"main\"", path, root.Name)
	}
	return root, nil
}
